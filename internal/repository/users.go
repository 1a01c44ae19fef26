// Package repository provides persistence implementations for the credential
// store, the chat message store, and the relational product sink.
package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/avelazquez/livemarket/internal/models"
)

// usersCollection is the document-store collection holding user records.
const usersCollection = "users"

// MongoUserRepository implements credential persistence on the document store.
type MongoUserRepository struct {
	users *mongo.Collection
}

// NewMongoUserRepository creates a MongoUserRepository backed by the given
// database handle.
func NewMongoUserRepository(database *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{users: database.Collection(usersCollection)}
}

// FindByUsername returns the user record for username, or nil if no such
// user exists. Connectivity failures are returned as errors.
func (r *MongoUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.users.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

// Create inserts a new user record. The password must already be hashed by
// the caller; the repository stores the record as given.
func (r *MongoUserRepository) Create(ctx context.Context, user *models.User) error {
	if _, err := r.users.InsertOne(ctx, user); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}
