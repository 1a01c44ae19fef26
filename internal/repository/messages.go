package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// messagesCollection is the document-store collection holding chat messages.
const messagesCollection = "messages"

// MongoMessageRepository implements chat message persistence on the document
// store. Messages are opaque payloads stored as-is; no schema is enforced.
type MongoMessageRepository struct {
	messages *mongo.Collection
}

// NewMongoMessageRepository creates a MongoMessageRepository backed by the
// given database handle.
func NewMongoMessageRepository(database *mongo.Database) *MongoMessageRepository {
	return &MongoMessageRepository{messages: database.Collection(messagesCollection)}
}

// Append stores one chat message payload.
func (r *MongoMessageRepository) Append(ctx context.Context, message map[string]interface{}) error {
	if _, err := r.messages.InsertOne(ctx, message); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// ListAll returns every stored chat message with internal identifiers
// stripped. Only arrival order is guaranteed, and only incidentally.
func (r *MongoMessageRepository) ListAll(ctx context.Context) ([]map[string]interface{}, error) {
	findOpts := options.Find().SetProjection(bson.M{"_id": 0})
	cursor, err := r.messages.Find(ctx, bson.M{}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("find messages: %w", err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	var result []map[string]interface{}
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	return result, nil
}
