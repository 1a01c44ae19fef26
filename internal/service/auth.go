// Package service provides authentication business logic,
// delegating persistence to a UserRepository.
package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/avelazquez/livemarket/internal/models"
)

var (
	// ErrDuplicateUser is returned when registering a username that already exists.
	ErrDuplicateUser = errors.New("user already exists")
	// ErrInvalidCredentials is returned when login fails, for an unknown user
	// and for a wrong password alike.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// UserRepository defines the persistence operations
// required by the authentication service.
type UserRepository interface {
	// FindByUsername returns the user with the given username, or nil if absent.
	// ctx carries deadlines, cancellation signals, and other request-scoped values.
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	// Create inserts a new user record with an already-hashed password.
	Create(ctx context.Context, user *models.User) error
}

// Auth implements registration and login by delegating to a UserRepository.
type Auth struct {
	// repo performs the data-layer operations.
	repo UserRepository
}

// NewAuth constructs a new Auth service using the provided repository.
func NewAuth(repo UserRepository) *Auth {
	return &Auth{repo: repo}
}

// Register creates a new user account. The password is hashed exactly once
// here, with a freshly generated salt. Returns ErrDuplicateUser when the
// username is already taken. The existence check and the insert are separate
// operations, so two concurrent registrations of the same username can race;
// the store keeps whichever insert lands.
func (s *Auth) Register(ctx context.Context, username, password, email string) (*models.User, error) {
	existing, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateUser
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Username: username,
		Password: string(hash),
		Email:    email,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies the given credentials and returns the matching user.
// Unknown users and wrong passwords both yield ErrInvalidCredentials; any
// internal comparison error is treated as a mismatch (fail closed).
func (s *Auth) Login(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// FindByUsername rehydrates the full user record for a session username.
func (s *Auth) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.repo.FindByUsername(ctx, username)
}
