package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/avelazquez/livemarket/internal/models"
)

// fakeUserRepo implements UserRepository in memory for testing.
type fakeUserRepo struct {
	users     map[string]*models.User
	findErr   error
	createErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (f *fakeUserRepo) FindByUsername(_ context.Context, username string) (*models.User, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	user, ok := f.users[username]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	copied := *user
	f.users[user.Username] = &copied
	return nil
}

func TestRegisterThenLogin(t *testing.T) {
	repo := newFakeUserRepo()
	auth := NewAuth(repo)
	ctx := context.Background()

	user, err := auth.Register(ctx, "alice", "s3cret", "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)

	// The stored password is a hash, never the plaintext.
	stored := repo.users["alice"]
	require.NotNil(t, stored)
	assert.NotEqual(t, "s3cret", stored.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("s3cret")))

	logged, err := auth.Login(ctx, "alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "alice", logged.Username)
}

func TestRegisterDuplicate(t *testing.T) {
	repo := newFakeUserRepo()
	auth := NewAuth(repo)
	ctx := context.Background()

	_, err := auth.Register(ctx, "bob", "first", "bob@example.com")
	require.NoError(t, err)
	before := *repo.users["bob"]

	_, err = auth.Register(ctx, "bob", "second", "other@example.com")
	assert.ErrorIs(t, err, ErrDuplicateUser)

	// The existing record is never mutated on a duplicate.
	assert.Equal(t, before, *repo.users["bob"])
}

func TestLoginWrongPassword(t *testing.T) {
	repo := newFakeUserRepo()
	auth := NewAuth(repo)
	ctx := context.Background()

	_, err := auth.Register(ctx, "carol", "right", "carol@example.com")
	require.NoError(t, err)

	user, err := auth.Login(ctx, "carol", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Nil(t, user)
}

func TestLoginUnknownUser(t *testing.T) {
	auth := NewAuth(newFakeUserRepo())

	user, err := auth.Login(context.Background(), "nobody", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Nil(t, user)
}

func TestRegisterRepoError(t *testing.T) {
	repo := newFakeUserRepo()
	repo.findErr = errors.New("store unreachable")
	auth := NewAuth(repo)

	_, err := auth.Register(context.Background(), "dave", "pw", "dave@example.com")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrDuplicateUser)
}

func TestFindByUsernamePassthrough(t *testing.T) {
	repo := newFakeUserRepo()
	auth := NewAuth(repo)
	ctx := context.Background()

	_, err := auth.Register(ctx, "erin", "pw", "erin@example.com")
	require.NoError(t, err)

	user, err := auth.FindByUsername(ctx, "erin")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "erin@example.com", user.Email)

	missing, err := auth.FindByUsername(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
