// Package session implements the server-side session store backing the
// authentication gate. Sessions live in process memory, are keyed by an
// opaque UUID token, and expire a fixed interval after creation.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/avelazquez/livemarket/internal/models"
)

// DefaultTTL is the absolute session lifetime. There is no sliding renewal:
// a session expires DefaultTTL after creation regardless of activity.
const DefaultTTL = time.Hour

// Store keeps all live sessions in memory, keyed by token.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
	ttl      time.Duration
	now      func() time.Time
}

// NewStore creates an empty session store with the given absolute TTL.
// A non-positive ttl falls back to DefaultTTL.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		sessions: make(map[string]*models.Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create establishes a new session for the given username and returns it.
// Only the username is serialized into the session; callers rehydrate the
// full user record from the credential store when they need it.
func (s *Store) Create(username string) *models.Session {
	now := s.now()
	sess := &models.Session{
		Token:     uuid.NewString(),
		Username:  username,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	s.mu.Lock()
	s.sessions[sess.Token] = sess
	s.mu.Unlock()

	return sess
}

// Get returns the live session for token, or nil if the token is unknown or
// the session has expired. Expired sessions are removed on access.
func (s *Store) Get(token string) *models.Session {
	s.mu.RLock()
	sess, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return nil
	}
	if s.now().After(sess.ExpiresAt) {
		s.Destroy(token)
		return nil
	}
	return sess
}

// IncrementCounter adds one authenticated page view to the session and
// returns the new count. Unknown or expired tokens return 0.
func (s *Store) IncrementCounter(token string) int {
	if s.Get(token) == nil {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return 0
	}
	sess.Counter++
	return sess.Counter
}

// Destroy removes the session for token, if present.
func (s *Store) Destroy(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// Len reports the number of sessions currently held, expired or not.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// sweep removes every expired session and reports how many were removed.
func (s *Store) sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for token, sess := range s.sessions {
		if now.After(sess.ExpiresAt) {
			delete(s.sessions, token)
			removed++
		}
	}
	return removed
}
