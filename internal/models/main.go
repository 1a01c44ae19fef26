// Package models defines the core data structures for users and sessions.
package models

import "time"

// User represents an application user with credentials.
type User struct {
	// Username is the login name chosen by the user. Unique.
	Username string `bson:"username" json:"username"`
	// Password is the bcrypt hash of the user's password. Never serialized to clients.
	Password string `bson:"password" json:"-"`
	// Email is the address supplied at registration.
	Email string `bson:"email" json:"email"`
}

// Session holds the server-side state for one authenticated client,
// keyed by an opaque token delivered as a cookie.
type Session struct {
	// Token is the opaque session identifier (UUID).
	Token string
	// Username identifies the authenticated user. The full user record is
	// rehydrated by a credential-store lookup on each request that needs it;
	// only the username is serialized into the session.
	Username string
	// Counter counts authenticated page views within this session.
	Counter int
	// CreatedAt is when the session was established.
	CreatedAt time.Time
	// ExpiresAt is the absolute expiry. There is no sliding renewal.
	ExpiresAt time.Time
}
