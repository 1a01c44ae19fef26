// Package middleware provides HTTP middlewares for authentication and logging.
package middleware

import (
	"context"
	"net/http"

	"github.com/avelazquez/livemarket/internal/models"
	"github.com/avelazquez/livemarket/internal/session"
)

type ctxKey string

const sessionKey ctxKey = "session"

// CookieName is the name of the cookie carrying the opaque session token.
const CookieName = "session_token"

// WithSession resolves the session cookie against the store and, when it
// maps to a live session, attaches that session to the request context.
// Requests without a valid session pass through unchanged; access control
// is left to RequireAuth.
func WithSession(store *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(CookieName)
			if err == nil {
				if sess := store.Get(cookie.Value); sess != nil {
					ctx := context.WithValue(r.Context(), sessionKey, sess)
					r = r.WithContext(ctx)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth redirects anonymous requests to the login entry point.
// It must run after WithSession.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if SessionFromContext(r.Context()) == nil {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SessionFromContext extracts the authenticated session from the request
// context. Returns nil if the request is anonymous.
func SessionFromContext(ctx context.Context) *models.Session {
	val := ctx.Value(sessionKey)
	if s, ok := val.(*models.Session); ok {
		return s
	}
	return nil
}
