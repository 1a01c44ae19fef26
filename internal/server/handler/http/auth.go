// Package http provides the HTTP handlers for authentication, the
// authenticated pages, and process diagnostics.
package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/avelazquez/livemarket/internal/middleware"
	"github.com/avelazquez/livemarket/internal/models"
	"github.com/avelazquez/livemarket/internal/service"
	"github.com/avelazquez/livemarket/internal/session"
)

// AuthService defines the authentication operations required by the HTTP
// handlers.
type AuthService interface {
	// Register creates a new account. Returns service.ErrDuplicateUser when
	// the username is taken.
	Register(ctx context.Context, username, password, email string) (*models.User, error)
	// Login verifies credentials. Returns service.ErrInvalidCredentials on
	// unknown user or wrong password.
	Login(ctx context.Context, username, password string) (*models.User, error)
	// FindByUsername rehydrates the user record for a session username.
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

// AuthHandler handles registration, login, logout, and the failure pages.
// Authentication failures surface as redirects to dedicated failure pages,
// never as structured error bodies.
type AuthHandler struct {
	// AuthService performs the underlying authentication operations.
	AuthService AuthService
	// Sessions is the server-side session store.
	Sessions *session.Store
	// Log is the structured logger.
	Log *zap.Logger
}

// LoginPage serves the login form, or redirects to /datos when the request
// already carries a live session.
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if middleware.SessionFromContext(r.Context()) != nil {
		http.Redirect(w, r, "/datos", http.StatusFound)
		return
	}
	servePage(w, loginPage)
}

// Login authenticates the submitted credentials. Success establishes a
// session and redirects to /datos; any failure redirects to /faillogin.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/faillogin", http.StatusFound)
		return
	}
	username := r.FormValue("username")
	password := r.FormValue("password")

	user, err := h.AuthService.Login(r.Context(), username, password)
	if err != nil {
		if !errors.Is(err, service.ErrInvalidCredentials) {
			h.Log.Error("login failed", zap.String("username", username), zap.Error(err))
		}
		http.Redirect(w, r, "/faillogin", http.StatusFound)
		return
	}

	sess := h.Sessions.Create(user.Username)
	http.SetCookie(w, sessionCookie(sess.Token, int(session.DefaultTTL/time.Second)))
	http.Redirect(w, r, "/datos", http.StatusFound)
}

// LoginError renders the login failure view.
func (h *AuthHandler) LoginError(w http.ResponseWriter, _ *http.Request) {
	servePage(w, loginErrorPage)
}

// RegisterPage serves the registration form, or redirects to /datos when the
// request already carries a live session.
func (h *AuthHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	if middleware.SessionFromContext(r.Context()) != nil {
		http.Redirect(w, r, "/datos", http.StatusFound)
		return
	}
	servePage(w, registerPage)
}

// Register creates a new account from the submitted form. Success redirects
// to /; a duplicate username or any other failure redirects to /failregister.
// The existing record is never touched on a duplicate.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/failregister", http.StatusFound)
		return
	}
	username := r.FormValue("username")
	password := r.FormValue("password")
	email := r.FormValue("email")

	if username == "" || password == "" || email == "" {
		http.Redirect(w, r, "/failregister", http.StatusFound)
		return
	}

	if _, err := h.AuthService.Register(r.Context(), username, password, email); err != nil {
		if !errors.Is(err, service.ErrDuplicateUser) {
			h.Log.Error("registration failed", zap.String("username", username), zap.Error(err))
		}
		http.Redirect(w, r, "/failregister", http.StatusFound)
		return
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

// RegisterError renders the registration failure view.
func (h *AuthHandler) RegisterError(w http.ResponseWriter, _ *http.Request) {
	servePage(w, registerErrorPage)
}

// Logout destroys the session and redirects to /.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if sess := middleware.SessionFromContext(r.Context()); sess != nil {
		h.Sessions.Destroy(sess.Token)
	}
	http.SetCookie(w, sessionCookie("", -1))
	http.Redirect(w, r, "/", http.StatusFound)
}

// sessionCookie builds the cookie carrying the opaque session token.
func sessionCookie(token string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// servePage writes a static HTML page.
func servePage(w http.ResponseWriter, page string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(page))
}
