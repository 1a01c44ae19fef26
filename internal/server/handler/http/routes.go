package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/avelazquez/livemarket/internal/middleware"
	"github.com/avelazquez/livemarket/internal/session"
)

// NewRouter constructs the HTTP handler serving the whole application.
//
// Routes:
//
//	GET  /              → redirect to /datos
//	GET  /login         → login page (redirects to /datos when authenticated)
//	POST /login         → authenticate; success → /datos, failure → /faillogin
//	GET  /faillogin     → login failure view
//	GET  /register      → register page (redirects when authenticated)
//	POST /register      → create account; success → /, failure → /failregister
//	GET  /failregister  → registration failure view
//	GET  /info          → process diagnostics
//	GET  /logout        → destroy the session if any, redirect to /
//	GET  /datos         → main page, counts the visit (auth required)
//	GET  /get-data      → user record minus secrets + visit counter (auth required)
//	GET  /ws            → WebSocket upgrade into the broadcast hub (auth required)
//
// Middleware chain (applied in order):
//  1. WithRequestLogging(logger) — logs incoming requests
//  2. WithSession(sessions)      — resolves the session cookie
//  3. RequireAuth                — on the protected group only, redirects to /login
func NewRouter(
	authHandler *AuthHandler,
	dataHandler *DataHandler,
	wsHandler http.Handler,
	sessions *session.Store,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Log each request and its metadata
	r.Use(middleware.WithRequestLogging(logger))
	// Resolve the session cookie for every request
	r.Use(middleware.WithSession(sessions))

	// Public endpoints
	r.Get("/", dataHandler.Root)
	r.Get("/login", authHandler.LoginPage)
	r.Post("/login", authHandler.Login)
	r.Get("/faillogin", authHandler.LoginError)
	r.Get("/register", authHandler.RegisterPage)
	r.Post("/register", authHandler.Register)
	r.Get("/failregister", authHandler.RegisterError)
	r.Get("/info", dataHandler.Info)
	// Logout needs no guard: it only tears down whatever session is present.
	r.Get("/logout", authHandler.Logout)

	// Protected group: requires a live session
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/datos", dataHandler.Datos)
		r.Get("/get-data", dataHandler.GetData)
		r.Get("/ws", wsHandler.ServeHTTP)
	})

	return r
}
