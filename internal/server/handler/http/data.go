package http

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"runtime"

	"go.uber.org/zap"

	"github.com/avelazquez/livemarket/internal/middleware"
	"github.com/avelazquez/livemarket/internal/session"
)

// DataHandler serves the authenticated main page, the session data endpoint,
// and the unauthenticated process diagnostics endpoint.
type DataHandler struct {
	// AuthService rehydrates user records for session usernames.
	AuthService AuthService
	// Sessions is the server-side session store.
	Sessions *session.Store
	// Log is the structured logger.
	Log *zap.Logger
}

// Root redirects to the main page.
func (h *DataHandler) Root(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/datos", http.StatusFound)
}

// Datos serves the main page and counts the visit on the session. Exactly one
// increment per authenticated page view.
func (h *DataHandler) Datos(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())
	h.Sessions.IncrementCounter(sess.Token)
	servePage(w, datosPage)
}

// GetData returns the session's user record minus secrets together with the
// visit counter. The record is looked up fresh from the credential store on
// every call; only the username lives in the session.
func (h *DataHandler) GetData(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())

	user, err := h.AuthService.FindByUsername(r.Context(), sess.Username)
	if err != nil {
		h.Log.Error("load user for session", zap.String("username", sess.Username), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if user == nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"user":     user,
		"contador": sess.Counter,
	})
}

// Info returns process diagnostics. Unauthenticated.
func (h *DataHandler) Info(w http.ResponseWriter, _ *http.Request) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	execPath, _ := os.Executable()
	wd, _ := os.Getwd()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"args":       os.Args,
		"platform":   runtime.GOOS,
		"goVersion":  runtime.Version(),
		"memory":     mem.Sys,
		"execPath":   execPath,
		"pid":        os.Getpid(),
		"projectDir": filepath.Base(wd),
	})
}
