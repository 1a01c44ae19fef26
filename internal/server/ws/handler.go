package ws

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/avelazquez/livemarket/internal/middleware"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Handler upgrades authenticated HTTP requests into hub connections.
type Handler struct {
	hub *Hub
	log *zap.Logger
}

// NewHandler creates the WebSocket upgrade handler for the given hub.
func NewHandler(hub *Hub, log *zap.Logger) *Handler {
	return &Handler{hub: hub, log: log}
}

// ServeHTTP reconciles the upgrade request with the HTTP session store: only
// requests carrying a live session may join the hub. The session's username
// is attached to the connection.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())
	if sess == nil {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := NewClient(h.hub, conn, sess.Username, r.RemoteAddr)
	h.hub.Register(client)
	go client.writePump()
	go client.readPump()
}
