package ws

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// writeWait bounds a single write to a client.
	writeWait = 10 * time.Second
	// pongWait is how long a connection may stay silent before it is
	// considered dead.
	pongWait = 60 * time.Second
	// pingPeriod is the keepalive interval. Must be shorter than pongWait.
	pingPeriod = 54 * time.Second
	// maxMessageSize limits inbound frames.
	maxMessageSize = 4096
	// sendQueueSize buffers outbound payloads per client.
	sendQueueSize = 256
)

// Client represents one authenticated WebSocket connection.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	log  *zap.Logger

	// username comes from the HTTP session that authenticated the upgrade.
	username string
	addr     string
}

// NewClient wraps an upgraded connection. The caller registers the client
// with the hub and starts the pumps.
func NewClient(hub *Hub, conn *websocket.Conn, username, addr string) *Client {
	if conn != nil {
		conn.SetReadLimit(maxMessageSize)
	}
	return &Client{
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, sendQueueSize),
		log:      hub.log,
		username: username,
		addr:     addr,
	}
}

// readPump reads client events and hands them to the hub until the
// connection drops. Run in its own goroutine, one per connection.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Warn("websocket read", zap.String("user", c.username), zap.Error(err))
			}
			return
		}

		var ev Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			c.log.Warn("invalid event", zap.String("user", c.username), zap.Error(err))
			continue
		}
		c.hub.Dispatch(c, ev)
	}
}

// writePump drains the send queue to the connection and keeps it alive with
// pings. Run in its own goroutine, one per connection. It exits when the hub
// closes the send queue or a write fails.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
