// Package ws implements the realtime broadcast hub. The hub owns the set of
// live WebSocket connections and the process-wide in-memory product list,
// fans product and chat updates out to every connection, and drives the
// persistence side effects for both.
package ws

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

// Wire event names shared with the browser clients.
const (
	// EventProducts carries the full product list, server to client.
	EventProducts = "products"
	// EventUpdateProducts carries one new product record, client to server.
	EventUpdateProducts = "update-products"
	// EventMessages carries the full chat history, server to client.
	EventMessages = "messages"
	// EventUpdateChat carries one new chat message, client to server.
	EventUpdateChat = "update-chat"
)

// Event is the JSON envelope exchanged over the socket.
type Event struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data"`
}

// MessageStore persists chat messages and serves the full history.
type MessageStore interface {
	Append(ctx context.Context, message map[string]interface{}) error
	ListAll(ctx context.Context) ([]map[string]interface{}, error)
}

// ProductSink mirrors the in-memory product list into the relational store.
type ProductSink interface {
	SaveAll(ctx context.Context, products []json.RawMessage) error
}

// inbound pairs a client event with the connection it arrived on.
type inbound struct {
	client *Client
	event  Event
}

// Hub manages all WebSocket connections and the shared product accumulator.
// All state is owned by the single Run goroutine: clients and products are
// only touched from the event loop, so handlers never race each other.
type Hub struct {
	messages MessageStore
	sink     ProductSink
	log      *zap.Logger

	clients map[*Client]bool
	// products is the process-wide accumulator. Append-only; it resets only
	// when the process restarts. The relational sink receives a copy of the
	// whole list on every update.
	products []json.RawMessage

	register   chan *Client
	unregister chan *Client
	events     chan inbound

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewHub creates a hub wired to the given stores. Call Run in a goroutine
// before registering clients.
func NewHub(messages MessageStore, sink ProductSink, log *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		messages:   messages,
		sink:       sink,
		log:        log,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		events:     make(chan inbound),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
}

// Register hands a new connection to the event loop. The client receives the
// current product list and the full chat history as its initial payload.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.ctx.Done():
	}
}

// Unregister removes a connection from the event loop and releases its send
// queue. Safe to call for clients the hub never saw.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.ctx.Done():
	}
}

// Dispatch queues a client event for handling on the event loop.
func (h *Hub) Dispatch(c *Client, ev Event) {
	select {
	case h.events <- inbound{client: c, event: ev}:
	case <-h.ctx.Done():
	}
}

// Run is the hub's event loop. It handles registration, unregistration, and
// client events until Shutdown is called. Run this in its own goroutine.
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.ctx.Done():
			h.closeClients()
			return

		case c := <-h.register:
			h.clients[c] = true
			h.log.Info("client connected",
				zap.String("user", c.username),
				zap.String("addr", c.addr),
				zap.Int("total", len(h.clients)),
			)
			h.sendSnapshot(c)

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				h.log.Info("client disconnected",
					zap.String("user", c.username),
					zap.Int("total", len(h.clients)),
				)
			}

		case in := <-h.events:
			h.handleEvent(in)
		}
	}
}

// handleEvent routes one inbound client event.
func (h *Hub) handleEvent(in inbound) {
	switch in.event.Name {
	case EventUpdateProducts:
		h.handleUpdateProducts(in.event.Data)
	case EventUpdateChat:
		h.handleUpdateChat(in.event.Data)
	default:
		h.log.Warn("unknown event",
			zap.String("event", in.event.Name),
			zap.String("user", in.client.username),
		)
	}
}

// handleUpdateProducts appends the record to the shared list, mirrors the
// whole list into the relational sink, and rebroadcasts the list to every
// connection. The sink write is fire-and-forget: its failure is logged and
// the broadcast proceeds regardless.
func (h *Hub) handleUpdateProducts(record json.RawMessage) {
	h.products = append(h.products, record)

	batch := make([]json.RawMessage, len(h.products))
	copy(batch, h.products)
	go func() {
		if err := h.sink.SaveAll(context.Background(), batch); err != nil {
			h.log.Error("persist products", zap.Error(err))
		}
	}()

	h.broadcast(EventProducts, h.products)
}

// handleUpdateChat persists the message, re-reads the full history, and
// rebroadcasts it to every connection. Store failures are logged and the
// flow continues where it can.
func (h *Hub) handleUpdateChat(data json.RawMessage) {
	var message map[string]interface{}
	if err := json.Unmarshal(data, &message); err != nil {
		h.log.Warn("invalid chat payload", zap.Error(err))
		return
	}

	if err := h.messages.Append(h.ctx, message); err != nil {
		h.log.Error("persist chat message", zap.Error(err))
	}

	history, err := h.messages.ListAll(h.ctx)
	if err != nil {
		h.log.Error("read chat history", zap.Error(err))
		return
	}
	h.broadcast(EventMessages, history)
}

// sendSnapshot pushes the current product list and chat history to one
// newly connected client.
func (h *Hub) sendSnapshot(c *Client) {
	if payload, err := marshalEvent(EventProducts, h.products); err == nil {
		h.trySend(c, payload)
	} else {
		h.log.Error("marshal products snapshot", zap.Error(err))
	}

	history, err := h.messages.ListAll(h.ctx)
	if err != nil {
		h.log.Error("read chat history", zap.Error(err))
		return
	}
	if payload, err := marshalEvent(EventMessages, history); err == nil {
		h.trySend(c, payload)
	} else {
		h.log.Error("marshal messages snapshot", zap.Error(err))
	}
}

// broadcast fans an event out to every connected client. Clients whose send
// queue is full are dropped; there is no queuing or replay for them.
func (h *Hub) broadcast(name string, data interface{}) {
	payload, err := marshalEvent(name, data)
	if err != nil {
		h.log.Error("marshal broadcast", zap.String("event", name), zap.Error(err))
		return
	}

	var stale []*Client
	for c := range h.clients {
		if !h.trySend(c, payload) {
			stale = append(stale, c)
		}
	}
	for _, c := range stale {
		delete(h.clients, c)
		close(c.send)
		h.log.Warn("client dropped, send buffer full", zap.String("user", c.username))
	}
}

// trySend queues payload for one client without blocking the event loop.
func (h *Hub) trySend(c *Client, payload []byte) bool {
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// closeClients closes every remaining connection during shutdown.
func (h *Hub) closeClients() {
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
		if c.conn != nil {
			_ = c.conn.Close()
		}
	}
}

// Shutdown stops the event loop and closes all connections. It returns once
// the loop has exited or the timeout elapses.
func (h *Hub) Shutdown(timeout time.Duration) error {
	h.cancel()

	select {
	case <-h.done:
		return nil
	case <-time.After(timeout):
		return context.DeadlineExceeded
	}
}

// marshalEvent builds the JSON envelope for one server-to-client event.
// A nil list marshals as an empty array so clients always see a list.
func marshalEvent(name string, data interface{}) ([]byte, error) {
	switch v := data.(type) {
	case []json.RawMessage:
		if v == nil {
			data = []json.RawMessage{}
		}
	case []map[string]interface{}:
		if v == nil {
			data = []map[string]interface{}{}
		}
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Event{Name: name, Data: raw})
}
