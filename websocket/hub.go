package websocket

import (
	"context"
	"sync"

	"github.com/anjiri1684/travel_agency/events"
	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Conn is the part of a websocket connection the hub needs.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

type Client struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Conn   Conn
}

// Hub pushes booking events to connected admin dashboards. One goroutine owns the
// client set; everything else talks to it through channels.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	broadcast  chan events.Event
	log        logrus.FieldLogger

	mu      sync.RWMutex
	clients map[uuid.UUID]*Client
}

func NewHub(log logrus.FieldLogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan events.Event, 64),
		log:        log,
		clients:    make(map[uuid.UUID]*Client),
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, client := range h.clients {
				client.Conn.Close()
				delete(h.clients, id)
			}
			h.mu.Unlock()
			return
		case client := <-h.register:
			h.log.WithField("user_id", client.UserID).Debug("Admin feed client registered")
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()
		case client := <-h.unregister:
			h.log.WithField("user_id", client.UserID).Debug("Admin feed client unregistered")
			h.mu.Lock()
			delete(h.clients, client.ID)
			h.mu.Unlock()
		case event := <-h.broadcast:
			h.deliver(event)
		}
	}
}

func (h *Hub) deliver(event events.Event) {
	h.mu.RLock()
	var failed []*Client
	for _, client := range h.clients {
		if err := client.Conn.WriteJSON(event); err != nil {
			h.log.WithError(err).WithField("user_id", client.UserID).Warn("Error sending event to admin feed client")
			failed = append(failed, client)
		}
	}
	h.mu.RUnlock()

	if len(failed) == 0 {
		return
	}
	h.mu.Lock()
	for _, client := range failed {
		client.Conn.Close()
		delete(h.clients, client.ID)
	}
	h.mu.Unlock()
}

// Publish queues the event for delivery. When the buffer is full the event is dropped,
// a slow dashboard must never hold up a booking request.
func (h *Hub) Publish(_ context.Context, event events.Event) error {
	select {
	case h.broadcast <- event:
	default:
		h.log.WithField("type", event.Type).Warn("Admin feed buffer full, dropping event")
	}
	return nil
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Serve registers the connection and blocks reading from it until the client goes away.
func (h *Hub) Serve(c *websocket.Conn, userID uuid.UUID) {
	client := &Client{ID: uuid.New(), UserID: userID, Conn: c}
	h.register <- client
	defer func() { h.unregister <- client }()

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			return
		}
	}
}
