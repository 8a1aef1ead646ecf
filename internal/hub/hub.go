package hub

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ppiankov/veracity/internal/model"
)

// EventNewFactCheck is the event type pushed to subscribers when a new
// record is published.
const EventNewFactCheck = "NEW_FACT_CHECK"

// Event is the typed envelope sent over each subscriber connection.
type Event struct {
	Type      string                `json:"type"`
	FactCheck model.FactCheckRecord `json:"factCheck"`
}

// Conn is the subset of *websocket.Conn the hub needs; tests substitute
// a double that can fail on demand.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// subscriber pairs a connection with its write lock. gorilla/websocket
// permits at most one concurrent writer per connection, and publishes
// run concurrently, so every write to one connection must hold its lock.
type subscriber struct {
	mu   sync.Mutex
	conn Conn
}

// send pushes one event over the connection. The lock spans the write
// deadline and the write itself so concurrent publishes cannot
// interleave frames on the same connection.
func (s *subscriber) send(event Event, timeout time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ws, ok := s.conn.(*websocket.Conn); ok {
		_ = ws.SetWriteDeadline(time.Now().Add(timeout))
	}
	return s.conn.WriteJSON(event)
}

// Hub holds the live subscriber connections and fans published records
// out to them. Membership changes are safe under concurrent publishes
// and per-connection receive loops: a failed send evicts only that
// subscriber while delivery continues for the rest.
type Hub struct {
	mu           sync.Mutex
	subs         map[Conn]*subscriber
	writeTimeout time.Duration
	logger       *slog.Logger
}

// New creates an empty hub.
func New(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}

	return &Hub{
		subs:         make(map[Conn]*subscriber),
		writeTimeout: 10 * time.Second,
		logger:       logger,
	}
}

// Register adds a subscriber connection.
func (h *Hub) Register(c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subs[c] = &subscriber{conn: c}
	h.logger.Info("subscriber connected", "active", len(h.subs))
}

// Unregister removes a subscriber connection. Safe to call for
// connections already evicted by a failed send.
func (h *Hub) Unregister(c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[c]; ok {
		delete(h.subs, c)
		h.logger.Info("subscriber disconnected", "active", len(h.subs))
	}
}

// Count returns the number of active subscribers.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Publish fans the record out to every live subscriber. Connections
// whose send fails are closed and removed; the rest still receive the
// event, including under concurrent publishes.
func (h *Hub) Publish(record model.FactCheckRecord) int {
	event := Event{
		Type:      EventNewFactCheck,
		FactCheck: record,
	}

	h.mu.Lock()
	targets := make([]*subscriber, 0, len(h.subs))
	for _, s := range h.subs {
		targets = append(targets, s)
	}
	h.mu.Unlock()

	delivered := 0
	for _, s := range targets {
		if err := s.send(event, h.writeTimeout); err != nil {
			h.logger.Warn("send failed, removing subscriber", "error", err)
			_ = s.conn.Close()
			h.Unregister(s.conn)
			continue
		}
		delivered++
	}

	return delivered
}
