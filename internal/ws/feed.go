package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// SessionEvent is one entry of the live mining feed streamed to operator
// dashboards.
type SessionEvent struct {
	Kind         string    `json:"kind"`
	SessionID    int64     `json:"session_id"`
	UserID       int64     `json:"user_id"`
	AddedSeconds int64     `json:"added_seconds,omitempty"`
	AddedTokens  float64   `json:"added_tokens,omitempty"`
	TS           time.Time `json:"ts"`
}

// Feed fans session events out to connected subscribers. Publishing never
// blocks the lifecycle handlers; slow subscribers drop messages.
type Feed struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
	logger  *zap.Logger
}

// NewFeed builds an empty feed.
func NewFeed(logger *zap.Logger) *Feed {
	return &Feed{
		clients: make(map[*client]struct{}),
		logger:  logger,
	}
}

// Publish broadcasts the event to all subscribers.
func (f *Feed) Publish(event SessionEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		f.logger.Warn("failed to encode feed event", zap.Error(err))
		return
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	for c := range f.clients {
		c.enqueue(data)
	}
}

// SubscriberCount returns the number of connected clients.
func (f *Feed) SubscriberCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.clients)
}

func (f *Feed) add(c *client) {
	f.mu.Lock()
	f.clients[c] = struct{}{}
	f.mu.Unlock()
}

func (f *Feed) remove(c *client) {
	f.mu.Lock()
	delete(f.clients, c)
	f.mu.Unlock()
}

// feedConn is the subset of *websocket.Conn the write pump needs.
type feedConn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

type client struct {
	conn   feedConn
	send   chan []byte
	logger *zap.Logger

	closeOnce sync.Once
	done      chan struct{}
}

func newClient(conn feedConn, logger *zap.Logger) *client {
	return &client{
		conn:   conn,
		send:   make(chan []byte, 16),
		logger: logger,
		done:   make(chan struct{}),
	}
}

func (c *client) enqueue(msg []byte) {
	select {
	case c.send <- msg:
	default:
		c.logger.Warn("dropping feed message, subscriber buffer full")
	}
}

func (c *client) writePump(pingInterval time.Duration) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	defer c.conn.Close()

	for {
		select {
		case <-c.done:
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case msg := <-c.send:
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return
			}
		}
	}
}

func (c *client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}
