// Package ws keeps the registry of live websocket connections and delivers
// push payloads to them. It implements the push channel port; subscription
// state lives in the database, only the sockets themselves live here.
package ws

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fulfillment/internal/core/ports"

	"github.com/gorilla/websocket"
)

const writeTimeout = 10 * time.Second

// Hub is the in-memory connection registry. Connection ids are issued by
// the inbound adapter when a socket is upgraded.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client
	logger  *slog.Logger
}

type client struct {
	conn *websocket.Conn
	// Serializes writes: gorilla allows one concurrent writer per socket.
	writeMu sync.Mutex
}

// NewHub creates an empty connection registry.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*client),
		logger:  logger.With("component", "ws_hub"),
	}
}

// Register adds an upgraded socket under its connection id.
func (h *Hub) Register(connectionID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if existing, ok := h.clients[connectionID]; ok {
		_ = existing.conn.Close()
	}
	h.clients[connectionID] = &client{conn: conn}

	h.logger.Info("connection registered", "connection_id", connectionID)
}

// Unregister removes and closes a socket. Unknown ids are a no-op.
func (h *Hub) Unregister(connectionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c, ok := h.clients[connectionID]; ok {
		_ = c.conn.Close()
		delete(h.clients, connectionID)
		h.logger.Info("connection unregistered", "connection_id", connectionID)
	}
}

// Send delivers a payload to one registered connection. A missing or dead
// socket reports ports.ErrChannelGone so the caller can drop its
// subscriptions.
func (h *Hub) Send(_ context.Context, connectionID string, payload []byte) error {
	h.mu.RLock()
	c, ok := h.clients[connectionID]
	h.mu.RUnlock()

	if !ok {
		return ports.ErrChannelGone
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		h.Unregister(connectionID)
		return fmt.Errorf("%w: %w", ports.ErrChannelGone, err)
	}

	return nil
}

// Len reports the number of live connections.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
