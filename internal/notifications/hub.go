package notifications

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"docvault/internal/middleware"

	"github.com/gofiber/websocket/v2"
)

const (
	// Max connections per admin
	maxConnsPerUser = 8
	// Max total connections
	maxTotalConns = 1000
)

var (
	ErrHubClosed       = errors.New("hub is shutting down")
	ErrServerConnLimit = errors.New("server connection limit reached")
	ErrUserConnLimit   = errors.New("user connection limit reached")
)

// AdminHub fans admin events out to every connected administrator.
type AdminHub struct {
	mu         sync.RWMutex
	conns      map[string]map[*Client]struct{}
	totalConns int
	closed     bool
}

func NewAdminHub() *AdminHub {
	return &AdminHub{conns: make(map[string]map[*Client]struct{})}
}

// Name returns a human-readable identifier for this hub.
func (h *AdminHub) Name() string { return "admin hub" }

// Register adds a connection for userID. conn may be nil in tests.
func (h *AdminHub) Register(userID string, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHubClosed
	}
	if h.totalConns >= maxTotalConns {
		return nil, ErrServerConnLimit
	}

	m, ok := h.conns[userID]
	if !ok {
		m = make(map[*Client]struct{})
		h.conns[userID] = m
	}
	if len(m) >= maxConnsPerUser {
		return nil, ErrUserConnLimit
	}

	client := NewClient(h, conn, userID)
	m[client] = struct{}{}
	h.totalConns++
	middleware.ActiveWebSockets.Inc()
	return client, nil
}

// UnregisterClient removes client and closes its send channel. Safe to call twice.
func (h *AdminHub) UnregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	m, ok := h.conns[client.UserID]
	if !ok {
		return
	}
	if _, exists := m[client]; !exists {
		return
	}
	delete(m, client)
	if len(m) == 0 {
		delete(h.conns, client.UserID)
	}
	h.totalConns--
	middleware.ActiveWebSockets.Dec()
	close(client.Send)
}

// ConnectionCount returns the number of registered clients.
func (h *AdminHub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.totalConns
}

// BroadcastAll sends message to every connected administrator.
func (h *AdminHub) BroadcastAll(message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	data := []byte(message)
	for _, clients := range h.conns {
		for c := range clients {
			c.TrySend(data)
		}
	}
}

// StartWiring forwards every event the notifier receives to the connected administrators.
func (h *AdminHub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartAdminSubscriber(ctx, h.BroadcastAll)
}

// Shutdown closes every client's send channel; each WritePump then sends a
// going-away frame and closes its connection.
func (h *AdminHub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true

	for _, clients := range h.conns {
		for client := range clients {
			close(client.Send)
			middleware.ActiveWebSockets.Dec()
		}
	}
	middleware.Logger.Info("Admin hub closed", slog.Int("connections", h.totalConns))
	h.conns = make(map[string]map[*Client]struct{})
	h.totalConns = 0
	return nil
}
