package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/dfcarvalho/tarefas-api/internal/events"
	"github.com/dfcarvalho/tarefas-api/internal/platform/logger"
	"github.com/gorilla/websocket"
)

// WSHub fans task lifecycle events out to connected websocket clients.
// It implements events.EventHandler so it can be registered directly with
// the event emitter.
type WSHub struct {
	upgrader    websocket.Upgrader
	connections map[*websocket.Conn]bool
	mu          sync.Mutex
	logger      *slog.Logger
}

// NewWSHub creates a new hub with no connected clients.
// If logger is nil, a default logger will be used.
func NewWSHub(logger *slog.Logger) *WSHub {
	if logger == nil {
		logger = slog.Default()
	}

	return &WSHub{
		upgrader: websocket.Upgrader{
			// The feed is read-only and carries no credentials, so any
			// origin may subscribe.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		connections: make(map[*websocket.Conn]bool),
		logger:      logger.With(slog.String("component", "ws_hub")),
	}
}

// Ensure WSHub implements events.EventHandler
var _ events.EventHandler = (*WSHub)(nil)

// HandleEvent implements events.EventHandler by broadcasting the event to
// every connected client. Clients whose connection is gone are dropped;
// that is not an error for the emitter.
func (h *WSHub) HandleEvent(ctx context.Context, event *events.TaskEvent) error {
	message, err := json.Marshal(event)
	if err != nil {
		return err
	}

	h.broadcast(message)
	return nil
}

// broadcast writes the message to all connected clients, pruning any
// connection that fails.
func (h *WSHub) broadcast(message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.connections {
		if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
			h.logger.Debug("dropping websocket client",
				slog.String("error", err.Error()),
				slog.String("remote_addr", conn.RemoteAddr().String()))
			delete(h.connections, conn)
			_ = conn.Close()
		}
	}
}

// ClientCount returns the number of currently connected clients.
func (h *WSHub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.connections)
}

// ServeWS handles GET /ws requests. It upgrades the connection and keeps it
// registered until the client goes away.
func (h *WSHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	// Get logger from context or use default
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error response.
		log.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	h.register(conn)
	log.Debug("websocket client connected",
		slog.String("remote_addr", conn.RemoteAddr().String()),
		slog.Int("client_count", h.ClientCount()))

	// The feed is write-only; the read loop exists to detect the peer
	// closing the connection.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.unregister(conn)
	log.Debug("websocket client disconnected",
		slog.Int("client_count", h.ClientCount()))
}

func (h *WSHub) register(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connections[conn] = true
}

func (h *WSHub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.connections[conn]; ok {
		delete(h.connections, conn)
		_ = conn.Close()
	}
}
