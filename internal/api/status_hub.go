package api

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rubuy74/market-ops/internal/api/shared"
	"github.com/rubuy74/market-ops/internal/domain"
	"github.com/rubuy74/market-ops/internal/service"
)

const (
	// clientBuffer is how many updates a slow client may fall behind before
	// it is disconnected.
	clientBuffer = 64
	writeTimeout = 5 * time.Second
)

// StatusUpdate is pushed to stream subscribers on every status transition.
type StatusUpdate struct {
	RequestID string               `json:"requestId"`
	Operation domain.Operation     `json:"operation"`
	MarketID  string               `json:"marketId"`
	Status    domain.RequestStatus `json:"status"`
	Message   string               `json:"message"`
	UpdatedAt time.Time            `json:"updatedAt"`
}

type streamClient struct {
	conn      *websocket.Conn
	send      chan StatusUpdate
	requestID uuid.UUID // uuid.Nil subscribes to every request
}

// StatusHub manages websocket subscribers and broadcasts request status
// transitions to them.
type StatusHub struct {
	mu       sync.RWMutex
	clients  map[*streamClient]struct{}
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

var _ service.StatusNotifier = (*StatusHub)(nil)

// NewStatusHub creates an empty StatusHub.
func NewStatusHub(logger *slog.Logger) *StatusHub {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatusHub{
		clients: make(map[*streamClient]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger.With(slog.String("component", "status_hub")),
	}
}

// Notify implements service.StatusNotifier. It never blocks; a client whose
// buffer is full is dropped.
func (h *StatusHub) Notify(req domain.MarketRequest) {
	update := StatusUpdate{
		RequestID: req.ID.String(),
		Operation: req.Operation,
		MarketID:  req.MarketID,
		Status:    req.Status,
		Message:   req.Message,
		UpdatedAt: req.UpdatedAt,
	}

	h.mu.RLock()
	var slow []*streamClient
	for c := range h.clients {
		if c.requestID != uuid.Nil && c.requestID != req.ID {
			continue
		}
		select {
		case c.send <- update:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.Warn("dropping slow stream client",
			slog.String("remote_addr", c.conn.RemoteAddr().String()))
		h.remove(c)
	}
}

// ServeHTTP upgrades the request to a websocket and streams status updates.
// An optional requestId query parameter limits the stream to one request.
func (h *StatusHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var filter uuid.UUID
	if raw := r.URL.Query().Get("requestId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request ID")
			return
		}
		filter = id
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	c := &streamClient{
		conn:      conn,
		send:      make(chan StatusUpdate, clientBuffer),
		requestID: filter,
	}
	h.add(c)

	go h.writeLoop(c)
	h.readLoop(c)
}

// readLoop discards client frames and returns once the connection closes.
func (h *StatusHub) readLoop(c *streamClient) {
	defer h.remove(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *StatusHub) writeLoop(c *streamClient) {
	for update := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteJSON(update); err != nil {
			h.logger.Debug("websocket write error",
				slog.String("remote_addr", c.conn.RemoteAddr().String()),
				slog.String("error", err.Error()))
			h.remove(c)
			return
		}
	}
}

func (h *StatusHub) add(c *streamClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	h.logger.Info("stream client connected",
		slog.String("remote_addr", c.conn.RemoteAddr().String()))
}

func (h *StatusHub) remove(c *streamClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	_ = c.conn.Close()
	h.logger.Info("stream client disconnected",
		slog.String("remote_addr", c.conn.RemoteAddr().String()))
}

// Close disconnects every subscriber.
func (h *StatusHub) Close() {
	h.mu.RLock()
	clients := make([]*streamClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		h.remove(c)
	}
}
