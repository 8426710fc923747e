package realtime

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/taskhub/internal/platform/logger"
)

// Hub is the in-process Registry.
type Hub struct {
	mu       sync.RWMutex
	channels map[uuid.UUID]Channel
	logger   *slog.Logger
}

var _ Registry = (*Hub)(nil)

// NewHub creates an empty Hub.
func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		channels: make(map[uuid.UUID]Channel),
		logger:   log.With(slog.String("component", "realtime_hub")),
	}
}

// Register implements Registry.
func (h *Hub) Register(userID uuid.UUID, ch Channel) {
	h.mu.Lock()
	prev, ok := h.channels[userID]
	h.channels[userID] = ch
	h.mu.Unlock()

	if ok && prev != ch {
		h.logger.Debug("replacing existing channel", slog.String("user_id", userID.String()))
		prev.Close()
	}
}

// Unregister implements Registry.
func (h *Hub) Unregister(userID uuid.UUID, ch Channel) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if cur, ok := h.channels[userID]; ok && cur == ch {
		delete(h.channels, userID)
		return true
	}
	return false
}

// Publish implements Registry.
func (h *Hub) Publish(ctx context.Context, userID uuid.UUID, event string, payload any) {
	h.mu.RLock()
	ch, ok := h.channels[userID]
	h.mu.RUnlock()

	if !ok {
		return
	}
	if !ch.Send(event, payload) {
		logger.FromContextOrDefault(ctx, h.logger).Warn("dropped realtime event",
			slog.String("user_id", userID.String()),
			slog.String("event", event))
	}
}

// Connected reports whether the user currently has a channel.
func (h *Hub) Connected(userID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.channels[userID]
	return ok
}

// Len returns the number of connected users.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels)
}
