package events

import (
	"context"
	"log/slog"
	"sync"

	"github.com/phrazzld/taskhub/internal/platform/logger"
)

// InMemoryEmitter dispatches events synchronously to every registered handler,
// one event at a time, in registration order.
type InMemoryEmitter struct {
	handlers []Handler
	mu       sync.RWMutex
	logger   *slog.Logger
}

// NewInMemoryEmitter creates a new instance of InMemoryEmitter.
func NewInMemoryEmitter(log *slog.Logger) *InMemoryEmitter {
	if log == nil {
		log = slog.Default()
	}
	return &InMemoryEmitter{
		handlers: make([]Handler, 0),
		logger:   log.With(slog.String("component", "event_emitter")),
	}
}

// RegisterHandler adds a new event handler to receive events.
func (e *InMemoryEmitter) RegisterHandler(handler Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers = append(e.handlers, handler)
	e.logger.Debug("registered new event handler", slog.Int("handler_count", len(e.handlers)))
}

// Emit publishes each event to all registered handlers.
// A failing handler does not stop delivery to the others; the first error
// encountered is returned.
func (e *InMemoryEmitter) Emit(ctx context.Context, events ...Event) error {
	e.mu.RLock()
	handlers := make([]Handler, len(e.handlers))
	copy(handlers, e.handlers)
	e.mu.RUnlock()

	log := logger.FromContextOrDefault(ctx, e.logger)

	if len(handlers) == 0 && len(events) > 0 {
		log.Warn("no handlers registered for events", slog.Int("event_count", len(events)))
		return nil
	}

	var firstErr error
	for _, event := range events {
		for i, handler := range handlers {
			if err := handler.HandleEvent(ctx, event); err != nil {
				log.Error("handler failed to process event",
					slog.String("error", err.Error()),
					slog.Int("handler_index", i),
					slog.String("event_id", event.ID.String()),
					slog.String("event_type", string(event.Type)))
				if firstErr == nil {
					firstErr = err
				}
			}
		}
	}

	return firstErr
}
