package notify

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskhub/internal/domain"
	"github.com/phrazzld/taskhub/internal/events"
	"github.com/phrazzld/taskhub/internal/platform/logger"
	"github.com/phrazzld/taskhub/internal/realtime"
	"github.com/phrazzld/taskhub/internal/redact"
	"github.com/phrazzld/taskhub/internal/store"
)

// TaskUpdatedPayload is the data of the legacy "taskUpdated" push.
type TaskUpdatedPayload struct {
	TaskID  *uuid.UUID `json:"taskId,omitempty"`
	Message string     `json:"message"`
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLegacyEvents makes task_updated notifications also push the
// deprecated "taskUpdated" event.
func WithLegacyEvents(enabled bool) Option {
	return func(d *Dispatcher) {
		d.legacyEvents = enabled
	}
}

// Dispatcher persists a notification for each event and pushes it to the
// recipient's live channel.
type Dispatcher struct {
	notifications store.NotificationStore
	registry      realtime.Registry
	legacyEvents  bool
	logger        *slog.Logger
}

var _ events.Handler = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher.
func NewDispatcher(
	notifications store.NotificationStore,
	registry realtime.Registry,
	log *slog.Logger,
	opts ...Option,
) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	d := &Dispatcher{
		notifications: notifications,
		registry:      registry,
		logger:        log.With(slog.String("component", "notification_dispatcher")),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Send stores a notification for the event and publishes it as
// "newNotification". It returns nil when the notification could not be
// stored; that failure is logged and nothing is pushed.
func (d *Dispatcher) Send(ctx context.Context, ev events.Event) *domain.Notification {
	log := logger.FromContextOrDefault(ctx, d.logger).With(
		slog.String("recipient", ev.Recipient.String()),
		slog.String("type", string(ev.Type)),
	)

	n, err := domain.NewNotification(ev.Recipient, ev.Type, ev.Message, ev.TaskID)
	if err == nil {
		err = d.notifications.Create(ctx, n)
	}
	if err != nil {
		log.Error("failed to persist notification",
			redact.ErrorAttr(err),
			slog.String("event_id", ev.ID.String()))
		return nil
	}

	d.registry.Publish(ctx, n.UserID, realtime.EventNewNotification, n)

	if d.legacyEvents && ev.Type == domain.NotificationTaskUpdated {
		d.registry.Publish(ctx, n.UserID, realtime.EventTaskUpdated, TaskUpdatedPayload{
			TaskID:  n.TaskID,
			Message: n.Message,
		})
	}

	log.Debug("notification dispatched", slog.String("notification_id", n.ID.String()))
	return n
}

// HandleEvent implements events.Handler. It never fails: a notification
// that cannot be stored is dropped.
func (d *Dispatcher) HandleEvent(ctx context.Context, ev events.Event) error {
	d.Send(ctx, ev)
	return nil
}
