package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskhub/internal/domain"
)

// Event asks for a notification to be delivered to one recipient.
type Event struct {
	ID        uuid.UUID               `json:"id"`
	Recipient uuid.UUID               `json:"recipient"`
	Type      domain.NotificationType `json:"type"`
	Message   string                  `json:"message"`
	TaskID    *uuid.UUID              `json:"taskId,omitempty"`
	CreatedAt time.Time               `json:"createdAt"`
}

// NewEvent creates an Event with a fresh ID.
func NewEvent(
	recipient uuid.UUID,
	typ domain.NotificationType,
	message string,
	taskID *uuid.UUID,
) Event {
	if taskID != nil {
		id := *taskID
		taskID = &id
	}
	return Event{
		ID:        uuid.New(),
		Recipient: recipient,
		Type:      typ,
		Message:   message,
		TaskID:    taskID,
		CreatedAt: time.Now().UTC(),
	}
}

// Handler processes events.
type Handler interface {
	// HandleEvent processes the given event within the provided context.
	HandleEvent(ctx context.Context, event Event) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, event Event) error

// HandleEvent calls f(ctx, event).
func (f HandlerFunc) HandleEvent(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Emitter publishes events to whoever handles them.
type Emitter interface {
	// Emit publishes the events in order.
	Emit(ctx context.Context, events ...Event) error
}

// EmitterFunc adapts a function to the Emitter interface.
type EmitterFunc func(ctx context.Context, events ...Event) error

// Emit calls f(ctx, events...).
func (f EmitterFunc) Emit(ctx context.Context, events ...Event) error {
	return f(ctx, events...)
}
