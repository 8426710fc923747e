package realtime

import (
	"context"

	"github.com/google/uuid"
)

// Event names pushed to clients.
const (
	EventNewNotification = "newNotification"
	// EventTaskUpdated is the deprecated push sent alongside task_updated
	// notifications when legacy events are enabled.
	EventTaskUpdated = "taskUpdated"
	EventJoined      = "joined"
	EventError       = "error"
)

// Channel is a live push connection to a single user.
type Channel interface {
	// Send queues an event for delivery without blocking.
	// It reports false when the message was dropped.
	Send(event string, payload any) bool

	// Close terminates the channel. It is safe to call more than once.
	Close()
}

// Registry keeps track of the channel each user is connected on.
type Registry interface {
	// Register binds ch to userID, replacing and closing any previous channel.
	Register(userID uuid.UUID, ch Channel)

	// Unregister removes the binding only if ch is still the user's channel.
	Unregister(userID uuid.UUID, ch Channel) bool

	// Publish delivers an event to the user's channel, if any.
	// Delivery is best effort: nothing is queued or retried.
	Publish(ctx context.Context, userID uuid.UUID, event string, payload any)
}
