package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/taskhub/internal/domain"
)

// NotificationStore defines the interface for notification persistence.
// Every lookup by ID is scoped to the recipient: a notification owned by
// another user behaves exactly like a missing one.
type NotificationStore interface {
	// Create saves a new notification.
	Create(ctx context.Context, n *domain.Notification) error

	// ListByUser returns all notifications for the user, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Notification, error)

	// MarkRead sets IsRead on the user's notification and returns it.
	// Returns ErrNotificationNotFound if it does not exist or is not owned by userID.
	MarkRead(ctx context.Context, id, userID uuid.UUID) (*domain.Notification, error)

	// MarkAllRead sets IsRead on every unread notification of the user
	// and returns how many changed.
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)

	// Delete removes the user's notification.
	// Returns ErrNotificationNotFound if it does not exist or is not owned by userID.
	Delete(ctx context.Context, id, userID uuid.UUID) error
}
