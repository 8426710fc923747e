package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskhub/internal/domain"
	"github.com/phrazzld/taskhub/internal/platform/logger"
	"github.com/phrazzld/taskhub/internal/redact"
	"github.com/phrazzld/taskhub/internal/store"
)

// NotificationService gives a user access to their own notifications.
// A notification owned by someone else is reported as not found.
type NotificationService interface {
	// List returns the user's notifications, newest first.
	List(ctx context.Context, userID uuid.UUID) ([]domain.Notification, error)

	// MarkRead marks one notification as read and returns it.
	MarkRead(ctx context.Context, userID, id uuid.UUID) (*domain.Notification, error)

	// MarkAllRead marks every unread notification as read and returns how many changed.
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)

	// Delete removes one notification.
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type notificationServiceImpl struct {
	notifications store.NotificationStore
	logger        *slog.Logger
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(notifications store.NotificationStore, logger *slog.Logger) (NotificationService, error) {
	if notifications == nil {
		return nil, domain.NewValidationError("notifications", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &notificationServiceImpl{
		notifications: notifications,
		logger:        logger.With(slog.String("component", "notification_service")),
	}, nil
}

// List implements NotificationService.List
func (s *notificationServiceImpl) List(ctx context.Context, userID uuid.UUID) ([]domain.Notification, error) {
	out, err := s.notifications.ListByUser(ctx, userID)
	if err != nil {
		return nil, s.wrap(ctx, "list", err)
	}
	return out, nil
}

// MarkRead implements NotificationService.MarkRead
func (s *notificationServiceImpl) MarkRead(ctx context.Context, userID, id uuid.UUID) (*domain.Notification, error) {
	n, err := s.notifications.MarkRead(ctx, id, userID)
	if err != nil {
		return nil, s.wrap(ctx, "mark read", err)
	}
	return n, nil
}

// MarkAllRead implements NotificationService.MarkAllRead
func (s *notificationServiceImpl) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := s.notifications.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, s.wrap(ctx, "mark all read", err)
	}
	logger.FromContextOrDefault(ctx, s.logger).Debug("notifications marked read",
		slog.String("user_id", userID.String()),
		slog.Int64("count", count))
	return count, nil
}

// Delete implements NotificationService.Delete
func (s *notificationServiceImpl) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.notifications.Delete(ctx, id, userID); err != nil {
		return s.wrap(ctx, "delete", err)
	}
	return nil
}

func (s *notificationServiceImpl) wrap(ctx context.Context, op string, err error) error {
	if errors.Is(err, store.ErrNotificationNotFound) {
		return err
	}
	logger.FromContextOrDefault(ctx, s.logger).Error("notification "+op+" failed", redact.ErrorAttr(err))
	return NewServiceError("notification", op, err)
}
