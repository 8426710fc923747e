package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskhub/internal/domain"
	"github.com/phrazzld/taskhub/internal/platform/logger"
	"github.com/phrazzld/taskhub/internal/store"
)

type notificationRow struct {
	ID        uuid.UUID     `db:"id"`
	UserID    uuid.UUID     `db:"user_id"`
	Type      string        `db:"type"`
	Message   string        `db:"message"`
	TaskID    uuid.NullUUID `db:"task_id"`
	IsRead    bool          `db:"is_read"`
	CreatedAt time.Time     `db:"created_at"`
	UpdatedAt time.Time     `db:"updated_at"`
}

func (r notificationRow) toDomain() domain.Notification {
	n := domain.Notification{
		ID:        r.ID,
		UserID:    r.UserID,
		Type:      domain.NotificationType(r.Type),
		Message:   r.Message,
		IsRead:    r.IsRead,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
	if r.TaskID.Valid {
		id := r.TaskID.UUID
		n.TaskID = &id
	}
	return n
}

const notificationColumns = `id, user_id, type, message, task_id, is_read, created_at, updated_at`

// PostgresNotificationStore implements the store.NotificationStore interface
// using a PostgreSQL database as the storage backend.
type PostgresNotificationStore struct {
	db     store.DBTX
	logger *slog.Logger
	now    func() time.Time
}

// NewPostgresNotificationStore creates a new PostgreSQL implementation of the
// NotificationStore interface. If logger is nil, a default logger will be used.
func NewPostgresNotificationStore(db store.DBTX, logger *slog.Logger) *PostgresNotificationStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresNotificationStore{
		db:     db,
		logger: logger.With(slog.String("component", "notification_store")),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Ensure PostgresNotificationStore implements store.NotificationStore interface
var _ store.NotificationStore = (*PostgresNotificationStore)(nil)

// Create implements store.NotificationStore.Create
func (s *PostgresNotificationStore) Create(ctx context.Context, n *domain.Notification) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := n.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO notifications (` + notificationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		n.ID,
		n.UserID,
		string(n.Type),
		n.Message,
		nullUUID(n.TaskID),
		n.IsRead,
		n.CreatedAt,
		n.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create notification",
			slog.String("error", err.Error()),
			slog.String("notification_id", n.ID.String()),
			slog.String("user_id", n.UserID.String()))
		return store.NewStoreError("notification", "create", "insert failed", MapError(err))
	}

	log.Debug("notification created",
		slog.String("notification_id", n.ID.String()),
		slog.String("type", string(n.Type)))
	return nil
}

// ListByUser implements store.NotificationStore.ListByUser
func (s *PostgresNotificationStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]domain.Notification, error) {
	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`

	var rows []notificationRow
	if err := s.db.SelectContext(ctx, &rows, query, userID); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list notifications",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, store.NewStoreError("notification", "list", "query failed", MapError(err))
	}

	out := make([]domain.Notification, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

// MarkRead implements store.NotificationStore.MarkRead
func (s *PostgresNotificationStore) MarkRead(
	ctx context.Context,
	id, userID uuid.UUID,
) (*domain.Notification, error) {
	query := `
		UPDATE notifications
		SET is_read = TRUE, updated_at = $3
		WHERE id = $1 AND user_id = $2
		RETURNING ` + notificationColumns

	var row notificationRow
	if err := s.db.GetContext(ctx, &row, query, id, userID, s.now()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotificationNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to mark notification read",
			slog.String("error", err.Error()),
			slog.String("notification_id", id.String()))
		return nil, store.NewStoreError("notification", "update", "mark read failed", MapError(err))
	}

	n := row.toDomain()
	return &n, nil
}

// MarkAllRead implements store.NotificationStore.MarkAllRead
func (s *PostgresNotificationStore) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `
		UPDATE notifications
		SET is_read = TRUE, updated_at = $2
		WHERE user_id = $1 AND NOT is_read
	`
	result, err := s.db.ExecContext(ctx, query, userID, s.now())
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to mark all notifications read",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return 0, store.NewStoreError("notification", "update", "mark all read failed", MapError(err))
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, store.NewStoreError("notification", "update", "rows affected unavailable", err)
	}
	return n, nil
}

// Delete implements store.NotificationStore.Delete
func (s *PostgresNotificationStore) Delete(ctx context.Context, id, userID uuid.UUID) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM notifications WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete notification",
			slog.String("error", err.Error()),
			slog.String("notification_id", id.String()))
		return store.NewStoreError("notification", "delete", "delete failed", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrNotificationNotFound)
}
