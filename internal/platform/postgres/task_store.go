package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/taskhub/internal/domain"
	"github.com/phrazzld/taskhub/internal/platform/logger"
	"github.com/phrazzld/taskhub/internal/store"
)

type taskRow struct {
	ID          uuid.UUID     `db:"id"`
	Title       string        `db:"title"`
	Description string        `db:"description"`
	DueDate     sql.NullTime  `db:"due_date"`
	Priority    string        `db:"priority"`
	Status      string        `db:"status"`
	CreatedBy   uuid.UUID     `db:"created_by"`
	AssignedTo  uuid.NullUUID `db:"assigned_to"`
	CreatedAt   time.Time     `db:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at"`
}

func (r taskRow) toDomain() domain.Task {
	t := domain.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Priority:    domain.Priority(r.Priority),
		Status:      domain.Status(r.Status),
		CreatedBy:   r.CreatedBy,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
	if r.DueDate.Valid {
		due := r.DueDate.Time.UTC()
		t.DueDate = &due
	}
	if r.AssignedTo.Valid {
		id := r.AssignedTo.UUID
		t.AssignedTo = &id
	}
	return t
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil || *id == uuid.Nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

const taskColumns = `id, title, description, due_date, priority, status, created_by, assigned_to, created_at, updated_at`

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
// Update and Delete run inside a transaction holding a row lock.
type PostgresTaskStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db *sqlx.DB, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// Create implements store.TaskStore.Create
// Returns store.ErrInvalidEntity if the creator or assignee does not exist.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		nullTime(task.DueDate),
		string(task.Priority),
		string(task.Status),
		task.CreatedBy,
		nullUUID(task.AssignedTo),
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during task creation",
				slog.String("task_id", task.ID.String()),
				slog.String("created_by", task.CreatedBy.String()))
			return fmt.Errorf("%w: referenced user not found", store.ErrInvalidEntity)
		}
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return store.NewStoreError("task", "create", "insert failed", MapError(err))
	}

	log.Info("task created successfully",
		slog.String("task_id", task.ID.String()),
		slog.String("created_by", task.CreatedBy.String()))
	return nil
}

// GetByID implements store.TaskStore.GetByID
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	return s.get(ctx, s.db, id, false)
}

func (s *PostgresTaskStore) get(
	ctx context.Context,
	q store.DBTX,
	id uuid.UUID,
	forUpdate bool,
) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var row taskRow
	if err := q.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, store.NewStoreError("task", "get", "query failed", MapError(err))
	}
	task := row.toDomain()
	return &task, nil
}

// ListByParticipant implements store.TaskStore.ListByParticipant
func (s *PostgresTaskStore) ListByParticipant(
	ctx context.Context,
	userID uuid.UUID,
) ([]domain.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE created_by = $1 OR assigned_to = $1
		ORDER BY created_at DESC, id DESC
	`

	var rows []taskRow
	if err := s.db.SelectContext(ctx, &rows, query, userID); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list tasks",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, store.NewStoreError("task", "list", "query failed", MapError(err))
	}

	tasks := make([]domain.Task, 0, len(rows))
	for _, r := range rows {
		tasks = append(tasks, r.toDomain())
	}
	return tasks, nil
}

// Update implements store.TaskStore.Update
func (s *PostgresTaskStore) Update(
	ctx context.Context,
	id uuid.UUID,
	fn store.TaskMutation,
) (*domain.Task, error) {
	var updated *domain.Task

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		task, err := s.get(ctx, tx, id, true)
		if err != nil {
			return err
		}
		if err := fn(task); err != nil {
			return err
		}

		query := `
			UPDATE tasks
			SET title = $2, description = $3, due_date = $4, priority = $5,
				status = $6, assigned_to = $7, updated_at = $8
			WHERE id = $1
		`
		result, err := tx.ExecContext(ctx, query,
			task.ID,
			task.Title,
			task.Description,
			nullTime(task.DueDate),
			string(task.Priority),
			string(task.Status),
			nullUUID(task.AssignedTo),
			task.UpdatedAt,
		)
		if err != nil {
			if IsForeignKeyViolation(err) {
				return fmt.Errorf("%w: assignee not found", store.ErrInvalidEntity)
			}
			return store.NewStoreError("task", "update", "update failed", MapError(err))
		}
		if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
			return err
		}

		updated = task
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("task updated",
		slog.String("task_id", id.String()))
	return updated, nil
}

// Delete implements store.TaskStore.Delete
func (s *PostgresTaskStore) Delete(
	ctx context.Context,
	id uuid.UUID,
	check store.TaskMutation,
) (*domain.Task, error) {
	var deleted *domain.Task

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		task, err := s.get(ctx, tx, id, true)
		if err != nil {
			return err
		}
		if check != nil {
			if err := check(task); err != nil {
				return err
			}
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
		if err != nil {
			return store.NewStoreError("task", "delete", "delete failed", MapError(err))
		}
		if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
			return err
		}

		deleted = task
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("task deleted",
		slog.String("task_id", id.String()))
	return deleted, nil
}
