package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/taskhub/internal/domain"
)

// TaskMutation inspects and optionally modifies a task loaded inside an
// atomic read-modify-write. Returning an error aborts the write and the
// error is returned unchanged to the caller.
type TaskMutation func(task *domain.Task) error

// TaskStore defines the interface for task data persistence.
type TaskStore interface {
	// Create saves a new task.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// ListByParticipant returns every task the user created or is assigned to,
	// newest first, each task at most once.
	ListByParticipant(ctx context.Context, userID uuid.UUID) ([]domain.Task, error)

	// Update loads the task, applies fn and persists the result atomically.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, id uuid.UUID, fn TaskMutation) (*domain.Task, error)

	// Delete loads the task, runs check and removes the task atomically.
	// check may be nil. Returns the deleted task.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id uuid.UUID, check TaskMutation) (*domain.Task, error)
}
