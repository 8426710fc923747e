package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskhub/internal/domain"
	"github.com/phrazzld/taskhub/internal/events"
	"github.com/phrazzld/taskhub/internal/platform/logger"
	"github.com/phrazzld/taskhub/internal/redact"
	"github.com/phrazzld/taskhub/internal/store"
)

// CreateTaskInput carries the fields a client may set on a new task.
type CreateTaskInput struct {
	Title       string
	Description string
	DueDate     *time.Time
	Priority    domain.Priority
	AssignedTo  *uuid.UUID
}

// TaskService provides task-related operations
type TaskService interface {
	// Create stores a new task owned by the requester.
	Create(ctx context.Context, requester domain.Principal, in CreateTaskInput) (*domain.Task, error)

	// List returns every task the requester created or is assigned to,
	// with the assignee resolved for display.
	List(ctx context.Context, requester domain.Principal) ([]domain.TaskListing, error)

	// Update applies patch to the task. Only the creator or an admin may do so.
	Update(ctx context.Context, requester domain.Principal, id uuid.UUID, patch domain.TaskPatch) (*domain.Task, error)

	// Delete removes the task. Only the creator or an admin may do so.
	Delete(ctx context.Context, requester domain.Principal, id uuid.UUID) error
}

// taskServiceImpl implements the TaskService interface
type taskServiceImpl struct {
	tasks   store.TaskStore
	users   store.UserStore
	emitter events.Emitter
	now     func() time.Time
	logger  *slog.Logger
}

// NewTaskService creates a new TaskService.
// It returns an error if any of the required dependencies are nil.
func NewTaskService(
	tasks store.TaskStore,
	users store.UserStore,
	emitter events.Emitter,
	logger *slog.Logger,
) (TaskService, error) {
	if tasks == nil {
		return nil, domain.NewValidationError("tasks", "cannot be nil", domain.ErrValidation)
	}
	if users == nil {
		return nil, domain.NewValidationError("users", "cannot be nil", domain.ErrValidation)
	}
	if emitter == nil {
		return nil, domain.NewValidationError("emitter", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		tasks:   tasks,
		users:   users,
		emitter: emitter,
		now:     time.Now,
		logger:  logger.With(slog.String("component", "task_service")),
	}, nil
}

// Create implements TaskService.Create
func (s *taskServiceImpl) Create(
	ctx context.Context,
	requester domain.Principal,
	in CreateTaskInput,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := domain.NewTask(in.Title, in.Description, in.DueDate, in.Priority, requester.ID, in.AssignedTo)
	if err != nil {
		return nil, err
	}
	if task.HasAssignee() {
		if err := s.checkAssignee(ctx, *task.AssignedTo); err != nil {
			return nil, err
		}
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		if errors.Is(err, store.ErrInvalidEntity) {
			return nil, domain.NewValidationError("assignedTo", "does not refer to an existing user", nil)
		}
		log.Error("failed to create task", redact.ErrorAttr(err))
		return nil, NewServiceError("task", "create", err)
	}

	log.Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("created_by", requester.ID.String()))

	s.emit(ctx, PlanCreateNotifications(task))
	return task, nil
}

// List implements TaskService.List
func (s *taskServiceImpl) List(ctx context.Context, requester domain.Principal) ([]domain.TaskListing, error) {
	tasks, err := s.tasks.ListByParticipant(ctx, requester.ID)
	if err != nil {
		return nil, NewServiceError("task", "list", err)
	}

	var assignees []uuid.UUID
	seen := make(map[uuid.UUID]bool)
	for i := range tasks {
		if tasks[i].HasAssignee() && !seen[*tasks[i].AssignedTo] {
			seen[*tasks[i].AssignedTo] = true
			assignees = append(assignees, *tasks[i].AssignedTo)
		}
	}

	summaries, err := s.users.GetSummaries(ctx, assignees)
	if err != nil {
		return nil, NewServiceError("task", "list", err)
	}

	out := make([]domain.TaskListing, 0, len(tasks))
	for _, t := range tasks {
		listing := domain.TaskListing{Task: t}
		if t.HasAssignee() {
			if summary, ok := summaries[*t.AssignedTo]; ok {
				listing.AssignedTo = &summary
			}
		}
		out = append(out, listing)
	}
	return out, nil
}

// Update implements TaskService.Update
func (s *taskServiceImpl) Update(
	ctx context.Context,
	requester domain.Principal,
	id uuid.UUID,
	patch domain.TaskPatch,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	// Assignee existence is enforced by the store after authorization.
	var before domain.Task
	updated, err := s.tasks.Update(ctx, id, func(task *domain.Task) error {
		if !task.CanBeModifiedBy(requester) {
			return domain.ErrForbidden
		}
		before = *task
		return task.Apply(patch, s.now())
	})
	if err != nil {
		return nil, s.mutationError(ctx, "update", id, requester, err)
	}

	log.Info("task updated",
		slog.String("task_id", id.String()),
		slog.String("updated_by", requester.ID.String()))

	s.emit(ctx, PlanUpdateNotifications(&before, updated))
	return updated, nil
}

// Delete implements TaskService.Delete
func (s *taskServiceImpl) Delete(ctx context.Context, requester domain.Principal, id uuid.UUID) error {
	deleted, err := s.tasks.Delete(ctx, id, func(task *domain.Task) error {
		if !task.CanBeModifiedBy(requester) {
			return domain.ErrForbidden
		}
		return nil
	})
	if err != nil {
		return s.mutationError(ctx, "delete", id, requester, err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("task deleted",
		slog.String("task_id", id.String()),
		slog.String("deleted_by", requester.ID.String()))

	s.emit(ctx, PlanDeleteNotifications(deleted))
	return nil
}

func (s *taskServiceImpl) checkAssignee(ctx context.Context, id uuid.UUID) error {
	if _, err := s.users.GetByID(ctx, id); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return domain.NewValidationError("assignedTo", "does not refer to an existing user", nil)
		}
		return NewServiceError("task", "check assignee", err)
	}
	return nil
}

// mutationError passes expected failures through and wraps the rest.
func (s *taskServiceImpl) mutationError(
	ctx context.Context,
	op string,
	id uuid.UUID,
	requester domain.Principal,
	err error,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)
	var verr *domain.ValidationError

	switch {
	case errors.Is(err, domain.ErrForbidden):
		log.Debug("task "+op+" forbidden",
			slog.String("task_id", id.String()),
			slog.String("requester", requester.ID.String()))
		return fmt.Errorf("not authorized to %s this task: %w", op, err)
	case errors.Is(err, store.ErrTaskNotFound):
		return err
	case errors.As(err, &verr):
		return err
	case errors.Is(err, store.ErrInvalidEntity):
		return domain.NewValidationError("assignedTo", "does not refer to an existing user", nil)
	default:
		log.Error("failed to "+op+" task",
			redact.ErrorAttr(err),
			slog.String("task_id", id.String()))
		return NewServiceError("task", op, err)
	}
}

// emit hands events to the emitter. Delivery failures never fail the
// mutation that caused them.
func (s *taskServiceImpl) emit(ctx context.Context, evs []events.Event) {
	if len(evs) == 0 {
		return
	}
	if err := s.emitter.Emit(ctx, evs...); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("failed to emit task notifications",
			redact.ErrorAttr(err),
			slog.Int("count", len(evs)))
	}
}
