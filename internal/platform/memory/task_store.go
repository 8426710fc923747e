package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/taskhub/internal/domain"
	"github.com/phrazzld/taskhub/internal/store"
)

// TaskStore implements store.TaskStore on a DB.
// Update and Delete hold the write lock for the whole read-modify-write.
type TaskStore struct {
	db *DB
}

var _ store.TaskStore = (*TaskStore)(nil)

// NewTaskStore creates a TaskStore backed by db.
func NewTaskStore(db *DB) *TaskStore {
	return &TaskStore{db: db}
}

// checkRefs must be called with the lock held.
func (s *TaskStore) checkRefs(task *domain.Task) error {
	if !s.db.userExists(task.CreatedBy) {
		return fmt.Errorf("%w: referenced user not found", store.ErrInvalidEntity)
	}
	if task.HasAssignee() && !s.db.userExists(*task.AssignedTo) {
		return fmt.Errorf("%w: assignee not found", store.ErrInvalidEntity)
	}
	return nil
}

// Create implements store.TaskStore.
func (s *TaskStore) Create(_ context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.tasks[task.ID]; ok {
		return store.ErrDuplicate
	}
	if err := s.checkRefs(task); err != nil {
		return err
	}
	s.db.tasks[task.ID] = taskRecord{task: cloneTask(*task), seq: s.db.nextSeq()}
	return nil
}

// GetByID implements store.TaskStore.
func (s *TaskStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Task, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	rec, ok := s.db.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	t := cloneTask(rec.task)
	return &t, nil
}

// ListByParticipant implements store.TaskStore.
func (s *TaskStore) ListByParticipant(_ context.Context, userID uuid.UUID) ([]domain.Task, error) {
	s.db.mu.RLock()
	recs := make([]taskRecord, 0)
	for _, rec := range s.db.tasks {
		if rec.task.CreatedBy == userID || rec.task.IsAssignedTo(userID) {
			recs = append(recs, rec)
		}
	}
	s.db.mu.RUnlock()

	sortTasks(recs)
	out := make([]domain.Task, 0, len(recs))
	for _, rec := range recs {
		out = append(out, cloneTask(rec.task))
	}
	return out, nil
}

// Update implements store.TaskStore.
func (s *TaskStore) Update(_ context.Context, id uuid.UUID, fn store.TaskMutation) (*domain.Task, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	rec, ok := s.db.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	task := cloneTask(rec.task)
	if err := fn(&task); err != nil {
		return nil, err
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkRefs(&task); err != nil {
		return nil, err
	}

	rec.task = cloneTask(task)
	s.db.tasks[id] = rec
	return &task, nil
}

// Delete implements store.TaskStore.
func (s *TaskStore) Delete(_ context.Context, id uuid.UUID, check store.TaskMutation) (*domain.Task, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	rec, ok := s.db.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	task := cloneTask(rec.task)
	if check != nil {
		if err := check(&task); err != nil {
			return nil, err
		}
	}

	delete(s.db.tasks, id)
	return &task, nil
}
