package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/taskhub/internal/domain"
	"github.com/phrazzld/taskhub/internal/events"
	"github.com/phrazzld/taskhub/internal/mocks"
	"github.com/phrazzld/taskhub/internal/platform/memory"
	"github.com/phrazzld/taskhub/internal/service"
	"github.com/phrazzld/taskhub/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type taskFixture struct {
	svc     service.TaskService
	tasks   *memory.TaskStore
	emitter *mocks.RecordingEmitter
	alice   domain.Principal
	bob     domain.Principal
	carol   domain.Principal
	admin   domain.Principal
	manager domain.Principal
}

func newTaskFixture(t *testing.T) *taskFixture {
	t.Helper()
	db := memory.NewDB()
	users := memory.NewUserStore(db)
	tasks := memory.NewTaskStore(db)
	emitter := &mocks.RecordingEmitter{}

	svc, err := service.NewTaskService(tasks, users, emitter, discardLogger())
	require.NoError(t, err)

	mk := func(name string, role domain.Role) domain.Principal {
		u, err := domain.NewUser(name, name+"@example.com", "hashed", role)
		require.NoError(t, err)
		require.NoError(t, users.Create(context.Background(), u))
		return domain.Principal{ID: u.ID, Role: u.Role}
	}

	return &taskFixture{
		svc:     svc,
		tasks:   tasks,
		emitter: emitter,
		alice:   mk("alice", domain.RoleUser),
		bob:     mk("bob", domain.RoleUser),
		carol:   mk("carol", domain.RoleUser),
		admin:   mk("root", domain.RoleAdmin),
		manager: mk("manny", domain.RoleManager),
	}
}

func (f *taskFixture) create(t *testing.T, by domain.Principal, assignee *uuid.UUID) *domain.Task {
	t.Helper()
	task, err := f.svc.Create(context.Background(), by, service.CreateTaskInput{
		Title:      "Write report",
		AssignedTo: assignee,
	})
	require.NoError(t, err)
	f.emitter.Reset()
	return task
}

func eventTypes(evs []events.Event) []domain.NotificationType {
	out := make([]domain.NotificationType, 0, len(evs))
	for _, ev := range evs {
		out = append(out, ev.Type)
	}
	return out
}

func TestNewTaskServiceValidatesDependencies(t *testing.T) {
	t.Parallel()
	db := memory.NewDB()

	_, err := service.NewTaskService(nil, memory.NewUserStore(db), &mocks.RecordingEmitter{}, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = service.NewTaskService(memory.NewTaskStore(db), nil, &mocks.RecordingEmitter{}, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = service.NewTaskService(memory.NewTaskStore(db), memory.NewUserStore(db), nil, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTaskServiceCreate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("assigned to another user emits one task_assigned", func(t *testing.T) {
		f := newTaskFixture(t)
		task, err := f.svc.Create(ctx, f.alice, service.CreateTaskInput{Title: "Ship it", AssignedTo: &f.bob.ID})
		require.NoError(t, err)

		assert.Equal(t, f.alice.ID, task.CreatedBy)
		assert.Equal(t, domain.PriorityMedium, task.Priority)
		assert.Equal(t, domain.StatusPending, task.Status)

		evs := f.emitter.Events()
		require.Len(t, evs, 1)
		assert.Equal(t, domain.NotificationTaskAssigned, evs[0].Type)
		assert.Equal(t, f.bob.ID, evs[0].Recipient)
		assert.Contains(t, evs[0].Message, "Ship it")
		assert.Equal(t, task.ID, *evs[0].TaskID)
	})

	t.Run("self assignment or no assignee emits nothing", func(t *testing.T) {
		f := newTaskFixture(t)
		_, err := f.svc.Create(ctx, f.alice, service.CreateTaskInput{Title: "Mine", AssignedTo: &f.alice.ID})
		require.NoError(t, err)
		_, err = f.svc.Create(ctx, f.alice, service.CreateTaskInput{Title: "Nobody's"})
		require.NoError(t, err)

		assert.Empty(t, f.emitter.Events())
	})

	t.Run("validation failures", func(t *testing.T) {
		f := newTaskFixture(t)
		ghost := uuid.New()

		inputs := map[string]service.CreateTaskInput{
			"blank title":      {Title: "   "},
			"bad priority":     {Title: "x", Priority: "urgent"},
			"unknown assignee": {Title: "x", AssignedTo: &ghost},
		}
		for name, in := range inputs {
			_, err := f.svc.Create(ctx, f.alice, in)
			assert.ErrorIs(t, err, domain.ErrValidation, name)
		}
		assert.Empty(t, f.emitter.Events())
	})
}

func TestTaskServiceList(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newTaskFixture(t)

	own := f.create(t, f.alice, nil)
	self := f.create(t, f.alice, &f.alice.ID)
	assigned := f.create(t, f.bob, &f.alice.ID)
	f.create(t, f.bob, &f.carol.ID)

	listing, err := f.svc.List(ctx, f.alice)
	require.NoError(t, err)
	require.Len(t, listing, 3)

	byID := make(map[uuid.UUID]domain.TaskListing)
	for _, l := range listing {
		byID[l.ID] = l
	}
	assert.Contains(t, byID, own.ID)
	assert.Contains(t, byID, self.ID)
	assert.Contains(t, byID, assigned.ID)

	assert.Nil(t, byID[own.ID].AssignedTo)
	require.NotNil(t, byID[assigned.ID].AssignedTo)
	assert.Equal(t, "alice", byID[assigned.ID].AssignedTo.Name)
	assert.Equal(t, "alice@example.com", byID[assigned.ID].AssignedTo.Email)
}

func TestTaskServiceUpdateNotifications(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("reassignment notifies the new assignee only", func(t *testing.T) {
		f := newTaskFixture(t)
		task := f.create(t, f.alice, &f.bob.ID)

		updated, err := f.svc.Update(ctx, f.alice, task.ID, domain.TaskPatch{AssignedTo: &f.carol.ID})
		require.NoError(t, err)
		assert.Equal(t, f.carol.ID, *updated.AssignedTo)

		evs := f.emitter.Events()
		assert.Equal(t, []domain.NotificationType{
			domain.NotificationTaskAssigned,
			domain.NotificationTaskUpdated,
		}, eventTypes(evs))
		for _, ev := range evs {
			assert.Equal(t, f.carol.ID, ev.Recipient)
		}
	})

	t.Run("completing a task", func(t *testing.T) {
		f := newTaskFixture(t)
		task := f.create(t, f.alice, &f.bob.ID)
		completed := domain.StatusCompleted

		_, err := f.svc.Update(ctx, f.alice, task.ID, domain.TaskPatch{Status: &completed})
		require.NoError(t, err)

		evs := f.emitter.Events()
		require.Equal(t, []domain.NotificationType{
			domain.NotificationTaskUpdated,
			domain.NotificationStatusUpdated,
		}, eventTypes(evs))
		assert.Contains(t, evs[1].Message, "completed")
	})

	t.Run("unassigning emits nothing", func(t *testing.T) {
		f := newTaskFixture(t)
		task := f.create(t, f.alice, &f.bob.ID)
		none := uuid.Nil

		updated, err := f.svc.Update(ctx, f.alice, task.ID, domain.TaskPatch{AssignedTo: &none})
		require.NoError(t, err)
		assert.Nil(t, updated.AssignedTo)
		assert.Empty(t, f.emitter.Events())
	})
}

func TestTaskServiceUpdatePatchSemantics(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newTaskFixture(t)

	task, err := f.svc.Create(ctx, f.alice, service.CreateTaskInput{
		Title:       "Original",
		Description: "details",
		Priority:    domain.PriorityHigh,
	})
	require.NoError(t, err)

	empty := ""
	updated, err := f.svc.Update(ctx, f.alice, task.ID, domain.TaskPatch{Description: &empty})
	require.NoError(t, err)
	assert.Equal(t, "Original", updated.Title, "missing fields stay unchanged")
	assert.Equal(t, domain.PriorityHigh, updated.Priority)
	assert.Empty(t, updated.Description, "an explicit empty description clears it")

	blank := "  "
	_, err = f.svc.Update(ctx, f.alice, task.ID, domain.TaskPatch{Title: &blank})
	assert.ErrorIs(t, err, domain.ErrValidation)

	ghost := uuid.New()
	_, err = f.svc.Update(ctx, f.alice, task.ID, domain.TaskPatch{AssignedTo: &ghost})
	assert.ErrorIs(t, err, domain.ErrValidation)

	stored, err := f.tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Original", stored.Title)
}

func TestTaskServiceAuthorization(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	title := "Hijacked"

	f := newTaskFixture(t)
	task := f.create(t, f.alice, &f.bob.ID)

	for name, p := range map[string]domain.Principal{
		"assignee": f.bob,
		"stranger": f.carol,
		"manager":  f.manager,
	} {
		_, err := f.svc.Update(ctx, p, task.ID, domain.TaskPatch{Title: &title})
		assert.ErrorIs(t, err, domain.ErrForbidden, name)

		err = f.svc.Delete(ctx, p, task.ID)
		assert.ErrorIs(t, err, domain.ErrForbidden, name)
	}
	assert.Empty(t, f.emitter.Events())

	stored, err := f.tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Write report", stored.Title)

	_, err = f.svc.Update(ctx, f.admin, task.ID, domain.TaskPatch{Title: &title})
	require.NoError(t, err, "admins may update any task")

	_, err = f.svc.Update(ctx, f.alice, uuid.New(), domain.TaskPatch{Title: &title})
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
	assert.ErrorIs(t, f.svc.Delete(ctx, f.alice, uuid.New()), store.ErrTaskNotFound)

	t.Run("unknown assignee", func(t *testing.T) {
		ghost := uuid.New()
		patch := domain.TaskPatch{AssignedTo: &ghost}

		_, err := f.svc.Update(ctx, f.bob, task.ID, patch)
		assert.ErrorIs(t, err, domain.ErrForbidden, "authorization is checked before the assignee")

		_, err = f.svc.Update(ctx, f.alice, uuid.New(), patch)
		assert.ErrorIs(t, err, store.ErrTaskNotFound)

		_, err = f.svc.Update(ctx, f.alice, task.ID, patch)
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "assignedTo", verr.Field)
	})
}

func TestTaskServiceDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("without assignee", func(t *testing.T) {
		f := newTaskFixture(t)
		task := f.create(t, f.alice, nil)
		require.NoError(t, f.svc.Delete(ctx, f.alice, task.ID))
		assert.Empty(t, f.emitter.Events())
	})

	t.Run("with assignee", func(t *testing.T) {
		f := newTaskFixture(t)
		task := f.create(t, f.alice, &f.bob.ID)
		require.NoError(t, f.svc.Delete(ctx, f.admin, task.ID))

		evs := f.emitter.Events()
		require.Len(t, evs, 1)
		assert.Equal(t, domain.NotificationTaskDeleted, evs[0].Type)
		assert.Equal(t, f.bob.ID, evs[0].Recipient)
		assert.Contains(t, evs[0].Message, "Write report")
		assert.Nil(t, evs[0].TaskID)

		_, err := f.tasks.GetByID(ctx, task.ID)
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})
}

func TestTaskServiceEmitterFailureDoesNotFailMutation(t *testing.T) {
	t.Parallel()
	f := newTaskFixture(t)
	f.emitter.Err = errors.New("queue full")

	task, err := f.svc.Create(context.Background(), f.alice, service.CreateTaskInput{
		Title:      "Still created",
		AssignedTo: &f.bob.ID,
	})
	require.NoError(t, err)
	assert.NotNil(t, task)
	assert.Len(t, f.emitter.Events(), 1)
}

func TestTaskServiceStoreFailures(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	boom := errors.New("connection reset")
	requester := domain.Principal{ID: uuid.New(), Role: domain.RoleUser}

	tasks := new(mocks.MockTaskStore)
	users := new(mocks.MockUserStore)
	emitter := &mocks.RecordingEmitter{}
	svc, err := service.NewTaskService(tasks, users, emitter, discardLogger())
	require.NoError(t, err)

	tasks.On("Create", mock.Anything, mock.AnythingOfType("*domain.Task")).Return(boom)
	tasks.On("ListByParticipant", mock.Anything, requester.ID).Return(nil, boom)
	tasks.On("Update", mock.Anything, mock.Anything, mock.Anything).Return(nil, boom)
	tasks.On("Delete", mock.Anything, mock.Anything, mock.Anything).Return(nil, boom)

	_, err = svc.Create(ctx, requester, service.CreateTaskInput{Title: "x"})
	assert.ErrorIs(t, err, boom)
	var svcErr *service.ServiceError
	assert.ErrorAs(t, err, &svcErr)

	_, err = svc.List(ctx, requester)
	assert.ErrorIs(t, err, boom)

	title := "y"
	_, err = svc.Update(ctx, requester, uuid.New(), domain.TaskPatch{Title: &title})
	assert.ErrorIs(t, err, boom)

	assert.ErrorIs(t, svc.Delete(ctx, requester, uuid.New()), boom)
	assert.Empty(t, emitter.Events())
	tasks.AssertExpectations(t)
}
