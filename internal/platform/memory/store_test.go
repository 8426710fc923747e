package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskhub/internal/domain"
	"github.com/phrazzld/taskhub/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustUser(t *testing.T, users *UserStore, name, email string, role domain.Role) *domain.User {
	t.Helper()
	u, err := domain.NewUser(name, email, "hashed", role)
	require.NoError(t, err)
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func mustTask(t *testing.T, tasks *TaskStore, title string, createdBy uuid.UUID, assignee *uuid.UUID) *domain.Task {
	t.Helper()
	task, err := domain.NewTask(title, "", nil, "", createdBy, assignee)
	require.NoError(t, err)
	require.NoError(t, tasks.Create(context.Background(), task))
	return task
}

func TestUserStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	users := NewUserStore(NewDB())

	alice := mustUser(t, users, "Alice", "Alice@Example.com", domain.RoleUser)

	got, err := users.GetByEmail(ctx, "ALICE@example.COM")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	got, err = users.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", got.Email)

	_, err = users.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrUserNotFound)
	assert.True(t, store.IsNotFoundError(err))

	dup, err := domain.NewUser("Other", "alice@example.com", "hashed", domain.RoleUser)
	require.NoError(t, err)
	err = users.Create(ctx, dup)
	assert.ErrorIs(t, err, store.ErrEmailExists)
	assert.True(t, store.IsDuplicateError(err))

	missing := uuid.New()
	summaries, err := users.GetSummaries(ctx, []uuid.UUID{alice.ID, missing})
	require.NoError(t, err)
	assert.Len(t, summaries, 1)
	assert.Equal(t, domain.UserSummary{ID: alice.ID, Name: "Alice", Email: "alice@example.com"}, summaries[alice.ID])
}

func TestTaskStoreCreateChecksReferences(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := NewDB()
	users, tasks := NewUserStore(db), NewTaskStore(db)
	alice := mustUser(t, users, "Alice", "alice@example.com", domain.RoleUser)

	ghost := uuid.New()
	task, err := domain.NewTask("Orphan", "", nil, "", alice.ID, &ghost)
	require.NoError(t, err)
	assert.ErrorIs(t, tasks.Create(ctx, task), store.ErrInvalidEntity)

	task, err = domain.NewTask("Nobody", "", nil, "", uuid.New(), nil)
	require.NoError(t, err)
	assert.ErrorIs(t, tasks.Create(ctx, task), store.ErrInvalidEntity)
}

func TestTaskStoreListByParticipant(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := NewDB()
	users, tasks := NewUserStore(db), NewTaskStore(db)
	alice := mustUser(t, users, "Alice", "alice@example.com", domain.RoleUser)
	bob := mustUser(t, users, "Bob", "bob@example.com", domain.RoleUser)
	carol := mustUser(t, users, "Carol", "carol@example.com", domain.RoleUser)

	own := mustTask(t, tasks, "own", alice.ID, nil)
	selfAssigned := mustTask(t, tasks, "self", alice.ID, &alice.ID)
	assigned := mustTask(t, tasks, "assigned", bob.ID, &alice.ID)
	mustTask(t, tasks, "unrelated", bob.ID, &carol.ID)

	list, err := tasks.ListByParticipant(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)

	ids := []uuid.UUID{list[0].ID, list[1].ID, list[2].ID}
	assert.Equal(t, []uuid.UUID{assigned.ID, selfAssigned.ID, own.ID}, ids, "newest first, each task once")

	list, err = tasks.ListByParticipant(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestTaskStoreUpdate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := NewDB()
	users, tasks := NewUserStore(db), NewTaskStore(db)
	alice := mustUser(t, users, "Alice", "alice@example.com", domain.RoleUser)
	task := mustTask(t, tasks, "Write report", alice.ID, nil)

	status := domain.StatusCompleted
	updated, err := tasks.Update(ctx, task.ID, func(tk *domain.Task) error {
		return tk.Apply(domain.TaskPatch{Status: &status}, time.Now())
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, updated.Status)

	stored, err := tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, stored.Status)

	_, err = tasks.Update(ctx, uuid.New(), func(*domain.Task) error { return nil })
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestTaskStoreUpdateAbortLeavesTaskUnchanged(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := NewDB()
	users, tasks := NewUserStore(db), NewTaskStore(db)
	alice := mustUser(t, users, "Alice", "alice@example.com", domain.RoleUser)
	task := mustTask(t, tasks, "Write report", alice.ID, nil)

	_, err := tasks.Update(ctx, task.ID, func(tk *domain.Task) error {
		tk.Title = "mutated"
		return domain.ErrForbidden
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	ghost := uuid.New()
	_, err = tasks.Update(ctx, task.ID, func(tk *domain.Task) error {
		tk.AssignedTo = &ghost
		return nil
	})
	assert.ErrorIs(t, err, store.ErrInvalidEntity)

	stored, err := tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Write report", stored.Title)
	assert.Nil(t, stored.AssignedTo)
}

func TestTaskStoreDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := NewDB()
	users, tasks := NewUserStore(db), NewTaskStore(db)
	alice := mustUser(t, users, "Alice", "alice@example.com", domain.RoleUser)
	task := mustTask(t, tasks, "Write report", alice.ID, nil)

	denied := errors.New("denied")
	_, err := tasks.Delete(ctx, task.ID, func(*domain.Task) error { return denied })
	assert.ErrorIs(t, err, denied)
	_, err = tasks.GetByID(ctx, task.ID)
	require.NoError(t, err, "a failed check must not delete")

	deleted, err := tasks.Delete(ctx, task.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "Write report", deleted.Title)

	_, err = tasks.GetByID(ctx, task.ID)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
	_, err = tasks.Delete(ctx, task.ID, nil)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestTaskStoreReturnsCopies(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := NewDB()
	users, tasks := NewUserStore(db), NewTaskStore(db)
	alice := mustUser(t, users, "Alice", "alice@example.com", domain.RoleUser)
	bob := mustUser(t, users, "Bob", "bob@example.com", domain.RoleUser)
	task := mustTask(t, tasks, "Write report", alice.ID, &bob.ID)

	got, err := tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	*got.AssignedTo = uuid.New()

	again, err := tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, bob.ID, *again.AssignedTo)
}

func TestNotificationStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := NewDB()
	users, notifications := NewUserStore(db), NewNotificationStore(db)
	alice := mustUser(t, users, "Alice", "alice@example.com", domain.RoleUser)
	bob := mustUser(t, users, "Bob", "bob@example.com", domain.RoleUser)

	first, err := domain.NewNotification(alice.ID, domain.NotificationTaskAssigned, "first", nil)
	require.NoError(t, err)
	second, err := domain.NewNotification(alice.ID, domain.NotificationTaskUpdated, "second", nil)
	require.NoError(t, err)
	other, err := domain.NewNotification(bob.ID, domain.NotificationGeneral, "bob's", nil)
	require.NoError(t, err)
	for _, n := range []*domain.Notification{first, second, other} {
		require.NoError(t, notifications.Create(ctx, n))
	}

	list, err := notifications.ListByUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)

	_, err = notifications.MarkRead(ctx, other.ID, alice.ID)
	assert.ErrorIs(t, err, store.ErrNotificationNotFound, "foreign notifications look missing")

	read, err := notifications.MarkRead(ctx, first.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, read.IsRead)

	count, err := notifications.MarkAllRead(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = notifications.MarkAllRead(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	assert.ErrorIs(t, notifications.Delete(ctx, other.ID, alice.ID), store.ErrNotificationNotFound)
	require.NoError(t, notifications.Delete(ctx, first.ID, alice.ID))
	assert.ErrorIs(t, notifications.Delete(ctx, first.ID, alice.ID), store.ErrNotificationNotFound)

	bobs, err := notifications.ListByUser(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, bobs, 1)
	assert.False(t, bobs[0].IsRead)
}

func TestNotificationStoreRequiresRecipient(t *testing.T) {
	t.Parallel()

	notifications := NewNotificationStore(NewDB())
	n, err := domain.NewNotification(uuid.New(), domain.NotificationGeneral, "hello", nil)
	require.NoError(t, err)

	assert.ErrorIs(t, notifications.Create(context.Background(), n), store.ErrInvalidEntity)
}
