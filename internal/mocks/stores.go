package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/taskhub/internal/domain"
	"github.com/phrazzld/taskhub/internal/store"
	"github.com/stretchr/testify/mock"
)

// MockUserStore is a mock of store.UserStore for use with testify/mock
type MockUserStore struct {
	mock.Mock
}

var _ store.UserStore = (*MockUserStore)(nil)

// Create is a mock implementation of store.UserStore.Create
func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// GetByID is a mock implementation of store.UserStore.GetByID
func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if user, ok := args.Get(0).(*domain.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

// GetByEmail is a mock implementation of store.UserStore.GetByEmail
func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if user, ok := args.Get(0).(*domain.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

// GetSummaries is a mock implementation of store.UserStore.GetSummaries
func (m *MockUserStore) GetSummaries(
	ctx context.Context,
	ids []uuid.UUID,
) (map[uuid.UUID]domain.UserSummary, error) {
	args := m.Called(ctx, ids)
	if out, ok := args.Get(0).(map[uuid.UUID]domain.UserSummary); ok {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockTaskStore is a mock of store.TaskStore for use with testify/mock
type MockTaskStore struct {
	mock.Mock
}

var _ store.TaskStore = (*MockTaskStore)(nil)

// Create is a mock implementation of store.TaskStore.Create
func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

// GetByID is a mock implementation of store.TaskStore.GetByID
func (m *MockTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	args := m.Called(ctx, id)
	if task, ok := args.Get(0).(*domain.Task); ok {
		return task, args.Error(1)
	}
	return nil, args.Error(1)
}

// ListByParticipant is a mock implementation of store.TaskStore.ListByParticipant
func (m *MockTaskStore) ListByParticipant(ctx context.Context, userID uuid.UUID) ([]domain.Task, error) {
	args := m.Called(ctx, userID)
	if tasks, ok := args.Get(0).([]domain.Task); ok {
		return tasks, args.Error(1)
	}
	return nil, args.Error(1)
}

// Update is a mock implementation of store.TaskStore.Update
func (m *MockTaskStore) Update(ctx context.Context, id uuid.UUID, fn store.TaskMutation) (*domain.Task, error) {
	args := m.Called(ctx, id, fn)
	if task, ok := args.Get(0).(*domain.Task); ok {
		return task, args.Error(1)
	}
	return nil, args.Error(1)
}

// Delete is a mock implementation of store.TaskStore.Delete
func (m *MockTaskStore) Delete(ctx context.Context, id uuid.UUID, check store.TaskMutation) (*domain.Task, error) {
	args := m.Called(ctx, id, check)
	if task, ok := args.Get(0).(*domain.Task); ok {
		return task, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockNotificationStore is a mock of store.NotificationStore for use with testify/mock
type MockNotificationStore struct {
	mock.Mock
}

var _ store.NotificationStore = (*MockNotificationStore)(nil)

// Create is a mock implementation of store.NotificationStore.Create
func (m *MockNotificationStore) Create(ctx context.Context, n *domain.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

// ListByUser is a mock implementation of store.NotificationStore.ListByUser
func (m *MockNotificationStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Notification, error) {
	args := m.Called(ctx, userID)
	if out, ok := args.Get(0).([]domain.Notification); ok {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

// MarkRead is a mock implementation of store.NotificationStore.MarkRead
func (m *MockNotificationStore) MarkRead(ctx context.Context, id, userID uuid.UUID) (*domain.Notification, error) {
	args := m.Called(ctx, id, userID)
	if n, ok := args.Get(0).(*domain.Notification); ok {
		return n, args.Error(1)
	}
	return nil, args.Error(1)
}

// MarkAllRead is a mock implementation of store.NotificationStore.MarkAllRead
func (m *MockNotificationStore) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

// Delete is a mock implementation of store.NotificationStore.Delete
func (m *MockNotificationStore) Delete(ctx context.Context, id, userID uuid.UUID) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}
