package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskhub/internal/domain"
	"github.com/phrazzld/taskhub/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTask(t *testing.T, createdBy uuid.UUID, assignee *uuid.UUID) *domain.Task {
	t.Helper()
	task, err := domain.NewTask("Write report", "", nil, "", createdBy, assignee)
	require.NoError(t, err)
	return task
}

func types(evs []events.Event) []domain.NotificationType {
	out := make([]domain.NotificationType, 0, len(evs))
	for _, ev := range evs {
		out = append(out, ev.Type)
	}
	return out
}

func TestPlanCreateNotifications(t *testing.T) {
	t.Parallel()
	creator, other := uuid.New(), uuid.New()

	t.Run("assigned to someone else", func(t *testing.T) {
		task := newTask(t, creator, &other)
		evs := PlanCreateNotifications(task)
		require.Len(t, evs, 1)
		assert.Equal(t, domain.NotificationTaskAssigned, evs[0].Type)
		assert.Equal(t, other, evs[0].Recipient)
		assert.Contains(t, evs[0].Message, "Write report")
		require.NotNil(t, evs[0].TaskID)
		assert.Equal(t, task.ID, *evs[0].TaskID)
	})

	t.Run("assigned to creator", func(t *testing.T) {
		assert.Empty(t, PlanCreateNotifications(newTask(t, creator, &creator)))
	})

	t.Run("unassigned", func(t *testing.T) {
		assert.Empty(t, PlanCreateNotifications(newTask(t, creator, nil)))
	})
}

func TestPlanUpdateNotifications(t *testing.T) {
	t.Parallel()
	creator, a, b := uuid.New(), uuid.New(), uuid.New()
	completed := domain.StatusCompleted
	inProgress := domain.StatusInProgress
	title := "Renamed"

	tests := []struct {
		name     string
		assignee *uuid.UUID
		patch    domain.TaskPatch
		want     []domain.NotificationType
		check    func(t *testing.T, evs []events.Event)
	}{
		{
			name:     "no assignee notifies nobody",
			assignee: nil,
			patch:    domain.TaskPatch{Status: &completed},
			want:     []domain.NotificationType{},
		},
		{
			name:     "reassignment notifies the new assignee twice",
			assignee: &a,
			patch:    domain.TaskPatch{AssignedTo: &b},
			want:     []domain.NotificationType{domain.NotificationTaskAssigned, domain.NotificationTaskUpdated},
			check: func(t *testing.T, evs []events.Event) {
				for _, ev := range evs {
					assert.Equal(t, b, ev.Recipient)
				}
			},
		},
		{
			name:     "completion",
			assignee: &a,
			patch:    domain.TaskPatch{Status: &completed},
			want:     []domain.NotificationType{domain.NotificationTaskUpdated, domain.NotificationStatusUpdated},
			check: func(t *testing.T, evs []events.Event) {
				assert.Contains(t, evs[1].Message, "marked as completed")
			},
		},
		{
			name:     "other status change",
			assignee: &a,
			patch:    domain.TaskPatch{Status: &inProgress},
			want:     []domain.NotificationType{domain.NotificationTaskUpdated, domain.NotificationStatusUpdated},
			check: func(t *testing.T, evs []events.Event) {
				assert.Contains(t, evs[1].Message, "status of task")
				assert.Contains(t, evs[1].Message, "in-progress")
			},
		},
		{
			name:     "reassignment plus status change yields three",
			assignee: &a,
			patch:    domain.TaskPatch{AssignedTo: &b, Status: &completed},
			want: []domain.NotificationType{
				domain.NotificationTaskAssigned,
				domain.NotificationTaskUpdated,
				domain.NotificationStatusUpdated,
			},
		},
		{
			name:     "title change only",
			assignee: &a,
			patch:    domain.TaskPatch{Title: &title},
			want:     []domain.NotificationType{domain.NotificationTaskUpdated},
			check: func(t *testing.T, evs []events.Event) {
				assert.Contains(t, evs[0].Message, "Renamed")
			},
		},
		{
			name:     "assigning the same user again is not a reassignment",
			assignee: &a,
			patch:    domain.TaskPatch{AssignedTo: &a},
			want:     []domain.NotificationType{domain.NotificationTaskUpdated},
		},
		{
			name:     "first assignment",
			assignee: nil,
			patch:    domain.TaskPatch{AssignedTo: &a},
			want:     []domain.NotificationType{domain.NotificationTaskAssigned, domain.NotificationTaskUpdated},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			before := newTask(t, creator, tc.assignee)
			after := *before
			require.NoError(t, after.Apply(tc.patch, time.Now()))

			evs := PlanUpdateNotifications(before, &after)
			assert.Equal(t, tc.want, types(evs))
			for _, ev := range evs {
				require.NotNil(t, ev.TaskID)
				assert.Equal(t, before.ID, *ev.TaskID)
			}
			if tc.check != nil {
				tc.check(t, evs)
			}
		})
	}
}

func TestPlanDeleteNotifications(t *testing.T) {
	t.Parallel()
	creator, a := uuid.New(), uuid.New()

	assert.Empty(t, PlanDeleteNotifications(newTask(t, creator, nil)))

	evs := PlanDeleteNotifications(newTask(t, creator, &a))
	require.Len(t, evs, 1)
	assert.Equal(t, domain.NotificationTaskDeleted, evs[0].Type)
	assert.Equal(t, a, evs[0].Recipient)
	assert.Contains(t, evs[0].Message, "Write report")
	assert.Nil(t, evs[0].TaskID)
}
