package service

import (
	"fmt"

	"github.com/phrazzld/taskhub/internal/domain"
	"github.com/phrazzld/taskhub/internal/events"
)

// PlanCreateNotifications returns the events caused by creating task.
// Assigning a task to yourself notifies nobody.
func PlanCreateNotifications(task *domain.Task) []events.Event {
	if !task.HasAssignee() || *task.AssignedTo == task.CreatedBy {
		return nil
	}
	return []events.Event{
		events.NewEvent(*task.AssignedTo, domain.NotificationTaskAssigned,
			fmt.Sprintf("You have been assigned a new task: %q", task.Title), &task.ID),
	}
}

// PlanUpdateNotifications returns the events caused by changing before into
// after, in delivery order. A reassignment that also changes the status
// yields three events for the new assignee.
func PlanUpdateNotifications(before, after *domain.Task) []events.Event {
	if !after.HasAssignee() {
		return nil
	}
	assignee := *after.AssignedTo
	var out []events.Event

	if !before.IsAssignedTo(assignee) {
		out = append(out, events.NewEvent(assignee, domain.NotificationTaskAssigned,
			fmt.Sprintf("You have been assigned to the task: %q", after.Title), &after.ID))
	}

	out = append(out, events.NewEvent(assignee, domain.NotificationTaskUpdated,
		fmt.Sprintf("Your task %q has been updated.", after.Title), &after.ID))

	if before.Status != after.Status {
		var msg string
		if after.Status == domain.StatusCompleted {
			msg = fmt.Sprintf("Task %q has been marked as completed.", after.Title)
		} else {
			msg = fmt.Sprintf("The status of task %q changed to %s.", after.Title, after.Status)
		}
		out = append(out, events.NewEvent(assignee, domain.NotificationStatusUpdated, msg, &after.ID))
	}

	return out
}

// PlanDeleteNotifications returns the events caused by deleting task.
// The task no longer exists, so the events carry no task reference.
func PlanDeleteNotifications(task *domain.Task) []events.Event {
	if !task.HasAssignee() {
		return nil
	}
	return []events.Event{
		events.NewEvent(*task.AssignedTo, domain.NotificationTaskDeleted,
			fmt.Sprintf("The task %q assigned to you has been deleted.", task.Title), nil),
	}
}
