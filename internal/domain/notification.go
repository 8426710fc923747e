package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// NotificationType classifies why a notification was sent.
type NotificationType string

// Notification types. Not every type has a producer yet; the set mirrors
// what clients already render.
const (
	NotificationTaskCreated     NotificationType = "task_created"
	NotificationTaskAssigned    NotificationType = "task_assigned"
	NotificationTaskUpdated     NotificationType = "task_updated"
	NotificationStatusUpdated   NotificationType = "status_updated"
	NotificationPriorityUpdated NotificationType = "priority_updated"
	NotificationDueDateUpdated  NotificationType = "dueDate_updated"
	NotificationTaskDeleted     NotificationType = "task_deleted"
	NotificationTaskCompleted   NotificationType = "task_completed"
	NotificationGeneral         NotificationType = "general"
)

// Valid reports whether t is a known notification type.
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationTaskCreated, NotificationTaskAssigned, NotificationTaskUpdated,
		NotificationStatusUpdated, NotificationPriorityUpdated, NotificationDueDateUpdated,
		NotificationTaskDeleted, NotificationTaskCompleted, NotificationGeneral:
		return true
	}
	return false
}

// Notification is a message addressed to one user, optionally about a task.
// Only IsRead changes after creation.
type Notification struct {
	ID        uuid.UUID        `json:"id"`
	UserID    uuid.UUID        `json:"user"`
	Type      NotificationType `json:"type"`
	Message   string           `json:"message"`
	TaskID    *uuid.UUID       `json:"task,omitempty"`
	IsRead    bool             `json:"isRead"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// NewNotification creates an unread notification. An empty type defaults to general.
func NewNotification(
	userID uuid.UUID,
	typ NotificationType,
	message string,
	taskID *uuid.UUID,
) (*Notification, error) {
	if typ == "" {
		typ = NotificationGeneral
	}
	if taskID != nil && *taskID == uuid.Nil {
		taskID = nil
	}

	now := time.Now().UTC()
	n := &Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      typ,
		Message:   message,
		TaskID:    taskID,
		IsRead:    false,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := n.Validate(); err != nil {
		return nil, err
	}
	return n, nil
}

// Validate checks if the Notification has valid data.
func (n *Notification) Validate() error {
	if n.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrInvalidID)
	}
	if n.UserID == uuid.Nil {
		return NewValidationError("user", "cannot be empty", ErrInvalidID)
	}
	if !n.Type.Valid() {
		return NewValidationError("type", "is not a known notification type", nil)
	}
	if strings.TrimSpace(n.Message) == "" {
		return NewValidationError("message", "is required", nil)
	}
	return nil
}

// MarkRead flips the notification to read.
func (n *Notification) MarkRead(now time.Time) {
	n.IsRead = true
	n.UpdatedAt = now.UTC()
}
