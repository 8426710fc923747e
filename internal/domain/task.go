package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Priority ranks how urgent a task is.
type Priority string

// Task priorities.
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Status is the progress state of a task.
type Status string

// Task statuses.
const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// MaxTitleLength bounds task titles.
const MaxTitleLength = 200

// Task is a unit of work created by one user and optionally assigned to another.
// CreatedBy never changes after creation.
type Task struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Priority    Priority   `json:"priority"`
	Status      Status     `json:"status"`
	CreatedBy   uuid.UUID  `json:"createdBy"`
	AssignedTo  *uuid.UUID `json:"assignedTo,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// NewTask creates a pending task owned by createdBy. An empty priority
// defaults to medium; a nil or zero assignee leaves the task unassigned.
func NewTask(
	title, description string,
	dueDate *time.Time,
	priority Priority,
	createdBy uuid.UUID,
	assignedTo *uuid.UUID,
) (*Task, error) {
	if priority == "" {
		priority = PriorityMedium
	}
	if assignedTo != nil && *assignedTo == uuid.Nil {
		assignedTo = nil
	}

	now := time.Now().UTC()
	t := &Task{
		ID:          uuid.New(),
		Title:       strings.TrimSpace(title),
		Description: description,
		DueDate:     utcPtr(dueDate),
		Priority:    priority,
		Status:      StatusPending,
		CreatedBy:   createdBy,
		AssignedTo:  assignedTo,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrInvalidID)
	}
	if t.Title == "" {
		return NewValidationError("title", "is required", nil)
	}
	if len(t.Title) > MaxTitleLength {
		return NewValidationError("title", "is too long", nil)
	}
	if !t.Priority.Valid() {
		return NewValidationError("priority", "must be one of low, medium, high", nil)
	}
	if !t.Status.Valid() {
		return NewValidationError("status", "must be one of pending, in-progress, completed", nil)
	}
	if t.CreatedBy == uuid.Nil {
		return NewValidationError("createdBy", "cannot be empty", ErrInvalidID)
	}
	return nil
}

// HasAssignee reports whether the task is assigned to anyone.
func (t *Task) HasAssignee() bool {
	return t.AssignedTo != nil && *t.AssignedTo != uuid.Nil
}

// IsAssignedTo reports whether the task is assigned to userID.
func (t *Task) IsAssignedTo(userID uuid.UUID) bool {
	return t.HasAssignee() && *t.AssignedTo == userID
}

// CanBeModifiedBy reports whether p may update or delete the task.
// Only the creator and admins qualify.
func (t *Task) CanBeModifiedBy(p Principal) bool {
	return p.ID == t.CreatedBy || p.IsAdmin()
}

// TaskPatch is a partial update. A nil field leaves the stored value unchanged.
// An empty Description clears the description and a zero AssignedTo
// unassigns the task.
type TaskPatch struct {
	Title       *string
	Description *string
	DueDate     *time.Time
	Priority    *Priority
	Status      *Status
	AssignedTo  *uuid.UUID
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.DueDate == nil &&
		p.Priority == nil && p.Status == nil && p.AssignedTo == nil
}

// Apply merges the patch into the task and validates the result.
// The task is left untouched when the merged result is invalid.
func (t *Task) Apply(p TaskPatch, now time.Time) error {
	next := *t

	if p.Title != nil {
		next.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		next.Description = *p.Description
	}
	if p.DueDate != nil {
		next.DueDate = utcPtr(p.DueDate)
	}
	if p.Priority != nil {
		next.Priority = *p.Priority
	}
	if p.Status != nil {
		next.Status = *p.Status
	}
	if p.AssignedTo != nil {
		if *p.AssignedTo == uuid.Nil {
			next.AssignedTo = nil
		} else {
			id := *p.AssignedTo
			next.AssignedTo = &id
		}
	}

	if err := next.Validate(); err != nil {
		return err
	}

	next.UpdatedAt = now.UTC()
	*t = next
	return nil
}

// TaskListing is a task as shown in a user's task list, with the assignee
// resolved to a public summary.
type TaskListing struct {
	Task
	AssignedTo *UserSummary `json:"assignedTo"`
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
