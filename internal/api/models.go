package api

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskhub/internal/domain"
	"github.com/phrazzld/taskhub/internal/service"
)

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Name     string `json:"name"     validate:"required,max=100"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Role     string `json:"role"` // unknown or blank roles register as "user"
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	ID    uuid.UUID   `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`

	// Token is the JWT used for API and websocket authorization
	Token string `json:"token"`
}

// CreateTaskRequest defines the payload for creating a task.
// Dates are RFC 3339 timestamps or plain YYYY-MM-DD days.
type CreateTaskRequest struct {
	Title       string  `json:"title"       validate:"required,max=200"`
	Description string  `json:"description"`
	DueDate     *string `json:"dueDate"`
	Priority    string  `json:"priority"    validate:"omitempty,oneof=low medium high"`
	AssignedTo  *string `json:"assignedTo"`
}

// UpdateTaskRequest defines the payload for a partial task update.
// Omitted fields are left unchanged. An empty assignedTo unassigns the task.
type UpdateTaskRequest struct {
	Title       *string `json:"title"       validate:"omitempty,max=200"`
	Description *string `json:"description"`
	DueDate     *string `json:"dueDate"`
	Priority    *string `json:"priority"    validate:"omitempty,oneof=low medium high"`
	Status      *string `json:"status"      validate:"omitempty,oneof=pending in-progress completed"`
	AssignedTo  *string `json:"assignedTo"`
}

// MessageResponse is returned by endpoints that only confirm an action.
type MessageResponse struct {
	Message string `json:"message"`
}

// MarkAllReadResponse is returned by the mark-all-read endpoint.
type MarkAllReadResponse struct {
	Message string `json:"message"`
	Updated int64  `json:"updated"`
}

func authResponse(res *service.AuthResult) AuthResponse {
	return AuthResponse{
		ID:    res.User.ID,
		Name:  res.User.Name,
		Email: res.User.Email,
		Role:  res.User.Role,
		Token: res.Token,
	}
}

func (req CreateTaskRequest) toInput() (service.CreateTaskInput, error) {
	in := service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    domain.Priority(req.Priority),
	}

	if req.DueDate != nil {
		due, err := parseDueDate(*req.DueDate)
		if err != nil {
			return in, err
		}
		in.DueDate = &due
	}

	if req.AssignedTo != nil && *req.AssignedTo != "" {
		id, err := parseAssignee(*req.AssignedTo)
		if err != nil {
			return in, err
		}
		in.AssignedTo = &id
	}

	return in, nil
}

func (req UpdateTaskRequest) toPatch() (domain.TaskPatch, error) {
	patch := domain.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
	}

	if req.DueDate != nil {
		due, err := parseDueDate(*req.DueDate)
		if err != nil {
			return patch, err
		}
		patch.DueDate = &due
	}
	if req.Priority != nil {
		p := domain.Priority(*req.Priority)
		patch.Priority = &p
	}
	if req.Status != nil {
		s := domain.Status(*req.Status)
		patch.Status = &s
	}
	if req.AssignedTo != nil {
		id := uuid.Nil
		if *req.AssignedTo != "" {
			parsed, err := parseAssignee(*req.AssignedTo)
			if err != nil {
				return patch, err
			}
			id = parsed
		}
		patch.AssignedTo = &id
	}

	return patch, nil
}

func parseDueDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Time{}, domain.NewValidationError("dueDate", "must be an RFC 3339 timestamp or YYYY-MM-DD date", nil)
}

func parseAssignee(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, domain.NewValidationError("assignedTo", "has invalid format", domain.ErrInvalidID)
	}
	return id, nil
}
