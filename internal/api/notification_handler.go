package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/taskhub/internal/api/shared"
	"github.com/phrazzld/taskhub/internal/platform/logger"
	"github.com/phrazzld/taskhub/internal/service"
)

// NotificationHandler serves the authenticated user's notifications.
type NotificationHandler struct {
	notifications service.NotificationService
	logger        *slog.Logger
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifications service.NotificationService, logger *slog.Logger) *NotificationHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for NotificationHandler")
	}
	return &NotificationHandler{
		notifications: notifications,
		logger:        logger.With(slog.String("component", "notification_handler")),
	}
}

// ListNotifications handles GET /notifications, newest first.
func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	principal, ok := requirePrincipal(w, r, log)
	if !ok {
		return
	}

	list, err := h.notifications.List(r.Context(), principal.ID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to fetch notifications")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, list)
}

// MarkRead handles PATCH /notifications/{id}/read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	principal, id, ok := handlePrincipalAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	n, err := h.notifications.MarkRead(r.Context(), principal.ID, id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update notification")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, n)
}

// MarkAllRead handles PATCH /notifications/read-all
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	principal, ok := requirePrincipal(w, r, log)
	if !ok {
		return
	}

	updated, err := h.notifications.MarkAllRead(r.Context(), principal.ID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update notifications")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, MarkAllReadResponse{
		Message: "All notifications marked as read",
		Updated: updated,
	})
}

// DeleteNotification handles DELETE /notifications/{id}
func (h *NotificationHandler) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	principal, id, ok := handlePrincipalAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	if err := h.notifications.Delete(r.Context(), principal.ID, id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete notification")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{Message: "Notification deleted"})
}
