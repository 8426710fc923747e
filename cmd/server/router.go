package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/taskhub/internal/api"
	apiMiddleware "github.com/phrazzld/taskhub/internal/api/middleware"
	"github.com/phrazzld/taskhub/internal/redact"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.Trace(app.logger))
	r.Use(apiMiddleware.CORS(app.config.Server.CORSAllowedOrigins))

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService, app.logger)
	authHandler := api.NewAuthHandler(app.userService, app.logger)
	taskHandler := api.NewTaskHandler(app.taskService, app.logger)
	notificationHandler := api.NewNotificationHandler(app.notificationService, app.logger)
	wsHandler := api.NewWSHandler(
		app.registry,
		app.config.Server.CORSAllowedOrigins,
		app.config.Realtime.SendBuffer,
		app.logger,
	)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/auth/me", authHandler.Me)

			r.Post("/tasks", taskHandler.CreateTask)
			r.Get("/tasks", taskHandler.ListTasks)
			r.Put("/tasks/{id}", taskHandler.UpdateTask)
			r.Delete("/tasks/{id}", taskHandler.DeleteTask)

			r.Get("/notifications", notificationHandler.ListNotifications)
			r.Patch("/notifications/read-all", notificationHandler.MarkAllRead)
			r.Patch("/notifications/{id}/read", notificationHandler.MarkRead)
			r.Delete("/notifications/{id}", notificationHandler.DeleteNotification)
		})
	})

	// Websocket clients may pass the token as ?token= since browsers cannot
	// set headers on the handshake.
	r.With(authMiddleware.AuthenticateUpgrade).Get("/ws", wsHandler.Serve)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", redact.ErrorAttr(err))
		}
	})

	return r
}
