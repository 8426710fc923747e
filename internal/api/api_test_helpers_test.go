package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/taskhub/internal/api/middleware"
	"github.com/phrazzld/taskhub/internal/api/shared"
	"github.com/phrazzld/taskhub/internal/config"
	"github.com/phrazzld/taskhub/internal/events"
	"github.com/phrazzld/taskhub/internal/mocks"
	"github.com/phrazzld/taskhub/internal/notify"
	"github.com/phrazzld/taskhub/internal/platform/memory"
	"github.com/phrazzld/taskhub/internal/realtime"
	"github.com/phrazzld/taskhub/internal/service"
	"github.com/phrazzld/taskhub/internal/service/auth"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "api-test-secret-that-is-long-enough-32"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testServer wires the handlers over in-memory stores the same way the
// server binary does.
type testServer struct {
	t      *testing.T
	router http.Handler
	hub    *realtime.Hub
	jwt    auth.JWTService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := discardLogger()

	db := memory.NewDB()
	userStore := memory.NewUserStore(db)
	taskStore := memory.NewTaskStore(db)
	notificationStore := memory.NewNotificationStore(db)

	jwtService, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:            testJWTSecret,
		TokenLifetimeMinutes: 60,
	})
	require.NoError(t, err)

	hub := realtime.NewHub(log)
	emitter := events.NewInMemoryEmitter(log)
	emitter.RegisterHandler(notify.NewDispatcher(notificationStore, hub, log))

	users, err := service.NewUserService(userStore, &mocks.MockPasswordHasher{}, jwtService, log)
	require.NoError(t, err)
	tasks, err := service.NewTaskService(taskStore, userStore, emitter, log)
	require.NoError(t, err)
	notifications, err := service.NewNotificationService(notificationStore, log)
	require.NoError(t, err)

	authMW := middleware.NewAuthMiddleware(jwtService, log)
	authHandler := NewAuthHandler(users, log)
	taskHandler := NewTaskHandler(tasks, log)
	notificationHandler := NewNotificationHandler(notifications, log)
	wsHandler := NewWSHandler(hub, []string{"*"}, 4, log)

	r := chi.NewRouter()
	r.Use(middleware.Trace(log))
	r.With(authMW.AuthenticateUpgrade).Get("/ws", wsHandler.Serve)
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(authMW.Authenticate)
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

	return &testServer{t: t, router: r, hub: hub, jwt: jwtService}
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(s.t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) register(name, role string) AuthResponse {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/auth/register", "", RegisterRequest{
		Name:     name,
		Email:    name + "@example.com",
		Password: "password123",
		Role:     role,
	})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())

	var res AuthResponse
	decode(s.t, rec, &res)
	return res
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body shared.ErrorResponse
	decode(t, rec, &body)
	return body.Message
}
