package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/taskhub/internal/api/shared"
	"github.com/phrazzld/taskhub/internal/domain"
	"github.com/phrazzld/taskhub/internal/mocks"
	"github.com/phrazzld/taskhub/internal/platform/logger"
	"github.com/phrazzld/taskhub/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticate(t *testing.T) {
	userID := uuid.New()
	validClaims := &auth.Claims{UserID: userID, Role: domain.RoleManager}

	tests := []struct {
		name          string
		header        string
		query         string
		upgrade       bool
		claims        *auth.Claims
		validateErr   error
		wantStatus    int
		wantPrincipal bool
	}{
		{name: "valid token", header: "Bearer valid", claims: validClaims, wantStatus: http.StatusOK, wantPrincipal: true},
		{name: "lowercase scheme", header: "bearer valid", claims: validClaims, wantStatus: http.StatusOK, wantPrincipal: true},
		{name: "missing header", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "expired token", header: "Bearer old", validateErr: auth.ErrExpiredToken, wantStatus: http.StatusUnauthorized},
		{name: "invalid token", header: "Bearer bad", validateErr: auth.ErrInvalidToken, wantStatus: http.StatusUnauthorized},
		{name: "unexpected error", header: "Bearer x", validateErr: errors.New("boom"), wantStatus: http.StatusInternalServerError},
		{name: "query token ignored on api routes", query: "valid", claims: validClaims, wantStatus: http.StatusUnauthorized},
		{name: "query token on upgrade", query: "valid", upgrade: true, claims: validClaims, wantStatus: http.StatusOK, wantPrincipal: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			jwtSvc := &mocks.MockJWTService{Claims: tc.claims, ValidateErr: tc.validateErr}
			mw := NewAuthMiddleware(jwtSvc, nil)

			var gotPrincipal domain.Principal
			var hadPrincipal bool
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPrincipal, hadPrincipal = shared.PrincipalFromContext(r.Context())
				assert.NotNil(t, logger.FromContext(r.Context()))
				w.WriteHeader(http.StatusOK)
			})

			handler := mw.Authenticate(next)
			if tc.upgrade {
				handler = mw.AuthenticateUpgrade(next)
			}

			target := "/api/tasks"
			if tc.query != "" {
				target += "?token=" + tc.query
			}
			req := httptest.NewRequest(http.MethodGet, target, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Equal(t, tc.wantPrincipal, hadPrincipal)
			if tc.wantPrincipal {
				assert.Equal(t, domain.Principal{ID: userID, Role: domain.RoleManager}, gotPrincipal)
			}
		})
	}
}

func TestTrace(t *testing.T) {
	var traceID string
	handler := Trace(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = shared.GetTraceID(r.Context())
		require.NotNil(t, logger.FromContext(r.Context()))
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Len(t, traceID, shared.TraceIDLength*2)
}

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Handled", "yes")
		w.WriteHeader(http.StatusOK)
	})

	t.Run("allowed origin", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		CORS([]string{"http://localhost:3000"})(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("disallowed origin", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
		req.Header.Set("Origin", "http://evil.example")
		CORS([]string{"http://localhost:3000"})(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("wildcard never allows credentials", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
		req.Header.Set("Origin", "http://anything.example")
		CORS([]string{"*"})(next).ServeHTTP(rec, req)

		assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("preflight", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodOptions, "/api/tasks", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", http.MethodPut)
		req.Header.Set("Access-Control-Request-Headers", "Authorization")
		CORS([]string{"*"})(next).ServeHTTP(rec, req)

		assert.Empty(t, rec.Header().Get("X-Handled"), "preflight must not reach the handler")
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPut)
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")
	})
}

func TestOriginAllowed(t *testing.T) {
	assert.True(t, OriginAllowed(nil, ""))
	assert.True(t, OriginAllowed([]string{"*"}, "http://anything"))
	assert.True(t, OriginAllowed([]string{"http://a"}, "http://a"))
	assert.False(t, OriginAllowed([]string{"http://a"}, "http://b"))
}
