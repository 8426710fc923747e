package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/taskhub/internal/api/shared"
	"github.com/phrazzld/taskhub/internal/domain"
)

var errInvalidJSON = errors.New("invalid request body")

// getPrincipalFromContext extracts the authenticated principal placed in the
// request context by the authentication middleware.
func getPrincipalFromContext(r *http.Request) (domain.Principal, bool) {
	return shared.PrincipalFromContext(r.Context())
}

// getPathUUID extracts a UUID from the URL path parameters.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "is required", domain.ErrValidation)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "has invalid format", domain.ErrInvalidID)
	}

	return id, nil
}

// handlePrincipalAndPathUUID extracts both the principal and a UUID path
// parameter, writing an error response if either is missing.
func handlePrincipalAndPathUUID(
	w http.ResponseWriter,
	r *http.Request,
	paramName string,
	log *slog.Logger,
) (domain.Principal, uuid.UUID, bool) {
	principal, ok := requirePrincipal(w, r, log)
	if !ok {
		return domain.Principal{}, uuid.Nil, false
	}

	pathID, err := getPathUUID(r, paramName)
	if err != nil {
		log.Debug("invalid path parameter",
			slog.String("param_name", paramName),
			slog.String("value", chi.URLParam(r, paramName)))
		HandleAPIError(w, r, err, "")
		return domain.Principal{}, uuid.Nil, false
	}

	return principal, pathID, true
}

// requirePrincipal writes a 401 when the request carries no principal.
func requirePrincipal(w http.ResponseWriter, r *http.Request, log *slog.Logger) (domain.Principal, bool) {
	principal, ok := getPrincipalFromContext(r)
	if !ok {
		log.Warn("principal not found in request context")
		HandleAPIError(w, r, domain.ErrUnauthenticated, "")
		return domain.Principal{}, false
	}
	return principal, true
}

// decodeAndValidate reads a JSON body into dst and runs struct validation.
func decodeAndValidate(r *http.Request, dst interface{}) error {
	if err := shared.DecodeJSON(r, dst); err != nil {
		if errors.Is(err, shared.ErrEmptyBody) {
			return err
		}
		return fmt.Errorf("%w: %v", errInvalidJSON, err)
	}
	return shared.ValidateRequest(dst)
}
