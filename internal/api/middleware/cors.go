package middleware

import (
	"net/http"
	"slices"

	"github.com/go-chi/cors"
)

// CORS answers preflight requests and sets the Access-Control headers for
// the allowed origins. "*" allows any origin. Credentials are only allowed
// when origins are listed explicitly.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: !slices.Contains(allowedOrigins, "*"),
		MaxAge:           600,
	})
}

// OriginAllowed reports whether a websocket handshake from origin may proceed.
// Requests without an Origin header are not from browsers and are allowed.
func OriginAllowed(allowedOrigins []string, origin string) bool {
	if origin == "" {
		return true
	}
	return slices.Contains(allowedOrigins, "*") || slices.Contains(allowedOrigins, origin)
}
