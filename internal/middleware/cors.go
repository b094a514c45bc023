// Package middleware provides HTTP middleware for the portfolio API.
package middleware

import (
	"net/http"
	"slices"

	"github.com/go-chi/cors"

	"github.com/ashureev/portfolio-assistant/internal/identity"
)

// CORS returns middleware that handles CORS headers for allowedOrigins.
// Credentials are only allowed when every origin is explicit; echoing a
// wildcard origin with credentials would enable CSRF.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	wildcard := slices.Contains(allowedOrigins, "*")
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", identity.SessionHeaderName},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: !wildcard,
		MaxAge:           300,
	})
}
