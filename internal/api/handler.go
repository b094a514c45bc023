// Package api provides HTTP handlers and JSON envelope helpers.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ashureev/portfolio-assistant/internal/shared"
)

// maxRequestBodySize is the maximum accepted JSON body (1MB).
const maxRequestBodySize = 1 << 20

// ErrorResponse is the failure envelope returned by every handler.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Detail  string `json:"detail,omitempty"`
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to encode response", "error", err)
	}
}

// Error writes a failure envelope with the given status code.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorResponse{Success: false, Error: message})
}

// WriteError maps err to a status code and failure envelope. Causes of
// server-side failures are only exposed when debug is set.
func WriteError(w http.ResponseWriter, r *http.Request, err error, debug bool) {
	status := shared.HTTPStatus(err)
	resp := ErrorResponse{Success: false}

	switch shared.KindOf(err) {
	case shared.KindValidation:
		resp.Error = "invalid input"
		resp.Detail = shared.PublicMessage(err)
	default:
		resp.Error = shared.PublicMessage(err)
		resp.Detail = "Internal server error"
		if debug {
			resp.Detail = err.Error()
		}
		slog.Error("Request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"kind", shared.KindOf(err).String(),
			"error", err,
		)
	}

	JSON(w, status, resp)
}

// DecodeJSON reads a size-limited JSON body into T.
func DecodeJSON[T any](w http.ResponseWriter, r *http.Request) (T, error) {
	var data T
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return data, shared.Validation("request body too large")
		}
		return data, shared.Validation("invalid request body")
	}
	return data, nil
}
