package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ashureev/portfolio-assistant/internal/config"
)

const healthCheckTimeout = 5 * time.Second

// Pinger is a dependency the health check can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	cfg    *config.Config
	checks map[string]Pinger
}

// NewHealthHandler creates a health handler probing the named dependencies.
func NewHealthHandler(cfg *config.Config, checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{cfg: cfg, checks: checks}
}

// HealthResponse is returned by the health endpoints.
type HealthResponse struct {
	Status  string            `json:"status"`
	Service string            `json:"service"`
	Version string            `json:"version"`
	Model   string            `json:"model"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// Health returns the health status of the API and its dependencies.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	resp := HealthResponse{
		Status:  "healthy",
		Service: h.cfg.AppName,
		Version: config.Version,
		Model:   h.cfg.Model.Name,
		Checks:  map[string]string{"api": "ok"},
	}
	statusCode := http.StatusOK

	for name, dep := range h.checks {
		if err := dep.Ping(ctx); err != nil {
			slog.Error("Health check failed", "dependency", name, "error", err)
			resp.Status = "degraded"
			resp.Checks[name] = "unreachable"
			statusCode = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}

	JSON(w, statusCode, resp)
}

// Root describes the service.
func (h *HealthHandler) Root(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, map[string]string{
		"service": h.cfg.AppName,
		"version": config.Version,
		"status":  "operational",
		"health":  "/health",
	})
}

// RegisterHealth registers the root and health check routes.
func (h *HealthHandler) RegisterHealth(r chi.Router) {
	r.Get("/", h.Root)
	r.Get("/health", h.Health)
	r.Get("/api/assistant/health", h.Health)
}
