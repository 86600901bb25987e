package handlers

import (
	"context"
	"log/slog"
	"net/http"
)

// HealthHandler reports liveness and storage health
type HealthHandler struct {
	check   func(ctx context.Context) error
	version string
}

// NewHealthHandler creates a health handler. A nil check always reports healthy.
func NewHealthHandler(check func(ctx context.Context) error, version string) *HealthHandler {
	return &HealthHandler{check: check, version: version}
}

// Health reports service health
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.check != nil {
		if err := h.check(r.Context()); err != nil {
			slog.Error("Health check failed", "error", err)
			_ = respondJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status":   "unhealthy",
				"database": "error",
			})
			return
		}
	}
	_ = JSONResponse(w, map[string]string{
		"status":  "healthy",
		"version": h.version,
	})
}
