package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"jobharvest/internal/storage"
)

// HealthHandler reports service liveness and storage readiness.
type HealthHandler struct {
	store     storage.Store
	startedAt time.Time
}

// NewHealthHandler creates the handler.
func NewHealthHandler(store storage.Store) *HealthHandler {
	return &HealthHandler{store: store, startedAt: time.Now()}
}

// Health handles GET /health: always 200 while the process runs.
func (h *HealthHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"uptime":    time.Since(h.startedAt).String(),
		"timestamp": time.Now(),
	})
}

// Ready handles GET /health/ready: 503 until storage answers.
func (h *HealthHandler) Ready(c echo.Context) error {
	if err := h.store.Ping(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]interface{}{
			"status": "not_ready",
			"error":  err.Error(),
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status": "ready",
	})
}
