package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"jobharvest/internal/config"
	"jobharvest/internal/logging"
	"jobharvest/internal/runner"
	"jobharvest/internal/storage"
	"jobharvest/pkg/models"
	"jobharvest/pkg/utils"
)

// RunHandler exposes scraping runs over HTTP. Runs execute in the
// background; clients poll the stats endpoint with the returned run id.
type RunHandler struct {
	cfg   *config.Config
	store storage.Store
}

// NewRunHandler creates the handler.
func NewRunHandler(cfg *config.Config, store storage.Store) *RunHandler {
	return &RunHandler{cfg: cfg, store: store}
}

// StartRun handles POST /api/v1/runs: validates the request, kicks off
// the run asynchronously, and answers 202 with the run id.
func (h *RunHandler) StartRun(c echo.Context) error {
	logger := logging.GetGlobalLogger()

	var req models.SearchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:     "invalid_request",
			Message:   "Request body could not be parsed",
			Timestamp: time.Now(),
		})
	}

	if err := config.ValidateSearchRequest(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:     "validation_failed",
			Message:   err.Error(),
			Timestamp: time.Now(),
		})
	}

	runID := utils.GenerateRunID()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()

		if _, err := runner.ExecuteWithID(ctx, h.cfg, h.store, &req, runID); err != nil {
			logger.Error("Background run failed", map[string]interface{}{
				"run_id": runID,
				"error":  err.Error(),
			})
		}
	}()

	return c.JSON(http.StatusAccepted, models.RunAcceptedResponse{
		RunID:     runID,
		Status:    "accepted",
		Timestamp: time.Now(),
	})
}

// GetRunStats handles GET /api/v1/runs/:id.
func (h *RunHandler) GetRunStats(c echo.Context) error {
	runID := c.Param("id")

	stats, err := h.store.GetRunStats(c.Request().Context(), runID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:     "not_found",
				Message:   "No stats for run " + runID,
				Timestamp: time.Now(),
			})
		}
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:     "storage_error",
			Message:   err.Error(),
			Timestamp: time.Now(),
		})
	}

	return c.JSON(http.StatusOK, models.RunStatsResponse{Success: true, Stats: stats})
}

// GetRunRecords handles GET /api/v1/runs/:id/records.
func (h *RunHandler) GetRunRecords(c echo.Context) error {
	runID := c.Param("id")

	records, err := h.store.GetRecords(c.Request().Context(), runID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:     "storage_error",
			Message:   err.Error(),
			Timestamp: time.Now(),
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"run_id":  runID,
		"count":   len(records),
		"records": records,
	})
}
