package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"jobharvest/internal/api/handlers"
	"jobharvest/internal/config"
	"jobharvest/internal/storage"
)

// SetupRoutes wires middleware and endpoints onto the echo instance.
func SetupRoutes(e *echo.Echo, cfg *config.Config, store storage.Store) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())

	runHandler := handlers.NewRunHandler(cfg, store)
	healthHandler := handlers.NewHealthHandler(store)

	e.GET("/health", healthHandler.Health)
	e.GET("/health/live", healthHandler.Health)
	e.GET("/health/ready", healthHandler.Ready)

	v1 := e.Group("/api/v1")
	v1.POST("/runs", runHandler.StartRun)
	v1.GET("/runs/:id", runHandler.GetRunStats)
	v1.GET("/runs/:id/records", runHandler.GetRunRecords)

	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"service": "jobharvest",
			"status":  "running",
			"endpoints": []string{
				"POST /api/v1/runs",
				"GET /api/v1/runs/:id",
				"GET /api/v1/runs/:id/records",
				"GET /health",
			},
		})
	})
}
