package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"jobharvest/internal/api/routes"
	"jobharvest/internal/config"
	"jobharvest/internal/logging"
	"jobharvest/internal/storage"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logging.InitializeLogging(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logging: %v\n", err)
		os.Exit(1)
	}
	defer logging.CloseLogging()
	logger := logging.GetGlobalLogger()

	store, err := storage.NewRedisStore(cfg)
	if err != nil {
		logger.Fatal("Failed to create store", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer store.Close()

	pingCtx, cancel := context.WithTimeout(context.Background(), cfg.Redis.Timeout)
	if err := store.Ping(pingCtx); err != nil {
		cancel()
		logger.Fatal("Storage unreachable", map[string]interface{}{
			"error": err.Error(),
		})
	}
	cancel()

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	routes.SetupRoutes(e, cfg, store)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	go func() {
		logger.Info("Starting server", map[string]interface{}{
			"addr": addr,
		})
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server", map[string]interface{}{})
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
