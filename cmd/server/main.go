/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the traffic engine HTTP server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (flags over TRAFFIC_* environment variables)
  2. Initialize SQLite store
  3. Create workspace, metrics and API handler
  4. Restore saved parameters and the latest upload
  5. Start server with graceful shutdown

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/traffic.db"

  # Run with in-memory database and JSON logs
  TRAFFIC_LOG_FORMAT=json ./server -db=":memory:"

SEE ALSO:
  - config/config.go: All flags and variables
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/traffic-engine/api"
	"github.com/warp/traffic-engine/attendance"
	"github.com/warp/traffic-engine/config"
	"github.com/warp/traffic-engine/logging"
	"github.com/warp/traffic-engine/metrics"
	"github.com/warp/traffic-engine/store/sqlite"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(2)
	}
	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	// Initialize store
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		logger.Error("failed to initialize database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	// Initialize handler
	m := metrics.New()
	ws := attendance.NewWorkspace(cfg.Params, attendance.WithObserver(m))
	handler := api.NewHandler(store, ws, m, logger)
	handler.MaxUploadBytes = cfg.MaxUploadBytes()
	handler.KeepUploads = cfg.KeepUploads

	// Restore the last published upload
	if err := handler.LoadState(context.Background()); err != nil {
		logger.Warn("failed to restore state", "error", err)
	}

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      api.NewRouter(handler, cfg.AllowedOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server starting", "addr", server.Addr, "db", cfg.DBPath)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		return
	}

	logger.Info("server stopped")
}
