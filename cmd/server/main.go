/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the debt tracker server. Handles configuration,
  dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env + environment)
  2. Configure logging
  3. Initialize the selected store (json file or sqlite)
  4. Create API handler and router
  5. Start the nightly paid-off refresh
  6. Start server with graceful shutdown

CONFIGURATION:
  PORT          HTTP server port (default: 8080)
  STORE_DRIVER  "json" or "sqlite" (default: json)
  STORE_PATH    JSON file or SQLite database path (default: dados.json)
  LOG_LEVEL     logrus level name (default: info)
  REFRESH_SPEC  cron expression for the paid-off refresh; empty disables

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the scheduler, close the store
  4. Exit

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - config/config.go: Environment loading
*/
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rodrigogonn/debtors/api"
	"github.com/rodrigogonn/debtors/config"
	"github.com/rodrigogonn/debtors/ledger"
	"github.com/rodrigogonn/debtors/store/jsonfile"
	"github.com/rodrigogonn/debtors/store/sqlite"
)

func main() {
	cfg := config.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	// Initialize store
	var store ledger.Store
	switch cfg.StoreDriver {
	case "sqlite":
		s, err := sqlite.New(cfg.StorePath)
		if err != nil {
			log.WithError(err).Fatal("failed to open sqlite store")
		}
		defer s.Close()
		store = s
	case "json":
		store = jsonfile.New(cfg.StorePath, log)
	default:
		log.WithField("driver", cfg.StoreDriver).Fatal("unknown store driver")
	}

	// Initialize handler and router
	handler := api.NewHandler(store, log)
	router := api.NewRouter(handler)

	// Nightly paid-off refresh
	var scheduler *api.RefreshScheduler
	if cfg.RefreshSpec != "" {
		scheduler = api.NewRefreshScheduler(store, log)
		scheduler.Spec = cfg.RefreshSpec
		if err := scheduler.Start(); err != nil {
			log.WithError(err).Fatal("failed to start scheduler")
		}
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{
			"port":   cfg.Port,
			"driver": cfg.StoreDriver,
			"path":   cfg.StorePath,
		}).Info("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Fatal("server forced to shutdown")
	}
	if scheduler != nil {
		scheduler.Stop()
	}

	log.Info("server stopped")
}
