/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the salary arrear API server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load ARREAR_* environment configuration, then apply flags
  2. Build the zap logger
  3. Load reference data (embedded, or ARREAR_REFERENCE_FILE)
  4. Initialize SQLite report store
  5. Create API handler and router
  6. Start retention scheduler
  7. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -addr    HTTP listen address (overrides ARREAR_ADDR)
  -db      SQLite database path (overrides ARREAR_DB)
           Use ":memory:" for in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the retention scheduler
  4. Close database connection
  5. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/arrear.db"

  # Run with in-memory database and console logs
  ARREAR_LOG_FORMAT=console ./server -db=":memory:"

  # Run on different port
  ./server -addr=:3000

SEE ALSO:
  - config/config.go: Environment variables
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/warp/arrear-engine/api"
	"github.com/warp/arrear-engine/arrear"
	"github.com/warp/arrear-engine/config"
	"github.com/warp/arrear-engine/factory"
	"github.com/warp/arrear-engine/logging"
	"github.com/warp/arrear-engine/store/sqlite"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "server:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Flags
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address")
	flag.StringVar(&cfg.DB, "db", cfg.DB, "SQLite database path")
	flag.Parse()

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer logger.Sync()

	// Reference data
	ref, err := factory.Load(cfg.ReferenceFile)
	if err != nil {
		return fmt.Errorf("failed to load reference data: %w", err)
	}
	engine := ref.NewEngine(append(cfg.EngineOptions(), arrear.WithLogger(logger.Named("engine")))...)

	// Initialize store
	store, err := sqlite.New(cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer store.Close()

	// Initialize handler and router
	handler := api.NewHandler(ref, engine, store, logger.Named("api"))
	router := api.NewRouter(handler, api.RouterOptions{
		CORSOrigins: cfg.CORSOrigins,
		RateLimit:   cfg.RateLimit,
	})

	scheduler := api.NewRetentionScheduler(store, cfg.Retention, logger.Named("retention"))
	scheduler.CheckInterval = cfg.RetentionInterval
	scheduler.Start()
	defer scheduler.Stop()

	// Create server
	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("addr", cfg.Addr),
			zap.String("db", cfg.DB),
			zap.String("reference", ref.Name),
			zap.Bool("suppress_increment_on_promotion", cfg.SuppressIncrementOnPromotion),
			zap.String("increment_timing", cfg.IncrementTiming),
			zap.Int("max_months", cfg.MaxMonths),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case sig := <-quit:
		logger.Info("shutting down server", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
