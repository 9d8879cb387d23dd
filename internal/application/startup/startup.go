// Package startup prepares the application server
package startup

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bleonardo0/cobi-sub002/internal/application/container"
	"github.com/bleonardo0/cobi-sub002/internal/infrastructure/observability/logging"
	"github.com/bleonardo0/cobi-sub002/internal/infrastructure/observability/performance"
	persistence "github.com/bleonardo0/cobi-sub002/internal/infrastructure/persistence/analytics"
	"github.com/bleonardo0/cobi-sub002/internal/infrastructure/persistence/database"
	"github.com/bleonardo0/cobi-sub002/internal/presentation/http/server"
	"github.com/bleonardo0/cobi-sub002/pkg/config"
)

// Initialize performs the complete startup sequence and blocks until
// shutdown completes.
func Initialize() error {
	setupGinMode()

	start := time.Now().UTC()

	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	logger.Startup().Info("Initializing view analytics engine")

	// Step 1: Open the event store
	db, err := openDatabase(logger)
	if err != nil {
		return fmt.Errorf("failed to open event store: %w", err)
	}
	defer db.Close()

	// Step 2: Bootstrap schema
	if err := persistence.EnsureSchema(db); err != nil {
		return fmt.Errorf("failed to bootstrap schema: %w", err)
	}
	logger.Startup().Info("Event store schema verified")

	// Step 3: Create dependency injection container
	perfTracker := performance.NewTracker(nil)
	appContainer := container.NewContainer(db, logger, perfTracker)
	logger.Startup().Info("Dependency injection container created with singleton services")

	// Step 4: Start HTTP server
	port := config.Port
	httpServer := server.New(port, appContainer)

	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.System().Info("Starting HTTP server", "address", ":"+port)
		if err := httpServer.Start(); err != nil {
			logger.System().Error("HTTP server failed", "error", err.Error())
		}
	}()

	logger.Startup().Info("Application startup complete",
		"totalDuration", time.Since(start),
		"port", port)

	<-gracefulShutdown
	logger.Shutdown().Info("Shutdown signal received, starting graceful shutdown...")

	shutdownStart := time.Now()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Shutdown().Error("Error during server shutdown", "error", err.Error())
	} else {
		logger.Shutdown().Info("HTTP server stopped successfully")
	}

	logger.Shutdown().Info("Application shutdown complete",
		"totalUptime", time.Since(start),
		"shutdownDuration", time.Since(shutdownStart))

	return nil
}

func newLogger() (*logging.ChanneledLogger, error) {
	loggerConfig := logging.DefaultLoggerConfig()
	loggerConfig.OutputToFile = config.LogToFile
	loggerConfig.LogDirectory = config.LogDirectory
	loggerConfig.JSONFormat = config.LogJSONFormat
	if os.Getenv("LOG_LEVEL") == "debug" {
		loggerConfig.DefaultLevel = slog.LevelDebug
	}
	return logging.NewChanneledLogger(loggerConfig)
}

// openDatabase connects to libsql when a Turso URL is configured,
// otherwise to the local SQLite file.
func openDatabase(logger *logging.ChanneledLogger) (*database.DB, error) {
	if config.TursoDatabaseURL != "" {
		dsn := database.TursoConnectionString(config.TursoDatabaseURL, config.TursoAuthToken)
		return database.NewConnectionWithLogger("libsql", dsn, logger)
	}

	if dir := filepath.Dir(config.DBPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	return database.NewConnectionWithLogger(config.DBDriver, config.DBPath, logger)
}

// setupGinMode configures gin for the deployment environment
func setupGinMode() {
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
}
