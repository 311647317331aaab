// Package main implements the entry point for the twit API server, which
// serves short posts with optional image attachments.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/phrazzld/twit-api/internal/config"
	"github.com/phrazzld/twit-api/internal/platform/logger"
	"github.com/phrazzld/twit-api/internal/platform/postgres"
)

// main is the entry point for the twit-api server.
// With -migrate it runs the given migration command and exits; otherwise it
// starts the HTTP server and blocks until shutdown.
func main() {
	migrateCmd := flag.String("migrate", "",
		"Run a database migration command and exit ("+strings.Join(postgres.MigrationCommands, ", ")+")")
	flag.Parse()

	if err := run(context.Background(), *migrateCmd); err != nil {
		log.Fatalf("twit-api: %v", err)
	}
}

// run loads configuration, sets up logging and the database, then either
// migrates or serves.
func run(ctx context.Context, migrateCmd string) error {
	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	db, err := setupAppDatabase(ctx, cfg, appLogger)
	if err != nil {
		return err
	}

	if migrateCmd != "" {
		defer closeDatabase(db, appLogger)
		appLogger.Info("Executing migrations", slog.String("command", migrateCmd))
		if err := postgres.Migrate(ctx, db, migrateCmd, appLogger); err != nil {
			return fmt.Errorf("migration %q failed: %w", migrateCmd, err)
		}
		return nil
	}

	app, err := newApplication(cfg, appLogger, db)
	if err != nil {
		closeDatabase(db, appLogger)
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}

// loadAppConfig loads the application configuration from environment variables or config file.
func loadAppConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	if cfg.Auth.JWTSecret != "" {
		slog.Debug("Auth configuration", "jwt_secret_present", true)
	}
	if _, err := os.Stat(cfg.Uploads.Dir); os.IsNotExist(err) {
		slog.Debug("Upload directory will be created on first upload", "dir", cfg.Uploads.Dir)
	}

	return cfg, nil
}
