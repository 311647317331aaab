package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/twit-api/internal/blob"
	"github.com/phrazzld/twit-api/internal/config"
	"github.com/phrazzld/twit-api/internal/events"
	"github.com/phrazzld/twit-api/internal/platform/postgres"
	"github.com/phrazzld/twit-api/internal/service"
	"github.com/phrazzld/twit-api/internal/service/auth"
	"github.com/phrazzld/twit-api/internal/store"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores
	userStore store.UserStore
	twitStore store.TwitStore

	// Services
	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier
	userService      service.UserService
	twitService      service.TwitService

	saver        *blob.LocalSaver
	eventEmitter *events.InMemoryEventEmitter
}

// newApplication creates a new application instance with all dependencies initialized.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.passwordVerifier = auth.NewBcryptVerifier()

	app.userStore = postgres.NewPostgresUserStore(db, cfg.Auth.BCryptCost, logger)
	app.twitStore = postgres.NewPostgresTwitStore(db, logger)

	app.saver = blob.NewLocalSaver(cfg.Uploads.Dir, cfg.Uploads.URLPrefix, cfg.Uploads.AllowedTypes, logger)
	app.eventEmitter = events.NewInMemoryEventEmitter(logger)

	var twitOpts []service.TwitServiceOption
	if cfg.Uploads.PruneSuperseded {
		app.eventEmitter.RegisterHandler(blob.NewCleanupHandler(app.saver, logger))
		twitOpts = append(twitOpts, service.WithImagePruning(app.eventEmitter))
		logger.Info("Superseded attachment pruning enabled")
	}

	app.userService = service.NewUserService(app.userStore, app.jwtService, app.passwordVerifier, logger)
	app.twitService, err = service.NewTwitService(app.twitStore, logger, twitOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create twit service: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.db != nil {
		closeDatabase(app.db, app.logger)
	}
	app.logger.Info("Application shutdown completed")
}
