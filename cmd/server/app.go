package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskhub/internal/config"
	"github.com/phrazzld/taskhub/internal/events"
	"github.com/phrazzld/taskhub/internal/notify"
	"github.com/phrazzld/taskhub/internal/realtime"
	"github.com/phrazzld/taskhub/internal/service"
	"github.com/phrazzld/taskhub/internal/service/auth"
	"github.com/redis/go-redis/v9"
)

// application holds all the dependencies for the server.
type application struct {
	config *config.Config
	logger *slog.Logger

	storage *storage

	// Authentication
	jwtService auth.JWTService
	passwords  *auth.BcryptHasher

	// Real-time delivery
	hub      *realtime.Hub
	registry realtime.Registry
	bridge   *realtime.RedisBridge // nil unless redis is configured
	redis    *redis.Client

	// Event pipeline
	emitter events.Emitter
	async   *events.AsyncEmitter // nil in sync mode

	// Services
	userService         service.UserService
	taskService         service.TaskService
	notificationService service.NotificationService
}

// newApplication creates a new application instance with all dependencies initialized.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	var err error
	app.storage, err = setupStorage(ctx, cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to set up storage: %w", err)
	}

	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		app.cleanup(ctx)
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))
	app.passwords = auth.NewBcryptHasher(cfg.Auth.BcryptCost)

	if err := app.setupRealtime(); err != nil {
		app.cleanup(ctx)
		return nil, err
	}
	app.setupEmitter()

	app.userService, err = service.NewUserService(app.storage.users, app.passwords, app.jwtService, logger)
	if err != nil {
		app.cleanup(ctx)
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}

	app.taskService, err = service.NewTaskService(app.storage.tasks, app.storage.users, app.emitter, logger)
	if err != nil {
		app.cleanup(ctx)
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	app.notificationService, err = service.NewNotificationService(app.storage.notifications, logger)
	if err != nil {
		app.cleanup(ctx)
		return nil, fmt.Errorf("failed to create notification service: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// setupRealtime builds the channel registry. With a redis URL the local hub
// sits behind a bridge so pushes reach users connected to other instances.
func (app *application) setupRealtime() error {
	app.hub = realtime.NewHub(app.logger)
	app.registry = app.hub

	cfg := app.config.Realtime
	if cfg.RedisURL == "" {
		return nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("invalid redis url: %w", err)
	}
	app.redis = redis.NewClient(opts)
	app.bridge = realtime.NewRedisBridge(app.redis, cfg.RedisChannel, app.hub, app.logger)
	app.registry = app.bridge
	app.logger.Info("Redis realtime bridge enabled", slog.String("channel", cfg.RedisChannel))
	return nil
}

// setupEmitter wires task events to the notification dispatcher, through a
// worker pool in async mode.
func (app *application) setupEmitter() {
	dispatcher := notify.NewDispatcher(
		app.storage.notifications,
		app.registry,
		app.logger,
		notify.WithLegacyEvents(app.config.Realtime.LegacyEvents),
	)

	direct := events.NewInMemoryEmitter(app.logger)
	direct.RegisterHandler(dispatcher)
	app.emitter = direct

	if app.config.Notifications.Mode == "async" {
		app.async = events.NewAsyncEmitter(direct, events.AsyncConfig{
			WorkerCount: app.config.Notifications.WorkerCount,
			QueueSize:   app.config.Notifications.QueueSize,
		}, app.logger)
		app.async.Start()
		app.emitter = app.async
	}
}

// Run starts the application server, handling lifecycle and cleanup.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources. Queued
// notifications are drained before the database closes.
func (app *application) cleanup(ctx context.Context) {
	if app.async != nil {
		if err := app.async.Stop(ctx); err != nil {
			app.logger.Error("Error draining notification queue", slog.String("error", err.Error()))
		}
	}

	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("Error closing redis client", slog.String("error", err.Error()))
		}
	}

	if app.storage != nil && app.storage.db != nil {
		if err := app.storage.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", slog.String("error", err.Error()))
		}
	}

	app.logger.Info("Application shutdown completed")
}
