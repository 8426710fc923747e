package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/taskhub/internal/config"
	"github.com/phrazzld/taskhub/internal/platform/memory"
	"github.com/phrazzld/taskhub/internal/platform/postgres"
	"github.com/phrazzld/taskhub/internal/store"
)

// storage bundles the stores for the configured backend.
type storage struct {
	users         store.UserStore
	tasks         store.TaskStore
	notifications store.NotificationStore
	db            *sqlx.DB // nil for the memory driver
}

// setupAppDatabase establishes a connection to the database and configures connection pools.
func setupAppDatabase(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*sqlx.DB, error) {
	db, err := sqlx.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(max(cfg.MaxOpenConns/2, 1))
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Database connection established")
	return db, nil
}

// setupStorage builds the stores for cfg.Driver, migrating the schema first
// when auto_migrate is set.
func setupStorage(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*storage, error) {
	if cfg.Driver == "memory" {
		logger.Warn("using in-memory storage; data is lost on restart")
		db := memory.NewDB()
		return &storage{
			users:         memory.NewUserStore(db),
			tasks:         memory.NewTaskStore(db),
			notifications: memory.NewNotificationStore(db),
		}, nil
	}

	db, err := setupAppDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	if cfg.AutoMigrate {
		if err := postgres.Migrate(ctx, db.DB, logger); err != nil {
			_ = db.Close()
			return nil, err
		}
		logger.Info("Database migrations applied")
	}

	return &storage{
		users:         postgres.NewPostgresUserStore(db, logger),
		tasks:         postgres.NewPostgresTaskStore(db, logger),
		notifications: postgres.NewPostgresNotificationStore(db, logger),
		db:            db,
	}, nil
}

// handleMigrations runs a single migration command against the configured database.
func handleMigrations(ctx context.Context, cfg *config.Config, logger *slog.Logger, command string) error {
	if cfg.Database.Driver != "postgres" {
		return fmt.Errorf("migrations require the postgres driver, got %q", cfg.Database.Driver)
	}

	db, err := setupAppDatabase(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	logger.Info("Executing migrations", slog.String("command", command))
	switch command {
	case "up":
		return postgres.Migrate(ctx, db.DB, logger)
	case "status":
		return postgres.MigrationStatus(ctx, db.DB, logger)
	case "reset":
		return postgres.ResetMigrations(ctx, db.DB, logger)
	default:
		return fmt.Errorf("unknown migration command %q", command)
	}
}
