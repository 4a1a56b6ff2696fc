package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"todo-api/internal/config"
	"todo-api/internal/platform/database"
)

type App struct {
	Config *config.Config
	DB     *gorm.DB
	Logger *slog.Logger

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	logger := NewLogger(cfg.App)

	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		_ = database.Close(db)
		return nil, err
	}
	logger.Info("connected to database", slog.String("driver", cfg.Database.Driver))

	return &App{
		Config:    cfg,
		DB:        db,
		Logger:    logger,
		StartedAt: time.Now(),
	}, nil
}

func (a *App) Close() error {
	if a.DB == nil {
		return nil
	}
	return database.Close(a.DB)
}
