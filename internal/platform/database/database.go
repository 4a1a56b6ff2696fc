package database

import (
	"context"
	"fmt"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"todo-api/internal/config"
	"todo-api/internal/model"
)

func New(ctx context.Context, cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.DriverMySQL:
		dsn, err := MySQLDSN(cfg.URL)
		if err != nil {
			return nil, err
		}
		dialector = mysql.Open(dsn)
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.URL)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s failed: %w", cfg.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get %s sql db failed: %w", cfg.Driver, err)
	}

	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(1 * time.Hour)
	sqlDB.SetConnMaxIdleTime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping %s failed: %w", cfg.Driver, err)
	}

	return db, nil
}

// MySQLDSN forces parseTime so DATETIME columns scan into time.Time.
func MySQLDSN(raw string) (string, error) {
	dsn, err := mysqldriver.ParseDSN(raw)
	if err != nil {
		return "", fmt.Errorf("parse mysql dsn failed: %w", err)
	}
	dsn.ParseTime = true
	return dsn.FormatDSN(), nil
}

// Migrate creates or updates the users, tags, todos and todo_tags tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.User{}, &model.Tag{}, &model.Todo{}); err != nil {
		return fmt.Errorf("auto migrate tables failed: %w", err)
	}
	return nil
}

func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
