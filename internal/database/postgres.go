package database

import (
	"fmt"
	"path/filepath"
	"runtime"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/dosewise/dosewise-bot/internal/config"
	"github.com/dosewise/dosewise-bot/internal/database/migrations"
	"github.com/dosewise/dosewise-bot/internal/domain"
	apperrors "github.com/dosewise/dosewise-bot/internal/errors"
	"github.com/dosewise/dosewise-bot/internal/logger"
)

// NewPostgresDB opens the PostgreSQL connection and brings the schema up to
// date: SQL migrations from the migrations directory, registered coded
// migrations, then AutoMigrate for the models.
func NewPostgresDB(cfg config.DBConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return nil, apperrors.NewInternalError(fmt.Errorf("failed to get current file path"))
	}
	migrationsDir := filepath.Join(filepath.Dir(filename), "migrations")

	if err := migrations.LoadSQLMigrations(db, migrationsDir); err != nil {
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}
	if err := migrations.RunMigrations(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	logger.Info("Database connection established and migrations completed")
	return db, nil
}

// AutoMigrate migrates the model schema. Shared with the sqlite-backed
// service tests.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&domain.User{}, &domain.Substance{}, &domain.Dose{})
}
