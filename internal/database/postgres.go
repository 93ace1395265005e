package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/FiifiQwontwo/PhotoIsa/internal/config"
	"github.com/FiifiQwontwo/PhotoIsa/internal/models"
)

// ConnectPostgres opens the gorm connection and runs migrations.
// TranslateError lets duplicate-key violations surface as gorm.ErrDuplicatedKey.
func ConnectPostgres(cfg config.PostgresCfg, logger *zap.SugaredLogger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		logger.Errorf("Postgres connection failed: %v", err)
		return nil, fmt.Errorf("gorm open: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("db.DB(): %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		logger.Errorf("Postgres ping failed: %v", err)
		return nil, fmt.Errorf("ping: %w", err)
	}

	if err := db.AutoMigrate(&models.User{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	logger.Info("Postgres connected successfully")
	return db, nil
}
