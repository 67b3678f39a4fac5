package db

import (
	"fmt"

	"reactgram/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Config returns the GORM settings shared by every dialect. TranslateError makes
// unique violations surface as gorm.ErrDuplicatedKey.
func Config() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	}
}

// Open connects to Postgres and migrates the schema.
func Open(dsn string, log *zap.Logger) (*gorm.DB, error) {
	conn, err := gorm.Open(postgres.Open(dsn), Config())
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	log.Info("Database connection established")

	if err := Migrate(conn); err != nil {
		return nil, err
	}
	log.Info("Database migration completed")
	return conn, nil
}

// Migrate creates or updates every table the service owns.
func Migrate(conn *gorm.DB) error {
	err := conn.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Like{},
		&models.Comment{},
	)
	if err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	return nil
}
