package database

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"listingsniper/src/model"
)

// DB is the execution journal database. Nil when journaling is disabled.
var DB *gorm.DB

// InitDB opens the local sqlite journal and runs migrations. Called once
// at startup; when ENABLE_DB is off the journal stays nil and every
// journaling call becomes a no-op upstream.
func InitDB() error {
	config := GetConfig()

	if !config.EnableDB {
		logrus.Info("[database] journaling disabled, skipping DB init")
		return nil
	}

	db, err := gorm.Open(sqlite.Open(config.DatabasePath),
		&gorm.Config{
			TranslateError: true,
			Logger:         logger.Default.LogMode(logger.LogLevel(config.GormLogLevel)),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to open journal database %s: %w", config.DatabasePath, err)
	}

	// Assign to the global variable only after a successful connection.
	DB = db

	logrus.WithField("path", config.DatabasePath).Info("[database] journal connection established")

	if err := DB.AutoMigrate(
		&model.ExecutionLog{},
	); err != nil {
		return fmt.Errorf("failed to run migrations on journal DB: %w", err)
	}

	logrus.Info("[database] journal migrations completed")
	return nil
}
