package main

import (
	"fmt"

	"github.com/Jeff-Lewis/Strata/internal/config"
	"github.com/Jeff-Lewis/Strata/internal/infrastructure/models"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	dsn, err := config.PostgresDSN()
	if err != nil {
		logger.Fatal(err)
	}

	logMode := gormlogger.Warn
	if config.GetBool("MIGRATE_VERBOSE", false) {
		logMode = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.New(logger, gormlogger.Config{LogLevel: logMode}),
	})
	if err != nil {
		logger.Fatalf("connect postgres: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatalf("get sql db: %v", err)
	}
	defer sqlDB.Close()

	for _, model := range models.All() {
		if err := db.AutoMigrate(model); err != nil {
			logger.Fatalf("migrate %T: %v", model, err)
		}
		logger.WithField("model", fmt.Sprintf("%T", model)).Debug("migrated")
	}
	logger.WithField("tables", len(models.All())).Info("schema migrated")
}
