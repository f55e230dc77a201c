package database

import (
	"fmt"

	"github.com/Devin-147/reconsolidator-app-sub000/internal/config"
	logging "github.com/Devin-147/reconsolidator-app-sub000/internal/logging"
	"github.com/Devin-147/reconsolidator-app-sub000/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(log *zap.Logger) {
	var err error
	dbConf := config.Conf.Database
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		dbConf.Host, dbConf.User, dbConf.Password, dbConf.DBName, dbConf.Port)

	// Create our custom GORM logger
	gormLogger := logging.NewGormZapLogger(log)

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})

	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	log.Info("Database connection established successfully.")
	runMigrations(log)
}

func runMigrations(log *zap.Logger) {
	// GORM's AutoMigrate will create tables, columns, and foreign keys.
	// It will NOT create custom indexes, so we handle that separately.
	err := DB.AutoMigrate(
		&models.User{},
		&models.SessionSetup{},
		&models.TreatmentState{},
		&models.TreatmentResult{},
	)
	if err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}
	log.Info("Database migrations completed successfully.")

	resultsIndex := `CREATE INDEX IF NOT EXISTS idx_results_user_completed ON treatment_results (user_id, completed_at DESC);`
	if err := DB.Exec(resultsIndex).Error; err != nil {
		log.Fatal("Failed to create custom index on results table", zap.Error(err))
	}
	log.Info("Custom indexes ensured successfully.")
}
