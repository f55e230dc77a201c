package main

import (
	"context"

	"github.com/Devin-147/reconsolidator-app-sub000/internal/config"
	"github.com/Devin-147/reconsolidator-app-sub000/internal/database"
	logger "github.com/Devin-147/reconsolidator-app-sub000/internal/logging"
	"github.com/Devin-147/reconsolidator-app-sub000/internal/models"
	"github.com/Devin-147/reconsolidator-app-sub000/internal/router"
	"github.com/Devin-147/reconsolidator-app-sub000/internal/services"
	"github.com/Devin-147/reconsolidator-app-sub000/internal/storage"

	"go.uber.org/zap"
)

func main() {
	// Load configuration first; the logger is built from its logging section.
	if err := config.Init("."); err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log, err := logger.Init(logger.Settings{
		Directory:  config.Conf.Logging.Directory,
		MaxSizeMB:  config.Conf.Logging.MaxSize,
		MaxBackups: config.Conf.Logging.MaxBackups,
		MaxAgeDays: config.Conf.Logging.MaxAge,
		Compress:   config.Conf.Logging.Compress,
	})
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	// Hot reloading needs the logger, so it starts here rather than in Init.
	config.Watch(log)

	// Initialize Database
	database.Init(log)

	// Load the prediction-error catalog at startup
	catalog, err := models.LoadCatalog("config/prediction_errors.yaml")
	if err != nil {
		log.Fatal("Failed to load prediction-error catalog", zap.Error(err))
	}
	log.Info("Prediction-error catalog loaded", zap.Int("entries", len(catalog.Errors)))

	// Media object store and external collaborators
	objectStore := storage.NewDiskStore(config.Conf.Media.Directory, config.Conf.Media.PublicBase)
	emailService := services.NewEmailService(log)
	speechService := services.NewSpeechService(log)
	mediaService := services.NewMediaService(log, objectStore)
	paymentService := services.NewPaymentService(log)

	// Image analysis is optional; without an API key the endpoint reports
	// itself unavailable instead of blocking startup.
	visionService, err := services.NewVisionService(context.Background(), log)
	if err != nil {
		log.Warn("Image analysis disabled", zap.Error(err))
		visionService = nil
	}

	// Start the follow-up reminder scheduler
	scheduler := services.NewScheduler(log, emailService)
	scheduler.Start()

	// Setup router, passing the logger to it
	r := router.Setup(log, router.Deps{
		Catalog: catalog,
		Store:   objectStore,
		Email:   emailService,
		Speech:  speechService,
		Media:   mediaService,
		Vision:  visionService,
		Pay:     paymentService,
	})

	// Start the Gin server
	port := ":" + config.Conf.Server.Port
	log.Info("Server listening on http://localhost" + port)
	if err := r.Run(port); err != nil {
		log.Fatal("Failed to run Gin server", zap.Error(err))
	}
}
