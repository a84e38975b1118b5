package main

import (
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/dayplan/itinerary-backend-go/internal/api"
	"github.com/dayplan/itinerary-backend-go/internal/config"
	"github.com/dayplan/itinerary-backend-go/internal/database"
	"github.com/dayplan/itinerary-backend-go/internal/handler"
	"github.com/dayplan/itinerary-backend-go/internal/knowledge"
	"github.com/dayplan/itinerary-backend-go/internal/location"
	"github.com/dayplan/itinerary-backend-go/internal/provider"
	"github.com/dayplan/itinerary-backend-go/internal/repository"
	"github.com/dayplan/itinerary-backend-go/internal/schedule"
	"github.com/dayplan/itinerary-backend-go/internal/service"
)

func main() {
	cfg := config.Load()

	logger, err := newLogger(cfg.Environment)
	if err != nil {
		log.Fatal("Failed to build logger:", err)
	}
	defer logger.Sync()

	db, err := database.Open(database.Config{Path: cfg.DBPath})
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	kb, err := knowledge.New()
	if err != nil {
		logger.Fatal("Failed to load area knowledge base", zap.Error(err))
	}
	if asym := kb.NeighborAsymmetries(); len(asym) > 0 {
		logger.Warn("area neighbor graph has asymmetries", zap.Int("count", len(asym)))
	}
	normalizer := location.NewNormalizer(kb)

	opts := provider.Options{Timeout: cfg.ProviderTimeout}
	extractor := provider.NewExtractorClient(provider.ExtractorConfig{
		URL:    cfg.ExtractorURL,
		APIKey: cfg.ExtractorAPIKey,
		Model:  cfg.ExtractorModel,
	}, opts, logger)
	places := provider.NewPlacesClient(provider.PlacesConfig{
		URL:    cfg.PlacesURL,
		APIKey: cfg.PlacesAPIKey,
	}, opts, logger)
	directions := provider.NewDirectionsClient(provider.DirectionsConfig{
		URL:    cfg.DirectionsURL,
		APIKey: cfg.DirectionsKey,
		Mode:   cfg.DirectionsMode,
	}, opts, logger)
	weather := provider.NewWeatherClient(provider.WeatherConfig{
		URL:    cfg.WeatherURL,
		APIKey: cfg.WeatherAPIKey,
	}, opts, logger)

	scheduler := schedule.New(schedule.Config{
		FillerThreshold:     time.Duration(cfg.FillerThresholdMin) * time.Minute,
		DefaultStopDuration: time.Duration(cfg.DefaultDurationMin) * time.Minute,
		FillerDuration:      time.Duration(cfg.FillerDurationMin) * time.Minute,
		TravelBuffer:        time.Duration(cfg.TravelBufferMin) * time.Minute,
		MaxFillers:          cfg.MaxFillers,
	}, kb, weather, schedule.WeightedScorer{
		CrowdWeight:   cfg.FillerCrowdWeight,
		WeatherWeight: cfg.FillerWeatherWeight,
	}, logger)

	resolver := service.NewResolverService(normalizer, places, service.ResolverConfig{
		MinConfidence: cfg.MinConfidence,
		Workers:       cfg.ResolverWorkers,
	}, logger)
	travel := service.NewTravelService(directions, service.TravelConfig{
		Workers: cfg.TravelWorkers,
	}, logger)
	planner := service.NewPlannerService(extractor, resolver, scheduler, travel, logger)

	repo := repository.NewItineraryRepository(db)

	router := api.SetupRouter(cfg, logger, api.Handlers{
		Plan:      handler.NewPlanHandler(planner),
		Itinerary: handler.NewItineraryHandler(repo),
		Area:      handler.NewAreaHandler(kb, normalizer),
	})

	logger.Info("server starting", zap.String("port", cfg.Port))
	if err := router.Run(cfg.Port); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}

func newLogger(environment string) (*zap.Logger, error) {
	if environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
