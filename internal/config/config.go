package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Port        string
	Environment string
	DBPath      string
	JWTSecret   string

	// External providers
	ExtractorURL    string
	ExtractorAPIKey string
	ExtractorModel  string
	PlacesURL       string
	PlacesAPIKey    string
	DirectionsURL   string
	DirectionsKey   string
	DirectionsMode  string
	WeatherURL      string
	WeatherAPIKey   string
	ProviderTimeout time.Duration

	// Worker pools
	ResolverWorkers int
	TravelWorkers   int

	// Scheduling policy
	FillerThresholdMin  int
	DefaultDurationMin  int
	FillerDurationMin   int
	TravelBufferMin     int
	MaxFillers          int
	MinConfidence       float64
	FillerCrowdWeight   float64
	FillerWeatherWeight float64

	// Rate limiting on the plan endpoint
	PlanRateLimit  int
	PlanRateWindow time.Duration
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", ":8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		DBPath:      getEnv("DB_PATH", "./data/itineraries.db"),
		JWTSecret:   getEnv("JWT_SECRET", "dev-secret-change-in-production"),

		ExtractorURL:    getEnv("EXTRACTOR_URL", "https://api.openai.com/v1/chat/completions"),
		ExtractorAPIKey: getEnv("EXTRACTOR_API_KEY", ""),
		ExtractorModel:  getEnv("EXTRACTOR_MODEL", "gpt-4o-mini"),
		PlacesURL:       getEnv("PLACES_URL", "https://maps.googleapis.com/maps/api/place/textsearch/json"),
		PlacesAPIKey:    getEnv("PLACES_API_KEY", ""),
		DirectionsURL:   getEnv("DIRECTIONS_URL", "https://maps.googleapis.com/maps/api/directions/json"),
		DirectionsKey:   getEnv("DIRECTIONS_API_KEY", ""),
		DirectionsMode:  getEnv("DIRECTIONS_MODE", "transit"),
		WeatherURL:      getEnv("WEATHER_URL", "http://localhost:8090/forecast"),
		WeatherAPIKey:   getEnv("WEATHER_API_KEY", ""),
		ProviderTimeout: time.Duration(getEnvInt("PROVIDER_TIMEOUT_SECONDS", 10)) * time.Second,

		ResolverWorkers: getEnvInt("RESOLVER_WORKERS", 4),
		TravelWorkers:   getEnvInt("TRAVEL_WORKERS", 4),

		FillerThresholdMin:  getEnvInt("FILLER_THRESHOLD_MINUTES", 45),
		DefaultDurationMin:  getEnvInt("DEFAULT_STOP_MINUTES", 60),
		FillerDurationMin:   getEnvInt("FILLER_STOP_MINUTES", 60),
		TravelBufferMin:     getEnvInt("TRAVEL_BUFFER_MINUTES", 15),
		MaxFillers:          getEnvInt("MAX_FILLERS", 4),
		MinConfidence:       getEnvFloat("MIN_MATCH_CONFIDENCE", 0.5),
		FillerCrowdWeight:   getEnvFloat("FILLER_CROWD_WEIGHT", 0.6),
		FillerWeatherWeight: getEnvFloat("FILLER_WEATHER_WEIGHT", 0.4),

		PlanRateLimit:  getEnvInt("PLAN_RATE_LIMIT", 10),
		PlanRateWindow: time.Duration(getEnvInt("PLAN_RATE_WINDOW_SECONDS", 60)) * time.Second,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
