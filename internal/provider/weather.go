package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/dayplan/itinerary-backend-go/internal/models"
)

// WeatherConfig configures the weather client
type WeatherConfig struct {
	URL    string
	APIKey string
}

// WeatherClient fetches the day's forecast for a location. The gap filler
// uses it to decide whether outdoor areas are in play.
type WeatherClient struct {
	cfg     WeatherConfig
	hc      *http.Client
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// NewWeatherClient creates a weather client
func NewWeatherClient(cfg WeatherConfig, opts Options, logger *zap.Logger) *WeatherClient {
	return &WeatherClient{
		cfg:     cfg,
		hc:      newHTTPClient(opts),
		breaker: newBreaker("weather"),
		logger:  logger,
	}
}

// Forecast returns the condition category and outdoor suitability for a date
// and location. Retries a transient failure exactly once.
func (c *WeatherClient) Forecast(ctx context.Context, date time.Time, loc models.LatLng) (models.WeatherReport, error) {
	q := url.Values{}
	q.Set("date", date.Format("2006-01-02"))
	q.Set("lat", fmt.Sprintf("%f", loc.Lat))
	q.Set("lon", fmt.Sprintf("%f", loc.Lng))
	if c.cfg.APIKey != "" {
		q.Set("key", c.cfg.APIKey)
	}

	var report models.WeatherReport
	err := retryOnce(ctx, models.ProviderWeather, func() error {
		report = models.WeatherReport{}
		return getJSON(ctx, c.hc, c.breaker, c.cfg.URL+"?"+q.Encode(), &report)
	})
	if err != nil {
		return models.WeatherReport{}, err
	}
	if report.Condition == "" {
		return models.WeatherReport{}, &models.ProviderError{Kind: models.ProviderWeather, Err: fmt.Errorf("empty forecast")}
	}
	c.logger.Debug("forecast",
		zap.String("condition", report.Condition),
		zap.Bool("outdoor_suitable", report.OutdoorSuitable))
	return report, nil
}
