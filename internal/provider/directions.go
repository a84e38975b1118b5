package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/dayplan/itinerary-backend-go/internal/models"
)

// DirectionsConfig configures the directions client
type DirectionsConfig struct {
	URL    string
	APIKey string
	Mode   string // preferred travel mode, e.g. "transit"
}

// DirectionsClient asks the directions provider for the travel time between
// two coordinates
type DirectionsClient struct {
	cfg     DirectionsConfig
	hc      *http.Client
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// NewDirectionsClient creates a directions client
func NewDirectionsClient(cfg DirectionsConfig, opts Options, logger *zap.Logger) *DirectionsClient {
	if cfg.Mode == "" {
		cfg.Mode = "transit"
	}
	return &DirectionsClient{
		cfg:     cfg,
		hc:      newHTTPClient(opts),
		breaker: newBreaker("directions"),
		logger:  logger,
	}
}

type directionsResponse struct {
	Status string `json:"status"`
	Routes []struct {
		Legs []struct {
			Duration struct {
				Value int `json:"value"` // seconds
			} `json:"duration"`
		} `json:"legs"`
	} `json:"routes"`
}

// Route returns the travel duration and mode for one origin/destination
// pair. Retries a transient failure exactly once.
func (c *DirectionsClient) Route(ctx context.Context, origin, dest models.LatLng) (models.RouteInfo, error) {
	q := url.Values{}
	q.Set("origin", fmt.Sprintf("%f,%f", origin.Lat, origin.Lng))
	q.Set("destination", fmt.Sprintf("%f,%f", dest.Lat, dest.Lng))
	q.Set("mode", c.cfg.Mode)
	q.Set("key", c.cfg.APIKey)

	var resp directionsResponse
	err := retryOnce(ctx, models.ProviderDirections, func() error {
		resp = directionsResponse{}
		if err := getJSON(ctx, c.hc, c.breaker, c.cfg.URL+"?"+q.Encode(), &resp); err != nil {
			return err
		}
		if resp.Status != "OK" {
			return &statusError{code: http.StatusBadGateway, body: resp.Status}
		}
		return nil
	})
	if err != nil {
		return models.RouteInfo{}, err
	}
	if len(resp.Routes) == 0 || len(resp.Routes[0].Legs) == 0 {
		return models.RouteInfo{}, &models.ProviderError{Kind: models.ProviderDirections, Err: fmt.Errorf("no route found")}
	}

	seconds := resp.Routes[0].Legs[0].Duration.Value
	return models.RouteInfo{
		DurationMinutes: (seconds + 59) / 60,
		Mode:            c.cfg.Mode,
	}, nil
}
