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

// PlaceCandidate is one place-search result before verification
type PlaceCandidate struct {
	PlaceID string
	Name    string
	Address string
	Types   []string
	Rating  float64
	Loc     models.LatLng
}

// PlacesConfig configures the place-search client
type PlacesConfig struct {
	URL    string
	APIKey string
}

// PlacesClient queries a text-search places endpoint (Google Places wire
// shape)
type PlacesClient struct {
	cfg     PlacesConfig
	hc      *http.Client
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// NewPlacesClient creates a place-search client
func NewPlacesClient(cfg PlacesConfig, opts Options, logger *zap.Logger) *PlacesClient {
	return &PlacesClient{
		cfg:     cfg,
		hc:      newHTTPClient(opts),
		breaker: newBreaker("places"),
		logger:  logger,
	}
}

type placesResponse struct {
	Status  string `json:"status"`
	Results []struct {
		PlaceID          string   `json:"place_id"`
		Name             string   `json:"name"`
		FormattedAddress string   `json:"formatted_address"`
		Types            []string `json:"types"`
		Rating           float64  `json:"rating"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Search runs one text search, optionally biased toward a viewport center.
// Transient failures are retried exactly once; zero results is a successful
// empty answer, not an error.
func (c *PlacesClient) Search(ctx context.Context, query string, bias *models.LatLng) ([]PlaceCandidate, error) {
	q := url.Values{}
	q.Set("query", query)
	q.Set("key", c.cfg.APIKey)
	if bias != nil {
		q.Set("location", fmt.Sprintf("%f,%f", bias.Lat, bias.Lng))
		q.Set("radius", "8000")
	}

	var resp placesResponse
	err := retryOnce(ctx, models.ProviderPlaces, func() error {
		resp = placesResponse{}
		if err := getJSON(ctx, c.hc, c.breaker, c.cfg.URL+"?"+q.Encode(), &resp); err != nil {
			return err
		}
		switch resp.Status {
		case "OK", "ZERO_RESULTS":
			return nil
		case "OVER_QUERY_LIMIT", "UNKNOWN_ERROR":
			return &statusError{code: http.StatusTooManyRequests, body: resp.Status}
		default:
			return &statusError{code: http.StatusBadRequest, body: resp.Status}
		}
	})
	if err != nil {
		return nil, err
	}

	candidates := make([]PlaceCandidate, 0, len(resp.Results))
	for _, r := range resp.Results {
		candidates = append(candidates, PlaceCandidate{
			PlaceID: r.PlaceID,
			Name:    r.Name,
			Address: r.FormattedAddress,
			Types:   r.Types,
			Rating:  r.Rating,
			Loc:     models.LatLng{Lat: r.Geometry.Location.Lat, Lng: r.Geometry.Location.Lng},
		})
	}
	c.logger.Debug("place search", zap.String("query", query), zap.Int("candidates", len(candidates)))
	return candidates, nil
}
