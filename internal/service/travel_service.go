package service

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dayplan/itinerary-backend-go/internal/models"
	"github.com/dayplan/itinerary-backend-go/internal/spatial"
)

// DirectionsSource is the directions provider boundary
type DirectionsSource interface {
	Route(ctx context.Context, origin, dest models.LatLng) (models.RouteInfo, error)
}

// TravelConfig tunes travel-leg computation
type TravelConfig struct {
	Workers int // bounded concurrency across stop pairs
}

// TravelService computes the travel legs between consecutive stops. Legs are
// independent network round trips, so they run concurrently under a bounded
// pool; a failed lookup degrades that one leg to a distance-based estimate.
type TravelService struct {
	directions DirectionsSource
	cfg        TravelConfig
	logger     *zap.Logger
}

// NewTravelService creates a travel service
func NewTravelService(directions DirectionsSource, cfg TravelConfig, logger *zap.Logger) *TravelService {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	return &TravelService{directions: directions, cfg: cfg, logger: logger}
}

// Legs returns one leg per consecutive stop pair: len(stops)-1 legs, in stop
// order. Only cancellation returns an error.
func (s *TravelService) Legs(ctx context.Context, stops []models.ScheduledStop) ([]models.TravelLeg, error) {
	if len(stops) < 2 {
		return []models.TravelLeg{}, nil
	}

	legs := make([]models.TravelLeg, len(stops)-1)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)

	for i := 0; i < len(stops)-1; i++ {
		i := i
		g.Go(func() error {
			from, to := stops[i], stops[i+1]
			route, err := s.directions.Route(gctx, from.Venue.Location, to.Venue.Location)
			if err != nil {
				// A timed-out call fails only its own leg; only request-level
				// cancellation aborts the batch
				if gctx.Err() != nil {
					return gctx.Err()
				}
				s.logger.Warn("directions lookup failed, estimating leg",
					zap.String("to", to.Venue.Name),
					zap.Error(err))
				legs[i] = models.TravelLeg{
					DurationMinutes: spatial.EstimateTravelMinutes(from.Venue.Location, to.Venue.Location),
					Mode:            spatial.EstimateMode(from.Venue.Location, to.Venue.Location),
					To:              to.Venue.Name,
					Estimated:       true,
				}
				return nil
			}
			legs[i] = models.TravelLeg{
				DurationMinutes: route.DurationMinutes,
				Mode:            route.Mode,
				To:              to.Venue.Name,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return legs, nil
}
