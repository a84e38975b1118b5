package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dayplan/itinerary-backend-go/internal/location"
	"github.com/dayplan/itinerary-backend-go/internal/models"
	"github.com/dayplan/itinerary-backend-go/internal/provider"
)

// PlaceSearcher is the place-search provider boundary
type PlaceSearcher interface {
	Search(ctx context.Context, query string, bias *models.LatLng) ([]provider.PlaceCandidate, error)
}

// ResolverConfig tunes venue resolution
type ResolverConfig struct {
	MinConfidence float64 // candidates below this are unresolvable
	Workers       int     // bounded concurrency across activities
}

// ResolverService matches each activity request to a concrete venue through
// the place-search provider, filtered and ranked by the location normalizer.
type ResolverService struct {
	normalizer *location.Normalizer
	places     PlaceSearcher
	cfg        ResolverConfig
	logger     *zap.Logger
}

// NewResolverService creates a resolver service
func NewResolverService(normalizer *location.Normalizer, places PlaceSearcher, cfg ResolverConfig, logger *zap.Logger) *ResolverService {
	if cfg.MinConfidence <= 0 {
		cfg.MinConfidence = 0.5
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	return &ResolverService{normalizer: normalizer, places: places, cfg: cfg, logger: logger}
}

// cityBias centers place search on downtown Boston
var cityBias = models.LatLng{Lat: 42.3555, Lng: -71.0605}

// ResolveAll resolves every activity with bounded concurrency. Activities
// whose locations cannot be matched come back as UnresolvableLocationError
// values alongside the successes; a single failed activity never fails the
// batch. Cancellation of ctx aborts the whole batch.
func (s *ResolverService) ResolveAll(ctx context.Context, acts []models.ActivityRequest) ([]models.ResolvedActivity, []*models.UnresolvableLocationError, error) {
	type outcome struct {
		resolved   *models.ResolvedActivity
		unresolved *models.UnresolvableLocationError
	}
	outcomes := make([]outcome, len(acts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	var mu sync.Mutex

	for i, act := range acts {
		i, act := i, act
		g.Go(func() error {
			res, unres, err := s.resolve(gctx, act)
			if err != nil {
				return err
			}
			mu.Lock()
			outcomes[i] = outcome{resolved: res, unresolved: unres}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var resolved []models.ResolvedActivity
	var unresolved []*models.UnresolvableLocationError
	for _, o := range outcomes {
		if o.resolved != nil {
			resolved = append(resolved, *o.resolved)
		}
		if o.unresolved != nil {
			unresolved = append(unresolved, o.unresolved)
		}
	}
	return resolved, unresolved, nil
}

// resolve handles one activity: normalize the hint, search once (the client
// retries a transient failure once internally), rank the candidates by
// verification confidence, accept the best above the threshold. Provider
// failure or a thin match produces an Unresolvable outcome, not an error;
// only cancellation propagates.
func (s *ResolverService) resolve(ctx context.Context, act models.ActivityRequest) (*models.ResolvedActivity, *models.UnresolvableLocationError, error) {
	hint := s.normalizer.Normalize(act.LocationHint)
	query := strings.TrimSpace(act.Description)
	if hint != "" {
		query = fmt.Sprintf("%s near %s, Boston, MA", query, hint)
	} else {
		query = query + ", Boston, MA"
	}

	candidates, err := s.places.Search(ctx, query, &cityBias)
	if err != nil {
		// A timed-out call fails only this activity; only request-level
		// cancellation aborts the batch
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		s.logger.Warn("place search failed",
			zap.String("description", act.Description),
			zap.Error(err))
		return nil, &models.UnresolvableLocationError{Description: act.Description, Hint: act.LocationHint}, nil
	}

	best, confidence := s.rank(act, hint, candidates)
	if best == nil || confidence < s.cfg.MinConfidence {
		if hint != "" {
			s.logger.Info("no confident venue match",
				zap.String("hint", act.LocationHint),
				zap.Strings("suggestions", s.normalizer.SuggestSimilar(act.LocationHint)))
		}
		return nil, &models.UnresolvableLocationError{Description: act.Description, Hint: act.LocationHint}, nil
	}

	res := &models.ResolvedActivity{
		Venue: models.ResolvedVenue{
			PlaceID:    best.PlaceID,
			Name:       best.Name,
			Address:    best.Address,
			Types:      best.Types,
			Rating:     best.Rating,
			Location:   best.Loc,
			Confidence: confidence,
		},
		Description: act.Description,
		Rank:        act.Rank,
	}
	return res, nil, nil
}

// rank scores candidates and returns the best with its confidence. With no
// location hint there is nothing to verify against, so the top result is
// taken on rating-backed faith.
func (s *ResolverService) rank(act models.ActivityRequest, hint string, candidates []provider.PlaceCandidate) (*provider.PlaceCandidate, float64) {
	if len(candidates) == 0 {
		return nil, 0
	}
	if hint == "" {
		c := candidates[0]
		conf := 0.6
		if c.Rating > 0 {
			conf += 0.2 * (c.Rating / 5)
		}
		return &c, conf
	}

	var best *provider.PlaceCandidate
	bestConf := 0.0
	for i := range candidates {
		c := &candidates[i]
		conf := s.normalizer.Confidence(hint, c.Name, c.Address, c.Types)
		if conf > bestConf {
			best, bestConf = c, conf
		}
	}
	return best, bestConf
}
