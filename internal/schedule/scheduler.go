// Package schedule implements the itinerary scheduling and gap-filling core:
// a sequential left-to-right walk over an ordered list of stops that imputes
// missing times, removes interval collisions, and fills idle gaps with
// knowledge-base recommendations under crowd and weather policy.
package schedule

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/dayplan/itinerary-backend-go/internal/knowledge"
	"github.com/dayplan/itinerary-backend-go/internal/models"
	"github.com/dayplan/itinerary-backend-go/internal/spatial"
)

// WeatherSource is the weather provider boundary as the scheduler sees it
type WeatherSource interface {
	Forecast(ctx context.Context, date time.Time, loc models.LatLng) (models.WeatherReport, error)
}

// Config tunes the scheduling walk
type Config struct {
	FillerThreshold     time.Duration // minimum idle time worth filling
	DefaultStopDuration time.Duration // assumed length of a user stop
	FillerDuration      time.Duration // default length of an inserted filler
	MinFillerDuration   time.Duration // below this a gap is left alone
	TravelBuffer        time.Duration // slack added to travel estimates
	MaxFillers          int           // hard cap on inserted stops per plan
}

// withDefaults fills unset config fields
func (c Config) withDefaults() Config {
	if c.FillerThreshold <= 0 {
		c.FillerThreshold = 45 * time.Minute
	}
	if c.DefaultStopDuration <= 0 {
		c.DefaultStopDuration = 60 * time.Minute
	}
	if c.FillerDuration <= 0 {
		c.FillerDuration = 60 * time.Minute
	}
	if c.MinFillerDuration <= 0 {
		c.MinFillerDuration = 20 * time.Minute
	}
	if c.TravelBuffer <= 0 {
		c.TravelBuffer = 15 * time.Minute
	}
	if c.MaxFillers <= 0 {
		c.MaxFillers = 4
	}
	return c
}

// Scheduler builds the ordered stop list for one plan. It is stateless
// between calls; all walk state is request-scoped.
type Scheduler struct {
	cfg     Config
	kb      *knowledge.Base
	weather WeatherSource
	scorer  FillerScorer
	logger  *zap.Logger
}

// New creates a scheduler
func New(cfg Config, kb *knowledge.Base, weather WeatherSource, scorer FillerScorer, logger *zap.Logger) *Scheduler {
	if scorer == nil {
		scorer = WeightedScorer{CrowdWeight: 0.6, WeatherWeight: 0.4}
	}
	return &Scheduler{
		cfg:     cfg.withDefaults(),
		kb:      kb,
		weather: weather,
		scorer:  scorer,
		logger:  logger,
	}
}

// Build schedules the resolved activities for the given plan date and start
// time. The result is strictly ordered and non-overlapping, contains every
// input activity, and may contain additional filler stops.
func (s *Scheduler) Build(ctx context.Context, date, planStart time.Time, acts []models.ResolvedActivity) ([]models.ScheduledStop, error) {
	if len(acts) == 0 {
		return nil, models.ErrEmptyPlan
	}

	stops := s.assignTimes(planStart, acts)
	stops = resolveCollisions(stops)
	stops = s.fillGaps(ctx, date, planStart, stops)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := Validate(stops); err != nil {
		// Filler insertion re-validates, so this is belt and braces
		stops = resolveCollisions(stops)
	}
	return stops, nil
}

// assignTimes turns resolved activities into stops with concrete start
// times. Explicitly timed activities keep their times; untimed ones are
// walked in narrative-rank order and interpolated between the nearest timed
// anchors, or spaced forward from the plan start when no anchor exists.
func (s *Scheduler) assignTimes(planStart time.Time, acts []models.ResolvedActivity) []models.ScheduledStop {
	ordered := make([]models.ResolvedActivity, len(acts))
	copy(ordered, acts)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Rank < ordered[j].Rank })

	stops := make([]models.ScheduledStop, len(ordered))
	for i, a := range ordered {
		stops[i] = models.ScheduledStop{
			Venue:       a.Venue,
			Description: a.Description,
			Duration:    s.cfg.DefaultStopDuration,
			Kind:        models.StopKindUser,
		}
		if a.ExplicitTime != nil {
			stops[i].Start = *a.ExplicitTime
		}
	}

	spacing := s.cfg.DefaultStopDuration + s.cfg.TravelBuffer

	// Interpolate each run of untimed stops between its timed anchors.
	// The plan start acts as the leading anchor.
	i := 0
	for i < len(stops) {
		if !stops[i].Start.IsZero() {
			i++
			continue
		}
		runStart := i
		for i < len(stops) && stops[i].Start.IsZero() {
			i++
		}
		runLen := i - runStart

		anchorBefore := planStart
		if runStart > 0 {
			anchorBefore = stops[runStart-1].End()
		}

		if i < len(stops) {
			anchorAfter := stops[i].Start
			window := anchorAfter.Sub(anchorBefore)
			if window <= 0 {
				window = time.Duration(runLen) * spacing
			}
			step := window / time.Duration(runLen+1)
			for k := 0; k < runLen; k++ {
				stops[runStart+k].Start = anchorBefore.Add(step * time.Duration(k+1))
			}
		} else {
			// Trailing run with no anchor after: space forward
			t := anchorBefore
			if runStart == 0 {
				t = planStart
				stops[0].Start = t
				for k := 1; k < runLen; k++ {
					stops[k].Start = stops[k-1].Start.Add(spacing)
				}
				continue
			}
			t = t.Add(s.cfg.TravelBuffer)
			for k := 0; k < runLen; k++ {
				stops[runStart+k].Start = t
				t = t.Add(spacing)
			}
		}
	}
	return stops
}

// resolveCollisions sorts stops by start time and shifts any stop that
// overlaps its predecessor forward by the predecessor's duration. A shifted
// stop can land amid stops already walked, so the pass repeats until one
// completes with no shift. The earliest stop never moves and each pass
// settles at least the earliest still-colliding stop, so this converges
// within len(stops) passes.
func resolveCollisions(stops []models.ScheduledStop) []models.ScheduledStop {
	for pass := 0; pass < len(stops); pass++ {
		sort.SliceStable(stops, func(i, j int) bool { return stops[i].Start.Before(stops[j].Start) })
		shifted := false
		for i := 1; i < len(stops); i++ {
			prev := stops[i-1]
			if stops[i].Start.Before(prev.End()) {
				stops[i].Start = stops[i].Start.Add(prev.Duration)
				shifted = true
			}
		}
		if !shifted {
			break
		}
	}
	return stops
}

// Validate checks the non-overlap invariant: stops ordered by start time,
// each ending no later than the next begins
func Validate(stops []models.ScheduledStop) error {
	for i := 1; i < len(stops); i++ {
		if stops[i].Start.Before(stops[i-1].Start) {
			return fmt.Errorf("stops out of order at index %d", i)
		}
		if stops[i].Start.Before(stops[i-1].End()) {
			return fmt.Errorf("stop %q overlaps %q", stops[i].Venue.Name, stops[i-1].Venue.Name)
		}
	}
	return nil
}

// travelOverhead estimates door-to-door travel between two stops plus the
// configured slack. Real directions are only fetched once stop order is
// final, so gap math runs on the estimate.
func (s *Scheduler) travelOverhead(from, to models.LatLng) time.Duration {
	return spatial.EstimateTravelDuration(from, to) + s.cfg.TravelBuffer
}
