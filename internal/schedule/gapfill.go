package schedule

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dayplan/itinerary-backend-go/internal/models"
)

// FillerScorer ranks candidate areas for a gap. The weighting of crowd level
// against weather suitability is policy, so it is injected rather than
// hardcoded.
type FillerScorer interface {
	Score(a *models.Area, bucket models.TimeBucket, wx models.WeatherReport) float64
}

// WeightedScorer is the default policy: prefer quieter areas for the current
// time bucket, prefer weather-appropriate ones, with configurable weights.
type WeightedScorer struct {
	CrowdWeight   float64
	WeatherWeight float64
}

// Score returns a [0,1] desirability for the area in the given conditions
func (s WeightedScorer) Score(a *models.Area, bucket models.TimeBucket, wx models.WeatherReport) float64 {
	level := a.CrowdLevels.For(bucket)
	if level < 1 {
		level = 3
	}
	crowd := float64(5-level) / 4

	weather := 1.0
	if a.IsOutdoor() && !wx.OutdoorSuitable {
		weather = 0
	}

	total := s.CrowdWeight + s.WeatherWeight
	if total <= 0 {
		return 0
	}
	return (s.CrowdWeight*crowd + s.WeatherWeight*weather) / total
}

// walkState is the accumulating state of the gap-filling reducer
type walkState struct {
	usedAreas  map[string]bool
	usedVenues map[string]bool
	fillers    int
}

// fillGaps walks consecutive stop pairs (including the span from the plan
// start to the first stop), inserting a filler wherever the idle time net of
// estimated travel exceeds the threshold. Strictly sequential: every
// decision feeds the state the next one sees. Best-effort throughout: a
// failed weather lookup or an exhausted candidate pool leaves gaps unfilled,
// never fails the plan. User stops are never removed.
func (s *Scheduler) fillGaps(ctx context.Context, date, planStart time.Time, stops []models.ScheduledStop) []models.ScheduledStop {
	if len(stops) == 0 {
		return stops
	}

	// Weather gates outdoor candidates; the lookup is required policy input,
	// so if it fails every gap stays unfilled.
	wx, err := s.weather.Forecast(ctx, date, stops[0].Venue.Location)
	if err != nil {
		s.logger.Warn("weather unavailable, leaving gaps unfilled", zap.Error(err))
		return stops
	}

	state := &walkState{
		usedAreas:  make(map[string]bool),
		usedVenues: make(map[string]bool),
	}
	for _, st := range stops {
		state.usedVenues[strings.ToLower(st.Venue.Name)] = true
		if a := s.kb.Nearest(st.Venue.Location); a != nil {
			state.usedAreas[strings.ToLower(a.Name)] = true
		}
	}

	// Gap between the plan start and the first stop. The day begins wherever
	// the user does, so the first stop's surroundings anchor the candidate
	// search and only the configured buffer counts as overhead.
	if ctx.Err() == nil {
		first := stops[0]
		idle := first.Start.Sub(planStart) - s.cfg.TravelBuffer
		if idle >= s.cfg.FillerThreshold {
			if f, ok := s.makeFiller(first.Venue.Location, planStart, first.Start, date, wx, state); ok {
				stops = append([]models.ScheduledStop{f}, stops...)
			}
		}
	}

	i := 0
	for i < len(stops)-1 {
		if ctx.Err() != nil {
			return stops
		}
		prev, next := stops[i], stops[i+1]
		idle := next.Start.Sub(prev.End()) - s.travelOverhead(prev.Venue.Location, next.Venue.Location)
		if idle < s.cfg.FillerThreshold {
			i++
			continue
		}
		earliest := prev.End().Add(s.cfg.TravelBuffer)
		f, ok := s.makeFiller(prev.Venue.Location, earliest, next.Start, date, wx, state)
		if !ok {
			i++
			continue
		}
		stops = append(stops[:i+1], append([]models.ScheduledStop{f}, stops[i+1:]...)...)
		// Re-evaluate from the inserted stop; a wide gap can take several
		// fillers up to the cap
		i++
	}
	return stops
}

// makeFiller selects a knowledge-base recommendation near the anchor
// location and fits it into [earliest, deadline). Returns false when no
// candidate passes crowd/weather/non-repetition policy or the slot is too
// tight.
func (s *Scheduler) makeFiller(anchor models.LatLng, earliest, deadline time.Time, date time.Time, wx models.WeatherReport, state *walkState) (models.ScheduledStop, bool) {
	if state.fillers >= s.cfg.MaxFillers {
		return models.ScheduledStop{}, false
	}

	bucket := models.BucketFor(earliest)
	home := s.kb.Nearest(anchor)
	if home == nil {
		return models.ScheduledStop{}, false
	}

	candidates := append([]*models.Area{home}, s.kb.Neighbors(home.Name)...)
	var best *models.Area
	bestScore := 0.0
	for _, a := range candidates {
		if state.usedAreas[strings.ToLower(a.Name)] {
			continue
		}
		if a.IsOutdoor() && !wx.OutdoorSuitable {
			continue
		}
		score := s.scorer.Score(a, bucket, wx)
		if a.Name == home.Name {
			score += 0.1 // staying close costs nothing
		}
		if best == nil || score > bestScore {
			best, bestScore = a, score
		}
	}
	if best == nil {
		return models.ScheduledStop{}, false
	}

	attraction := ""
	for _, p := range best.PopularFor {
		if !state.usedVenues[strings.ToLower(p)] {
			attraction = p
			break
		}
	}
	if attraction == "" {
		return models.ScheduledStop{}, false
	}

	loc := models.LatLng{Lat: best.Lat, Lng: best.Lon}
	available := deadline.Sub(earliest) - s.cfg.TravelBuffer
	duration := s.cfg.FillerDuration
	if duration > available {
		duration = available
	}
	if duration < s.cfg.MinFillerDuration {
		return models.ScheduledStop{}, false
	}

	f := models.ScheduledStop{
		Venue: models.ResolvedVenue{
			PlaceID:    "kb:" + slug(best.Name) + "/" + slug(attraction),
			Name:       attraction,
			Address:    best.Name + ", Boston, MA",
			Types:      best.Characteristics,
			Location:   loc,
			Confidence: 1,
		},
		Description: "Free time near " + best.Name,
		Start:       earliest,
		Duration:    duration,
		Kind:        models.StopKindFiller,
	}
	if f.End().After(deadline) {
		// Inserting would collide with the next stop
		return models.ScheduledStop{}, false
	}

	state.usedAreas[strings.ToLower(best.Name)] = true
	state.usedVenues[strings.ToLower(attraction)] = true
	state.fillers++
	s.logger.Debug("filled gap",
		zap.String("area", best.Name),
		zap.String("venue", attraction),
		zap.Time("start", f.Start),
		zap.Duration("duration", duration))
	return f, true
}

func slug(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	for _, r := range s {
		switch {
		case 'a' <= r && r <= 'z' || '0' <= r && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteByte('-')
		}
	}
	return strings.Trim(b.String(), "-")
}
