package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dayplan/itinerary-backend-go/internal/models"
	"github.com/dayplan/itinerary-backend-go/internal/schedule"
)

// ActivityExtractor is the language-model boundary that turns free text into
// structured activity requests
type ActivityExtractor interface {
	Extract(ctx context.Context, plans string) ([]models.ActivityRequest, error)
}

// PlanRequest is the inbound itinerary-generation request
type PlanRequest struct {
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	Plans     string `json:"plans"`
}

// PlannerService orchestrates one planning run: extract, resolve, schedule,
// compute travel, assemble. Each invocation owns its own itinerary-in-
// progress; nothing is shared across concurrent requests.
type PlannerService struct {
	extractor ActivityExtractor
	resolver  *ResolverService
	scheduler *schedule.Scheduler
	travel    *TravelService
	loc       *time.Location
	logger    *zap.Logger
}

// NewPlannerService creates a planner service
func NewPlannerService(extractor ActivityExtractor, resolver *ResolverService, scheduler *schedule.Scheduler, travel *TravelService, logger *zap.Logger) *PlannerService {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		loc = time.Local
	}
	return &PlannerService{
		extractor: extractor,
		resolver:  resolver,
		scheduler: scheduler,
		travel:    travel,
		loc:       loc,
		logger:    logger,
	}
}

// Plan generates a full itinerary from the request. Partial success is
// preferred: activities whose locations cannot be matched are dropped and
// reported, and the plan fails only when nothing at all resolves or the
// request context ends.
func (s *PlannerService) Plan(ctx context.Context, req PlanRequest) (*models.Itinerary, []*models.UnresolvableLocationError, error) {
	if strings.TrimSpace(req.Plans) == "" {
		return nil, nil, models.ErrEmptyPlan
	}

	date, planStart, err := s.parseWindow(req)
	if err != nil {
		return nil, nil, err
	}

	activities, err := s.extractor.Extract(ctx, req.Plans)
	if err != nil {
		return nil, nil, fmt.Errorf("activity extraction failed: %w", err)
	}
	if len(activities) == 0 {
		return nil, nil, models.ErrEmptyPlan
	}

	// Pin explicit time hints to the plan date before resolution so the
	// scheduler sees concrete anchors
	hinted := make(map[int]time.Time, len(activities))
	for _, a := range activities {
		if t, ok := parseClock(a.TimeHint); ok {
			hinted[a.Rank] = time.Date(date.Year(), date.Month(), date.Day(), t.hour, t.minute, 0, 0, s.loc)
		}
	}

	resolved, unresolved, err := s.resolver.ResolveAll(ctx, activities)
	if err != nil {
		return nil, nil, err
	}
	if len(resolved) == 0 {
		return nil, unresolved, models.ErrEmptyPlan
	}
	for i := range resolved {
		if t, ok := hinted[resolved[i].Rank]; ok {
			anchor := t
			resolved[i].ExplicitTime = &anchor
		}
	}

	stops, err := s.scheduler.Build(ctx, date, planStart, resolved)
	if err != nil {
		return nil, unresolved, err
	}

	legs, err := s.travel.Legs(ctx, stops)
	if err != nil {
		return nil, unresolved, err
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	it := &models.Itinerary{
		ID:        uuid.NewString(),
		Date:      date.Format("2006-01-02"),
		Stops:     stops,
		Legs:      legs,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.assembleCheck(it); err != nil {
		return nil, unresolved, err
	}

	s.logger.Info("itinerary planned",
		zap.String("id", it.ID),
		zap.Int("stops", len(it.Stops)),
		zap.Int("fillers", len(it.Stops)-it.UserStopCount()),
		zap.Int("unresolved", len(unresolved)))
	return it, unresolved, nil
}

// assembleCheck re-asserts the assembly invariants: non-overlapping stops
// and one leg per consecutive pair
func (s *PlannerService) assembleCheck(it *models.Itinerary) error {
	if err := schedule.Validate(it.Stops); err != nil {
		return fmt.Errorf("assembled itinerary violates ordering: %w", err)
	}
	if len(it.Stops) >= 2 && len(it.Legs) != len(it.Stops)-1 {
		return fmt.Errorf("assembled itinerary has %d legs for %d stops", len(it.Legs), len(it.Stops))
	}
	return nil
}

// ToResponse converts an itinerary to its delivered wire form
func (s *PlannerService) ToResponse(it *models.Itinerary) *models.ItineraryResponse {
	places := make([]models.PlaceOutput, len(it.Stops))
	for i, st := range it.Stops {
		places[i] = models.PlaceOutput{
			Name:          st.Venue.Name,
			Address:       st.Venue.Address,
			ScheduledTime: st.Start.Format(time.RFC3339),
			DisplayTime:   st.Start.Format("3:04 PM"),
			Kind:          st.Kind,
			Details: models.PlaceDetails{
				Rating: st.Venue.Rating,
				Types:  st.Venue.Types,
			},
		}
	}
	travelTimes := make([]models.TravelTimeOutput, len(it.Legs))
	for i, leg := range it.Legs {
		travelTimes[i] = models.TravelTimeOutput{
			Duration:  leg.DurationMinutes,
			To:        leg.To,
			Mode:      leg.Mode,
			Estimated: leg.Estimated,
		}
	}
	return &models.ItineraryResponse{
		ID:          it.ID,
		Date:        it.Date,
		Places:      places,
		TravelTimes: travelTimes,
		CreatedAt:   it.CreatedAt,
	}
}

// parseWindow resolves the plan date and start time, defaulting to today at
// 09:00 local
func (s *PlannerService) parseWindow(req PlanRequest) (time.Time, time.Time, error) {
	date := time.Now().In(s.loc)
	if strings.TrimSpace(req.Date) != "" {
		parsed, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(req.Date), s.loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", req.Date)
		}
		date = parsed
	}

	start := clockTime{hour: 9}
	if strings.TrimSpace(req.StartTime) != "" {
		parsed, ok := parseClock(req.StartTime)
		if !ok {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid start time %q", req.StartTime)
		}
		start = parsed
	}

	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, s.loc)
	return day, day.Add(time.Duration(start.hour)*time.Hour + time.Duration(start.minute)*time.Minute), nil
}

type clockTime struct {
	hour   int
	minute int
}

// parseClock accepts the clock formats that show up in extracted hints and
// user input: "13:00", "1pm", "1:30 PM", "9"
func parseClock(s string) (clockTime, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return clockTime{}, false
	}

	meridiem := ""
	for _, suffix := range []string{"am", "pm", "a.m.", "p.m."} {
		if strings.HasSuffix(s, suffix) {
			meridiem = string(suffix[0])
			s = strings.TrimSpace(strings.TrimSuffix(s, suffix))
			break
		}
	}

	hourPart, minutePart := s, "0"
	if idx := strings.IndexByte(s, ':'); idx >= 0 {
		hourPart, minutePart = s[:idx], s[idx+1:]
	}
	hour, err := strconv.Atoi(hourPart)
	if err != nil {
		return clockTime{}, false
	}
	minute, err := strconv.Atoi(minutePart)
	if err != nil || minute < 0 || minute > 59 {
		return clockTime{}, false
	}

	switch meridiem {
	case "p":
		if hour < 12 {
			hour += 12
		}
	case "a":
		if hour == 12 {
			hour = 0
		}
	}
	if hour < 0 || hour > 23 {
		return clockTime{}, false
	}
	return clockTime{hour: hour, minute: minute}, true
}
