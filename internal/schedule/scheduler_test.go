package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dayplan/itinerary-backend-go/internal/knowledge"
	"github.com/dayplan/itinerary-backend-go/internal/models"
)

// 2024-06-01 is a Saturday
var saturday = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

var (
	fenwayPark = models.LatLng{Lat: 42.3467, Lng: -71.0972}
	backBay    = models.LatLng{Lat: 42.3503, Lng: -71.081}
	seaport    = models.LatLng{Lat: 42.3519, Lng: -71.0428}
)

type stubWeather struct {
	wx  models.WeatherReport
	err error
}

func (s stubWeather) Forecast(ctx context.Context, date time.Time, loc models.LatLng) (models.WeatherReport, error) {
	return s.wx, s.err
}

var (
	clearSkies = stubWeather{wx: models.WeatherReport{Condition: "clear", OutdoorSuitable: true}}
	pouring    = stubWeather{wx: models.WeatherReport{Condition: "rain", OutdoorSuitable: false}}
	noForecast = stubWeather{err: errors.New("forecast unavailable")}
)

func newTestScheduler(t *testing.T, cfg Config, weather WeatherSource) *Scheduler {
	t.Helper()
	kb, err := knowledge.New()
	require.NoError(t, err)
	return New(cfg, kb, weather, nil, zap.NewNop())
}

func at(hour, minute int) time.Time {
	return saturday.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func userActivity(desc string, loc models.LatLng, rank int, start *time.Time) models.ResolvedActivity {
	return models.ResolvedActivity{
		Venue: models.ResolvedVenue{
			PlaceID:  "p-" + desc,
			Name:     desc,
			Location: loc,
		},
		Description:  desc,
		ExplicitTime: start,
		Rank:         rank,
	}
}

func TestBuildEmptyPlan(t *testing.T) {
	s := newTestScheduler(t, Config{}, clearSkies)

	_, err := s.Build(context.Background(), saturday, at(9, 0), nil)
	assert.ErrorIs(t, err, models.ErrEmptyPlan)
}

func TestBuildInterpolatesUntimedBetweenAnchors(t *testing.T) {
	// Weather failure keeps fillers out so the time math is isolated
	s := newTestScheduler(t, Config{}, noForecast)

	lunch := at(13, 0)
	acts := []models.ResolvedActivity{
		userActivity("Museum", backBay, 0, nil),
		userActivity("Lunch", fenwayPark, 1, &lunch),
		userActivity("Coffee", backBay, 2, nil),
	}

	stops, err := s.Build(context.Background(), saturday, at(9, 0), acts)
	require.NoError(t, err)
	require.Len(t, stops, 3)

	// Untimed first stop lands midway between plan start and the anchor
	assert.Equal(t, at(11, 0), stops[0].Start)
	assert.Equal(t, "Museum", stops[0].Venue.Name)

	assert.Equal(t, lunch, stops[1].Start)

	// Trailing untimed stop follows the anchor after the travel buffer
	assert.Equal(t, at(14, 15), stops[2].Start)
	assert.Equal(t, "Coffee", stops[2].Venue.Name)

	assert.NoError(t, Validate(stops))
	for _, st := range stops {
		assert.Equal(t, models.StopKindUser, st.Kind)
	}
}

func TestBuildShiftsCollidingStops(t *testing.T) {
	s := newTestScheduler(t, Config{}, noForecast)

	first := at(13, 0)
	second := at(13, 30)
	acts := []models.ResolvedActivity{
		userActivity("Lunch", fenwayPark, 0, &first),
		userActivity("Gallery", backBay, 1, &second),
	}

	stops, err := s.Build(context.Background(), saturday, at(9, 0), acts)
	require.NoError(t, err)
	require.Len(t, stops, 2)

	// The later stop is pushed forward by the earlier one's duration
	assert.Equal(t, first, stops[0].Start)
	assert.Equal(t, at(14, 30), stops[1].Start)
	assert.NoError(t, Validate(stops))
}

func TestBuildResolvesMultiWayCollision(t *testing.T) {
	s := newTestScheduler(t, Config{}, noForecast)

	// Everything booked for the same moment cascades out one by one
	noon := at(13, 0)
	acts := []models.ResolvedActivity{
		userActivity("A", fenwayPark, 0, &noon),
		userActivity("B", backBay, 1, &noon),
		userActivity("C", fenwayPark, 2, &noon),
		userActivity("D", backBay, 3, &noon),
	}

	stops, err := s.Build(context.Background(), saturday, at(9, 0), acts)
	require.NoError(t, err)
	require.Len(t, stops, 4)
	require.NoError(t, Validate(stops))

	assert.Equal(t, at(13, 0), stops[0].Start)
	assert.Equal(t, at(14, 0), stops[1].Start)
	assert.Equal(t, at(15, 0), stops[2].Start)
	assert.Equal(t, at(16, 0), stops[3].Start)
}

func TestBuildRespectsNarrativeRank(t *testing.T) {
	s := newTestScheduler(t, Config{}, noForecast)

	acts := []models.ResolvedActivity{
		userActivity("Second", backBay, 1, nil),
		userActivity("First", fenwayPark, 0, nil),
	}

	stops, err := s.Build(context.Background(), saturday, at(9, 0), acts)
	require.NoError(t, err)
	require.Len(t, stops, 2)

	assert.Equal(t, "First", stops[0].Venue.Name)
	assert.Equal(t, at(9, 0), stops[0].Start)
	assert.Equal(t, "Second", stops[1].Venue.Name)
	assert.Equal(t, at(10, 15), stops[1].Start)
}

func TestBuildFillsMorningGap(t *testing.T) {
	s := newTestScheduler(t, Config{}, clearSkies)

	lunch := at(13, 0)
	acts := []models.ResolvedActivity{
		userActivity("Lunch at Fenway Park", fenwayPark, 0, &lunch),
	}

	stops, err := s.Build(context.Background(), saturday, at(9, 0), acts)
	require.NoError(t, err)
	require.Greater(t, len(stops), 1)
	assert.NoError(t, Validate(stops))

	// First filler starts the day where the user would
	assert.Equal(t, models.StopKindFiller, stops[0].Kind)
	assert.Equal(t, at(9, 0), stops[0].Start)
	assert.Equal(t, "SoWa Art + Design District", stops[0].Venue.Name)

	// The user stop keeps its explicit time
	last := stops[len(stops)-1]
	assert.Equal(t, models.StopKindUser, last.Kind)
	assert.Equal(t, lunch, last.Start)

	// Fillers never repeat an area and stay under the cap
	seen := map[string]bool{}
	fillers := 0
	for _, st := range stops {
		if st.Kind != models.StopKindFiller {
			continue
		}
		fillers++
		assert.False(t, seen[st.Venue.Address], "area repeated: %s", st.Venue.Address)
		seen[st.Venue.Address] = true
		assert.Contains(t, st.Venue.PlaceID, "kb:")
	}
	assert.LessOrEqual(t, fillers, 4)
	assert.GreaterOrEqual(t, fillers, 2)
}

func TestBuildLeavesGapsWhenWeatherUnavailable(t *testing.T) {
	s := newTestScheduler(t, Config{}, noForecast)

	lunch := at(13, 0)
	acts := []models.ResolvedActivity{
		userActivity("Lunch at Fenway Park", fenwayPark, 0, &lunch),
	}

	stops, err := s.Build(context.Background(), saturday, at(9, 0), acts)
	require.NoError(t, err)
	assert.Len(t, stops, 1)
	assert.Equal(t, models.StopKindUser, stops[0].Kind)
}

func TestBuildSkipsOutdoorAreasInBadWeather(t *testing.T) {
	s := newTestScheduler(t, Config{}, pouring)

	// Every candidate around the Seaport is an outdoor area
	brunch := at(14, 0)
	acts := []models.ResolvedActivity{
		userActivity("Harbor brunch", seaport, 0, &brunch),
	}

	stops, err := s.Build(context.Background(), saturday, at(10, 0), acts)
	require.NoError(t, err)
	assert.Len(t, stops, 1)
}

func TestBuildPicksOutdoorAreasInGoodWeather(t *testing.T) {
	s := newTestScheduler(t, Config{}, clearSkies)

	brunch := at(14, 0)
	acts := []models.ResolvedActivity{
		userActivity("Harbor brunch", seaport, 0, &brunch),
	}

	stops, err := s.Build(context.Background(), saturday, at(10, 0), acts)
	require.NoError(t, err)
	require.Greater(t, len(stops), 1)
	assert.Equal(t, models.StopKindFiller, stops[0].Kind)
}

func TestBuildHonorsFillerCap(t *testing.T) {
	s := newTestScheduler(t, Config{MaxFillers: 1}, clearSkies)

	dinner := at(16, 0)
	acts := []models.ResolvedActivity{
		userActivity("Early dinner", fenwayPark, 0, &dinner),
	}

	stops, err := s.Build(context.Background(), saturday, at(8, 0), acts)
	require.NoError(t, err)

	fillers := 0
	for _, st := range stops {
		if st.Kind == models.StopKindFiller {
			fillers++
		}
	}
	assert.Equal(t, 1, fillers)
	assert.Len(t, stops, 2)
}

func TestBuildCancelledContext(t *testing.T) {
	s := newTestScheduler(t, Config{}, clearSkies)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	lunch := at(13, 0)
	acts := []models.ResolvedActivity{
		userActivity("Lunch", fenwayPark, 0, &lunch),
	}
	_, err := s.Build(ctx, saturday, at(9, 0), acts)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestValidate(t *testing.T) {
	ok := []models.ScheduledStop{
		{Start: at(9, 0), Duration: time.Hour},
		{Start: at(10, 0), Duration: time.Hour},
	}
	assert.NoError(t, Validate(ok))

	overlapping := []models.ScheduledStop{
		{Venue: models.ResolvedVenue{Name: "A"}, Start: at(9, 0), Duration: 2 * time.Hour},
		{Venue: models.ResolvedVenue{Name: "B"}, Start: at(10, 0), Duration: time.Hour},
	}
	assert.Error(t, Validate(overlapping))
}

func TestWeightedScorer(t *testing.T) {
	scorer := WeightedScorer{CrowdWeight: 0.6, WeatherWeight: 0.4}
	quiet := &models.Area{
		Name:            "Quiet",
		Characteristics: []string{"historic"},
		CrowdLevels:     models.CrowdLevels{Morning: 1},
	}
	packedOutdoor := &models.Area{
		Name:            "Packed",
		Characteristics: []string{"outdoor"},
		CrowdLevels:     models.CrowdLevels{Morning: 5},
	}

	good := models.WeatherReport{Condition: "clear", OutdoorSuitable: true}
	bad := models.WeatherReport{Condition: "rain", OutdoorSuitable: false}

	assert.Greater(t,
		scorer.Score(quiet, models.BucketMorning, good),
		scorer.Score(packedOutdoor, models.BucketMorning, good))

	// Bad weather zeroes the weather share for outdoor areas only
	assert.Equal(t,
		scorer.Score(quiet, models.BucketMorning, good),
		scorer.Score(quiet, models.BucketMorning, bad))
	assert.Less(t,
		scorer.Score(packedOutdoor, models.BucketMorning, bad),
		scorer.Score(packedOutdoor, models.BucketMorning, good))

	assert.Zero(t, WeightedScorer{}.Score(quiet, models.BucketMorning, good))
}
