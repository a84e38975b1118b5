package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dayplan/itinerary-backend-go/internal/knowledge"
	"github.com/dayplan/itinerary-backend-go/internal/location"
	"github.com/dayplan/itinerary-backend-go/internal/models"
	"github.com/dayplan/itinerary-backend-go/internal/provider"
	"github.com/dayplan/itinerary-backend-go/internal/schedule"
	"github.com/dayplan/itinerary-backend-go/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type planExtractor struct {
	acts []models.ActivityRequest
	err  error
}

func (f planExtractor) Extract(ctx context.Context, plans string) ([]models.ActivityRequest, error) {
	return f.acts, f.err
}

type planPlaces struct{}

func (planPlaces) Search(ctx context.Context, query string, bias *models.LatLng) ([]provider.PlaceCandidate, error) {
	if strings.Contains(query, "Fenway") {
		return []provider.PlaceCandidate{{
			PlaceID: "pl-fenway",
			Name:    "Fenway Park",
			Address: "4 Jersey St, Boston, MA",
			Types:   []string{"stadium"},
			Rating:  4.7,
			Loc:     models.LatLng{Lat: 42.3467, Lng: -71.0972},
		}}, nil
	}
	return nil, nil
}

type planDirections struct{}

func (planDirections) Route(ctx context.Context, origin, dest models.LatLng) (models.RouteInfo, error) {
	return models.RouteInfo{DurationMinutes: 10, Mode: "transit"}, nil
}

type planWeather struct{}

func (planWeather) Forecast(ctx context.Context, date time.Time, loc models.LatLng) (models.WeatherReport, error) {
	return models.WeatherReport{Condition: "clear", OutdoorSuitable: true}, nil
}

func newPlanRouter(t *testing.T, extractor service.ActivityExtractor) *gin.Engine {
	t.Helper()
	kb, err := knowledge.New()
	require.NoError(t, err)
	logger := zap.NewNop()

	resolver := service.NewResolverService(location.NewNormalizer(kb), planPlaces{}, service.ResolverConfig{}, logger)
	scheduler := schedule.New(schedule.Config{}, kb, planWeather{}, nil, logger)
	travel := service.NewTravelService(planDirections{}, service.TravelConfig{}, logger)
	planner := service.NewPlannerService(extractor, resolver, scheduler, travel, logger)

	r := gin.New()
	r.POST("/plan", NewPlanHandler(planner).CreatePlan)
	return r
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestCreatePlanSuccess(t *testing.T) {
	extractor := planExtractor{acts: []models.ActivityRequest{
		{Description: "Lunch", LocationHint: "Fenway Park", TimeHint: "13:00", Rank: 0},
		{Description: "Shopping", LocationHint: "Atlantis District", Rank: 1},
	}}
	r := newPlanRouter(t, extractor)

	w := postJSON(r, "/plan", `{"date":"2024-06-01","startTime":"09:00","plans":"Lunch at Fenway Park at 1pm, then shopping"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Code int `json:"code"`
		Data struct {
			Itinerary models.ItineraryResponse `json:"itinerary"`
			Warnings  []string                 `json:"warnings"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Zero(t, body.Code)
	assert.NotEmpty(t, body.Data.Itinerary.ID)
	assert.Equal(t, "2024-06-01", body.Data.Itinerary.Date)
	assert.NotEmpty(t, body.Data.Itinerary.Places)

	// The unmatchable activity surfaces as a warning, not a failure
	require.Len(t, body.Data.Warnings, 1)
	assert.Contains(t, body.Data.Warnings[0], "Shopping")
}

func TestCreatePlanInvalidBody(t *testing.T) {
	r := newPlanRouter(t, planExtractor{})

	w := postJSON(r, "/plan", `{bad json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreatePlanEmptyPlan(t *testing.T) {
	r := newPlanRouter(t, planExtractor{})

	w := postJSON(r, "/plan", `{"plans":"   "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "no plannable activities")
}

func TestCreatePlanClientGone(t *testing.T) {
	// A cancelled request must not get a 502, even when the planner's error
	// wraps a provider failure
	extractor := planExtractor{err: &models.ProviderError{
		Kind:      models.ProviderExtractor,
		Transient: true,
		Err:       context.Canceled,
	}}
	r := newPlanRouter(t, extractor)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/plan", strings.NewReader(`{"plans":"Lunch at Fenway Park"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req.WithContext(ctx))

	assert.NotEqual(t, http.StatusBadGateway, w.Code)
	assert.Zero(t, w.Body.Len())
}

func TestCreatePlanProviderUnavailable(t *testing.T) {
	extractor := planExtractor{err: &models.ProviderError{
		Kind:      models.ProviderExtractor,
		Transient: true,
		Err:       context.DeadlineExceeded,
	}}
	r := newPlanRouter(t, extractor)

	w := postJSON(r, "/plan", `{"plans":"Lunch at Fenway Park"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}
