package spatial

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dayplan/itinerary-backend-go/internal/models"
)

var (
	downtown   = models.LatLng{Lat: 42.3555, Lng: -71.0605}
	harvardSq  = models.LatLng{Lat: 42.3732, Lng: -71.119}
	beaconHill = models.LatLng{Lat: 42.3588, Lng: -71.0707}
)

func TestHaversineDistance(t *testing.T) {
	assert.Zero(t, HaversineDistance(downtown, downtown))

	// Downtown to Harvard Square is roughly 5.2 km
	d := HaversineDistance(downtown, harvardSq)
	assert.InDelta(t, 5200, d, 400)

	// Symmetric
	assert.InDelta(t, d, HaversineDistance(harvardSq, downtown), 0.001)
}

func TestEstimateModeByCutoff(t *testing.T) {
	assert.Equal(t, "walking", EstimateMode(downtown, beaconHill))
	assert.Equal(t, "transit", EstimateMode(downtown, harvardSq))
}

func TestEstimateTravelMinutes(t *testing.T) {
	// Same point still takes a minute of shoe leather
	assert.Equal(t, 1, EstimateTravelMinutes(downtown, downtown))

	// Walking estimates grow with distance, transit adds boarding overhead
	short := EstimateTravelMinutes(downtown, beaconHill)
	long := EstimateTravelMinutes(downtown, harvardSq)
	assert.Greater(t, long, short)
	assert.GreaterOrEqual(t, long, 8)
}
