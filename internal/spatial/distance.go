package spatial

import (
	"time"

	"github.com/golang/geo/s2"

	"github.com/dayplan/itinerary-backend-go/internal/models"
)

// Constants
const (
	EarthRadiusMeters = 6371000.0 // Earth's mean radius in meters

	walkSpeedMetersPerMin    = 80.0  // ~4.8 km/h
	transitSpeedMetersPerMin = 330.0 // ~20 km/h door to door
	walkCutoffMeters         = 1600.0
	transitBoardingMinutes   = 8
)

// HaversineDistance calculates the great-circle distance between two points
// in meters
func HaversineDistance(a, b models.LatLng) float64 {
	p1 := s2.LatLngFromDegrees(a.Lat, a.Lng)
	p2 := s2.LatLngFromDegrees(b.Lat, b.Lng)
	return p1.Distance(p2).Radians() * EarthRadiusMeters
}

// EstimateTravelMinutes approximates door-to-door travel time between two
// points: walking below the cutoff, transit with a boarding overhead above it.
// Used for gap-detection overhead and as the placeholder when the directions
// provider is unavailable.
func EstimateTravelMinutes(a, b models.LatLng) int {
	meters := HaversineDistance(a, b)
	if meters <= walkCutoffMeters {
		return int(meters/walkSpeedMetersPerMin) + 1
	}
	return int(meters/transitSpeedMetersPerMin) + transitBoardingMinutes
}

// EstimateMode returns the mode matching EstimateTravelMinutes' assumption
func EstimateMode(a, b models.LatLng) string {
	if HaversineDistance(a, b) <= walkCutoffMeters {
		return "walking"
	}
	return "transit"
}

// EstimateTravelDuration is EstimateTravelMinutes as a time.Duration
func EstimateTravelDuration(a, b models.LatLng) time.Duration {
	return time.Duration(EstimateTravelMinutes(a, b)) * time.Minute
}
