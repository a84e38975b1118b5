package models

import "time"

// ActivityRequest is one desired activity extracted from the user's free text.
// Rank preserves the narrative order of mention and is the tie-break when no
// explicit time was given.
type ActivityRequest struct {
	Description  string `json:"description"`
	LocationHint string `json:"location,omitempty"`
	TimeHint     string `json:"time,omitempty"`
	Rank         int    `json:"-"`
}

// LatLng is a WGS84 coordinate
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ResolvedVenue is a concrete venue matched to an activity request
type ResolvedVenue struct {
	PlaceID    string   `json:"place_id"`
	Name       string   `json:"name"`
	Address    string   `json:"address"`
	Types      []string `json:"types,omitempty"`
	Rating     float64  `json:"rating,omitempty"`
	Location   LatLng   `json:"location"`
	Confidence float64  `json:"confidence"`
}

// ResolvedActivity pairs an activity request with its matched venue and the
// scheduling inputs the planner derived from the request
type ResolvedActivity struct {
	Venue        ResolvedVenue
	Description  string
	ExplicitTime *time.Time
	Rank         int
}

// WeatherReport is the weather provider's answer for a date and location
type WeatherReport struct {
	Condition       string `json:"condition_category"`
	OutdoorSuitable bool   `json:"is_outdoor_suitable"`
}

// RouteInfo is the directions provider's answer for one origin/destination pair
type RouteInfo struct {
	DurationMinutes int    `json:"duration_minutes"`
	Mode            string `json:"mode"`
}
