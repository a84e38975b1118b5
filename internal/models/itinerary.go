package models

import "time"

// StopKind distinguishes user-requested stops from scheduler-inserted fillers
type StopKind string

const (
	StopKindUser   StopKind = "user"
	StopKindFiller StopKind = "filler"
)

// ScheduledStop is a visit to a resolved venue with an assigned time slot
type ScheduledStop struct {
	Venue       ResolvedVenue `json:"venue"`
	Description string        `json:"description,omitempty"`
	Start       time.Time     `json:"start"`
	Duration    time.Duration `json:"duration"`
	Kind        StopKind      `json:"kind"`
}

// End returns the stop's scheduled end time
func (s ScheduledStop) End() time.Time {
	return s.Start.Add(s.Duration)
}

// Overlaps reports whether two stops' intervals intersect
func (s ScheduledStop) Overlaps(other ScheduledStop) bool {
	return s.Start.Before(other.End()) && other.Start.Before(s.End())
}

// TravelLeg connects two consecutive stops. Estimated is set when the
// directions provider was unavailable and the duration is a distance-based
// placeholder.
type TravelLeg struct {
	DurationMinutes int    `json:"duration"`
	Mode            string `json:"mode"`
	To              string `json:"to"`
	Estimated       bool   `json:"estimated,omitempty"`
}

// Itinerary is the assembled plan: ordered stops plus the legs between them.
// Invariant: len(Legs) == len(Stops)-1 for any itinerary with 2+ stops, and
// stops ordered by start time never overlap.
type Itinerary struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id,omitempty"`
	Date      string          `json:"date"`
	Stops     []ScheduledStop `json:"stops"`
	Legs      []TravelLeg     `json:"legs"`
	CreatedAt time.Time       `json:"created_at"`
}

// UserStopCount returns the number of user-requested stops
func (it *Itinerary) UserStopCount() int {
	n := 0
	for _, s := range it.Stops {
		if s.Kind == StopKindUser {
			n++
		}
	}
	return n
}

// PlaceDetails carries the secondary venue fields on the wire
type PlaceDetails struct {
	Rating float64  `json:"rating"`
	Types  []string `json:"types"`
}

// PlaceOutput is one scheduled place in the delivered itinerary
type PlaceOutput struct {
	Name          string       `json:"name"`
	Address       string       `json:"address"`
	ScheduledTime string       `json:"scheduledTime"`
	DisplayTime   string       `json:"displayTime"`
	Kind          StopKind     `json:"kind"`
	Details       PlaceDetails `json:"details"`
}

// TravelTimeOutput is one travel leg in the delivered itinerary
type TravelTimeOutput struct {
	Duration  int    `json:"duration"`
	To        string `json:"to"`
	Mode      string `json:"mode,omitempty"`
	Estimated bool   `json:"estimated,omitempty"`
}

// ItineraryResponse is the delivered wire form.
// Invariant: len(TravelTimes) == len(Places)-1 for 2+ places.
type ItineraryResponse struct {
	ID          string             `json:"id"`
	Date        string             `json:"date"`
	Places      []PlaceOutput      `json:"places"`
	TravelTimes []TravelTimeOutput `json:"travelTimes"`
	CreatedAt   time.Time          `json:"created_at"`
}
