package models

import "time"

// AreaType classifies entries in the area knowledge base
type AreaType string

const (
	AreaTypeRegion       AreaType = "region"
	AreaTypeNeighborhood AreaType = "neighborhood"
	AreaTypeArea         AreaType = "area"
)

// TimeBucket is the crowd-level time dimension
type TimeBucket string

const (
	BucketMorning   TimeBucket = "morning"
	BucketAfternoon TimeBucket = "afternoon"
	BucketEvening   TimeBucket = "evening"
	BucketWeekend   TimeBucket = "weekend"
)

// BucketFor maps a point in time to its crowd bucket.
// Weekends override the hour-of-day split.
func BucketFor(t time.Time) TimeBucket {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return BucketWeekend
	}
	switch h := t.Hour(); {
	case h < 12:
		return BucketMorning
	case h < 17:
		return BucketAfternoon
	default:
		return BucketEvening
	}
}

// CrowdLevels holds per-bucket crowd ratings on a 1-5 scale
type CrowdLevels struct {
	Morning   int `json:"morning"`
	Afternoon int `json:"afternoon"`
	Evening   int `json:"evening"`
	Weekend   int `json:"weekend"`
}

// For returns the crowd level for the given bucket
func (c CrowdLevels) For(bucket TimeBucket) int {
	switch bucket {
	case BucketMorning:
		return c.Morning
	case BucketAfternoon:
		return c.Afternoon
	case BucketEvening:
		return c.Evening
	case BucketWeekend:
		return c.Weekend
	}
	return 0
}

// Area represents a curated geographic unit (region, neighborhood, or point area)
type Area struct {
	Name            string      `json:"name"`
	Type            AreaType    `json:"type"`
	Region          string      `json:"region"`
	Characteristics []string    `json:"characteristics"`
	Neighbors       []string    `json:"neighbors"`
	PopularFor      []string    `json:"popular_for"`
	CrowdLevels     CrowdLevels `json:"crowd_levels"`
	Lat             float64     `json:"lat"`
	Lon             float64     `json:"lon"`
}

// HasCharacteristic reports whether the area carries the given tag
func (a *Area) HasCharacteristic(tag string) bool {
	for _, c := range a.Characteristics {
		if c == tag {
			return true
		}
	}
	return false
}

// IsOutdoor reports whether the area is characteristically outdoors,
// used to skip it under unsuitable weather
func (a *Area) IsOutdoor() bool {
	return a.HasCharacteristic("outdoor") || a.HasCharacteristic("parks") ||
		a.HasCharacteristic("waterfront")
}

// AreaFilter holds query parameters for area lookups
type AreaFilter struct {
	Characteristic string `form:"characteristic"`
	Region         string `form:"region"`
	Bucket         string `form:"bucket"`
	MaxCrowd       int    `form:"max_crowd"`
}
