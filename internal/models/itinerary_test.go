package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBucketFor(t *testing.T) {
	// 2024-06-03 is a Monday
	monday := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, BucketMorning, BucketFor(monday.Add(9*time.Hour)))
	assert.Equal(t, BucketAfternoon, BucketFor(monday.Add(12*time.Hour)))
	assert.Equal(t, BucketAfternoon, BucketFor(monday.Add(16*time.Hour)))
	assert.Equal(t, BucketEvening, BucketFor(monday.Add(17*time.Hour)))
	assert.Equal(t, BucketEvening, BucketFor(monday.Add(22*time.Hour)))

	// Weekends override the hour split
	saturday := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, BucketWeekend, BucketFor(saturday))
}

func TestStopOverlaps(t *testing.T) {
	base := time.Date(2024, 6, 1, 13, 0, 0, 0, time.UTC)
	a := ScheduledStop{Start: base, Duration: time.Hour}

	assert.True(t, a.Overlaps(ScheduledStop{Start: base.Add(30 * time.Minute), Duration: time.Hour}))
	assert.False(t, a.Overlaps(ScheduledStop{Start: base.Add(time.Hour), Duration: time.Hour}))
	assert.False(t, a.Overlaps(ScheduledStop{Start: base.Add(-time.Hour), Duration: time.Hour}))
}

func TestUserStopCount(t *testing.T) {
	it := Itinerary{Stops: []ScheduledStop{
		{Kind: StopKindUser},
		{Kind: StopKindFiller},
		{Kind: StopKindUser},
	}}
	assert.Equal(t, 2, it.UserStopCount())
}

func TestAreaIsOutdoor(t *testing.T) {
	waterfront := Area{Characteristics: []string{"waterfront", "dining"}}
	assert.True(t, waterfront.IsOutdoor())

	indoor := Area{Characteristics: []string{"shopping", "museums"}}
	assert.False(t, indoor.IsOutdoor())
}
