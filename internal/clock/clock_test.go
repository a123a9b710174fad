package clock_test

import (
	"testing"
	"time"

	"classledger/internal/clock"

	"github.com/stretchr/testify/assert"
)

func TestMidnight(t *testing.T) {
	ts := time.Date(2025, time.January, 31, 18, 45, 12, 999, time.UTC)
	assert.Equal(t, time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC), clock.Midnight(ts))
}

func TestDaysBetween(t *testing.T) {
	jan10 := time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)
	jan31 := time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 21, clock.DaysBetween(jan10, jan31))
	assert.Equal(t, -21, clock.DaysBetween(jan31, jan10))
	assert.Equal(t, 0, clock.DaysBetween(jan10, jan10))

	// time-of-day noise must not shift the day count
	late := time.Date(2025, time.January, 10, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, 21, clock.DaysBetween(late, jan31))
}

func TestFixedClock(t *testing.T) {
	fixed := clock.Fixed{Date: time.Date(2025, time.January, 31, 10, 30, 0, 0, time.UTC)}
	assert.Equal(t, time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC), fixed.Today())
}
