package clock

import "time"

// Clock supplies the current calendar date. Business rules never read the
// wall clock directly so they stay testable against simulated days.
type Clock interface {
	Today() time.Time
}

// System reads the real wall clock.
type System struct{}

func (System) Today() time.Time {
	return Midnight(time.Now())
}

// Fixed always reports the same date. Used in tests.
type Fixed struct {
	Date time.Time
}

func (f Fixed) Today() time.Time {
	return Midnight(f.Date)
}

// Midnight truncates a timestamp to its calendar date in UTC.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole number of days from one date to another.
// Negative when "to" is before "from".
func DaysBetween(from, to time.Time) int {
	return int(Midnight(to).Sub(Midnight(from)) / (24 * time.Hour))
}
