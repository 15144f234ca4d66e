package timex

import (
	"fmt"
	"time"
)

// DayLayout is the wire format of a Day.
const DayLayout = "2006-01-02"

// Day is a calendar date without a time of day, e.g. "2026-10-19".
// The zero value is the empty string and means "unset".
type Day string

// DayOf returns the calendar day of t in loc.
func DayOf(t time.Time, loc *time.Location) Day {
	if loc == nil {
		loc = time.Local
	}
	return Day(t.In(loc).Format(DayLayout))
}

// ParseDay validates s and returns it as a Day.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid day %q: %w", s, err)
	}
	return Day(t.Format(DayLayout)), nil
}

// IsZero reports whether the day is unset.
func (d Day) IsZero() bool {
	return d == ""
}

// Before compares two days. The layout sorts lexically, so a string
// comparison is a chronological comparison.
func (d Day) Before(other Day) bool {
	return d < other
}

// At returns the instant at hour:00 of the day in loc.
func (d Day) At(hour int, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.Parse(DayLayout, string(d))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day %q: %w", string(d), err)
	}
	y, m, dd := t.Date()
	return time.Date(y, m, dd, hour, 0, 0, 0, loc), nil
}

// AddDays returns the day n days after d (n may be negative).
func (d Day) AddDays(n int) Day {
	t, err := time.Parse(DayLayout, string(d))
	if err != nil {
		return d
	}
	return Day(t.AddDate(0, 0, n).Format(DayLayout))
}

func (d Day) String() string {
	return string(d)
}
