package domain

import (
	"fmt"
	"time"
)

// dayLayout is the canonical calendar-day format. Lexicographic order of the
// string form matches chronological order, so Day values can be compared and
// indexed as plain strings in the database.
const dayLayout = "2006-01-02"

// Day is a calendar day without a time component, e.g. "2025-04-17".
type Day string

// DayOf truncates a point in time to its calendar day.
func DayOf(t time.Time) Day {
	return Day(t.Format(dayLayout))
}

// ParseDay validates a yyyy-MM-dd string.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(dayLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid day %q: %w", s, err)
	}
	// Round-trip to reject variants like "2025-4-7" that time.Parse accepts.
	if t.Format(dayLayout) != s {
		return "", fmt.Errorf("invalid day %q: not in yyyy-MM-dd form", s)
	}
	return Day(s), nil
}

func (d Day) String() string {
	return string(d)
}

func (d Day) time() time.Time {
	t, _ := time.Parse(dayLayout, string(d))
	return t
}

// Prev returns the previous calendar day. This is calendar arithmetic, not a
// 24-hour offset, so it stays correct across month and year boundaries.
func (d Day) Prev() Day {
	return DayOf(d.time().AddDate(0, 0, -1))
}

// OddDayOfMonth reports whether the day-of-month value is odd.
func (d Day) OddDayOfMonth() bool {
	return d.time().Day()%2 != 0
}
