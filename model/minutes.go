package model

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// MinutesFromClock converts an "HH:MM" string to a minute-of-day value.
func MinutesFromClock(clock string) (int, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", clock)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// ClockFromMinutes converts a minute-of-day value back to "HH:MM".
func ClockFromMinutes(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ParseDate validates a YYYY-MM-DD date string and returns its weekday.
func ParseDate(date string) (time.Weekday, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", date)
	}
	return t.Weekday(), nil
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Every overlap check in this service, including
// the SQL occupancy queries, must use this exact predicate so that an
// interval ending exactly where another starts is never flagged as a
// conflict.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && aEnd > bStart
}
