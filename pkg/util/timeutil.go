package util

import "time"

// NowUTC exposes time.Now for deterministic testing.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// DaysBetween returns the fractional number of days from earlier to later.
func DaysBetween(earlier, later time.Time) float64 {
	return later.Sub(earlier).Hours() / 24
}
