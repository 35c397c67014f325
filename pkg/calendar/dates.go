// Package calendar is the month/week/day grid engine: date helpers, item
// indexing, view navigation, grid layout, French header labels and the
// overlay state. Everything here is pure and operates in the location of the
// times it is given.
package calendar

import (
	"time"
)

const layoutISO = "2006-01-02"

// IsSameDay reports whether a and b fall on the same calendar day. Each time is
// read in its own location.
func IsSameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// StartOfDay returns midnight of d.
func StartOfDay(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
}

// StartOfWeek returns midnight of the Sunday on or before d.
func StartOfWeek(d time.Time) time.Time {
	return AddDays(StartOfDay(d), -int(d.Weekday()))
}

// AddDays shifts d by n calendar days, keeping the wall clock. Month and year
// boundaries roll over.
func AddDays(d time.Time, n int) time.Time {
	return d.AddDate(0, 0, n)
}

// FirstOfMonth returns midnight of the first day of d's month.
func FirstOfMonth(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, d.Location())
}

// DaysIn returns the number of days in d's month, computed as day 0 of the
// following month.
func DaysIn(d time.Time) int {
	return time.Date(d.Year(), d.Month()+1, 0, 0, 0, 0, 0, d.Location()).Day()
}

// FormatISODate renders YYYY-MM-DD.
func FormatISODate(d time.Time) string {
	return d.Format(layoutISO)
}

// ParseISODate parses YYYY-MM-DD as midnight in loc.
func ParseISODate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(layoutISO, s, loc)
}
