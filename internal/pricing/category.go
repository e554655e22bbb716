package pricing

import "time"

// Category is the calendar classification a fare is priced under.
type Category string

const (
	CategoryRegular       Category = "REGULAR"
	CategoryWeekendDay    Category = "WEEKEND_DAY"
	CategorySaturdayNight Category = "SATURDAY_NIGHT"
	CategoryNewYearsEve   Category = "NEW_YEARS_EVE"
)

// NightWindow is a time-of-day range that wraps midnight, in minutes after 00:00.
// A moment is inside the window when it is at or after Start, or before End.
type NightWindow struct {
	Start int
	End   int
}

// DefaultNightWindow covers 17:00 to 06:00.
var DefaultNightWindow = NightWindow{Start: 17 * 60, End: 6 * 60}

// Contains reports whether the time of day of t falls in the window.
func (w NightWindow) Contains(t time.Time) bool {
	minute := t.Hour()*60 + t.Minute()
	return minute >= w.Start || minute < w.End
}

// Classify assigns exactly one category to a moment. Rules are checked
// most specific first: New Year's Eve, Saturday night, weekend day, regular.
// Day and time of day are read in t's own location.
func Classify(t time.Time, night NightWindow) Category {
	switch {
	case t.Month() == time.December && t.Day() == 31:
		return CategoryNewYearsEve
	case t.Weekday() == time.Saturday && night.Contains(t):
		return CategorySaturdayNight
	case t.Weekday() == time.Saturday || t.Weekday() == time.Sunday:
		return CategoryWeekendDay
	default:
		return CategoryRegular
	}
}
