package dateutil

import (
	"fmt"
	"strconv"
	"time"
)

// CompactLayout is the fixed-width YYYYMMDD layout used by calendar data
const CompactLayout = "20060102"

// StartOfDay returns the start of the day (00:00:00) for the given date
func StartOfDay(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
}

// TodayAt returns the start of the day containing now, seen from loc
func TodayAt(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return StartOfDay(now.In(loc))
}

// FormatCompact formats date as YYYYMMDD
func FormatCompact(date time.Time) string {
	return date.Format(CompactLayout)
}

// ParseCompact parses a YYYYMMDD string in loc (UTC when loc is nil).
// Unlike IsCompact it also rejects impossible calendar dates.
func ParseCompact(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(CompactLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse compact date %q: %w", s, err)
	}
	return t, nil
}

// IsCompact reports whether s is exactly eight ASCII digits
func IsCompact(s string) bool {
	if len(s) != 8 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// YearOf returns the year in the first four characters of a compact date
func YearOf(compact string) (int, error) {
	if len(compact) < 4 {
		return 0, fmt.Errorf("date %q is too short to carry a year", compact)
	}
	year, err := strconv.Atoi(compact[:4])
	if err != nil {
		return 0, fmt.Errorf("invalid year in %q: %w", compact, err)
	}
	return year, nil
}
