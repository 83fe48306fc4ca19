package table

import (
	"strconv"
	"strings"
	"time"
)

// TimeLayout is the canonical timestamp layout cells are rewritten to after a
// successful date coercion. Queries parse it back first, so round trips stay
// cheap and exact.
const TimeLayout = "2006-01-02 15:04:05"

// timeLayouts are tried in order after TimeLayout. Day-first layouts come
// before month-first for ambiguous numeric dates.
var timeLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"02.01.2006 15:04:05",
	"02.01.2006",
	"02/01/2006",
	"01/02/2006 15:04",
	"01/02/2006",
	"1/2/2006 15:04",
	"1/2/2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// ParseTime parses a cell value as a timestamp, best-effort. The bool result
// is false for empty or unrecognized values.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(TimeLayout, s); err == nil {
		return t, true
	}
	for _, lay := range timeLayouts {
		if t, err := time.Parse(lay, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseNumber parses a cell value as a float, best-effort. The bool result is
// false for empty or non-numeric values; callers skip those (never zero-fill)
// so sums and counts reflect only real values.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
