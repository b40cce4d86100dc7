// Package dates normalizes the calendar-day keys used across collections.
// Clients send YYYY-MM-DD or MM-DD-YYYY; keys are stored as YYYY-MM-DD.
package dates

import (
	"fmt"
	"strings"
	"time"
)

const (
	KeyLayout = "2006-01-02"
	USLayout  = "01-02-2006"
)

var layouts = []string{KeyLayout, USLayout, time.RFC3339, "01/02/2006", "2006/01/02"}

// Parse accepts any of the supported day layouts.
func Parse(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

// Key returns the canonical day key for value.
func Key(value string) (string, error) {
	parsed, err := Parse(value)
	if err != nil {
		return "", err
	}
	return parsed.Format(KeyLayout), nil
}

// Today returns the current day key in loc.
func Today(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return now.In(loc).Format(KeyLayout)
}

// KeyOrToday normalizes value, falling back to today when it is blank.
func KeyOrToday(value string, now time.Time, loc *time.Location) (string, error) {
	if strings.TrimSpace(value) == "" {
		return Today(now, loc), nil
	}
	return Key(value)
}

// Range holds an inclusive day interval.
type Range struct {
	Start time.Time
	End   time.Time
}

func ParseRange(start, end string) (Range, error) {
	s, err := Parse(start)
	if err != nil {
		return Range{}, err
	}
	e, err := Parse(end)
	if err != nil {
		return Range{}, err
	}
	if e.Before(s) {
		return Range{}, fmt.Errorf("end date %s is before start date %s", end, start)
	}
	return Range{Start: s, End: e}, nil
}

// Contains reports whether the stored key falls within the range.
// Keys that do not parse are outside every range.
func (r Range) Contains(key string) bool {
	day, err := Parse(key)
	if err != nil {
		return false
	}
	return !day.Before(r.Start) && !day.After(r.End)
}

// InclusiveDays counts calendar days from start to end.
func InclusiveDays(start, end time.Time) int {
	if end.Before(start) {
		return 0
	}
	return int(end.Sub(start).Hours()/24) + 1
}
