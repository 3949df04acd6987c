package model

import (
	"errors"
	"strings"
	"time"
)

var ErrBadDate = errors.New("unrecognised date")

// accepted appointment date layouts; zone-less ones are read in the caller's zone
var dateLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseDate reads an RFC 3339 instant, or a local date / date-time in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrBadDate
}

// NextOccurrence returns the first instant strictly after `after` whose wall
// clock in loc reads hhmm ("15:04"). ok is false when hhmm does not parse.
func NextOccurrence(hhmm string, after time.Time, loc *time.Location) (time.Time, bool) {
	clock, err := time.Parse("15:04", strings.TrimSpace(hhmm))
	if err != nil {
		return time.Time{}, false
	}
	local := after.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), clock.Hour(), clock.Minute(), 0, 0, loc)
	if !next.After(after) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, clock.Hour(), clock.Minute(), 0, 0, loc)
	}
	return next, true
}

// DayBounds returns [start of t's calendar day, start of the next day) in loc.
func DayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start, time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, loc)
}

// EndOfTomorrow is 23:59:59.999 on the day after now, in loc.
func EndOfTomorrow(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day()+1, 23, 59, 59, 999_000_000, loc)
}
