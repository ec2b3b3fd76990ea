// Package datekey renders instants as timezone-local calendar-day keys (YYYY-MM-DD).
//
// None of the functions return errors: an unknown zone falls back to UTC and an
// unparseable key is returned unchanged.
package datekey

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Layout is the calendar-day key format.
const Layout = "2006-01-02"

var zones sync.Map // name -> *time.Location, or nil for invalid names

// Location resolves an IANA zone name. Empty or invalid names yield nil.
func Location(tz string) *time.Location {
	tz = strings.TrimSpace(tz)
	if tz == "" {
		return nil
	}
	if v, ok := zones.Load(tz); ok {
		loc, _ := v.(*time.Location)
		return loc
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = nil
	}
	zones.Store(tz, loc)
	return loc
}

// ValidZone reports whether tz names a loadable IANA zone.
func ValidZone(tz string) bool {
	return Location(tz) != nil
}

// UTC returns the UTC calendar day of t.
func UTC(t time.Time) string {
	return t.UTC().Format(Layout)
}

// InZone returns the calendar day of t in tz, or in UTC when tz is empty or invalid.
func InZone(t time.Time, tz string) string {
	loc := Location(tz)
	if loc == nil {
		return UTC(t)
	}
	return t.In(loc).Format(Layout)
}

// Shift moves key by offsetDays calendar days.
func Shift(key string, offsetDays int) string {
	d, ok := Parse(key)
	if !ok {
		return key
	}
	return d.AddDate(0, 0, offsetDays).Format(Layout)
}

// Parse reads key as a UTC midnight.
func Parse(key string) (time.Time, bool) {
	d, err := time.ParseInLocation(Layout, strings.TrimSpace(key), time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// Weekday returns the day of week the key falls on.
func Weekday(key string) (time.Weekday, bool) {
	d, ok := Parse(key)
	if !ok {
		return time.Sunday, false
	}
	return d.Weekday(), true
}

// ISOWeek renders the ISO-8601 week of t (in t's own location) as "2026-W08".
func ISOWeek(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// ParseInstant accepts RFC3339 timestamps and bare day keys, as providers report both.
func ParseInstant(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	return Parse(s)
}
