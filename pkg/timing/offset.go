// Package timing works with the fixed UTC offsets users pick ("+03:00") and
// computes when recurring reminders fire next.
package timing

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	DefaultOffset = "+03:00"

	// ISOLayout always renders the numeric offset, never "Z".
	ISOLayout   = "2006-01-02T15:04:05-07:00"
	LocalLayout = "02.01 15:04"
)

var offsetRx = regexp.MustCompile(`^([+-])(\d{2}):(\d{2})$`)

// NormalizeOffset returns s trimmed when it looks like "+03:00", otherwise fallback
// (or DefaultOffset when fallback is itself invalid).
func NormalizeOffset(s, fallback string) string {
	s = strings.TrimSpace(s)
	if ValidOffset(s) {
		return s
	}

	fallback = strings.TrimSpace(fallback)
	if ValidOffset(fallback) {
		return fallback
	}

	return DefaultOffset
}

func ValidOffset(s string) bool {
	_, err := offsetMinutes(s)
	return err == nil
}

func offsetMinutes(s string) (int, error) {
	m := offsetRx.FindStringSubmatch(s)
	if m == nil {
		return 0, errors.Errorf("invalid utc offset %q", s)
	}

	hh, _ := strconv.Atoi(m[2])
	mm, _ := strconv.Atoi(m[3])
	if hh > 14 || mm > 59 {
		return 0, errors.Errorf("utc offset %q is out of range", s)
	}

	total := hh*60 + mm
	if m[1] == "-" {
		total = -total
	}

	return total, nil
}

// Location is a fixed zone for offset; invalid offsets resolve to DefaultOffset.
func Location(offset string) *time.Location {
	offset = NormalizeOffset(offset, DefaultOffset)
	minutes, _ := offsetMinutes(offset)

	return time.FixedZone("UTC"+offset, minutes*60)
}

func NowISO(now time.Time, offset string) string {
	return now.In(Location(offset)).Truncate(time.Second).Format(ISOLayout)
}

var zonedLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04:05Z07:00",
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseISO accepts RFC 3339 and naive date-times; naive values are read in offset.
func ParseISO(s, offset string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty date-time")
	}

	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	loc := Location(offset)
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}

	return time.Time{}, errors.Errorf("unsupported date-time %q", s)
}

func FormatLocal(t time.Time, offset string) string {
	return t.In(Location(offset)).Format(LocalLayout)
}

// ParseClock reads "9:05" or "09:05".
func ParseClock(hhmm string) (hour, minute int, err error) {
	parts := strings.Split(strings.TrimSpace(hhmm), ":")
	if len(parts) != 2 {
		return 0, 0, errors.Errorf("invalid time of day %q", hhmm)
	}

	hour, errH := strconv.Atoi(parts[0])
	minute, errM := strconv.Atoi(parts[1])
	if errH != nil || errM != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, errors.Errorf("invalid time of day %q", hhmm)
	}

	return hour, minute, nil
}

// NextTimeOfDay is today at hhmm in offset, or tomorrow when that moment is not after now.
func NextTimeOfDay(now time.Time, offset, hhmm string) (time.Time, error) {
	hour, minute, err := ParseClock(hhmm)
	if err != nil {
		return time.Time{}, err
	}

	local := now.In(Location(offset))
	next := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, local.Location())
	if !next.After(local) {
		next = next.AddDate(0, 0, 1)
	}

	return next, nil
}

// Clock renders the local time of day of t, e.g. "19:00".
func Clock(t time.Time, offset string) string {
	local := t.In(Location(offset))
	return fmt.Sprintf("%02d:%02d", local.Hour(), local.Minute())
}
