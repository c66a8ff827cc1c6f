package appointment

import (
	"fmt"
	"strings"
	"time"
)

// Naive is the location of timestamps submitted without an offset. It has a
// zero offset, so naive times compare against UTC ones wall clock to wall
// clock, but it is distinct from time.UTC: an explicit "Z" stays UTC.
var Naive = time.FixedZone("naive", 0)

// Accepted ISO-8601 shapes, offset-bearing layouts first.
var (
	offsetLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02T15:04Z07:00",
	}
	naiveLayouts = []string{
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006-01-02",
	}
)

// ParseDateTime parses an ISO-8601 date or date-time string.
func ParseDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty timestamp", ErrInvalidArgument)
	}
	for _, layout := range offsetLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, Naive); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q is not an ISO-8601 timestamp", ErrInvalidArgument, s)
}

// ParseDate parses an ISO-8601 date. A time component is accepted and
// dropped, so only the civil date survives.
func ParseDate(s string) (time.Time, error) {
	t, err := ParseDateTime(s)
	if err != nil {
		return time.Time{}, err
	}
	return civilDate(t), nil
}

// IsNaive reports whether t was parsed from a timestamp without an offset.
func IsNaive(t time.Time) bool {
	return t.Location() == Naive
}

func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func sameCivilDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// overlaps is the strict half-open interval test: [aStart,aEnd) and
// [bStart,bEnd) intersect iff aStart < bEnd && bStart < aEnd.
func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
