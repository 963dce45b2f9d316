// Package interval implements half-open time interval arithmetic.
//
// Every interval is [Start, End): it contains Start and excludes End, so two
// intervals that only share an endpoint never overlap.
package interval

import "time"

// Interval is a half-open time range.
type Interval struct {
	Start time.Time
	End   time.Time
}

// New constructs an Interval without validating the bounds.
func New(start, end time.Time) Interval {
	return Interval{Start: start, End: end}
}

// IsEmpty reports whether the interval covers no time at all.
func (i Interval) IsEmpty() bool {
	return !i.Start.Before(i.End)
}

// IsMalformed reports whether End precedes Start.
func (i Interval) IsMalformed() bool {
	return i.End.Before(i.Start)
}

// Duration returns End-Start.
func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// Overlaps reports whether a and b share at least one instant.
func Overlaps(a, b Interval) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// DurationMinutes returns the whole minutes between Start and End, truncated
// toward zero.
func DurationMinutes(i Interval) int {
	return int(i.Duration() / time.Minute)
}

// Contains reports whether t falls inside i.
func Contains(i Interval, t time.Time) bool {
	return !t.Before(i.Start) && t.Before(i.End)
}

// Covers reports whether inner lies entirely within outer.
func Covers(outer, inner Interval) bool {
	return !inner.Start.Before(outer.Start) && !inner.End.After(outer.End)
}

// Clip returns the intersection of i and bounds. The boolean is false when the
// intersection is empty.
func Clip(i, bounds Interval) (Interval, bool) {
	start := i.Start
	if bounds.Start.After(start) {
		start = bounds.Start
	}
	end := i.End
	if bounds.End.Before(end) {
		end = bounds.End
	}
	if !start.Before(end) {
		return Interval{}, false
	}
	return Interval{Start: start, End: end}, true
}

// StartOfDay returns midnight of the calendar day containing t, in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// FullDay returns [midnight, next midnight) for the day containing t. On
// DST transition days the interval is 23 or 25 hours long.
func FullDay(t time.Time) Interval {
	start := StartOfDay(t)
	return Interval{Start: start, End: start.AddDate(0, 0, 1)}
}
