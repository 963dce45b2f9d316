// Package filter evaluates conjunctive predicates over calendar events.
package filter

import (
	"iter"
	"slices"
	"strings"

	"github.com/example/study-planner/internal/event"
	"github.com/example/study-planner/internal/interval"
	"github.com/example/study-planner/internal/validation"
)

// Filter is a conjunction of conditions. Every condition must pass for an
// event to match.
type Filter struct {
	// Kinds restricts event kinds; empty matches every kind.
	Kinds map[event.Kind]struct{}
	// CourseIDs restricts courses; empty matches every course.
	CourseIDs map[string]struct{}
	// Statuses restricts statuses. A nil set matches every status while a
	// non-nil empty set matches nothing.
	Statuses map[event.Status]struct{}
	// Query is a case-insensitive substring searched in title, description
	// and course name.
	Query string

	RequireFavorite bool
	RequireSaved    bool
	// Overlay supplies the favorite and saved flags.
	Overlay event.Overlay

	// Range, when set, keeps only events overlapping it.
	Range *interval.Interval
}

// Default returns the filter most views start from: active and pending events.
func Default() Filter {
	return Filter{
		Statuses: map[event.Status]struct{}{
			event.StatusActive:  {},
			event.StatusPending: {},
		},
	}
}

// Matches reports whether e passes every condition of f.
func Matches(e event.CalendarEvent, f Filter) bool {
	if len(f.Kinds) > 0 {
		if _, ok := f.Kinds[e.Kind]; !ok {
			return false
		}
	}
	if len(f.CourseIDs) > 0 {
		if _, ok := f.CourseIDs[e.CourseID]; !ok {
			return false
		}
	}
	if f.Statuses != nil {
		if _, ok := f.Statuses[e.Status]; !ok {
			return false
		}
	}
	if !matchesQuery(e, f.Query) {
		return false
	}
	if f.RequireFavorite && !f.Overlay.Has(e.ID, event.FlagFavorite) {
		return false
	}
	if f.RequireSaved && !f.Overlay.Has(e.ID, event.FlagSaved) {
		return false
	}
	if f.Range != nil && !inRange(e, *f.Range) {
		return false
	}
	return true
}

func matchesQuery(e event.CalendarEvent, query string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	for _, field := range []string{e.Title, e.Description, e.CourseName} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

// inRange keeps overlapping events, plus instantaneous ones inside the range.
func inRange(e event.CalendarEvent, rng interval.Interval) bool {
	iv := e.Interval()
	if iv.IsEmpty() {
		return interval.Contains(rng, iv.Start)
	}
	return interval.Overlaps(iv, rng)
}

// Events lazily yields the events matching f in input order. The sequence can
// be ranged over any number of times; each pass re-reads events.
func Events(events []event.CalendarEvent, f Filter) iter.Seq[event.CalendarEvent] {
	return func(yield func(event.CalendarEvent) bool) {
		for _, e := range events {
			if !Matches(e, f) {
				continue
			}
			if !yield(e) {
				return
			}
		}
	}
}

// Collect drains seq into a slice.
func Collect(seq iter.Seq[event.CalendarEvent]) []event.CalendarEvent {
	return slices.Collect(seq)
}

// Count returns how many events seq yields.
func Count(seq iter.Seq[event.CalendarEvent]) int {
	n := 0
	for range seq {
		n++
	}
	return n
}

// Validate rejects kinds and statuses outside the known enumerations and
// inverted ranges.
func (f Filter) Validate() error {
	vErr := &validation.Error{}
	for k := range f.Kinds {
		if !slices.Contains(event.Kinds(), k) {
			vErr.Add("kinds", "unknown kind "+quote(string(k)))
		}
	}
	for s := range f.Statuses {
		if !slices.Contains(event.Statuses(), s) {
			vErr.Add("statuses", "unknown status "+quote(string(s)))
		}
	}
	if f.Range != nil && f.Range.IsMalformed() {
		vErr.Add("range", "end must not precede start")
	}
	return vErr.OrNil()
}

func quote(s string) string {
	return `"` + s + `"`
}
