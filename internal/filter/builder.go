package filter

import (
	"strings"

	"github.com/example/study-planner/internal/event"
	"github.com/example/study-planner/internal/interval"
	"github.com/example/study-planner/internal/validation"
)

// Option adjusts a filter under construction.
type Option func(*Filter)

// New starts from Default and applies opts in order.
func New(opts ...Option) Filter {
	f := Default()
	for _, opt := range opts {
		opt(&f)
	}
	return f
}

// WithKinds restricts the filter to the given kinds.
func WithKinds(kinds ...event.Kind) Option {
	return func(f *Filter) {
		f.Kinds = setOf(kinds)
	}
}

// WithCourses restricts the filter to the given course ids.
func WithCourses(ids ...string) Option {
	return func(f *Filter) {
		f.CourseIDs = setOf(ids)
	}
}

// WithStatuses replaces the status set. Calling it with no statuses yields a
// filter that matches nothing.
func WithStatuses(statuses ...event.Status) Option {
	return func(f *Filter) {
		f.Statuses = make(map[event.Status]struct{}, len(statuses))
		for _, s := range statuses {
			f.Statuses[s] = struct{}{}
		}
	}
}

// AnyStatus lifts the status restriction.
func AnyStatus() Option {
	return func(f *Filter) {
		f.Statuses = nil
	}
}

// WithQuery sets the free-text search.
func WithQuery(q string) Option {
	return func(f *Filter) {
		f.Query = q
	}
}

// RequireFavorite keeps only events flagged favorite in the overlay.
func RequireFavorite() Option {
	return func(f *Filter) {
		f.RequireFavorite = true
	}
}

// RequireSaved keeps only events flagged saved in the overlay.
func RequireSaved() Option {
	return func(f *Filter) {
		f.RequireSaved = true
	}
}

// WithOverlay sets the flag overlay consulted by the flag conditions.
func WithOverlay(o event.Overlay) Option {
	return func(f *Filter) {
		f.Overlay = o
	}
}

// Within keeps only events overlapping rng.
func Within(rng interval.Interval) Option {
	return func(f *Filter) {
		f.Range = &rng
	}
}

func setOf[T comparable](values []T) map[T]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[T]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// Params is the string form of a filter as it arrives from query strings or
// command line flags.
type Params struct {
	Kinds    []string
	Courses  []string
	Statuses []string
	Query    string
	Favorite bool
	Saved    bool
}

// Build parses p into a filter. Statuses default to active and pending; the
// single status "all" lifts the restriction.
func (p Params) Build(overlay event.Overlay) (Filter, error) {
	vErr := &validation.Error{}
	opts := []Option{WithOverlay(overlay), WithQuery(p.Query), WithCourses(splitAll(p.Courses)...)}

	if kinds := splitAll(p.Kinds); len(kinds) > 0 {
		parsed := make([]event.Kind, 0, len(kinds))
		for _, raw := range kinds {
			k, ok := event.ParseKind(raw)
			if !ok {
				vErr.Add("kind", "unknown kind "+quote(raw))
				continue
			}
			parsed = append(parsed, k)
		}
		opts = append(opts, WithKinds(parsed...))
	}

	if statuses := splitAll(p.Statuses); len(statuses) == 1 && strings.EqualFold(statuses[0], "all") {
		opts = append(opts, AnyStatus())
	} else if len(statuses) > 0 {
		parsed := make([]event.Status, 0, len(statuses))
		for _, raw := range statuses {
			s, ok := event.ParseStatus(raw)
			if !ok {
				vErr.Add("status", "unknown status "+quote(raw))
				continue
			}
			parsed = append(parsed, s)
		}
		opts = append(opts, WithStatuses(parsed...))
	}

	if p.Favorite {
		opts = append(opts, RequireFavorite())
	}
	if p.Saved {
		opts = append(opts, RequireSaved())
	}
	if vErr.HasErrors() {
		return Filter{}, vErr
	}
	return New(opts...), nil
}

// splitAll flattens comma separated values and drops blanks.
func splitAll(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
