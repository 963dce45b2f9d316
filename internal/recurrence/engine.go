// Package recurrence expands weekly course meetings into dated class sessions.
package recurrence

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/example/study-planner/internal/interval"
	"github.com/example/study-planner/internal/normalize"
)

// Meeting describes a course's repeating weekly meeting pattern.
type Meeting struct {
	CourseID    string
	CourseName  string
	Location    string
	SessionType string
	Weekdays    []time.Weekday
	// Start and End are "HH:MM" times of day.
	Start    string
	End      string
	StartsOn time.Time
	EndsOn   *time.Time
}

// Engine expands meetings in a fixed location.
type Engine struct {
	location *time.Location
}

// NewEngine constructs an Engine that resolves dates in loc. If loc is nil,
// UTC is used.
func NewEngine(loc *time.Location) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{location: loc}
}

// ErrNoWeekdays indicates a meeting without any weekday selected.
var ErrNoWeekdays = errors.New("recurrence: meeting has no weekdays")

// ErrInvalidWindow indicates the expansion range ends before it starts.
var ErrInvalidWindow = errors.New("recurrence: range end precedes range start")

// Expand lists the sessions of m whose date falls in rng, bounded by the
// meeting's own StartsOn/EndsOn. Sessions are returned in chronological order.
//
// The meeting's clock strings are checked up front so a broken meeting fails
// once instead of producing sessions that every normalization would reject.
func (e *Engine) Expand(m Meeting, rng interval.Interval) ([]normalize.ClassSession, error) {
	if rng.IsMalformed() {
		return nil, ErrInvalidWindow
	}
	if len(m.Weekdays) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoWeekdays, m.CourseName)
	}
	if _, _, err := normalize.ParseClock(m.Start); err != nil {
		return nil, fmt.Errorf("meeting %s start: %w", m.CourseName, err)
	}
	if _, _, err := normalize.ParseClock(m.End); err != nil {
		return nil, fmt.Errorf("meeting %s end: %w", m.CourseName, err)
	}

	loc := e.location
	if loc == nil {
		loc = time.UTC
	}

	dtStart := dateIn(m.StartsOn, loc)
	if m.StartsOn.IsZero() {
		dtStart = dateIn(rng.Start, loc)
	}
	opts := rrule.ROption{
		Freq:      rrule.WEEKLY,
		Dtstart:   dtStart,
		Byweekday: toRRuleWeekdays(m.Weekdays),
	}
	if m.EndsOn != nil {
		opts.Until = dateIn(*m.EndsOn, loc)
	}
	rule, err := rrule.NewRRule(opts)
	if err != nil {
		return nil, fmt.Errorf("recurrence: build rule for %s: %w", m.CourseName, err)
	}

	lower := dateIn(rng.Start, loc)
	upper := rng.End.In(loc)
	dates := rule.Between(lower, upper, true)

	sessions := make([]normalize.ClassSession, 0, len(dates))
	for _, date := range dates {
		if !date.Before(upper) {
			continue
		}
		sessions = append(sessions, normalize.ClassSession{
			CourseID:    m.CourseID,
			CourseName:  m.CourseName,
			Location:    m.Location,
			SessionType: m.SessionType,
			Date:        date,
			Start:       m.Start,
			End:         m.End,
		})
	}
	return sessions, nil
}

func dateIn(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func toRRuleWeekdays(days []time.Weekday) []rrule.Weekday {
	out := make([]rrule.Weekday, 0, len(days))
	for _, day := range days {
		switch day {
		case time.Monday:
			out = append(out, rrule.MO)
		case time.Tuesday:
			out = append(out, rrule.TU)
		case time.Wednesday:
			out = append(out, rrule.WE)
		case time.Thursday:
			out = append(out, rrule.TH)
		case time.Friday:
			out = append(out, rrule.FR)
		case time.Saturday:
			out = append(out, rrule.SA)
		case time.Sunday:
			out = append(out, rrule.SU)
		}
	}
	return out
}

// ParseWeekday resolves an English weekday name or its three-letter prefix.
func ParseWeekday(value string) (time.Weekday, bool) {
	value = strings.ToLower(strings.TrimSpace(value))
	if len(value) < 3 {
		return time.Sunday, false
	}
	for day := time.Sunday; day <= time.Saturday; day++ {
		name := strings.ToLower(day.String())
		if value == name || value == name[:3] {
			return day, true
		}
	}
	return time.Sunday, false
}
