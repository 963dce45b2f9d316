// Package event defines the canonical calendar event consumed by the
// schedule engine, together with the enumerations it carries.
package event

import (
	"slices"
	"strings"
	"time"

	"github.com/example/study-planner/internal/interval"
)

// Kind classifies an event.
type Kind string

const (
	KindClassSession Kind = "class-session"
	KindAssignment   Kind = "assignment"
	KindExam         Kind = "exam"
	KindMeeting      Kind = "meeting"
	KindStudy        Kind = "study"
	KindHoliday      Kind = "holiday"
	KindPersonal     Kind = "personal"
	KindOther        Kind = "other"
)

// Kinds lists every kind in declaration order.
func Kinds() []Kind {
	return []Kind{KindClassSession, KindAssignment, KindExam, KindMeeting, KindStudy, KindHoliday, KindPersonal, KindOther}
}

// ParseKind resolves a kind name. Matching is case-insensitive and accepts
// underscores in place of dashes.
func ParseKind(value string) (Kind, bool) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(value)), "_", "-")
	for _, k := range Kinds() {
		if string(k) == normalized {
			return k, true
		}
	}
	return "", false
}

// Status is the lifecycle state of an event.
type Status string

const (
	StatusActive    Status = "active"
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Statuses lists every status in declaration order.
func Statuses() []Status {
	return []Status{StatusActive, StatusPending, StatusCompleted, StatusCancelled}
}

// ParseStatus resolves a status name case-insensitively. "canceled" is
// accepted as an alias.
func ParseStatus(value string) (Status, bool) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "canceled" {
		return StatusCancelled, true
	}
	for _, s := range Statuses() {
		if string(s) == normalized {
			return s, true
		}
	}
	return "", false
}

// CalendarEvent is the canonical, normalized representation of any activity
// the planner knows about. Values are never mutated by engine operations;
// use Clone before changing slices or maps of an event you do not own.
type CalendarEvent struct {
	ID          string
	Title       string
	Description string
	Location    string

	Start time.Time
	End   time.Time

	Kind       Kind
	CourseID   string
	CourseName string
	AllDay     bool

	Priority Priority
	Status   Status

	// Weight is the share of the final grade in [0,1]; zero for ungraded items.
	Weight float64

	Tags     []string
	Metadata map[string]string
}

// Interval returns the raw [Start, End) range of the event.
func (e CalendarEvent) Interval() interval.Interval {
	return interval.New(e.Start, e.End)
}

// Due returns the instant the event is due, which is its end.
func (e CalendarEvent) Due() time.Time {
	return e.End
}

// HasTag reports whether the event carries tag.
func (e CalendarEvent) HasTag(tag string) bool {
	return slices.Contains(e.Tags, tag)
}

// Clone returns a deep copy of the event.
func (e CalendarEvent) Clone() CalendarEvent {
	out := e
	if e.Tags != nil {
		out.Tags = slices.Clone(e.Tags)
	}
	if e.Metadata != nil {
		out.Metadata = make(map[string]string, len(e.Metadata))
		for k, v := range e.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}

// NormalizeTags returns tags trimmed, de-duplicated and sorted. Empty tags are dropped.
func NormalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		out = append(out, tag)
	}
	slices.Sort(out)
	out = slices.Compact(out)
	if len(out) == 0 {
		return nil
	}
	return out
}
