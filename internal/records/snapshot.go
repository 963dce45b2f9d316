// Package records reads planner snapshot files into raw source records.
//
// A snapshot is a YAML (or JSON) document listing assignments, dated class
// sessions, courses with weekly meetings, holidays and generic items. Values
// are carried as written; the normalizer decides whether a record is usable.
package records

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/example/study-planner/internal/event"
	"github.com/example/study-planner/internal/normalize"
	"github.com/example/study-planner/internal/recurrence"
)

// Snapshot is the on-disk document.
type Snapshot struct {
	Assignments []AssignmentDef `yaml:"assignments"`
	Sessions    []SessionDef    `yaml:"sessions"`
	Courses     []CourseDef     `yaml:"courses"`
	Holidays    []HolidayDef    `yaml:"holidays"`
	Items       []ItemDef       `yaml:"items"`
	// Flags maps canonical event ids to user flags: favorite, saved, registered.
	Flags map[string][]string `yaml:"flags,omitempty"`
}

type AssignmentDef struct {
	ID          string  `yaml:"id"`
	Title       string  `yaml:"title"`
	Description string  `yaml:"description,omitempty"`
	CourseID    string  `yaml:"course_id"`
	CourseName  string  `yaml:"course_name"`
	Type        string  `yaml:"type"`
	Due         string  `yaml:"due"`
	Weight      float64 `yaml:"weight"`
	Status      string  `yaml:"status,omitempty"`
	Completed   bool    `yaml:"completed,omitempty"`
	Priority    string  `yaml:"priority,omitempty"`
}

type SessionDef struct {
	CourseID    string `yaml:"course_id"`
	CourseName  string `yaml:"course_name"`
	Title       string `yaml:"title,omitempty"`
	Location    string `yaml:"location,omitempty"`
	SessionType string `yaml:"session_type,omitempty"`
	Date        string `yaml:"date"`
	Start       string `yaml:"start"`
	End         string `yaml:"end"`
}

type CourseDef struct {
	ID       string       `yaml:"id"`
	Name     string       `yaml:"name"`
	Location string       `yaml:"location,omitempty"`
	Meetings []MeetingDef `yaml:"meetings"`
}

type MeetingDef struct {
	Days     []string `yaml:"days"`
	Start    string   `yaml:"start"`
	End      string   `yaml:"end"`
	Location string   `yaml:"location,omitempty"`
	Type     string   `yaml:"type,omitempty"`
	StartsOn string   `yaml:"starts_on,omitempty"`
	EndsOn   string   `yaml:"ends_on,omitempty"`
}

type HolidayDef struct {
	Date        string `yaml:"date"`
	LocalName   string `yaml:"local_name"`
	Name        string `yaml:"name"`
	CountryCode string `yaml:"country_code"`
}

type ItemDef struct {
	ID          string            `yaml:"id,omitempty"`
	Title       string            `yaml:"title"`
	Description string            `yaml:"description,omitempty"`
	Location    string            `yaml:"location,omitempty"`
	Type        string            `yaml:"type,omitempty"`
	Start       string            `yaml:"start,omitempty"`
	End         string            `yaml:"end,omitempty"`
	Due         string            `yaml:"due,omitempty"`
	AllDay      bool              `yaml:"all_day,omitempty"`
	CourseID    string            `yaml:"course_id,omitempty"`
	CourseName  string            `yaml:"course_name,omitempty"`
	Priority    string            `yaml:"priority,omitempty"`
	Status      string            `yaml:"status,omitempty"`
	Weight      float64           `yaml:"weight,omitempty"`
	Tags        []string          `yaml:"tags,omitempty"`
	Metadata    map[string]string `yaml:"metadata,omitempty"`
}

// Decode parses a snapshot document. JSON documents are accepted as YAML.
func Decode(data []byte) (Snapshot, error) {
	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("records: decode snapshot: %w", err)
	}
	return snap, nil
}

var instantLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	time.DateOnly,
}

// ParseInstant parses an RFC 3339 timestamp, or a local date-time or date in
// loc. Empty input yields the zero time.
func ParseInstant(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range instantLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("records: unrecognized timestamp %q", value)
}

// Converted is the result of turning a snapshot into records.
type Converted struct {
	Records  []normalize.Record
	Meetings []recurrence.Meeting
	// Problems lists entries that could not be converted, e.g. unparsable
	// timestamps or unknown weekdays. Each dropped entry appears once.
	Problems []error
}

// Convert maps snapshot entries onto normalizer records, resolving local
// timestamps in loc. Course meetings are returned for expansion rather than
// as records since they need a date range.
func (s Snapshot) Convert(loc *time.Location) Converted {
	if loc == nil {
		loc = time.UTC
	}
	var out Converted

	for i, a := range s.Assignments {
		due, err := ParseInstant(a.Due, loc)
		if err != nil {
			out.Problems = append(out.Problems, fmt.Errorf("assignments[%d] %s: %w", i, a.ID, err))
			continue
		}
		out.Records = append(out.Records, normalize.FromAssignment(normalize.Assignment{
			ID:          a.ID,
			Title:       a.Title,
			Description: a.Description,
			CourseID:    a.CourseID,
			CourseName:  a.CourseName,
			Type:        a.Type,
			Due:         due,
			Weight:      a.Weight,
			Status:      a.Status,
			Completed:   a.Completed,
			Priority:    a.Priority,
		}))
	}

	for i, sess := range s.Sessions {
		date, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(sess.Date), loc)
		if err != nil {
			out.Problems = append(out.Problems, fmt.Errorf("sessions[%d] %s: date %q: %w", i, sess.CourseName, sess.Date, err))
			continue
		}
		out.Records = append(out.Records, normalize.FromSession(normalize.ClassSession{
			CourseID:    sess.CourseID,
			CourseName:  sess.CourseName,
			Title:       sess.Title,
			Location:    sess.Location,
			SessionType: sess.SessionType,
			Date:        date,
			Start:       sess.Start,
			End:         sess.End,
		}))
	}

	for i, c := range s.Courses {
		for j, m := range c.Meetings {
			meeting, err := m.toMeeting(c, loc)
			if err != nil {
				out.Problems = append(out.Problems, fmt.Errorf("courses[%d].meetings[%d] %s: %w", i, j, c.Name, err))
				continue
			}
			out.Meetings = append(out.Meetings, meeting)
		}
	}

	for _, h := range s.Holidays {
		out.Records = append(out.Records, normalize.FromHoliday(normalize.Holiday{
			Date:        h.Date,
			LocalName:   h.LocalName,
			Name:        h.Name,
			CountryCode: h.CountryCode,
			Location:    loc,
		}))
	}

	for i, it := range s.Items {
		item, err := it.toItem(loc)
		if err != nil {
			out.Problems = append(out.Problems, fmt.Errorf("items[%d] %s: %w", i, it.Title, err))
			continue
		}
		out.Records = append(out.Records, normalize.FromItem(item))
	}
	return out
}

func (m MeetingDef) toMeeting(c CourseDef, loc *time.Location) (recurrence.Meeting, error) {
	meeting := recurrence.Meeting{
		CourseID:    c.ID,
		CourseName:  c.Name,
		Location:    m.Location,
		SessionType: m.Type,
		Start:       m.Start,
		End:         m.End,
	}
	if meeting.Location == "" {
		meeting.Location = c.Location
	}
	for _, raw := range m.Days {
		day, ok := recurrence.ParseWeekday(raw)
		if !ok {
			return recurrence.Meeting{}, fmt.Errorf("unknown weekday %q", raw)
		}
		meeting.Weekdays = append(meeting.Weekdays, day)
	}
	startsOn, err := ParseInstant(m.StartsOn, loc)
	if err != nil {
		return recurrence.Meeting{}, err
	}
	meeting.StartsOn = startsOn
	if m.EndsOn != "" {
		endsOn, err := ParseInstant(m.EndsOn, loc)
		if err != nil {
			return recurrence.Meeting{}, err
		}
		meeting.EndsOn = &endsOn
	}
	return meeting, nil
}

func (it ItemDef) toItem(loc *time.Location) (normalize.Item, error) {
	start, err := ParseInstant(it.Start, loc)
	if err != nil {
		return normalize.Item{}, err
	}
	end, err := ParseInstant(it.End, loc)
	if err != nil {
		return normalize.Item{}, err
	}
	due, err := ParseInstant(it.Due, loc)
	if err != nil {
		return normalize.Item{}, err
	}
	return normalize.Item{
		ID:          it.ID,
		Title:       it.Title,
		Description: it.Description,
		Location:    it.Location,
		Type:        it.Type,
		Start:       start,
		End:         end,
		Due:         due,
		AllDay:      it.AllDay,
		CourseID:    it.CourseID,
		CourseName:  it.CourseName,
		Priority:    it.Priority,
		Status:      it.Status,
		Weight:      it.Weight,
		Tags:        it.Tags,
		Metadata:    it.Metadata,
	}, nil
}

// Overlay builds the flag overlay. Unknown flag names are reported and
// ignored.
func (s Snapshot) Overlay() (event.Overlay, []error) {
	var problems []error
	sets := make(map[string]event.FlagSet, len(s.Flags))
	for id, names := range s.Flags {
		for _, name := range names {
			f, ok := parseFlag(name)
			if !ok {
				problems = append(problems, fmt.Errorf("flags %s: unknown flag %q", id, name))
				continue
			}
			sets[id] |= event.FlagSet(f)
		}
	}
	return event.NewOverlay(sets), problems
}

func parseFlag(name string) (event.Flag, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "favorite", "favourite":
		return event.FlagFavorite, true
	case "saved":
		return event.FlagSaved, true
	case "registered":
		return event.FlagRegistered, true
	}
	return 0, false
}
