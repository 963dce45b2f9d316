package normalize

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/study-planner/internal/event"
)

var (
	// ErrInvalidClock is returned for a malformed "HH:MM" string.
	ErrInvalidClock = errors.New("normalize: invalid time of day")
	// ErrMissingField is returned when a required field is absent.
	ErrMissingField = errors.New("normalize: missing required field")
	// ErrInvalidInterval is returned when a record ends before it starts.
	ErrInvalidInterval = errors.New("normalize: end precedes start")
	// ErrInvalidDate is returned for a calendar date that does not parse.
	ErrInvalidDate = errors.New("normalize: invalid date")
	// ErrUnknownRecord is returned for a record whose kind and payload disagree.
	ErrUnknownRecord = errors.New("normalize: unknown record kind")
)

// LeadWindow is the synthetic duration placed before a due-only instant.
const LeadWindow = time.Hour

// itemNamespace seeds deterministic ids for items without a natural key.
var itemNamespace = uuid.MustParse("5b8f3c1e-7d2a-4e61-9a0c-2f4d6b8e1a37")

// Normalize converts rec into a canonical event. The boolean is false when the
// record's temporal fields cannot be resolved; callers drop such records.
func Normalize(rec Record) (event.CalendarEvent, bool) {
	ev, err := Explain(rec)
	return ev, err == nil
}

// Explain applies the same rules as Normalize and reports why a record was
// rejected.
func Explain(rec Record) (event.CalendarEvent, error) {
	switch rec.Kind {
	case RecordAssignment:
		if rec.Assignment != nil {
			return fromAssignment(*rec.Assignment)
		}
	case RecordClassSession:
		if rec.Session != nil {
			return fromSession(*rec.Session)
		}
	case RecordHoliday:
		if rec.Holiday != nil {
			return fromHoliday(*rec.Holiday)
		}
	case RecordItem:
		if rec.Item != nil {
			return fromItem(*rec.Item)
		}
	}
	return event.CalendarEvent{}, fmt.Errorf("%w: %s", ErrUnknownRecord, rec.Kind)
}

// Skipped describes a record dropped during batch normalization.
type Skipped struct {
	Index int
	Kind  RecordKind
	Err   error
}

// Batch is the outcome of NormalizeAll.
type Batch struct {
	Events  []event.CalendarEvent
	Skipped []Skipped
}

// NormalizeAll normalizes every record, skipping the ones that fail. The
// batch never aborts; input order is preserved in Events.
func NormalizeAll(recs []Record) Batch {
	batch := Batch{Events: make([]event.CalendarEvent, 0, len(recs))}
	for i, rec := range recs {
		ev, err := Explain(rec)
		if err != nil {
			batch.Skipped = append(batch.Skipped, Skipped{Index: i, Kind: rec.Kind, Err: err})
			continue
		}
		batch.Events = append(batch.Events, ev)
	}
	return batch
}

func fromAssignment(a Assignment) (event.CalendarEvent, error) {
	if strings.TrimSpace(a.ID) == "" {
		return event.CalendarEvent{}, fmt.Errorf("%w: assignment id", ErrMissingField)
	}
	if a.Due.IsZero() {
		return event.CalendarEvent{}, fmt.Errorf("%w: assignment %s due date", ErrMissingField, a.ID)
	}

	assignmentType := strings.ToLower(strings.TrimSpace(a.Type))
	if assignmentType == "" {
		assignmentType = "assignment"
	}
	kind := event.KindAssignment
	if assignmentType == "exam" {
		kind = event.KindExam
	}

	status := event.StatusPending
	if parsed, ok := event.ParseStatus(a.Status); ok {
		status = parsed
	}
	if a.Completed {
		status = event.StatusCompleted
	}

	priority, ok := event.ParsePriority(a.Priority)
	if !ok {
		priority = priorityForWeight(a.Weight)
	}

	weight := clampWeight(a.Weight)
	return event.CalendarEvent{
		ID:          "assignment_" + a.ID,
		Title:       a.Title,
		Description: a.Description,
		Start:       a.Due.Add(-LeadWindow),
		End:         a.Due,
		Kind:        kind,
		CourseID:    a.CourseID,
		CourseName:  a.CourseName,
		Priority:    priority,
		Status:      status,
		Weight:      weight,
		Tags:        []string{assignmentType},
		Metadata: map[string]string{
			"weight":          strconv.FormatFloat(a.Weight, 'f', -1, 64),
			"assignment_type": assignmentType,
		},
	}, nil
}

func fromSession(s ClassSession) (event.CalendarEvent, error) {
	if s.Date.IsZero() {
		return event.CalendarEvent{}, fmt.Errorf("%w: session reference date", ErrMissingField)
	}
	start, err := AtClock(s.Date, s.Start)
	if err != nil {
		return event.CalendarEvent{}, fmt.Errorf("session start: %w", err)
	}
	end, err := AtClock(s.Date, s.End)
	if err != nil {
		return event.CalendarEvent{}, fmt.Errorf("session end: %w", err)
	}
	if end.Before(start) {
		return event.CalendarEvent{}, fmt.Errorf("%w: session %s %s-%s", ErrInvalidInterval, s.CourseName, s.Start, s.End)
	}

	title := strings.TrimSpace(s.Title)
	if title == "" {
		title = s.CourseName
	}
	var metadata map[string]string
	var tags []string
	if s.SessionType != "" {
		metadata = map[string]string{"session_type": s.SessionType}
		tags = []string{strings.ToLower(s.SessionType)}
	}

	return event.CalendarEvent{
		ID:         fmt.Sprintf("session_%d_%s", start.Unix(), s.CourseName),
		Title:      title,
		Location:   s.Location,
		Start:      start,
		End:        end,
		Kind:       event.KindClassSession,
		CourseID:   s.CourseID,
		CourseName: s.CourseName,
		Priority:   event.PriorityMedium,
		Status:     event.StatusActive,
		Tags:       tags,
		Metadata:   metadata,
	}, nil
}

func fromHoliday(h Holiday) (event.CalendarEvent, error) {
	loc := h.Location
	if loc == nil {
		loc = time.UTC
	}
	date, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(h.Date), loc)
	if err != nil {
		return event.CalendarEvent{}, fmt.Errorf("%w: holiday date %q", ErrInvalidDate, h.Date)
	}

	title := h.LocalName
	if title == "" {
		title = h.Name
	}
	metadata := map[string]string{"country_code": h.CountryCode}
	if h.Name != "" {
		metadata["name"] = h.Name
	}

	return event.CalendarEvent{
		ID:       fmt.Sprintf("holiday_%s-%s-%s", h.CountryCode, date.Format(time.DateOnly), h.LocalName),
		Title:    title,
		Start:    date,
		End:      date.AddDate(0, 0, 1),
		Kind:     event.KindHoliday,
		AllDay:   true,
		Priority: event.PriorityLow,
		Status:   event.StatusActive,
		Tags:     []string{"holiday"},
		Metadata: metadata,
	}, nil
}

func fromItem(it Item) (event.CalendarEvent, error) {
	start, end := it.Start, it.End
	switch {
	case start.IsZero() && end.IsZero():
		if it.Due.IsZero() {
			return event.CalendarEvent{}, fmt.Errorf("%w: item %q has no start, end or due", ErrMissingField, it.Title)
		}
		start, end = it.Due.Add(-LeadWindow), it.Due
	case start.IsZero():
		return event.CalendarEvent{}, fmt.Errorf("%w: item %q start", ErrMissingField, it.Title)
	case end.IsZero():
		if !it.AllDay {
			return event.CalendarEvent{}, fmt.Errorf("%w: item %q end", ErrMissingField, it.Title)
		}
		start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
		end = start.AddDate(0, 0, 1)
	}
	if end.Before(start) {
		return event.CalendarEvent{}, fmt.Errorf("%w: item %q", ErrInvalidInterval, it.Title)
	}

	kind, ok := event.ParseKind(it.Type)
	if !ok {
		kind = event.KindOther
	}
	status, ok := event.ParseStatus(it.Status)
	if !ok {
		status = event.StatusActive
	}
	priority, ok := event.ParsePriority(it.Priority)
	if !ok {
		priority = event.PriorityMedium
	}

	id := strings.TrimSpace(it.ID)
	if id == "" {
		key := it.Title + "|" + start.UTC().Format(time.RFC3339Nano) + "|" + end.UTC().Format(time.RFC3339Nano)
		id = uuid.NewSHA1(itemNamespace, []byte(key)).String()
	}

	var metadata map[string]string
	if len(it.Metadata) > 0 {
		metadata = make(map[string]string, len(it.Metadata))
		for k, v := range it.Metadata {
			metadata[k] = v
		}
	}

	return event.CalendarEvent{
		ID:          "item_" + id,
		Title:       it.Title,
		Description: it.Description,
		Location:    it.Location,
		Start:       start,
		End:         end,
		Kind:        kind,
		CourseID:    it.CourseID,
		CourseName:  it.CourseName,
		AllDay:      it.AllDay,
		Priority:    priority,
		Status:      status,
		Weight:      clampWeight(it.Weight),
		Tags:        event.NormalizeTags(it.Tags),
		Metadata:    metadata,
	}, nil
}

func priorityForWeight(weight float64) event.Priority {
	switch {
	case weight >= 0.3:
		return event.PriorityHigh
	case weight >= 0.15:
		return event.PriorityMedium
	default:
		return event.PriorityLow
	}
}

func clampWeight(weight float64) float64 {
	switch {
	case weight < 0:
		return 0
	case weight > 1:
		return 1
	default:
		return weight
	}
}
