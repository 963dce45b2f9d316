// Package normalize converts heterogeneous academic source records into the
// canonical event.CalendarEvent shape.
//
// Records are a tagged variant: Record.Kind selects which payload pointer is
// populated, and each kind has its own normalization rule. Normalization is a
// pure function of the record; it never reads the clock.
package normalize

import "time"

// RecordKind is the closed set of source record variants.
type RecordKind int

const (
	RecordUnknown RecordKind = iota
	RecordAssignment
	RecordClassSession
	RecordHoliday
	RecordItem
)

// String implements fmt.Stringer.
func (k RecordKind) String() string {
	switch k {
	case RecordAssignment:
		return "assignment"
	case RecordClassSession:
		return "class_session"
	case RecordHoliday:
		return "holiday"
	case RecordItem:
		return "item"
	default:
		return "unknown"
	}
}

// Record wraps exactly one source payload.
type Record struct {
	Kind       RecordKind
	Assignment *Assignment
	Session    *ClassSession
	Holiday    *Holiday
	Item       *Item
}

// FromAssignment wraps an assignment record.
func FromAssignment(a Assignment) Record {
	return Record{Kind: RecordAssignment, Assignment: &a}
}

// FromSession wraps a class session record.
func FromSession(s ClassSession) Record {
	return Record{Kind: RecordClassSession, Session: &s}
}

// FromHoliday wraps a holiday record.
func FromHoliday(h Holiday) Record {
	return Record{Kind: RecordHoliday, Holiday: &h}
}

// FromItem wraps a generic item record.
func FromItem(i Item) Record {
	return Record{Kind: RecordItem, Item: &i}
}

// Assignment is a graded piece of work that only defines a due instant.
type Assignment struct {
	ID          string
	Title       string
	Description string
	CourseID    string
	CourseName  string
	// Type is one of assignment, exam, project, quiz, homework.
	Type      string
	Due       time.Time
	Weight    float64
	Status    string
	Completed bool
	Priority  string
}

// ClassSession is a single class meeting expressed as time-of-day strings on
// a reference date.
type ClassSession struct {
	CourseID    string
	CourseName  string
	Title       string
	Location    string
	SessionType string
	// Date supplies the calendar day and location Start/End are resolved in.
	Date  time.Time
	Start string
	End   string
}

// Holiday is a public holiday for a country.
type Holiday struct {
	// Date is formatted YYYY-MM-DD.
	Date        string
	LocalName   string
	Name        string
	CountryCode string
	// Location resolves Date into instants; UTC when nil.
	Location *time.Location
}

// Item is any other timed activity: meetings, study blocks, personal items.
type Item struct {
	ID          string
	Title       string
	Description string
	Location    string
	Type        string
	Start       time.Time
	End         time.Time
	// Due is used when Start and End are both zero.
	Due        time.Time
	AllDay     bool
	CourseID   string
	CourseName string
	Priority   string
	Status     string
	Weight     float64
	Tags       []string
	Metadata   map[string]string
}
