package http

import (
	"time"

	"github.com/example/study-planner/internal/application"
	"github.com/example/study-planner/internal/event"
	"github.com/example/study-planner/internal/priority"
	"github.com/example/study-planner/internal/scheduler"
)

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

type eventDTO struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Location    string            `json:"location,omitempty"`
	Start       string            `json:"start"`
	End         string            `json:"end"`
	Kind        event.Kind        `json:"kind"`
	CourseID    string            `json:"course_id,omitempty"`
	CourseName  string            `json:"course_name,omitempty"`
	AllDay      bool              `json:"all_day"`
	Priority    event.Priority    `json:"priority"`
	Status      event.Status      `json:"status"`
	Weight      float64           `json:"weight"`
	Tags        []string          `json:"tags,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

func toEventDTO(ev event.CalendarEvent) eventDTO {
	return eventDTO{
		ID:          ev.ID,
		Title:       ev.Title,
		Description: ev.Description,
		Location:    ev.Location,
		Start:       formatTime(ev.Start),
		End:         formatTime(ev.End),
		Kind:        ev.Kind,
		CourseID:    ev.CourseID,
		CourseName:  ev.CourseName,
		AllDay:      ev.AllDay,
		Priority:    ev.Priority,
		Status:      ev.Status,
		Weight:      ev.Weight,
		Tags:        ev.Tags,
		Metadata:    ev.Metadata,
	}
}

func toEventDTOs(events []event.CalendarEvent) []eventDTO {
	out := make([]eventDTO, 0, len(events))
	for _, ev := range events {
		out = append(out, toEventDTO(ev))
	}
	return out
}

type slotDTO struct {
	Start    string   `json:"start"`
	End      string   `json:"end"`
	Minutes  int      `json:"minutes"`
	EventIDs []string `json:"event_ids,omitempty"`
}

func toSlotDTOs(slots []scheduler.TimeSlot) []slotDTO {
	out := make([]slotDTO, 0, len(slots))
	for _, slot := range slots {
		out = append(out, slotDTO{
			Start:    formatTime(slot.Start),
			End:      formatTime(slot.End),
			Minutes:  slot.Minutes(),
			EventIDs: slot.EventIDs(),
		})
	}
	return out
}

type conflictPairDTO struct {
	First  string `json:"first"`
	Second string `json:"second"`
}

type conflictDTO struct {
	Start    string            `json:"start"`
	End      string            `json:"end"`
	Type     string            `json:"type"`
	EventIDs []string          `json:"event_ids"`
	Pairs    []conflictPairDTO `json:"pairs"`
}

func toConflictDTOs(groups []scheduler.ConflictGroup) []conflictDTO {
	out := make([]conflictDTO, 0, len(groups))
	for _, g := range groups {
		pairs := make([]conflictPairDTO, 0, len(g.Pairs))
		for _, p := range g.Pairs {
			pairs = append(pairs, conflictPairDTO{First: p.FirstID, Second: p.SecondID})
		}
		out = append(out, conflictDTO{
			Start:    formatTime(g.Slot.Start),
			End:      formatTime(g.Slot.End),
			Type:     string(g.Type),
			EventIDs: g.Slot.EventIDs(),
			Pairs:    pairs,
		})
	}
	return out
}

type dayDTO struct {
	Date        string        `json:"date"`
	WindowStart string        `json:"window_start"`
	WindowEnd   string        `json:"window_end"`
	BusyMinutes int           `json:"busy_minutes"`
	FreeMinutes int           `json:"free_minutes"`
	Events      []eventDTO    `json:"events"`
	BusySlots   []slotDTO     `json:"busy_slots"`
	FreeSlots   []slotDTO     `json:"free_slots"`
	Conflicts   []conflictDTO `json:"conflicts"`
	Malformed   []string      `json:"malformed,omitempty"`
}

func toDayDTO(day scheduler.DaySchedule, conflicts []scheduler.ConflictGroup) dayDTO {
	return dayDTO{
		Date:        day.Date.Format(time.DateOnly),
		WindowStart: formatTime(day.Window.Start),
		WindowEnd:   formatTime(day.Window.End),
		BusyMinutes: day.BusyMinutes(),
		FreeMinutes: day.FreeMinutes(),
		Events:      toEventDTOs(day.Events),
		BusySlots:   toSlotDTOs(day.BusySlots),
		FreeSlots:   toSlotDTOs(day.FreeSlots),
		Conflicts:   toConflictDTOs(conflicts),
		Malformed:   day.Malformed,
	}
}

type dayRefDTO struct {
	Date        string `json:"date"`
	BusyMinutes int    `json:"busy_minutes"`
}

type weekSummaryDTO struct {
	WeekStart         string         `json:"week_start"`
	TotalEvents       int            `json:"total_events"`
	KindCounts        map[string]int `json:"kind_counts"`
	BusyHours         float64        `json:"busy_hours"`
	FreeHours         float64        `json:"free_hours"`
	ConflictingSlots  int            `json:"conflicting_slots"`
	UpcomingDeadlines int            `json:"upcoming_deadlines"`
	BusiestDay        dayRefDTO      `json:"busiest_day"`
	LeastBusyDay      dayRefDTO      `json:"least_busy_day"`
	AverageBusyHours  float64        `json:"average_busy_hours"`
	BusyHoursStdDev   float64        `json:"busy_hours_stddev"`
}

type weekDTO struct {
	Summary weekSummaryDTO `json:"summary"`
	Days    []dayDTO       `json:"days"`
}

func toWeekDTO(view application.WeekView) weekDTO {
	s := view.Summary
	kinds := make(map[string]int, len(s.KindCounts))
	for k, n := range s.KindCounts {
		kinds[string(k)] = n
	}
	days := make([]dayDTO, 0, len(view.Days))
	for _, day := range view.Days {
		days = append(days, toDayDTO(day, scheduler.DetectConflicts(day)))
	}
	return weekDTO{
		Summary: weekSummaryDTO{
			WeekStart:         s.WeekStart.Format(time.DateOnly),
			TotalEvents:       s.TotalEvents,
			KindCounts:        kinds,
			BusyHours:         s.BusyHours,
			FreeHours:         s.FreeHours,
			ConflictingSlots:  s.ConflictingSlots,
			UpcomingDeadlines: s.UpcomingDeadlines,
			BusiestDay:        dayRefDTO{Date: s.BusiestDay.Date.Format(time.DateOnly), BusyMinutes: s.BusiestDay.BusyMinutes},
			LeastBusyDay:      dayRefDTO{Date: s.LeastBusyDay.Date.Format(time.DateOnly), BusyMinutes: s.LeastBusyDay.BusyMinutes},
			AverageBusyHours:  s.AverageBusyHours,
			BusyHoursStdDev:   s.BusyHoursStdDev,
		},
		Days: days,
	}
}

type rankedDTO struct {
	Event        eventDTO `json:"event"`
	Score        float64  `json:"priority_score"`
	DaysUntilDue int      `json:"days_until_due"`
	Level        string   `json:"urgency_level"`
}

func toRankedDTO(r priority.Ranked) rankedDTO {
	return rankedDTO{
		Event:        toEventDTO(r.Event),
		Score:        r.Score,
		DaysUntilDue: r.DaysUntilDue,
		Level:        string(r.Level),
	}
}

type urgentDTO struct {
	AsOf            string     `json:"as_of"`
	HighestPriority *rankedDTO `json:"highest_priority_event"`
	TotalPending    int        `json:"total_pending"`
	AverageWeight   float64    `json:"average_weight"`
	CourseLoad      string     `json:"course_load"`
	Recommendations []string   `json:"recommendations"`
}

func toUrgentDTO(view application.UrgentView) urgentDTO {
	out := urgentDTO{
		AsOf:            formatTime(view.Now),
		TotalPending:    view.Analysis.TotalPending,
		AverageWeight:   view.Analysis.AverageWeight,
		CourseLoad:      string(view.Analysis.CourseLoad),
		Recommendations: view.Analysis.Recommendations,
	}
	if view.Analysis.Top != nil {
		top := toRankedDTO(*view.Analysis.Top)
		out.HighestPriority = &top
	}
	return out
}

type skippedDTO struct {
	Index int    `json:"index"`
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

type studentDataDTO struct {
	RangeStart string              `json:"range_start"`
	RangeEnd   string              `json:"range_end"`
	Events     []eventDTO          `json:"events"`
	Count      int                 `json:"count"`
	Skipped    []skippedDTO        `json:"skipped"`
	Flags      map[string][]string `json:"flags"`
}

func toStudentDataDTO(snap application.Snapshot) studentDataDTO {
	skipped := make([]skippedDTO, 0, len(snap.Skipped))
	for _, s := range snap.Skipped {
		skipped = append(skipped, skippedDTO{Index: s.Index, Kind: s.Kind.String(), Error: s.Err.Error()})
	}
	flags := make(map[string][]string, snap.Overlay.Len())
	for _, id := range snap.Overlay.IDs() {
		flags[id] = snap.Overlay.Flags(id).Names()
	}
	return studentDataDTO{
		RangeStart: formatTime(snap.Range.Start),
		RangeEnd:   formatTime(snap.Range.End),
		Events:     toEventDTOs(snap.Events),
		Count:      len(snap.Events),
		Skipped:    skipped,
		Flags:      flags,
	}
}
