package scheduler

import (
	"sort"
	"time"

	"github.com/example/study-planner/internal/event"
	"github.com/example/study-planner/internal/interval"
)

// TimeSlot is a half-open range with the events occupying it. A slot with no
// events is free.
type TimeSlot struct {
	Start  time.Time
	End    time.Time
	Events []event.CalendarEvent
}

// Interval returns the slot bounds.
func (s TimeSlot) Interval() interval.Interval {
	return interval.New(s.Start, s.End)
}

// Minutes returns the slot length in whole minutes.
func (s TimeSlot) Minutes() int {
	return interval.DurationMinutes(s.Interval())
}

// IsFree reports whether nothing occupies the slot.
func (s TimeSlot) IsFree() bool {
	return len(s.Events) == 0
}

// IsConflict reports whether more than one event contributed to the slot.
func (s TimeSlot) IsConflict() bool {
	return len(s.Events) > 1
}

// EventIDs lists the ids of the slot's events in sweep order.
func (s TimeSlot) EventIDs() []string {
	ids := make([]string, len(s.Events))
	for i, ev := range s.Events {
		ids[i] = ev.ID
	}
	return ids
}

// DaySchedule is the busy/free partition of one calendar day.
type DaySchedule struct {
	// Date is midnight of the day in the location it was computed for.
	Date time.Time
	// Window is the resolved day-bound range the slots tile.
	Window interval.Interval

	Events    []event.CalendarEvent
	BusySlots []TimeSlot
	FreeSlots []TimeSlot

	// Malformed holds ids of events ending before they start. They occupy
	// no time.
	Malformed []string
}

// BusyMinutes sums the busy slot lengths.
func (d DaySchedule) BusyMinutes() int {
	return sumMinutes(d.BusySlots)
}

// FreeMinutes sums the free slot lengths.
func (d DaySchedule) FreeMinutes() int {
	return sumMinutes(d.FreeSlots)
}

// ConflictGroups returns the busy slots with more than one event.
func (d DaySchedule) ConflictGroups() []TimeSlot {
	var groups []TimeSlot
	for _, slot := range d.BusySlots {
		if slot.IsConflict() {
			groups = append(groups, slot)
		}
	}
	return groups
}

func sumMinutes(slots []TimeSlot) int {
	total := 0
	for _, slot := range slots {
		total += slot.Minutes()
	}
	return total
}

type placement struct {
	ev  event.CalendarEvent
	occ interval.Interval
}

// ComputeDaySchedule partitions the window of the day containing date into
// merged busy slots and the free gaps between them. All-day events occupy the
// whole day. The window is validated, never adjusted.
func ComputeDaySchedule(events []event.CalendarEvent, date time.Time, window Window) (DaySchedule, error) {
	if err := window.Validate(); err != nil {
		return DaySchedule{}, err
	}

	full := interval.FullDay(date)
	bounds := window.Bounds(full.Start)
	schedule := DaySchedule{Date: full.Start, Window: bounds}

	var placed []placement
	var markers []placement
	for _, ev := range events {
		raw := ev.Interval()
		if raw.IsMalformed() {
			if interval.Contains(full, ev.Start) || interval.Contains(full, ev.End) {
				schedule.Malformed = append(schedule.Malformed, ev.ID)
			}
			continue
		}
		occ := occupancy(ev, full)
		if occ.IsEmpty() {
			if interval.Contains(bounds, occ.Start) {
				markers = append(markers, placement{ev: ev, occ: occ})
			}
			continue
		}
		clipped, ok := interval.Clip(occ, bounds)
		if !ok {
			continue
		}
		placed = append(placed, placement{ev: ev, occ: clipped})
	}

	sortPlacements(placed)
	schedule.BusySlots = sweep(placed)
	schedule.FreeSlots = gaps(schedule.BusySlots, bounds)

	all := make([]placement, 0, len(placed)+len(markers))
	all = append(append(all, placed...), markers...)
	sortPlacements(all)
	schedule.Events = make([]event.CalendarEvent, len(all))
	for i, p := range all {
		schedule.Events[i] = p.ev
	}
	sort.Strings(schedule.Malformed)
	return schedule, nil
}

// EventsForDay selects the events that occupy any part of the day containing
// date, or that are instantaneous markers on it.
func EventsForDay(events []event.CalendarEvent, date time.Time) []event.CalendarEvent {
	full := interval.FullDay(date)
	var out []event.CalendarEvent
	for _, ev := range events {
		if ev.Interval().IsMalformed() {
			continue
		}
		occ := occupancy(ev, full)
		if interval.Overlaps(occ, full) || (occ.IsEmpty() && interval.Contains(full, occ.Start)) {
			out = append(out, ev)
		}
	}
	return out
}

// occupancy is the time an event blocks as seen from the given day. An
// all-day event spanning the day blocks all of it.
func occupancy(ev event.CalendarEvent, full interval.Interval) interval.Interval {
	if !ev.AllDay {
		return ev.Interval()
	}
	start := interval.StartOfDay(ev.Start.In(full.Start.Location()))
	end := start.AddDate(0, 0, 1)
	if ev.End.After(end) {
		end = ev.End
	}
	if interval.Overlaps(interval.New(start, end), full) {
		return full
	}
	return interval.New(start, end)
}

func sortPlacements(placed []placement) {
	sort.SliceStable(placed, func(i, j int) bool {
		a, b := placed[i].occ, placed[j].occ
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		if !a.End.Equal(b.End) {
			return a.End.Before(b.End)
		}
		return placed[i].ev.ID < placed[j].ev.ID
	})
}

// sweep merges sorted placements whose spans intersect the running slot.
func sweep(placed []placement) []TimeSlot {
	var busy []TimeSlot
	for _, p := range placed {
		if n := len(busy); n > 0 && p.occ.Start.Before(busy[n-1].End) {
			last := &busy[n-1]
			if p.occ.End.After(last.End) {
				last.End = p.occ.End
			}
			last.Events = append(last.Events, p.ev)
			continue
		}
		busy = append(busy, TimeSlot{
			Start:  p.occ.Start,
			End:    p.occ.End,
			Events: []event.CalendarEvent{p.ev},
		})
	}
	return busy
}

// gaps returns the free slots around busy within bounds.
func gaps(busy []TimeSlot, bounds interval.Interval) []TimeSlot {
	var free []TimeSlot
	cursor := bounds.Start
	for _, slot := range busy {
		if cursor.Before(slot.Start) {
			free = append(free, TimeSlot{Start: cursor, End: slot.Start})
		}
		cursor = slot.End
	}
	if cursor.Before(bounds.End) {
		free = append(free, TimeSlot{Start: cursor, End: bounds.End})
	}
	return free
}
