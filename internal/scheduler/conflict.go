package scheduler

import (
	"github.com/example/study-planner/internal/interval"
)

// ConflictType describes why events in a group collide.
type ConflictType string

const (
	// ConflictTypeOverlap indicates timed events whose intervals overlap.
	ConflictTypeOverlap ConflictType = "overlap"
	// ConflictTypeAllDay indicates an all-day event absorbing the rest of the day.
	ConflictTypeAllDay ConflictType = "all-day"
)

// ConflictPair names two events of a group that overlap directly.
type ConflictPair struct {
	FirstID  string
	SecondID string
}

// ConflictGroup is a busy slot with two or more events, together with the
// event pairs that actually overlap inside it. A chain A-B-C merges into one
// group even when A and C never overlap.
type ConflictGroup struct {
	Slot  TimeSlot
	Type  ConflictType
	Pairs []ConflictPair
}

// DetectConflicts lists the conflict groups of a day schedule in slot order.
func DetectConflicts(day DaySchedule) []ConflictGroup {
	full := interval.FullDay(day.Date)
	var groups []ConflictGroup
	for _, slot := range day.ConflictGroups() {
		group := ConflictGroup{Slot: slot, Type: ConflictTypeOverlap}
		spans := make([]interval.Interval, len(slot.Events))
		for i, ev := range slot.Events {
			if ev.AllDay {
				group.Type = ConflictTypeAllDay
			}
			spans[i], _ = interval.Clip(occupancy(ev, full), day.Window)
		}
		for i := 0; i < len(spans); i++ {
			for j := i + 1; j < len(spans); j++ {
				if interval.Overlaps(spans[i], spans[j]) {
					group.Pairs = append(group.Pairs, ConflictPair{
						FirstID:  slot.Events[i].ID,
						SecondID: slot.Events[j].ID,
					})
				}
			}
		}
		groups = append(groups, group)
	}
	return groups
}
