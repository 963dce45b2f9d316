package application

import (
	"time"

	"github.com/example/study-planner/internal/event"
	"github.com/example/study-planner/internal/interval"
	"github.com/example/study-planner/internal/normalize"
	"github.com/example/study-planner/internal/priority"
	"github.com/example/study-planner/internal/scheduler"
)

// Snapshot is one normalized read of the record source.
type Snapshot struct {
	Range   interval.Interval
	Events  []event.CalendarEvent
	Skipped []normalize.Skipped
	Overlay event.Overlay
}

// DayView is the schedule of one day plus its conflicts.
type DayView struct {
	Schedule  scheduler.DaySchedule
	Conflicts []scheduler.ConflictGroup
}

// WeekView holds the seven day schedules of a week and their summary.
type WeekView struct {
	Days    []scheduler.DaySchedule
	Summary scheduler.WeekSummary
}

// UrgentView is the urgency analysis of pending work at a given instant.
type UrgentView struct {
	Now      time.Time
	Analysis priority.Analysis
	Ranked   []priority.Ranked
}
