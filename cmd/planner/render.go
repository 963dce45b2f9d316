package main

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/example/study-planner/internal/application"
	"github.com/example/study-planner/internal/event"
	"github.com/example/study-planner/internal/priority"
	"github.com/example/study-planner/internal/scheduler"
)

const clockFormat = "15:04"

func render[T any](w io.Writer, format string, v T, text func(io.Writer, T) error) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	return text(w, v)
}

func renderDay(w io.Writer, view application.DayView) error {
	day := view.Schedule
	fmt.Fprintf(w, "%s %s  busy %dm  free %dm\n",
		day.Date.Weekday(), day.Date.Format(time.DateOnly), day.BusyMinutes(), day.FreeMinutes())

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, slot := range mergeSlots(day) {
		state := "free"
		if !slot.IsFree() {
			state = "busy"
		}
		if slot.IsConflict() {
			state = "CONFLICT"
		}
		fmt.Fprintf(tw, "%s-%s\t%s\t%s\n",
			slot.Start.Format(clockFormat), endClock(slot.Start, slot.End), state, titles(slot.Events))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, id := range day.Malformed {
		fmt.Fprintf(w, "malformed: %s\n", id)
	}
	return nil
}

// mergeSlots returns busy and free slots in time order.
func mergeSlots(day scheduler.DaySchedule) []scheduler.TimeSlot {
	slots := slices.Concat(day.BusySlots, day.FreeSlots)
	slices.SortFunc(slots, func(a, b scheduler.TimeSlot) int { return a.Start.Compare(b.Start) })
	return slots
}

// endClock prints a slot ending on the following midnight as 24:00.
func endClock(start, end time.Time) string {
	if end.YearDay() != start.YearDay() && end.Hour() == 0 && end.Minute() == 0 {
		return "24:00"
	}
	return end.Format(clockFormat)
}

func titles(events []event.CalendarEvent) string {
	names := make([]string, 0, len(events))
	for _, ev := range events {
		names = append(names, ev.Title)
	}
	return strings.Join(names, ", ")
}

func renderWeek(w io.Writer, view application.WeekView) error {
	s := view.Summary
	fmt.Fprintf(w, "week of %s  events %d  busy %.1fh  free %.1fh  conflicts %d  deadlines %d\n",
		s.WeekStart.Format(time.DateOnly), s.TotalEvents, s.BusyHours, s.FreeHours,
		s.ConflictingSlots, s.UpcomingDeadlines)
	fmt.Fprintf(w, "busiest %s  least busy %s  mean %.2fh  stddev %.2fh\n",
		s.BusiestDay.Date.Format(time.DateOnly), s.LeastBusyDay.Date.Format(time.DateOnly),
		s.AverageBusyHours, s.BusyHoursStdDev)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, day := range view.Days {
		fmt.Fprintf(tw, "%s\t%s\t%d events\t%dm busy\n",
			day.Date.Weekday().String()[:3], day.Date.Format(time.DateOnly), len(day.Events), day.BusyMinutes())
	}
	kinds := make([]string, 0, len(s.KindCounts))
	for kind := range s.KindCounts {
		kinds = append(kinds, string(kind))
	}
	slices.Sort(kinds)
	for _, kind := range kinds {
		fmt.Fprintf(tw, "%s\t%d\n", kind, s.KindCounts[event.Kind(kind)])
	}
	return tw.Flush()
}

func renderEvents(w io.Writer, events []event.CalendarEvent) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, ev := range events {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			ev.Start.Format("2006-01-02 15:04"), ev.Kind, ev.CourseID, ev.Status, ev.ID, ev.Title)
	}
	fmt.Fprintf(tw, "%d events\n", len(events))
	return tw.Flush()
}

func renderRanked(w io.Writer, r priority.Ranked) error {
	_, err := fmt.Fprintf(w, "%s  %s  score %.0f  %s  due in %d days\n",
		r.Event.ID, r.Event.Title, r.Score, r.Level, r.DaysUntilDue)
	return err
}

func renderUrgent(w io.Writer, view application.UrgentView) error {
	a := view.Analysis
	fmt.Fprintf(w, "as of %s  pending %d  average weight %.2f  course load %s\n",
		view.Now.Format(time.RFC3339), a.TotalPending, a.AverageWeight, a.CourseLoad)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, r := range view.Ranked {
		fmt.Fprintf(tw, "%.0f\t%s\t%dd\t%s\t%s\n", r.Score, r.Level, r.DaysUntilDue, r.Event.ID, r.Event.Title)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, rec := range a.Recommendations {
		fmt.Fprintf(w, "- %s\n", rec)
	}
	return nil
}
