package scheduler

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/example/study-planner/internal/event"
	"github.com/example/study-planner/internal/interval"
	"github.com/example/study-planner/internal/priority"
	"github.com/example/study-planner/internal/validation"
)

// DaysPerWeek is the number of day schedules a week summary folds.
const DaysPerWeek = 7

// UpcomingHorizonDays bounds how far ahead a pending item counts as an
// upcoming deadline.
const UpcomingHorizonDays = 7

// WeekOptions tunes ComputeWeek.
type WeekOptions struct {
	// Workers caps concurrent day computations. Zero means one per day.
	Workers int
}

// DayRef identifies one day of a week summary.
type DayRef struct {
	Index       int
	Date        time.Time
	BusyMinutes int
}

// WeekSummary aggregates seven consecutive day schedules.
type WeekSummary struct {
	WeekStart         time.Time
	TotalEvents       int
	KindCounts        map[event.Kind]int
	BusyHours         float64
	FreeHours         float64
	ConflictingSlots  int
	UpcomingDeadlines int
	BusiestDay        DayRef
	LeastBusyDay      DayRef
	AverageBusyHours  float64
	BusyHoursStdDev   float64
}

// StartOfWeek returns midnight of the most recent first weekday on or before t.
func StartOfWeek(t time.Time, first time.Weekday) time.Time {
	start := interval.StartOfDay(t)
	offset := (int(start.Weekday()) - int(first) + DaysPerWeek) % DaysPerWeek
	return start.AddDate(0, 0, -offset)
}

// ComputeWeek computes the schedules of the seven days starting at weekStart.
// Days are computed concurrently and returned in calendar order.
func ComputeWeek(ctx context.Context, events []event.CalendarEvent, weekStart time.Time, window Window, opts WeekOptions) ([]DaySchedule, error) {
	if err := window.Validate(); err != nil {
		return nil, err
	}

	start := interval.StartOfDay(weekStart)
	days := make([]DaySchedule, DaysPerWeek)

	g, ctx := errgroup.WithContext(ctx)
	if opts.Workers > 0 {
		g.SetLimit(opts.Workers)
	}
	for i := range days {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			date := start.AddDate(0, 0, i)
			schedule, err := ComputeDaySchedule(events, date, window)
			if err != nil {
				return fmt.Errorf("compute %s: %w", date.Format(time.DateOnly), err)
			}
			days[i] = schedule
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return days, nil
}

// ComputeWeekSummary folds exactly seven consecutive day schedules. Events
// spanning several days are counted once. Busiest and least busy day ties go
// to the earliest day.
func ComputeWeekSummary(days []DaySchedule, now time.Time) (WeekSummary, error) {
	if err := validateWeek(days); err != nil {
		return WeekSummary{}, err
	}

	summary := WeekSummary{
		WeekStart:  days[0].Date,
		KindCounts: make(map[event.Kind]int),
	}

	seen := make(map[string]struct{})
	busyHours := make([]float64, len(days))
	busyMinutes, freeMinutes := 0, 0

	for i, day := range days {
		for _, ev := range day.Events {
			if _, ok := seen[ev.ID]; ok {
				continue
			}
			seen[ev.ID] = struct{}{}
			summary.TotalEvents++
			summary.KindCounts[ev.Kind]++
			if ev.Status == event.StatusPending {
				due := priority.DaysUntilDue(now, ev.Due())
				if due >= 0 && due <= UpcomingHorizonDays {
					summary.UpcomingDeadlines++
				}
			}
		}

		busy := day.BusyMinutes()
		busyMinutes += busy
		freeMinutes += day.FreeMinutes()
		busyHours[i] = float64(busy) / 60
		summary.ConflictingSlots += len(day.ConflictGroups())

		ref := DayRef{Index: i, Date: day.Date, BusyMinutes: busy}
		if i == 0 || busy > summary.BusiestDay.BusyMinutes {
			summary.BusiestDay = ref
		}
		if i == 0 || busy < summary.LeastBusyDay.BusyMinutes {
			summary.LeastBusyDay = ref
		}
	}

	summary.BusyHours = float64(busyMinutes) / 60
	summary.FreeHours = float64(freeMinutes) / 60
	summary.AverageBusyHours, summary.BusyHoursStdDev = stat.PopMeanStdDev(busyHours, nil)
	return summary, nil
}

func validateWeek(days []DaySchedule) error {
	if len(days) != DaysPerWeek {
		return validation.New("days", fmt.Sprintf("exactly %d day schedules required, got %d", DaysPerWeek, len(days)))
	}
	first := days[0].Date
	for i := 1; i < len(days); i++ {
		want := first.AddDate(0, 0, i)
		if !days[i].Date.Equal(want) {
			return validation.New("days", fmt.Sprintf("day %d is %s, want %s", i, days[i].Date.Format(time.DateOnly), want.Format(time.DateOnly)))
		}
	}
	return nil
}
