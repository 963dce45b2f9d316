package scheduler

import (
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/study-planner/internal/event"
	"github.com/example/study-planner/internal/interval"
	"github.com/example/study-planner/internal/validation"
)

var monday = time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return monday.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func timed(id string, start, end time.Time) event.CalendarEvent {
	return event.CalendarEvent{ID: id, Title: id, Start: start, End: end, Kind: event.KindClassSession, Status: event.StatusActive}
}

func assertTiles(t *testing.T, schedule DaySchedule) {
	t.Helper()

	slots := append(append([]TimeSlot{}, schedule.BusySlots...), schedule.FreeSlots...)
	for i := range slots {
		require.True(t, slots[i].Start.Before(slots[i].End), "slot %d must have positive length", i)
		for j := i + 1; j < len(slots); j++ {
			assert.False(t, interval.Overlaps(slots[i].Interval(), slots[j].Interval()), "slots %d and %d overlap", i, j)
		}
	}
	total := schedule.BusyMinutes() + schedule.FreeMinutes()
	assert.Equal(t, interval.DurationMinutes(schedule.Window), total)
}

func TestComputeDayScheduleMergesOverlaps(t *testing.T) {
	t.Parallel()

	a := timed("A", at(9, 0), at(10, 0))
	b := timed("B", at(9, 30), at(10, 30))
	c := timed("C", at(11, 0), at(12, 0))

	schedule, err := ComputeDaySchedule([]event.CalendarEvent{c, b, a}, monday, DefaultWindow())
	require.NoError(t, err)

	require.Len(t, schedule.BusySlots, 2)
	assert.Equal(t, at(9, 0), schedule.BusySlots[0].Start)
	assert.Equal(t, at(10, 30), schedule.BusySlots[0].End)
	assert.Equal(t, []string{"A", "B"}, schedule.BusySlots[0].EventIDs())
	assert.True(t, schedule.BusySlots[0].IsConflict())
	assert.Equal(t, []string{"C"}, schedule.BusySlots[1].EventIDs())

	require.Len(t, schedule.FreeSlots, 3)
	assert.Equal(t, interval.New(at(0, 0), at(9, 0)), schedule.FreeSlots[0].Interval())
	assert.Equal(t, interval.New(at(10, 30), at(11, 0)), schedule.FreeSlots[1].Interval())
	assert.Equal(t, interval.New(at(12, 0), at(24, 0)), schedule.FreeSlots[2].Interval())

	assert.Len(t, schedule.ConflictGroups(), 1)
	assert.Equal(t, 150, schedule.BusyMinutes())
	assertTiles(t, schedule)
}

func TestComputeDayScheduleAllDayAbsorbsTheDay(t *testing.T) {
	t.Parallel()

	holiday := event.CalendarEvent{
		ID:     "holiday_US-2024-03-04-Founders Day",
		Start:  monday,
		End:    monday.Add(24 * time.Hour),
		Kind:   event.KindHoliday,
		AllDay: true,
	}
	class := timed("class", at(10, 0), at(11, 0))

	schedule, err := ComputeDaySchedule([]event.CalendarEvent{class, holiday}, monday, DefaultWindow())
	require.NoError(t, err)

	require.Len(t, schedule.BusySlots, 1)
	assert.Equal(t, interval.FullDay(monday), schedule.BusySlots[0].Interval())
	assert.Len(t, schedule.BusySlots[0].Events, 2)
	assert.Empty(t, schedule.FreeSlots)
	assertTiles(t, schedule)

	groups := DetectConflicts(schedule)
	require.Len(t, groups, 1)
	assert.Equal(t, ConflictTypeAllDay, groups[0].Type)
	assert.Equal(t, []ConflictPair{{FirstID: holiday.ID, SecondID: "class"}}, groups[0].Pairs)
}

func TestComputeDayScheduleAllDayUsesWholeDayRegardlessOfTimes(t *testing.T) {
	t.Parallel()

	// An all-day item recorded with a short nominal span still blocks the day.
	item := timed("trip", at(14, 0), at(15, 0))
	item.AllDay = true

	schedule, err := ComputeDaySchedule([]event.CalendarEvent{item}, monday, DefaultWindow())
	require.NoError(t, err)
	require.Len(t, schedule.BusySlots, 1)
	assert.Equal(t, interval.FullDay(monday), schedule.BusySlots[0].Interval())

	nextDay, err := ComputeDaySchedule([]event.CalendarEvent{item}, monday.AddDate(0, 0, 1), DefaultWindow())
	require.NoError(t, err)
	assert.Empty(t, nextDay.BusySlots)
}

func TestComputeDayScheduleHalfOpenBoundary(t *testing.T) {
	t.Parallel()

	first := timed("first", at(9, 0), at(10, 0))
	second := timed("second", at(10, 0), at(11, 0))

	schedule, err := ComputeDaySchedule([]event.CalendarEvent{first, second}, monday, DefaultWindow())
	require.NoError(t, err)

	require.Len(t, schedule.BusySlots, 2)
	assert.Empty(t, schedule.ConflictGroups())
	assert.Empty(t, DetectConflicts(schedule))
	assertTiles(t, schedule)
}

func TestComputeDayScheduleEmptyDay(t *testing.T) {
	t.Parallel()

	schedule, err := ComputeDaySchedule(nil, monday.Add(15*time.Hour), DefaultWindow())
	require.NoError(t, err)

	assert.Equal(t, monday, schedule.Date)
	assert.Empty(t, schedule.BusySlots)
	require.Len(t, schedule.FreeSlots, 1)
	assert.Equal(t, interval.FullDay(monday), schedule.FreeSlots[0].Interval())
}

func TestComputeDayScheduleClipsToWindow(t *testing.T) {
	t.Parallel()

	window, err := ParseWindow("08:00", "22:00")
	require.NoError(t, err)

	early := timed("early", at(6, 0), at(9, 0))
	outside := timed("outside", at(23, 0), at(23, 30))
	overnight := timed("overnight", at(21, 0), at(26, 0))

	schedule, err := ComputeDaySchedule([]event.CalendarEvent{early, outside, overnight}, monday, window)
	require.NoError(t, err)

	assert.Equal(t, interval.New(at(8, 0), at(22, 0)), schedule.Window)
	require.Len(t, schedule.BusySlots, 2)
	assert.Equal(t, interval.New(at(8, 0), at(9, 0)), schedule.BusySlots[0].Interval())
	assert.Equal(t, interval.New(at(21, 0), at(22, 0)), schedule.BusySlots[1].Interval())
	assert.Equal(t, []string{"early", "overnight"}, eventIDs(schedule.Events))
	assertTiles(t, schedule)
}

func TestComputeDayScheduleMalformedAndZeroLength(t *testing.T) {
	t.Parallel()

	broken := timed("broken", at(11, 0), at(10, 0))
	marker := timed("marker", at(12, 0), at(12, 0))

	schedule, err := ComputeDaySchedule([]event.CalendarEvent{broken, marker}, monday, DefaultWindow())
	require.NoError(t, err)

	assert.Equal(t, []string{"broken"}, schedule.Malformed)
	assert.Empty(t, schedule.BusySlots)
	assert.Equal(t, []string{"marker"}, eventIDs(schedule.Events))
	require.Len(t, schedule.FreeSlots, 1)
	assertTiles(t, schedule)
}

func TestComputeDayScheduleChainedOverlapsFormOneGroup(t *testing.T) {
	t.Parallel()

	a := timed("a", at(9, 0), at(10, 0))
	b := timed("b", at(9, 45), at(11, 0))
	c := timed("c", at(10, 30), at(12, 0))

	schedule, err := ComputeDaySchedule([]event.CalendarEvent{a, b, c}, monday, DefaultWindow())
	require.NoError(t, err)

	groups := DetectConflicts(schedule)
	require.Len(t, groups, 1)
	assert.Equal(t, ConflictTypeOverlap, groups[0].Type)
	assert.Equal(t, []ConflictPair{{FirstID: "a", SecondID: "b"}, {FirstID: "b", SecondID: "c"}}, groups[0].Pairs)
}

func TestComputeDayScheduleTilesArbitraryInput(t *testing.T) {
	t.Parallel()

	var events []event.CalendarEvent
	for i := 0; i < 40; i++ {
		start := at((i*7)%23, (i*13)%60)
		end := start.Add(time.Duration(15+(i*37)%180) * time.Minute)
		events = append(events, timed(string(rune('a'+i%26))+string(rune('0'+i/26)), start, end))
	}

	for _, window := range []Window{DefaultWindow(), {Start: 7 * time.Hour, End: 19*time.Hour + 30*time.Minute}} {
		schedule, err := ComputeDaySchedule(events, monday, window)
		require.NoError(t, err)
		assertTiles(t, schedule)
		for i := 1; i < len(schedule.BusySlots); i++ {
			assert.False(t, schedule.BusySlots[i].Start.Before(schedule.BusySlots[i-1].End))
		}
	}
}

func TestComputeDayScheduleRejectsInvalidWindow(t *testing.T) {
	t.Parallel()

	_, err := ComputeDaySchedule(nil, monday, Window{Start: -time.Hour, End: 10 * time.Hour})
	var vErr *validation.Error
	require.True(t, errors.As(err, &vErr))
	assert.Contains(t, vErr.FieldErrors, "window.start")
}

func TestEventsForDay(t *testing.T) {
	t.Parallel()

	today := timed("today", at(9, 0), at(10, 0))
	tomorrow := timed("tomorrow", at(33, 0), at(34, 0))
	overnight := timed("overnight", at(-2, 0), at(1, 0))
	broken := timed("broken", at(5, 0), at(4, 0))

	got := EventsForDay([]event.CalendarEvent{today, tomorrow, overnight, broken}, monday.Add(8*time.Hour))
	assert.Equal(t, []string{"today", "overnight"}, eventIDs(got))
}

func eventIDs(events []event.CalendarEvent) []string {
	ids := make([]string, len(events))
	for i, ev := range events {
		ids[i] = ev.ID
	}
	return ids
}

func newYork(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	return loc
}

func TestComputeDayScheduleTilesDSTDays(t *testing.T) {
	t.Parallel()

	ny := newYork(t)
	cases := map[string]struct {
		date    time.Time
		minutes int
	}{
		"spring forward": {time.Date(2025, time.March, 9, 0, 0, 0, 0, ny), 23 * 60},
		"fall back":      {time.Date(2025, time.November, 2, 0, 0, 0, 0, ny), 25 * 60},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			next := tc.date.AddDate(0, 0, 1)
			events := []event.CalendarEvent{
				timed("late", tc.date.Add(-30*time.Minute), tc.date.Add(30*time.Minute)),
				timed("after", next.Add(30*time.Minute), next.Add(50*time.Minute)),
			}

			schedule, err := ComputeDaySchedule(events, tc.date, DefaultWindow())
			require.NoError(t, err)
			assert.Equal(t, tc.date, schedule.Window.Start)
			assert.Equal(t, next, schedule.Window.End)
			assert.Equal(t, tc.minutes, schedule.BusyMinutes()+schedule.FreeMinutes())
			assert.Equal(t, []string{"late"}, eventIDs(schedule.Events))
			assertTiles(t, schedule)

			window, err := ParseWindow("08:00", "22:00")
			require.NoError(t, err)
			schedule, err = ComputeDaySchedule(nil, tc.date, window)
			require.NoError(t, err)
			y, m, d := tc.date.Date()
			assert.Equal(t, time.Date(y, m, d, 8, 0, 0, 0, ny), schedule.Window.Start)
			assert.Equal(t, time.Date(y, m, d, 22, 0, 0, 0, ny), schedule.Window.End)
		})
	}
}

func TestComputeDayScheduleAllDayCoversShortDay(t *testing.T) {
	t.Parallel()

	ny := newYork(t)
	date := time.Date(2025, time.March, 9, 0, 0, 0, 0, ny)
	holiday := event.CalendarEvent{
		ID: "h", Title: "h", Start: date, End: date.AddDate(0, 0, 1),
		Kind: event.KindHoliday, AllDay: true, Status: event.StatusActive,
	}

	schedule, err := ComputeDaySchedule([]event.CalendarEvent{holiday}, date, DefaultWindow())
	require.NoError(t, err)
	require.Len(t, schedule.BusySlots, 1)
	assert.Equal(t, 23*60, schedule.BusyMinutes())
	assert.Empty(t, schedule.FreeSlots)

	following, err := ComputeDaySchedule([]event.CalendarEvent{holiday}, date.AddDate(0, 0, 1), DefaultWindow())
	require.NoError(t, err)
	assert.Empty(t, following.BusySlots)
}
