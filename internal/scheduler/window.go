// Package scheduler partitions days into busy and free slots, groups
// overlapping events into conflicts and aggregates a week of day schedules.
package scheduler

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/study-planner/internal/interval"
	"github.com/example/study-planner/internal/normalize"
	"github.com/example/study-planner/internal/validation"
)

const dayLength = 24 * time.Hour

// Window is the day-bound range, as offsets from midnight, that slot
// computation is confined to.
type Window struct {
	Start time.Duration
	End   time.Duration
}

// DefaultWindow covers the whole day.
func DefaultWindow() Window {
	return Window{Start: 0, End: dayLength}
}

// ParseWindow builds a window from two "HH:MM" strings. The end may be
// "24:00" to mean midnight of the following day.
func ParseWindow(start, end string) (Window, error) {
	vErr := &validation.Error{}

	startOffset, err := parseOffset(start)
	if err != nil {
		vErr.Add("window.start", err.Error())
	}
	var endOffset time.Duration
	if strings.TrimSpace(end) == "24:00" {
		endOffset = dayLength
	} else if endOffset, err = parseOffset(end); err != nil {
		vErr.Add("window.end", err.Error())
	}
	if vErr.HasErrors() {
		return Window{}, vErr
	}

	w := Window{Start: startOffset, End: endOffset}
	if err := w.Validate(); err != nil {
		return Window{}, err
	}
	return w, nil
}

func parseOffset(value string) (time.Duration, error) {
	hour, minute, err := normalize.ParseClock(value)
	if err != nil {
		return 0, fmt.Errorf("must be HH:MM, got %q", value)
	}
	return time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute, nil
}

// Validate rejects negative bounds, bounds past the end of the day and empty
// windows.
func (w Window) Validate() error {
	vErr := &validation.Error{}
	if w.Start < 0 {
		vErr.Add("window.start", "must not be negative")
	} else if w.Start > dayLength {
		vErr.Add("window.start", "must not exceed 24:00")
	}
	if w.End < 0 {
		vErr.Add("window.end", "must not be negative")
	} else if w.End > dayLength {
		vErr.Add("window.end", "must not exceed 24:00")
	}
	if !vErr.HasErrors() && w.Start >= w.End {
		vErr.Add("window.end", "must be after window.start")
	}
	return vErr.OrNil()
}

// Bounds resolves the window on the day starting at midnight. Offsets are
// read as wall-clock times, so "10:00" stays 10:00 on DST transition days,
// and an end of 24:00 is the next midnight.
func (w Window) Bounds(midnight time.Time) interval.Interval {
	return interval.New(w.at(midnight, w.Start), w.at(midnight, w.End))
}

func (w Window) at(midnight time.Time, offset time.Duration) time.Time {
	if offset >= dayLength {
		return midnight.AddDate(0, 0, 1)
	}
	y, m, d := midnight.Date()
	minutes := int(offset / time.Minute)
	return time.Date(y, m, d, minutes/60, minutes%60, 0, 0, midnight.Location())
}

// String renders the window as "HH:MM-HH:MM".
func (w Window) String() string {
	return formatOffset(w.Start) + "-" + formatOffset(w.End)
}

func formatOffset(d time.Duration) string {
	minutes := int(d / time.Minute)
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
