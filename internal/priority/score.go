// Package priority ranks pending work by a deterministic urgency score.
package priority

import (
	"sort"
	"time"

	"github.com/example/study-planner/internal/event"
)

// Level is a categorical urgency, independent of the numeric score.
type Level string

const (
	LevelCritical Level = "critical"
	LevelHigh     Level = "high"
	LevelModerate Level = "moderate"
	LevelLow      Level = "low"
)

const (
	urgencyHorizonDays = 14
	urgencyPerDay      = 5
	inactivePenalty    = -50
)

// DaysUntilDue returns the whole days from now until due, rounded down, so an
// item due two hours ago is -1 and one due in 36 hours is 1.
func DaysUntilDue(now, due time.Time) int {
	const day = 24 * time.Hour
	d := due.Sub(now)
	days := int(d / day)
	if d < 0 && d%day != 0 {
		days--
	}
	return days
}

// Score combines grade weight, due-date proximity and status:
//
//	weight*100 + max(0, 14-days)*5 + (status == pending ? 0 : -50)
func Score(weight float64, daysUntilDue int, status event.Status) float64 {
	weightFactor := weight * 100
	urgencyFactor := float64(max(0, urgencyHorizonDays-daysUntilDue) * urgencyPerDay)
	penalty := 0.0
	if status != event.StatusPending {
		penalty = inactivePenalty
	}
	return weightFactor + urgencyFactor + penalty
}

// LevelFor maps days until due to an urgency level.
func LevelFor(daysUntilDue int) Level {
	switch {
	case daysUntilDue < 0:
		return LevelCritical
	case daysUntilDue <= 1:
		return LevelHigh
	case daysUntilDue <= 3:
		return LevelModerate
	default:
		return LevelLow
	}
}

// Ranked is a pending event with its derived ranking inputs.
type Ranked struct {
	Event        event.CalendarEvent
	Score        float64
	DaysUntilDue int
	Level        Level
}

// Rank scores every pending event and orders them from most to least urgent:
// score descending, then earliest due, then id. Completed, cancelled and
// active events are excluded rather than penalized.
func Rank(events []event.CalendarEvent, now time.Time) []Ranked {
	ranked := make([]Ranked, 0, len(events))
	for _, ev := range events {
		if ev.Status != event.StatusPending {
			continue
		}
		days := DaysUntilDue(now, ev.Due())
		ranked = append(ranked, Ranked{
			Event:        ev,
			Score:        Score(ev.Weight, days, ev.Status),
			DaysUntilDue: days,
			Level:        LevelFor(days),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranksBefore(ranked[i], ranked[j])
	})
	return ranked
}

// MostUrgentPending returns the highest ranked pending event.
func MostUrgentPending(events []event.CalendarEvent, now time.Time) (Ranked, bool) {
	var best Ranked
	found := false
	for _, ev := range events {
		if ev.Status != event.StatusPending {
			continue
		}
		days := DaysUntilDue(now, ev.Due())
		candidate := Ranked{
			Event:        ev,
			Score:        Score(ev.Weight, days, ev.Status),
			DaysUntilDue: days,
			Level:        LevelFor(days),
		}
		if !found || ranksBefore(candidate, best) {
			best = candidate
			found = true
		}
	}
	return best, found
}

func ranksBefore(a, b Ranked) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if !a.Event.Due().Equal(b.Event.Due()) {
		return a.Event.Due().Before(b.Event.Due())
	}
	return a.Event.ID < b.Event.ID
}
