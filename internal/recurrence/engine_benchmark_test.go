package recurrence

import (
	"testing"
	"time"

	"github.com/example/study-planner/internal/interval"
)

func BenchmarkEngineExpand(b *testing.B) {
	engine := NewEngine(nil)
	startsOn := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)
	until := startsOn.AddDate(0, 3, 0)
	meeting := Meeting{
		CourseID:   "cs101",
		CourseName: "Introduction to Computer Science",
		Weekdays: []time.Weekday{
			time.Monday,
			time.Tuesday,
			time.Wednesday,
			time.Thursday,
			time.Friday,
		},
		Start:    "09:00",
		End:      "10:30",
		StartsOn: startsOn,
		EndsOn:   &until,
	}
	rng := interval.New(startsOn, until.AddDate(0, 0, 1))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sessions, err := engine.Expand(meeting, rng)
		if err != nil {
			b.Fatalf("unexpected error: %v", err)
		}
		if len(sessions) == 0 {
			b.Fatal("expected sessions to be generated")
		}
	}
}
