package priority

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/study-planner/internal/event"
)

func TestAnalyzeWithoutPendingWork(t *testing.T) {
	t.Parallel()

	analysis := Analyze(nil, now)
	assert.Nil(t, analysis.Top)
	assert.Equal(t, 0, analysis.TotalPending)
	assert.Equal(t, CourseLoadLight, analysis.CourseLoad)
	assert.Len(t, analysis.Recommendations, 3)
}

func TestAnalyzeSummarizesPendingWork(t *testing.T) {
	t.Parallel()

	exam := pending("midterm", 0.30, now.Add(2*24*time.Hour))
	exam.Kind = event.KindExam
	project := pending("project", 0.25, now.Add(5*24*time.Hour))
	project.Tags = []string{"project"}
	events := []event.CalendarEvent{
		project,
		exam,
		pending("lab", 0.08, now.Add(24*time.Hour)),
		pending("hw", 0.05, now.Add(7*24*time.Hour)),
		pending("quiz", 0.08, now.Add(10*24*time.Hour)),
	}

	analysis := Analyze(events, now)
	require.NotNil(t, analysis.Top)
	assert.Equal(t, "midterm", analysis.Top.Event.ID)
	assert.Equal(t, 5, analysis.TotalPending)
	assert.InDelta(t, 0.152, analysis.AverageWeight, 1e-9)
	assert.Equal(t, CourseLoadModerate, analysis.CourseLoad)
	assert.Contains(t, analysis.Recommendations, "Priority: this exam is due very soon")
	assert.Contains(t, analysis.Recommendations, "High impact: this task represents 30% of your grade")
	assert.Contains(t, analysis.Recommendations, "Create a study schedule leading up to the exam")
}

func TestAnalyzeFlagsHeavyWorkloadAndOverdueItems(t *testing.T) {
	t.Parallel()

	events := make([]event.CalendarEvent, 0, 8)
	for i := 0; i < 8; i++ {
		events = append(events, pending(string(rune('a'+i)), 0.01, now.Add(time.Duration(i+3)*24*time.Hour)))
	}
	overdue := pending("late", 0.2, now.Add(-50*time.Hour))
	events = append(events, overdue)

	analysis := Analyze(events, now)
	require.NotNil(t, analysis.Top)
	assert.Equal(t, "late", analysis.Top.Event.ID)
	assert.Equal(t, LevelCritical, analysis.Top.Level)
	assert.Equal(t, CourseLoadHeavy, analysis.CourseLoad)
	assert.Contains(t, analysis.Recommendations, "Overdue: this assignment was due 3 day(s) ago")
	assert.Contains(t, analysis.Recommendations, "Heavy workload detected: prioritize by due date and weight")
	assert.Contains(t, analysis.Recommendations, "Moderate impact: worth 20% of your final grade")
}
