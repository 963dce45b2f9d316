package priority

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/example/study-planner/internal/event"
)

// CourseLoad buckets the number of pending items.
type CourseLoad string

const (
	CourseLoadLight    CourseLoad = "Light"
	CourseLoadModerate CourseLoad = "Moderate"
	CourseLoadHeavy    CourseLoad = "Heavy"
)

// Analysis summarizes the pending workload around the most urgent item.
type Analysis struct {
	Top             *Ranked
	TotalPending    int
	AverageWeight   float64
	CourseLoad      CourseLoad
	Recommendations []string
}

var idleRecommendations = []string{
	"Consider planning ahead for upcoming assignments",
	"Review your course syllabi for future deadlines",
	"Use this free time to get ahead on reading or projects",
}

// Analyze ranks the pending events and derives workload statistics and
// study recommendations for the top item.
func Analyze(events []event.CalendarEvent, now time.Time) Analysis {
	ranked := Rank(events, now)
	if len(ranked) == 0 {
		recs := make([]string, len(idleRecommendations))
		copy(recs, idleRecommendations)
		return Analysis{CourseLoad: CourseLoadLight, Recommendations: recs}
	}

	weights := make([]float64, len(ranked))
	for i, r := range ranked {
		weights[i] = r.Event.Weight
	}

	top := ranked[0]
	return Analysis{
		Top:             &top,
		TotalPending:    len(ranked),
		AverageWeight:   math.Round(stat.Mean(weights, nil)*1000) / 1000,
		CourseLoad:      loadFor(len(ranked)),
		Recommendations: recommend(top, len(ranked)),
	}
}

func loadFor(pending int) CourseLoad {
	switch {
	case pending >= 8:
		return CourseLoadHeavy
	case pending >= 5:
		return CourseLoadModerate
	default:
		return CourseLoadLight
	}
}

func recommend(top Ranked, totalPending int) []string {
	var recs []string
	noun := describe(top.Event)

	switch days := top.DaysUntilDue; {
	case days < 0:
		recs = append(recs,
			fmt.Sprintf("Overdue: this %s was due %d day(s) ago", noun, -days),
			"Submit it as soon as possible and check whether late work is accepted")
	case days <= 1:
		recs = append(recs,
			fmt.Sprintf("Urgent: this %s is due within 24 hours", noun),
			"Focus solely on this task and complete it as soon as possible")
	case days <= 3:
		recs = append(recs,
			fmt.Sprintf("Priority: this %s is due very soon", noun),
			"Allocate significant time today to work on this")
	case days <= 7:
		recs = append(recs, fmt.Sprintf("Plan ahead: start working on this %s soon", noun))
	}

	percent := int(top.Event.Weight * 100)
	switch {
	case top.Event.Weight >= 0.3:
		recs = append(recs,
			fmt.Sprintf("High impact: this task represents %d%% of your grade", percent),
			"Consider dedicating extra study time given its importance")
	case top.Event.Weight >= 0.15:
		recs = append(recs, fmt.Sprintf("Moderate impact: worth %d%% of your final grade", percent))
	}

	if totalPending >= 8 {
		recs = append(recs,
			"Heavy workload detected: prioritize by due date and weight",
			"Break down large tasks into smaller, manageable chunks")
	}

	switch {
	case top.Event.Kind == event.KindExam:
		recs = append(recs,
			"Create a study schedule leading up to the exam",
			"Review past materials and practice problems")
	case top.Event.HasTag("project"):
		recs = append(recs,
			"Break this project into phases with mini-deadlines",
			"Start with research and planning phases")
	case top.Event.Kind == event.KindAssignment:
		recs = append(recs, "Begin with an outline or initial draft")
	}
	return recs
}

func describe(ev event.CalendarEvent) string {
	if ev.HasTag("project") {
		return "project"
	}
	return string(ev.Kind)
}
