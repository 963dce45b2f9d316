package filter

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/study-planner/internal/event"
	"github.com/example/study-planner/internal/interval"
	"github.com/example/study-planner/internal/validation"
)

var base = time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)

func sample() []event.CalendarEvent {
	return []event.CalendarEvent{
		{ID: "lecture", Title: "Data Structures Lecture", CourseID: "cs101", CourseName: "Introduction to Computer Science",
			Kind: event.KindClassSession, Status: event.StatusActive, Start: base, End: base.Add(90 * time.Minute)},
		{ID: "midterm", Title: "Midterm Exam", Description: "Chapters 1-5", CourseID: "math201", CourseName: "Calculus II",
			Kind: event.KindExam, Status: event.StatusPending, Start: base.Add(48 * time.Hour), End: base.Add(50 * time.Hour)},
		{ID: "lab", Title: "Lab Report", CourseID: "phys151", CourseName: "Physics I",
			Kind: event.KindAssignment, Status: event.StatusCompleted, Start: base.Add(-24 * time.Hour), End: base.Add(-23 * time.Hour)},
		{ID: "gym", Title: "Gym", Kind: event.KindPersonal, Status: event.StatusCancelled, Start: base, End: base.Add(time.Hour)},
	}
}

func ids(events []event.CalendarEvent) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.ID
	}
	return out
}

func TestDefaultKeepsActiveAndPending(t *testing.T) {
	t.Parallel()

	got := Collect(Events(sample(), Default()))
	assert.Equal(t, []string{"lecture", "midterm"}, ids(got))
}

func TestStatusSetSemantics(t *testing.T) {
	t.Parallel()

	all := Filter{}
	assert.Equal(t, 4, Count(Events(sample(), all)), "nil status set matches everything")

	none := New(WithStatuses())
	assert.Equal(t, 0, Count(Events(sample(), none)), "empty status set matches nothing")

	assert.Equal(t, 4, Count(Events(sample(), New(AnyStatus()))))
}

func TestQueryIsCaseInsensitiveAcrossFields(t *testing.T) {
	t.Parallel()

	f := New(AnyStatus(), WithQuery("  CALCULUS "))
	assert.Equal(t, []string{"midterm"}, ids(Collect(Events(sample(), f))))

	f = New(AnyStatus(), WithQuery("chapters"))
	assert.Equal(t, []string{"midterm"}, ids(Collect(Events(sample(), f))))

	f = New(AnyStatus(), WithQuery("report"))
	assert.Equal(t, []string{"lab"}, ids(Collect(Events(sample(), f))))
}

func TestFlagsComeFromOverlay(t *testing.T) {
	t.Parallel()

	overlay := event.NewOverlay(nil).With("lecture", event.FlagFavorite).With("midterm", event.FlagSaved)

	fav := New(WithOverlay(overlay), RequireFavorite())
	assert.Equal(t, []string{"lecture"}, ids(Collect(Events(sample(), fav))))

	both := New(WithOverlay(overlay), RequireFavorite(), RequireSaved())
	assert.Zero(t, Count(Events(sample(), both)))

	withoutOverlay := New(RequireSaved())
	assert.Zero(t, Count(Events(sample(), withoutOverlay)))
}

func TestMatchesIsConjunction(t *testing.T) {
	t.Parallel()

	overlay := event.NewOverlay(map[string]event.FlagSet{"midterm": event.FlagSet(event.FlagFavorite)})
	rng := interval.New(base.Add(24*time.Hour), base.Add(72*time.Hour))
	target := sample()[1]

	full := New(
		WithKinds(event.KindExam),
		WithCourses("math201"),
		WithStatuses(event.StatusPending),
		WithQuery("midterm"),
		WithOverlay(overlay),
		RequireFavorite(),
		Within(rng),
	)
	require.True(t, Matches(target, full))

	breakers := map[string]Option{
		"kind":     WithKinds(event.KindMeeting),
		"course":   WithCourses("cs101"),
		"status":   WithStatuses(event.StatusActive),
		"query":    WithQuery("final"),
		"favorite": WithOverlay(event.Overlay{}),
		"saved":    RequireSaved(),
		"range":    Within(interval.New(base, base.Add(time.Hour))),
	}
	for name, breaker := range breakers {
		f := full
		breaker(&f)
		assert.False(t, Matches(target, f), "breaking %s must fail the match", name)
	}
}

func TestEventsIsLazyAndReiterable(t *testing.T) {
	t.Parallel()

	seq := Events(sample(), Filter{})

	first := 0
	for range seq {
		first++
		break
	}
	assert.Equal(t, 1, first)

	assert.Equal(t, Collect(seq), Collect(seq))
	assert.Equal(t, 4, Count(seq))
}

func TestWithinKeepsInstantaneousEventsInsideRange(t *testing.T) {
	t.Parallel()

	marker := event.CalendarEvent{ID: "marker", Start: base, End: base, Status: event.StatusActive}
	assert.True(t, Matches(marker, New(Within(interval.New(base, base.Add(time.Hour))))))
	assert.False(t, Matches(marker, New(Within(interval.New(base.Add(-time.Hour), base)))))
}

func TestValidate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Default().Validate())

	bad := Filter{
		Kinds:    map[event.Kind]struct{}{"lecture": {}},
		Statuses: map[event.Status]struct{}{"archived": {}},
		Range:    &interval.Interval{Start: base, End: base.Add(-time.Hour)},
	}
	var vErr *validation.Error
	require.True(t, errors.As(bad.Validate(), &vErr))
	assert.Len(t, vErr.FieldErrors, 3)
}

func TestParamsBuild(t *testing.T) {
	t.Parallel()

	f, err := Params{Kinds: []string{"exam,class_session"}, Statuses: []string{"pending"}, Query: "exam"}.Build(event.Overlay{})
	require.NoError(t, err)
	assert.Len(t, f.Kinds, 2)
	assert.Equal(t, []string{"midterm"}, ids(Collect(Events(sample(), f))))

	f, err = Params{Statuses: []string{"all"}}.Build(event.Overlay{})
	require.NoError(t, err)
	assert.Nil(t, f.Statuses)

	f, err = Params{}.Build(event.Overlay{})
	require.NoError(t, err)
	assert.Len(t, f.Statuses, 2)

	_, err = Params{Kinds: []string{"lecture"}, Statuses: []string{"archived"}}.Build(event.Overlay{})
	var vErr *validation.Error
	require.True(t, errors.As(err, &vErr))
	assert.Contains(t, vErr.FieldErrors, "kind")
	assert.Contains(t, vErr.FieldErrors, "status")
}
