package application

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/example/study-planner/internal/event"
	"github.com/example/study-planner/internal/filter"
	"github.com/example/study-planner/internal/interval"
	"github.com/example/study-planner/internal/metrics"
	"github.com/example/study-planner/internal/normalize"
	"github.com/example/study-planner/internal/priority"
	"github.com/example/study-planner/internal/scheduler"
)

const serviceName = "PlannerService"

// RecordSource yields the raw records relevant to a range.
type RecordSource interface {
	Records(ctx context.Context, rng interval.Interval) ([]normalize.Record, error)
}

// OverlaySource is implemented by record sources that also carry user flags.
type OverlaySource interface {
	Overlay(ctx context.Context) (event.Overlay, error)
}

// PlannerService runs snapshot passes: every call reads the source, normalizes
// the records and computes the requested view from scratch.
type PlannerService struct {
	source    RecordSource
	window    scheduler.Window
	firstDay  time.Weekday
	location  *time.Location
	workers   int
	lookback  time.Duration
	lookahead time.Duration
	logger    *slog.Logger
	metrics   *metrics.Recorder
	now       func() time.Time
}

// Option customizes a PlannerService.
type Option func(*PlannerService)

// WithWindow bounds day schedules to w.
func WithWindow(w scheduler.Window) Option {
	return func(s *PlannerService) { s.window = w }
}

// WithFirstWeekday sets the day weeks start on.
func WithFirstWeekday(d time.Weekday) Option {
	return func(s *PlannerService) { s.firstDay = d }
}

// WithLocation sets the zone used to resolve calendar dates.
func WithLocation(loc *time.Location) Option {
	return func(s *PlannerService) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithWorkers caps concurrent day computations in a week.
func WithWorkers(n int) Option {
	return func(s *PlannerService) { s.workers = n }
}

// WithHorizon sets how far before and after now searches and urgency
// analysis look.
func WithHorizon(lookback, lookahead time.Duration) Option {
	return func(s *PlannerService) {
		s.lookback, s.lookahead = lookback, lookahead
	}
}

// WithLogger sets the fallback logger used when the context carries none.
func WithLogger(logger *slog.Logger) Option {
	return func(s *PlannerService) { s.logger = logger }
}

// WithMetrics records counters and timings on r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(s *PlannerService) { s.metrics = r }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *PlannerService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewPlannerService wires a service over source. Days span the whole day and
// weeks start on Monday in UTC unless options say otherwise.
func NewPlannerService(source RecordSource, opts ...Option) *PlannerService {
	s := &PlannerService{
		source:    source,
		window:    scheduler.DefaultWindow(),
		firstDay:  time.Monday,
		location:  time.UTC,
		lookback:  14 * 24 * time.Hour,
		lookahead: 120 * 24 * time.Hour,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = defaultLogger(s.logger)
	return s
}

func (s *PlannerService) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, serviceName, operation, attrs...)
}

// Location returns the zone calendar dates are resolved in.
func (s *PlannerService) Location() *time.Location {
	return s.location
}

// Now returns the service clock reading.
func (s *PlannerService) Now() time.Time {
	return s.now()
}

// ParseDate parses a YYYY-MM-DD date in the service zone. An empty value
// means today.
func (s *PlannerService) ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return interval.StartOfDay(s.now().In(s.location)), nil
	}
	date, err := time.ParseInLocation(time.DateOnly, value, s.location)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	return date, nil
}

// Snapshot reads and normalizes the records of rng. Records that fail to
// normalize are logged, counted and left out.
func (s *PlannerService) Snapshot(ctx context.Context, rng interval.Interval) (Snapshot, error) {
	if s == nil || s.source == nil {
		return Snapshot{}, ErrNoSource
	}
	if rng.IsMalformed() {
		return Snapshot{}, &ValidationError{FieldErrors: map[string]string{"range": "end must not precede start"}}
	}

	logger := s.log(ctx, "Snapshot", "range_start", rng.Start, "range_end", rng.End)
	recs, err := s.source.Records(ctx, rng)
	if err != nil {
		logger.ErrorContext(ctx, "failed to load records", "error", err, "error_kind", ErrorKind(err))
		return Snapshot{}, fmt.Errorf("application: load records: %w", err)
	}

	batch := normalize.NormalizeAll(recs)
	s.recordBatch(ctx, logger, recs, batch)
	loaded := len(batch.Events)
	batch.Events = slices.DeleteFunc(batch.Events, func(ev event.CalendarEvent) bool {
		return !touches(ev, rng)
	})

	overlay := event.Overlay{}
	if flagged, ok := s.source.(OverlaySource); ok {
		if overlay, err = flagged.Overlay(ctx); err != nil {
			logger.ErrorContext(ctx, "failed to load flags", "error", err, "error_kind", ErrorKind(err))
			return Snapshot{}, fmt.Errorf("application: load flags: %w", err)
		}
	}

	logger.DebugContext(ctx, "snapshot loaded",
		"event_count", len(batch.Events),
		"out_of_range_count", loaded-len(batch.Events),
		"skipped_count", len(batch.Skipped),
		"flagged_count", overlay.Len(),
	)
	return Snapshot{Range: rng, Events: batch.Events, Skipped: batch.Skipped, Overlay: overlay}, nil
}

// touches reports whether any part of ev falls in rng. Zero-length and
// malformed events count by their endpoints.
func touches(ev event.CalendarEvent, rng interval.Interval) bool {
	span := ev.Interval()
	if span.IsEmpty() || span.IsMalformed() {
		return interval.Contains(rng, span.Start) || interval.Contains(rng, span.End)
	}
	return interval.Overlaps(span, rng)
}

func (s *PlannerService) recordBatch(ctx context.Context, logger *slog.Logger, recs []normalize.Record, batch normalize.Batch) {
	normalized := make(map[normalize.RecordKind]int)
	for _, rec := range recs {
		normalized[rec.Kind]++
	}
	for _, skipped := range batch.Skipped {
		normalized[skipped.Kind]--
		s.metrics.RecordSkipped(skipped.Kind.String())
		logger.WarnContext(ctx, "record skipped",
			"index", skipped.Index,
			"record_kind", skipped.Kind.String(),
			"error", skipped.Err,
		)
	}
	for kind, n := range normalized {
		for range n {
			s.metrics.RecordNormalized(kind.String())
		}
	}
}

// Day computes the schedule of the calendar day holding date.
func (s *PlannerService) Day(ctx context.Context, date time.Time) (DayView, error) {
	started := time.Now()
	day := interval.StartOfDay(date.In(s.location))
	logger := s.log(ctx, "Day", "date", day.Format(time.DateOnly))

	// One day of padding picks up events that spill over midnight.
	snap, err := s.Snapshot(ctx, interval.New(day.AddDate(0, 0, -1), day.AddDate(0, 0, 2)))
	if err != nil {
		return DayView{}, err
	}
	schedule, err := scheduler.ComputeDaySchedule(snap.Events, day, s.window)
	if err != nil {
		logger.ErrorContext(ctx, "failed to compute day", "error", err, "error_kind", ErrorKind(err))
		return DayView{}, err
	}

	view := DayView{Schedule: schedule, Conflicts: scheduler.DetectConflicts(schedule)}
	s.recordDay(ctx, logger, view)
	s.metrics.ObserveComputation(metrics.ScopeDay, time.Since(started))
	logger.With(
		"event_count", len(schedule.Events),
		"busy_minutes", schedule.BusyMinutes(),
		"conflict_count", len(view.Conflicts),
	).InfoContext(ctx, "day computed")
	return view, nil
}

func (s *PlannerService) recordDay(ctx context.Context, logger *slog.Logger, view DayView) {
	if n := len(view.Schedule.Malformed); n > 0 {
		s.metrics.RecordMalformed(n)
		logger.WarnContext(ctx, "malformed events ignored",
			"date", view.Schedule.Date.Format(time.DateOnly),
			"event_ids", view.Schedule.Malformed,
		)
	}
	s.metrics.RecordConflicts(len(view.Conflicts))
}

// Week computes the seven days of the week holding date and their summary.
func (s *PlannerService) Week(ctx context.Context, date time.Time) (WeekView, error) {
	started := time.Now()
	start := scheduler.StartOfWeek(date.In(s.location), s.firstDay)
	logger := s.log(ctx, "Week", "week_start", start.Format(time.DateOnly))

	snap, err := s.Snapshot(ctx, interval.New(start.AddDate(0, 0, -1), start.AddDate(0, 0, scheduler.DaysPerWeek+1)))
	if err != nil {
		return WeekView{}, err
	}
	days, err := scheduler.ComputeWeek(ctx, snap.Events, start, s.window, scheduler.WeekOptions{Workers: s.workers})
	if err != nil {
		logger.ErrorContext(ctx, "failed to compute week", "error", err, "error_kind", ErrorKind(err))
		return WeekView{}, err
	}
	for _, day := range days {
		s.recordDay(ctx, logger, DayView{Schedule: day, Conflicts: scheduler.DetectConflicts(day)})
	}

	summary, err := scheduler.ComputeWeekSummary(days, s.now())
	if err != nil {
		logger.ErrorContext(ctx, "failed to summarize week", "error", err, "error_kind", ErrorKind(err))
		return WeekView{}, err
	}
	s.metrics.ObserveComputation(metrics.ScopeWeek, time.Since(started))
	logger.With(
		"event_count", summary.TotalEvents,
		"busy_hours", summary.BusyHours,
		"conflicting_slots", summary.ConflictingSlots,
	).InfoContext(ctx, "week computed")
	return WeekView{Days: days, Summary: summary}, nil
}

// horizon is the range searches and urgency analysis read when the caller
// gives none.
func (s *PlannerService) horizon() interval.Interval {
	now := s.now()
	return interval.New(now.Add(-s.lookback), now.Add(s.lookahead))
}

// Search returns the events matching params, ordered by start then id. When
// rng is nil the service horizon around now is searched.
func (s *PlannerService) Search(ctx context.Context, params filter.Params, rng *interval.Interval) ([]event.CalendarEvent, error) {
	started := time.Now()
	logger := s.log(ctx, "Search", "query", params.Query)

	f, err := params.Build(event.Overlay{})
	if err != nil {
		logger.WarnContext(ctx, "invalid search", "error", err, "error_kind", ErrorKind(err))
		return nil, err
	}
	bounds := s.horizon()
	if rng != nil {
		bounds = *rng
	}
	f.Range = &bounds
	if err := f.Validate(); err != nil {
		logger.WarnContext(ctx, "invalid search", "error", err, "error_kind", ErrorKind(err))
		return nil, err
	}

	snap, err := s.Snapshot(ctx, bounds)
	if err != nil {
		return nil, err
	}
	f.Overlay = snap.Overlay

	found := filter.Collect(filter.Events(snap.Events, f))
	slices.SortStableFunc(found, func(a, b event.CalendarEvent) int {
		if c := a.Start.Compare(b.Start); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	s.metrics.ObserveComputation(metrics.ScopeSearch, time.Since(started))
	logger.With("result_count", len(found)).InfoContext(ctx, "events searched")
	return found, nil
}

// Data returns the normalized events, skipped records and flags inside the
// service horizon.
func (s *PlannerService) Data(ctx context.Context) (Snapshot, error) {
	return s.Snapshot(ctx, s.horizon())
}

// Urgent ranks the pending work inside the service horizon as of now.
func (s *PlannerService) Urgent(ctx context.Context) (UrgentView, error) {
	started := time.Now()
	logger := s.log(ctx, "Urgent")

	snap, err := s.Snapshot(ctx, s.horizon())
	if err != nil {
		return UrgentView{}, err
	}
	now := s.now()
	view := UrgentView{
		Now:      now,
		Analysis: priority.Analyze(snap.Events, now),
		Ranked:   priority.Rank(snap.Events, now),
	}
	s.metrics.ObserveComputation(metrics.ScopeUrgent, time.Since(started))
	logger.With("pending_count", view.Analysis.TotalPending).InfoContext(ctx, "urgency analyzed")
	return view, nil
}

// MostUrgent returns the single highest ranked pending event, or ErrNotFound
// when nothing is pending.
func (s *PlannerService) MostUrgent(ctx context.Context) (priority.Ranked, error) {
	snap, err := s.Snapshot(ctx, s.horizon())
	if err != nil {
		return priority.Ranked{}, err
	}
	top, ok := priority.MostUrgentPending(snap.Events, s.now())
	if !ok {
		return priority.Ranked{}, ErrNotFound
	}
	return top, nil
}
