package records

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/example/study-planner/internal/event"
	"github.com/example/study-planner/internal/interval"
	"github.com/example/study-planner/internal/logging"
	"github.com/example/study-planner/internal/normalize"
	"github.com/example/study-planner/internal/recurrence"
)

// FileSource reads a snapshot file on every call so edits are picked up
// without a restart.
type FileSource struct {
	path     string
	location *time.Location
	engine   *recurrence.Engine
	logger   *slog.Logger
}

// NewFileSource returns a source reading path. Local timestamps and meeting
// dates are resolved in loc (UTC when nil).
func NewFileSource(path string, loc *time.Location, logger *slog.Logger) *FileSource {
	if loc == nil {
		loc = time.UTC
	}
	return &FileSource{
		path:     path,
		location: loc,
		engine:   recurrence.NewEngine(loc),
		logger:   logger,
	}
}

// Records loads the snapshot and expands course meetings that fall in rng.
// Entries that cannot be converted are logged and dropped.
func (s *FileSource) Records(ctx context.Context, rng interval.Interval) ([]normalize.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snap, err := s.load()
	if err != nil {
		return nil, err
	}
	return expand(ctx, snap.Convert(s.location), s.engine, rng, logging.FromContextOr(ctx, s.logger).With("source", s.path)), nil
}

// Overlay reads the flags section of the snapshot.
func (s *FileSource) Overlay(ctx context.Context) (event.Overlay, error) {
	if err := ctx.Err(); err != nil {
		return event.Overlay{}, err
	}
	snap, err := s.load()
	if err != nil {
		return event.Overlay{}, err
	}
	overlay, problems := snap.Overlay()
	logger := logging.FromContextOr(ctx, s.logger)
	for _, problem := range problems {
		logger.WarnContext(ctx, "flag ignored", "source", s.path, "error", problem)
	}
	return overlay, nil
}

func (s *FileSource) load() (Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("records: read %s: %w", s.path, err)
	}
	snap, err := Decode(data)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%s: %w", s.path, err)
	}
	return snap, nil
}

// Static serves a snapshot held in memory.
type Static struct {
	snapshot Snapshot
	location *time.Location
	engine   *recurrence.Engine
}

// NewStatic returns a source over snap.
func NewStatic(snap Snapshot, loc *time.Location) *Static {
	if loc == nil {
		loc = time.UTC
	}
	return &Static{snapshot: snap, location: loc, engine: recurrence.NewEngine(loc)}
}

// Records converts the held snapshot and expands meetings in rng.
func (s *Static) Records(ctx context.Context, rng interval.Interval) ([]normalize.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return expand(ctx, s.snapshot.Convert(s.location), s.engine, rng, logging.FromContextOr(ctx, nil)), nil
}

// Overlay returns the flags of the held snapshot.
func (s *Static) Overlay(ctx context.Context) (event.Overlay, error) {
	if err := ctx.Err(); err != nil {
		return event.Overlay{}, err
	}
	overlay, _ := s.snapshot.Overlay()
	return overlay, nil
}

func expand(ctx context.Context, conv Converted, engine *recurrence.Engine, rng interval.Interval, logger *slog.Logger) []normalize.Record {
	for _, problem := range conv.Problems {
		logger.WarnContext(ctx, "snapshot entry dropped", "error", problem)
	}
	out := conv.Records
	for _, meeting := range conv.Meetings {
		sessions, err := engine.Expand(meeting, rng)
		if err != nil {
			logger.WarnContext(ctx, "course meeting dropped", "course", meeting.CourseName, "error", err)
			continue
		}
		for _, sess := range sessions {
			out = append(out, normalize.FromSession(sess))
		}
	}
	return out
}

// Source is anything that yields raw records for a range.
type Source interface {
	Records(ctx context.Context, rng interval.Interval) ([]normalize.Record, error)
}

// Multi concatenates the records of several sources in order. The first
// failing source aborts the call.
type Multi []Source

// Records implements Source.
func (m Multi) Records(ctx context.Context, rng interval.Interval) ([]normalize.Record, error) {
	var out []normalize.Record
	for _, src := range m {
		recs, err := src.Records(ctx, rng)
		if err != nil {
			return nil, err
		}
		out = append(out, recs...)
	}
	return out, nil
}

// OverlaySource is implemented by sources that also carry user flags.
type OverlaySource interface {
	Overlay(ctx context.Context) (event.Overlay, error)
}

// Overlay merges the flags of every member that carries them.
func (m Multi) Overlay(ctx context.Context) (event.Overlay, error) {
	merged := make(map[string]event.FlagSet)
	for _, src := range m {
		flagged, ok := src.(OverlaySource)
		if !ok {
			continue
		}
		overlay, err := flagged.Overlay(ctx)
		if err != nil {
			return event.Overlay{}, err
		}
		for _, id := range overlay.IDs() {
			merged[id] |= overlay.Flags(id)
		}
	}
	return event.NewOverlay(merged), nil
}
