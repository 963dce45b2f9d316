// Package metrics exposes Prometheus collectors for the planner engine.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "planner"

// Scope labels which computation a sample belongs to.
type Scope string

const (
	ScopeDay    Scope = "day"
	ScopeWeek   Scope = "week"
	ScopeSearch Scope = "search"
	ScopeUrgent Scope = "urgent"
)

// Recorder records normalization data quality and schedule computation
// counters. A nil Recorder discards everything.
type Recorder struct {
	normalized   *prometheus.CounterVec
	skipped      *prometheus.CounterVec
	malformed    prometheus.Counter
	conflicts    prometheus.Counter
	computations *prometheus.CounterVec
	duration     *prometheus.HistogramVec
}

// NewRecorder registers the planner collectors on reg. A nil reg uses the
// default registerer. Collectors that are already registered are reused.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	normalized := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "records_normalized_total",
		Help:      "Source records normalized into calendar events.",
	}, []string{"kind"})
	skipped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "records_skipped_total",
		Help:      "Source records dropped because they could not be normalized.",
	}, []string{"kind"})
	malformed := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "malformed_events_total",
		Help:      "Events ending before they start, seen during day computation.",
	})
	conflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "conflict_groups_total",
		Help:      "Busy slots holding more than one event.",
	})
	computations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "computations_total",
		Help:      "Planner computations by scope.",
	}, []string{"scope"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "computation_duration_seconds",
		Help:      "Wall time of planner computations, including record loading.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"scope"})

	var err error
	if normalized, err = register(reg, normalized); err != nil {
		return nil, err
	}
	if skipped, err = register(reg, skipped); err != nil {
		return nil, err
	}
	if malformed, err = register(reg, malformed); err != nil {
		return nil, err
	}
	if conflicts, err = register(reg, conflicts); err != nil {
		return nil, err
	}
	if computations, err = register(reg, computations); err != nil {
		return nil, err
	}
	if duration, err = register(reg, duration); err != nil {
		return nil, err
	}

	return &Recorder{
		normalized:   normalized,
		skipped:      skipped,
		malformed:    malformed,
		conflicts:    conflicts,
		computations: computations,
		duration:     duration,
	}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordNormalized counts a normalized record of the given kind.
func (r *Recorder) RecordNormalized(kind string) {
	if r == nil {
		return
	}
	r.normalized.WithLabelValues(kind).Inc()
}

// RecordSkipped counts a dropped record of the given kind.
func (r *Recorder) RecordSkipped(kind string) {
	if r == nil {
		return
	}
	r.skipped.WithLabelValues(kind).Inc()
}

// RecordMalformed counts events with inverted intervals.
func (r *Recorder) RecordMalformed(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.malformed.Add(float64(n))
}

// RecordConflicts counts conflict groups.
func (r *Recorder) RecordConflicts(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.conflicts.Add(float64(n))
}

// ObserveComputation counts a computation and records how long it took.
func (r *Recorder) ObserveComputation(scope Scope, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.computations.WithLabelValues(string(scope)).Inc()
	r.duration.WithLabelValues(string(scope)).Observe(elapsed.Seconds())
}
