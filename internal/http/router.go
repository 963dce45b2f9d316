package http

import (
	"net/http"
	"strings"

	"github.com/example/study-planner/internal/metrics"
)

type RouterConfig struct {
	Planner *PlannerHandler
	// Metrics serves /metrics when set, typically promhttp.HandlerFor.
	Metrics http.Handler
	// Instrument wraps every API route with request metrics when set.
	Instrument *metrics.HTTP
	Middleware []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	get := func(pattern, name string, handle http.HandlerFunc) {
		mux.Handle(pattern, cfg.Instrument.Wrap(name, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				methodNotAllowed(w, http.MethodGet, http.MethodHead)
				return
			}
			handle(w, r)
		})))
	}

	if cfg.Planner != nil {
		get("/api/health", "health", cfg.Planner.Health)
		get("/api/schedule/day", "day", cfg.Planner.Day)
		get("/api/schedule/week", "week", cfg.Planner.Week)
		get("/api/events", "events", cfg.Planner.Events)
		get("/api/highest-weight-event", "highest_weight_event", cfg.Planner.HighestWeightEvent)
		get("/api/student-data", "student_data", cfg.Planner.StudentData)
	}
	if cfg.Metrics != nil {
		mux.Handle("/metrics", cfg.Metrics)
	}

	var handler http.Handler = mux
	if len(cfg.Middleware) > 0 {
		for i := len(cfg.Middleware) - 1; i >= 0; i-- {
			if cfg.Middleware[i] != nil {
				handler = cfg.Middleware[i](handler)
			}
		}
	}

	return handler
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
