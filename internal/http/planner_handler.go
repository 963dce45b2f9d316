package http

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/example/study-planner/internal/application"
	"github.com/example/study-planner/internal/event"
	"github.com/example/study-planner/internal/filter"
	"github.com/example/study-planner/internal/interval"
)

type plannerService interface {
	ParseDate(value string) (time.Time, error)
	Now() time.Time
	Day(ctx context.Context, date time.Time) (application.DayView, error)
	Week(ctx context.Context, date time.Time) (application.WeekView, error)
	Search(ctx context.Context, params filter.Params, rng *interval.Interval) ([]event.CalendarEvent, error)
	Urgent(ctx context.Context) (application.UrgentView, error)
	Data(ctx context.Context) (application.Snapshot, error)
}

// PlannerHandler serves the schedule, search and urgency endpoints.
type PlannerHandler struct {
	service   plannerService
	logger    *slog.Logger
	responder responder
}

func NewPlannerHandler(service plannerService, logger *slog.Logger) *PlannerHandler {
	return &PlannerHandler{service: service, logger: logger, responder: newResponder(logger)}
}

func (h *PlannerHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, healthResponse{Status: "ok", Time: formatTime(h.service.Now())})
}

func (h *PlannerHandler) Day(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	date, err := h.service.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	view, err := h.service.Day(r.Context(), date)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	handlerLogger(r.Context(), h.logger, "PlannerHandler", "Day").
		DebugContext(r.Context(), "day rendered", "date", view.Schedule.Date.Format(time.DateOnly))
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toDayDTO(view.Schedule, view.Conflicts))
}

func (h *PlannerHandler) Week(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	date, err := h.service.ParseDate(r.URL.Query().Get("start"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	view, err := h.service.Week(r.Context(), date)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toWeekDTO(view))
}

func (h *PlannerHandler) Events(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	params, err := buildSearchParams(query)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}
	rng, err := h.buildRange(query)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	events, err := h.service.Search(r.Context(), params, rng)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	handlerLogger(r.Context(), h.logger, "PlannerHandler", "Events").
		DebugContext(r.Context(), "events listed", "result_count", len(events))
	h.responder.writeJSON(r.Context(), w, http.StatusOK, eventsResponse{
		Events: toEventDTOs(events),
		Count:  len(events),
	})
}

func (h *PlannerHandler) HighestWeightEvent(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	view, err := h.service.Urgent(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toUrgentDTO(view))
}

// StudentData serves the normalized data set the other endpoints compute
// from, with the records that were skipped and the user flags.
func (h *PlannerHandler) StudentData(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	snap, err := h.service.Data(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toStudentDataDTO(snap))
}

func buildSearchParams(values url.Values) (filter.Params, error) {
	params := filter.Params{
		Kinds:    values["kind"],
		Courses:  values["course"],
		Statuses: values["status"],
		Query:    strings.TrimSpace(values.Get("q")),
	}
	var err error
	if params.Favorite, err = parseFlag(values.Get("favorite")); err != nil {
		return filter.Params{}, err
	}
	if params.Saved, err = parseFlag(values.Get("saved")); err != nil {
		return filter.Params{}, err
	}
	return params, nil
}

func parseFlag(value string) (bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, errInvalidBoolean
	}
	return b, nil
}

// buildRange reads from/to dates. Either bound alone searches one day from
// it; to is inclusive.
func (h *PlannerHandler) buildRange(values url.Values) (*interval.Interval, error) {
	from, to := strings.TrimSpace(values.Get("from")), strings.TrimSpace(values.Get("to"))
	if from == "" && to == "" {
		return nil, nil
	}
	if from == "" {
		from = to
	}
	if to == "" {
		to = from
	}
	start, err := h.service.ParseDate(from)
	if err != nil {
		return nil, err
	}
	end, err := h.service.ParseDate(to)
	if err != nil {
		return nil, err
	}
	rng := interval.New(start, end.AddDate(0, 0, 1))
	return &rng, nil
}

type healthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

type eventsResponse struct {
	Events []eventDTO `json:"events"`
	Count  int        `json:"count"`
}
