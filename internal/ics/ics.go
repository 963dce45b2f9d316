// Package ics turns iCalendar files into raw planner records.
//
// Timed VEVENTs become items and all-day VEVENTs become all-day items, or
// holidays when the source is configured as a holiday calendar. Recurring
// events are expanded with their RRULE and EXDATE within the requested range.
package ics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	"github.com/example/study-planner/internal/event"
	"github.com/example/study-planner/internal/interval"
	"github.com/example/study-planner/internal/logging"
	"github.com/example/study-planner/internal/normalize"
)

// Options controls how VEVENTs are mapped.
type Options struct {
	// Holidays maps all-day events to holiday records for CountryCode.
	Holidays    bool
	CountryCode string
	// Type is the item type used when CATEGORIES names no known kind.
	// Defaults to "personal".
	Type string
	// Location anchors floating times and all-day dates. UTC when nil.
	Location *time.Location
	// MaxOccurrences caps the expansion of one recurring event. Zero means 500.
	MaxOccurrences int
}

func (o Options) withDefaults() Options {
	if o.Type == "" {
		o.Type = string(event.KindPersonal)
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.MaxOccurrences <= 0 {
		o.MaxOccurrences = 500
	}
	return o
}

// ErrMissingUID is reported for a VEVENT without a UID.
var ErrMissingUID = errors.New("ics: missing UID")

// Source reads a set of .ics files on every call.
type Source struct {
	paths  []string
	opts   Options
	logger *slog.Logger
}

// NewSource returns a source over paths.
func NewSource(paths []string, opts Options, logger *slog.Logger) *Source {
	return &Source{paths: paths, opts: opts.withDefaults(), logger: logger}
}

// Records parses every file and returns the records that fall in rng.
// Individual VEVENTs that cannot be read are logged and skipped.
func (s *Source) Records(ctx context.Context, rng interval.Interval) ([]normalize.Record, error) {
	logger := logging.FromContextOr(ctx, s.logger)
	var out []normalize.Record
	for _, path := range s.paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("ics: open %s: %w", path, err)
		}
		recs, problems, err := Parse(f, s.opts, rng)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("ics: %s: %w", path, err)
		}
		for _, problem := range problems {
			logger.WarnContext(ctx, "ics event skipped", "source", path, "error", problem)
		}
		out = append(out, recs...)
	}
	return out, nil
}

// Parse reads one calendar. Problems lists the VEVENTs that were skipped; the
// error is only set when the calendar itself cannot be parsed.
func Parse(r io.Reader, opts Options, rng interval.Interval) ([]normalize.Record, []error, error) {
	opts = opts.withDefaults()
	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return nil, nil, err
	}

	var (
		out      []normalize.Record
		problems []error
	)
	for _, ve := range cal.Events() {
		parsed, err := parseVEvent(ve, opts)
		if err != nil {
			problems = append(problems, err)
			continue
		}
		occurrences, err := parsed.occurrences(rng, opts)
		if err != nil {
			problems = append(problems, fmt.Errorf("ics: %s: %w", parsed.uid, err))
			continue
		}
		for _, occ := range occurrences {
			out = append(out, parsed.record(occ, opts))
		}
	}
	return out, problems, nil
}

type vevent struct {
	uid         string
	summary     string
	description string
	location    string
	categories  []string
	start       time.Time
	end         time.Time
	allDay      bool
	rrule       string
	exDates     []time.Time
}

func parseVEvent(ve *ical.VEvent, opts Options) (vevent, error) {
	var out vevent
	uid := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uid == nil || strings.TrimSpace(uid.Value) == "" {
		return out, ErrMissingUID
	}
	out.uid = strings.TrimSpace(uid.Value)

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.summary = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		out.description = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		out.location = p.Value
	}
	for _, p := range ve.GetProperties(ical.ComponentPropertyCategories) {
		for _, c := range strings.Split(p.Value, ",") {
			if c = strings.TrimSpace(c); c != "" {
				out.categories = append(out.categories, c)
			}
		}
	}

	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil {
		return out, fmt.Errorf("ics: %s: missing DTSTART", out.uid)
	}
	out.allDay = isDateValue(dtStart)

	var err error
	if out.allDay {
		if out.start, err = parseICSTime(dateOnly(dtStart.Value), opts.Location); err != nil {
			return out, fmt.Errorf("ics: %s: DTSTART: %w", out.uid, err)
		}
		out.end = out.start.AddDate(0, 0, 1)
		if dtEnd := ve.GetProperty(ical.ComponentPropertyDtEnd); dtEnd != nil {
			if end, err := parseICSTime(dateOnly(dtEnd.Value), opts.Location); err == nil && end.After(out.start) {
				out.end = end
			}
		}
	} else {
		if out.start, err = ve.GetStartAt(); err != nil {
			return out, fmt.Errorf("ics: %s: DTSTART: %w", out.uid, err)
		}
		out.start = anchorFloating(out.start, dtStart, opts.Location)
		out.end = out.start
		if dtEnd := ve.GetProperty(ical.ComponentPropertyDtEnd); dtEnd != nil {
			end, err := ve.GetEndAt()
			if err != nil {
				return out, fmt.Errorf("ics: %s: DTEND: %w", out.uid, err)
			}
			out.end = anchorFloating(end, dtEnd, opts.Location)
		}
	}

	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		out.rrule = p.Value
	}
	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			if t, err := parseICSTime(part, opts.Location); err == nil {
				out.exDates = append(out.exDates, t)
			}
		}
	}
	return out, nil
}

func isDateValue(p *ical.IANAProperty) bool {
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

// dateOnly strips any time part from a DATE value.
func dateOnly(v string) string {
	v = strings.TrimSpace(v)
	if i := strings.IndexByte(v, 'T'); i >= 0 {
		return v[:i]
	}
	return v
}

// anchorFloating re-reads a floating local time (no TZID, no Z) in loc.
func anchorFloating(t time.Time, p *ical.IANAProperty, loc *time.Location) time.Time {
	if strings.HasSuffix(p.Value, "Z") {
		return t
	}
	if tz, ok := p.ICalParameters["TZID"]; ok && len(tz) > 0 {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc)
}

func parseICSTime(v string, loc *time.Location) (time.Time, error) {
	v = strings.TrimSpace(v)
	switch {
	case v == "":
		return time.Time{}, errors.New("ics: empty time value")
	case strings.HasSuffix(v, "Z"):
		return time.Parse("20060102T150405Z", v)
	case strings.Contains(v, "T"):
		return time.ParseInLocation("20060102T150405", v, loc)
	default:
		return time.ParseInLocation("20060102", v, loc)
	}
}

// occurrences lists the [start, end) spans of the event that touch rng.
func (v vevent) occurrences(rng interval.Interval, opts Options) ([]interval.Interval, error) {
	base := interval.New(v.start, v.end)
	if v.rrule == "" {
		if touches(base, rng) {
			return []interval.Interval{base}, nil
		}
		return nil, nil
	}

	rule, err := rrule.StrToRRule(v.rrule)
	if err != nil {
		return nil, fmt.Errorf("RRULE %q: %w", v.rrule, err)
	}
	rule.DTStart(v.start)

	var set rrule.Set
	set.RRule(rule)
	for _, ex := range v.exDates {
		set.ExDate(ex.In(v.start.Location()))
	}

	length := base.Duration()
	starts := set.Between(rng.Start.Add(-length).In(v.start.Location()), rng.End.In(v.start.Location()), true)
	if len(starts) > opts.MaxOccurrences {
		starts = starts[:opts.MaxOccurrences]
	}
	out := make([]interval.Interval, 0, len(starts))
	for _, s := range starts {
		occ := interval.New(s, s.Add(length))
		if touches(occ, rng) {
			out = append(out, occ)
		}
	}
	return out, nil
}

func touches(iv, rng interval.Interval) bool {
	if iv.IsEmpty() {
		return interval.Contains(rng, iv.Start)
	}
	return interval.Overlaps(iv, rng)
}

func (v vevent) record(occ interval.Interval, opts Options) normalize.Record {
	if v.allDay && opts.Holidays {
		return normalize.FromHoliday(normalize.Holiday{
			Date:        occ.Start.Format(time.DateOnly),
			LocalName:   v.summary,
			Name:        v.summary,
			CountryCode: opts.CountryCode,
			Location:    opts.Location,
		})
	}

	id := v.uid
	if v.rrule != "" {
		id = fmt.Sprintf("%s_%d", v.uid, occ.Start.Unix())
	}
	itemType := opts.Type
	for _, c := range v.categories {
		if k, ok := event.ParseKind(c); ok {
			itemType = string(k)
			break
		}
	}
	return normalize.FromItem(normalize.Item{
		ID:          "ics-" + id,
		Title:       v.summary,
		Description: v.description,
		Location:    v.location,
		Type:        itemType,
		Start:       occ.Start,
		End:         occ.End,
		AllDay:      v.allDay,
		Tags:        lowerAll(v.categories),
		Metadata:    map[string]string{"ics_uid": v.uid},
	})
}

func lowerAll(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(v)
	}
	return out
}
