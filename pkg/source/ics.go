package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/charmbracelet/log"
	"github.com/teambition/rrule-go"

	"github.com/matzehuels/timegrid/pkg/calendar"
	"github.com/matzehuels/timegrid/pkg/errors"
	"github.com/matzehuels/timegrid/pkg/httputil"
)

// DefaultMaxOccurrences caps the expansion of a single recurring event.
const DefaultMaxOccurrences = 5000

// ICS reads an iCalendar file or URL. Recurring events are expanded into
// one event per occurrence inside the requested window.
type ICS struct {
	Path     string           // local file, used when URL is empty
	URL      string           // http(s) feed
	Client   *httputil.Client // fetches URL; nil uses an uncached client
	Refresh  bool             // bypass the feed cache
	Hint     calendar.SourceHint
	Location *time.Location // for floating and all-day times
	Logger   *log.Logger

	MaxOccurrences int
}

func (s ICS) Events(ctx context.Context, w Window) ([]calendar.Event, error) {
	body, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	vevents, err := ParseICS(body, s.Location, s.logger())
	if err != nil {
		return nil, err
	}
	hint := s.Hint
	if hint.Kind == "" {
		hint.Kind = calendar.KindICS
	}
	return Expand(vevents, w, ExpandOptions{
		Hint:           hint,
		Location:       s.Location,
		MaxOccurrences: s.MaxOccurrences,
		Logger:         s.logger(),
	}), nil
}

func (s ICS) read(ctx context.Context) ([]byte, error) {
	if s.URL != "" {
		if err := errors.ValidateURL(s.URL); err != nil {
			return nil, err
		}
		c := s.Client
		if c == nil {
			c = httputil.NewClient(nil, nil)
		}
		return c.Fetch(ctx, s.URL, s.Refresh)
	}
	if err := errors.ValidatePath(s.Path); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "calendar file %s", s.Path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "open %s", s.Path)
	}
	defer f.Close()
	return io.ReadAll(f)
}

func (s ICS) logger() *log.Logger {
	if s.Logger == nil {
		return log.New(io.Discard)
	}
	return s.Logger
}

// VEvent is a parsed VEVENT before recurrence expansion.
type VEvent struct {
	UID         string
	Summary     string
	Description string
	Categories  []string
	Cancelled   bool

	Start  time.Time
	End    time.Time
	AllDay bool

	RRules       []string
	RDates       []time.Time
	ExDates      []time.Time
	RecurrenceID *time.Time // set on an override of one occurrence
}

// ParseICS parses every VEVENT in body. Events missing a UID or DTSTART are
// logged and skipped. Floating and date-only times are read in loc.
func ParseICS(body []byte, loc *time.Location, logger *log.Logger) ([]VEvent, error) {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidSource, "empty calendar")
	}
	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSource, err, "parse calendar")
	}

	var out []VEvent
	for _, ve := range cal.Events() {
		ev, err := parseVEvent(ve, loc)
		if err != nil {
			logger.Warn("skipping event", "uid", ev.UID, "err", err)
			continue
		}
		out = append(out, ev)
	}
	logger.Debug("parsed calendar", "events", len(out))
	return out, nil
}

func parseVEvent(ve *ical.VEvent, loc *time.Location) (VEvent, error) {
	var ev VEvent
	if p := ve.GetProperty(ical.ComponentPropertyUniqueId); p != nil {
		ev.UID = p.Value
	}
	if ev.UID == "" {
		return ev, fmt.Errorf("missing UID")
	}
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		ev.Summary = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		ev.Description = p.Value
	}
	for _, p := range ve.GetProperties(ical.ComponentPropertyCategories) {
		for _, c := range strings.Split(p.Value, ",") {
			if c = strings.TrimSpace(c); c != "" {
				ev.Categories = append(ev.Categories, c)
			}
		}
	}
	if p := ve.GetProperty(ical.ComponentPropertyStatus); p != nil {
		ev.Cancelled = strings.EqualFold(p.Value, "CANCELLED")
	}

	dtstart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtstart == nil {
		return ev, fmt.Errorf("missing DTSTART")
	}
	start, allDay, err := propTime(dtstart.Value, dtstart.ICalParameters, loc)
	if err != nil {
		return ev, fmt.Errorf("DTSTART: %w", err)
	}
	ev.Start, ev.AllDay = start, allDay

	switch {
	case ve.GetProperty(ical.ComponentPropertyDtEnd) != nil:
		p := ve.GetProperty(ical.ComponentPropertyDtEnd)
		if ev.End, _, err = propTime(p.Value, p.ICalParameters, loc); err != nil {
			return ev, fmt.Errorf("DTEND: %w", err)
		}
	case ve.GetProperty(ical.ComponentPropertyDuration) != nil:
		d, err := parseDuration(ve.GetProperty(ical.ComponentPropertyDuration).Value)
		if err != nil {
			return ev, fmt.Errorf("DURATION: %w", err)
		}
		ev.End = ev.Start.Add(d)
	case allDay:
		ev.End = ev.Start.AddDate(0, 0, 1)
	default:
		ev.End = ev.Start
	}

	for _, p := range ve.GetProperties(ical.ComponentPropertyRrule) {
		ev.RRules = append(ev.RRules, p.Value)
	}
	if ev.RDates, err = timeList(ve.GetProperties(ical.ComponentPropertyRdate), loc); err != nil {
		return ev, fmt.Errorf("RDATE: %w", err)
	}
	if ev.ExDates, err = timeList(ve.GetProperties(ical.ComponentPropertyExdate), loc); err != nil {
		return ev, fmt.Errorf("EXDATE: %w", err)
	}
	if p := ve.GetProperty(ical.ComponentPropertyRecurrenceId); p != nil {
		rid, _, err := propTime(p.Value, p.ICalParameters, loc)
		if err != nil {
			return ev, fmt.Errorf("RECURRENCE-ID: %w", err)
		}
		ev.RecurrenceID = &rid
	}
	return ev, nil
}

func timeList(props []*ical.IANAProperty, loc *time.Location) ([]time.Time, error) {
	var out []time.Time
	for _, p := range props {
		for _, v := range strings.Split(p.Value, ",") {
			if v = strings.TrimSpace(v); v == "" {
				continue
			}
			t, _, err := propTime(v, p.ICalParameters, loc)
			if err != nil {
				return nil, err
			}
			out = append(out, t)
		}
	}
	return out, nil
}

// propTime parses a DATE or DATE-TIME value. A TZID parameter names the
// zone; a trailing Z means UTC; anything else is floating and read in loc.
func propTime(v string, params map[string][]string, loc *time.Location) (t time.Time, dateOnly bool, err error) {
	v = strings.TrimSpace(v)
	if vals := params[string(ical.ParameterValue)]; len(vals) > 0 && strings.EqualFold(vals[0], "DATE") || len(v) == 8 {
		t, err = time.ParseInLocation("20060102", v, loc)
		return t, true, err
	}
	if strings.HasSuffix(v, "Z") {
		t, err = time.Parse("20060102T150405Z", v)
		return t, false, err
	}
	zone := loc
	if tzids := params[string(ical.ParameterTzid)]; len(tzids) > 0 {
		if z, err := time.LoadLocation(strings.Trim(tzids[0], `"`)); err == nil {
			zone = z
		}
	}
	t, err = time.ParseInLocation("20060102T150405", v, zone)
	return t, false, err
}

var durationRE = regexp.MustCompile(`^([+-])?P(?:(\d+)W)?(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// parseDuration parses an RFC 5545 DURATION such as PT1H30M or P1D.
func parseDuration(s string) (time.Duration, error) {
	m := durationRE.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil || s == "P" || s == "PT" {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	units := []time.Duration{7 * 24 * time.Hour, 24 * time.Hour, time.Hour, time.Minute, time.Second}
	var d time.Duration
	for i, unit := range units {
		if m[i+2] == "" {
			continue
		}
		n, err := strconv.Atoi(m[i+2])
		if err != nil {
			return 0, err
		}
		d += time.Duration(n) * unit
	}
	if m[1] == "-" {
		d = -d
	}
	return d, nil
}

// ExpandOptions configure [Expand].
type ExpandOptions struct {
	Hint           calendar.SourceHint
	Location       *time.Location
	MaxOccurrences int
	Logger         *log.Logger
}

// Expand turns parsed VEVENTs into events overlapping w. Recurring events
// produce one event per occurrence; an override (RECURRENCE-ID) replaces the
// occurrence it names, and cancelled events and occurrences are dropped.
// Occurrence IDs are the UID plus the occurrence start.
func Expand(vevents []VEvent, w Window, opts ExpandOptions) []calendar.Event {
	if opts.MaxOccurrences <= 0 {
		opts.MaxOccurrences = DefaultMaxOccurrences
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	overridden := map[string][]time.Time{}
	for _, ve := range vevents {
		if ve.RecurrenceID != nil {
			overridden[ve.UID] = append(overridden[ve.UID], *ve.RecurrenceID)
		}
	}

	var out []calendar.Event
	for _, ve := range vevents {
		switch {
		case ve.RecurrenceID != nil:
			if !ve.Cancelled && w.Overlaps(ve.Start, ve.End) {
				out = append(out, toEvent(ve, ve.Start, ve.End, instanceID(ve.UID, *ve.RecurrenceID), opts.Hint))
			}
		case ve.Cancelled:
		case len(ve.RRules) == 0 && len(ve.RDates) == 0:
			if w.Overlaps(ve.Start, ve.End) {
				out = append(out, toEvent(ve, ve.Start, ve.End, ve.UID, opts.Hint))
			}
		default:
			occ, err := occurrences(ve, overridden[ve.UID], w, opts.MaxOccurrences)
			if err != nil {
				logger.Warn("skipping recurrence", "uid", ve.UID, "err", err)
				continue
			}
			if len(occ) == opts.MaxOccurrences {
				logger.Warn("recurrence truncated", "uid", ve.UID, "cap", opts.MaxOccurrences)
			}
			dur := ve.End.Sub(ve.Start)
			for _, start := range occ {
				end := start.Add(dur)
				if ve.AllDay {
					end = start.AddDate(0, 0, max(1, int(dur.Hours()+12)/24))
				}
				if w.Overlaps(start, end) {
					out = append(out, toEvent(ve, start, end, instanceID(ve.UID, start), opts.Hint))
				}
			}
		}
	}
	SortByStart(out)
	return out
}

// occurrences returns the recurrence instants of ve whose interval can
// overlap w, skipping EXDATEs and overridden instants.
func occurrences(ve VEvent, overridden []time.Time, w Window, limit int) ([]time.Time, error) {
	var set rrule.Set
	set.DTStart(ve.Start)
	// A set carries one RRULE; further rules are rare and ignored.
	if len(ve.RRules) > 0 {
		opt, err := rrule.StrToROptionInLocation(ve.RRules[0], ve.Start.Location())
		if err != nil {
			return nil, err
		}
		opt.Dtstart = ve.Start
		r, err := rrule.NewRRule(*opt)
		if err != nil {
			return nil, err
		}
		set.RRule(r)
	}
	set.RDate(ve.Start)
	for _, t := range ve.RDates {
		set.RDate(t)
	}
	for _, t := range ve.ExDates {
		set.ExDate(t)
	}
	for _, t := range overridden {
		set.ExDate(t)
	}

	// Widen the lower bound by the event length so occurrences that start
	// before the window but run into it are kept.
	from := w.Start.Add(-max(ve.End.Sub(ve.Start), 0))
	iter := set.Iterator()
	var out []time.Time
	for {
		t, ok := iter()
		if !ok || !t.Before(w.End) || len(out) == limit {
			break
		}
		if t.Before(from) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func instanceID(uid string, start time.Time) string {
	return uid + "/" + start.UTC().Format("20060102T150405Z")
}

func toEvent(ve VEvent, start, end time.Time, id string, hint calendar.SourceHint) calendar.Event {
	for _, c := range ve.Categories {
		if strings.EqualFold(c, "holiday") || strings.EqualFold(c, "holidays") {
			hint.Holiday = true
		}
	}
	var notes []string
	if ve.Description != "" {
		notes = []string{ve.Description}
	}
	return calendar.Event{
		ID:     id,
		Title:  ve.Summary,
		Start:  start,
		End:    end,
		Source: hint,
		Notes:  notes,
		AllDay: ve.AllDay,
	}
}
