package source

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
	"time"

	"github.com/matzehuels/timegrid/pkg/calendar"
	"github.com/matzehuels/timegrid/pkg/errors"
)

// JSONFile reads event records from a file, or from Reader when Path is "-".
//
// The file holds an array of records, or an object with an "events" array:
//
//	[{"id": "a1", "title": "Appointment", "startTime": "2025-07-14T09:00:00-04:00",
//	  "endTime": "2025-07-14T09:50:00-04:00", "source": "simplepractice"}]
//
// Timestamps without an offset are read in Location. A date without a time
// marks an all-day event. Records without an id get a deterministic one.
type JSONFile struct {
	Path     string
	Reader   io.Reader
	Location *time.Location
	Defaults calendar.SourceHint // applied where a record leaves a field empty
}

func (f JSONFile) Events(ctx context.Context, w Window) ([]calendar.Event, error) {
	var (
		data []byte
		err  error
	)
	if f.Path == "-" && f.Reader != nil {
		data, err = io.ReadAll(f.Reader)
	} else {
		if err := errors.ValidatePath(f.Path); err != nil {
			return nil, err
		}
		data, err = os.ReadFile(f.Path)
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "events file %s", f.Path)
		}
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "read events %s", f.Path)
	}

	evs, err := ParseJSON(data, f.Location, f.Defaults)
	if err != nil {
		return nil, err
	}
	return Filter(evs, w), nil
}

// record is one event as exported by the practice dashboard. Notes may be
// a string or a list under any of three names.
type record struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	StartTime   string     `json:"startTime"`
	EndTime     string     `json:"endTime"`
	Source      string     `json:"source"`
	CalendarID  string     `json:"calendarId"`
	Holiday     bool       `json:"holiday"`
	AllDay      bool       `json:"allDay"`
	Notes       stringList `json:"notes"`
	EventNotes  stringList `json:"eventNotes"`
	ActionItems stringList `json:"actionItems"`
}

// stringList decodes either a JSON string or an array of strings.
type stringList []string

func (s *stringList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*s = nil
		return nil
	}
	if b[0] == '"' {
		var one string
		if err := json.Unmarshal(b, &one); err != nil {
			return err
		}
		if one = strings.TrimSpace(one); one != "" {
			*s = stringList{one}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return err
	}
	*s = many
	return nil
}

// ParseJSON decodes event records. It fails with INVALID_SOURCE on
// malformed JSON or an unparseable timestamp.
func ParseJSON(data []byte, loc *time.Location, defaults calendar.SourceHint) ([]calendar.Event, error) {
	if loc == nil {
		loc = time.Local
	}
	var recs []record
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var env struct {
			Events []record `json:"events"`
		}
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidSource, err, "decode events")
		}
		recs = env.Events
	} else if err := json.Unmarshal(trimmed, &recs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSource, err, "decode events")
	}

	evs := make([]calendar.Event, 0, len(recs))
	for i, r := range recs {
		ev, err := r.event(loc, defaults)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidSource, err, "event %d (%q)", i, r.Title)
		}
		evs = append(evs, ev)
	}
	return calendar.WithIDs(evs), nil
}

func (r record) event(loc *time.Location, defaults calendar.SourceHint) (calendar.Event, error) {
	if strings.TrimSpace(r.StartTime) == "" {
		return calendar.Event{}, errors.New(errors.ErrCodeInvalidInput, "missing startTime")
	}
	start, startDate, err := parseTimestamp(r.StartTime, loc)
	if err != nil {
		return calendar.Event{}, err
	}
	end, endDate, err := parseTimestamp(r.EndTime, loc)
	if err != nil {
		return calendar.Event{}, err
	}
	allDay := r.AllDay || startDate
	switch {
	case allDay && (endDate || end.IsZero()) && !end.After(start):
		end = start.AddDate(0, 0, 1)
	case end.IsZero():
		end = start
	}

	hint := calendar.SourceHint{Kind: r.Source, CalendarID: r.CalendarID, Holiday: r.Holiday}
	if hint.Kind == "" {
		hint.Kind = defaults.Kind
	}
	if hint.CalendarID == "" {
		hint.CalendarID = defaults.CalendarID
	}
	hint.Holiday = hint.Holiday || defaults.Holiday

	var notes []string
	for _, list := range []stringList{r.EventNotes, r.Notes, r.ActionItems} {
		notes = append(notes, list...)
	}

	return calendar.Event{
		ID:     r.ID,
		Title:  r.Title,
		Start:  start,
		End:    end,
		Source: hint,
		Notes:  notes,
		AllDay: allDay,
	}, nil
}

var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// parseTimestamp accepts RFC 3339, an offset-less local time, or a bare
// date. dateOnly reports the last case. An empty string parses as the zero
// time so that a missing end can be defaulted by the caller.
func parseTimestamp(s string, loc *time.Location) (t time.Time, dateOnly bool, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, false, nil
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, false, nil
		}
	}
	if t, err := time.ParseInLocation("2006-01-02", s, loc); err == nil {
		return t, true, nil
	}
	return time.Time{}, false, errors.New(errors.ErrCodeInvalidFormat, "unrecognized timestamp %q", s)
}
