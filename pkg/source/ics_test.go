package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/timegrid/pkg/calendar"
	"github.com/matzehuels/timegrid/pkg/errors"
	"github.com/matzehuels/timegrid/pkg/httputil"
)

var sampleICS = strings.Join([]string{
	"BEGIN:VCALENDAR",
	"VERSION:2.0",
	"PRODID:-//timegrid//test//EN",
	"BEGIN:VEVENT",
	"UID:standup@example.com",
	"DTSTAMP:20250701T000000Z",
	"DTSTART:20250707T090000Z",
	"DTEND:20250707T100000Z",
	"SUMMARY:Standup",
	"RRULE:FREQ=DAILY;COUNT=14",
	"EXDATE:20250715T090000Z",
	"END:VEVENT",
	"BEGIN:VEVENT",
	"UID:standup@example.com",
	"DTSTAMP:20250701T000000Z",
	"RECURRENCE-ID:20250716T090000Z",
	"DTSTART:20250716T130000Z",
	"DTEND:20250716T140000Z",
	"SUMMARY:Standup (moved)",
	"END:VEVENT",
	"BEGIN:VEVENT",
	"UID:lunch@example.com",
	"DTSTAMP:20250701T000000Z",
	"DTSTART:20250718T120000",
	"DURATION:PT45M",
	"SUMMARY:Lunch\\, downtown",
	"DESCRIPTION:Bring the forms",
	"END:VEVENT",
	"BEGIN:VEVENT",
	"UID:dayoff@example.com",
	"DTSTAMP:20250701T000000Z",
	"DTSTART;VALUE=DATE:20250714",
	"CATEGORIES:Holiday",
	"SUMMARY:Day off",
	"END:VEVENT",
	"BEGIN:VEVENT",
	"UID:cancelled@example.com",
	"DTSTAMP:20250701T000000Z",
	"DTSTART:20250717T150000Z",
	"DTEND:20250717T160000Z",
	"STATUS:CANCELLED",
	"SUMMARY:Cancelled",
	"END:VEVENT",
	"BEGIN:VEVENT",
	"UID:broken@example.com",
	"DTSTAMP:20250701T000000Z",
	"SUMMARY:No start",
	"END:VEVENT",
	"END:VCALENDAR",
	"",
}, "\r\n")

func TestParseICS(t *testing.T) {
	vevents, err := ParseICS([]byte(sampleICS), time.UTC, nil)
	if err != nil {
		t.Fatal(err)
	}
	// The VEVENT without DTSTART is skipped.
	if len(vevents) != 5 {
		t.Fatalf("got %d VEVENTs, want 5", len(vevents))
	}
	lunch := vevents[2]
	if lunch.Summary != "Lunch, downtown" || lunch.End.Sub(lunch.Start) != 45*time.Minute {
		t.Errorf("lunch = %+v", lunch)
	}
	if !vevents[3].AllDay || vevents[3].End.Sub(vevents[3].Start) != 24*time.Hour {
		t.Errorf("all-day = %+v", vevents[3])
	}
	if vevents[1].RecurrenceID == nil {
		t.Error("override lost its RECURRENCE-ID")
	}
}

func TestParseICSEmpty(t *testing.T) {
	if _, err := ParseICS([]byte("  "), time.UTC, nil); !errors.Is(err, errors.ErrCodeInvalidSource) {
		t.Errorf("ParseICS(empty) error = %v", err)
	}
}

func TestExpand(t *testing.T) {
	vevents, err := ParseICS([]byte(sampleICS), time.UTC, nil)
	if err != nil {
		t.Fatal(err)
	}
	evs := Expand(vevents, week(), ExpandOptions{Hint: calendar.SourceHint{Kind: calendar.KindGoogle}})

	var titles []string
	ids := map[string]bool{}
	for _, ev := range evs {
		titles = append(titles, ev.Start.Format("Jan 2 15:04")+" "+ev.Title)
		ids[ev.ID] = true
	}
	want := []string{
		"Jul 14 00:00 Day off",
		"Jul 14 09:00 Standup",
		"Jul 16 13:00 Standup (moved)",
		"Jul 17 09:00 Standup",
		"Jul 18 09:00 Standup",
		"Jul 18 12:00 Lunch, downtown",
		"Jul 19 09:00 Standup",
		"Jul 20 09:00 Standup",
	}
	if strings.Join(titles, "\n") != strings.Join(want, "\n") {
		t.Errorf("expanded:\n%s\nwant:\n%s", strings.Join(titles, "\n"), strings.Join(want, "\n"))
	}
	if len(ids) != len(evs) {
		t.Error("occurrence IDs are not unique")
	}
	if !ids["standup@example.com/20250714T090000Z"] {
		t.Errorf("missing occurrence ID, have %v", ids)
	}
	for _, ev := range evs {
		if ev.Source.Kind != calendar.KindGoogle {
			t.Errorf("%s: kind %q", ev.Title, ev.Source.Kind)
		}
		if ev.Title == "Day off" && !ev.Source.Holiday {
			t.Error("Holiday category not mapped to the holiday hint")
		}
	}
}

func TestExpandCap(t *testing.T) {
	ve := VEvent{
		UID:    "forever",
		Start:  at(-1000, 9, 0),
		End:    at(-1000, 10, 0),
		RRules: []string{"FREQ=HOURLY"},
	}
	evs := Expand([]VEvent{ve}, week(), ExpandOptions{MaxOccurrences: 10})
	if len(evs) > 10 {
		t.Errorf("got %d occurrences, cap is 10", len(evs))
	}
}

func TestExpandSpanningOccurrence(t *testing.T) {
	// A nightly shift starting the evening before the window runs into it.
	ve := VEvent{
		UID:    "night",
		Start:  at(-7, 22, 0),
		End:    at(-6, 6, 0),
		RRules: []string{"FREQ=DAILY"},
	}
	evs := Expand([]VEvent{ve}, week(), ExpandOptions{})
	if len(evs) == 0 || !evs[0].Start.Equal(at(-1, 22, 0)) {
		t.Errorf("first occurrence = %v", evs)
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
		err  bool
	}{
		{"PT1H30M", 90 * time.Minute, false},
		{"P1D", 24 * time.Hour, false},
		{"P1W", 7 * 24 * time.Hour, false},
		{"-PT15M", -15 * time.Minute, false},
		{"P1DT2H", 26 * time.Hour, false},
		{"1H", 0, true},
		{"P", 0, true},
	}
	for _, tt := range tests {
		got, err := parseDuration(tt.in)
		if (err != nil) != tt.err || got != tt.want {
			t.Errorf("parseDuration(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestPropTime(t *testing.T) {
	loc := time.FixedZone("test", -4*3600)

	got, dateOnly, err := propTime("20250714T090000", nil, loc)
	if err != nil || dateOnly || got.Location() != loc || got.Hour() != 9 {
		t.Errorf("floating = %v, %v, %v", got, dateOnly, err)
	}

	got, _, err = propTime("20250714T090000Z", nil, loc)
	if err != nil || got.Location() != time.UTC {
		t.Errorf("utc = %v, %v", got, err)
	}

	got, _, err = propTime("20250714T090000", map[string][]string{"TZID": {"Nowhere/Unknown"}}, loc)
	if err != nil || got.Location() != loc {
		t.Errorf("unknown TZID = %v, %v", got, err)
	}

	_, dateOnly, err = propTime("20250714", map[string][]string{"VALUE": {"DATE"}}, loc)
	if err != nil || !dateOnly {
		t.Errorf("date = %v, %v", dateOnly, err)
	}
}

func TestICSFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cal.ics")
	if err := os.WriteFile(path, []byte(sampleICS), 0o644); err != nil {
		t.Fatal(err)
	}
	evs, err := ICS{Path: path, Location: time.UTC}.Events(context.Background(), week())
	if err != nil {
		t.Fatal(err)
	}
	if len(evs) != 8 {
		t.Errorf("got %d events, want 8", len(evs))
	}
	if evs[0].Source.Kind != calendar.KindICS {
		t.Errorf("default kind = %q", evs[0].Source.Kind)
	}
}

func TestICSURL(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Content-Type", "text/calendar")
		w.Write([]byte(sampleICS))
	}))
	defer srv.Close()

	s := ICS{URL: srv.URL + "/basic.ics", Client: httputil.NewClient(nil, nil), Location: time.UTC}
	evs, err := s.Events(context.Background(), week())
	if err != nil {
		t.Fatal(err)
	}
	if len(evs) != 8 || hits != 1 {
		t.Errorf("got %d events after %d requests", len(evs), hits)
	}

	if _, err := (ICS{URL: "ftp://example.com/cal.ics"}).Events(context.Background(), week()); err == nil {
		t.Error("accepted a non-http URL")
	}
}
