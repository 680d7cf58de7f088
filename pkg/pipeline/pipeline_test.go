package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/timegrid/pkg/cache"
	"github.com/matzehuels/timegrid/pkg/calendar"
	"github.com/matzehuels/timegrid/pkg/errors"
	"github.com/matzehuels/timegrid/pkg/source"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"epd", false},
		{"json", false},
		{"text", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestParseFormats(t *testing.T) {
	got := ParseFormats(" SVG, pdf,,svg ,text")
	if strings.Join(got, ",") != "svg,pdf,text" {
		t.Errorf("ParseFormats() = %v", got)
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	opts := Options{Date: calendar.NewDate(2025, time.July, 16)}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.View != ViewWeek || opts.Target != "letter-portrait" || opts.Formats[0] != FormatSVG {
		t.Errorf("defaults = %+v", opts)
	}
	if opts.Layout.PageWidth != 612 || opts.Logger == nil {
		t.Errorf("layout defaults = %+v", opts.Layout)
	}

	bad := Options{Target: "tabloid"}
	if err := bad.ValidateAndSetDefaults(); !errors.Is(err, errors.ErrCodeInvalidTarget) {
		t.Errorf("unknown target error = %v", err)
	}
	bad = Options{View: "month"}
	if err := bad.ValidateAndSetDefaults(); err == nil {
		t.Error("accepted view month")
	}

	cfgErr := Options{}
	cfgErr.Layout = opts.Layout
	cfgErr.Layout.EndHour = 3
	if err := cfgErr.ValidateAndSetDefaults(); !errors.IsConfiguration(err) {
		t.Errorf("bad layout error = %v", err)
	}
}

func TestPlanPages(t *testing.T) {
	wed := calendar.NewDate(2025, time.July, 16)
	tests := []struct {
		view  string
		names []string
	}{
		{ViewDay, []string{"day-2025-07-16"}},
		{ViewWeek, []string{"week-2025-07-14"}},
		{ViewPlanner, []string{
			"week-2025-07-14",
			"day-2025-07-14", "day-2025-07-15", "day-2025-07-16", "day-2025-07-17",
			"day-2025-07-18", "day-2025-07-19", "day-2025-07-20",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.view, func(t *testing.T) {
			pages, err := PlanPages(tt.view, wed)
			if err != nil {
				t.Fatal(err)
			}
			var names []string
			for _, p := range pages {
				names = append(names, p.Name)
			}
			if strings.Join(names, " ") != strings.Join(tt.names, " ") {
				t.Errorf("pages = %v", names)
			}
		})
	}
}

func TestWindow(t *testing.T) {
	wed := calendar.NewDate(2025, time.July, 16)
	w, err := Window(ViewPlanner, wed, time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	if !w.Start.Equal(time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC)) || !w.End.Equal(time.Date(2025, 7, 21, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("planner window = %s", w)
	}
	w, _ = Window(ViewDay, wed, time.UTC)
	if w.End.Sub(w.Start) != 24*time.Hour {
		t.Errorf("day window = %s", w)
	}
}

func sampleEvents() []calendar.Event {
	at := func(day, h, m int) time.Time { return time.Date(2025, 7, 14+day, h, m, 0, 0, time.UTC) }
	return []calendar.Event{
		{ID: "a", Title: "Appointment", Start: at(0, 9, 0), End: at(0, 10, 0), Source: calendar.SourceHint{Kind: calendar.KindSimplePractice}},
		{ID: "b", Title: "Standup", Start: at(2, 9, 30), End: at(2, 10, 0), Source: calendar.SourceHint{Kind: calendar.KindGoogle}},
		{ID: "early", Title: "Early run", Start: at(3, 5, 0), End: at(3, 5, 45)},
	}
}

func TestComputeLayoutsPlanner(t *testing.T) {
	opts := Options{Date: calendar.NewDate(2025, time.July, 14), View: ViewPlanner}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	pages, err := ComputeLayouts(context.Background(), sampleEvents(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(pages) != 8 {
		t.Fatalf("got %d pages", len(pages))
	}
	if pages[0].Layout.DayCount() != 7 || pages[1].Layout.DayCount() != 1 {
		t.Errorf("day counts %d/%d", pages[0].Layout.DayCount(), pages[1].Layout.DayCount())
	}
	if len(pages[0].Layout.Events) != 2 || len(pages[0].Layout.Excluded) != 1 {
		t.Errorf("week page: %d events, %d excluded", len(pages[0].Layout.Events), len(pages[0].Layout.Excluded))
	}
	if len(pages[1].Layout.Events) != 1 || len(pages[2].Layout.Events) != 0 {
		t.Error("daily pages did not filter events by day")
	}
}

func TestPlannerExcludedOnce(t *testing.T) {
	at := func(day, h int) time.Time { return time.Date(2025, 7, 14+day, h, 0, 0, 0, time.UTC) }
	var events []calendar.Event
	for d := range 7 {
		events = append(events, calendar.Event{ID: fmt.Sprint("day", d), Title: "Session", Start: at(d, 9), End: at(d, 10)})
	}

	tests := []struct {
		name   string
		extra  []calendar.Event
		titles []string
	}{
		{"every day placed", nil, nil},
		{"before the grid", []calendar.Event{{ID: "early", Title: "Early run", Start: at(3, 5), End: at(3, 6)}}, []string{"Early run"}},
		{"next week", []calendar.Event{{ID: "next", Title: "Retreat", Start: at(8, 9), End: at(8, 10)}}, []string{"Retreat"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			all := append(slices.Clone(events), tt.extra...)
			res, err := NewRunner(nil, nil, nil).Execute(context.Background(), all, Options{
				Date:    calendar.NewDate(2025, time.July, 16),
				View:    ViewPlanner,
				Formats: []string{FormatJSON},
			})
			if err != nil {
				t.Fatal(err)
			}
			if got := res.Excluded(); got != len(tt.titles) {
				t.Errorf("Excluded() = %d, want %d", got, len(tt.titles))
			}
			for i, ex := range ExcludedEvents(res.Pages) {
				if ex.Title != tt.titles[i] || all[ex.EventIndex].Title != tt.titles[i] {
					t.Errorf("excluded[%d] = %q (index %d), want %q", i, ex.Title, ex.EventIndex, tt.titles[i])
				}
			}
			for _, p := range res.Pages[1:] {
				if len(p.Layout.Events) != 1 {
					t.Fatalf("%s: %d events, want 1", p.Name, len(p.Layout.Events))
				}
				ev := all[p.Layout.Events[0].Position.EventIndex]
				if calendar.DateOf(ev.Start) != p.Date {
					t.Errorf("%s: event index points at %s", p.Name, ev.ID)
				}
			}
		})
	}
}

// countingCache records Set calls on top of a real cache.
type countingCache struct {
	cache.Cache
	sets int
}

func (c *countingCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	c.sets++
	return c.Cache.Set(ctx, key, data, ttl)
}

func TestRunnerExecuteCaching(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	c := &countingCache{Cache: fc}
	r := NewRunner(c, nil, nil)
	ctx := context.Background()
	opts := Options{
		Date:    calendar.NewDate(2025, time.July, 14),
		View:    ViewWeek,
		Formats: []string{FormatSVG, FormatJSON, FormatText},
	}

	first, err := r.Execute(ctx, sampleEvents(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(first.Artifacts) != 3 || len(first.CacheInfo.RenderHits) != 0 || c.sets != 3 {
		t.Fatalf("first run: %d artifacts, hits %v, sets %d", len(first.Artifacts), first.CacheInfo.RenderHits, c.sets)
	}
	if first.Excluded() != 1 {
		t.Errorf("Excluded() = %d, want 1", first.Excluded())
	}

	second, err := r.Execute(ctx, sampleEvents(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(second.CacheInfo.RenderHits) != 3 {
		t.Errorf("second run hits = %v", second.CacheInfo.RenderHits)
	}
	for i := range first.Artifacts {
		if first.Artifacts[i].Name != second.Artifacts[i].Name || !bytes.Equal(first.Artifacts[i].Data, second.Artifacts[i].Data) {
			t.Errorf("artifact %d differs after cache round trip", i)
		}
	}

	opts.Refresh = true
	third, err := r.Execute(ctx, sampleEvents(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(third.CacheInfo.RenderHits) != 0 {
		t.Errorf("refresh still hit the cache: %v", third.CacheInfo.RenderHits)
	}
}

func TestRunnerExport(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	sources := []source.Named{{Name: "static", Source: source.Static(sampleEvents())}}
	res, err := r.Export(context.Background(), sources, Options{
		Date:    calendar.NewDate(2025, time.July, 17),
		View:    ViewDay,
		Formats: []string{FormatSVG},
	})
	if err != nil {
		t.Fatal(err)
	}
	// Only the early run touches Thursday, and it starts before the grid.
	if res.Stats.EventCount != 1 || len(res.Artifacts) != 1 || res.Artifacts[0].Name != "day-2025-07-17.svg" {
		t.Errorf("result = %+v", res.Stats)
	}
	if res.Artifacts[0].ContentType != "image/svg+xml" {
		t.Errorf("content type = %s", res.Artifacts[0].ContentType)
	}
}

func TestRenderBundles(t *testing.T) {
	opts := Options{Date: calendar.NewDate(2025, time.July, 14), View: ViewPlanner}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	pages, err := ComputeLayouts(context.Background(), sampleEvents(), opts)
	if err != nil {
		t.Fatal(err)
	}

	js, err := Render(context.Background(), pages, FormatJSON, opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(js) != 1 || js[0].Name != "planner-2025-07-14.json" {
		t.Fatalf("json artifacts = %+v", js)
	}
	var doc struct {
		Pages []json.RawMessage `json:"pages"`
	}
	if err := json.Unmarshal(js[0].Data, &doc); err != nil || len(doc.Pages) != 8 {
		t.Errorf("json pages = %d, %v", len(doc.Pages), err)
	}

	svgs, err := Render(context.Background(), pages, FormatSVG, opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(svgs) != 8 || svgs[3].Name != "day-2025-07-16.svg" {
		t.Fatalf("svg artifacts = %d, [3]=%s", len(svgs), svgs[3].Name)
	}
	for i, want := range map[int][]string{
		0: {`xlink:href="day-2025-07-14.svg"`, `xlink:href="day-2025-07-20.svg"`},
		3: {`xlink:href="week-2025-07-14.svg"`, `xlink:href="day-2025-07-15.svg"`, `xlink:href="day-2025-07-17.svg"`},
	} {
		for _, href := range want {
			if !strings.Contains(string(svgs[i].Data), href) {
				t.Errorf("%s missing %s", svgs[i].Name, href)
			}
		}
	}
	if !strings.Contains(string(svgs[1].Data), "1 appointment | 1.0h scheduled") {
		t.Errorf("%s has no stats line", svgs[1].Name)
	}

	epd, err := Render(context.Background(), pages[:1], FormatEPD, opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(epd[0].Data) != 2*163*984 {
		t.Errorf("epd size = %d", len(epd[0].Data))
	}
}
