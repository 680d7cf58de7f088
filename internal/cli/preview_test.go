package cli

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/timegrid/pkg/calendar"
	"github.com/matzehuels/timegrid/pkg/layout"
	"github.com/matzehuels/timegrid/pkg/pipeline"
)

// emptyLoader lays out pages without events and counts calls.
func emptyLoader(calls *int) pageLoader {
	return func(ctx context.Context, date calendar.Date, view string) (layout.Resolved, error) {
		*calls++
		opts := pipeline.Options{Date: date, View: view}
		if err := opts.ValidateAndSetDefaults(); err != nil {
			return layout.Resolved{}, err
		}
		pages, err := pipeline.ComputeLayouts(ctx, nil, opts)
		if err != nil {
			return layout.Resolved{}, err
		}
		return pages[0].Layout, nil
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// update applies msg and runs the returned command, if any, feeding its
// message back into the model.
func update(t *testing.T, m previewModel, msg tea.Msg) previewModel {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(previewModel)
	if cmd != nil {
		if out := cmd(); out != nil {
			next, _ = m.Update(out)
			m = next.(previewModel)
		}
	}
	return m
}

func loadedModel(t *testing.T, date calendar.Date, view string, calls *int) previewModel {
	t.Helper()
	m := newPreviewModel(context.Background(), date, view, emptyLoader(calls))
	next, _ := m.Update(m.Init()())
	return next.(previewModel)
}

func TestPreviewLoadsPage(t *testing.T) {
	var calls int
	m := loadedModel(t, calendar.NewDate(2025, time.July, 16), pipeline.ViewWeek, &calls)

	if calls != 1 {
		t.Errorf("loader called %d times, want 1", calls)
	}
	if m.loading || m.err != nil {
		t.Fatalf("loading=%v err=%v", m.loading, m.err)
	}
	if len(m.grid.Rows) == 0 {
		t.Fatal("empty grid")
	}
	if m.summary != "0 events" {
		t.Errorf("summary = %q", m.summary)
	}
	if view := m.View(); !strings.Contains(view, "week of 2025-07-14") {
		t.Errorf("title missing from view:\n%s", view)
	}
}

func TestPreviewNavigation(t *testing.T) {
	wed := calendar.NewDate(2025, time.July, 16)
	tests := []struct {
		name     string
		view     string
		keys     []string
		wantDate calendar.Date
		wantView string
	}{
		{"next week", pipeline.ViewWeek, []string{"right"}, wed.AddDays(7), pipeline.ViewWeek},
		{"previous week", pipeline.ViewWeek, []string{"h"}, wed.AddDays(-7), pipeline.ViewWeek},
		{"next day", pipeline.ViewDay, []string{"l"}, wed.AddDays(1), pipeline.ViewDay},
		{"toggle to day", pipeline.ViewWeek, []string{"d"}, wed, pipeline.ViewDay},
		{"toggle back", pipeline.ViewWeek, []string{"d", "d"}, wed, pipeline.ViewWeek},
		{"day steps after toggle", pipeline.ViewWeek, []string{"d", "left"}, wed.AddDays(-1), pipeline.ViewDay},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int
			m := loadedModel(t, wed, tt.view, &calls)
			for _, k := range tt.keys {
				m = update(t, m, key(k))
			}
			if m.date != tt.wantDate || m.view != tt.wantView {
				t.Errorf("at %s/%s, want %s/%s", m.date, m.view, tt.wantDate, tt.wantView)
			}
			if m.loading {
				t.Error("page not loaded after navigation")
			}
			if calls != len(tt.keys)+1 {
				t.Errorf("loader called %d times, want %d", calls, len(tt.keys)+1)
			}
		})
	}
}

func TestPreviewToday(t *testing.T) {
	orig := timeNow
	timeNow = func() time.Time { return time.Date(2025, time.December, 24, 10, 0, 0, 0, time.Local) }
	defer func() { timeNow = orig }()

	var calls int
	m := loadedModel(t, calendar.NewDate(2025, time.July, 16), pipeline.ViewDay, &calls)
	m = update(t, m, key("t"))
	if want := calendar.NewDate(2025, time.December, 24); m.date != want {
		t.Errorf("date = %s, want %s", m.date, want)
	}
}

func TestPreviewDropsStalePage(t *testing.T) {
	var calls int
	wed := calendar.NewDate(2025, time.July, 16)
	m := loadedModel(t, wed, pipeline.ViewWeek, &calls)

	next, _ := m.Update(key("right"))
	m = next.(previewModel)
	if !m.loading {
		t.Fatal("navigation did not start loading")
	}

	stale := pageMsg{date: wed, view: pipeline.ViewWeek, err: fmt.Errorf("stale")}
	next, _ = m.Update(stale)
	m = next.(previewModel)
	if !m.loading || m.err != nil {
		t.Errorf("stale page applied: loading=%v err=%v", m.loading, m.err)
	}
}

func TestPreviewError(t *testing.T) {
	wed := calendar.NewDate(2025, time.July, 16)
	m := newPreviewModel(context.Background(), wed, pipeline.ViewDay, func(context.Context, calendar.Date, string) (layout.Resolved, error) {
		return layout.Resolved{}, fmt.Errorf("feed unreachable")
	})
	m = update(t, m, m.Init()())
	if m.err == nil {
		t.Fatal("error not recorded")
	}
	if !strings.Contains(m.View(), "feed unreachable") {
		t.Errorf("error missing from view:\n%s", m.View())
	}
}

func TestPreviewScroll(t *testing.T) {
	var calls int
	m := loadedModel(t, calendar.NewDate(2025, time.July, 16), pipeline.ViewWeek, &calls)
	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 10})
	if m.height != 6 {
		t.Fatalf("height = %d, want 6", m.height)
	}

	m = update(t, m, key("up"))
	if m.offset != 0 {
		t.Errorf("scrolled above the first row: offset %d", m.offset)
	}
	for range len(m.grid.Rows) + 5 {
		m = update(t, m, key("j"))
	}
	if want := len(m.grid.Rows) - m.height; m.offset != want {
		t.Errorf("offset = %d, want %d", m.offset, want)
	}
}

func TestPreviewQuit(t *testing.T) {
	var calls int
	m := loadedModel(t, calendar.NewDate(2025, time.July, 16), pipeline.ViewWeek, &calls)
	for _, k := range []string{"q", "esc"} {
		msg := key(k)
		if k == "esc" {
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		}
		_, cmd := m.Update(msg)
		if cmd == nil {
			t.Fatalf("%s: no command", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s did not quit", k)
		}
	}
}

func TestPageSummary(t *testing.T) {
	if got := pageSummary(layout.Resolved{}); got != "0 events" {
		t.Errorf("pageSummary() = %q", got)
	}
}
