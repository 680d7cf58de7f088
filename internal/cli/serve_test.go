package cli

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/timegrid/pkg/config"
	"github.com/matzehuels/timegrid/pkg/errors"
	"github.com/matzehuels/timegrid/pkg/pipeline"
)

const weekEventsJSON = `[
  {"id": "a", "title": "Appointment", "startTime": "2025-07-14 09:00", "endTime": "2025-07-14 10:00", "source": "simplepractice"},
  {"id": "b", "title": "Standup", "startTime": "2025-07-16 09:30", "endTime": "2025-07-16 10:00", "source": "google"},
  {"id": "early", "title": "Early run", "startTime": "2025-07-17 05:00", "endTime": "2025-07-17 05:45"}
]`

// testSession returns a session with default config in UTC and no cache.
func testSession() *session {
	logger := log.New(io.Discard)
	return &session{
		cfg:    config.Default(),
		loc:    time.UTC,
		runner: pipeline.NewRunner(nil, nil, logger),
		logger: logger,
	}
}

func doRequest(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	h := newServer(testSession()).routes()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestServeHealth(t *testing.T) {
	rec := doRequest(t, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("body = %s", rec.Body)
	}
}

func TestServePresets(t *testing.T) {
	rec := doRequest(t, http.MethodGet, "/v1/presets", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var presets []config.Preset
	if err := json.Unmarshal(rec.Body.Bytes(), &presets); err != nil {
		t.Fatal(err)
	}
	if len(presets) != len(config.Presets()) {
		t.Errorf("got %d presets, want %d", len(presets), len(config.Presets()))
	}
}

func TestServeLayout(t *testing.T) {
	body := `{"events": ` + weekEventsJSON + `, "date": "2025-07-16", "view": "week"}`
	rec := doRequest(t, http.MethodPost, "/v1/layout", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}

	var resp struct {
		Layout struct {
			Events []json.RawMessage `json:"events"`
		} `json:"layout"`
		Excluded []json.RawMessage `json:"excluded"`
		Pages    []json.RawMessage `json:"pages"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Layout.Events) != 2 {
		t.Errorf("placed %d events, want 2", len(resp.Layout.Events))
	}
	if len(resp.Excluded) != 1 {
		t.Errorf("excluded %d events, want 1", len(resp.Excluded))
	}
	if resp.Pages != nil {
		t.Errorf("single-page view returned %d pages", len(resp.Pages))
	}
}

func TestServeLayoutPlanner(t *testing.T) {
	body := `{"events": ` + weekEventsJSON + `, "date": "2025-07-16", "view": "planner"}`
	rec := doRequest(t, http.MethodPost, "/v1/layout", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var resp struct {
		Pages    []json.RawMessage `json:"pages"`
		Excluded []struct {
			ID string `json:"eventId"`
		} `json:"excluded"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Pages) != 8 {
		t.Errorf("planner returned %d pages, want 8", len(resp.Pages))
	}
	// The early run is dropped by the week page and by Thursday's page.
	if len(resp.Excluded) != 1 || resp.Excluded[0].ID != "early" {
		t.Errorf("excluded = %+v, want only the early run once", resp.Excluded)
	}
}

func TestServeLayoutNoEvents(t *testing.T) {
	rec := doRequest(t, http.MethodPost, "/v1/layout", `{"date": "2025-07-16", "view": "day"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if !strings.Contains(rec.Body.String(), `"excluded":[]`) {
		t.Errorf("excluded should be an empty list: %s", rec.Body)
	}
}

func TestServeErrors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		body   string
		code   errors.Code
	}{
		{"malformed body", "/v1/layout", `{`, errors.ErrCodeInvalidInput},
		{"unknown target", "/v1/layout", `{"date": "2025-07-16", "target": "tabloid"}`, errors.ErrCodeInvalidTarget},
		{"bad hours", "/v1/layout", `{"date": "2025-07-16", "startHour": 20, "endHour": 8}`, errors.ErrCodeConfiguration},
		{"bad date", "/v1/layout", `{"date": "16/07/2025"}`, errors.ErrCodeInvalidInput},
		{"negative scale", "/v1/layout", `{"date": "2025-07-16", "scale": -1}`, errors.ErrCodeInvalidInput},
		{"bad view", "/v1/layout", `{"date": "2025-07-16", "view": "month"}`, errors.ErrCodeInvalidInput},
		{"bad format", "/v1/export?format=gif", `{"date": "2025-07-16"}`, errors.ErrCodeInvalidFormat},
		{"planner svg", "/v1/export?format=svg", `{"date": "2025-07-16", "view": "planner"}`, errors.ErrCodeUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, http.MethodPost, tt.target, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body)
			}
			var resp errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatal(err)
			}
			if resp.Code != tt.code {
				t.Errorf("code = %q, want %q (%s)", resp.Code, tt.code, resp.Message)
			}
		})
	}
}

func TestServeExport(t *testing.T) {
	body := `{"events": ` + weekEventsJSON + `, "date": "2025-07-16", "view": "week", "title": "Week 29"}`
	rec := doRequest(t, http.MethodPost, "/v1/export", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "week-2025-07-14.svg") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if rec.Header().Get("X-Timegrid-Excluded") != "1" {
		t.Errorf("X-Timegrid-Excluded = %q", rec.Header().Get("X-Timegrid-Excluded"))
	}
	if !strings.Contains(rec.Body.String(), "<svg") {
		t.Error("body is not an SVG document")
	}
}

func TestServeExportPlannerJSON(t *testing.T) {
	body := `{"events": ` + weekEventsJSON + `, "date": "2025-07-16", "view": "planner"}`
	rec := doRequest(t, http.MethodPost, "/v1/export?format=json", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "planner-2025-07-14.json") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if !json.Valid(rec.Body.Bytes()) {
		t.Error("body is not JSON")
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.New(errors.ErrCodeInvalidTarget, "x"), http.StatusBadRequest},
		{errors.New(errors.ErrCodeConfiguration, "x"), http.StatusBadRequest},
		{errors.New(errors.ErrCodeStorage, "x"), http.StatusInternalServerError},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
