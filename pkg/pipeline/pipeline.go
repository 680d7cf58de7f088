// Package pipeline runs the timegrid export: load events, compute one or
// more page layouts, and render them into artifacts.
//
// The CLI, the HTTP API and the watch scheduler all go through a [Runner]
// so that defaults, caching and artifact naming stay identical.
//
// # Stages
//
//  1. Load: query the configured sources for the window the view covers
//  2. Layout: compute a [layout.Resolved] per page; pages are independent
//     and computed concurrently
//  3. Render: encode the pages in each requested format, one page at a time
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Export(ctx, sources, pipeline.Options{
//	    Date:    calendar.NewDate(2025, time.July, 14),
//	    View:    pipeline.ViewWeek,
//	    Target:  "letter-landscape",
//	    Formats: []string{"svg", "pdf"},
//	})
//	for _, a := range result.Artifacts {
//	    os.WriteFile(a.Name, a.Data, 0o644)
//	}
//
// Run the stages individually with [Runner.Layout] and [Runner.Render].
package pipeline

import (
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/timegrid/pkg/cache"
	"github.com/matzehuels/timegrid/pkg/calendar"
	"github.com/matzehuels/timegrid/pkg/config"
	"github.com/matzehuels/timegrid/pkg/errors"
	"github.com/matzehuels/timegrid/pkg/grid"
	"github.com/matzehuels/timegrid/pkg/layout"
)

// Views.
const (
	ViewDay     = "day"
	ViewWeek    = "week"
	ViewPlanner = "planner" // weekly overview followed by seven daily pages
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatEPD  = "epd"
	FormatJSON = "json"
	FormatText = "text"
)

// DefaultView is used when Options.View is empty.
const DefaultView = ViewWeek

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatEPD:  true,
	FormatJSON: true,
	FormatText: true,
}

// ValidViews is the set of supported views.
var ValidViews = map[string]bool{
	ViewDay:     true,
	ViewWeek:    true,
	ViewPlanner: true,
}

// Options contains everything one export needs besides the events.
// It supports JSON for API requests.
type Options struct {
	Date    calendar.Date `json:"date"`
	View    string        `json:"view,omitempty"`
	Target  string        `json:"target,omitempty"`
	Formats []string      `json:"formats,omitempty"`
	Title   string        `json:"title,omitempty"`
	Refresh bool          `json:"refresh,omitempty"` // bypass artifact and feed caches

	// Layout overrides the configuration derived from Target. A zero
	// PageWidth means "use the preset".
	Layout layout.Config `json:"-"`

	Logger *log.Logger `json:"-"`

	validated bool
}

// Page is one computed layout.
type Page struct {
	Name   string          `json:"name"` // e.g. "week-2025-07-14"
	Date   calendar.Date   `json:"date"`
	Layout layout.Resolved `json:"layout"`
}

// Artifact is one rendered output file.
type Artifact struct {
	Name        string `json:"name"`
	Format      string `json:"format"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

// Result contains the outputs of an export.
type Result struct {
	Events     []calendar.Event
	EventsHash string
	Pages      []Page
	Artifacts  []Artifact
	Stats      Stats
	CacheInfo  CacheInfo
}

// Excluded returns the number of distinct events that could not be placed.
func (r *Result) Excluded() int { return len(ExcludedEvents(r.Pages)) }

// ExcludedEvents lists every event left off the grid once, in page order.
// An event excluded from several pages keeps its first exclusion.
func ExcludedEvents(pages []Page) []grid.Exclusion {
	seen := make(map[int]bool)
	var out []grid.Exclusion
	for _, p := range pages {
		for _, ex := range p.Layout.Excluded {
			if seen[ex.EventIndex] {
				continue
			}
			seen[ex.EventIndex] = true
			out = append(out, ex)
		}
	}
	return out
}

// Stats contains pipeline timing information.
type Stats struct {
	EventCount int
	PageCount  int
	LoadTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo records which formats came from the artifact cache.
type CacheInfo struct {
	RenderHits []string
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)", format, strings.Join(sortedKeys(ValidFormats), ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateView checks that a view is valid.
func ValidateView(view string) error {
	if !ValidViews[view] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid view: %q (must be one of: day, week, planner)", view)
	}
	return nil
}

// ParseFormats splits a comma-separated format list, dropping blanks and
// duplicates.
func ParseFormats(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" && !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}

// ValidateAndSetDefaults checks the options and fills defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Date.IsZero() {
		o.Date = calendar.DateOf(time.Now())
	}
	if o.View == "" {
		o.View = DefaultView
	}
	if err := ValidateView(o.View); err != nil {
		return err
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Target == "" {
		o.Target = config.DefaultPreset
	}
	if o.Layout.PageWidth == 0 {
		preset, err := config.LookupPreset(o.Target)
		if err != nil {
			return err
		}
		o.Layout = preset.Apply(layout.DefaultConfig())
	}
	if err := o.Layout.Validate(); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// Preset returns the target preset, or a preset derived from the layout
// page when Target names none.
func (o *Options) Preset() config.Preset {
	if p, err := config.LookupPreset(o.Target); err == nil {
		return p
	}
	return config.Preset{Name: o.Target, Width: o.Layout.PageWidth, Height: o.Layout.PageHeight, Margin: o.Layout.Margin, Zoom: 2}
}

// ConfigHash identifies the layout configuration for cache keys.
func (o *Options) ConfigHash() string {
	cfg := o.Layout
	var loc, classifier string
	if cfg.Location != nil {
		loc = cfg.Location.String()
	}
	if cfg.Classifier != nil {
		classifier, _ = cache.HashJSON(cfg.Classifier)
	}
	h, _ := cache.HashJSON(struct {
		Config     layout.Config
		LaneScope  string
		OutOfRange string
		Location   string
		Classifier string
		Title      string
	}{cfg, cfg.LaneScope.String(), cfg.OutOfRange.String(), loc, classifier, o.Title})
	return h
}

// ArtifactKeyOpts returns cache key options for one format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Date:       o.Date.String(),
		View:       o.View,
		Target:     o.Target,
		Format:     format,
		ConfigHash: o.ConfigHash(),
		Zoom:       o.Preset().Zoom,
	}
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
