package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/timegrid/pkg/cache"
	"github.com/matzehuels/timegrid/pkg/calendar"
	"github.com/matzehuels/timegrid/pkg/observability"
	"github.com/matzehuels/timegrid/pkg/source"
)

// Runner executes exports with artifact caching.
//
// The Runner keeps no per-export state, so one Runner may serve
// concurrent exports with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	TTL    time.Duration // artifact TTL; 0 means cache.TTLArtifact
}

// NewRunner creates a runner. A nil cache disables caching; a nil keyer
// uses cache.DefaultKeyer.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Export loads events from sources for the window the view covers, then
// runs [Runner.Execute].
func (r *Runner) Export(ctx context.Context, sources []source.Named, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	events, loadTime, err := r.Load(ctx, sources, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result, err := r.Execute(ctx, events, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.LoadTime = loadTime
	return result, nil
}

// Load queries every source for the view's window.
func (r *Runner) Load(ctx context.Context, sources []source.Named, opts Options) ([]calendar.Event, time.Duration, error) {
	r.applyLogger(&opts)
	w, err := Window(opts.View, opts.Date, opts.Layout.Location)
	if err != nil {
		return nil, 0, err
	}
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, len(sources))
	start := time.Now()

	events, err := source.Merge(ctx, w, sources...)
	hooks.OnLoadComplete(ctx, len(events), time.Since(start), err)
	if err != nil {
		return nil, 0, err
	}
	source.SortByStart(events)
	opts.Logger.Info("loaded events", "events", len(events), "sources", len(sources), "window", w)
	return events, time.Since(start), nil
}

// Execute computes the layouts for events and renders every requested
// format.
func (r *Runner) Execute(ctx context.Context, events []calendar.Event, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	events = calendar.WithIDs(events)
	result := &Result{Events: events}
	result.Stats.EventCount = len(events)
	if h, err := cache.HashJSON(events); err == nil {
		result.EventsHash = h
	}

	layoutStart := time.Now()
	pages, err := r.Layout(ctx, events, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Pages = pages
	result.Stats.PageCount = len(pages)
	result.Stats.LayoutTime = time.Since(layoutStart)
	opts.Logger.Info("computed layout",
		"view", opts.View,
		"pages", len(pages),
		"excluded", result.Excluded(),
		"duration", result.Stats.LayoutTime)

	renderStart := time.Now()
	artifacts, hits, err := r.RenderWithCacheInfo(ctx, pages, result.EventsHash, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.CacheInfo.RenderHits = hits
	result.Stats.RenderTime = time.Since(renderStart)
	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"artifacts", len(artifacts),
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Layout computes the pages of the view. Layouts are never cached: they
// are cheap and depend on every event.
func (r *Runner) Layout(ctx context.Context, events []calendar.Event, opts Options) ([]Page, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	specs, err := PlanPages(opts.View, opts.Date)
	if err != nil {
		return nil, err
	}
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, opts.View, len(specs))
	start := time.Now()

	pages, err := ComputeLayouts(ctx, events, opts)
	excluded := ExcludedEvents(pages)
	for _, ex := range excluded {
		r.Logger.Debug("event not placed", "event", events[ex.EventIndex].Title, "reason", ex.Reason)
	}
	hooks.OnLayoutComplete(ctx, opts.View, len(excluded), time.Since(start), err)
	return pages, err
}

// RenderWithCacheInfo renders every format of opts, serving each from the
// artifact cache when possible. It returns the formats that were cache hits.
// Cache failures are logged and never fail the render.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, pages []Page, eventsHash string, opts Options) ([]Artifact, []string, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, nil, err
	}
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	var (
		artifacts []Artifact
		hits      []string
	)
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(eventsHash, opts.ArtifactKeyOpts(format))
		if cached, ok := r.cached(ctx, key, opts.Refresh || eventsHash == ""); ok {
			artifacts = append(artifacts, cached...)
			hits = append(hits, format)
			continue
		}

		rendered, err := Render(ctx, pages, format, opts)
		if err != nil {
			err = fmt.Errorf("%s: %w", format, err)
			hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
			return nil, nil, err
		}
		artifacts = append(artifacts, rendered...)
		if eventsHash != "" {
			r.store(ctx, key, rendered)
		}
	}
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), nil)
	return artifacts, hits, nil
}

// Render is RenderWithCacheInfo without the cache hit information.
func (r *Runner) Render(ctx context.Context, pages []Page, eventsHash string, opts Options) ([]Artifact, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, pages, eventsHash, opts)
	return artifacts, err
}

func (r *Runner) cached(ctx context.Context, key string, skip bool) ([]Artifact, bool) {
	if skip {
		return nil, false
	}
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "err", err)
		return nil, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, "artifact")
		return nil, false
	}
	var artifacts []Artifact
	if err := json.Unmarshal(data, &artifacts); err != nil {
		r.Logger.Debug("discarding unreadable cache entry", "key", key, "err", err)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, "artifact")
	return artifacts, true
}

func (r *Runner) store(ctx context.Context, key string, artifacts []Artifact) {
	data, err := json.Marshal(artifacts)
	if err != nil {
		return
	}
	ttl := r.TTL
	if ttl == 0 {
		ttl = cache.TTLArtifact
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, "artifact", len(data))
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
