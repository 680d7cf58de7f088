// Package observability lets a binary watch exports without the libraries
// depending on a logging or metrics backend.
//
// The pipeline, the feed client and the caches report through the hooks
// returned by [Pipeline], [Cache] and [HTTP]. Until something is installed
// those are [Noop]. The CLI installs [LogHooks] under --verbose:
//
//	observability.Install(observability.NewLogHooks(logger))
package observability

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// PipelineHooks receives export stage events.
type PipelineHooks interface {
	OnLoadStart(ctx context.Context, sources int)
	OnLoadComplete(ctx context.Context, events int, duration time.Duration, err error)

	// excluded counts events that could not be placed on the grid.
	OnLayoutStart(ctx context.Context, view string, pages int)
	OnLayoutComplete(ctx context.Context, view string, excluded int, duration time.Duration, err error)

	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// CacheHooks receives cache lookups. keyType is "feed" or "artifact".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives outgoing feed requests.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)
	OnError(ctx context.Context, method, host, path string, err error)
}

// Noop implements every hook interface and does nothing. Embed it to
// implement only some methods.
type Noop struct{}

func (Noop) OnLoadStart(context.Context, int)                                       {}
func (Noop) OnLoadComplete(context.Context, int, time.Duration, error)              {}
func (Noop) OnLayoutStart(context.Context, string, int)                             {}
func (Noop) OnLayoutComplete(context.Context, string, int, time.Duration, error)    {}
func (Noop) OnRenderStart(context.Context, []string)                                {}
func (Noop) OnRenderComplete(context.Context, []string, time.Duration, error)       {}
func (Noop) OnCacheHit(context.Context, string)                                     {}
func (Noop) OnCacheMiss(context.Context, string)                                    {}
func (Noop) OnCacheSet(context.Context, string, int)                                {}
func (Noop) OnRequest(context.Context, string, string, string)                      {}
func (Noop) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (Noop) OnError(context.Context, string, string, string, error)                 {}

// registry is replaced wholesale on every change; readers load it without
// locking.
type registry struct {
	pipeline PipelineHooks
	cache    CacheHooks
	http     HTTPHooks
}

var (
	current  atomic.Pointer[registry]
	updateMu sync.Mutex
)

func init() { Reset() }

func update(fn func(r *registry)) {
	updateMu.Lock()
	defer updateMu.Unlock()
	next := *current.Load()
	fn(&next)
	current.Store(&next)
}

// Install registers h for every hook interface it implements and reports
// how many it matched.
func Install(h any) int {
	n := 0
	update(func(r *registry) {
		if p, ok := h.(PipelineHooks); ok {
			r.pipeline, n = p, n+1
		}
		if c, ok := h.(CacheHooks); ok {
			r.cache, n = c, n+1
		}
		if x, ok := h.(HTTPHooks); ok {
			r.http, n = x, n+1
		}
	})
	return n
}

// Pipeline returns the installed pipeline hooks.
func Pipeline() PipelineHooks { return current.Load().pipeline }

// Cache returns the installed cache hooks.
func Cache() CacheHooks { return current.Load().cache }

// HTTP returns the installed HTTP hooks.
func HTTP() HTTPHooks { return current.Load().http }

// Reset restores [Noop] everywhere.
func Reset() {
	updateMu.Lock()
	defer updateMu.Unlock()
	current.Store(&registry{pipeline: Noop{}, cache: Noop{}, http: Noop{}})
}
