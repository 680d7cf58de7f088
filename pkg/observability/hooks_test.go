package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

// layoutCounter only cares about layout completions.
type layoutCounter struct {
	Noop
	mu       sync.Mutex
	excluded int
}

func (c *layoutCounter) OnLayoutComplete(_ context.Context, _ string, excluded int, _ time.Duration, _ error) {
	c.mu.Lock()
	c.excluded += excluded
	c.mu.Unlock()
}

// feedOnly implements HTTPHooks and nothing else.
type feedOnly struct{ requests int }

func (f *feedOnly) OnRequest(context.Context, string, string, string)                      { f.requests++ }
func (f *feedOnly) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (f *feedOnly) OnError(context.Context, string, string, string, error)                 {}

func TestDefaultsAreNoop(t *testing.T) {
	Reset()
	for name, h := range map[string]any{"pipeline": Pipeline(), "cache": Cache(), "http": HTTP()} {
		if _, ok := h.(Noop); !ok {
			t.Errorf("%s hooks = %T, want Noop", name, h)
		}
	}
}

func TestInstall(t *testing.T) {
	t.Cleanup(Reset)
	ctx := context.Background()

	tests := []struct {
		name  string
		hooks any
		want  int
	}{
		{"all three", &layoutCounter{}, 3},
		{"http only", &feedOnly{}, 1},
		{"nothing", "not a hook", 0},
		{"nil", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Reset()
			if got := Install(tt.hooks); got != tt.want {
				t.Errorf("Install() matched %d interfaces, want %d", got, tt.want)
			}
		})
	}

	Reset()
	counter, feeds := &layoutCounter{}, &feedOnly{}
	Install(counter)
	Install(feeds)

	Pipeline().OnLayoutComplete(ctx, "planner", 2, time.Millisecond, nil)
	Pipeline().OnLayoutComplete(ctx, "planner", 1, time.Millisecond, nil)
	HTTP().OnRequest(ctx, "GET", "calendar.google.com", "/basic.ics")

	if counter.excluded != 3 {
		t.Errorf("excluded = %d, want 3", counter.excluded)
	}
	if feeds.requests != 1 {
		t.Errorf("requests = %d, want 1", feeds.requests)
	}
	if Cache() != CacheHooks(counter) {
		t.Error("installing HTTP-only hooks replaced the cache hooks")
	}
}

func TestInstallConcurrent(t *testing.T) {
	t.Cleanup(Reset)
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(2)
		go func() { defer wg.Done(); Install(&layoutCounter{}) }()
		go func() { defer wg.Done(); Pipeline().OnLoadStart(context.Background(), 1) }()
	}
	wg.Wait()
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	h := NewLogHooks(logger)
	ctx := context.Background()

	h.OnLayoutComplete(ctx, "week", 2, time.Millisecond, nil)
	h.OnRenderComplete(ctx, []string{"pdf"}, time.Millisecond, errors.New("rsvg-convert missing"))
	h.OnCacheHit(ctx, "artifact")

	out := buf.String()
	for _, want := range []string{"computed layout", "excluded=2", "render failed", "rsvg-convert missing", "cache hit"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}
