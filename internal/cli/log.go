// Package cli implements the timegrid command-line interface.
//
// The CLI loads calendar events, lays them out on day or week grids, and
// writes the pages in print, tablet and e-paper formats. It is built on
// cobra; logging goes through charmbracelet/log and terminal output
// through lipgloss.
//
// # Commands
//
//   - export: render events to SVG, PNG, PDF, e-paper planes, JSON or text
//   - layout: write the resolved page geometry as JSON
//   - preview: browse the grid in the terminal
//   - serve: HTTP API for layout and export
//   - watch: re-export the configured sources on a cron schedule
//   - cache, presets, completion: housekeeping
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// logs pipeline stages, cache hits and feed requests. Loggers are passed
// through context.Context.
//
// # Example
//
//	c := cli.New(os.Stderr, cli.LogInfo)
//	if err := c.RootCommand().ExecuteContext(ctx); err != nil {
//	    os.Exit(1)
//	}
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger writes "15:04:05.00 LEVEL msg key=value" lines to w.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress times one export stage.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the stage's elapsed time and any extra key/values.
func (p *progress) done(msg string, keyvals ...any) {
	elapsed := time.Since(p.start).Round(time.Millisecond)
	p.logger.Info(msg, append([]any{"elapsed", elapsed}, keyvals...)...)
}

type loggerKey struct{}

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext falls back to log.Default when ctx carries no logger.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
