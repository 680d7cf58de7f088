// Package pkg provides the core libraries for timegrid.
//
// # Overview
//
// Timegrid lays calendar events out on day and week grids sized for paper,
// tablets and e-paper panels. The pkg directory is organized into four
// areas:
//
//  1. Domain: [calendar], [grid], [layout]
//  2. Output: [render], [render/sink]
//  3. Input and infrastructure: [source], [cache], [httputil], [config]
//  4. Orchestration: [pipeline]
//
// # Architecture
//
// The typical data flow:
//
//	JSON export / iCalendar feed / MongoDB
//	         ↓
//	    [source] (load events for the visible window)
//	         ↓
//	    [grid] (days, slots, positions, lanes, exclusions)
//	         ↓
//	    [layout] (absolute page geometry, fitted labels, statistics)
//	         ↓
//	    [render/sink] (SVG, PNG, PDF, e-paper planes, JSON, text)
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/timegrid/pkg/calendar"
//	    "github.com/matzehuels/timegrid/pkg/layout"
//	    "github.com/matzehuels/timegrid/pkg/render/sink"
//	)
//
//	cfg := layout.DefaultConfig()
//	l, _ := layout.Compute(events, cfg, calendar.NewDate(2025, time.July, 14), 7)
//	svg := sink.RenderSVG(l)
//
// # Main Packages
//
// [calendar] - Events, calendar dates and the category classifier that
// decides how each event is drawn.
//
// [grid] - Day columns, time slots, the time-to-row mapper, lane
// assignment for overlapping events, and the record of events that could
// not be placed.
//
// [layout] - The layout engine. Turns grid positions into absolute
// rectangles, fits titles into blocks, and computes free time per day.
//
// [render] - Paints a resolved layout onto a drawing surface.
// [render/sink] holds the output formats.
//
// [source] - Event loaders: JSON exports, iCalendar files and feeds with
// recurrence expansion, and MongoDB collections.
//
// [cache] - File, Redis and null caches for fetched feeds and rendered
// pages, keyed by content hashes.
//
// [pipeline] - The export pipeline (load, layout, render) shared by the
// CLI commands and the HTTP API.
//
// [config] - The TOML or YAML configuration file and the page presets.
//
// # Testing
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/grid/...     # Specific package
//	go test -run Example       # Examples only
//
// [calendar]: https://pkg.go.dev/github.com/matzehuels/timegrid/pkg/calendar
// [grid]: https://pkg.go.dev/github.com/matzehuels/timegrid/pkg/grid
// [layout]: https://pkg.go.dev/github.com/matzehuels/timegrid/pkg/layout
// [render]: https://pkg.go.dev/github.com/matzehuels/timegrid/pkg/render
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/timegrid/pkg/render/sink
// [source]: https://pkg.go.dev/github.com/matzehuels/timegrid/pkg/source
// [cache]: https://pkg.go.dev/github.com/matzehuels/timegrid/pkg/cache
// [httputil]: https://pkg.go.dev/github.com/matzehuels/timegrid/pkg/httputil
// [config]: https://pkg.go.dev/github.com/matzehuels/timegrid/pkg/config
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/timegrid/pkg/pipeline
package pkg
