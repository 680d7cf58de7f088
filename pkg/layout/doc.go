// Package layout turns grid positions into absolute page geometry.
//
// # Overview
//
// The package holds the last two stages of the time-grid engine:
//
//   - [ComputeScale] fits a reference design (time column, day columns,
//     header, rows) into a target page and returns one uniform factor.
//   - [Compose] combines slots, day columns, lane-resolved positions, the
//     [Config], and a [Scale] into a [Resolved] layout: header cells, row
//     rectangles, grid lines, time labels, and event blocks with styles.
//
// [Compute] runs the whole engine (classification, axes, mapping, lanes,
// scale, composition) in one pure call:
//
//	cfg := layout.DefaultConfig()
//	l, err := layout.Compute(events, cfg, calendar.NewDate(2025, 7, 14), grid.WeeklyView)
//	if err != nil {
//	    // configuration error: abort
//	}
//	fmt.Println(len(l.Excluded), "events could not be placed")
//
// # Geometry
//
// With scale factor s, an event block is placed at
//
//	x = margin + timeColumnWidth*s + day*dayColumnWidth*s + lane*(dayColumnWidth*s/laneCount)
//	y = margin + headerHeight*s + startSlot*rowHeight*s
//
// with width dayColumnWidth*s/laneCount - laneGap and a height of at least
// one row minus blockGap. Fonts scale by the same factor but never drop
// below [Config.MinFontSize].
//
// # Styles
//
// Visual style is a static lookup keyed by [calendar.Category] ([StyleFor]).
// Geometry never depends on the category.
//
// # Determinism
//
// Compose and Compute are pure: identical inputs yield deeply equal
// layouts. Nothing reads the wall clock, and no state survives between
// calls, so layouts for several pages can be computed concurrently.
package layout
