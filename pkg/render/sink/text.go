package sink

import (
	"fmt"
	"strings"

	"github.com/matzehuels/timegrid/pkg/calendar"
	"github.com/matzehuels/timegrid/pkg/layout"
)

const timeColumnRunes = 6

// Kind tells a terminal renderer how to colour a [TextCell].
type Kind int

const (
	KindBlank Kind = iota
	KindRule
	KindHeader
	KindTime
	KindEvent
	KindFooter
)

// TextCell is one character of a text grid.
type TextCell struct {
	Rune     rune
	Kind     Kind
	Category calendar.Category // set when Kind is KindEvent
}

// TextGrid is a fixed-width character rendering of a layout, one line per
// slot plus header and footer lines.
type TextGrid struct {
	Rows [][]TextCell
}

// String joins the grid into newline-terminated lines with trailing blanks
// removed.
func (g TextGrid) String() string {
	var sb strings.Builder
	for _, row := range g.Rows {
		line := make([]rune, len(row))
		for i, c := range row {
			line[i] = c.Rune
		}
		sb.WriteString(strings.TrimRight(string(line), " "))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// TextOption configures text rendering.
type TextOption func(*textRenderer)

type textRenderer struct {
	columnWidth int
	stats       bool
}

// WithColumnRunes sets the width of each day column in characters. The
// default is 14 for weekly layouts and 48 for daily ones.
func WithColumnRunes(n int) TextOption { return func(r *textRenderer) { r.columnWidth = n } }

// WithoutStats omits the per-day free time footer.
func WithoutStats() TextOption { return func(r *textRenderer) { r.stats = false } }

// RenderText renders the layout as plain text.
func RenderText(l layout.Resolved, opts ...TextOption) []byte {
	return []byte(Grid(l, opts...).String())
}

var categoryGlyph = map[calendar.Category]rune{
	calendar.Manual:              '.',
	calendar.PracticeAppointment: '=',
	calendar.ExternalCalendar:    '~',
	calendar.Holiday:             '*',
}

// Grid renders the layout into a character grid.
func Grid(l layout.Resolved, opts ...TextOption) TextGrid {
	r := textRenderer{stats: true}
	if l.DayCount() == 1 {
		r.columnWidth = 48
	} else {
		r.columnWidth = 14
	}
	for _, opt := range opts {
		opt(&r)
	}
	cw := max(r.columnWidth, 3)
	days := l.DayCount()
	width := timeColumnRunes + days*(cw+1)

	var g TextGrid
	newRow := func() []TextCell {
		row := make([]TextCell, width)
		for i := range row {
			row[i] = TextCell{Rune: ' '}
		}
		for d := range days {
			row[dayX(d, cw)-1] = TextCell{Rune: '|', Kind: KindRule}
		}
		g.Rows = append(g.Rows, row)
		return row
	}

	// Header: day labels, then all-day notes if any day has one.
	labels := newRow()
	var notes []TextCell
	for _, c := range l.Header {
		if c.DayIndex < 0 || c.DayIndex >= days || len(c.Labels) == 0 {
			continue
		}
		put(labels, dayX(c.DayIndex, cw), cw, center(c.Labels[0].Value, cw), KindHeader, 0)
		if len(c.Labels) > 1 {
			if notes == nil {
				notes = newRow()
			}
			put(notes, dayX(c.DayIndex, cw), cw, center(c.Labels[1].Value, cw), KindHeader, 0)
		}
	}
	g.Rows = append(g.Rows, rule(width, days, cw))

	top := len(g.Rows)
	for _, s := range l.Slots {
		row := newRow()
		label := "  " + s.Label()[2:]
		if s.HourBoundary {
			label = s.Label()
		}
		put(row, 0, timeColumnRunes-1, label, KindTime, 0)
	}

	for _, b := range l.Events {
		drawTextBlock(g.Rows[top:], b, cw)
	}

	g.Rows = append(g.Rows, rule(width, days, cw))
	switch {
	case !r.stats || len(l.Stats) != days:
	case days == 1:
		// The daily summary may be wider than the grid.
		summary := " " + l.Stats[0].Summary()
		row := make([]TextCell, max(width, len([]rune(summary))))
		for i := range row {
			row[i] = TextCell{Rune: ' '}
		}
		put(row, 0, len(row), summary, KindFooter, 0)
		g.Rows = append(g.Rows, row)
	default:
		row := newRow()
		for d, st := range l.Stats {
			put(row, dayX(d, cw), cw, center(fmt.Sprintf("%.1f%% free", st.FreePercent), cw), KindFooter, 0)
		}
	}
	return g
}

func drawTextBlock(rows [][]TextCell, b layout.Block, cw int) {
	p := b.Position
	lanes := max(p.LaneCount, 1)
	laneW := max(cw/lanes, 1)
	x := p.Lane * laneW
	if x >= cw {
		return
	}
	w := laneW
	if p.Lane == lanes-1 {
		w = cw - x
	}
	x += dayX(p.DayIndex, cw)
	glyph := categoryGlyph[b.Category]

	end := min(p.End(), len(rows))
	for y := p.StartSlot; y < end; y++ {
		put(rows[y], x, w, strings.Repeat(string(glyph), w), KindEvent, b.Category)
	}
	if p.StartSlot < end && w > 2 {
		put(rows[p.StartSlot], x+1, w-1, truncate(b.Title, w-1), KindEvent, b.Category)
	}
	if p.StartSlot+1 < end && w > 2 {
		put(rows[p.StartSlot+1], x+1, w-1, truncate(b.TimeLabel, w-1), KindEvent, b.Category)
	}
}

// dayX returns the first character column of a day.
func dayX(day, cw int) int { return timeColumnRunes + day*(cw+1) + 1 }

func rule(width, days, cw int) []TextCell {
	row := make([]TextCell, width)
	for i := range row {
		row[i] = TextCell{Rune: '-', Kind: KindRule}
	}
	for d := range days {
		row[dayX(d, cw)-1].Rune = '+'
	}
	return row
}

// put writes s into row starting at x, clipped to w runes.
func put(row []TextCell, x, w int, s string, kind Kind, cat calendar.Category) {
	i := 0
	for _, r := range s {
		if i >= w || x+i >= len(row) {
			return
		}
		row[x+i] = TextCell{Rune: r, Kind: kind, Category: cat}
		i++
	}
}

func truncate(s string, n int) string {
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	if n <= 2 {
		return string(rs[:n])
	}
	return string(rs[:n-2]) + ".."
}

func center(s string, w int) string {
	s = truncate(s, w)
	pad := (w - len([]rune(s))) / 2
	return strings.Repeat(" ", pad) + s
}
