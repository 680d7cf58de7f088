package render

import (
	"cmp"
	"slices"

	"github.com/matzehuels/timegrid/pkg/layout"
)

// Render paints l onto s in a single pass. Link regions go last, and only
// to surfaces that implement [LinkSurface].
func Render(l layout.Resolved, s Surface) {
	for _, c := range l.Header {
		s.DrawRect(c.Rect, c.Fill, c.Border, c.Stroke)
		for _, t := range c.Labels {
			s.DrawText(t)
		}
	}
	if l.Summary.Value != "" {
		s.DrawText(l.Summary)
	}
	for _, ln := range l.Links {
		if ln.Label.Value != "" {
			s.DrawText(ln.Label)
		}
	}

	for _, r := range l.Rows {
		s.DrawRect(r.Rect, r.Fill, layout.None, 0)
	}

	for _, ln := range l.Lines {
		s.DrawLine(ln.X1, ln.Y1, ln.X2, ln.Y2, ln.Color, ln.Width)
	}

	for _, t := range l.TimeLabels {
		s.DrawText(t)
	}

	for _, b := range PaintOrder(l.Events) {
		drawBlock(s, b)
	}

	if ls, ok := s.(LinkSurface); ok {
		for _, ln := range l.Links {
			ls.DrawLink(ln)
		}
	}
}

// PaintOrder returns blocks sorted by day index then lane. The sort is
// stable and the input is not modified.
func PaintOrder(blocks []layout.Block) []layout.Block {
	sorted := slices.Clone(blocks)
	slices.SortStableFunc(sorted, func(a, b layout.Block) int {
		return cmp.Or(
			cmp.Compare(a.Position.DayIndex, b.Position.DayIndex),
			cmp.Compare(a.Position.Lane, b.Position.Lane),
		)
	})
	return sorted
}

func drawBlock(s Surface, b layout.Block) {
	st := b.Style
	if st.Dashed() {
		s.DrawRect(b.Rect, st.Fill, layout.None, 0)
		s.DrawDashedRect(b.Rect, st.Border, st.BorderWidth, st.Dash)
	} else {
		s.DrawRect(b.Rect, st.Fill, st.Border, st.BorderWidth)
	}

	if st.AccentWidth > 0 && !st.Accent.IsNone() {
		accent := layout.Rect{X: b.X, Y: b.Y, W: min(st.AccentWidth, b.W), H: b.H}
		s.DrawRect(accent, st.Accent, layout.None, 0)
	}

	for _, t := range b.Labels {
		s.DrawText(t)
	}
}
