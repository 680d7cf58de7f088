package render

import "github.com/matzehuels/timegrid/pkg/layout"

// Surface is a drawing backend. Coordinates are in layout units with the
// origin at the top-left of the page. A transparent colour means "do not
// paint" for that part of the primitive.
type Surface interface {
	// DrawRect fills r and strokes its outline.
	DrawRect(r layout.Rect, fill, stroke layout.Color, strokeWidth float64)
	// DrawLine strokes a straight segment.
	DrawLine(x1, y1, x2, y2 float64, c layout.Color, width float64)
	// DrawDashedRect strokes the outline of r with a dash pattern. It does
	// not fill.
	DrawDashedRect(r layout.Rect, stroke layout.Color, width float64, dash []float64)
	// DrawText draws one line of text at its baseline.
	DrawText(t layout.Text)
}

// LinkSurface is a [Surface] that can make a region of the page clickable.
type LinkSurface interface {
	Surface
	DrawLink(l layout.Link)
}
