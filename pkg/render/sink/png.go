package sink

import (
	"bytes"
	"context"

	"github.com/matzehuels/timegrid/pkg/layout"
	"github.com/matzehuels/timegrid/pkg/render"
)

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	zoom       float64
	background layout.Color
	viaSVG     bool
	svgOpts    []SVGOption
}

// WithZoom sets the pixels per layout unit (default 2.0 for 2x resolution).
func WithZoom(z float64) PNGOption {
	return func(r *pngRenderer) { r.zoom = z }
}

// WithPNGBackground sets the canvas colour. [layout.None] keeps it transparent.
func WithPNGBackground(c layout.Color) PNGOption {
	return func(r *pngRenderer) { r.background = c }
}

// WithPNGViaSVG renders through SVG and rsvg-convert instead of the built-in
// rasterizer. The options are passed to the SVG renderer.
func WithPNGViaSVG(opts ...SVGOption) PNGOption {
	return func(r *pngRenderer) { r.viaSVG = true; r.svgOpts = opts }
}

// RenderPNG renders the layout as a PNG image.
func RenderPNG(ctx context.Context, l layout.Resolved, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{zoom: 2.0, background: layout.White}
	for _, opt := range opts {
		opt(&r)
	}
	if r.viaSVG {
		return render.ToPNG(ctx, RenderSVG(l, r.svgOpts...), r.zoom)
	}

	s := NewRasterSurface(l.Page.Width, l.Page.Height, r.zoom, r.background)
	render.Render(l, s)
	var buf bytes.Buffer
	if err := s.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
