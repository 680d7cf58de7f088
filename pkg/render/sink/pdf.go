package sink

import (
	"context"

	"github.com/matzehuels/timegrid/pkg/layout"
	"github.com/matzehuels/timegrid/pkg/render"
)

// PDFOption configures PDF rendering.
type PDFOption func(*pdfRenderer)

type pdfRenderer struct {
	svgOpts []SVGOption
}

// WithPDFSVGOptions passes options through to the underlying SVG renderer.
func WithPDFSVGOptions(opts ...SVGOption) PDFOption {
	return func(r *pdfRenderer) { r.svgOpts = opts }
}

// RenderPDF renders the layout as a single-page PDF via SVG conversion.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, l layout.Resolved, opts ...PDFOption) ([]byte, error) {
	return RenderPDFPages(ctx, []layout.Resolved{l}, opts...)
}

// RenderPDFPages renders each layout as one page of a single PDF document.
func RenderPDFPages(ctx context.Context, pages []layout.Resolved, opts ...PDFOption) ([]byte, error) {
	r := pdfRenderer{}
	for _, opt := range opts {
		opt(&r)
	}
	svgs := make([][]byte, len(pages))
	for i, l := range pages {
		svgs[i] = RenderSVG(l, r.svgOpts...)
	}
	return render.ToPDFPages(ctx, svgs)
}
