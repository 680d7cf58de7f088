// Package render paints a resolved time-grid layout onto a drawing surface.
//
// # Overview
//
// [Render] walks a [layout.Resolved] once and issues paint commands to an
// injected [Surface]. It makes no geometry decisions: every coordinate,
// colour, and label comes from the layout. The paint order is fixed:
//
//  1. Header cells and their labels
//  2. Slot rows
//  3. Grid lines
//  4. Time labels
//  5. Event blocks, sorted by day then lane
//
// Each event block is painted as fill, border (dashed when the style has a
// dash pattern), left accent bar, then labels. Sorting by day and lane
// keeps accent bars from being covered by an unrelated later block.
//
// A Surface is not reentrant. Callers rendering several pages must give
// each its own surface or serialize access.
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg). [ToPDFPages] joins several
// SVG pages into one PDF. The sink subpackage uses them for PDF export.
//
//	svg := sink.RenderSVG(l)
//	pdf, err := render.ToPDF(ctx, svg)
//
// Concrete surfaces (SVG, raster, e-paper, terminal text) live in [sink].
//
// [sink]: github.com/matzehuels/timegrid/pkg/render/sink
package render
