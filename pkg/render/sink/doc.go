// Package sink provides output format renderers for time-grid layouts.
//
// # Overview
//
// A "sink" transforms a computed [layout.Resolved] into a final output
// format. Every drawing sink is a [render.Surface], so all formats share the
// same paint order. This package provides:
//
//   - SVG: Scalable vector graphics via svgo
//   - PNG: Raster output via gg and the Go fonts
//   - PDF: Print-ready output, one page per layout (requires rsvg-convert)
//   - EPD: Packed black/red planes for a tri-colour e-paper panel
//   - JSON: The full layout geometry for external tools
//   - Text: A character grid for terminals and logs
//
// # SVG Output
//
// [RenderSVG] draws in a viewBox ten times the page size so sub-point
// geometry survives svgo's integer coordinates:
//
//	svg := sink.RenderSVG(l, sink.WithSVGTitle("Week of 2025-07-14"))
//
// # Raster and E-Paper Output
//
// [RenderPNG] rasterizes with gg at a configurable zoom. [RenderEPD]
// rasterizes at the panel width, then [Pack] classifies each pixel as
// white, black, or red and packs the result MSB-first into two 1bpp planes:
//
//	planes, err := sink.RenderEPD(l)
//	os.WriteFile("week.epd", planes.Bytes(), 0o644)
package sink
