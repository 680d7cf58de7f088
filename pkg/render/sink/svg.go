package sink

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strings"

	svg "github.com/ajstarks/svgo"

	"github.com/matzehuels/timegrid/pkg/layout"
	"github.com/matzehuels/timegrid/pkg/render"
)

// svgPrecision is the number of viewBox units per layout unit. svgo takes
// integer coordinates, so geometry is drawn in a 10x viewBox and the
// width/height attributes keep the page size.
const svgPrecision = 10

const defaultFontFamily = "Helvetica, Arial, sans-serif"

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	title      string
	fontFamily string
	background layout.Color
	href       func(layout.Link) string
}

// WithSVGTitle sets the document <title>.
func WithSVGTitle(t string) SVGOption { return func(r *svgRenderer) { r.title = t } }

// WithFontFamily sets the CSS font-family of every text element.
func WithFontFamily(f string) SVGOption { return func(r *svgRenderer) { r.fontFamily = f } }

// WithBackground sets the page background. [layout.None] leaves it transparent.
func WithBackground(c layout.Color) SVGOption { return func(r *svgRenderer) { r.background = c } }

// WithLinkTargets turns the layout's links into <a> elements. href maps a
// link to its target; an empty result leaves the link out. Without this
// option links are not emitted.
func WithLinkTargets(href func(layout.Link) string) SVGOption {
	return func(r *svgRenderer) { r.href = href }
}

// RenderSVG renders a layout as a standalone SVG document.
func RenderSVG(l layout.Resolved, opts ...SVGOption) []byte {
	var buf bytes.Buffer
	s := NewSVGSurface(&buf, l.Page.Width, l.Page.Height, opts...)
	render.Render(l, s)
	s.Close()
	return buf.Bytes()
}

// SVGSurface is a [render.Surface] that writes SVG elements.
type SVGSurface struct {
	canvas *svg.SVG
	font   string
	href   func(layout.Link) string
}

// NewSVGSurface starts an SVG document of the given page size on w. Call
// Close to finish it.
func NewSVGSurface(w io.Writer, width, height float64, opts ...SVGOption) *SVGSurface {
	r := svgRenderer{fontFamily: defaultFontFamily, background: layout.White}
	for _, opt := range opts {
		opt(&r)
	}

	canvas := svg.New(w)
	pw, ph := int(math.Ceil(width)), int(math.Ceil(height))
	canvas.Startview(pw, ph, 0, 0, pw*svgPrecision, ph*svgPrecision)
	if r.title != "" {
		canvas.Title(r.title)
	}
	if !r.background.IsNone() {
		canvas.Rect(0, 0, pw*svgPrecision, ph*svgPrecision, "fill:"+r.background.Hex())
	}
	return &SVGSurface{canvas: canvas, font: r.fontFamily, href: r.href}
}

// Close writes the closing </svg> tag.
func (s *SVGSurface) Close() { s.canvas.End() }

func (s *SVGSurface) DrawRect(r layout.Rect, fill, stroke layout.Color, width float64) {
	if r.W <= 0 || r.H <= 0 {
		return
	}
	style := fmt.Sprintf("fill:%s;stroke:%s", fill.Hex(), stroke.Hex())
	if !stroke.IsNone() {
		style += fmt.Sprintf(";stroke-width:%s", num(width))
	}
	s.canvas.Rect(u(r.X), u(r.Y), u(r.W), u(r.H), style)
}

func (s *SVGSurface) DrawLine(x1, y1, x2, y2 float64, c layout.Color, width float64) {
	if c.IsNone() {
		return
	}
	s.canvas.Line(u(x1), u(y1), u(x2), u(y2), fmt.Sprintf("stroke:%s;stroke-width:%s", c.Hex(), num(width)))
}

func (s *SVGSurface) DrawDashedRect(r layout.Rect, stroke layout.Color, width float64, dash []float64) {
	if stroke.IsNone() || r.W <= 0 || r.H <= 0 {
		return
	}
	parts := make([]string, len(dash))
	for i, d := range dash {
		parts[i] = num(d)
	}
	style := fmt.Sprintf("fill:none;stroke:%s;stroke-width:%s;stroke-dasharray:%s",
		stroke.Hex(), num(width), strings.Join(parts, ","))
	s.canvas.Rect(u(r.X), u(r.Y), u(r.W), u(r.H), style)
}

func (s *SVGSurface) DrawText(t layout.Text) {
	if t.Value == "" {
		return
	}
	style := fmt.Sprintf("font-family:%s;font-size:%spx;fill:%s;text-anchor:%s",
		s.font, num(t.Size), t.Color.Hex(), t.Anchor)
	if t.Bold {
		style += ";font-weight:bold"
	}
	s.canvas.Text(u(t.X), u(t.Y), t.Value, style)
}

// DrawLink covers l with a transparent rectangle inside an <a> element.
func (s *SVGSurface) DrawLink(l layout.Link) {
	if s.href == nil || l.W <= 0 || l.H <= 0 {
		return
	}
	href := s.href(l)
	if href == "" {
		return
	}
	s.canvas.Link(href, linkTitle(l))
	s.canvas.Rect(u(l.X), u(l.Y), u(l.W), u(l.H), "fill:#ffffff;fill-opacity:0")
	s.canvas.LinkEnd()
}

func linkTitle(l layout.Link) string {
	if l.Kind == layout.LinkWeek {
		return "Week of " + l.Date.In(nil).Format("January 2, 2006")
	}
	return l.Date.In(nil).Format("Monday, January 2, 2006")
}

// u converts a layout length to viewBox units.
func u(v float64) int { return int(math.Round(v * svgPrecision)) }

// num formats a stroke or font length in viewBox units.
func num(v float64) string {
	return fmt.Sprintf("%.1f", v*svgPrecision)
}
