package sink

import (
	"image"
	"io"
	"sync"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/matzehuels/timegrid/pkg/layout"
	"github.com/matzehuels/timegrid/pkg/render"
)

// RasterSurface is a [render.Surface] backed by a gg context. Layout units
// are multiplied by the zoom factor to get pixels.
type RasterSurface struct {
	dc    *gg.Context
	zoom  float64
	faces map[faceKey]font.Face
}

// NewRasterSurface allocates a canvas of page*zoom pixels filled with bg.
func NewRasterSurface(width, height, zoom float64, bg layout.Color) *RasterSurface {
	if zoom <= 0 {
		zoom = 1
	}
	w := max(1, int(width*zoom+0.5))
	h := max(1, int(height*zoom+0.5))
	dc := gg.NewContext(w, h)
	if !bg.IsNone() {
		dc.SetColor(bg)
		dc.Clear()
	}
	return &RasterSurface{dc: dc, zoom: zoom, faces: map[faceKey]font.Face{}}
}

// Rasterize paints l onto a fresh canvas and returns the image.
func Rasterize(l layout.Resolved, zoom float64, bg layout.Color) image.Image {
	s := NewRasterSurface(l.Page.Width, l.Page.Height, zoom, bg)
	render.Render(l, s)
	return s.Image()
}

// Image returns the backing image.
func (s *RasterSurface) Image() image.Image { return s.dc.Image() }

// EncodePNG writes the surface as a PNG image.
func (s *RasterSurface) EncodePNG(w io.Writer) error { return s.dc.EncodePNG(w) }

func (s *RasterSurface) DrawRect(r layout.Rect, fill, stroke layout.Color, width float64) {
	if r.W <= 0 || r.H <= 0 {
		return
	}
	x, y, w, h := s.px(r)
	if !fill.IsNone() {
		s.dc.DrawRectangle(x, y, w, h)
		s.dc.SetColor(fill)
		s.dc.Fill()
	}
	if !stroke.IsNone() && width > 0 {
		s.dc.DrawRectangle(x, y, w, h)
		s.dc.SetColor(stroke)
		s.dc.SetLineWidth(width * s.zoom)
		s.dc.Stroke()
	}
}

func (s *RasterSurface) DrawLine(x1, y1, x2, y2 float64, c layout.Color, width float64) {
	if c.IsNone() {
		return
	}
	z := s.zoom
	s.dc.SetColor(c)
	s.dc.SetLineWidth(width * z)
	s.dc.DrawLine(x1*z, y1*z, x2*z, y2*z)
	s.dc.Stroke()
}

func (s *RasterSurface) DrawDashedRect(r layout.Rect, stroke layout.Color, width float64, dash []float64) {
	if stroke.IsNone() || r.W <= 0 || r.H <= 0 {
		return
	}
	scaled := make([]float64, len(dash))
	for i, d := range dash {
		scaled[i] = d * s.zoom
	}
	x, y, w, h := s.px(r)
	s.dc.SetDash(scaled...)
	s.dc.DrawRectangle(x, y, w, h)
	s.dc.SetColor(stroke)
	s.dc.SetLineWidth(width * s.zoom)
	s.dc.Stroke()
	s.dc.SetDash()
}

func (s *RasterSurface) DrawText(t layout.Text) {
	if t.Value == "" || t.Size <= 0 {
		return
	}
	s.dc.SetFontFace(s.face(t.Size*s.zoom, t.Bold))
	s.dc.SetColor(t.Color)
	s.dc.DrawStringAnchored(t.Value, t.X*s.zoom, t.Y*s.zoom, anchorX(t.Anchor), 0)
}

func (s *RasterSurface) px(r layout.Rect) (x, y, w, h float64) {
	z := s.zoom
	return r.X * z, r.Y * z, r.W * z, r.H * z
}

func anchorX(a layout.Anchor) float64 {
	switch a {
	case layout.AnchorMiddle:
		return 0.5
	case layout.AnchorEnd:
		return 1
	default:
		return 0
	}
}

type faceKey struct {
	size float64
	bold bool
}

var (
	fontsOnce   sync.Once
	regularFont *opentype.Font
	boldFont    *opentype.Font
	fontsErr    error
)

// face returns a Go font face of the given pixel size. Faces are cached per
// surface since they are not safe for concurrent use. The Go fonts are
// compiled in; if they fail to parse the surface falls back to basicfont.
func (s *RasterSurface) face(size float64, bold bool) font.Face {
	fontsOnce.Do(func() {
		regularFont, fontsErr = opentype.Parse(goregular.TTF)
		if fontsErr == nil {
			boldFont, fontsErr = opentype.Parse(gobold.TTF)
		}
	})
	if fontsErr != nil {
		return basicfont.Face7x13
	}

	key := faceKey{size: size, bold: bold}
	if f, ok := s.faces[key]; ok {
		return f
	}
	src := regularFont
	if bold {
		src = boldFont
	}
	f, err := opentype.NewFace(src, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return basicfont.Face7x13
	}
	s.faces[key] = f
	return f
}
