package sink

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/matzehuels/timegrid/pkg/layout"
)

// Geometry of the 12.48" tri-colour e-paper panel.
const (
	EPDWidth  = 1304
	EPDHeight = 984
)

// Planes holds packed 1bpp black and red planes for a tri-colour e-paper
// panel. Rows are y-major, MSB-first, Stride bytes each. A set bit is white;
// a cleared bit is ink.
type Planes struct {
	Width  int
	Height int
	Stride int
	Black  []byte
	Red    []byte
}

// Bytes returns the black plane followed by the red plane, the order the
// panel driver expects them.
func (p Planes) Bytes() []byte {
	out := make([]byte, 0, len(p.Black)+len(p.Red))
	out = append(out, p.Black...)
	return append(out, p.Red...)
}

// Ink reports the ink at pixel (x, y).
func (p Planes) Ink(x, y int) Ink {
	i, mask := p.Stride*y+x>>3, byte(0x80>>(x&7))
	switch {
	case p.Black[i]&mask == 0:
		return InkBlack
	case p.Red[i]&mask == 0:
		return InkRed
	default:
		return InkWhite
	}
}

// Ink is the colour a panel pixel is driven to.
type Ink int

const (
	InkWhite Ink = iota
	InkBlack
	InkRed
)

// Thresholds control pixel classification. A pixel is red when its red
// channel exceeds MinRed and leads both other channels by more than
// MinRedness. Otherwise it is black when its luma is below MaxBlackLuma.
// Pixels with alpha below MinAlpha are white.
type Thresholds struct {
	MinAlpha     uint8
	MaxBlackLuma float64
	MinRed       uint8
	MinRedness   int
}

// DefaultThresholds tunes classification for the grid palette: grid lines
// and accents ink black, the holiday orange inks red, and the pale row and
// header fills stay white.
func DefaultThresholds() Thresholds {
	return Thresholds{MinAlpha: 128, MaxBlackLuma: 200, MinRed: 128, MinRedness: 32}
}

// Classify maps one pixel to an ink.
func (t Thresholds) Classify(r, g, b, a uint8) Ink {
	if a < t.MinAlpha {
		return InkWhite
	}
	if r > t.MinRed && int(r)-int(max(g, b)) > t.MinRedness {
		return InkRed
	}
	if 0.299*float64(r)+0.587*float64(g)+0.114*float64(b) < t.MaxBlackLuma {
		return InkBlack
	}
	return InkWhite
}

// EPDOption configures e-paper rendering.
type EPDOption func(*epdRenderer)

type epdRenderer struct {
	width, height int
	thresholds    Thresholds
}

// WithPanel overrides the panel resolution.
func WithPanel(width, height int) EPDOption {
	return func(r *epdRenderer) { r.width, r.height = width, height }
}

// WithThresholds overrides pixel classification.
func WithThresholds(t Thresholds) EPDOption {
	return func(r *epdRenderer) { r.thresholds = t }
}

// RenderEPD rasterizes the layout at the largest zoom that fits the whole
// page on the panel and packs it into black and red planes. A page with a
// different aspect ratio than the panel is centred with white bars.
func RenderEPD(l layout.Resolved, opts ...EPDOption) (Planes, error) {
	r := epdRenderer{width: EPDWidth, height: EPDHeight, thresholds: DefaultThresholds()}
	for _, opt := range opts {
		opt(&r)
	}
	if r.width <= 0 || r.height <= 0 {
		return Planes{}, fmt.Errorf("epd: invalid panel size %dx%d", r.width, r.height)
	}
	if l.Page.Width <= 0 || l.Page.Height <= 0 {
		return Planes{}, fmt.Errorf("epd: layout has no page size")
	}
	zoom := min(float64(r.width)/l.Page.Width, float64(r.height)/l.Page.Height)
	return Pack(Rasterize(l, zoom, layout.White), r.width, r.height, r.thresholds), nil
}

// Pack converts img into panel planes of the given size. img is centred on
// the panel; a larger image is cropped around its centre and panel pixels
// outside img are white.
func Pack(img image.Image, width, height int, t Thresholds) Planes {
	src := toNRGBA(img)
	b := src.Bounds()
	stride := (width + 7) / 8
	p := Planes{
		Width:  width,
		Height: height,
		Stride: stride,
		Black:  whitePlane(stride * height),
		Red:    whitePlane(stride * height),
	}

	offX, offY := (b.Dx()-width)/2, (b.Dy()-height)/2
	for y := range height {
		sy := offY + y
		if sy < 0 || sy >= b.Dy() {
			continue
		}
		row := src.Pix[sy*src.Stride:]
		for x := range width {
			sx := offX + x
			if sx < 0 || sx >= b.Dx() {
				continue
			}
			px := row[sx*4 : sx*4+4]
			ink := t.Classify(px[0], px[1], px[2], px[3])
			if ink == InkWhite {
				continue
			}
			i, mask := y*stride+x>>3, byte(0x80>>(x&7))
			if ink == InkBlack {
				p.Black[i] &^= mask
			} else {
				p.Red[i] &^= mask
			}
		}
	}
	return p
}

func whitePlane(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = 0xff
	}
	return b
}

func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok {
		return n
	}
	n := image.NewNRGBA(img.Bounds())
	draw.Draw(n, n.Bounds(), img, img.Bounds().Min, draw.Src)
	return n
}
