package layout

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/timegrid/pkg/calendar"
)

// Color is an 8-bit RGBA colour. The zero value is fully transparent and
// means "none" to every surface. Color implements [image/color.Color].
type Color struct {
	R, G, B, A uint8
}

// RGB returns an opaque colour.
func RGB(r, g, b uint8) Color { return Color{R: r, G: g, B: b, A: 0xff} }

// Palette.
var (
	None       = Color{}
	White      = RGB(0xff, 0xff, 0xff)
	Black      = RGB(0x00, 0x00, 0x00)
	Navy       = RGB(0x24, 0x3b, 0x53)
	CoolGrey   = RGB(0xaa, 0xb8, 0xc2)
	LightGrey  = RGB(0xf5, 0xf7, 0xfa)
	HourShade  = RGB(0xf8, 0xfa, 0xfc)
	Cornflower = RGB(100, 149, 237)
	Forest     = RGB(34, 139, 34)
	Orange     = RGB(255, 165, 0)
	Cream      = RGB(0xff, 0xf8, 0xe1)
)

// IsNone reports whether c is fully transparent.
func (c Color) IsNone() bool { return c.A == 0 }

// RGBA implements image/color.Color with alpha-premultiplied components.
func (c Color) RGBA() (r, g, b, a uint32) {
	a = uint32(c.A)
	a |= a << 8
	r = uint32(c.R) * a / 0xff
	g = uint32(c.G) * a / 0xff
	b = uint32(c.B) * a / 0xff
	return r, g, b, a
}

// Hex formats c as #rrggbb, or "none" when transparent.
func (c Color) Hex() string {
	if c.IsNone() {
		return "none"
	}
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c Color) String() string { return c.Hex() }

// ParseColor parses "#rrggbb", "rrggbb", or "none".
func ParseColor(s string) (Color, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if s == "none" || s == "" {
		return None, nil
	}
	if len(s) != 6 {
		return None, fmt.Errorf("invalid colour %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return None, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return RGB(uint8(v>>16), uint8(v>>8), uint8(v)), nil
}

// MarshalText encodes c as Hex.
func (c Color) MarshalText() ([]byte, error) { return []byte(c.Hex()), nil }

// UnmarshalText decodes a Hex string.
func (c *Color) UnmarshalText(b []byte) error {
	parsed, err := ParseColor(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Style is the visual treatment of an event block.
type Style struct {
	Fill        Color     `json:"fill"`
	Border      Color     `json:"border"`
	BorderWidth float64   `json:"borderWidth"`
	Dash        []float64 `json:"dash,omitempty"` // on/off lengths; empty is solid
	Accent      Color     `json:"accent"`
	AccentWidth float64   `json:"accentWidth"` // left edge bar; 0 for none
	Text        Color     `json:"text"`
}

// Dashed reports whether the border is drawn with a dash pattern.
func (s Style) Dashed() bool { return len(s.Dash) > 0 }

// Scaled returns a copy of s with stroke widths and dash lengths scaled.
func (s Style) Scaled(f float64) Style {
	s.BorderWidth *= f
	s.AccentWidth *= f
	if len(s.Dash) > 0 {
		dash := make([]float64, len(s.Dash))
		for i, d := range s.Dash {
			dash[i] = d * f
		}
		s.Dash = dash
	}
	return s
}

var styles = map[calendar.Category]Style{
	calendar.PracticeAppointment: {
		Fill:        White,
		Border:      Cornflower,
		BorderWidth: 1,
		Accent:      Cornflower,
		AccentWidth: 3,
		Text:        Navy,
	},
	calendar.ExternalCalendar: {
		Fill:        White,
		Border:      Forest,
		BorderWidth: 1,
		Dash:        []float64{3, 2},
		Text:        Navy,
	},
	calendar.Holiday: {
		Fill:        Cream,
		Border:      Orange,
		BorderWidth: 1,
		Accent:      Orange,
		AccentWidth: 3,
		Text:        Navy,
	},
	calendar.Manual: {
		Fill:        LightGrey,
		Border:      CoolGrey,
		BorderWidth: 1,
		Text:        Navy,
	},
}

// StyleFor returns the base style of a category. Unknown categories get
// the Manual style. The returned value shares no memory with the table.
func StyleFor(c calendar.Category) Style {
	s, ok := styles[c]
	if !ok {
		s = styles[calendar.Manual]
	}
	s.Dash = slices.Clone(s.Dash)
	return s
}
