package layout

// Reference is the unscaled size of the grid area, excluding margins.
type Reference struct {
	TotalWidth  float64 `json:"totalWidth"`
	TotalHeight float64 `json:"totalHeight"`
}

// Target is the physical output area.
type Target struct {
	PageWidth  float64 `json:"pageWidth"`
	PageHeight float64 `json:"pageHeight"`
	Margin     float64 `json:"margin"`
}

// AvailableWidth returns the page width inside both margins.
func (t Target) AvailableWidth() float64 { return t.PageWidth - 2*t.Margin }

// AvailableHeight returns the page height inside both margins.
func (t Target) AvailableHeight() float64 { return t.PageHeight - 2*t.Margin }

// Scale is a uniform scale factor. X and Y record the per-axis fits it
// was derived from; geometry only ever uses Factor.
type Scale struct {
	Factor float64 `json:"factor"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// ComputeScale fits ref into target. The factor is the width fit unless
// that would overflow the page height, so the scaled grid plus margins
// never exceeds the page in either direction.
func ComputeScale(ref Reference, target Target) Scale {
	x := fit(target.AvailableWidth(), ref.TotalWidth)
	y := fit(target.AvailableHeight(), ref.TotalHeight)
	return Scale{Factor: min(x, y), X: x, Y: y}
}

// FixedScale returns a scale with an explicit factor.
func FixedScale(f float64) Scale {
	return Scale{Factor: f, X: f, Y: f}
}

// Of scales a reference length.
func (s Scale) Of(v float64) float64 { return v * s.Factor }

// Font scales a font size, never going below minSize.
func (s Scale) Font(base, minSize float64) float64 {
	return max(base*s.Factor, minSize)
}

func fit(avail, total float64) float64 {
	if total <= 0 || avail <= 0 {
		return 0
	}
	return avail / total
}
