package layout

import "unicode/utf8"

const (
	// charWidthRatio approximates the advance of an average glyph in a
	// sans-serif face as a fraction of the font size.
	charWidthRatio = 0.55
	// baselineRatio places a baseline so that a line of text is roughly
	// centered on a y coordinate.
	baselineRatio = 0.35
	ellipsis      = ".."
)

// TextWidth estimates the rendered width of s at fontSize.
func TextWidth(s string, fontSize float64) float64 {
	return float64(utf8.RuneCountInString(s)) * fontSize * charWidthRatio
}

// FitLabel truncates label so it fits in width at fontSize, marking the
// cut with "..". It returns the empty string when not even one character
// fits.
func FitLabel(label string, width, fontSize float64) string {
	if fontSize <= 0 || width <= 0 {
		return ""
	}
	maxChars := int(width / (fontSize * charWidthRatio))
	runes := []rune(label)
	if len(runes) <= maxChars {
		return label
	}
	if maxChars <= 0 {
		return ""
	}
	if maxChars <= len(ellipsis) {
		return string(runes[:maxChars])
	}
	return string(runes[:maxChars-len(ellipsis)]) + ellipsis
}

// centeredBaseline returns the baseline that vertically centers a line of
// fontSize text on y.
func centeredBaseline(y, fontSize float64) float64 {
	return y + fontSize*baselineRatio
}
