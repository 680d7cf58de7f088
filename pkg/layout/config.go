package layout

import (
	"time"

	"github.com/matzehuels/timegrid/pkg/calendar"
	"github.com/matzehuels/timegrid/pkg/errors"
	"github.com/matzehuels/timegrid/pkg/grid"
)

// Config is the reference design and target page of one layout call.
// Sizes are in output units (points for documents, pixels for rasters).
type Config struct {
	StartHour   int `json:"startHour"`
	EndHour     int `json:"endHour"`
	SlotMinutes int `json:"slotMinutes"`

	Margin           float64 `json:"margin"`
	TimeColumnWidth  float64 `json:"timeColumnWidth"`
	DayColumnWidth   float64 `json:"dayColumnWidth"`
	DailyColumnWidth float64 `json:"dailyColumnWidth,omitempty"` // single-day views; 0 uses DayColumnWidth
	RowHeight        float64 `json:"rowHeight"`
	HeaderHeight     float64 `json:"headerHeight"`
	PageWidth        float64 `json:"pageWidth"`
	PageHeight       float64 `json:"pageHeight"`

	MinFontSize    float64 `json:"minFontSize"`
	HeaderFontSize float64 `json:"headerFontSize"`
	TimeFontSize   float64 `json:"timeFontSize"`
	EventFontSize  float64 `json:"eventFontSize"`

	LaneGap  float64 `json:"laneGap"`
	BlockGap float64 `json:"blockGap"`

	LaneScope  grid.LaneScope        `json:"-"`
	OutOfRange grid.OutOfRangePolicy `json:"-"`

	// ScaleOverride forces a scale factor instead of fitting the page. It
	// is capped at the fitted factor.
	ScaleOverride float64 `json:"scaleOverride,omitempty"`

	// Location is the display time zone. Nil means UTC.
	Location *time.Location `json:"-"`

	// Classifier assigns event categories. Nil means calendar.DefaultClassifier.
	Classifier *calendar.Classifier `json:"-"`
}

// DefaultConfig returns the US-letter portrait reference design with a
// 06:00–23:30 window.
func DefaultConfig() Config {
	return Config{
		StartHour:        6,
		EndHour:          23,
		SlotMinutes:      grid.DefaultSlotMinutes,
		Margin:           18,
		TimeColumnWidth:  48,
		DayColumnWidth:   96,
		DailyColumnWidth: 480,
		RowHeight:        20,
		HeaderHeight:     40,
		PageWidth:        612,
		PageHeight:       792,
		MinFontSize:      5,
		HeaderFontSize:   11,
		TimeFontSize:     8,
		EventFontSize:    7,
		LaneGap:          1,
		BlockGap:         1,
	}
}

// Validate reports the first problem with c as a configuration error.
func (c Config) Validate() error {
	if err := errors.ValidateHourRange(c.StartHour, c.EndHour); err != nil {
		return err
	}
	if err := grid.ValidateSlotMinutes(c.SlotMinutes); err != nil {
		return err
	}

	positive := []struct {
		name string
		v    float64
	}{
		{"timeColumnWidth", c.TimeColumnWidth},
		{"dayColumnWidth", c.DayColumnWidth},
		{"rowHeight", c.RowHeight},
		{"headerHeight", c.HeaderHeight},
		{"pageWidth", c.PageWidth},
		{"pageHeight", c.PageHeight},
		{"headerFontSize", c.HeaderFontSize},
		{"timeFontSize", c.TimeFontSize},
		{"eventFontSize", c.EventFontSize},
	}
	for _, f := range positive {
		if err := errors.ValidateDimension(f.name, f.v); err != nil {
			return err
		}
	}

	nonNegative := []struct {
		name string
		v    float64
	}{
		{"margin", c.Margin},
		{"dailyColumnWidth", c.DailyColumnWidth},
		{"minFontSize", c.MinFontSize},
		{"laneGap", c.LaneGap},
		{"blockGap", c.BlockGap},
		{"scaleOverride", c.ScaleOverride},
	}
	for _, f := range nonNegative {
		if err := errors.ValidateNonNegative(f.name, f.v); err != nil {
			return err
		}
	}

	if 2*c.Margin >= c.PageWidth || 2*c.Margin >= c.PageHeight {
		return errors.Configuration("margin %v leaves no drawing area on a %vx%v page", c.Margin, c.PageWidth, c.PageHeight)
	}
	if c.LaneScope != grid.LaneScopeDay && c.LaneScope != grid.LaneScopeCluster {
		return errors.Configuration("unknown lane scope %d", int(c.LaneScope))
	}
	if c.OutOfRange != grid.PolicyDrop && c.OutOfRange != grid.PolicyClampStart {
		return errors.Configuration("unknown out-of-range policy %d", int(c.OutOfRange))
	}
	return nil
}

// ColumnWidth returns the reference day column width for dayCount columns.
func (c Config) ColumnWidth(dayCount int) float64 {
	if dayCount == grid.DailyView && c.DailyColumnWidth > 0 {
		return c.DailyColumnWidth
	}
	return c.DayColumnWidth
}

// Reference returns the unscaled grid size for the given axis lengths.
func (c Config) Reference(dayCount, slotCount int) Reference {
	return Reference{
		TotalWidth:  c.TimeColumnWidth + float64(dayCount)*c.ColumnWidth(dayCount),
		TotalHeight: c.HeaderHeight + float64(slotCount)*c.RowHeight,
	}
}

// Target returns the page the grid is fitted into.
func (c Config) Target() Target {
	return Target{PageWidth: c.PageWidth, PageHeight: c.PageHeight, Margin: c.Margin}
}

// WithPage returns a copy of c with a different page size and margin.
func (c Config) WithPage(width, height, margin float64) Config {
	c.PageWidth, c.PageHeight, c.Margin = width, height, margin
	return c
}

func (c Config) location() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

func (c Config) classifier() calendar.Classifier {
	if c.Classifier == nil {
		return calendar.DefaultClassifier()
	}
	return *c.Classifier
}
