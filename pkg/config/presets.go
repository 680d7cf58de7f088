package config

import (
	"slices"
	"strings"

	"github.com/matzehuels/timegrid/pkg/errors"
	"github.com/matzehuels/timegrid/pkg/layout"
)

// Units of a preset's page size.
const (
	UnitPoints = "pt"
	UnitPixels = "px"
)

// Preset is a named output target: page size, margin and the zoom used
// when rasterizing it.
type Preset struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	Margin      float64 `json:"margin"`
	Unit        string  `json:"unit"`
	Zoom        float64 `json:"zoom"`               // raster pixels per page unit
	TriColor    bool    `json:"triColor,omitempty"` // black/red/white e-paper
}

// DefaultPreset is used when no target is configured.
const DefaultPreset = "letter-portrait"

var presets = []Preset{
	{Name: "letter-portrait", Description: "US letter, portrait", Width: 612, Height: 792, Margin: 18, Unit: UnitPoints, Zoom: 2},
	{Name: "letter-landscape", Description: "US letter, landscape", Width: 792, Height: 612, Margin: 18, Unit: UnitPoints, Zoom: 2},
	{Name: "a4-portrait", Description: "ISO A4, portrait", Width: 595, Height: 842, Margin: 18, Unit: UnitPoints, Zoom: 2},
	{Name: "a4-landscape", Description: "ISO A4, landscape", Width: 842, Height: 595, Margin: 18, Unit: UnitPoints, Zoom: 2},
	{Name: "remarkable-paper-pro", Description: "reMarkable Paper Pro tablet", Width: 1620, Height: 2160, Margin: 48, Unit: UnitPixels, Zoom: 1},
	{Name: "epd-12in48", Description: `12.48" tri-colour e-paper panel`, Width: 1304, Height: 984, Margin: 12, Unit: UnitPixels, Zoom: 1, TriColor: true},
}

// Presets returns every built-in preset in display order.
func Presets() []Preset { return slices.Clone(presets) }

// PresetNames returns the preset names in display order.
func PresetNames() []string {
	names := make([]string, len(presets))
	for i, p := range presets {
		names[i] = p.Name
	}
	return names
}

// LookupPreset finds a preset by name, case-insensitively.
func LookupPreset(name string) (Preset, error) {
	if name == "" {
		name = DefaultPreset
	}
	for _, p := range presets {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	return Preset{}, errors.New(errors.ErrCodeInvalidTarget, "unknown target %q (want one of: %s)", name, strings.Join(PresetNames(), ", "))
}

// Apply returns cfg with the preset's page size and margin. The reference
// design is left alone and scaled onto the page by the engine.
func (p Preset) Apply(cfg layout.Config) layout.Config {
	return cfg.WithPage(p.Width, p.Height, p.Margin)
}
