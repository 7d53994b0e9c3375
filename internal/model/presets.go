package model

import (
	"fmt"
	"strings"
)

// StockPreset is a named, commonly stocked sheet size.
type StockPreset struct {
	Name        string    `json:"name"`
	Material    string    `json:"material"`
	Length      float64   `json:"length"`
	Width       float64   `json:"width"`
	Thicknesses []float64 `json:"thicknesses"`
}

// ToStock converts the preset into a StockSpec of the given thickness.
// A zero thickness picks the thickest listed size.
func (p StockPreset) ToStock(thickness float64) StockSpec {
	if thickness == 0 && len(p.Thicknesses) > 0 {
		thickness = p.Thicknesses[len(p.Thicknesses)-1]
	}
	return StockSpec{
		Length:    p.Length,
		Width:     p.Width,
		Material:  p.Material,
		Thickness: thickness,
	}
}

// String returns e.g. "plywood standard (96 x 48)".
func (p StockPreset) String() string {
	return fmt.Sprintf("%s %s (%g x %g)", p.Material, p.Name, p.Length, p.Width)
}

// StandardSheets lists common North American sheet goods, in inches.
var StandardSheets = []StockPreset{
	{Name: "standard", Material: "plywood", Length: 96, Width: 48, Thicknesses: []float64{0.25, 0.375, 0.5, 0.625, 0.75}},
	{Name: "half_sheet", Material: "plywood", Length: 48, Width: 48, Thicknesses: []float64{0.25, 0.375, 0.5, 0.625, 0.75}},
	{Name: "quarter_sheet", Material: "plywood", Length: 48, Width: 24, Thicknesses: []float64{0.25, 0.375, 0.5, 0.625, 0.75}},
	{Name: "standard", Material: "mdf", Length: 96, Width: 48, Thicknesses: []float64{0.25, 0.5, 0.75}},
	{Name: "oversized", Material: "mdf", Length: 97, Width: 49, Thicknesses: []float64{0.25, 0.5, 0.75}},
	{Name: "standard", Material: "particle_board", Length: 96, Width: 48, Thicknesses: []float64{0.5, 0.625, 0.75}},
}

// PresetsForMaterial returns the standard sheets of one material.
func PresetsForMaterial(material string) []StockPreset {
	var out []StockPreset
	for _, p := range StandardSheets {
		if p.Material == material {
			out = append(out, p)
		}
	}
	return out
}

// FindPreset returns the preset with the given material and name, or nil.
func FindPreset(material, name string) *StockPreset {
	for i := range StandardSheets {
		if StandardSheets[i].Material == material && StandardSheets[i].Name == name {
			return &StandardSheets[i]
		}
	}
	return nil
}

// LookupPreset resolves a "material/name" reference such as
// "plywood/half_sheet". A bare material picks its first preset.
func LookupPreset(ref string) (StockPreset, error) {
	material, name, hasName := strings.Cut(strings.ToLower(strings.TrimSpace(ref)), "/")
	if !hasName {
		presets := PresetsForMaterial(material)
		if len(presets) == 0 {
			return StockPreset{}, fmt.Errorf("unknown stock material %q", material)
		}
		return presets[0], nil
	}
	p := FindPreset(material, name)
	if p == nil {
		return StockPreset{}, fmt.Errorf("unknown stock preset %q", ref)
	}
	return *p, nil
}

// StandardLumberLengths are the common board lengths, in inches, that
// dimensional lumber is sold in.
var StandardLumberLengths = []float64{48, 72, 96, 120, 144, 192}
