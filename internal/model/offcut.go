package model

import (
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
)

// Offcut is a usable rectangular remnant left on a sheet after cutting.
type Offcut struct {
	ID         string  `json:"id"`
	Source     string  `json:"source,omitempty"` // project the offcut was cut from
	Material   string  `json:"material"`
	Thickness  float64 `json:"thickness"`
	SheetIndex int     `json:"sheet_index"` // Index of the source sheet in the result
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Length     float64 `json:"length"` // extent along the stock length
	Width      float64 `json:"width"`  // extent along the stock width
}

// Area returns the area of the offcut.
func (o Offcut) Area() float64 {
	return o.Length * o.Width
}

// Key identifies an offcut by its source, stock and position on the sheet.
// Rerunning the same project yields the same keys.
func (o Offcut) Key() string {
	return fmt.Sprintf("%s|%s|%g|%d|%g|%g|%g|%g",
		o.Source, o.Material, o.Thickness, o.SheetIndex, o.X, o.Y, o.Length, o.Width)
}

func offcutID(o Offcut) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(o.Key())).String()[:8]
}

// WithSource tags offcuts with the project they came from and derives
// their IDs again.
func WithSource(offcuts []Offcut, source string) []Offcut {
	out := make([]Offcut, len(offcuts))
	for i, o := range offcuts {
		o.Source = source
		o.ID = offcutID(o)
		out[i] = o
	}
	return out
}

// ToStock converts an offcut into stock for a later project.
func (o Offcut) ToStock() StockSpec {
	return StockSpec{
		Length:    o.Length,
		Width:     o.Width,
		Material:  o.Material,
		Thickness: o.Thickness,
	}
}

// OffcutLimits sets how big a remnant must be to count as reusable.
type OffcutLimits struct {
	MinDimension float64 `json:"min_dimension" yaml:"min_dimension" mapstructure:"min_dimension"`
	MinArea      float64 `json:"min_area" yaml:"min_area" mapstructure:"min_area"`
}

// DefaultOffcutLimits keeps strips at least 6" wide and one square foot in area.
func DefaultOffcutLimits() OffcutLimits {
	return OffcutLimits{MinDimension: 6, MinArea: 144}
}

func (l OffcutLimits) accepts(length, width float64) bool {
	return length >= l.MinDimension && width >= l.MinDimension && length*width >= l.MinArea
}

// DetectOffcuts finds the strips to the right of and below the bounding box
// of all placements on a sheet, keeping those that pass the limits.
func DetectOffcuts(sl SheetLayout, sheetIndex int, kerf float64, limits OffcutLimits) []Offcut {
	sheetL := sl.Stock.Length
	sheetW := sl.Stock.Width

	newOffcut := func(x, y, l, w float64) Offcut {
		o := Offcut{
			Material:   sl.Stock.Material,
			Thickness:  sl.Stock.Thickness,
			SheetIndex: sheetIndex,
			X:          x,
			Y:          y,
			Length:     l,
			Width:      w,
		}
		o.ID = offcutID(o)
		return o
	}

	if len(sl.Placements) == 0 {
		if !limits.accepts(sheetL, sheetW) {
			return nil
		}
		return []Offcut{newOffcut(0, 0, sheetL, sheetW)}
	}

	var maxRight, maxBottom float64
	for _, p := range sl.Placements {
		right := p.X + p.Width + kerf
		bottom := p.Y + p.Height + kerf
		if right > maxRight {
			maxRight = right
		}
		if bottom > maxBottom {
			maxBottom = bottom
		}
	}

	var offcuts []Offcut

	// Right strip spans the full sheet width.
	rightL := sheetL - maxRight
	if limits.accepts(rightL, sheetW) {
		offcuts = append(offcuts, newOffcut(maxRight, 0, rightL, sheetW))
	}

	// Bottom strip stops at the right edge of the parts so it never overlaps the right strip.
	bottomW := sheetW - maxBottom
	usableL := math.Min(maxRight, sheetL)
	if limits.accepts(usableL, bottomW) {
		offcuts = append(offcuts, newOffcut(0, maxBottom, usableL, bottomW))
	}

	sort.SliceStable(offcuts, func(i, j int) bool {
		return offcuts[i].Area() > offcuts[j].Area()
	})
	return offcuts
}

// DetectAllOffcuts finds offcuts across all sheets in a result.
func DetectAllOffcuts(result PackingResult, limits OffcutLimits) []Offcut {
	var all []Offcut
	for i, sheet := range result.Sheets {
		all = append(all, DetectOffcuts(sheet, i, result.Kerf, limits)...)
	}
	return all
}

// TotalOffcutArea returns the combined area of the offcuts.
func TotalOffcutArea(offcuts []Offcut) float64 {
	var total float64
	for _, o := range offcuts {
		total += o.Area()
	}
	return total
}
