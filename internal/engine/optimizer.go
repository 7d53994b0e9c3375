package engine

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/piwi3910/woodcut/internal/model"
)

// ErrInvalidInput marks a precondition failure: degenerate stock, kerf or
// part dimensions. It is distinct from pieces that simply do not fit, which
// are reported in the result's unplaced list.
var ErrInvalidInput = errors.New("invalid input")

// Pack expands the catalog parts and packs them onto as many sheets of
// stock as needed. The only error is a wrapped ErrInvalidInput.
func Pack(parts []model.Part, stock model.StockSpec, kerf float64) (model.PackingResult, error) {
	if err := Validate(parts, stock, kerf); err != nil {
		return model.PackingResult{}, err
	}
	return PackPieces(ExpandParts(parts), stock, kerf), nil
}

// Validate checks the preconditions of Pack.
func Validate(parts []model.Part, stock model.StockSpec, kerf float64) error {
	if !positive(stock.Length) || !positive(stock.Width) {
		return fmt.Errorf("%w: stock dimensions must be positive, got %g x %g", ErrInvalidInput, stock.Length, stock.Width)
	}
	if math.IsNaN(kerf) || math.IsInf(kerf, 0) || kerf < 0 {
		return fmt.Errorf("%w: kerf must be non-negative, got %g", ErrInvalidInput, kerf)
	}
	for i, p := range parts {
		if !positive(p.Length) || !positive(p.Width) {
			return fmt.Errorf("%w: part %d (%s) dimensions must be positive, got %g x %g",
				ErrInvalidInput, i+1, p.DisplayLabel(), p.Length, p.Width)
		}
		if p.Quantity < 0 {
			return fmt.Errorf("%w: part %d (%s) quantity must not be negative, got %d",
				ErrInvalidInput, i+1, p.DisplayLabel(), p.Quantity)
		}
	}
	return nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

// ExpandParts turns each part into Quantity pieces in catalog order. When a
// part has more than one instance, ids and labels get a " (n)" suffix.
func ExpandParts(parts []model.Part) []model.Piece {
	var pieces []model.Piece
	for _, p := range parts {
		label := p.DisplayLabel()
		if p.Quantity == 1 {
			pieces = append(pieces, model.Piece{ID: p.ID, Label: label, Length: p.Length, Width: p.Width})
			continue
		}
		for i := 1; i <= p.Quantity; i++ {
			suffix := fmt.Sprintf(" (%d)", i)
			pieces = append(pieces, model.Piece{
				ID:     p.ID + suffix,
				Label:  label + suffix,
				Length: p.Length,
				Width:  p.Width,
			})
		}
	}
	return pieces
}

// PackPieces runs first-fit decreasing guillotine packing over already
// expanded pieces. Inputs are assumed valid; use Pack for checked input.
func PackPieces(pieces []model.Piece, stock model.StockSpec, kerf float64) model.PackingResult {
	// Largest area first; equal areas keep their input order.
	sorted := make([]model.Piece, len(pieces))
	copy(sorted, pieces)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Area() > sorted[j].Area()
	})

	var sheets []*sheetPacker
	result := model.PackingResult{
		Sheets:   []model.SheetLayout{},
		Unplaced: []model.UnplacedPiece{},
		Kerf:     kerf,
	}

	for _, p := range sorted {
		result.TotalPartsArea += p.Area()

		placed := false
		for _, sp := range sheets {
			if sp.insert(p) {
				placed = true
				break
			}
		}
		if placed {
			continue
		}

		if !fitsStock(p, stock, kerf) {
			result.Unplaced = append(result.Unplaced, model.UnplacedPiece{
				PieceID: p.ID,
				Length:  p.Length,
				Width:   p.Width,
			})
			continue
		}

		sp := newSheetPacker(stock, kerf)
		sp.insert(p)
		sheets = append(sheets, sp)
	}

	for _, sp := range sheets {
		result.Sheets = append(result.Sheets, sp.layout)
	}
	result.TotalStockArea = float64(len(sheets)) * stock.Area()
	if result.TotalStockArea > 0 {
		// Unplaced pieces count toward demand, which can exceed the opened stock.
		waste := (result.TotalStockArea - result.TotalPartsArea) / result.TotalStockArea * 100
		result.WastePercentage = math.Max(0, waste)
	}
	return result
}
