package engine

import (
	"fmt"
	"math"
	"sort"

	"github.com/piwi3910/woodcut/internal/model"
)

// LinearCut is one piece positioned along a board.
type LinearCut struct {
	PieceID  string  `json:"part_id"`
	Length   float64 `json:"length"`
	Position float64 `json:"position"`
}

// Board is one length of linear stock with its cuts in cut order.
type Board struct {
	StockLength float64     `json:"stock_length"`
	Remaining   float64     `json:"remaining"`
	Cuts        []LinearCut `json:"pieces"`
}

// LinearResult is the outcome of cutting pieces from linear stock.
type LinearResult struct {
	Boards           []Board       `json:"stocks"`
	Unplaced         []model.Piece `json:"unplaced"`
	TotalStockLength float64       `json:"total_stock_length"`
	TotalUsedLength  float64       `json:"total_used_length"`
	WasteLength      float64       `json:"waste_length"`
	WastePercentage  float64       `json:"waste_percentage"`
}

// PackLinear cuts pieces from boards by length only, first fit decreasing.
// A new board is the shortest stock length that holds the piece plus kerf.
func PackLinear(parts []model.Part, stockLengths []float64, kerf float64) (LinearResult, error) {
	if math.IsNaN(kerf) || math.IsInf(kerf, 0) || kerf < 0 {
		return LinearResult{}, fmt.Errorf("%w: kerf must be non-negative, got %g", ErrInvalidInput, kerf)
	}
	for _, l := range stockLengths {
		if !positive(l) {
			return LinearResult{}, fmt.Errorf("%w: stock lengths must be positive, got %g", ErrInvalidInput, l)
		}
	}
	for i, p := range parts {
		if !positive(p.Length) || p.Quantity < 0 {
			return LinearResult{}, fmt.Errorf("%w: part %d (%s) needs a positive length and non-negative quantity",
				ErrInvalidInput, i+1, p.DisplayLabel())
		}
	}

	pieces := ExpandParts(parts)
	sort.SliceStable(pieces, func(i, j int) bool {
		return pieces[i].Length > pieces[j].Length
	})

	lengths := make([]float64, len(stockLengths))
	copy(lengths, stockLengths)
	sort.Float64s(lengths)

	result := LinearResult{Boards: []Board{}, Unplaced: []model.Piece{}}
	for _, p := range pieces {
		need := p.Length + kerf

		placed := false
		for i := range result.Boards {
			b := &result.Boards[i]
			if b.Remaining+FitTolerance >= need {
				b.Cuts = append(b.Cuts, LinearCut{
					PieceID:  p.ID,
					Length:   p.Length,
					Position: b.StockLength - b.Remaining,
				})
				b.Remaining -= need
				placed = true
				break
			}
		}
		if placed {
			continue
		}

		idx := sort.Search(len(lengths), func(i int) bool {
			return lengths[i]+FitTolerance >= need
		})
		if idx == len(lengths) {
			result.Unplaced = append(result.Unplaced, p)
			continue
		}
		result.Boards = append(result.Boards, Board{
			StockLength: lengths[idx],
			Remaining:   lengths[idx] - need,
			Cuts:        []LinearCut{{PieceID: p.ID, Length: p.Length}},
		})
	}

	for _, b := range result.Boards {
		result.TotalStockLength += b.StockLength
		for _, c := range b.Cuts {
			result.TotalUsedLength += c.Length
		}
	}
	if result.TotalStockLength > 0 {
		result.WasteLength = result.TotalStockLength - result.TotalUsedLength
		result.WastePercentage = result.WasteLength / result.TotalStockLength * 100
	}
	return result, nil
}
