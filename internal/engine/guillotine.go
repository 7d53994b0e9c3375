package engine

import "github.com/piwi3910/woodcut/internal/model"

const (
	// FitTolerance absorbs floating-point error when testing whether a piece fits a region.
	FitTolerance = 0.001
	// MinRegionExtent is the smallest split-off strip still tracked as free space.
	// Anything at or below it is discarded as waste.
	MinRegionExtent = 1.0
)

// rect is an axis-aligned free region on a sheet. x runs along the stock
// length, y along the stock width.
type rect struct {
	x, y, w, h float64
}

// sheetPacker owns the free regions of one opened sheet. Regions are kept
// in creation order and are never merged.
type sheetPacker struct {
	layout    model.SheetLayout
	freeRects []rect
	kerf      float64
}

func newSheetPacker(stock model.StockSpec, kerf float64) *sheetPacker {
	return &sheetPacker{
		layout:    model.SheetLayout{Stock: stock, Placements: []model.PlacedPiece{}},
		freeRects: []rect{{0, 0, stock.Length, stock.Width}},
		kerf:      kerf,
	}
}

// fits reports whether a w x h piece, grown by the kerf, fits inside r.
func fits(w, h, kerf float64, r rect) bool {
	return w+kerf <= r.w+FitTolerance && h+kerf <= r.h+FitTolerance
}

// fitsStock reports whether the piece fits an empty sheet in either orientation.
func fitsStock(p model.Piece, stock model.StockSpec, kerf float64) bool {
	full := rect{0, 0, stock.Length, stock.Width}
	return fits(p.Length, p.Width, kerf, full) || fits(p.Width, p.Length, kerf, full)
}

// insert places the piece in the first region that accepts it, trying the
// normal orientation before the rotated one within each region.
func (sp *sheetPacker) insert(p model.Piece) bool {
	for i, r := range sp.freeRects {
		switch {
		case fits(p.Length, p.Width, sp.kerf, r):
			sp.place(i, p, false)
			return true
		case fits(p.Width, p.Length, sp.kerf, r):
			sp.place(i, p, true)
			return true
		}
	}
	return false
}

// place records the placement at the origin of region i and splits the region.
func (sp *sheetPacker) place(i int, p model.Piece, rotated bool) {
	r := sp.freeRects[i]
	w, h := p.Length, p.Width
	if rotated {
		w, h = h, w
	}

	sp.layout.Placements = append(sp.layout.Placements, model.PlacedPiece{
		PieceID:      p.ID,
		Label:        p.Label,
		X:            r.x,
		Y:            r.y,
		Width:        w,
		Height:       h,
		Rotated:      rotated,
		Length:       p.Length,
		NominalWidth: p.Width,
	})

	sp.freeRects = append(sp.freeRects[:i], sp.freeRects[i+1:]...)
	sp.freeRects = append(sp.freeRects, splitRegion(r, w+sp.kerf, h+sp.kerf)...)
}

// splitRegion makes a guillotine cut around a pw x ph block at the origin of r:
// a strip to the right as tall as the block, then a strip below spanning the
// full width of r.
func splitRegion(r rect, pw, ph float64) []rect {
	var out []rect
	right := rect{x: r.x + pw, y: r.y, w: r.w - pw, h: ph}
	if right.w > MinRegionExtent {
		out = append(out, right)
	}
	below := rect{x: r.x, y: r.y + ph, w: r.w, h: r.h - ph}
	if below.h > MinRegionExtent {
		out = append(out, below)
	}
	return out
}
