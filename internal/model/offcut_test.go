package model

import (
	"testing"
)

func TestDetectOffcutsEmptySheet(t *testing.T) {
	sl := SheetLayout{Stock: DefaultStock()}
	offcuts := DetectOffcuts(sl, 0, 0.125, DefaultOffcutLimits())
	if len(offcuts) != 1 {
		t.Fatalf("expected 1 offcut for empty sheet, got %d", len(offcuts))
	}
	if offcuts[0].Length != 96 || offcuts[0].Width != 48 {
		t.Errorf("expected full sheet as offcut, got %.0fx%.0f", offcuts[0].Length, offcuts[0].Width)
	}
	if offcuts[0].Material != "plywood" {
		t.Errorf("expected material carried over, got %q", offcuts[0].Material)
	}
}

func TestDetectOffcutsRightStrip(t *testing.T) {
	sl := SheetLayout{
		Stock: DefaultStock(),
		Placements: []PlacedPiece{
			{PieceID: "P1", X: 0, Y: 0, Width: 40, Height: 48},
		},
	}
	offcuts := DetectOffcuts(sl, 0, 0.125, DefaultOffcutLimits())
	if len(offcuts) != 1 {
		t.Fatalf("expected only a right strip, got %d offcuts", len(offcuts))
	}
	o := offcuts[0]
	if o.X != 40.125 || o.Length != 55.875 || o.Width != 48 {
		t.Errorf("unexpected right strip %+v", o)
	}
}

func TestDetectOffcutsBottomStrip(t *testing.T) {
	sl := SheetLayout{
		Stock: DefaultStock(),
		Placements: []PlacedPiece{
			{PieceID: "P1", X: 0, Y: 0, Width: 96, Height: 20},
		},
	}
	offcuts := DetectOffcuts(sl, 2, 0, DefaultOffcutLimits())
	if len(offcuts) != 1 {
		t.Fatalf("expected only a bottom strip, got %d offcuts", len(offcuts))
	}
	o := offcuts[0]
	if o.Y != 20 || o.Width != 28 || o.Length != 96 || o.SheetIndex != 2 {
		t.Errorf("unexpected bottom strip %+v", o)
	}
}

func TestDetectOffcutsSmallRemnantIgnored(t *testing.T) {
	sl := SheetLayout{
		Stock: DefaultStock(),
		Placements: []PlacedPiece{
			{PieceID: "P1", X: 0, Y: 0, Width: 92, Height: 45},
		},
	}
	offcuts := DetectOffcuts(sl, 0, 0.125, DefaultOffcutLimits())
	if len(offcuts) != 0 {
		t.Errorf("expected 0 offcuts for near-full sheet, got %d", len(offcuts))
	}
}

func TestDetectOffcutsSortedByArea(t *testing.T) {
	sl := SheetLayout{
		Stock: DefaultStock(),
		Placements: []PlacedPiece{
			{PieceID: "P1", X: 0, Y: 0, Width: 30, Height: 10},
		},
	}
	offcuts := DetectOffcuts(sl, 0, 0, DefaultOffcutLimits())
	if len(offcuts) != 2 {
		t.Fatalf("expected 2 offcuts, got %d", len(offcuts))
	}
	if offcuts[0].Area() < offcuts[1].Area() {
		t.Error("offcuts should be sorted by area descending")
	}
}

func TestDetectAllOffcuts(t *testing.T) {
	result := PackingResult{
		Kerf: 0.125,
		Sheets: []SheetLayout{
			{Stock: DefaultStock(), Placements: []PlacedPiece{{PieceID: "A", Width: 24, Height: 12}}},
			{Stock: DefaultStock(), Placements: []PlacedPiece{{PieceID: "B", Width: 36, Height: 24}}},
		},
	}
	offcuts := DetectAllOffcuts(result, DefaultOffcutLimits())
	if len(offcuts) != 4 {
		t.Fatalf("expected 4 offcuts from two partially used sheets, got %d", len(offcuts))
	}
	if offcuts[2].SheetIndex != 1 {
		t.Errorf("expected sheet index 1 for third offcut, got %d", offcuts[2].SheetIndex)
	}
}

func TestOffcutToStock(t *testing.T) {
	o := Offcut{Material: "mdf", Thickness: 0.5, Length: 30, Width: 20}
	s := o.ToStock()
	if s.Length != 30 || s.Width != 20 || s.Material != "mdf" || s.Thickness != 0.5 {
		t.Errorf("unexpected stock %+v", s)
	}
}

func TestTotalOffcutArea(t *testing.T) {
	offcuts := []Offcut{
		{Length: 50, Width: 30},
		{Length: 20, Width: 10},
	}
	if total := TotalOffcutArea(offcuts); total != 1700 {
		t.Errorf("expected total area 1700, got %.0f", total)
	}
}

func TestDetectOffcutsEmptySheetRespectsLimits(t *testing.T) {
	sl := SheetLayout{Stock: StockSpec{Length: 10, Width: 4, Material: "plywood"}}
	offcuts := DetectOffcuts(sl, 0, 0, DefaultOffcutLimits())
	if len(offcuts) != 0 {
		t.Errorf("expected no offcut for a 10x4 sheet below the limits, got %d", len(offcuts))
	}
}

func TestDetectOffcutsStableIDs(t *testing.T) {
	sl := SheetLayout{
		Stock:      DefaultStock(),
		Placements: []PlacedPiece{{PieceID: "P1", Width: 30, Height: 10}},
	}
	first := DetectOffcuts(sl, 0, 0.125, DefaultOffcutLimits())
	second := DetectOffcuts(sl, 0, 0.125, DefaultOffcutLimits())
	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("expected 2 offcuts per run, got %d and %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("offcut %d: ID changed between runs: %s vs %s", i, first[i].ID, second[i].ID)
		}
	}
	if first[0].ID == first[1].ID {
		t.Errorf("distinct offcuts share ID %s", first[0].ID)
	}
}

func TestWithSource(t *testing.T) {
	offcuts := []Offcut{{Material: "plywood", Thickness: 0.75, Length: 40, Width: 20}}
	a := WithSource(offcuts, "Bookcase")
	b := WithSource(offcuts, "Desk")
	if a[0].Source != "Bookcase" {
		t.Errorf("expected source Bookcase, got %q", a[0].Source)
	}
	if a[0].ID == b[0].ID {
		t.Error("offcuts from different projects should get different IDs")
	}
	if offcuts[0].Source != "" {
		t.Error("WithSource must not modify its input")
	}
}
