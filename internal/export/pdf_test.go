package export

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/woodcut/internal/model"
	"github.com/piwi3910/woodcut/internal/units"
)

// buildTestResult creates a realistic two-sheet packing result.
func buildTestResult() model.PackingResult {
	plywood := model.StockSpec{Length: 96, Width: 48, Material: "plywood", Thickness: 0.75}
	return model.PackingResult{
		Sheets: []model.SheetLayout{
			{
				Stock: plywood,
				Placements: []model.PlacedPiece{
					{PieceID: "side (1)", Label: "Side (1)", X: 0, Y: 0, Width: 30, Height: 12, Length: 30, NominalWidth: 12},
					{PieceID: "side (2)", Label: "Side (2)", X: 30.125, Y: 0, Width: 30, Height: 12, Length: 30, NominalWidth: 12},
					{PieceID: "shelf", Label: "Shelf", X: 0, Y: 12.125, Width: 11.5, Height: 34.5, Rotated: true, Length: 34.5, NominalWidth: 11.5},
				},
			},
			{
				Stock: plywood,
				Placements: []model.PlacedPiece{
					{PieceID: "top", Label: "Top", X: 0, Y: 0, Width: 36, Height: 12, Length: 36, NominalWidth: 12},
				},
			},
		},
		Unplaced:        []model.UnplacedPiece{},
		TotalStockArea:  9216,
		TotalPartsArea:  1548.75,
		WastePercentage: (9216 - 1548.75) / 9216 * 100,
		Kerf:            0.125,
	}
}

func TestExportPDF_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cutlist.pdf")

	if err := ExportPDF(path, buildTestResult(), units.Inches); err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("PDF file was not created: %v", err)
	}
	// Three pages (2 sheets + summary) should be a reasonable size
	if info.Size() < 500 {
		t.Errorf("PDF file seems too small: %d bytes", info.Size())
	}
}

func TestExportPDF_EmptyResult(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pdf")

	err := ExportPDF(path, model.PackingResult{}, units.Inches)
	if !errors.Is(err, ErrNoSheets) {
		t.Fatalf("expected ErrNoSheets, got %v", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("expected no file to be written")
	}
}

func TestExportPDF_WithUnplacedPieces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unplaced.pdf")

	result := buildTestResult()
	result.Unplaced = []model.UnplacedPiece{
		{PieceID: "Table Top", Length: 120, Width: 60},
		{PieceID: "Door (1)", Length: 50, Width: 50},
	}

	if err := ExportPDF(path, result, units.Inches); err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Fatalf("PDF file missing or empty: %v", err)
	}
}

func TestExportPDF_MetricUnits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metric.pdf")

	result := model.PackingResult{
		Sheets: []model.SheetLayout{{
			Stock: model.StockSpec{Length: 2440, Width: 1220, Material: "mdf"},
			Placements: []model.PlacedPiece{
				{PieceID: "p1", Label: "Back Panel", Width: 800, Height: 500, Length: 800, NominalWidth: 500},
			},
		}},
	}

	if err := ExportPDF(path, result, units.Millimeters); err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}
}

func TestExportPDF_ManySheets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "many.pdf")

	result := buildTestResult()
	for i := 0; i < 40; i++ {
		result.Sheets = append(result.Sheets, result.Sheets[1])
	}

	if err := ExportPDF(path, result, units.Inches); err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}
}

func TestLabelFontSize(t *testing.T) {
	tests := []struct {
		w, h float64
		want float64
	}{
		{100, 50, 8},
		{30, 25, 7},
		{15, 10, 6},
	}
	for _, tc := range tests {
		if got := labelFontSize(tc.w, tc.h); got != tc.want {
			t.Errorf("labelFontSize(%v, %v) = %v, want %v", tc.w, tc.h, got, tc.want)
		}
	}
}
