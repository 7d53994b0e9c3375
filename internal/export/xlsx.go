package export

import (
	"fmt"

	"github.com/piwi3910/woodcut/internal/model"
	"github.com/piwi3910/woodcut/internal/units"
	"github.com/xuri/excelize/v2"
)

// Workbook sheet names.
const (
	SheetCutList  = "Cut List"
	SheetSummary  = "Summary"
	SheetUnplaced = "Unplaced"
)

var cutListHeaders = []interface{}{
	"Sheet", "Piece", "Label", "Length", "Width", "X", "Y", "Placed Length", "Placed Width", "Rotated", "Dimensions",
}

// ExportXLSX writes a workbook with one row per placement, a metrics summary
// and, when needed, the unplaced pieces.
func ExportXLSX(path string, result model.PackingResult, unit units.Unit) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetCutList); err != nil {
		return err
	}
	if err := writeRow(f, SheetCutList, 1, cutListHeaders); err != nil {
		return err
	}

	row := 2
	for i, sheet := range result.Sheets {
		for _, p := range sheet.Placements {
			values := []interface{}{
				i + 1, p.PieceID, p.Label, p.Length, p.NominalWidth,
				p.X, p.Y, p.Width, p.Height, p.Rotated,
				units.FormatDimensions(p.Length, p.NominalWidth, unit),
			}
			if err := writeRow(f, SheetCutList, row, values); err != nil {
				return err
			}
			row++
		}
	}

	if _, err := f.NewSheet(SheetSummary); err != nil {
		return err
	}
	summary := [][]interface{}{
		{"Metric", "Value"},
		{"Units", string(unit)},
		{"Kerf", result.Kerf},
		{"Sheets Used", result.SheetCount()},
		{"Pieces Placed", result.PlacedCount()},
		{"Unplaced Pieces", len(result.Unplaced)},
		{"Total Stock Area", result.TotalStockArea},
		{"Total Parts Area", result.TotalPartsArea},
		{"Waste %", result.WastePercentage},
	}
	for i, values := range summary {
		if err := writeRow(f, SheetSummary, i+1, values); err != nil {
			return err
		}
	}

	if len(result.Unplaced) > 0 {
		if _, err := f.NewSheet(SheetUnplaced); err != nil {
			return err
		}
		if err := writeRow(f, SheetUnplaced, 1, []interface{}{"Piece", "Length", "Width"}); err != nil {
			return err
		}
		for i, u := range result.Unplaced {
			if err := writeRow(f, SheetUnplaced, i+2, []interface{}{u.PieceID, u.Length, u.Width}); err != nil {
				return err
			}
		}
	}

	return f.SaveAs(path)
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}
