package model

import "math"

// SheetEstimate holds an area-based estimate of how many sheets a cut list needs.
// It is a lower bound: real layouts lose extra material to fragmentation.
type SheetEstimate struct {
	TotalPartArea     float64 `json:"total_part_area"`     // Area of all parts including kerf allowance
	TotalSquareFeet   float64 `json:"total_square_feet"`   // Same area in square feet (inch inputs)
	SheetArea         float64 `json:"sheet_area"`          // Area of one sheet
	SheetsNeededExact float64 `json:"sheets_needed_exact"` // Fractional sheet count
	SheetsNeededMin   int     `json:"sheets_needed_min"`   // Ceiling of the exact count
	SheetsWithWaste   int     `json:"sheets_with_waste"`   // Recommended count after the waste factor
	WastePercent      float64 `json:"waste_percent"`       // Waste factor applied, e.g. 15 for 15%
	Kerf              float64 `json:"kerf"`
}

// squareInchesPerSquareFoot converts inch areas into square feet.
const squareInchesPerSquareFoot = 144.0

// EstimateSheets computes how many sheets of stock a cut list needs by area.
// Each part is grown by the kerf on both axes before summing.
func EstimateSheets(parts []Part, stock StockSpec, kerf, wastePercent float64) SheetEstimate {
	var totalPartArea float64
	for _, p := range parts {
		if p.Quantity <= 0 {
			continue
		}
		totalPartArea += (p.Length + kerf) * (p.Width + kerf) * float64(p.Quantity)
	}

	sheetArea := stock.Area()
	if sheetArea <= 0 {
		return SheetEstimate{
			TotalPartArea:   totalPartArea,
			TotalSquareFeet: totalPartArea / squareInchesPerSquareFoot,
			WastePercent:    wastePercent,
			Kerf:            kerf,
		}
	}

	exact := totalPartArea / sheetArea
	minSheets := int(math.Ceil(exact))

	wasteFactor := 1.0 + (wastePercent / 100.0)
	withWaste := int(math.Ceil(exact * wasteFactor))
	if withWaste < minSheets {
		withWaste = minSheets
	}

	return SheetEstimate{
		TotalPartArea:     totalPartArea,
		TotalSquareFeet:   totalPartArea / squareInchesPerSquareFoot,
		SheetArea:         sheetArea,
		SheetsNeededExact: exact,
		SheetsNeededMin:   minSheets,
		SheetsWithWaste:   withWaste,
		WastePercent:      wastePercent,
		Kerf:              kerf,
	}
}
