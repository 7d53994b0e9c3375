// Package export writes packing results to PDF, labels, SVG, PNG, DXF,
// XLSX and JSON.
package export

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/woodcut/internal/model"
	"github.com/piwi3910/woodcut/internal/units"
)

// ErrNoSheets is returned by exporters that need at least one opened sheet.
var ErrNoSheets = errors.New("no sheets to export")

// partColor represents an RGB color for a placed piece.
type partColor struct {
	R, G, B int
}

var partColors = []partColor{
	{R: 144, G: 238, B: 144}, // light green
	{R: 135, G: 206, B: 235}, // sky blue
	{R: 221, G: 160, B: 221}, // plum
	{R: 240, G: 230, B: 140}, // khaki
	{R: 255, G: 160, B: 122}, // salmon
	{R: 255, G: 152, B: 0},   // orange
	{R: 0, G: 188, B: 212},   // cyan
	{R: 121, G: 85, B: 72},   // brown
}

func colorFor(i int) partColor {
	return partColors[i%len(partColors)]
}

// Page layout constants (US Letter landscape in mm).
const (
	pageWidth    = 279.4
	pageHeight   = 215.9
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	statsHeight  = 20.0
	drawAreaTop  = marginTop + headerHeight + 5.0
)

// ExportPDF writes one page per sheet with a scaled layout diagram, followed
// by a summary page. Dimensions are printed in the given unit.
func ExportPDF(path string, result model.PackingResult, unit units.Unit) error {
	if len(result.Sheets) == 0 {
		return ErrNoSheets
	}

	pdf := fpdf.New("L", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	for i, sheet := range result.Sheets {
		pdf.AddPage()
		renderSheetPage(pdf, sheet, unit, i+1)
	}

	pdf.AddPage()
	renderSummaryPage(pdf, result, unit)

	return pdf.OutputFileAndClose(path)
}

func sheetTitle(sheet model.SheetLayout, num int, unit units.Unit) string {
	material := sheet.Stock.Material
	if material == "" {
		material = "stock"
	}
	return fmt.Sprintf("Sheet %d: %s (%s)", num, material,
		units.FormatDimensions(sheet.Stock.Length, sheet.Stock.Width, unit))
}

// renderSheetPage draws a single sheet on the current PDF page. Stock length
// runs left to right.
func renderSheetPage(pdf *fpdf.Fpdf, sheet model.SheetLayout, unit units.Unit, sheetNum int) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, sheetTitle(sheet, sheetNum, unit), "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Pieces: %d | Used area: %.1f | Total area: %.1f | Efficiency: %.1f%%",
		len(sheet.Placements), sheet.UsedArea(), sheet.TotalArea(), sheet.Efficiency())
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom - statsHeight

	scale := math.Min(drawWidth/sheet.Stock.Length, drawHeight/sheet.Stock.Width)
	canvasW := sheet.Stock.Length * scale
	canvasH := sheet.Stock.Width * scale

	offsetX := marginLeft + (drawWidth-canvasW)/2
	offsetY := drawAreaTop

	// Stock background (wood color)
	pdf.SetFillColor(210, 180, 140)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.5)
	pdf.Rect(offsetX, offsetY, canvasW, canvasH, "FD")

	for i, p := range sheet.Placements {
		col := colorFor(i)
		pw := p.Width * scale
		ph := p.Height * scale
		px := offsetX + p.X*scale
		py := offsetY + p.Y*scale

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.SetDrawColor(30, 30, 30)
		pdf.SetLineWidth(0.3)
		pdf.Rect(px, py, pw, ph, "FD")

		if pw > 15 && ph > 8 {
			pdf.SetFont("Helvetica", "", labelFontSize(pw, ph))
			pdf.SetTextColor(0, 0, 0)

			label := p.Label
			if p.Rotated {
				label += " (R)"
			}
			dims := units.FormatDimensions(p.Length, p.NominalWidth, unit)

			labelW := pdf.GetStringWidth(label)
			dimsW := pdf.GetStringWidth(dims)

			if labelW < pw-2 {
				pdf.SetXY(px+(pw-labelW)/2, py+ph/2-4)
				pdf.CellFormat(labelW, 4, label, "", 0, "C", false, 0, "")
			}
			if ph > 14 && dimsW < pw-2 {
				pdf.SetXY(px+(pw-dimsW)/2, py+ph/2)
				pdf.CellFormat(dimsW, 4, dims, "", 0, "C", false, 0, "")
			}
		}
	}

	drawDimensionAnnotations(pdf, sheet.Stock, unit, offsetX, offsetY, canvasW, canvasH)
	drawPartsLegend(pdf, sheet, unit, offsetY+canvasH+6)
}

// drawDimensionAnnotations labels the stock length below the sheet and its
// width to the left.
func drawDimensionAnnotations(pdf *fpdf.Fpdf, stock model.StockSpec, unit units.Unit, offsetX, offsetY, canvasW, canvasH float64) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)

	lengthLabel := units.FormatLength(stock.Length, unit)
	lw := pdf.GetStringWidth(lengthLabel)
	pdf.SetXY(offsetX+(canvasW-lw)/2, offsetY+canvasH+1)
	pdf.CellFormat(lw, 4, lengthLabel, "", 0, "C", false, 0, "")

	widthLabel := units.FormatLength(stock.Width, unit)
	pdf.TransformBegin()
	pdf.TransformRotate(90, offsetX-3, offsetY+canvasH/2)
	ww := pdf.GetStringWidth(widthLabel)
	pdf.SetXY(offsetX-3-ww/2, offsetY+canvasH/2-2)
	pdf.CellFormat(ww, 4, widthLabel, "", 0, "C", false, 0, "")
	pdf.TransformEnd()

	pdf.SetTextColor(0, 0, 0)
}

// drawPartsLegend renders a compact legend of placed pieces under the diagram.
func drawPartsLegend(pdf *fpdf.Fpdf, sheet model.SheetLayout, unit units.Unit, startY float64) {
	if len(sheet.Placements) == 0 {
		return
	}

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, startY)
	pdf.CellFormat(30, 4, "Pieces placed:", "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	xPos := marginLeft + 32
	maxX := pageWidth - marginRight

	for i, p := range sheet.Placements {
		col := colorFor(i)
		label := fmt.Sprintf("%s (%s)", p.Label, units.FormatDimensions(p.Length, p.NominalWidth, unit))
		if p.Rotated {
			label += " R"
		}
		labelW := pdf.GetStringWidth(label) + 6

		if xPos+labelW > maxX {
			startY += 5
			xPos = marginLeft
		}

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.Rect(xPos, startY+0.5, 3, 3, "F")

		pdf.SetXY(xPos+4, startY)
		pdf.CellFormat(labelW-4, 4, label, "", 0, "L", false, 0, "")

		xPos += labelW + 2
	}
}

// renderSummaryPage draws overall statistics, the per-sheet table and any
// unplaced pieces.
func renderSummaryPage(pdf *fpdf.Fpdf, result model.PackingResult, unit units.Unit) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Cut List Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Overall Statistics", "", 0, "L", false, 0, "")
	y += 9

	summaryItems := []struct {
		label string
		value string
	}{
		{"Sheets Used", fmt.Sprintf("%d", result.SheetCount())},
		{"Pieces Placed", fmt.Sprintf("%d", result.PlacedCount())},
		{"Unplaced Pieces", fmt.Sprintf("%d", len(result.Unplaced))},
		{"Waste", fmt.Sprintf("%.1f%%", result.WastePercentage)},
		{"Kerf", units.FormatLength(result.Kerf, unit)},
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range summaryItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(60, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(40, 6, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}

	y += 5

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Sheet Breakdown", "", 0, "L", false, 0, "")
	y += 9

	colWidths := []float64{20, 50, 60, 30, 35, 50}
	headers := []string{"Sheet", "Material", "Dimensions", "Pieces", "Efficiency", "Used / Total Area"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 6

	pdf.SetFont("Helvetica", "", 9)
	for i, sheet := range result.Sheets {
		// Continue the table on a fresh page when it runs off the bottom.
		if y > pageHeight-marginBottom-10 {
			pdf.AddPage()
			y = marginTop
		}
		xPos = marginLeft
		rowData := []string{
			fmt.Sprintf("%d", i+1),
			sheet.Stock.Material,
			units.FormatDimensions(sheet.Stock.Length, sheet.Stock.Width, unit),
			fmt.Sprintf("%d", len(sheet.Placements)),
			fmt.Sprintf("%.1f%%", sheet.Efficiency()),
			fmt.Sprintf("%.1f / %.1f", sheet.UsedArea(), sheet.TotalArea()),
		}

		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}

		for j, cell := range rowData {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 6, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += 6
	}

	if len(result.Unplaced) > 0 {
		y += 8
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(200, 0, 0)
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(200, 7, "WARNING: Unplaced Pieces", "", 0, "L", false, 0, "")
		y += 8

		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(0, 0, 0)
		for _, u := range result.Unplaced {
			if y > pageHeight-marginBottom-5 {
				pdf.AddPage()
				y = marginTop
			}
			pdf.SetXY(marginLeft+5, y)
			text := fmt.Sprintf("- %s: %s does not fit the stock", u.PieceID, units.FormatDimensions(u.Length, u.Width, unit))
			pdf.CellFormat(200, 5, text, "", 0, "L", false, 0, "")
			y += 5
		}
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by woodcut", "", 0, "C", false, 0, "")
}

// labelFontSize returns an appropriate font size based on the rectangle dimensions.
func labelFontSize(w, h float64) float64 {
	minDim := math.Min(w, h)
	switch {
	case minDim > 40:
		return 8
	case minDim > 20:
		return 7
	default:
		return 6
	}
}
