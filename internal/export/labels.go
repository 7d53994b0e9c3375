package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/go-pdf/fpdf"
	"github.com/maruel/natural"
	"github.com/piwi3910/woodcut/internal/model"
	"github.com/piwi3910/woodcut/internal/units"
	qrcode "github.com/skip2/go-qrcode"
)

// LabelInfo holds the data encoded into each piece label's QR code.
type LabelInfo struct {
	PieceID    string  `json:"id"`
	Label      string  `json:"label"`
	Length     float64 `json:"length"`
	Width      float64 `json:"width"`
	Units      string  `json:"units"`
	SheetIndex int     `json:"sheet"`
	Material   string  `json:"material,omitempty"`
	Rotated    bool    `json:"rotated"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
}

// Avery 5160 layout: 3 columns x 10 rows of 66.7mm x 25.4mm on US Letter.
const (
	labelMarginTop  = 12.7
	labelMarginLeft = 4.8
	labelWidth      = 66.7
	labelHeight     = 25.4
	labelCols       = 3
	labelRows       = 10
	labelsPerPage   = labelCols * labelRows
	qrSize          = 20.0
	labelPadding    = 2.0
)

// ExportLabels writes a PDF of QR-coded labels, one per placed piece.
func ExportLabels(path string, result model.PackingResult, unit units.Unit) error {
	if len(result.Sheets) == 0 {
		return ErrNoSheets
	}

	labels := CollectLabelInfos(result, unit)
	if len(labels) == 0 {
		return fmt.Errorf("no pieces placed to generate labels for")
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, label := range labels {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}

		posOnPage := i % labelsPerPage
		col := posOnPage % labelCols
		row := posOnPage / labelCols

		x := labelMarginLeft + float64(col)*labelWidth
		y := labelMarginTop + float64(row)*labelHeight

		if err := renderLabel(pdf, x, y, i, label); err != nil {
			return fmt.Errorf("render label for %q: %w", label.Label, err)
		}
	}

	return pdf.OutputFileAndClose(path)
}

func renderLabel(pdf *fpdf.Fpdf, x, y float64, idx int, info LabelInfo) error {
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	qrData, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("marshal label info: %w", err)
	}

	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("generate QR code: %w", err)
	}

	imgName := fmt.Sprintf("qr_%d", idx)
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))

	qrX := x + labelWidth - qrSize - labelPadding
	qrY := y + (labelHeight-qrSize)/2
	pdf.ImageOptions(imgName, qrX, qrY, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	textX := x + labelPadding
	textW := labelWidth - qrSize - 3*labelPadding

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+labelPadding)

	label := info.Label
	if pdf.GetStringWidth(label) > textW {
		label = truncateToWidth(label, textW, pdf.GetStringWidth)
	}
	pdf.CellFormat(textW, 4.5, label, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(textX, y+labelPadding+5)
	dims := units.FormatDimensions(info.Length, info.Width, units.Unit(info.Units))
	pdf.CellFormat(textW, 3.5, dims, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(textX, y+labelPadding+9)
	sheetInfo := fmt.Sprintf("Sheet %d @ (%.1f, %.1f)", info.SheetIndex, info.X, info.Y)
	pdf.CellFormat(textW, 3, sheetInfo, "", 1, "L", false, 0, "")

	if info.Rotated {
		pdf.SetXY(textX, y+labelPadding+12.5)
		pdf.SetFont("Helvetica", "I", 6)
		pdf.SetTextColor(150, 100, 0)
		pdf.CellFormat(textW, 3, "Rotated 90\xb0", "", 0, "L", false, 0, "")
	}

	pdf.SetTextColor(0, 0, 0)
	return nil
}

// CollectLabelInfos lists every placed piece in natural label order, so
// "Shelf (2)" sorts before "Shelf (10)".
func CollectLabelInfos(result model.PackingResult, unit units.Unit) []LabelInfo {
	var labels []LabelInfo
	for sheetIdx, sheet := range result.Sheets {
		for _, p := range sheet.Placements {
			labels = append(labels, LabelInfo{
				PieceID:    p.PieceID,
				Label:      p.Label,
				Length:     p.Length,
				Width:      p.NominalWidth,
				Units:      string(unit),
				SheetIndex: sheetIdx + 1,
				Material:   sheet.Stock.Material,
				Rotated:    p.Rotated,
				X:          p.X,
				Y:          p.Y,
			})
		}
	}
	sort.SliceStable(labels, func(i, j int) bool {
		return natural.Less(labels[i].Label, labels[j].Label)
	})
	return labels
}

// truncateToWidth drops whole runes from the end of s until s plus an
// ellipsis measures at most width.
func truncateToWidth(s string, width float64, measure func(string) float64) string {
	runes := []rune(s)
	for len(runes) > 0 && measure(string(runes)+"...") > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
