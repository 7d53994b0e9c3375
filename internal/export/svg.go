package export

import (
	"bufio"
	"fmt"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"
	"github.com/piwi3910/woodcut/internal/model"
)

// DefaultSVGScale is the SVG pixels drawn per stock unit.
const DefaultSVGScale = 10.0

const (
	svgMargin     = 20
	svgSheetGap   = 30
	svgCaptionGap = 20
)

var svgColors = []string{"#90EE90", "#87CEEB", "#DDA0DD", "#F0E68C", "#FFA07A"}

// ExportSVG draws every sheet stacked top to bottom, followed by the waste
// percentage. Scale is pixels per stock unit; zero or less uses DefaultSVGScale.
func ExportSVG(w io.Writer, result model.PackingResult, title string, scale float64) error {
	if scale <= 0 {
		scale = DefaultSVGScale
	}
	px := func(v float64) int { return int(math.Round(v * scale)) }

	width, height := 400, 100
	if len(result.Sheets) > 0 {
		width, height = 0, 0
		for _, s := range result.Sheets {
			width = max(width, px(s.Stock.Length)+2*svgMargin)
			height += px(s.Stock.Width) + svgCaptionGap + svgSheetGap
		}
	}
	height += 100

	bw := bufio.NewWriter(w)
	canvas := svg.New(bw)
	canvas.Start(width, height)
	canvas.Title(title)
	canvas.Text(svgMargin, 25, title, "font-family:sans-serif;font-size:16px;font-weight:bold")

	y := 50
	for i, sheet := range result.Sheets {
		caption := fmt.Sprintf("Sheet %d: %s (%g x %g)", i+1, sheet.Stock.Material, sheet.Stock.Length, sheet.Stock.Width)
		canvas.Text(svgMargin, y, caption, "font-family:sans-serif;font-size:12px")
		y += svgCaptionGap

		canvas.Rect(svgMargin, y, px(sheet.Stock.Length), px(sheet.Stock.Width), "fill:none;stroke:black;stroke-width:2")

		for j, p := range sheet.Placements {
			x0 := svgMargin + px(p.X)
			y0 := y + px(p.Y)
			pw, ph := px(p.Width), px(p.Height)
			canvas.Rect(x0, y0, pw, ph, fmt.Sprintf("fill:%s;stroke:black;stroke-width:1", svgColors[j%len(svgColors)]))

			fontSize := math.Max(6, math.Min(float64(min(pw, ph))*0.15, 12))
			canvas.Text(x0+pw/2, y0+ph/2, p.Label,
				fmt.Sprintf("font-family:sans-serif;font-size:%.0fpx;text-anchor:middle;dominant-baseline:middle", fontSize))
		}

		y += px(sheet.Stock.Width) + svgSheetGap
	}

	canvas.Text(svgMargin, y, fmt.Sprintf("Waste: %.1f%%", result.WastePercentage), "font-family:sans-serif;font-size:12px")
	canvas.End()
	return bw.Flush()
}
