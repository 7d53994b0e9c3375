package export

import (
	"fmt"
	"math"

	"github.com/piwi3910/woodcut/internal/model"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/drawing"
	"github.com/yofu/dxf/table"
)

// DXF layer names.
const (
	LayerSheets = "SHEETS"
	LayerParts  = "PARTS"
	LayerLabels = "LABELS"
)

// ExportDXF writes sheets side by side in stock units: sheet outlines on
// SHEETS, piece outlines on PARTS and piece labels on LABELS.
func ExportDXF(path string, result model.PackingResult) error {
	if len(result.Sheets) == 0 {
		return ErrNoSheets
	}

	d := dxf.NewDrawing()
	layers := []struct {
		name string
		c    color.ColorNumber
	}{
		{LayerSheets, color.White},
		{LayerParts, color.Cyan},
		{LayerLabels, color.Yellow},
	}
	for _, l := range layers {
		if _, err := d.AddLayer(l.name, l.c, table.LT_CONTINUOUS, false); err != nil {
			return fmt.Errorf("add layer %s: %w", l.name, err)
		}
	}

	var widest float64
	for _, s := range result.Sheets {
		widest = math.Max(widest, s.Stock.Length)
	}
	gap := widest * 0.1

	offsetX := 0.0
	for i, sheet := range result.Sheets {
		if err := d.ChangeLayer(LayerSheets); err != nil {
			return err
		}
		if err := drawRect(d, offsetX, 0, sheet.Stock.Length, sheet.Stock.Width); err != nil {
			return fmt.Errorf("sheet %d: %w", i+1, err)
		}

		for _, p := range sheet.Placements {
			if err := d.ChangeLayer(LayerParts); err != nil {
				return err
			}
			if err := drawRect(d, offsetX+p.X, p.Y, p.Width, p.Height); err != nil {
				return fmt.Errorf("piece %s: %w", p.PieceID, err)
			}

			if err := d.ChangeLayer(LayerLabels); err != nil {
				return err
			}
			h := math.Max(0.25, math.Min(p.Width, p.Height)*0.15)
			if _, err := d.Text(p.Label, offsetX+p.X+h/2, p.Y+p.Height/2, 0, h); err != nil {
				return fmt.Errorf("label %s: %w", p.PieceID, err)
			}
		}

		offsetX += sheet.Stock.Length + gap
	}

	return d.SaveAs(path)
}

// drawRect draws an axis-aligned rectangle as four LINE entities.
func drawRect(d *drawing.Drawing, x, y, w, h float64) error {
	corners := [][2]float64{{x, y}, {x + w, y}, {x + w, y + h}, {x, y + h}}
	for i, c := range corners {
		n := corners[(i+1)%len(corners)]
		if _, err := d.Line(c[0], c[1], 0, n[0], n[1], 0); err != nil {
			return err
		}
	}
	return nil
}
