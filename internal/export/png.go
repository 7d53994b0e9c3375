package export

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
	"github.com/piwi3910/woodcut/internal/model"
)

// DefaultPNGScale is the PNG pixels drawn per stock unit.
const DefaultPNGScale = 8.0

// MaxPNGSize caps the longer side of the drawn sheets, in pixels. Larger
// scales are reduced to fit, so millimetre stock renders at a sane size.
const MaxPNGSize = 2048

const pngGap = 20

var (
	pngBackground = color.NRGBA{255, 255, 255, 255}
	pngStock      = color.NRGBA{210, 180, 140, 255}
	pngOutline    = color.NRGBA{30, 30, 30, 255}
)

// FitPNGScale returns the largest scale, up to scale, at which the stacked
// sheets stay within MaxPNGSize pixels. Zero or less starts from
// DefaultPNGScale.
func FitPNGScale(result model.PackingResult, scale float64) float64 {
	if scale <= 0 {
		scale = DefaultPNGScale
	}
	var longest, stacked float64
	for _, s := range result.Sheets {
		longest = math.Max(longest, s.Stock.Length)
		stacked += s.Stock.Width
	}
	extent := math.Max(longest, stacked)
	if extent*scale > MaxPNGSize {
		scale = MaxPNGSize / extent
	}
	return scale
}

// RenderPNG rasterizes all sheets stacked vertically. Scale is pixels per
// stock unit, reduced by FitPNGScale when the canvas would be too large.
func RenderPNG(result model.PackingResult, scale float64) (*image.NRGBA, error) {
	if len(result.Sheets) == 0 {
		return nil, ErrNoSheets
	}
	scale = FitPNGScale(result, scale)
	px := func(v float64) int { return int(math.Round(v * scale)) }

	width, height := 0, pngGap
	for _, s := range result.Sheets {
		width = max(width, px(s.Stock.Length)+2*pngGap)
		height += px(s.Stock.Width) + pngGap
	}

	dst := imaging.New(width, height, pngBackground)
	y := pngGap
	for _, sheet := range result.Sheets {
		sw, sh := px(sheet.Stock.Length), px(sheet.Stock.Width)
		fillRect(dst, pngGap, y, sw, sh, pngOutline)
		fillRect(dst, pngGap+1, y+1, sw-2, sh-2, pngStock)

		for i, p := range sheet.Placements {
			c := colorFor(i)
			x0, y0 := pngGap+px(p.X), y+px(p.Y)
			pw, ph := px(p.Width), px(p.Height)
			fillRect(dst, x0, y0, pw, ph, pngOutline)
			fillRect(dst, x0+1, y0+1, pw-2, ph-2, color.NRGBA{uint8(c.R), uint8(c.G), uint8(c.B), 255})
		}
		y += sh + pngGap
	}
	return dst, nil
}

// fillRect paints in place; the rectangle is clipped to the canvas.
func fillRect(dst *image.NRGBA, x, y, w, h int, c color.Color) {
	if w <= 0 || h <= 0 {
		return
	}
	draw.Draw(dst, image.Rect(x, y, x+w, y+h), image.NewUniform(c), image.Point{}, draw.Src)
}

// ExportPNG renders the layout and saves it; the format follows the file extension.
func ExportPNG(path string, result model.PackingResult, scale float64) error {
	img, err := RenderPNG(result, scale)
	if err != nil {
		return err
	}
	return imaging.Save(img, path)
}
