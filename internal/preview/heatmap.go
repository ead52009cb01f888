package preview

import (
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"

	"github.com/johns/stitchwise/internal/analysis"
)

// Heatmap renders g as a size×size image, one block per cell, white for
// empty cells through yellow to red at the densest cell. Row 0 of the grid
// is the top of the image.
func Heatmap(g *analysis.DensityGrid, size int) *image.RGBA {
	if size <= 0 {
		size = defaultSize
	}
	cells := image.NewRGBA(image.Rect(0, 0, g.Size, g.Size))
	peak := g.Max()
	for row := range g.Cells {
		for col, n := range g.Cells[row] {
			v := 0.0
			if peak > 0 {
				v = float64(n) / float64(peak)
			}
			cells.Set(col, row, heat(v))
		}
	}

	out := image.NewRGBA(image.Rect(0, 0, size, size))
	xdraw.NearestNeighbor.Scale(out, out.Bounds(), cells, cells.Bounds(), xdraw.Src, nil)
	return out
}

// heat maps v in [0,1] onto white, yellow, red.
func heat(v float64) color.NRGBA {
	switch {
	case v <= 0:
		return color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	case v < 0.5:
		return color.NRGBA{R: 0xff, G: 0xff, B: uint8(255 * (1 - 2*v)), A: 0xff}
	default:
		if v > 1 {
			v = 1
		}
		return color.NRGBA{R: 0xff, G: uint8(255 * (2 - 2*v)), B: 0, A: 0xff}
	}
}
