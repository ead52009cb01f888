package analysis

import (
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/johns/stitchwise/internal/stitch"
)

// DefaultGridSize is the density grid resolution used when none is given.
const DefaultGridSize = 50

// DensityGrid is a 2D histogram of record positions over the trace bounds.
// Buckets are half-open except the last on each axis, which also holds the
// maximum.
type DensityGrid struct {
	Size   int
	XEdges []float64 // Size+1 edges, ascending
	YEdges []float64
	Cells  [][]int // Cells[row][col], row indexes Y, col indexes X
}

// NewDensityGrid bins every record of t into a size×size grid. size < 1
// uses DefaultGridSize. An axis with no extent is widened by half a unit on
// each side so its records land in the middle bucket.
func NewDensityGrid(t stitch.Trace, size int) *DensityGrid {
	if size < 1 {
		size = DefaultGridSize
	}

	box := Bounds(t)
	g := &DensityGrid{
		Size:   size,
		XEdges: edges(float64(box.MinX), float64(box.MaxX), size),
		YEdges: edges(float64(box.MinY), float64(box.MaxY), size),
		Cells:  make([][]int, size),
	}
	for i := range g.Cells {
		g.Cells[i] = make([]int, size)
	}

	for _, r := range t {
		col := bucket(g.XEdges, float64(r.X))
		row := bucket(g.YEdges, float64(r.Y))
		g.Cells[row][col]++
	}
	return g
}

func edges(lo, hi float64, size int) []float64 {
	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}
	return floats.Span(make([]float64, size+1), lo, hi)
}

// bucket returns the index i with e[i] <= v < e[i+1], clamping the
// right-most edge into the last bucket.
func bucket(e []float64, v float64) int {
	i := sort.Search(len(e), func(i int) bool { return e[i] > v }) - 1
	if i < 0 {
		return 0
	}
	if i > len(e)-2 {
		return len(e) - 2
	}
	return i
}

// Total returns the number of binned records.
func (g *DensityGrid) Total() int {
	n := 0
	for _, row := range g.Cells {
		for _, c := range row {
			n += c
		}
	}
	return n
}

// Max returns the largest cell count.
func (g *DensityGrid) Max() int {
	m := 0
	for _, row := range g.Cells {
		for _, c := range row {
			m = max(m, c)
		}
	}
	return m
}
