package analysis

import (
	"math"

	"github.com/johns/stitchwise/internal/stitch"
)

// Unit conversions. Stitch coordinates are tenths of a millimetre.
const (
	mmPerUnit = 0.1
	mmPerYard = 914.4
)

// Box is the axis-aligned bounding box of a trace, in stitch units.
type Box struct {
	MinX, MinY int
	MaxX, MaxY int
}

// Bounds returns the bounding box of every record in t. An empty trace
// yields the zero box.
func Bounds(t stitch.Trace) Box {
	if len(t) == 0 {
		return Box{}
	}
	b := Box{MinX: t[0].X, MaxX: t[0].X, MinY: t[0].Y, MaxY: t[0].Y}
	for _, r := range t[1:] {
		b.MinX = min(b.MinX, r.X)
		b.MaxX = max(b.MaxX, r.X)
		b.MinY = min(b.MinY, r.Y)
		b.MaxY = max(b.MaxY, r.Y)
	}
	return b
}

// WidthMM returns the box width in millimetres.
func (b Box) WidthMM() float64 {
	return float64(b.MaxX-b.MinX) * mmPerUnit
}

// HeightMM returns the box height in millimetres.
func (b Box) HeightMM() float64 {
	return float64(b.MaxY-b.MinY) * mmPerUnit
}

// ThreadLength returns the sewn path length in stitch units. Only moves
// between two consecutive stitch records count; any other command breaks
// the run, so jump travel is excluded.
func ThreadLength(t stitch.Trace) float64 {
	var total float64
	var prev *stitch.Record
	for i := range t {
		r := &t[i]
		if r.Cmd != stitch.Stitch {
			prev = nil
			continue
		}
		if prev != nil {
			total += math.Hypot(float64(r.X-prev.X), float64(r.Y-prev.Y))
		}
		prev = r
	}
	return total
}

// ThreadLengthYards converts ThreadLength to yards.
func ThreadLengthYards(t stitch.Trace) float64 {
	return ThreadLength(t) * mmPerUnit / mmPerYard
}
