package analysis

import "github.com/johns/stitchwise/internal/stitch"

// Segment is a contiguous run of records drawn in one colour.
type Segment struct {
	Color   int
	Records stitch.Trace
}

// Segmenter partitions a trace into colour segments. Implementations must
// cover the trace exactly: concatenating the segments in order yields t.
type Segmenter interface {
	Segment(t stitch.Trace, numColors int) []Segment
}

// IndexSegmenter splits the trace into numColors runs of equal length by
// index, ignoring colour-change records. The last run takes the remainder.
// numColors <= 0 means no segmentation.
type IndexSegmenter struct{}

func (IndexSegmenter) Segment(t stitch.Trace, numColors int) []Segment {
	if numColors <= 0 {
		return []Segment{{Color: 0, Records: t}}
	}

	per := len(t) / numColors
	segs := make([]Segment, 0, numColors)
	for i := 0; i < numColors-1; i++ {
		lo, hi := i*per, (i+1)*per
		segs = append(segs, Segment{Color: i, Records: t[lo:hi:hi]})
	}
	segs = append(segs, Segment{Color: numColors - 1, Records: t[(numColors-1)*per:]})
	return segs
}

// MarkerSegmenter starts a new segment at every colour-change record. The
// colour-change record opens the segment it introduces. Colour indexes wrap
// at numColors when numColors > 0.
type MarkerSegmenter struct{}

func (MarkerSegmenter) Segment(t stitch.Trace, numColors int) []Segment {
	var segs []Segment
	color, start := 0, 0
	for i, r := range t {
		if r.Cmd != stitch.ColorChange || i == start {
			continue
		}
		segs = append(segs, Segment{Color: wrapColor(color, numColors), Records: t[start:i:i]})
		color++
		start = i
	}
	segs = append(segs, Segment{Color: wrapColor(color, numColors), Records: t[start:]})
	return segs
}

func wrapColor(i, n int) int {
	if n <= 0 {
		return i
	}
	return i % n
}

// Concat joins segments back into one trace.
func Concat(segs []Segment) stitch.Trace {
	n := 0
	for _, s := range segs {
		n += len(s.Records)
	}
	out := make(stitch.Trace, 0, n)
	for _, s := range segs {
		out = append(out, s.Records...)
	}
	return out
}
