package analysis

import (
	"reflect"
	"testing"

	"github.com/johns/stitchwise/internal/stitch"
)

func line(n int) stitch.Trace {
	tr := make(stitch.Trace, n)
	for i := range tr {
		tr[i] = st(i, i*2)
	}
	return tr
}

func segLens(segs []Segment) []int {
	out := make([]int, len(segs))
	for i, s := range segs {
		out[i] = len(s.Records)
	}
	return out
}

func TestIndexSegmenter_EvenSplits(t *testing.T) {
	tests := []struct {
		n, colors int
		want      []int
	}{
		{9, 3, []int{3, 3, 3}},
		{10, 2, []int{5, 5}},
		{10, 3, []int{3, 3, 4}},
		{2, 4, []int{0, 0, 0, 2}},
		{7, 1, []int{7}},
	}
	for _, tc := range tests {
		segs := IndexSegmenter{}.Segment(line(tc.n), tc.colors)
		if got := segLens(segs); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("n=%d colors=%d: lengths %v, want %v", tc.n, tc.colors, got, tc.want)
		}
		for i, s := range segs {
			if s.Color != i {
				t.Errorf("segment %d has color %d", i, s.Color)
			}
		}
	}
}

func TestIndexSegmenter_NoSegmentation(t *testing.T) {
	tr := line(5)
	for _, colors := range []int{0, -3} {
		segs := IndexSegmenter{}.Segment(tr, colors)
		if len(segs) != 1 || len(segs[0].Records) != 5 {
			t.Errorf("colors=%d: got %v", colors, segLens(segs))
		}
	}
}

func TestSegmenters_Reconstruct(t *testing.T) {
	segmenters := map[string]Segmenter{
		"index":  IndexSegmenter{},
		"marker": MarkerSegmenter{},
	}
	for name, s := range segmenters {
		for n := 0; n <= 20; n++ {
			tr := line(n)
			if n > 4 {
				tr[2].Cmd = stitch.ColorChange
				tr[n-1].Cmd = stitch.ColorChange
			}
			for colors := 1; colors <= 12; colors++ {
				got := Concat(s.Segment(tr, colors))
				if len(got) != len(tr) {
					t.Fatalf("%s n=%d colors=%d: %d records, want %d", name, n, colors, len(got), len(tr))
				}
				for i := range tr {
					if got[i] != tr[i] {
						t.Fatalf("%s n=%d colors=%d: record %d differs", name, n, colors, i)
					}
				}
			}
		}
	}
}

func TestIndexSegmenter_SegmentsDoNotAlias(t *testing.T) {
	tr := line(6)
	segs := IndexSegmenter{}.Segment(tr, 2)
	_ = append(segs[0].Records, st(999, 999))
	if tr[3].X == 999 {
		t.Error("appending to a segment overwrote the next segment")
	}
}

func TestMarkerSegmenter_SplitsAtColorChanges(t *testing.T) {
	tr := stitch.Trace{
		st(0, 0), st(1, 1),
		{X: 1, Y: 1, Cmd: stitch.ColorChange}, st(2, 2),
		{X: 2, Y: 2, Cmd: stitch.ColorChange}, st(3, 3), st(4, 4),
		{X: 4, Y: 4, Cmd: stitch.End},
	}
	segs := MarkerSegmenter{}.Segment(tr, 2)

	if got := segLens(segs); !reflect.DeepEqual(got, []int{2, 2, 4}) {
		t.Fatalf("lengths = %v", got)
	}
	colors := []int{segs[0].Color, segs[1].Color, segs[2].Color}
	if !reflect.DeepEqual(colors, []int{0, 1, 0}) {
		t.Errorf("colors = %v, want wrap at 2", colors)
	}
}
