// Package analysis derives geometric and complexity metrics from a stitch
// trace, and splits traces for colour-aware rendering.
//
// Everything here is a pure function of its input trace.
package analysis

import "github.com/johns/stitchwise/internal/stitch"

// Metrics is the full set of design metrics for one trace.
type Metrics struct {
	WidthMM           float64 `json:"width_mm"`
	HeightMM          float64 `json:"height_mm"`
	StitchCount       int     `json:"stitch_count"`
	ThreadLengthYards float64 `json:"thread_length_yards"`
	ColorChanges      int     `json:"color_changes"`

	ComplexityScore      float64 `json:"complexity_score"`
	DirectionChanges     int     `json:"direction_changes"`
	DensityScore         float64 `json:"density_score"`
	StitchLengthVariance float64 `json:"stitch_length_variance"`
}

// Analyze computes Metrics for t. Traces of zero or one record produce
// zero-valued geometry and complexity rather than an error.
func Analyze(t stitch.Trace) Metrics {
	box := Bounds(t)
	c := ScoreComplexity(t)
	return Metrics{
		WidthMM:              box.WidthMM(),
		HeightMM:             box.HeightMM(),
		StitchCount:          len(t),
		ThreadLengthYards:    ThreadLengthYards(t),
		ColorChanges:         t.Count(stitch.ColorChange),
		ComplexityScore:      c.Score,
		DirectionChanges:     c.DirectionChanges,
		DensityScore:         c.DensityScore,
		StitchLengthVariance: c.StitchLengthVariance,
	}
}

// Band classifies the complexity score.
func (m Metrics) Band() Band {
	return BandFor(m.ComplexityScore)
}
