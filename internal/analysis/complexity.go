package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/johns/stitchwise/internal/stitch"
)

// Composite score weights and normalisation constants.
const (
	weightDirectionChanges = 40
	weightDensity          = 30
	weightLengthVariance   = 30

	densityScale      = 5.0   // stitches per mm² mapping to one score point
	varianceScale     = 100.0 // squared stitch units per score point
	maxSubScore       = 10.0
	maxComplexity     = 100.0
	turnThreshold     = math.Pi / 4
	areaScale         = 0.01
	complexityDecimal = 100 // round to 2 places
)

// Complexity holds the complexity sub-metrics and composite score.
type Complexity struct {
	Score                float64 // 0-100
	DirectionChanges     int
	DensityScore         float64 // 0-10
	StitchLengthVariance float64 // 0-10, a normalised score
}

// ScoreComplexity computes the composite complexity of t. Every
// consecutive pair of records contributes, whatever its command. Traces
// shorter than two records score zero.
func ScoreComplexity(t stitch.Trace) Complexity {
	n := len(t)
	if n < 2 {
		return Complexity{}
	}

	lengths := make([]float64, 0, n-1)
	headings := make([]float64, 0, n-1)
	for i := 1; i < n; i++ {
		dx := float64(t[i].X - t[i-1].X)
		dy := float64(t[i].Y - t[i-1].Y)
		lengths = append(lengths, math.Hypot(dx, dy))
		headings = append(headings, math.Atan2(dy, dx))
	}

	var c Complexity
	for i := 1; i < len(headings); i++ {
		if turnAngle(headings[i-1], headings[i]) > turnThreshold {
			c.DirectionChanges++
		}
	}

	box := Bounds(t)
	area := box.WidthMM() * box.HeightMM() * areaScale
	if area > 0 {
		c.DensityScore = math.Min(float64(n)/area/densityScale, maxSubScore)
	}

	c.StitchLengthVariance = math.Min(stat.PopVariance(lengths, nil)/varianceScale, maxSubScore)

	raw := float64(c.DirectionChanges)/float64(n)*weightDirectionChanges +
		c.DensityScore*weightDensity +
		c.StitchLengthVariance*weightLengthVariance
	c.Score = math.Round(math.Min(raw, maxComplexity)*complexityDecimal) / complexityDecimal

	return c
}

// turnAngle returns the absolute difference between two headings in [0, π].
func turnAngle(a, b float64) float64 {
	d := math.Abs(b - a)
	if d > math.Pi {
		d = 2*math.Pi - d
	}
	return d
}

// Band is a human-readable complexity classification.
type Band string

const (
	BandSimple           Band = "simple"
	BandModerate         Band = "moderate"
	BandComplex          Band = "complex"
	BandVeryComplex      Band = "very complex"
	BandExtremelyComplex Band = "extremely complex"
)

// BandFor classifies a complexity score. Bands are closed below and open
// above, except the top band which includes 100.
func BandFor(score float64) Band {
	switch {
	case score < 20:
		return BandSimple
	case score < 40:
		return BandModerate
	case score < 60:
		return BandComplex
	case score < 80:
		return BandVeryComplex
	default:
		return BandExtremelyComplex
	}
}

// Description explains the band in a sentence fragment.
func (b Band) Description() string {
	switch b {
	case BandSimple:
		return "simple design"
	case BandModerate:
		return "moderate complexity"
	case BandComplex:
		return "complex design with frequent direction changes"
	case BandVeryComplex:
		return "very complex design with high density"
	case BandExtremelyComplex:
		return "extremely complex design"
	default:
		return string(b)
	}
}
