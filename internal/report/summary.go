package report

import (
	"github.com/johns/stitchwise/internal/analysis"
	"github.com/johns/stitchwise/internal/store"
)

// Summary aggregates a set of saved jobs.
type Summary struct {
	Jobs          int
	Pieces        int
	TotalCost     float64
	TotalRuntime  float64 // minutes
	AvgComplexity float64
	Bands         []BandCount // complexity bands present, simplest first
}

type BandCount struct {
	Band  analysis.Band
	Count int
}

var bandOrder = []analysis.Band{
	analysis.BandSimple,
	analysis.BandModerate,
	analysis.BandComplex,
	analysis.BandVeryComplex,
	analysis.BandExtremelyComplex,
}

// Summarize totals jobs.
func Summarize(jobs []store.Job) Summary {
	var s Summary
	counts := make(map[analysis.Band]int)
	var complexity float64
	for _, j := range jobs {
		s.Jobs++
		s.Pieces += j.Quantity
		s.TotalCost += j.TotalCost()
		s.TotalRuntime += j.TotalRuntime
		complexity += j.Metrics.ComplexityScore
		counts[j.Metrics.Band()]++
	}
	if s.Jobs > 0 {
		s.AvgComplexity = complexity / float64(s.Jobs)
	}
	for _, band := range bandOrder {
		if n := counts[band]; n > 0 {
			s.Bands = append(s.Bands, BandCount{Band: band, Count: n})
		}
	}
	return s
}
