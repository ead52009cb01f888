// Package report formats analyses and saved jobs for the terminal.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/johns/stitchwise/internal/analysis"
	"github.com/johns/stitchwise/internal/cost"
	"github.com/johns/stitchwise/internal/store"
)

// Analysis is everything shown for one analyzed design.
type Analysis struct {
	Name     string
	Metrics  analysis.Metrics
	Colors   int // declared thread colours; 0 when the file carries none
	Job      cost.Job
	Coloreel bool
	Estimate cost.Estimate
}

// FormatAnalysis renders design metrics, complexity, costs and runtime.
func FormatAnalysis(a Analysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "sw analyze %s\n", a.Name)
	writeDesign(&b, a.Metrics, a.Colors)
	writeComplexity(&b, a.Metrics)
	writeJob(&b, a.Job, a.Coloreel)
	writeCosts(&b, a.Estimate)
	writeRuntime(&b, a.Estimate.Runtime)
	return b.String()
}

func writeDesign(b *strings.Builder, m analysis.Metrics, colors int) {
	b.WriteString("\nDesign\n")
	fmt.Fprintf(b, "  %-20s %s\n", "stitches", humanize.Comma(int64(m.StitchCount)))
	fmt.Fprintf(b, "  %-20s %.1f mm x %.1f mm\n", "size", m.WidthMM, m.HeightMM)
	fmt.Fprintf(b, "  %-20s %s yd\n", "thread length", humanize.FormatFloat("#,###.##", m.ThreadLengthYards))
	fmt.Fprintf(b, "  %-20s %d\n", "color changes", m.ColorChanges)
	colorStr := "N/A"
	if colors > 0 {
		colorStr = fmt.Sprintf("%d", colors)
	}
	fmt.Fprintf(b, "  %-20s %s\n", "thread colors", colorStr)
}

func writeComplexity(b *strings.Builder, m analysis.Metrics) {
	b.WriteString("\nComplexity\n")
	fmt.Fprintf(b, "  %-20s %.2f / 100 (%s)\n", "score", m.ComplexityScore, m.Band().Description())
	fmt.Fprintf(b, "  %-20s %s\n", "direction changes", humanize.Comma(int64(m.DirectionChanges)))
	fmt.Fprintf(b, "  %-20s %.2f / 10\n", "density", m.DensityScore)
	fmt.Fprintf(b, "  %-20s %.2f / 10\n", "length variance", m.StitchLengthVariance)
}

func writeJob(b *strings.Builder, j cost.Job, coloreel bool) {
	b.WriteString("\nJob\n")
	fmt.Fprintf(b, "  %-20s %s\n", "quantity", humanize.Comma(int64(j.Quantity)))
	heads := fmt.Sprintf("%d", j.Heads)
	if coloreel {
		heads += " (coloreel)"
	}
	fmt.Fprintf(b, "  %-20s %s\n", "active heads", heads)
	fmt.Fprintf(b, "  %-20s %dwt\n", "thread weight", j.ThreadWeight)
}

func writeCosts(b *strings.Builder, e cost.Estimate) {
	b.WriteString("\nCosts\n")
	fmt.Fprintf(b, "  %-20s %s  (%d spools, %s yd)\n", "thread",
		money(e.Thread.ThreadCost), e.Thread.Spools, humanize.FormatFloat("#,###.#", e.Thread.ThreadYards))
	fmt.Fprintf(b, "  %-20s %s  (%s bobbins)\n", "bobbins",
		money(e.Thread.BobbinCost), humanize.Comma(int64(e.Thread.Bobbins)))
	if e.Foam != nil {
		fmt.Fprintf(b, "  %-20s %s  (%d sheets, %d per sheet, %.1f\" x %.1f\" pieces)\n", "foam",
			money(e.Foam.Cost), e.Foam.Sheets, e.Foam.PiecesPerSheet, e.Foam.PieceWidthIn, e.Foam.PieceHeightIn)
	}
	fmt.Fprintf(b, "  %-20s %s\n", "total", money(e.Total))
	if e.Runtime.Cycles > 0 {
		pieces := e.Runtime.Cycles * e.Runtime.PiecesPerCycle
		if pieces > 0 {
			fmt.Fprintf(b, "  %-20s %s\n", "per piece (approx)", money(e.Total/float64(pieces)))
		}
	}
}

func writeRuntime(b *strings.Builder, r cost.Runtime) {
	b.WriteString("\nRuntime\n")
	fmt.Fprintf(b, "  %-20s %d x %d pieces\n", "cycles", r.Cycles, r.PiecesPerCycle)
	fmt.Fprintf(b, "  %-20s %s stitches/min\n", "stitch rate", humanize.Comma(int64(r.StitchRate)))
	fmt.Fprintf(b, "  %-20s %s\n", "sewing per cycle", formatMinutes(r.SewPerCycle))
	fmt.Fprintf(b, "  %-20s %s\n", "hooping per cycle", formatMinutes(r.HoopingPerCycle))
	fmt.Fprintf(b, "  %-20s %s\n", "buffer per cycle", formatMinutes(r.BufferPerCycle))
	fmt.Fprintf(b, "  %-20s %s\n", "total", formatMinutes(r.Total))
}

// FormatJob renders a saved job with its line items.
func FormatJob(j store.Job) string {
	var b strings.Builder
	fmt.Fprintf(&b, "sw show %s\n", j.ID)
	fmt.Fprintf(&b, "\n  %-20s %s\n", "design", j.DesignName)
	fmt.Fprintf(&b, "  %-20s %s\n", "saved", j.CreatedAt.Local().Format("2006-01-02 15:04"))
	if j.ArchivePath != "" {
		fmt.Fprintf(&b, "  %-20s %s\n", "archive", j.ArchivePath)
	}

	writeDesign(&b, j.Metrics, 0)
	writeComplexity(&b, j.Metrics)
	writeJob(&b, cost.Job{Quantity: j.Quantity, Heads: j.ActiveHeads, ThreadWeight: j.ThreadWeight}, j.UseColoreel)

	if len(j.Materials) > 0 {
		b.WriteString("\nMaterials\n")
		for _, m := range j.Materials {
			fmt.Fprintf(&b, "  %-20s %s %s @ %s\n", m.Type,
				humanize.FormatFloat("#,###.", m.Quantity), m.Unit, money(m.UnitCost))
		}
	}

	b.WriteString("\nCosts\n")
	for _, c := range j.Costs {
		fmt.Fprintf(&b, "  %-20s %s\n", c.Type, money(c.Amount))
	}
	fmt.Fprintf(&b, "  %-20s %s\n", "total", money(j.TotalCost()))

	b.WriteString("\nRuntime\n")
	fmt.Fprintf(&b, "  %-20s %d x %d pieces\n", "cycles", j.TotalCycles, j.PiecesPerCycle)
	fmt.Fprintf(&b, "  %-20s %s\n", "total", formatMinutes(j.TotalRuntime))
	return b.String()
}

// FormatHistory renders recent jobs, newest first, followed by totals.
func FormatHistory(jobs []store.Job, now time.Time) string {
	if len(jobs) == 0 {
		return "sw history\n\n  No saved jobs. Run `sw save <file>` first.\n"
	}

	var b strings.Builder
	b.WriteString("sw history\n\n")
	for _, j := range jobs {
		fmt.Fprintf(&b, "  %-8s  %-24s %6s pcs  %10s  %8s  %s\n",
			shortID(j.ID), truncate(j.DesignName, 24), humanize.Comma(int64(j.Quantity)),
			money(j.TotalCost()), formatMinutes(j.TotalRuntime),
			humanize.RelTime(j.CreatedAt, now, "ago", "from now"))
	}

	s := Summarize(jobs)
	b.WriteString("\nTotals\n")
	fmt.Fprintf(&b, "  %-20s %d\n", "jobs", s.Jobs)
	fmt.Fprintf(&b, "  %-20s %s\n", "pieces", humanize.Comma(int64(s.Pieces)))
	fmt.Fprintf(&b, "  %-20s %s\n", "cost", money(s.TotalCost))
	fmt.Fprintf(&b, "  %-20s %s\n", "machine time", formatMinutes(s.TotalRuntime))
	fmt.Fprintf(&b, "  %-20s %.2f\n", "avg complexity", s.AvgComplexity)
	for _, bc := range s.Bands {
		fmt.Fprintf(&b, "  %-20s %d\n", string(bc.Band), bc.Count)
	}
	return b.String()
}

func money(v float64) string {
	if v < 0 {
		return "-$" + humanize.FormatFloat("#,###.##", -v)
	}
	return "$" + humanize.FormatFloat("#,###.##", v)
}

// formatMinutes formats fractional minutes as "Xh Ym" or "Y.Ym".
func formatMinutes(minutes float64) string {
	if minutes <= 0 {
		return "0m"
	}
	if minutes < 60 {
		return fmt.Sprintf("%.1fm", minutes)
	}
	total := int(minutes + 0.5)
	h := total / 60
	m := total % 60
	if m == 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
