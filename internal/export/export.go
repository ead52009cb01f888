// Package export writes saved jobs as CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/johns/stitchwise/internal/store"
)

var jobHeader = []string{
	"Job ID",
	"Created At",
	"Design Name",
	"Stitch Count",
	"Thread Length (yards)",
	"Width (mm)",
	"Height (mm)",
	"Thread Weight",
	"Color Changes",
	"Quantity",
	"Active Heads",
	"Total Runtime (min)",
	"Pieces per Cycle",
	"Total Cycles",
	"Thread Cost",
	"Bobbin Cost",
	"Foam Cost",
	"Total Cost",
	"Use Foam",
	"Use Coloreel",
	"Complexity Score",
}

// Jobs writes one flattened row per job, costs spread into columns.
func Jobs(w io.Writer, jobs []store.Job) error {
	return write(w, jobHeader, len(jobs), func(i int) [][]string {
		j := jobs[i]
		m := j.Metrics
		return [][]string{{
			j.ID,
			j.CreatedAt.UTC().Format(time.RFC3339),
			j.DesignName,
			strconv.Itoa(m.StitchCount),
			num(m.ThreadLengthYards),
			num(m.WidthMM),
			num(m.HeightMM),
			strconv.Itoa(j.ThreadWeight),
			strconv.Itoa(m.ColorChanges),
			strconv.Itoa(j.Quantity),
			strconv.Itoa(j.ActiveHeads),
			num(j.TotalRuntime),
			strconv.Itoa(j.PiecesPerCycle),
			strconv.Itoa(j.TotalCycles),
			money(j.Cost("thread")),
			money(j.Cost("bobbin")),
			money(j.Cost("foam")),
			money(j.TotalCost()),
			strconv.FormatBool(j.UseFoam),
			strconv.FormatBool(j.UseColoreel),
			num(m.ComplexityScore),
		}}
	})
}

// Materials writes one row per material line of every job.
func Materials(w io.Writer, jobs []store.Job) error {
	header := []string{"Job ID", "Material Type", "Quantity", "Unit", "Unit Cost"}
	return write(w, header, len(jobs), func(i int) [][]string {
		var rows [][]string
		for _, mat := range jobs[i].Materials {
			rows = append(rows, []string{
				jobs[i].ID, mat.Type, num(mat.Quantity), mat.Unit, num(mat.UnitCost),
			})
		}
		return rows
	})
}

// Costs writes one row per cost line of every job.
func Costs(w io.Writer, jobs []store.Job) error {
	header := []string{"Job ID", "Cost Type", "Amount"}
	return write(w, header, len(jobs), func(i int) [][]string {
		var rows [][]string
		for _, c := range jobs[i].Costs {
			rows = append(rows, []string{jobs[i].ID, c.Type, money(c.Amount)})
		}
		return rows
	})
}

func write(w io.Writer, header []string, n int, rows func(int) [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := 0; i < n; i++ {
		if err := cw.WriteAll(rows(i)); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func money(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}
