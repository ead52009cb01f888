package store

import (
	"time"

	"github.com/johns/stitchwise/internal/analysis"
	"github.com/johns/stitchwise/internal/cost"
)

// Job is one saved cost calculation.
type Job struct {
	ID          string
	CreatedAt   time.Time
	DesignName  string
	ArchivePath string // "" when the design was not archived

	Metrics analysis.Metrics

	Quantity       int
	ThreadWeight   int
	ActiveHeads    int
	UseFoam        bool
	UseColoreel    bool
	TotalRuntime   float64 // minutes
	PiecesPerCycle int
	TotalCycles    int

	Materials []Material
	Costs     []CostItem
}

// Material is one consumable used by a job.
type Material struct {
	Type     string // "thread", "bobbin", "foam"
	Quantity float64
	Unit     string // "spools", "pieces", "sheets"
	UnitCost float64
}

// CostItem is one line of a job's cost breakdown.
type CostItem struct {
	Type   string
	Amount float64
}

// Cost returns the amount recorded for costType, or 0.
func (j Job) Cost(costType string) float64 {
	for _, c := range j.Costs {
		if c.Type == costType {
			return c.Amount
		}
	}
	return 0
}

// TotalCost sums the cost breakdown.
func (j Job) TotalCost() float64 {
	var total float64
	for _, c := range j.Costs {
		total += c.Amount
	}
	return total
}

// NewJob assembles a Job from an analysis and its estimate, itemising
// materials and costs.
func NewJob(name string, m analysis.Metrics, job cost.Job, est cost.Estimate, prices cost.Prices, coloreel bool) Job {
	if name == "" {
		name = "Untitled"
	}
	j := Job{
		DesignName:     name,
		Metrics:        m,
		Quantity:       job.Quantity,
		ThreadWeight:   job.ThreadWeight,
		ActiveHeads:    job.Heads,
		UseFoam:        est.Foam != nil,
		UseColoreel:    coloreel,
		TotalRuntime:   est.Runtime.Total,
		PiecesPerCycle: est.Runtime.PiecesPerCycle,
		TotalCycles:    est.Runtime.Cycles,
		Materials: []Material{
			{Type: "thread", Quantity: float64(est.Thread.Spools), Unit: "spools", UnitCost: prices.ThreadSpool},
			{Type: "bobbin", Quantity: float64(est.Thread.Bobbins), Unit: "pieces", UnitCost: prices.BobbinPrice()},
		},
		Costs: []CostItem{
			{Type: "thread", Amount: est.Thread.ThreadCost},
			{Type: "bobbin", Amount: est.Thread.BobbinCost},
		},
	}
	if est.Foam != nil {
		j.Materials = append(j.Materials, Material{
			Type: "foam", Quantity: float64(est.Foam.Sheets), Unit: "sheets", UnitCost: prices.FoamSheet,
		})
		j.Costs = append(j.Costs, CostItem{Type: "foam", Amount: est.Foam.Cost})
	}
	return j
}
