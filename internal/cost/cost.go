// Package cost estimates material cost and machine runtime for an
// embroidery production run.
package cost

import (
	"errors"
	"fmt"
	"math"

	"github.com/johns/stitchwise/internal/analysis"
)

var (
	// ErrInvalidJob is returned for a non-positive quantity or head count.
	ErrInvalidJob = errors.New("invalid job")

	// ErrThreadWeight is returned for a thread weight with no stitch rate.
	ErrThreadWeight = errors.New("unsupported thread weight")

	// ErrFoamTooLarge is returned when a padded design does not fit a sheet.
	ErrFoamTooLarge = errors.New("design does not fit a foam sheet")
)

// Production constants.
const (
	spoolYards        = 5500.0
	bobbinYards       = 124.0
	bobbinsPerBox     = 144
	threadBuffer      = 0.05 // extra thread per cycle
	cycleBuffer       = 0.05 // idle time between cycles
	hoopingSeconds    = 45.0
	mmPerInch         = 25.4
	foamPaddingInch   = 1.0 // per side
	foamSheetWidthIn  = 18.0
	foamSheetHeightIn = 12.0
)

// Stitch rates per thread weight, in stitches per minute.
var stitchRates = map[int]float64{
	40: 750,
	60: 400,
}

// Prices holds unit prices in dollars.
type Prices struct {
	ThreadSpool float64 `toml:"thread_spool"` // 5500 yd spool
	BobbinBox   float64 `toml:"bobbin_box"`   // box of 144
	FoamSheet   float64 `toml:"foam_sheet"`   // 18" x 12" sheet
}

// DefaultPrices returns current supplier prices.
func DefaultPrices() Prices {
	return Prices{
		ThreadSpool: 9.69,
		BobbinBox:   35.85,
		FoamSheet:   2.45,
	}
}

// BobbinPrice returns the price of a single bobbin.
func (p Prices) BobbinPrice() float64 {
	return p.BobbinBox / bobbinsPerBox
}

// Calculator applies a price list to production jobs.
type Calculator struct {
	Prices Prices
}

// New returns a Calculator using prices.
func New(prices Prices) *Calculator {
	return &Calculator{Prices: prices}
}

// Cycles returns pieces per cycle and the number of cycles needed to sew
// quantity pieces on heads heads.
func Cycles(quantity, heads int) (perCycle, cycles int, err error) {
	if quantity < 1 || heads < 1 {
		return 0, 0, fmt.Errorf("%w: quantity %d, heads %d", ErrInvalidJob, quantity, heads)
	}
	perCycle = min(heads, quantity)
	cycles = int(math.Ceil(float64(quantity) / float64(perCycle)))
	return perCycle, cycles, nil
}

// ThreadCost is the thread and bobbin usage for a run.
type ThreadCost struct {
	ThreadYards    float64
	Spools         int
	ThreadCost     float64
	Bobbins        int
	BobbinCost     float64
	Cycles         int
	PiecesPerCycle int
}

// Thread computes spool and bobbin usage for lengthYards of top thread per
// piece.
func (c *Calculator) Thread(lengthYards float64, quantity, heads int) (ThreadCost, error) {
	perCycle, cycles, err := Cycles(quantity, heads)
	if err != nil {
		return ThreadCost{}, err
	}

	perCycleYards := lengthYards * float64(perCycle) * (1 + threadBuffer)
	total := perCycleYards * float64(cycles)
	spools := int(math.Ceil(total / spoolYards))
	bobbins := int(math.Ceil(float64(quantity) * lengthYards / bobbinYards))

	return ThreadCost{
		ThreadYards:    total,
		Spools:         spools,
		ThreadCost:     float64(spools) * c.Prices.ThreadSpool,
		Bobbins:        bobbins,
		BobbinCost:     float64(bobbins) * c.Prices.BobbinPrice(),
		Cycles:         cycles,
		PiecesPerCycle: perCycle,
	}, nil
}

// FoamCost is the 3D foam usage for a run.
type FoamCost struct {
	PieceWidthIn   float64
	PieceHeightIn  float64
	PiecesPerSheet int
	Sheets         int
	Cost           float64
}

// Foam computes foam sheets for quantity pieces of a widthMM × heightMM
// design, padded on every side and packed in the better orientation.
func (c *Calculator) Foam(widthMM, heightMM float64, quantity int) (FoamCost, error) {
	if quantity < 1 {
		return FoamCost{}, fmt.Errorf("%w: quantity %d", ErrInvalidJob, quantity)
	}

	w := widthMM/mmPerInch + 2*foamPaddingInch
	h := heightMM/mmPerInch + 2*foamPaddingInch

	across := fit(foamSheetWidthIn, w) * fit(foamSheetHeightIn, h)
	rotated := fit(foamSheetWidthIn, h) * fit(foamSheetHeightIn, w)
	perSheet := max(across, rotated)
	if perSheet == 0 {
		return FoamCost{}, fmt.Errorf("%w: %.1f\" x %.1f\"", ErrFoamTooLarge, w, h)
	}

	sheets := int(math.Ceil(float64(quantity) / float64(perSheet)))
	return FoamCost{
		PieceWidthIn:   w,
		PieceHeightIn:  h,
		PiecesPerSheet: perSheet,
		Sheets:         sheets,
		Cost:           float64(sheets) * c.Prices.FoamSheet,
	}, nil
}

func fit(sheet, piece float64) int {
	return int(math.Floor(sheet / piece))
}

// Runtime is the machine time for a run, in minutes.
type Runtime struct {
	StitchRate      float64 // stitches per minute
	SewPerCycle     float64
	HoopingPerCycle float64
	CycleTime       float64 // sewing + hooping
	BufferPerCycle  float64
	Total           float64
	Cycles          int
	PiecesPerCycle  int
}

// Runtime computes machine time for stitchCount stitches per piece. Sewing
// and hooping are both charged per piece in the cycle.
func (c *Calculator) Runtime(stitchCount, threadWeight, quantity, heads int) (Runtime, error) {
	rate, ok := stitchRates[threadWeight]
	if !ok {
		return Runtime{}, fmt.Errorf("%w: %dwt", ErrThreadWeight, threadWeight)
	}
	perCycle, cycles, err := Cycles(quantity, heads)
	if err != nil {
		return Runtime{}, err
	}

	sew := float64(stitchCount) / rate * float64(perCycle)
	hooping := hoopingSeconds / 60 * float64(perCycle)
	cycle := sew + hooping
	buffer := cycle * cycleBuffer

	return Runtime{
		StitchRate:      rate,
		SewPerCycle:     sew,
		HoopingPerCycle: hooping,
		CycleTime:       cycle,
		BufferPerCycle:  buffer,
		Total:           (cycle + buffer) * float64(cycles),
		Cycles:          cycles,
		PiecesPerCycle:  perCycle,
	}, nil
}

// Job describes a production run of one design.
type Job struct {
	Quantity     int
	Heads        int
	ThreadWeight int
	UseFoam      bool
}

// Estimate is the full cost and runtime for a job.
type Estimate struct {
	Thread  ThreadCost
	Foam    *FoamCost // nil unless the job uses foam
	Runtime Runtime
	Total   float64
}

// Estimate prices job for a design with metrics m.
func (c *Calculator) Estimate(m analysis.Metrics, job Job) (Estimate, error) {
	thread, err := c.Thread(m.ThreadLengthYards, job.Quantity, job.Heads)
	if err != nil {
		return Estimate{}, fmt.Errorf("thread cost: %w", err)
	}
	runtime, err := c.Runtime(m.StitchCount, job.ThreadWeight, job.Quantity, job.Heads)
	if err != nil {
		return Estimate{}, fmt.Errorf("runtime: %w", err)
	}

	e := Estimate{
		Thread:  thread,
		Runtime: runtime,
		Total:   thread.ThreadCost + thread.BobbinCost,
	}
	if job.UseFoam {
		foam, err := c.Foam(m.WidthMM, m.HeightMM, job.Quantity)
		if err != nil {
			return Estimate{}, fmt.Errorf("foam cost: %w", err)
		}
		e.Foam = &foam
		e.Total += foam.Cost
	}
	return e, nil
}
