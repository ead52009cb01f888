package check

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/johns/stitchwise/internal/config"
	"github.com/johns/stitchwise/internal/cost"
	"github.com/johns/stitchwise/internal/decode"
	"github.com/johns/stitchwise/internal/store"
)

// Status represents the outcome of a single check.
type Status int

const (
	Pass Status = iota
	Warn
	Fail
)

func (s Status) String() string {
	switch s {
	case Pass:
		return "pass"
	case Warn:
		return "warn"
	case Fail:
		return "FAIL"
	default:
		return "unknown"
	}
}

// Result holds the outcome of a single check.
type Result struct {
	Name   string
	Status Status
	Detail string
}

// Report aggregates all check results.
type Report struct {
	Results []Result
}

// HasFailures returns true if any result has Fail status.
func (r Report) HasFailures() bool {
	for _, res := range r.Results {
		if res.Status == Fail {
			return true
		}
	}
	return false
}

// Format returns the human-readable report string.
func (r Report) Format() string {
	if len(r.Results) == 0 {
		return "sw check\n\n  no checks ran\n"
	}

	// Find max name length for alignment.
	maxName := 0
	for _, res := range r.Results {
		if len(res.Name) > maxName {
			maxName = len(res.Name)
		}
	}

	var b strings.Builder
	b.WriteString("sw check\n\n")

	var passed, warnings, failures int
	for _, res := range r.Results {
		switch res.Status {
		case Pass:
			passed++
		case Warn:
			warnings++
		case Fail:
			failures++
		}
		fmt.Fprintf(&b, "  %-4s  %-*s  %s\n", res.Status, maxName, res.Name, res.Detail)
	}

	fmt.Fprintf(&b, "\n%d passed, %d warning, %d failure\n", passed, warnings, failures)
	return b.String()
}

// CheckConfig reports the resolved config path. Broken TOML is caught when
// the config is loaded, so a present file always passes.
func CheckConfig() Result {
	return checkConfigFile(filepath.Join(config.ConfigDir(), "config.toml"))
}

func checkConfigFile(path string) Result {
	if _, err := os.Stat(path); err != nil {
		return Result{Name: "config", Status: Warn, Detail: config.CompressHome(path) + " not found (using defaults, run sw init)"}
	}
	return Result{Name: "config", Status: Pass, Detail: config.CompressHome(path)}
}

// CheckStateDir checks whether the state directory exists.
func CheckStateDir(stateDir string) Result {
	if info, err := os.Stat(stateDir); err == nil && info.IsDir() {
		return Result{Name: "state", Status: Pass, Detail: config.CompressHome(stateDir)}
	}
	return Result{Name: "state", Status: Warn, Detail: config.CompressHome(stateDir) + " not found (created on first save)"}
}

// CheckStore opens the job database and reports its job count. A missing
// database is a warning; one that cannot be opened fails.
func CheckStore(path string) Result {
	if _, err := os.Stat(path); err != nil {
		return Result{Name: "store", Status: Warn, Detail: filepath.Base(path) + " not found yet"}
	}
	s, err := store.Open(path)
	if err != nil {
		return Result{Name: "store", Status: Fail, Detail: err.Error()}
	}
	defer s.Close()

	n, err := s.Count()
	if err != nil {
		return Result{Name: "store", Status: Fail, Detail: err.Error()}
	}
	return Result{Name: "store", Status: Pass, Detail: fmt.Sprintf("%s (%d jobs, schema v%d)", filepath.Base(path), n, store.SchemaVersion)}
}

// CheckArchive reports the archive directory size and compression mode.
func CheckArchive(dir string, compress bool) Result {
	mode := "zstd"
	if !compress {
		mode = "uncompressed"
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Result{Name: "archive", Status: Warn, Detail: "archive/ not found yet (" + mode + ")"}
	}
	var files int
	var size int64
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if info, err := e.Info(); err == nil {
			files++
			size += info.Size()
		}
	}
	return Result{Name: "archive", Status: Pass,
		Detail: fmt.Sprintf("archive/ (%d designs, %s, %s)", files, humanize.Bytes(uint64(size)), mode)}
}

// CheckPrices flags non-positive unit prices.
func CheckPrices(p cost.Prices) Result {
	var bad []string
	if p.ThreadSpool <= 0 {
		bad = append(bad, "thread_spool")
	}
	if p.BobbinBox <= 0 {
		bad = append(bad, "bobbin_box")
	}
	if p.FoamSheet <= 0 {
		bad = append(bad, "foam_sheet")
	}
	if len(bad) > 0 {
		return Result{Name: "prices", Status: Warn, Detail: strings.Join(bad, ", ") + " not set"}
	}
	return Result{Name: "prices", Status: Pass,
		Detail: fmt.Sprintf("spool $%.2f, bobbin $%.3f, foam $%.2f", p.ThreadSpool, p.BobbinPrice(), p.FoamSheet)}
}

// CheckFormats lists the stitch formats the registry can decode.
func CheckFormats(reg *decode.Registry) Result {
	exts := reg.Extensions()
	if len(exts) == 0 {
		return Result{Name: "formats", Status: Fail, Detail: "no stitch readers registered"}
	}
	return Result{Name: "formats", Status: Pass, Detail: strings.Join(exts, " ")}
}

// Run executes all checks against the given config and returns a report.
func Run(cfg config.Config) Report {
	var results []Result

	results = append(results, CheckConfig())
	results = append(results, CheckStateDir(cfg.StateDir))
	results = append(results, CheckStore(cfg.StoreDB()))
	results = append(results, CheckArchive(cfg.ArchiveDir(), cfg.Archive.Compress))
	results = append(results, CheckPrices(cfg.Prices))
	results = append(results, CheckFormats(decode.Default()))

	return Report{Results: results}
}
