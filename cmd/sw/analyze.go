package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/johns/stitchwise/internal/analysis"
	"github.com/johns/stitchwise/internal/archive"
	"github.com/johns/stitchwise/internal/config"
	"github.com/johns/stitchwise/internal/cost"
	"github.com/johns/stitchwise/internal/decode"
	"github.com/johns/stitchwise/internal/discover"
	"github.com/johns/stitchwise/internal/loader"
	"github.com/johns/stitchwise/internal/report"
	"github.com/johns/stitchwise/internal/stitch"
	"github.com/johns/stitchwise/internal/store"
	"github.com/johns/stitchwise/internal/watch"
)

// jobOptions are the run parameters shared by analyze, save and watch.
type jobOptions struct {
	job      cost.Job
	coloreel bool
	name     string
}

func parseJobOptions(cfg config.Config, args []string) jobOptions {
	coloreel := hasFlag(args, "--coloreel")
	return jobOptions{
		job: cost.Job{
			Quantity:     intFlag(args, "--quantity", 1),
			Heads:        cfg.HeadsFor(coloreel),
			ThreadWeight: intFlag(args, "--weight", cfg.Machine.ThreadWeight),
			UseFoam:      hasFlag(args, "--foam"),
		},
		coloreel: coloreel,
		name:     flagValue(args, "--name"),
	}
}

// design is one decoded, analyzed and priced stitch file.
type design struct {
	name     string
	data     []byte
	pattern  *stitch.Pattern
	metrics  analysis.Metrics
	estimate cost.Estimate
}

func analyzeFile(cfg config.Config, path string, opts jobOptions) (*design, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read design: %w", err)
	}
	ld := loader.New(decode.Default())
	p, err := ld.Load(data, filepath.Base(path))
	if err != nil {
		return nil, err
	}

	m := analysis.Analyze(p.Stitches)
	est, err := cost.New(cfg.Prices).Estimate(m, opts.job)
	if err != nil {
		return nil, err
	}

	name := opts.name
	if name == "" {
		name = filepath.Base(path)
	}
	return &design{name: name, data: data, pattern: p, metrics: m, estimate: est}, nil
}

func (d *design) analysisReport(opts jobOptions) report.Analysis {
	return report.Analysis{
		Name:     d.name,
		Metrics:  d.metrics,
		Colors:   len(d.pattern.Threads),
		Job:      opts.job,
		Coloreel: opts.coloreel,
		Estimate: d.estimate,
	}
}

func runAnalyze(args []string) {
	pos := positional(args)
	if len(pos) < 1 {
		fatal("usage: sw analyze <file> [flags]")
	}
	cfg := mustLoadConfig()
	opts := parseJobOptions(cfg, args)

	if info, err := os.Stat(pos[0]); err == nil && info.IsDir() {
		runAnalyzeDir(cfg, pos[0], opts)
		return
	}

	d, err := analyzeFile(cfg, pos[0], opts)
	if err != nil {
		fatal("analyze: %v", err)
	}

	if hasFlag(args, "--json") {
		out := struct {
			Design   string           `json:"design"`
			Metrics  analysis.Metrics `json:"metrics"`
			Band     analysis.Band    `json:"band"`
			Estimate cost.Estimate    `json:"estimate"`
		}{d.name, d.metrics, d.metrics.Band(), d.estimate}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			fatal("encode: %v", err)
		}
		return
	}
	fmt.Print(report.FormatAnalysis(d.analysisReport(opts)))
}

// runAnalyzeDir prints one summary line per design found under dir.
func runAnalyzeDir(cfg config.Config, dir string, opts jobOptions) {
	files, err := discover.Designs(dir, decode.Default())
	if err != nil {
		fatal("analyze: %v", err)
	}
	if len(files) == 0 {
		fmt.Printf("no designs found in %s\n", dir)
		return
	}
	failed := 0
	for _, f := range files {
		d, err := analyzeFile(cfg, f.Path, opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "sw: %s: %v\n", f.Path, err)
			failed++
			continue
		}
		fmt.Println(d.summary())
	}
	if failed > 0 {
		fatal("%d of %d designs failed", failed, len(files))
	}
}

// summary is the one-line form used by batch analysis and watch.
func (d *design) summary() string {
	return fmt.Sprintf("%s  %d stitches  %.1fx%.1f mm  complexity %.2f  $%.2f  %.1f min",
		d.name, d.metrics.StitchCount, d.metrics.WidthMM, d.metrics.HeightMM,
		d.metrics.ComplexityScore, d.estimate.Total, d.estimate.Runtime.Total)
}

func runSave(args []string) {
	pos := positional(args)
	if len(pos) < 1 {
		fatal("usage: sw save <file> [flags]")
	}
	cfg := mustLoadConfig()
	opts := parseJobOptions(cfg, args)

	if info, err := os.Stat(pos[0]); err == nil && info.IsDir() {
		runSaveDir(cfg, pos[0], opts)
		return
	}

	d, err := analyzeFile(cfg, pos[0], opts)
	if err != nil {
		fatal("analyze: %v", err)
	}

	s, err := store.Open(cfg.StoreDB())
	if err != nil {
		fatal("open store: %v", err)
	}
	defer s.Close()

	j, err := saveDesign(cfg, s, d, filepath.Ext(pos[0]), opts)
	if err != nil {
		fatal("save: %v", err)
	}
	fmt.Print(report.FormatAnalysis(d.analysisReport(opts)))
	fmt.Printf("\nsaved: %s\n", j.ID)
}

// runSaveDir saves one job per design found under dir. Each job is named
// after its file; --name applies to single files only.
func runSaveDir(cfg config.Config, dir string, opts jobOptions) {
	files, err := discover.Designs(dir, decode.Default())
	if err != nil {
		fatal("save: %v", err)
	}
	if len(files) == 0 {
		fatal("save: no designs found in %s", dir)
	}

	s, err := store.Open(cfg.StoreDB())
	if err != nil {
		fatal("open store: %v", err)
	}
	defer s.Close()

	opts.name = ""
	failed := 0
	for _, f := range files {
		d, err := analyzeFile(cfg, f.Path, opts)
		if err == nil {
			var j store.Job
			if j, err = saveDesign(cfg, s, d, filepath.Ext(f.Path), opts); err == nil {
				fmt.Printf("%s  saved %s\n", d.summary(), j.ID)
				continue
			}
		}
		fmt.Fprintf(os.Stderr, "sw: %s: %v\n", f.Path, err)
		failed++
	}
	if failed > 0 {
		s.Close()
		fatal("%d of %d designs failed", failed, len(files))
	}
}

// saveDesign archives the design bytes and records the job. The archive
// copy is removed again if the job cannot be stored.
func saveDesign(cfg config.Config, s *store.Store, d *design, ext string, opts jobOptions) (store.Job, error) {
	j := store.NewJob(d.name, d.metrics, opts.job, d.estimate, cfg.Prices, opts.coloreel)
	j.ID = uuid.NewString()

	path, err := archive.Store(d.data, j.ID, ext, cfg.ArchiveDir(), cfg.Archive.Compress)
	if err != nil {
		return store.Job{}, err
	}
	j.ArchivePath = path

	saved, err := s.Save(j)
	if err != nil {
		os.Remove(path)
		return store.Job{}, err
	}
	slog.Debug("design archived", "id", saved.ID, "path", path)
	return saved, nil
}

func runWatch(args []string) {
	pos := positional(args)
	if len(pos) < 1 {
		fatal("usage: sw watch <dir> [flags]")
	}
	cfg := mustLoadConfig()
	opts := parseJobOptions(cfg, args)
	save := hasFlag(args, "--save")

	var s *store.Store
	if save {
		var err error
		s, err = store.Open(cfg.StoreDB())
		if err != nil {
			fatal("open store: %v", err)
		}
		defer s.Close()
	}

	onReady := func(paths []string) {
		for _, path := range paths {
			d, err := analyzeFile(cfg, path, opts)
			if err != nil {
				slog.Warn("analyze failed", "path", path, "error", err)
				continue
			}
			line := d.summary()
			if s != nil {
				j, err := saveDesign(cfg, s, d, filepath.Ext(path), opts)
				if err != nil {
					slog.Warn("save failed", "path", path, "error", err)
				} else {
					line += "  saved " + j.ID
				}
			}
			fmt.Println(line)
		}
	}

	w, err := watch.New(cfg.Watch.Patterns, time.Duration(cfg.Watch.DebounceMS)*time.Millisecond, onReady)
	if err != nil {
		fatal("watch: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(os.Stderr, "watching %s (ctrl-c to stop)\n", pos[0])
	if err := w.Run(ctx, pos[0]); err != nil && !errors.Is(err, context.Canceled) {
		fatal("watch: %v", err)
	}
}
