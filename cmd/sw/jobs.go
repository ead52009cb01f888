package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/johns/stitchwise/internal/analysis"
	"github.com/johns/stitchwise/internal/archive"
	"github.com/johns/stitchwise/internal/config"
	"github.com/johns/stitchwise/internal/decode"
	"github.com/johns/stitchwise/internal/export"
	"github.com/johns/stitchwise/internal/loader"
	"github.com/johns/stitchwise/internal/report"
	"github.com/johns/stitchwise/internal/store"
)

const defaultHistoryLimit = 10

func openStore(cfg config.Config) *store.Store {
	s, err := store.Open(cfg.StoreDB())
	if err != nil {
		fatal("open store: %v", err)
	}
	return s
}

func runHistory(args []string) {
	cfg := mustLoadConfig()
	s := openStore(cfg)
	defer s.Close()

	jobs, err := s.Recent(intFlag(args, "--limit", defaultHistoryLimit))
	if err != nil {
		fatal("history: %v", err)
	}
	fmt.Print(report.FormatHistory(jobs, time.Now()))
}

func runShow(args []string) {
	pos := positional(args)
	if len(pos) < 1 {
		fatal("usage: sw show <job-id>")
	}
	cfg := mustLoadConfig()
	s := openStore(cfg)
	defer s.Close()

	id, err := s.Resolve(pos[0])
	if err != nil {
		fatal("show: %v", err)
	}
	j, err := s.Get(id)
	if err != nil {
		fatal("show: %v", err)
	}
	fmt.Print(report.FormatJob(j))

	if j.ArchivePath == "" {
		return
	}
	fmt.Print("\nArchived design\n")
	m, err := reanalyze(j.ArchivePath)
	if err != nil {
		fmt.Printf("  %-20s %v\n", "re-analysis", err)
		return
	}
	if diffs := compareMetrics(j.Metrics, m); len(diffs) > 0 {
		for _, d := range diffs {
			fmt.Printf("  %-20s %s\n", "changed", d)
		}
		return
	}
	fmt.Printf("  %-20s %s\n", "re-analysis", "metrics match")
}

func reanalyze(archivePath string) (analysis.Metrics, error) {
	data, err := archive.Read(archivePath)
	if err != nil {
		return analysis.Metrics{}, err
	}
	tr, err := loader.New(decode.Default()).Trace(data, archive.DesignName(archivePath))
	if err != nil {
		return analysis.Metrics{}, err
	}
	return analysis.Analyze(tr), nil
}

func compareMetrics(saved, now analysis.Metrics) []string {
	var diffs []string
	if saved.StitchCount != now.StitchCount {
		diffs = append(diffs, fmt.Sprintf("stitches %d -> %d", saved.StitchCount, now.StitchCount))
	}
	if saved.ComplexityScore != now.ComplexityScore {
		diffs = append(diffs, fmt.Sprintf("complexity %.2f -> %.2f", saved.ComplexityScore, now.ComplexityScore))
	}
	if fmt.Sprintf("%.2f", saved.ThreadLengthYards) != fmt.Sprintf("%.2f", now.ThreadLengthYards) {
		diffs = append(diffs, fmt.Sprintf("thread %.2f yd -> %.2f yd", saved.ThreadLengthYards, now.ThreadLengthYards))
	}
	return diffs
}

func runDelete(args []string) {
	pos := positional(args)
	if len(pos) < 1 {
		fatal("usage: sw delete <job-id>")
	}
	cfg := mustLoadConfig()
	s := openStore(cfg)
	defer s.Close()

	id, err := s.Resolve(pos[0])
	if err != nil {
		fatal("delete: %v", err)
	}
	j, err := s.Get(id)
	if err != nil {
		fatal("delete: %v", err)
	}
	if err := s.Delete(id); err != nil {
		fatal("delete: %v", err)
	}
	if j.ArchivePath != "" {
		if err := os.Remove(j.ArchivePath); err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "sw: remove archive: %v\n", err)
		}
	}
	fmt.Printf("deleted: %s (%s)\n", id, j.DesignName)
}

func runExport(args []string) {
	cfg := mustLoadConfig()
	s := openStore(cfg)
	defer s.Close()

	jobs, err := s.Recent(0)
	if err != nil {
		fatal("export: %v", err)
	}

	if err := writeCSV(flagValue(args, "--out"), jobs, export.Jobs); err != nil {
		fatal("export: %v", err)
	}
	if path := flagValue(args, "--materials"); path != "" {
		if err := writeCSV(path, jobs, export.Materials); err != nil {
			fatal("export materials: %v", err)
		}
	}
	if path := flagValue(args, "--costs"); path != "" {
		if err := writeCSV(path, jobs, export.Costs); err != nil {
			fatal("export costs: %v", err)
		}
	}
}

// writeCSV writes to path, or stdout when path is empty.
func writeCSV(path string, jobs []store.Job, fn func(io.Writer, []store.Job) error) error {
	if path == "" {
		return fn(os.Stdout, jobs)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f, jobs); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "wrote %d jobs to %s\n", len(jobs), path)
	return nil
}
