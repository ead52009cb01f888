package main

import (
	"reflect"
	"testing"

	"github.com/johns/stitchwise/internal/analysis"
	"github.com/johns/stitchwise/internal/config"
)

func TestPositional(t *testing.T) {
	tests := []struct {
		args []string
		want []string
	}{
		{[]string{"a.dst"}, []string{"a.dst"}},
		{[]string{"--quantity", "30", "a.dst", "--foam"}, []string{"a.dst"}},
		{[]string{"a.dst", "--out", "x.png", "--heatmap", "h.png"}, []string{"a.dst"}},
		{[]string{"--json"}, nil},
		{[]string{"-", "b.u01"}, []string{"-", "b.u01"}},
	}
	for _, tt := range tests {
		got := positional(tt.args)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("positional(%v) = %v, want %v", tt.args, got, tt.want)
		}
	}
}

func TestFlagValue(t *testing.T) {
	args := []string{"a.dst", "--quantity", "12", "--name"}
	if got := flagValue(args, "--quantity"); got != "12" {
		t.Errorf("--quantity = %q, want 12", got)
	}
	if got := flagValue(args, "--name"); got != "" {
		t.Errorf("trailing --name = %q, want empty", got)
	}
	if got := flagValue(args, "--weight"); got != "" {
		t.Errorf("absent --weight = %q, want empty", got)
	}
}

func TestIntFlag(t *testing.T) {
	args := []string{"--limit", "5"}
	if got := intFlag(args, "--limit", 10); got != 5 {
		t.Errorf("intFlag = %d, want 5", got)
	}
	if got := intFlag(nil, "--limit", 10); got != 10 {
		t.Errorf("default = %d, want 10", got)
	}
}

func TestStripFlag(t *testing.T) {
	out, found := stripFlag([]string{"--verbose", "analyze", "a.dst"}, "--verbose")
	if !found {
		t.Error("expected --verbose to be found")
	}
	if !reflect.DeepEqual(out, []string{"analyze", "a.dst"}) {
		t.Errorf("stripped = %v", out)
	}

	out, found = stripFlag([]string{"history"}, "--verbose")
	if found || len(out) != 1 {
		t.Errorf("stripFlag without flag = %v, %v", out, found)
	}
}

func TestParseJobOptions(t *testing.T) {
	cfg := config.DefaultConfig()

	opts := parseJobOptions(cfg, []string{"a.dst", "--quantity", "40", "--foam"})
	if opts.job.Quantity != 40 || !opts.job.UseFoam {
		t.Errorf("job = %+v", opts.job)
	}
	if opts.job.Heads != cfg.Machine.Heads {
		t.Errorf("heads = %d, want %d", opts.job.Heads, cfg.Machine.Heads)
	}
	if opts.job.ThreadWeight != 40 {
		t.Errorf("weight = %d, want 40", opts.job.ThreadWeight)
	}

	opts = parseJobOptions(cfg, []string{"a.dst", "--coloreel", "--weight", "60", "--name", "Crest"})
	if !opts.coloreel || opts.job.Heads != cfg.Machine.ColoreelHeads {
		t.Errorf("coloreel opts = %+v", opts)
	}
	if opts.job.ThreadWeight != 60 || opts.name != "Crest" {
		t.Errorf("opts = %+v", opts)
	}
	if opts.job.Quantity != 1 {
		t.Errorf("default quantity = %d, want 1", opts.job.Quantity)
	}
}

func TestCompareMetrics(t *testing.T) {
	saved := analysis.Metrics{StitchCount: 100, ComplexityScore: 42.5, ThreadLengthYards: 3.14159}
	if diffs := compareMetrics(saved, saved); len(diffs) != 0 {
		t.Errorf("identical metrics reported diffs: %v", diffs)
	}

	now := saved
	now.ThreadLengthYards = 3.141
	if diffs := compareMetrics(saved, now); len(diffs) != 0 {
		t.Errorf("rounding-level change reported: %v", diffs)
	}

	now.StitchCount = 120
	now.ComplexityScore = 50
	if diffs := compareMetrics(saved, now); len(diffs) != 2 {
		t.Errorf("diffs = %v, want 2", diffs)
	}
}
