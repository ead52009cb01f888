package test

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"image/png"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// swBinary is the path to the compiled sw binary, set by TestMain.
var swBinary string

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(0)
	}

	tmpDir, err := os.MkdirTemp("", "sw-integration-build-*")
	if err != nil {
		fmt.Fprintf(os.Stderr, "create temp dir: %v\n", err)
		os.Exit(1)
	}
	defer os.RemoveAll(tmpDir)

	swBinary = filepath.Join(tmpDir, "sw")
	cmd := exec.Command("go", "build", "-o", swBinary, "./cmd/sw")
	// Test working dir is test/, so go up one level to project root
	cmd.Dir = filepath.Join("..")
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "build sw binary: %v\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

func buildEnv(home string) []string {
	var env []string
	for _, e := range os.Environ() {
		if strings.HasPrefix(e, "HOME=") || strings.HasPrefix(e, "XDG_CONFIG_HOME=") {
			continue
		}
		env = append(env, e)
	}
	return append(env,
		"HOME="+home,
		"XDG_CONFIG_HOME="+filepath.Join(home, ".config"),
	)
}

func runSW(t *testing.T, env []string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := exec.Command(swBinary, args...)
	cmd.Env = env
	var outBuf, errBuf strings.Builder
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	err = cmd.Run()
	return outBuf.String(), errBuf.String(), err
}

func mustRunSW(t *testing.T, env []string, args ...string) string {
	t.Helper()
	stdout, stderr, err := runSW(t, env, args...)
	if err != nil {
		t.Fatalf("sw %s failed: %v\nstdout: %s\nstderr: %s", strings.Join(args, " "), err, stdout, stderr)
	}
	return stdout
}

func writeFixture(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture %s: %v", name, err)
	}
	return path
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func assertContains(t *testing.T, s, substr, msg string) {
	t.Helper()
	if !strings.Contains(s, substr) {
		t.Errorf("%s: expected %q to contain %q", msg, s, substr)
	}
}

func assertNotContains(t *testing.T, s, substr, msg string) {
	t.Helper()
	if strings.Contains(s, substr) {
		t.Errorf("%s: expected %q to NOT contain %q", msg, s, substr)
	}
}

func assertPNG(t *testing.T, path string) {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	if _, err := png.Decode(f); err != nil {
		t.Errorf("%s is not a valid PNG: %v", path, err)
	}
}

// --- DST fixture encoding ---

const dstHeaderSize = 512

func ternaryDigits(v int) [5]int {
	var d [5]int
	for i := 0; i < 5; i++ {
		switch ((v % 3) + 3) % 3 {
		case 1:
			d[i] = 1
		case 2:
			d[i] = -1
		}
		v = (v - d[i]) / 3
	}
	return d
}

func setBit(b *byte, digit int, plus, minus uint) {
	switch digit {
	case 1:
		*b |= 1 << plus
	case -1:
		*b |= 1 << minus
	}
}

type move struct {
	dx, dy int
	ctrl   byte
}

const (
	ctrlStitch = 0x03
	ctrlColor  = 0xC3
)

// encodeDST writes a Tajima file; dy grows downward like the decoded trace.
func encodeDST(label string, moves []move) []byte {
	header := bytes.Repeat([]byte{' '}, dstHeaderSize)
	copy(header, "LA:"+label+"\r")
	buf := bytes.NewBuffer(header)
	for _, m := range moves {
		var b0, b1 byte
		b2 := m.ctrl
		xd := ternaryDigits(m.dx)
		setBit(&b0, xd[0], 0, 1)
		setBit(&b1, xd[1], 0, 1)
		setBit(&b0, xd[2], 2, 3)
		setBit(&b1, xd[3], 2, 3)
		setBit(&b2, xd[4], 2, 3)
		yd := ternaryDigits(-m.dy)
		setBit(&b0, yd[0], 7, 6)
		setBit(&b1, yd[1], 7, 6)
		setBit(&b0, yd[2], 5, 4)
		setBit(&b1, yd[3], 5, 4)
		setBit(&b2, yd[4], 5, 4)
		buf.Write([]byte{b0, b1, b2})
	}
	buf.Write([]byte{0x00, 0x00, 0xF3})
	return buf.Bytes()
}

// squareDesign is a 10 mm square outline, five 2 mm stitches per side, with
// a colour change before the last side.
func squareDesign() []byte {
	var moves []move
	side := func(dx, dy int) {
		for i := 0; i < 5; i++ {
			moves = append(moves, move{dx, dy, ctrlStitch})
		}
	}
	side(20, 0)
	side(0, 20)
	side(-20, 0)
	moves = append(moves, move{0, 0, ctrlColor})
	side(0, -20)
	return encodeDST("SQUARE", moves)
}

// --- Integration Test ---

func TestIntegration(t *testing.T) {
	home := t.TempDir()
	work := t.TempDir()
	env := buildEnv(home)
	stateDir := filepath.Join(home, ".local", "share", "stitchwise")

	square := writeFixture(t, work, "square.dst", squareDesign())

	t.Run("version", func(t *testing.T) {
		out := mustRunSW(t, env, "version")
		assertContains(t, out, "sw v", "version output")
	})

	t.Run("help", func(t *testing.T) {
		out := mustRunSW(t, env, "help")
		for _, cmd := range []string{"analyze", "save", "history", "preview", "export", "watch"} {
			assertContains(t, out, cmd, "usage table")
		}
		out = mustRunSW(t, env, "analyze", "--help")
		assertContains(t, out, "--quantity", "analyze help")
	})

	t.Run("init", func(t *testing.T) {
		out := mustRunSW(t, env, "init")
		assertContains(t, out, "config:", "init output")
		if !fileExists(filepath.Join(home, ".config", "stitchwise", "config.toml")) {
			t.Fatal("config.toml not written")
		}
		info, err := os.Stat(stateDir)
		if err != nil || !info.IsDir() {
			t.Fatalf("state dir not created: %v", err)
		}
		// A second init leaves the file alone.
		mustRunSW(t, env, "init")
	})

	t.Run("analyze", func(t *testing.T) {
		out := mustRunSW(t, env, "analyze", square, "--quantity", "30")
		assertContains(t, out, "sw analyze square.dst", "analyze header")
		assertContains(t, out, "10.0 mm x 10.0 mm", "analyze size")
		assertContains(t, out, "Complexity", "analyze sections")
		assertContains(t, out, "Costs", "analyze sections")
		assertContains(t, out, "Runtime", "analyze sections")
		assertContains(t, out, "N/A", "thread colours for DST")
	})

	t.Run("analyze json", func(t *testing.T) {
		out := mustRunSW(t, env, "analyze", square, "--json")
		var got struct {
			Design  string `json:"design"`
			Metrics struct {
				WidthMM           float64 `json:"width_mm"`
				HeightMM          float64 `json:"height_mm"`
				StitchCount       int     `json:"stitch_count"`
				ThreadLengthYards float64 `json:"thread_length_yards"`
				ColorChanges      int     `json:"color_changes"`
				ComplexityScore   float64 `json:"complexity_score"`
			} `json:"metrics"`
		}
		if err := json.Unmarshal([]byte(out), &got); err != nil {
			t.Fatalf("unmarshal: %v\n%s", err, out)
		}
		if got.Design != "square.dst" {
			t.Errorf("design = %q", got.Design)
		}
		if math.Abs(got.Metrics.WidthMM-10) > 1e-9 || math.Abs(got.Metrics.HeightMM-10) > 1e-9 {
			t.Errorf("size = %v x %v, want 10 x 10", got.Metrics.WidthMM, got.Metrics.HeightMM)
		}
		if got.Metrics.ColorChanges != 1 {
			t.Errorf("color changes = %d, want 1", got.Metrics.ColorChanges)
		}
		if got.Metrics.StitchCount < 20 {
			t.Errorf("stitch count = %d, want at least 20", got.Metrics.StitchCount)
		}
		if got.Metrics.ThreadLengthYards <= 0 {
			t.Errorf("thread length = %v, want positive", got.Metrics.ThreadLengthYards)
		}
		if got.Metrics.ComplexityScore < 0 || got.Metrics.ComplexityScore > 100 {
			t.Errorf("complexity = %v out of range", got.Metrics.ComplexityScore)
		}
	})

	t.Run("analyze errors", func(t *testing.T) {
		empty := writeFixture(t, work, "empty.dst", nil)
		_, stderr, err := runSW(t, env, "analyze", empty)
		if err == nil {
			t.Fatal("expected failure for empty file")
		}
		assertContains(t, stderr, "empty design file", "empty file error")

		pes := writeFixture(t, work, "logo.pes", []byte("#PES0001"))
		_, stderr, err = runSW(t, env, "analyze", pes)
		if err == nil {
			t.Fatal("expected failure for unsupported format")
		}
		assertContains(t, stderr, "unsupported stitch format", "unsupported error")

		_, stderr, err = runSW(t, env, "analyze", square, "--weight", "30")
		if err == nil {
			t.Fatal("expected failure for bad thread weight")
		}
		assertContains(t, stderr, "sw:", "error prefix")
	})

	t.Run("analyze dir", func(t *testing.T) {
		orders := filepath.Join(work, "orders")
		if err := os.MkdirAll(filepath.Join(orders, "caps"), 0o755); err != nil {
			t.Fatal(err)
		}
		writeFixture(t, orders, "crest.dst", squareDesign())
		writeFixture(t, filepath.Join(orders, "caps"), "cap.DST", squareDesign())
		writeFixture(t, orders, "notes.txt", []byte("rush order"))

		out := mustRunSW(t, env, "analyze", orders, "--quantity", "12")
		lines := strings.Split(strings.TrimSpace(out), "\n")
		if len(lines) != 2 {
			t.Fatalf("summary lines = %d, want 2\n%s", len(lines), out)
		}
		assertContains(t, out, "crest.dst", "batch summary")
		assertContains(t, out, "cap.DST", "batch summary")
		assertContains(t, out, "10.0x10.0 mm", "batch summary")
		assertNotContains(t, out, "notes.txt", "batch summary")
	})

	var jobID string
	t.Run("save", func(t *testing.T) {
		out := mustRunSW(t, env, "save", square, "--quantity", "30", "--foam", "--name", "Club Crest")
		idx := strings.Index(out, "saved: ")
		if idx < 0 {
			t.Fatalf("no saved line in %q", out)
		}
		jobID = strings.TrimSpace(out[idx+len("saved: "):])
		if len(jobID) != 36 {
			t.Fatalf("job id = %q, want uuid", jobID)
		}
		if !fileExists(filepath.Join(stateDir, "jobs.db")) {
			t.Error("jobs.db not created")
		}
		entries, err := os.ReadDir(filepath.Join(stateDir, "archive"))
		if err != nil || len(entries) != 1 {
			t.Errorf("archive entries = %d, err = %v", len(entries), err)
		}
	})

	t.Run("history", func(t *testing.T) {
		out := mustRunSW(t, env, "history")
		assertContains(t, out, "Club Crest", "history listing")
		assertContains(t, out, jobID[:8], "history id")
	})

	t.Run("show", func(t *testing.T) {
		out := mustRunSW(t, env, "show", jobID[:8])
		assertContains(t, out, "Club Crest", "show name")
		assertContains(t, out, "metrics match", "show re-analysis")

		_, _, err := runSW(t, env, "show", "zzzzzzzz")
		if err == nil {
			t.Error("expected failure for unknown job")
		}
	})

	t.Run("export", func(t *testing.T) {
		csvPath := filepath.Join(work, "jobs.csv")
		mustRunSW(t, env, "export", "--out", csvPath)
		data, err := os.ReadFile(csvPath)
		if err != nil {
			t.Fatalf("read export: %v", err)
		}
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		if len(lines) != 2 {
			t.Fatalf("export lines = %d, want header + 1", len(lines))
		}
		assertContains(t, lines[1], jobID, "export row")
		assertContains(t, lines[1], "Club Crest", "export row")
	})

	t.Run("preview", func(t *testing.T) {
		pngPath := filepath.Join(work, "square.png")
		heatPath := filepath.Join(work, "square-heat.png")
		out := mustRunSW(t, env, "preview", square, "--out", pngPath, "--heatmap", heatPath, "--foam")
		assertContains(t, out, "preview: ", "preview output")
		assertContains(t, out, "heatmap: ", "preview output")
		assertPNG(t, pngPath)
		assertPNG(t, heatPath)

		out = mustRunSW(t, env, "preview", square)
		assertContains(t, out, filepath.Join(stateDir, "previews", "square.png"), "default preview path")

		_, _, err := runSW(t, env, "preview", square, "--out", filepath.Join(work, "bad.png"), "--foam", "--foam-color", "nope")
		if err == nil {
			t.Error("expected failure for bad foam colour")
		}
	})

	t.Run("check", func(t *testing.T) {
		out := mustRunSW(t, env, "check")
		assertContains(t, out, "sw check", "check header")
		assertContains(t, out, "1 jobs", "check store")
		assertContains(t, out, ".dst .u01", "check formats")
		assertNotContains(t, out, "FAIL", "check results")
	})

	t.Run("delete", func(t *testing.T) {
		out := mustRunSW(t, env, "delete", jobID)
		assertContains(t, out, "deleted: "+jobID, "delete output")
		entries, _ := os.ReadDir(filepath.Join(stateDir, "archive"))
		if len(entries) != 0 {
			t.Errorf("archive entries after delete = %d", len(entries))
		}
		out = mustRunSW(t, env, "history")
		assertContains(t, out, "No saved jobs", "history after delete")
	})

	t.Run("save dir", func(t *testing.T) {
		batch := filepath.Join(work, "batch")
		if err := os.MkdirAll(batch, 0o755); err != nil {
			t.Fatal(err)
		}
		writeFixture(t, batch, "left.dst", squareDesign())
		writeFixture(t, batch, "right.dst", squareDesign())

		out := mustRunSW(t, env, "save", batch, "--quantity", "6", "--name", "ignored")
		if n := strings.Count(out, "saved "); n != 2 {
			t.Fatalf("saved lines = %d, want 2\n%s", n, out)
		}

		out = mustRunSW(t, env, "history")
		assertContains(t, out, "left.dst", "history after folder save")
		assertContains(t, out, "right.dst", "history after folder save")
		assertNotContains(t, out, "ignored", "folder jobs use file names")

		entries, err := os.ReadDir(filepath.Join(stateDir, "archive"))
		if err != nil || len(entries) != 2 {
			t.Errorf("archive entries = %d, err = %v", len(entries), err)
		}

		empty := filepath.Join(work, "nothing-here")
		if err := os.MkdirAll(empty, 0o755); err != nil {
			t.Fatal(err)
		}
		_, stderr, err := runSW(t, env, "save", empty)
		if err == nil {
			t.Fatal("expected failure for folder without designs")
		}
		assertContains(t, stderr, "no designs found", "empty folder save")
	})

	t.Run("unknown command", func(t *testing.T) {
		_, stderr, err := runSW(t, env, "frobnicate")
		if err == nil {
			t.Fatal("expected failure")
		}
		assertContains(t, stderr, "unknown command", "unknown command")
	})
}
