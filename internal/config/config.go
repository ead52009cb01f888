package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/johns/stitchwise/internal/cost"
)

// Config holds all stitchwise configuration.
type Config struct {
	StateDir string `toml:"state_dir"`

	Machine  MachineConfig  `toml:"machine"`
	Prices   cost.Prices    `toml:"prices"`
	Analysis AnalysisConfig `toml:"analysis"`
	Preview  PreviewConfig  `toml:"preview"`
	Archive  ArchiveConfig  `toml:"archive"`
	Watch    WatchConfig    `toml:"watch"`
}

type MachineConfig struct {
	Heads         int `toml:"heads"`
	ColoreelHeads int `toml:"coloreel_heads"`
	ThreadWeight  int `toml:"thread_weight"`
}

type AnalysisConfig struct {
	GridSize  int      `toml:"grid_size"`
	NumColors int      `toml:"num_colors"`
	Segmenter string   `toml:"segmenter"` // "index" or "marker"
	Palette   []string `toml:"palette"`   // hex colours, cycled per segment
}

type PreviewConfig struct {
	Size      int    `toml:"size"` // pixels, square
	FoamColor string `toml:"foam_color"`
}

type ArchiveConfig struct {
	Compress bool `toml:"compress"`
}

type WatchConfig struct {
	Patterns   []string `toml:"patterns"`
	DebounceMS int      `toml:"debounce_ms"`
}

// DefaultConfig returns config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		StateDir: "~/.local/share/stitchwise",
		Machine: MachineConfig{
			Heads:         15,
			ColoreelHeads: 2,
			ThreadWeight:  40,
		},
		Prices: cost.DefaultPrices(),
		Analysis: AnalysisConfig{
			GridSize:  50,
			NumColors: 1,
			Segmenter: "index",
			Palette: []string{
				"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
				"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
			},
		},
		Preview: PreviewConfig{
			Size:      800,
			FoamColor: "#ff0000",
		},
		Archive: ArchiveConfig{
			Compress: true,
		},
		Watch: WatchConfig{
			Patterns:   []string{"*.dst", "*.DST", "*.u01", "*.U01"},
			DebounceMS: 500,
		},
	}
}

// Load reads config from the standard path, falling back to defaults.
func Load() (Config, error) {
	cfg := DefaultConfig()

	paths := configPaths()
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			if _, err := toml.DecodeFile(p, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", p, err)
			}
			break
		}
	}

	cfg.StateDir = expandHome(cfg.StateDir)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects values the calculator cannot work with.
func (c Config) Validate() error {
	if c.Machine.Heads < 1 || c.Machine.ColoreelHeads < 1 {
		return fmt.Errorf("machine heads must be positive (heads=%d, coloreel_heads=%d)",
			c.Machine.Heads, c.Machine.ColoreelHeads)
	}
	if c.Machine.ThreadWeight != 40 && c.Machine.ThreadWeight != 60 {
		return fmt.Errorf("thread_weight must be 40 or 60, got %d", c.Machine.ThreadWeight)
	}
	switch c.Analysis.Segmenter {
	case "index", "marker":
	default:
		return fmt.Errorf("unknown segmenter %q (want index or marker)", c.Analysis.Segmenter)
	}
	if len(c.Analysis.Palette) == 0 {
		return fmt.Errorf("analysis palette must not be empty")
	}
	return nil
}

func configPaths() []string {
	var paths []string

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "stitchwise", "config.toml"))
	}

	home, _ := os.UserHomeDir()
	if home != "" {
		paths = append(paths, filepath.Join(home, ".config", "stitchwise", "config.toml"))
	}

	return paths
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// StoreDB returns the job history database path.
func (c Config) StoreDB() string {
	return filepath.Join(c.StateDir, "jobs.db")
}

// ArchiveDir returns the directory holding archived design files.
func (c Config) ArchiveDir() string {
	return filepath.Join(c.StateDir, "archive")
}

// HeadsFor returns the active head count for the machine setup.
func (c Config) HeadsFor(coloreel bool) int {
	if coloreel {
		return c.Machine.ColoreelHeads
	}
	return c.Machine.Heads
}

// PreviewDir returns the default directory for rendered previews.
func (c Config) PreviewDir() string {
	return filepath.Join(c.StateDir, "previews")
}
