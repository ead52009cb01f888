package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ConfigDir returns the stitchwise config directory path.
// Uses $XDG_CONFIG_HOME/stitchwise if set, otherwise ~/.config/stitchwise.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "stitchwise")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "stitchwise")
}

// WriteDefault writes a default config.toml using stateDir for job data.
// Returns the config file path. Skips if config.toml already exists.
func WriteDefault(stateDir string) (string, error) {
	dir := ConfigDir()
	path := filepath.Join(dir, "config.toml")

	if _, err := os.Stat(path); err == nil {
		return path, nil // already exists
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}

	content := fmt.Sprintf(`state_dir = %q

[machine]
heads = 15
coloreel_heads = 2
thread_weight = 40

[prices]
thread_spool = 9.69
bobbin_box = 35.85
foam_sheet = 2.45

[analysis]
grid_size = 50
num_colors = 1
segmenter = "index"

[preview]
size = 800
foam_color = "#ff0000"

[archive]
compress = true

[watch]
patterns = ["*.dst", "*.DST", "*.u01", "*.U01"]
debounce_ms = 500
`, CompressHome(stateDir))

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write config: %w", err)
	}

	return path, nil
}

// CompressHome replaces $HOME prefix with ~/ for portable config values.
func CompressHome(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if strings.HasPrefix(path, home+"/") {
		return "~/" + path[len(home)+1:]
	}
	if path == home {
		return "~"
	}
	return path
}
