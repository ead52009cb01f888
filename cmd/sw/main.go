package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/johns/stitchwise/internal/check"
	"github.com/johns/stitchwise/internal/config"
	"github.com/johns/stitchwise/internal/help"
)

func main() {
	args, verbose := stripFlag(os.Args[1:], "--verbose")
	setupLogging(verbose)

	if len(args) < 1 {
		usage()
		os.Exit(1)
	}

	cmd, rest := args[0], args[1:]
	if hasFlag(rest, "--help") || hasFlag(rest, "-h") {
		commandHelp(cmd)
		return
	}

	switch cmd {
	case "init":
		runInit()

	case "analyze":
		runAnalyze(rest)

	case "save":
		runSave(rest)

	case "history":
		runHistory(rest)

	case "show":
		runShow(rest)

	case "delete":
		runDelete(rest)

	case "preview":
		runPreview(rest)

	case "export":
		runExport(rest)

	case "watch":
		runWatch(rest)

	case "check":
		cfg := mustLoadConfig()
		report := check.Run(cfg)
		fmt.Print(report.Format())
		if report.HasFailures() {
			os.Exit(1)
		}

	case "version":
		fmt.Printf("sw v%s (stitchwise)\n", help.Version)

	case "help", "--help", "-h":
		if len(rest) > 0 {
			commandHelp(rest[0])
			return
		}
		fmt.Print(help.FormatUsage(help.TopLevel, help.Subcommands))

	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		usage()
		os.Exit(1)
	}
}

func runInit() {
	cfg := mustLoadConfig()
	path, err := config.WriteDefault(cfg.StateDir)
	if err != nil {
		fatal("init: %v", err)
	}
	if err := os.MkdirAll(cfg.StateDir, 0o755); err != nil {
		fatal("create state dir: %v", err)
	}
	fmt.Printf("config: %s\n", config.CompressHome(path))
	fmt.Printf("state:  %s\n", config.CompressHome(cfg.StateDir))
}

func usage() {
	fmt.Fprint(os.Stderr, help.FormatUsage(help.TopLevel, help.Subcommands))
}

func commandHelp(name string) {
	for _, c := range help.Subcommands {
		if c.Name == name {
			fmt.Print(help.FormatTerminal(c))
			return
		}
	}
	fmt.Print(help.FormatUsage(help.TopLevel, help.Subcommands))
}

func setupLogging(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

func mustLoadConfig() config.Config {
	cfg, err := config.Load()
	if err != nil {
		fatal("load config: %v", err)
	}
	return cfg
}

// valueFlags take the following argument as their value.
var valueFlags = map[string]bool{
	"--quantity":   true,
	"--weight":     true,
	"--colors":     true,
	"--name":       true,
	"--limit":      true,
	"--out":        true,
	"--heatmap":    true,
	"--foam-color": true,
	"--size":       true,
	"--materials":  true,
	"--costs":      true,
}

// positional returns the non-flag arguments, skipping flag values.
func positional(args []string) []string {
	var out []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		if valueFlags[a] {
			i++
			continue
		}
		if len(a) > 1 && a[0] == '-' {
			continue
		}
		out = append(out, a)
	}
	return out
}

func flagValue(args []string, flag string) string {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func hasFlag(args []string, flag string) bool {
	for _, a := range args {
		if a == flag {
			return true
		}
	}
	return false
}

// intFlag parses flag as an integer, returning def when absent.
func intFlag(args []string, flag string, def int) int {
	v := flagValue(args, flag)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		fatal("%s: %q is not a number", flag, v)
	}
	return n
}

func stripFlag(args []string, flag string) ([]string, bool) {
	out := make([]string, 0, len(args))
	found := false
	for _, a := range args {
		if a == flag {
			found = true
			continue
		}
		out = append(out, a)
	}
	return out, found
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "sw: "+format+"\n", args...)
	os.Exit(1)
}
