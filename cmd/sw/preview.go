package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/johns/stitchwise/internal/analysis"
	"github.com/johns/stitchwise/internal/config"
	"github.com/johns/stitchwise/internal/decode"
	"github.com/johns/stitchwise/internal/loader"
	"github.com/johns/stitchwise/internal/preview"
)

func runPreview(args []string) {
	pos := positional(args)
	if len(pos) < 1 {
		fatal("usage: sw preview <file> [flags]")
	}
	cfg := mustLoadConfig()
	path := pos[0]

	p, err := loader.New(decode.Default()).LoadFile(path)
	if err != nil {
		fatal("preview: %v", err)
	}

	opts := preview.Options{
		Size:      intFlag(args, "--size", cfg.Preview.Size),
		Segmenter: segmenterFor(cfg),
		NumColors: intFlag(args, "--colors", cfg.Analysis.NumColors),
		Foam:      hasFlag(args, "--foam"),
	}
	if len(p.Threads) > 0 {
		opts.Palette = preview.ThreadPalette(p.Threads)
		if flagValue(args, "--colors") == "" {
			opts.NumColors = len(p.Threads)
		}
	} else if opts.Palette, err = preview.ParsePalette(cfg.Analysis.Palette); err != nil {
		fatal("palette: %v", err)
	}
	if opts.Foam {
		hex := flagValue(args, "--foam-color")
		if hex == "" {
			hex = cfg.Preview.FoamColor
		}
		if opts.FoamColor, err = preview.ParseHex(hex); err != nil {
			fatal("foam colour: %v", err)
		}
	}

	box := analysis.Bounds(p.Stitches)
	opts.Caption = fmt.Sprintf("%s  %.1f x %.1f mm  %d stitches",
		filepath.Base(path), box.WidthMM(), box.HeightMM(), len(p.Stitches))

	img, err := preview.Render(p.Stitches, opts)
	if err != nil {
		fatal("preview: %v", err)
	}
	out := flagValue(args, "--out")
	if out == "" {
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		out = filepath.Join(cfg.PreviewDir(), base+".png")
	}
	if err := preview.SavePNG(img, out); err != nil {
		fatal("preview: %v", err)
	}
	fmt.Printf("preview: %s\n", out)

	if heat := flagValue(args, "--heatmap"); heat != "" {
		grid := analysis.NewDensityGrid(p.Stitches, cfg.Analysis.GridSize)
		if err := preview.SavePNG(preview.Heatmap(grid, opts.Size), heat); err != nil {
			fatal("heatmap: %v", err)
		}
		fmt.Printf("heatmap: %s\n", heat)
	}
}

func segmenterFor(cfg config.Config) analysis.Segmenter {
	if cfg.Analysis.Segmenter == "marker" {
		return analysis.MarkerSegmenter{}
	}
	return analysis.IndexSegmenter{}
}
