// Package preview renders stitch traces and density grids to PNG.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/johns/stitchwise/internal/analysis"
	"github.com/johns/stitchwise/internal/stitch"
)

const (
	defaultSize   = 800
	marginRatio   = 0.04
	captionHeight = 20
	foamPadding   = 5 // 0.5 mm in trace units
	foamAlpha     = 77
	strokeWidth   = 1.0 // pixels
)

var (
	background = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	ink        = color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff}
)

// Options controls design rendering.
type Options struct {
	Size      int // longest side in pixels
	Segmenter analysis.Segmenter
	NumColors int
	Palette   []color.NRGBA
	Foam      bool
	FoamColor color.NRGBA
	Caption   string
}

// Render draws t as coloured stitch lines. Stitch lines join consecutive
// STITCH records; jumps and other commands lift the pen. The trace itself is
// not modified.
func Render(t stitch.Trace, opts Options) (*image.RGBA, error) {
	if len(t) == 0 {
		return nil, fmt.Errorf("render: empty trace")
	}
	if opts.Size <= 0 {
		opts.Size = defaultSize
	}
	if opts.Segmenter == nil {
		opts.Segmenter = analysis.IndexSegmenter{}
	}
	if len(opts.Palette) == 0 {
		opts.Palette = []color.NRGBA{ink}
	}

	// Plot space: Y grows upward.
	plot := t.FlipY()
	box := analysis.Bounds(plot)
	if opts.Foam {
		box.MinX -= foamPadding
		box.MinY -= foamPadding
		box.MaxX += foamPadding
		box.MaxY += foamPadding
	}
	tf := newTransform(box, opts.Size)

	h := tf.height
	if opts.Caption != "" {
		h += captionHeight
	}
	img := image.NewRGBA(image.Rect(0, 0, tf.width, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	z := vector.NewRasterizer(tf.width, tf.height)
	var prev *stitch.Record
	for _, seg := range opts.Segmenter.Segment(plot, opts.NumColors) {
		z.Reset(tf.width, tf.height)
		drawn := false
		for j := range seg.Records {
			cur := &seg.Records[j]
			if prev != nil && prev.Cmd == stitch.Stitch && cur.Cmd == stitch.Stitch {
				x0, y0 := tf.point(prev.X, prev.Y)
				x1, y1 := tf.point(cur.X, cur.Y)
				if strokeSegment(z, x0, y0, x1, y1) {
					drawn = true
				}
			}
			prev = cur
		}
		if drawn {
			c := opts.Palette[seg.Color%len(opts.Palette)]
			z.Draw(img, image.Rect(0, 0, tf.width, tf.height), image.NewUniform(c), image.Point{})
		}
	}

	if opts.Foam {
		fc := opts.FoamColor
		fc.A = foamAlpha
		x0, y0 := tf.point(box.MinX, box.MaxY)
		x1, y1 := tf.point(box.MaxX, box.MinY)
		r := image.Rect(int(x0), int(y0), int(math.Ceil(float64(x1))), int(math.Ceil(float64(y1))))
		draw.Draw(img, r, image.NewUniform(fc), image.Point{}, draw.Over)
	}

	if opts.Caption != "" {
		d := &font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(ink),
			Face: basicfont.Face7x13,
			Dot:  fixed.P(tf.margin, h-6),
		}
		d.DrawString(opts.Caption)
	}
	return img, nil
}

// strokeSegment adds a quad of strokeWidth around the line to z. All quads
// share one winding so overlaps never cancel. Reports false for a zero-length
// line.
func strokeSegment(z *vector.Rasterizer, x0, y0, x1, y1 float32) bool {
	dx, dy := x1-x0, y1-y0
	l := float32(math.Hypot(float64(dx), float64(dy)))
	if l == 0 {
		return false
	}
	nx, ny := -dy/l*strokeWidth/2, dx/l*strokeWidth/2
	z.MoveTo(x0+nx, y0+ny)
	z.LineTo(x1+nx, y1+ny)
	z.LineTo(x1-nx, y1-ny)
	z.LineTo(x0-nx, y0-ny)
	z.ClosePath()
	return true
}

// transform maps y-up plot units to raster pixels, preserving aspect.
type transform struct {
	box           analysis.Box
	scale         float64
	margin        int
	width, height int
}

func newTransform(box analysis.Box, size int) transform {
	margin := int(float64(size) * marginRatio)
	span := math.Max(float64(box.MaxX-box.MinX), float64(box.MaxY-box.MinY))
	if span == 0 {
		span = 1
	}
	scale := float64(size-2*margin) / span
	return transform{
		box:    box,
		scale:  scale,
		margin: margin,
		width:  int(math.Ceil(float64(box.MaxX-box.MinX)*scale)) + 2*margin,
		height: int(math.Ceil(float64(box.MaxY-box.MinY)*scale)) + 2*margin,
	}
}

func (tf transform) point(x, y int) (float32, float32) {
	px := float64(tf.margin) + float64(x-tf.box.MinX)*tf.scale
	py := float64(tf.margin) + float64(tf.box.MaxY-y)*tf.scale
	return float32(px), float32(py)
}

// SavePNG encodes img to path, creating parent directories.
func SavePNG(img image.Image, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create preview dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// ParseHex parses "#rgb" or "#rrggbb" (leading '#' optional) into an opaque
// colour.
func ParseHex(s string) (color.NRGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return color.NRGBA{}, fmt.Errorf("invalid hex colour %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex colour %q", s)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// ParsePalette parses every entry with ParseHex.
func ParsePalette(hex []string) ([]color.NRGBA, error) {
	out := make([]color.NRGBA, 0, len(hex))
	for _, h := range hex {
		c, err := ParseHex(h)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// ThreadPalette converts declared thread colours, for patterns that carry
// them.
func ThreadPalette(threads []stitch.Thread) []color.NRGBA {
	out := make([]color.NRGBA, len(threads))
	for i, th := range threads {
		out[i] = color.NRGBA{R: th.R, G: th.G, B: th.B, A: 0xff}
	}
	return out
}
