package decode

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/johns/stitchwise/internal/stitch"
)

const dstHeaderSize = 512

// DST control byte masks, checked most specific first.
const (
	dstEnd         = 0xF3
	dstColorChange = 0xC3
	dstJump        = 0x83
)

// ReadDST decodes a Tajima DST file. Records are relative moves encoded in
// balanced ternary; the returned trace holds absolute positions. A file with
// a header but no records yields a pattern with no stitches.
func ReadDST(r io.Reader) (*stitch.Pattern, error) {
	header := make([]byte, dstHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("read dst header: %w", err)
	}

	h := parseDSTHeader(header)
	p := &stitch.Pattern{Label: h.label}

	var x, y int
	rec := make([]byte, 3)
	for {
		if _, err := io.ReadFull(r, rec); err != nil {
			// A short trailing record is treated as end of data.
			break
		}
		b0, b1, b2 := rec[0], rec[1], rec[2]

		if b2&dstEnd == dstEnd {
			p.Stitches = append(p.Stitches, stitch.Record{X: x, Y: y, Cmd: stitch.End})
			break
		}

		x += dstDX(b0, b1, b2)
		y += dstDY(b0, b1, b2)

		cmd := stitch.Stitch
		switch {
		case b2&dstColorChange == dstColorChange:
			cmd = stitch.ColorChange
		case b2&dstJump == dstJump:
			cmd = stitch.Jump
		}
		p.Stitches = append(p.Stitches, stitch.Record{X: x, Y: y, Cmd: cmd})
	}

	h.check(p.Stitches)
	return p, nil
}

func bit(b byte, pos uint) int {
	return int(b>>pos) & 1
}

func dstDX(b0, b1, b2 byte) int {
	x := 0
	x += bit(b2, 2) * 81
	x -= bit(b2, 3) * 81
	x += bit(b1, 2) * 27
	x -= bit(b1, 3) * 27
	x += bit(b0, 2) * 9
	x -= bit(b0, 3) * 9
	x += bit(b1, 0) * 3
	x -= bit(b1, 1) * 3
	x += bit(b0, 0)
	x -= bit(b0, 1)
	return x
}

// dstDY returns the Y move in the downward-growing frame.
func dstDY(b0, b1, b2 byte) int {
	y := 0
	y += bit(b2, 5) * 81
	y -= bit(b2, 4) * 81
	y += bit(b1, 5) * 27
	y -= bit(b1, 4) * 27
	y += bit(b0, 5) * 9
	y -= bit(b0, 4) * 9
	y += bit(b1, 7) * 3
	y -= bit(b1, 6) * 3
	y += bit(b0, 7)
	y -= bit(b0, 6)
	return -y
}

// dstHeader holds the header fields sw reads. Counts are -1 when the field
// is missing or not a number.
type dstHeader struct {
	label        string
	stitches     int // ST: records, excluding the end record
	colorChanges int // CO:
}

func parseDSTHeader(header []byte) dstHeader {
	h := dstHeader{stitches: -1, colorChanges: -1}
	for _, field := range bytes.Split(header, []byte{'\r'}) {
		s := string(field)
		if len(s) < 3 {
			continue
		}
		val := strings.TrimSpace(strings.TrimRight(s[3:], "\x00\x1a "))
		switch s[:3] {
		case "LA:":
			h.label = val
		case "ST:":
			h.stitches = headerInt(val)
		case "CO:":
			h.colorChanges = headerInt(val)
		}
	}
	return h
}

func headerInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return -1
	}
	return n
}

// check reports whether the decoded records agree with the header counts,
// logging a warning for each mismatch.
func (h dstHeader) check(t stitch.Trace) bool {
	ok := true
	records := len(t) - t.Count(stitch.End)
	if h.stitches >= 0 && h.stitches != records {
		slog.Warn("dst header stitch count mismatch", "label", h.label, "header", h.stitches, "decoded", records)
		ok = false
	}
	if cc := t.Count(stitch.ColorChange); h.colorChanges >= 0 && h.colorChanges != cc {
		slog.Warn("dst header color change mismatch", "label", h.label, "header", h.colorChanges, "decoded", cc)
		ok = false
	}
	return ok
}
