package decode

import (
	"fmt"
	"io"

	"github.com/johns/stitchwise/internal/stitch"
)

const u01HeaderSize = 0x100

// ReadU01 decodes a Barudan U01 file. Each 3-byte record is (ctrl, dy, dx)
// with sign flags in ctrl; the low five bits of ctrl select the function.
func ReadU01(r io.Reader) (*stitch.Pattern, error) {
	header := make([]byte, u01HeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("read u01 header: %w", err)
	}

	p := &stitch.Pattern{}

	var x, y int
	add := func(cmd stitch.Command) {
		p.Stitches = append(p.Stitches, stitch.Record{X: x, Y: y, Cmd: cmd})
	}

	rec := make([]byte, 3)
	for {
		if _, err := io.ReadFull(r, rec); err != nil {
			break
		}
		ctrl := rec[0]
		dy := -int(rec[1])
		dx := int(rec[2])
		if ctrl&0x20 != 0 {
			dx = -dx
		}
		if ctrl&0x40 != 0 {
			dy = -dy
		}
		moved := dx != 0 || dy != 0

		fn := ctrl & 0x1F
		switch {
		case fn == 0x00:
			x, y = x+dx, y+dy
			add(stitch.Stitch)
		case fn == 0x01:
			x, y = x+dx, y+dy
			add(stitch.Jump)
		case fn == 0x02 || fn == 0x04:
			// speed change, optionally with a stitch
			if moved {
				x, y = x+dx, y+dy
				add(stitch.Stitch)
			}
		case fn == 0x03 || fn == 0x05:
			if moved {
				x, y = x+dx, y+dy
				add(stitch.Jump)
			}
		case fn == 0x06 || fn == 0x07:
			add(stitch.Trim)
			if moved {
				x, y = x+dx, y+dy
				add(stitch.Jump)
			}
		case fn == 0x08:
			add(stitch.Stop)
			if moved {
				x, y = x+dx, y+dy
				add(stitch.Jump)
			}
		case fn >= 0x09 && fn <= 0x17:
			// needle change
			x, y = x+dx, y+dy
			add(stitch.ColorChange)
		case fn == 0x18:
			add(stitch.End)
			return p, nil
		}
	}

	return p, nil
}
