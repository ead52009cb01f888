package stitch

import "fmt"

// Command is the kind of a decoded stitch record.
type Command int

const (
	Stitch Command = iota
	Jump
	ColorChange
	Trim
	Stop
	End
)

func (c Command) String() string {
	switch c {
	case Stitch:
		return "stitch"
	case Jump:
		return "jump"
	case ColorChange:
		return "color_change"
	case Trim:
		return "trim"
	case Stop:
		return "stop"
	case End:
		return "end"
	default:
		return fmt.Sprintf("command(%d)", int(c))
	}
}

// Record is one absolute coordinate plus command from a decoded design.
// Units are tenths of a millimetre; Y grows downward.
type Record struct {
	X   int
	Y   int
	Cmd Command
}

// Trace is the full ordered sequence of records for one design.
type Trace []Record

// FlipY returns a copy of the trace mirrored on the X axis, for rendering in
// a Y-up frame. The receiver is left untouched.
func (t Trace) FlipY() Trace {
	out := make(Trace, len(t))
	for i, r := range t {
		out[i] = Record{X: r.X, Y: -r.Y, Cmd: r.Cmd}
	}
	return out
}

// Count returns the number of records of the given kind.
func (t Trace) Count(cmd Command) int {
	n := 0
	for _, r := range t {
		if r.Cmd == cmd {
			n++
		}
	}
	return n
}

// Thread is a thread colour declared by the design file.
type Thread struct {
	R, G, B uint8
}

// Hex returns the colour as "#rrggbb".
func (th Thread) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", th.R, th.G, th.B)
}

// Pattern is what a decoder produces for one file.
type Pattern struct {
	Stitches Trace
	Threads  []Thread
	Label    string // design name from the file header, if any
}
