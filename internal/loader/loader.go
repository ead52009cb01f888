// Package loader turns uploaded stitch-file bytes into a stitch trace.
//
// Decoders only accept a filesystem path, so the bytes are staged in a
// temporary file that is removed before Load returns.
package loader

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/johns/stitchwise/internal/stitch"
)

// Decoder reads a stitch file from disk. A nil pattern with a nil error
// means the file held nothing usable.
type Decoder interface {
	Decode(path string) (*stitch.Pattern, error)
}

// Loader stages bytes for a Decoder.
type Loader struct {
	Decoder Decoder
	TempDir string // "" uses os.TempDir
}

// New returns a Loader staging files in the system temp dir.
func New(dec Decoder) *Loader {
	return &Loader{Decoder: dec}
}

// Load decodes data and returns the full pattern. name is the original
// upload name; only its extension is used, to pick the staged suffix.
func (l *Loader) Load(data []byte, name string) (*stitch.Pattern, error) {
	if len(data) == 0 {
		return nil, ErrEmptyInput
	}

	path, cleanup, err := l.stage(data, name)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	p, err := l.decode(path)
	if err != nil {
		return nil, &DecodeError{Name: filepath.Base(name), Err: err}
	}
	if p == nil || len(p.Stitches) == 0 {
		return nil, ErrInvalidDesign
	}

	slog.Debug("design decoded", "name", name, "records", len(p.Stitches))
	return p, nil
}

// Trace is Load returning only the stitch records.
func (l *Loader) Trace(data []byte, name string) (stitch.Trace, error) {
	p, err := l.Load(data, name)
	if err != nil {
		return nil, err
	}
	return p.Stitches, nil
}

// LoadFile reads path and loads it under its own name.
func (l *Loader) LoadFile(path string) (*stitch.Pattern, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read design: %w", err)
	}
	return l.Load(data, path)
}

func (l *Loader) decode(path string) (p *stitch.Pattern, err error) {
	defer func() {
		if r := recover(); r != nil {
			p, err = nil, fmt.Errorf("decoder panic: %v", r)
		}
	}()
	return l.Decoder.Decode(path)
}

// stage writes data to a uniquely named temp file carrying the upload's
// extension. The returned cleanup removes it.
func (l *Loader) stage(data []byte, name string) (string, func(), error) {
	tmp, err := os.CreateTemp(l.TempDir, "sw-stage-*"+stagedSuffix(name))
	if err != nil {
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}
	cleanup := func() {
		if err := os.Remove(tmp.Name()); err != nil && !os.IsNotExist(err) {
			slog.Warn("remove staged design", "path", tmp.Name(), "error", err)
		}
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return "", nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("close temp file: %w", err)
	}

	return tmp.Name(), cleanup, nil
}

// stagedSuffix returns the lower-cased extension of name, or "" when it has
// none or contains characters unsafe for a temp-file pattern.
func stagedSuffix(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if len(ext) < 2 {
		return ""
	}
	for _, r := range ext[1:] {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9') {
			return ""
		}
	}
	return ext
}
