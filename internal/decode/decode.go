// Package decode reads machine embroidery files into stitch patterns.
//
// Readers are registered by file extension. The Registry satisfies the
// path-based decoder contract the loader expects.
package decode

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/johns/stitchwise/internal/stitch"
)

// ErrUnsupportedFormat is returned for a path whose extension has no reader.
var ErrUnsupportedFormat = errors.New("unsupported stitch format")

// ReadFunc decodes one stitch file from r.
type ReadFunc func(r io.Reader) (*stitch.Pattern, error)

// Registry maps lower-case file extensions (with dot) to readers.
type Registry struct {
	readers map[string]ReadFunc
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{readers: make(map[string]ReadFunc)}
}

// Default returns a registry with every built-in reader.
func Default() *Registry {
	r := NewRegistry()
	r.Register(".dst", ReadDST)
	r.Register(".u01", ReadU01)
	return r
}

// Register adds or replaces the reader for ext.
func (r *Registry) Register(ext string, fn ReadFunc) {
	r.readers[normalizeExt(ext)] = fn
}

// Supports reports whether a reader exists for the extension of path.
func (r *Registry) Supports(path string) bool {
	_, ok := r.readers[normalizeExt(filepath.Ext(path))]
	return ok
}

// Extensions returns the registered extensions, sorted.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.readers))
	for ext := range r.readers {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Decode opens path and decodes it with the reader for its extension.
func (r *Registry) Decode(path string) (*stitch.Pattern, error) {
	ext := normalizeExt(filepath.Ext(path))
	fn, ok := r.readers[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open design: %w", err)
	}
	defer f.Close()

	return fn(f)
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
