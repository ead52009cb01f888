// Package discover finds design files already on disk.
package discover

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DesignFile represents a discovered stitch file on disk.
type DesignFile struct {
	Path    string
	Name    string // base name, used as the design name
	Size    int64
	ModTime int64 // unix timestamp for sorting
}

// Matcher reports whether a path holds a readable design.
type Matcher interface {
	Supports(path string) bool
}

// Designs walks basePath recursively and returns every non-empty file m
// accepts, sorted by modification time (oldest first). Hidden directories
// are skipped.
func Designs(basePath string, m Matcher) ([]DesignFile, error) {
	var results []DesignFile

	err := filepath.Walk(basePath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip inaccessible entries
		}
		if info.IsDir() {
			if path != basePath && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if info.Size() == 0 || !m.Supports(path) {
			return nil
		}

		results = append(results, DesignFile{
			Path:    path,
			Name:    info.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime().Unix(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].ModTime != results[j].ModTime {
			return results[i].ModTime < results[j].ModTime
		}
		return results[i].Path < results[j].Path
	})

	return results, nil
}
