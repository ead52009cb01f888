// Package archive keeps a copy of each saved job's design file so the job
// can be re-analyzed later.
package archive

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

const zstSuffix = ".zst"

// Store writes data to archiveDir/{job-id}{ext}[.zst] and returns the path.
// ext is the original design extension, kept so the decoder can be chosen
// on read.
func Store(data []byte, jobID, ext, archiveDir string, compress bool) (string, error) {
	if jobID == "" {
		return "", fmt.Errorf("archive: empty job ID")
	}

	destPath := ArchivePath(jobID, ext, archiveDir, compress)

	if err := os.MkdirAll(archiveDir, 0o755); err != nil {
		return "", fmt.Errorf("create archive dir: %w", err)
	}

	dest, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("create archive: %w", err)
	}
	defer dest.Close()

	if !compress {
		if _, err := dest.Write(data); err != nil {
			return "", fmt.Errorf("write archive: %w", err)
		}
		return destPath, nil
	}

	encoder, err := zstd.NewWriter(dest)
	if err != nil {
		return "", fmt.Errorf("create zstd encoder: %w", err)
	}

	if _, err := io.Copy(encoder, bytes.NewReader(data)); err != nil {
		encoder.Close()
		return "", fmt.Errorf("compress: %w", err)
	}

	if err := encoder.Close(); err != nil {
		return "", fmt.Errorf("finalize compression: %w", err)
	}

	return destPath, nil
}

// Read returns the original design bytes from an archive path, decompressing
// .zst files.
func Read(archivePath string) ([]byte, error) {
	src, err := os.Open(archivePath)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer src.Close()

	if !strings.HasSuffix(archivePath, zstSuffix) {
		return io.ReadAll(src)
	}

	decoder, err := zstd.NewReader(src)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	defer decoder.Close()

	data, err := io.ReadAll(decoder)
	if err != nil {
		return nil, fmt.Errorf("decompress: %w", err)
	}
	return data, nil
}

// DesignName returns the name the archived design should be decoded under,
// i.e. the archive path without its compression suffix.
func DesignName(archivePath string) string {
	return strings.TrimSuffix(archivePath, zstSuffix)
}

// ArchivePath returns the deterministic archive path for a job.
func ArchivePath(jobID, ext, archiveDir string, compress bool) string {
	name := jobID + strings.ToLower(ext)
	if compress {
		name += zstSuffix
	}
	return filepath.Join(archiveDir, name)
}
