package archive

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ulikunitz/xz"
)

// Writer wraps an output file, compressing when the path ends in .xz or .gz.
type Writer struct {
	io.Writer
	file       *os.File
	compressor io.Closer
}

// Create creates (or truncates) path for writing. If createParentDir is true,
// parent directories of path are created.
func Create(path string, createParentDir bool) (*Writer, error) {
	if createParentDir {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create parent directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	w := &Writer{Writer: f, file: f}
	switch DetectCompression(path) {
	case CompressionXZ:
		xzw, err := xz.NewWriter(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("xz writer: %w", err)
		}
		w.Writer = xzw
		w.compressor = xzw
	case CompressionGzip:
		gw := gzip.NewWriter(f)
		w.Writer = gw
		w.compressor = gw
	}
	return w, nil
}

// Close flushes any compressor and closes the file.
func (w *Writer) Close() error {
	if w.compressor != nil {
		if err := w.compressor.Close(); err != nil {
			w.file.Close()
			return fmt.Errorf("flush compressed stream: %w", err)
		}
	}
	return w.file.Close()
}

// WriteFile writes data to path, compressing according to its suffix.
func WriteFile(path string, data []byte) error {
	w, err := Create(path, true)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return w.Close()
}
