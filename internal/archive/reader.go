// Package archive provides transparent access to compressed input and output
// streams. Files ending in .xz or .gz are decompressed on read and compressed
// on write; every other path is passed through untouched.
package archive

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ulikunitz/xz"
)

// Compression identifies the stream compression of a file.
type Compression string

// Supported compressions.
const (
	CompressionNone Compression = ""
	CompressionXZ   Compression = "xz"
	CompressionGzip Compression = "gzip"
)

// DetectCompression determines compression from the file name suffix.
func DetectCompression(path string) Compression {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".xz"):
		return CompressionXZ
	case strings.HasSuffix(lower, ".gz"):
		return CompressionGzip
	default:
		return CompressionNone
	}
}

// TrimCompressionSuffix strips a trailing .xz or .gz so callers can inspect
// the underlying file extension (e.g. "doc.xml.xz" -> "doc.xml").
func TrimCompressionSuffix(path string) string {
	switch DetectCompression(path) {
	case CompressionXZ:
		return path[:len(path)-len(".xz")]
	case CompressionGzip:
		return path[:len(path)-len(".gz")]
	default:
		return path
	}
}

// Reader wraps an open file with automatic decompression handling.
type Reader struct {
	io.Reader
	file         *os.File
	decompressor io.Closer
}

// Open opens path for reading, decompressing .xz and .gz content.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	r, err := NewReader(f, DetectCompression(path))
	if err != nil {
		f.Close()
		return nil, err
	}
	r.file = f
	return r, nil
}

// NewReader wraps src with a decompressor for the given compression.
// The returned Reader does not close src.
func NewReader(src io.Reader, c Compression) (*Reader, error) {
	switch c {
	case CompressionXZ:
		xzr, err := xz.NewReader(src)
		if err != nil {
			return nil, fmt.Errorf("xz reader: %w", err)
		}
		return &Reader{Reader: xzr}, nil // xz reader doesn't need closing
	case CompressionGzip:
		gzr, err := gzip.NewReader(src)
		if err != nil {
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		return &Reader{Reader: gzr, decompressor: gzr}, nil
	case CompressionNone:
		return &Reader{Reader: src}, nil
	default:
		return nil, fmt.Errorf("unsupported compression: %s", c)
	}
}

// Close closes the reader and any underlying decompressors.
func (r *Reader) Close() error {
	var errs []error
	if r.decompressor != nil {
		if err := r.decompressor.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if r.file != nil {
		if err := r.file.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// ReadAll reads a whole file, decompressing it when needed. At most limit
// bytes of decompressed content are accepted (limit <= 0 disables the check).
func ReadAll(path string, limit int64) ([]byte, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var src io.Reader = r
	if limit > 0 {
		src = io.LimitReader(r, limit+1)
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, fmt.Errorf("%s exceeds %d bytes", path, limit)
	}
	return data, nil
}
