// Package compression provides transparent decompression of statistics
// files. Compressed inputs cannot be seeked, so they are staged to a plain
// temporary file before indexing.
package compression

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Type represents the compression algorithm used.
type Type uint8

const (
	// TypeNone represents no compression
	TypeNone Type = 0
	// TypeGzip uses gzip compression
	TypeGzip Type = 1
	// TypeZstd uses zstd compression
	TypeZstd Type = 2
)

// Name returns the human-readable name of the compression type.
func (t Type) Name() string {
	switch t {
	case TypeGzip:
		return "gzip"
	case TypeZstd:
		return "zstd"
	default:
		return "none"
	}
}

// DetectType detects the compression type from magic bytes.
// Returns TypeGzip for gzip (0x1f 0x8b), TypeZstd for zstd
// (0x28 0xb5 0x2f 0xfd) and TypeNone otherwise.
func DetectType(data []byte) Type {
	if len(data) >= 4 && data[0] == 0x28 && data[1] == 0xb5 && data[2] == 0x2f && data[3] == 0xfd {
		return TypeZstd
	}
	if len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b {
		return TypeGzip
	}
	return TypeNone
}

// DetectTypeFromPath guesses the compression type from the file extension.
func DetectTypeFromPath(path string) Type {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz", ".gzip":
		return TypeGzip
	case ".zst", ".zstd":
		return TypeZstd
	default:
		return TypeNone
	}
}

// IsCompressedPath reports whether the path carries a known compressed
// file extension.
func IsCompressedPath(path string) bool {
	return DetectTypeFromPath(path) != TypeNone
}

// DetectFileType reads the first bytes of a file and detects its
// compression type from the magic bytes.
func DetectFileType(path string) (Type, error) {
	f, err := os.Open(path)
	if err != nil {
		return TypeNone, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	magic := make([]byte, 4)
	n, err := io.ReadFull(f, magic)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return TypeNone, fmt.Errorf("failed to read magic bytes: %w", err)
	}
	return DetectType(magic[:n]), nil
}

// NewReader wraps r with a decompressing reader for the given type. For
// TypeNone the reader is returned unchanged with a no-op closer.
func NewReader(r io.Reader, t Type) (io.ReadCloser, error) {
	switch t {
	case TypeGzip:
		gr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return gr, nil
	case TypeZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		return &zstdReadCloser{zr}, nil
	default:
		return io.NopCloser(r), nil
	}
}

// zstdReadCloser adapts zstd.Decoder's Close (no error) to io.ReadCloser.
type zstdReadCloser struct {
	*zstd.Decoder
}

func (z *zstdReadCloser) Close() error {
	z.Decoder.Close()
	return nil
}

// StageToTemp decompresses the file at path into a temporary file and
// returns the temporary path. The caller owns the returned file and must
// remove it when done. Indexing and on-demand loading both need random
// access, which compressed streams cannot provide.
func StageToTemp(path string, t Type) (string, error) {
	src, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open compressed file: %w", err)
	}
	defer src.Close()

	reader, err := NewReader(src, t)
	if err != nil {
		return "", err
	}
	defer reader.Close()

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	dst, err := os.CreateTemp("", base+"-*.csv")
	if err != nil {
		return "", fmt.Errorf("failed to create staging file: %w", err)
	}

	if _, err := io.Copy(dst, reader); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", fmt.Errorf("failed to decompress %s stream: %w", t.Name(), err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("failed to close staging file: %w", err)
	}
	return dst.Name(), nil
}
