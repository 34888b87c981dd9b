package compression

import (
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func zstdBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := zstd.NewWriter(&buf)
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestDetectType(t *testing.T) {
	plain := []byte("0;0;0;16;16;9;3\n")
	assert.Equal(t, TypeNone, DetectType(plain))
	assert.Equal(t, TypeGzip, DetectType(gzipBytes(t, plain)))
	assert.Equal(t, TypeZstd, DetectType(zstdBytes(t, plain)))
	assert.Equal(t, TypeNone, DetectType(nil))
	assert.Equal(t, TypeNone, DetectType([]byte{0x1f}))
}

func TestDetectTypeFromPath(t *testing.T) {
	assert.Equal(t, TypeGzip, DetectTypeFromPath("stats.csv.gz"))
	assert.Equal(t, TypeZstd, DetectTypeFromPath("stats.csv.zst"))
	assert.Equal(t, TypeNone, DetectTypeFromPath("stats.csv"))
	assert.True(t, IsCompressedPath("a.GZ"))
	assert.False(t, IsCompressedPath("a.txt"))
}

func TestDetectFileType(t *testing.T) {
	dir := t.TempDir()

	plain := filepath.Join(dir, "plain.csv")
	require.NoError(t, os.WriteFile(plain, []byte("0;0;0;16;16;9;3\n"), 0644))
	ct, err := DetectFileType(plain)
	require.NoError(t, err)
	assert.Equal(t, TypeNone, ct)

	gz := filepath.Join(dir, "stats.gz")
	require.NoError(t, os.WriteFile(gz, gzipBytes(t, []byte("payload")), 0644))
	ct, err = DetectFileType(gz)
	require.NoError(t, err)
	assert.Equal(t, TypeGzip, ct)

	_, err = DetectFileType(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestNewReader_RoundTrip(t *testing.T) {
	payload := []byte(strings.Repeat("0;0;0;16;16;9;3;4\n", 100))

	tests := []struct {
		name string
		t    Type
		data []byte
	}{
		{name: "none", t: TypeNone, data: payload},
		{name: "gzip", t: TypeGzip, data: gzipBytes(t, payload)},
		{name: "zstd", t: TypeZstd, data: zstdBytes(t, payload)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewReader(bytes.NewReader(tt.data), tt.t)
			require.NoError(t, err)
			defer r.Close()

			got, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, payload, got)
		})
	}
}

func TestStageToTemp(t *testing.T) {
	payload := []byte("%;type;9;MVDL0;vector\n0;0;0;16;16;9;3;4\n")

	dir := t.TempDir()
	src := filepath.Join(dir, "stats.csv.zst")
	require.NoError(t, os.WriteFile(src, zstdBytes(t, payload), 0644))

	staged, err := StageToTemp(src, TypeZstd)
	require.NoError(t, err)
	defer os.Remove(staged)

	got, err := os.ReadFile(staged)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestStageToTemp_CorruptInput(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "broken.gz")
	require.NoError(t, os.WriteFile(src, []byte("not gzip at all"), 0644))

	_, err := StageToTemp(src, TypeGzip)
	assert.Error(t, err)
}

func TestTypeName(t *testing.T) {
	assert.Equal(t, "none", TypeNone.Name())
	assert.Equal(t, "gzip", TypeGzip.Name())
	assert.Equal(t, "zstd", TypeZstd.Name())
}
