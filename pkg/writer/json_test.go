package writer

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testData struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

func TestJSONWriter_Write(t *testing.T) {
	data := testData{Name: "test", Value: 42}

	t.Run("compact output", func(t *testing.T) {
		w := NewJSONWriter[testData]()
		var buf bytes.Buffer
		require.NoError(t, w.Write(data, &buf))
		assert.Equal(t, `{"name":"test","value":42}`+"\n", buf.String())
	})

	t.Run("pretty output", func(t *testing.T) {
		w := NewPrettyJSONWriter[testData]()
		var buf bytes.Buffer
		require.NoError(t, w.Write(data, &buf))
		assert.Contains(t, buf.String(), "\n  \"name\": \"test\"")
	})
}

func TestJSONWriter_WriteToFile(t *testing.T) {
	data := testData{Name: "test", Value: 42}
	dir := t.TempDir()

	t.Run("plain file", func(t *testing.T) {
		path := filepath.Join(dir, "out.json")
		require.NoError(t, NewJSONWriter[testData]().WriteToFile(data, path))

		raw, err := os.ReadFile(path)
		require.NoError(t, err)

		var got testData
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.Equal(t, data, got)
	})

	t.Run("gz suffix compresses", func(t *testing.T) {
		path := filepath.Join(dir, "out.json.gz")
		require.NoError(t, NewJSONWriter[testData]().WriteToFile(data, path))

		f, err := os.Open(path)
		require.NoError(t, err)
		defer f.Close()

		gz, err := gzip.NewReader(f)
		require.NoError(t, err)
		raw, err := io.ReadAll(gz)
		require.NoError(t, err)

		var got testData
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.Equal(t, data, got)
	})
}

func TestGzipWriter_Write(t *testing.T) {
	data := testData{Name: "zipped", Value: 7}
	var buf bytes.Buffer
	require.NoError(t, NewGzipWriter[testData]().Write(data, &buf))

	gz, err := gzip.NewReader(&buf)
	require.NoError(t, err)
	raw, err := io.ReadAll(gz)
	require.NoError(t, err)

	var got testData
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, data, got)
}
