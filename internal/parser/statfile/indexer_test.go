package statfile

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vstats-analysis/internal/parser"
	"github.com/vstats-analysis/pkg/model"
)

// lineOffset returns the byte offset of the first occurrence of line.
func lineOffset(t *testing.T, content, line string) int64 {
	t.Helper()
	idx := strings.Index(content, line)
	require.GreaterOrEqual(t, idx, 0, "line %q not in content", line)
	return int64(idx)
}

func buildIndex(t *testing.T, content string, opts IndexerOptions) (*model.PositionIndex, *IndexResult, error) {
	t.Helper()
	idx := model.NewPositionIndex()
	res, err := BuildIndex(context.Background(), strings.NewReader(content), int64(len(content)), idx, opts)
	return idx, res, err
}

func TestBuildIndex_SequentialLayout(t *testing.T) {
	content := strings.Join([]string{
		"%;type;9;MVDL0;vector",
		"0;0;0;16;16;9;1;1",
		"0;16;0;16;16;9;2;2",
		"1;0;0;16;16;9;1;1",
		"0;0;0;16;16;10;5",
		"0;16;0;16;16;10;6",
		"1;0;0;16;16;10;7",
	}, "\n") + "\n"

	idx, res, err := buildIndex(t, content, IndexerOptions{})
	require.NoError(t, err)

	assert.Equal(t, model.LayoutSequential, res.Layout)
	assert.Equal(t, 1, res.MaxPOC)
	assert.False(t, res.Canceled)
	assert.Equal(t, int64(len(content)), res.BytesRead)
	assert.Equal(t, 4, idx.Len())

	// Only the first line of each (POC, type) pair is recorded.
	off, ok := idx.Offset(0, 9)
	require.True(t, ok)
	assert.Equal(t, lineOffset(t, content, "0;0;0;16;16;9;1;1"), off)

	off, ok = idx.Offset(0, 10)
	require.True(t, ok)
	assert.Equal(t, lineOffset(t, content, "0;0;0;16;16;10;5"), off)

	off, ok = idx.Offset(1, 10)
	require.True(t, ok)
	assert.Equal(t, lineOffset(t, content, "1;0;0;16;16;10;7"), off)
}

func TestBuildIndex_InterleavedLayout(t *testing.T) {
	content := strings.Join([]string{
		"0;0;0;16;16;9;1;1",
		"0;0;0;16;16;10;5",
		"0;16;0;16;16;9;2;2",
		"1;0;0;16;16;9;1;1",
		"1;0;0;16;16;10;7",
	}, "\n") + "\n"

	idx, res, err := buildIndex(t, content, IndexerOptions{})
	require.NoError(t, err)

	assert.Equal(t, model.LayoutInterleaved, res.Layout)
	assert.Equal(t, 1, res.MaxPOC)

	// MinOffset points at the start of the POC block.
	min, ok := idx.MinOffset(0)
	require.True(t, ok)
	assert.Equal(t, int64(0), min)

	min, ok = idx.MinOffset(1)
	require.True(t, ok)
	assert.Equal(t, lineOffset(t, content, "1;0;0;16;16;9;1;1"), min)
}

func TestBuildIndex_LayoutDecisionIsFinal(t *testing.T) {
	// The POC change on line 2 fixes the layout as sequential; the later
	// type alternation within POC 1 must not flip it to interleaved.
	content := strings.Join([]string{
		"0;0;0;16;16;9;1;1",
		"1;0;0;16;16;9;1;1",
		"1;0;0;16;16;10;5",
		"2;0;0;16;16;10;6",
	}, "\n") + "\n"

	_, res, err := buildIndex(t, content, IndexerOptions{})
	require.NoError(t, err)
	assert.Equal(t, model.LayoutSequential, res.Layout)
}

func TestBuildIndex_SequentialContinuityViolation(t *testing.T) {
	content := strings.Join([]string{
		"0;0;0;16;16;9;1;1",
		"1;0;0;16;16;9;1;1",
		"0;16;0;16;16;9;2;2",
	}, "\n") + "\n"

	idx, _, err := buildIndex(t, content, IndexerOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, parser.ErrSequentialContinuity)

	// Entries recorded before the violation survive.
	assert.True(t, idx.Contains(0, 9))
	assert.True(t, idx.Contains(1, 9))
}

func TestBuildIndex_InterleavedContinuityViolation(t *testing.T) {
	content := strings.Join([]string{
		"0;0;0;16;16;9;1;1",
		"0;0;0;16;16;10;5",
		"1;0;0;16;16;9;1;1",
		"0;16;0;16;16;10;6",
	}, "\n") + "\n"

	_, _, err := buildIndex(t, content, IndexerOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, parser.ErrInterleavedContinuity)
}

func TestBuildIndex_MalformedRecord(t *testing.T) {
	content := "0;0;0;16;16;9;1;1\n0;1;2\n"

	_, _, err := buildIndex(t, content, IndexerOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, parser.ErrMalformedRecord)
}

func TestBuildIndex_TinyChunksKeepOffsetsExact(t *testing.T) {
	content := strings.Join([]string{
		"%;type;9;MVDL0;vector",
		"0;0;0;16;16;9;1;1",
		"1;0;0;16;16;9;2;2",
		"2;0;0;16;16;9;3;3",
	}, "\n") + "\n"

	// A chunk smaller than any line forces every record across a chunk
	// boundary.
	idx, res, err := buildIndex(t, content, IndexerOptions{ChunkSize: 5})
	require.NoError(t, err)
	assert.Equal(t, 2, res.MaxPOC)

	for poc, line := range map[int]string{
		0: "0;0;0;16;16;9;1;1",
		1: "1;0;0;16;16;9;2;2",
		2: "2;0;0;16;16;9;3;3",
	} {
		off, ok := idx.Offset(poc, 9)
		require.True(t, ok, "poc %d", poc)
		assert.Equal(t, lineOffset(t, content, line), off, "poc %d", poc)
	}
}

func TestBuildIndex_NoFinalNewline(t *testing.T) {
	content := "0;0;0;16;16;9;1;1\n1;0;0;16;16;9;2;2"

	idx, res, err := buildIndex(t, content, IndexerOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.MaxPOC)
	assert.True(t, idx.Contains(1, 9))
}

func TestBuildIndex_POCGaps(t *testing.T) {
	content := "0;0;0;16;16;9;1;1\n4;0;0;16;16;9;2;2\n9;0;0;16;16;9;3;3\n"

	idx, res, err := buildIndex(t, content, IndexerOptions{})
	require.NoError(t, err)
	assert.Equal(t, 9, res.MaxPOC)
	assert.Equal(t, []int{0, 4, 9}, idx.POCs())
	assert.False(t, idx.ContainsPOC(1))
}

func TestBuildIndex_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	content := "0;0;0;16;16;9;1;1\n"
	idx := model.NewPositionIndex()
	res, err := BuildIndex(ctx, strings.NewReader(content), int64(len(content)), idx, IndexerOptions{})
	require.NoError(t, err)

	// Cancellation is not an error; the result is marked partial.
	assert.True(t, res.Canceled)
	assert.Equal(t, 0, idx.Len())
}

func TestBuildIndex_Callbacks(t *testing.T) {
	content := strings.Join([]string{
		"0;0;0;16;16;9;1;1",
		"1;0;0;16;16;9;2;2",
		"2;0;0;16;16;9;3;3",
	}, "\n") + "\n"

	var entries []int
	var progress []Progress
	_, _, err := buildIndex(t, content, IndexerOptions{
		OnEntry:    func(poc int) { entries = append(entries, poc) },
		OnProgress: func(p Progress) { progress = append(progress, p) },
	})
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 2}, entries)
	require.NotEmpty(t, progress)
	final := progress[len(progress)-1]
	assert.Equal(t, float64(100), final.Percent)
	assert.Equal(t, int64(len(content)), final.BytesRead)
}
