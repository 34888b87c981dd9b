package statfile

import (
	"context"
	"fmt"
	"io"

	"github.com/vstats-analysis/internal/parser"
	"github.com/vstats-analysis/pkg/model"
)

// DefaultChunkSize bounds the memory used per read while indexing. The
// whole file is never held in memory, only one chunk plus the line that
// spans a chunk boundary.
const DefaultChunkSize = 1 << 20

// IndexSink receives the (POC, type) -> offset entries found during the
// scan. model.PositionIndex satisfies it directly; the service wraps it
// with the shared lock so the loader never races an index mutation.
type IndexSink interface {
	// Record stores the offset for the pair if absent and reports whether
	// it was stored (first-occurrence rule).
	Record(poc, typeID int, offset int64) bool
	// Contains reports whether the pair is already indexed.
	Contains(poc, typeID int) bool
	// ContainsPOC reports whether any type of the POC is already indexed.
	ContainsPOC(poc int) bool
}

// Progress is a snapshot of how far the index pass has come.
type Progress struct {
	BytesRead  int64
	TotalBytes int64
	Percent    float64
}

// IndexerOptions configures a position index pass.
type IndexerOptions struct {
	// ChunkSize is the read size per iteration; cancellation is observed
	// between chunks, so it also bounds cancel latency.
	ChunkSize int

	// Delimiter is the record field separator.
	Delimiter byte

	// OnEntry is called after a new index entry for the POC was recorded.
	OnEntry func(poc int)

	// OnProgress is called when the scan advances to a new POC and once
	// at completion.
	OnProgress func(p Progress)
}

// IndexResult is the outcome of an index pass.
type IndexResult struct {
	Layout    model.LayoutMode
	MaxPOC    int
	BytesRead int64

	// Canceled is set when the pass stopped cooperatively. The entries
	// recorded so far remain usable; cancellation is not an error.
	Canceled bool
}

// scanState carries the per-line decision state across chunk boundaries.
// It is an explicit accumulator so the step logic is testable on synthetic
// chunks without a real file.
type scanState struct {
	started  bool
	lastPOC  int
	lastType int

	layout      model.LayoutMode
	layoutFixed bool

	maxPOC int
}

// step processes one tokenized, non-header data record that starts at the
// given absolute byte offset.
func (s *scanState) step(fields []string, lineStart int64, sink IndexSink, onEntry func(poc int)) (newPOC bool, err error) {
	if len(fields) < 6 {
		return false, fmt.Errorf("offset %d: %w: need at least 6 fields, got %d",
			lineStart, parser.ErrMalformedRecord, len(fields))
	}
	poc := atoi(fields[0])
	typeID := atoi(fields[5])

	record := func() {
		if sink.Record(poc, typeID, lineStart) && onEntry != nil {
			onEntry(poc)
		}
	}

	switch {
	case !s.started:
		record()
		s.started = true
		s.lastPOC = poc
		s.lastType = typeID
		if poc > s.maxPOC {
			s.maxPOC = poc
		}

	case poc == s.lastPOC && typeID != s.lastType:
		// A new type while the POC stayed the same: the first such
		// observation fixes the layout as interleaved.
		if !s.layoutFixed {
			s.layout = model.LayoutInterleaved
			s.layoutFixed = true
		}
		s.lastType = typeID
		record()

	case poc != s.lastPOC:
		// A POC change before any type alternation fixes the layout as
		// sequential. Once fixed, the decision is never revisited.
		if !s.layoutFixed {
			s.layout = model.LayoutSequential
			s.layoutFixed = true
		}
		if s.layout == model.LayoutInterleaved {
			if sink.ContainsPOC(poc) {
				return false, fmt.Errorf("offset %d: %w", lineStart, parser.ErrInterleavedContinuity)
			}
		} else if sink.Contains(poc, typeID) {
			return false, fmt.Errorf("offset %d: %w", lineStart, parser.ErrSequentialContinuity)
		}
		record()
		s.lastPOC = poc
		s.lastType = typeID
		if poc > s.maxPOC {
			s.maxPOC = poc
		}
		return true, nil
	}

	return false, nil
}

// BuildIndex scans the body of a statistics file in fixed-size chunks and
// records the byte offset of the first line of every (POC, type) pair.
// Header records and empty lines are skipped, so the reader may start at
// offset zero.
//
// The scan stops at end of stream, on a structural error, or when ctx is
// canceled between chunks. A canceled pass returns a partial result and no
// error.
func BuildIndex(ctx context.Context, r io.Reader, totalSize int64, sink IndexSink, opts IndexerOptions) (*IndexResult, error) {
	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	delim := opts.Delimiter
	if delim == 0 {
		delim = DefaultDelimiter
	}

	var (
		state     scanState
		chunk     = make([]byte, chunkSize)
		lineBuf   []byte
		lineStart int64
		bytesRead int64
	)

	result := func(canceled bool) *IndexResult {
		return &IndexResult{
			Layout:    state.layout,
			MaxPOC:    state.maxPOC,
			BytesRead: bytesRead,
			Canceled:  canceled,
		}
	}

	processLine := func() error {
		if len(lineBuf) == 0 {
			return nil
		}
		fields := SplitRecord(string(lineBuf), delim)
		if fields[0] == "" || isHeaderRecord(fields) {
			return nil
		}
		newPOC, err := state.step(fields, lineStart, sink, opts.OnEntry)
		if err != nil {
			return err
		}
		if newPOC && opts.OnProgress != nil {
			opts.OnProgress(progressAt(lineStart, totalSize))
		}
		return nil
	}

	atEOF := false
	for !atEOF {
		// Cooperative cancellation, observed at chunk granularity.
		select {
		case <-ctx.Done():
			return result(true), nil
		default:
		}

		n, err := io.ReadFull(r, chunk)
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			atEOF = true
		} else if err != nil {
			return result(false), fmt.Errorf("read chunk: %w", err)
		}

		for i := 0; i < n; i++ {
			if chunk[i] != '\n' {
				lineBuf = append(lineBuf, chunk[i])
				continue
			}
			if err := processLine(); err != nil {
				return result(false), err
			}
			lineBuf = lineBuf[:0]
			lineStart = bytesRead + int64(i) + 1
		}
		bytesRead += int64(n)
	}

	// A final line without trailing newline still counts.
	if err := processLine(); err != nil {
		return result(false), err
	}

	if opts.OnProgress != nil {
		opts.OnProgress(Progress{BytesRead: bytesRead, TotalBytes: totalSize, Percent: 100})
	}
	return result(false), nil
}

func progressAt(pos, total int64) Progress {
	p := Progress{BytesRead: pos, TotalBytes: total}
	if total > 0 {
		p.Percent = float64(pos) * 100 / float64(total)
	}
	return p
}
