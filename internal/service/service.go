// Package service ties the header reader, position indexer and on-demand
// loader together into the statistics file session used by the CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/vstats-analysis/internal/parser"
	"github.com/vstats-analysis/internal/parser/statfile"
	"github.com/vstats-analysis/pkg/compression"
	apperrors "github.com/vstats-analysis/pkg/errors"
	"github.com/vstats-analysis/pkg/model"
	"github.com/vstats-analysis/pkg/telemetry"
	"github.com/vstats-analysis/pkg/utils"
)

// Options configures a statistics file session.
type Options struct {
	// Logger receives structured log output; nil means a default logger.
	Logger utils.Logger

	// Clock drives notification throttling; nil means the real clock.
	Clock utils.Clock

	// Sink receives background indexing events; nil means no notifications.
	Sink NotificationSink

	// ChunkSize is the read size of the index pass, in bytes.
	ChunkSize int

	// Delimiter is the record field separator.
	Delimiter byte

	// ProgressInterval throttles IndexUpdated and Progress notifications.
	// Zero disables throttling, every event is delivered.
	ProgressInterval time.Duration
}

// DefaultOptions returns the built-in session defaults.
func DefaultOptions() *Options {
	return &Options{
		ChunkSize:        statfile.DefaultChunkSize,
		Delimiter:        statfile.DefaultDelimiter,
		ProgressInterval: time.Second,
	}
}

// StatisticsFile is one open statistics file: its type registry, the
// position index being built in the background, and the per-frame caches
// filled on demand.
//
// A single mutex guards the index, the layout decision and both caches. It
// is never held across file reads; the loader snapshots the offsets it
// needs, scans without the lock, and re-locks to publish the result.
type StatisticsFile struct {
	logger utils.Logger
	clock  utils.Clock
	sink   NotificationSink

	chunkSize        int
	delim            byte
	progressInterval time.Duration

	path        string
	dataPath    string
	staged      bool
	compression compression.Type

	file *os.File
	size int64

	registry   *model.TypeRegistry
	bodyOffset int64

	mu               sync.Mutex
	index            *model.PositionIndex
	layout           model.LayoutMode
	maxPOC           int
	renderCache      *model.FrameTypeCache
	chartCache       *model.FrameTypeCache
	currentFrame     int
	outsideFrameSeen bool
	outsideFrame     int
	lastProgress     statfile.Progress
	indexDone        bool
	indexErr         error
	fingerprint      uint64

	cancel context.CancelFunc
	done   chan struct{}
	closed bool
}

// lockedIndex adapts model.PositionIndex to statfile.IndexSink under the
// session mutex, serializing indexer writes against loader reads.
type lockedIndex struct {
	mu  *sync.Mutex
	idx *model.PositionIndex
}

func (l *lockedIndex) Record(poc, typeID int, offset int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.idx.Record(poc, typeID, offset)
}

func (l *lockedIndex) Contains(poc, typeID int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.idx.Contains(poc, typeID)
}

func (l *lockedIndex) ContainsPOC(poc int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.idx.ContainsPOC(poc)
}

// Open opens the statistics file at path, reads its header and starts the
// background index pass. Compressed files (gzip, zstd) are transparently
// staged to a temporary plain file first. ctx bounds the lifetime of the
// background pass; canceling it stops indexing but keeps the session usable
// for whatever was indexed so far.
func Open(ctx context.Context, path string, opts *Options) (*StatisticsFile, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	s := &StatisticsFile{
		logger:           opts.Logger,
		clock:            opts.Clock,
		sink:             opts.Sink,
		chunkSize:        opts.ChunkSize,
		delim:            opts.Delimiter,
		progressInterval: opts.ProgressInterval,
		path:             path,
		index:            model.NewPositionIndex(),
		renderCache:      model.NewFrameTypeCache(),
		chartCache:       model.NewFrameTypeCache(),
		currentFrame:     -1,
		outsideFrame:     -1,
	}
	if s.logger == nil {
		s.logger = utils.NewDefaultLogger(utils.LevelInfo, nil)
	}
	if s.clock == nil {
		s.clock = utils.NewRealClock()
	}
	if s.sink == nil {
		s.sink = NullSink{}
	}
	if s.chunkSize <= 0 {
		s.chunkSize = statfile.DefaultChunkSize
	}
	if s.delim == 0 {
		s.delim = statfile.DefaultDelimiter
	}

	if err := s.openData(); err != nil {
		return nil, err
	}
	if err := s.readHeader(); err != nil {
		s.releaseData()
		return nil, err
	}

	s.logger.Info("Opened %s: %d types, %d bytes, compression %s",
		path, s.registry.Len(), s.size, s.compression.Name())

	s.startIndexing(ctx)
	return s, nil
}

// openData resolves compression, stages if needed, and opens the plain data
// file for random access.
func (s *StatisticsFile) openData() error {
	ct, err := compression.DetectFileType(s.path)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeIOError, "cannot probe statistics file", err)
	}
	s.compression = ct

	dataPath := s.path
	if ct != compression.TypeNone {
		s.logger.Info("Staging %s-compressed file to temporary storage", ct.Name())
		staged, err := compression.StageToTemp(s.path, ct)
		if err != nil {
			return apperrors.Wrap(apperrors.CodeIOError, "cannot stage compressed file", err)
		}
		dataPath = staged
		s.staged = true
	}
	s.dataPath = dataPath

	f, err := os.Open(dataPath)
	if err != nil {
		s.removeStaged()
		return apperrors.Wrap(apperrors.CodeIOError, "cannot open statistics file", err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		s.removeStaged()
		return apperrors.Wrap(apperrors.CodeIOError, "cannot stat statistics file", err)
	}
	s.file = f
	s.size = st.Size()
	s.fingerprint = fingerprintFile(s.path)
	return nil
}

// readHeader parses the leading header block into the type registry.
func (s *StatisticsFile) readHeader() error {
	hdr, err := statfile.ReadHeader(io.NewSectionReader(s.file, 0, s.size), s.delim)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeFormatError, "malformed header", err)
	}
	s.registry = hdr.Registry
	s.bodyOffset = hdr.BodyOffset
	return nil
}

// releaseData closes the data file and removes the staged copy, if any.
func (s *StatisticsFile) releaseData() {
	if s.file != nil {
		s.file.Close()
		s.file = nil
	}
	s.removeStaged()
}

func (s *StatisticsFile) removeStaged() {
	if s.staged && s.dataPath != "" {
		os.Remove(s.dataPath)
		s.staged = false
	}
}

// startIndexing launches the background position index pass. The pass owns
// a section reader over the shared file handle; ReadAt keeps it independent
// of any concurrent loader reads.
func (s *StatisticsFile) startIndexing(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	sink := &lockedIndex{mu: &s.mu, idx: s.index}
	body := io.NewSectionReader(s.file, 0, s.size)

	go s.runIndex(ctx, body, sink)
}

func (s *StatisticsFile) runIndex(ctx context.Context, r io.Reader, sink statfile.IndexSink) {
	defer close(s.done)

	tracer := otel.Tracer(telemetry.TracerName)
	ctx, span := tracer.Start(ctx, "statfile.BuildIndex")
	defer span.End()
	span.SetAttributes(
		attribute.String("stats.file", s.path),
		attribute.Int64("stats.size_bytes", s.size),
	)

	var lastNotify time.Time
	throttled := func(notify func()) {
		now := s.clock.Now()
		if s.progressInterval > 0 && now.Sub(lastNotify) < s.progressInterval {
			return
		}
		lastNotify = now
		notify()
	}

	opts := statfile.IndexerOptions{
		ChunkSize: s.chunkSize,
		Delimiter: s.delim,
		OnEntry: func(poc int) {
			s.mu.Lock()
			if poc > s.maxPOC {
				s.maxPOC = poc
			}
			max := s.maxPOC
			s.mu.Unlock()
			throttled(func() { s.sink.IndexUpdated(max) })
		},
		OnProgress: func(p statfile.Progress) {
			s.mu.Lock()
			s.lastProgress = p
			s.mu.Unlock()
			throttled(func() { s.sink.Progress(p) })
		},
	}

	res, err := statfile.BuildIndex(ctx, r, s.size, sink, opts)
	if err != nil {
		err = classifyIndexError(err)
		span.RecordError(err)
	}

	s.mu.Lock()
	s.layout = res.Layout
	if res.MaxPOC > s.maxPOC {
		s.maxPOC = res.MaxPOC
	}
	max := s.maxPOC
	s.indexErr = err
	s.indexDone = err == nil && !res.Canceled
	s.mu.Unlock()

	span.SetAttributes(
		attribute.String("stats.layout", res.Layout.String()),
		attribute.Int("stats.max_poc", max),
		attribute.Bool("stats.canceled", res.Canceled),
	)

	switch {
	case err != nil:
		s.logger.Error("Index pass aborted: %v", err)
		s.sink.IndexError(err)
	case res.Canceled:
		s.logger.Debug("Index pass canceled after %d bytes", res.BytesRead)
	default:
		s.logger.Info("Index pass finished: layout %s, max POC %d", res.Layout, max)
		s.sink.IndexUpdated(max)
		s.sink.IndexDone(res.Layout, max)
	}
}

// classifyIndexError maps parser sentinels onto the error taxonomy.
func classifyIndexError(err error) error {
	switch {
	case errors.Is(err, parser.ErrInterleavedContinuity), errors.Is(err, parser.ErrSequentialContinuity):
		return apperrors.Wrap(apperrors.CodeLayoutViolation, "layout continuity violation", err)
	case errors.Is(err, parser.ErrMalformedRecord), errors.Is(err, parser.ErrMalformedHeader):
		return apperrors.Wrap(apperrors.CodeFormatError, "malformed statistics record", err)
	default:
		return apperrors.Wrap(apperrors.CodeIOError, "index pass failed", err)
	}
}

// LoadFrameType returns the decoded records of one (frame, type) pair,
// loading them from the file on a cache miss. The same result is published
// to the render cache and the chart cache through a single write path. A
// non-nil empty result means the pair was checked and holds no data.
func (s *StatisticsFile) LoadFrameType(ctx context.Context, frame, typeID int) (*model.FrameTypeData, error) {
	if s.registry.GetType(typeID) == nil {
		return nil, apperrors.Wrap(apperrors.CodeNotFound,
			fmt.Sprintf("statistics type %d is not declared", typeID), nil)
	}

	s.mu.Lock()
	if data, ok := s.renderCache.Get(frame, typeID); ok {
		s.mu.Unlock()
		return data, nil
	}
	indexDone := s.indexDone
	layout := s.layout
	start, found := s.index.Offset(frame, typeID)
	if found && layout == model.LayoutInterleaved {
		// The pair's own offset may lie past earlier records of the POC
		// block; an interleaved load starts at the block's first line.
		start, _ = s.index.MinOffset(frame)
	}
	if !found {
		empty := &model.FrameTypeData{}
		if indexDone {
			// Definitive: the file holds no data for this pair.
			s.renderCache.Put(frame, typeID, empty)
			s.chartCache.Put(frame, typeID, empty)
		}
		s.mu.Unlock()
		return empty, nil
	}
	s.mu.Unlock()

	tracer := otel.Tracer(telemetry.TracerName)
	_, span := tracer.Start(ctx, "statfile.LoadFrameType")
	span.SetAttributes(
		attribute.Int("stats.frame", frame),
		attribute.Int("stats.type_id", typeID),
		attribute.String("stats.layout", layout.String()),
	)
	defer span.End()

	section := io.NewSectionReader(s.file, start, s.size-start)
	res, err := statfile.LoadFrameType(section, frame, typeID, layout, s.registry, s.delim)
	if err != nil {
		if errors.Is(err, parser.ErrMalformedRecord) {
			err = apperrors.Wrap(apperrors.CodeFormatError, "malformed statistics record", err)
		} else {
			err = apperrors.Wrap(apperrors.CodeIOError, "cannot load statistics data", err)
		}
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("stats.records", res.Data.Len()))

	s.mu.Lock()
	if res.OutsideFrame && !s.outsideFrameSeen {
		s.outsideFrameSeen = true
		s.outsideFrame = frame
		s.logger.Warn("Block outside of declared frame size in %s; sequence resolution may be wrong", s.path)
	}
	s.renderCache.Put(frame, typeID, res.Data)
	s.chartCache.Put(frame, typeID, res.Data)
	s.mu.Unlock()

	return res.Data, nil
}

// SetCurrentFrame records the frame the caller is rendering. The caches
// themselves switch lazily on the next load.
func (s *StatisticsFile) SetCurrentFrame(frame int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentFrame = frame
}

// CurrentFrame returns the frame set by SetCurrentFrame, -1 if none.
func (s *StatisticsFile) CurrentFrame() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentFrame
}

// BlockOutsideFrame reports whether any loaded block fell outside the
// declared frame size, and the first frame it was seen in.
func (s *StatisticsFile) BlockOutsideFrame() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outsideFrame, s.outsideFrameSeen
}

// Registry returns the type registry built from the header. It is immutable
// for the lifetime of the session.
func (s *StatisticsFile) Registry() *model.TypeRegistry {
	return s.registry
}

// Layout returns the layout mode decided so far.
func (s *StatisticsFile) Layout() model.LayoutMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layout
}

// MaxPOC returns the highest POC indexed so far.
func (s *StatisticsFile) MaxPOC() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxPOC
}

// POCs returns the POCs indexed so far in ascending order.
func (s *StatisticsFile) POCs() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.POCs()
}

// TypesForFrame returns the type IDs indexed for the frame so far.
func (s *StatisticsFile) TypesForFrame(frame int) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.TypesForPOC(frame)
}

// IndexComplete reports whether the background pass finished normally.
func (s *StatisticsFile) IndexComplete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexDone
}

// Err returns the error that aborted the index pass, nil while running or
// after a clean finish. Data indexed before the error stays loadable.
func (s *StatisticsFile) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexErr
}

// WaitForIndex blocks until the background pass ends or ctx is canceled,
// then returns the pass error, if any.
func (s *StatisticsFile) WaitForIndex(ctx context.Context) error {
	select {
	case <-s.done:
		return s.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Info is a point-in-time summary of the open file.
type Info struct {
	Path         string
	SequenceName string
	LayerID      string
	FrameWidth   int
	FrameHeight  int
	FrameRate    float64
	FileSize     int64
	Compression  string
	TypeCount    int
	Layout       model.LayoutMode
	MaxPOC       int
	IndexedPairs int
	Percent      float64
	Complete     bool
	OutsideFrame bool
	IndexErr     error
}

// Info returns a snapshot of the session state.
func (s *StatisticsFile) Info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Info{
		Path:         s.path,
		SequenceName: s.registry.SequenceName,
		LayerID:      s.registry.LayerID,
		FrameWidth:   s.registry.FrameWidth,
		FrameHeight:  s.registry.FrameHeight,
		FrameRate:    s.registry.FrameRate,
		FileSize:     s.size,
		Compression:  s.compression.Name(),
		TypeCount:    s.registry.Len(),
		Layout:       s.layout,
		MaxPOC:       s.maxPOC,
		IndexedPairs: s.index.Len(),
		Percent:      s.lastProgress.Percent,
		Complete:     s.indexDone,
		OutsideFrame: s.outsideFrameSeen,
		IndexErr:     s.indexErr,
	}
}

/// Reload discards all derived state and re-reads the file from scratch: the
// running pass is canceled and joined first so no stale writes land in the
// fresh index. ctx bounds the new background pass.
func (s *StatisticsFile) Reload(ctx context.Context) error {
	s.stopIndexing()
	s.releaseData()

	s.mu.Lock()
	s.index = model.NewPositionIndex()
	s.renderCache.Clear()
	s.chartCache.Clear()
	s.layout = model.LayoutUnknown
	s.maxPOC = 0
	s.indexDone = false
	s.indexErr = nil
	s.outsideFrameSeen = false
	s.outsideFrame = -1
	s.lastProgress = statfile.Progress{}
	s.mu.Unlock()

	if err := s.openData(); err != nil {
		return err
	}
	if err := s.readHeader(); err != nil {
		s.releaseData()
		return err
	}

	s.logger.Info("Reloaded %s", s.path)
	s.startIndexing(ctx)
	return nil
}

// ReloadIfChanged reloads only when the file content fingerprint differs
// from the one taken at open time. It reports whether a reload happened.
func (s *StatisticsFile) ReloadIfChanged(ctx context.Context) (bool, error) {
	s.mu.Lock()
	old := s.fingerprint
	s.mu.Unlock()

	if fingerprintFile(s.path) == old {
		return false, nil
	}
	if err := s.Reload(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// Close cancels the background pass, waits for it to exit and releases the
// file and any staged temporary copy. Close is idempotent.
func (s *StatisticsFile) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.stopIndexing()
	s.releaseData()
	return nil
}

// stopIndexing cancels the running pass and joins it.
func (s *StatisticsFile) stopIndexing() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.done != nil {
		<-s.done
	}
}

// fingerprintFile hashes the file's size, modification time and leading
// bytes. Cheap enough for polling, strong enough to catch a rewrite.
func fingerprintFile(path string) uint64 {
	st, err := os.Stat(path)
	if err != nil {
		return 0
	}
	h := xxhash.New()
	fmt.Fprintf(h, "%d|%d|", st.Size(), st.ModTime().UnixNano())

	f, err := os.Open(path)
	if err != nil {
		return h.Sum64()
	}
	defer f.Close()
	head := make([]byte, 64*1024)
	n, _ := io.ReadFull(f, head)
	h.Write(head[:n])
	return h.Sum64()
}
