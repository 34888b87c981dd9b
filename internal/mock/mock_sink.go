// Package mock provides mock implementations for testing.
package mock

import (
	"sync"

	"github.com/vstats-analysis/internal/parser/statfile"
	"github.com/vstats-analysis/pkg/model"
)

// RecordingSink is a NotificationSink that records every event it receives.
// It is safe for concurrent use; the index pass notifies from its own
// goroutine.
type RecordingSink struct {
	mu sync.Mutex

	updates  []int
	progress []statfile.Progress

	doneLayout model.LayoutMode
	doneMaxPOC int
	done       bool

	err error

	// Done is closed when IndexDone or IndexError fires.
	Done chan struct{}
}

// NewRecordingSink creates an empty recording sink.
func NewRecordingSink() *RecordingSink {
	return &RecordingSink{Done: make(chan struct{})}
}

// IndexUpdated records the reported max POC.
func (s *RecordingSink) IndexUpdated(maxPOC int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, maxPOC)
}

// Progress records the progress snapshot.
func (s *RecordingSink) Progress(p statfile.Progress) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = append(s.progress, p)
}

// IndexDone records the completion event and closes Done.
func (s *RecordingSink) IndexDone(layout model.LayoutMode, maxPOC int) {
	s.mu.Lock()
	s.done = true
	s.doneLayout = layout
	s.doneMaxPOC = maxPOC
	s.mu.Unlock()
	close(s.Done)
}

// IndexError records the abort event and closes Done.
func (s *RecordingSink) IndexError(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	close(s.Done)
}

// Updates returns a copy of the recorded IndexUpdated values.
func (s *RecordingSink) Updates() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, len(s.updates))
	copy(out, s.updates)
	return out
}

// ProgressEvents returns a copy of the recorded progress snapshots.
func (s *RecordingSink) ProgressEvents() []statfile.Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]statfile.Progress, len(s.progress))
	copy(out, s.progress)
	return out
}

// Completed reports whether IndexDone fired, with the reported layout and
// max POC.
func (s *RecordingSink) Completed() (bool, model.LayoutMode, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done, s.doneLayout, s.doneMaxPOC
}

// Err returns the recorded IndexError value, nil if none fired.
func (s *RecordingSink) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
