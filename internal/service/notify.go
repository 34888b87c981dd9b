package service

import (
	"github.com/vstats-analysis/internal/parser/statfile"
	"github.com/vstats-analysis/pkg/model"
)

// NotificationSink receives asynchronous events from the background index
// pass. Implementations must be safe for calls from a goroutine other than
// the one that opened the file, and should return quickly; slow sinks delay
// the scan.
type NotificationSink interface {
	// IndexUpdated reports that new frames became available. maxPOC is the
	// highest POC indexed so far. Calls are throttled to the configured
	// progress interval.
	IndexUpdated(maxPOC int)

	// Progress reports how far the index pass has come through the file.
	Progress(p statfile.Progress)

	// IndexDone reports that the pass finished normally. A canceled pass
	// reports neither IndexDone nor IndexError.
	IndexDone(layout model.LayoutMode, maxPOC int)

	// IndexError reports that the pass aborted. Entries indexed before the
	// error remain loadable.
	IndexError(err error)
}

// NullSink discards all notifications.
type NullSink struct{}

// IndexUpdated does nothing.
func (NullSink) IndexUpdated(maxPOC int) {}

// Progress does nothing.
func (NullSink) Progress(p statfile.Progress) {}

// IndexDone does nothing.
func (NullSink) IndexDone(layout model.LayoutMode, maxPOC int) {}

// IndexError does nothing.
func (NullSink) IndexError(err error) {}
