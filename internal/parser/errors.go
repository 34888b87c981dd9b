// Package parser holds the error values shared by the statistics file
// scanners.
package parser

import "errors"

var (
	// ErrMalformedHeader is returned when a known header directive misses
	// required fields.
	ErrMalformedHeader = errors.New("malformed header record")

	// ErrMalformedRecord is returned when a body record misses required
	// fields or carries an unsupported value field count.
	ErrMalformedRecord = errors.New("malformed data record")

	// ErrInterleavedContinuity is returned when an already indexed POC
	// re-appears in a file fixed as interleaved.
	ErrInterleavedContinuity = errors.New("data for each POC must be continuous in an interleaved statistics file")

	// ErrSequentialContinuity is returned when an already indexed
	// (POC, type) pair re-appears in a file fixed as sequential.
	ErrSequentialContinuity = errors.New("data for each type must be continuous in a non-interleaved statistics file")
)
