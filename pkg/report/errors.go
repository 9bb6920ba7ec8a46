package report

import "errors"

// Sentinel errors for the reporting pipeline.
var (
	// ErrClosed is returned by Send on a handle that was already closed.
	ErrClosed = errors.New("report: sender closed")

	// ErrSink wraps a failure writing one message to a sink. It is logged
	// by the consumer and never stops the pipeline.
	ErrSink = errors.New("report: sink write failed")

	// ErrOutputFile indicates the output file could not be opened.
	ErrOutputFile = errors.New("report: cannot open output file")
)
