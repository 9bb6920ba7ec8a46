package runner

import "errors"

// Sentinel errors for runner failure modes.
// Callers should use errors.Is() to check for these.
var (
	// ErrTaskPanic wraps a panic recovered from a scan task. It is logged
	// and counted; it never fails the overall scan.
	ErrTaskPanic = errors.New("runner: scan task panicked")

	// ErrNoScanner indicates the orchestrator was built without a Scanner.
	ErrNoScanner = errors.New("runner: no scanner configured")
)
