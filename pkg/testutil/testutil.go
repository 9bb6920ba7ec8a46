// Package testutil provides shared test helpers for dirhunter: fault
// injecting writers, goroutine leak detection and deadlock guards.
package testutil

import (
	"errors"
	"runtime"
	"sync"
	"testing"
	"time"
)

// ErrFault is the sentinel error returned by fault injection helpers.
var ErrFault = errors.New("injected fault")

// FailingWriter is an io.Writer that fails once Limit bytes have been
// written. A zero Limit fails every write.
type FailingWriter struct {
	mu      sync.Mutex
	written int
	Limit   int
}

func (w *FailingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.written+len(p) > w.Limit {
		remaining := w.Limit - w.written
		if remaining > 0 {
			w.written += remaining
			return remaining, ErrFault
		}
		return 0, ErrFault
	}
	w.written += len(p)
	return len(p), nil
}

// FailingCloser is an io.Closer whose Close always fails. It simulates a
// disk that fills up while the last buffered write is flushed.
type FailingCloser struct {
	closed bool
}

func (c *FailingCloser) Close() error {
	c.closed = true
	return ErrFault
}

// Closed reports whether Close was called.
func (c *FailingCloser) Closed() bool { return c.closed }

// GoroutineTracker captures the goroutine count before and after a test.
type GoroutineTracker struct {
	before int
}

// TrackGoroutines snapshots the current goroutine count. Call CheckLeaks after.
func TrackGoroutines() *GoroutineTracker {
	runtime.Gosched()
	return &GoroutineTracker{before: runtime.NumGoroutine()}
}

// CheckLeaks waits briefly for goroutines to drain, then fails the test if
// more than tolerance extra goroutines are still running.
func (g *GoroutineTracker) CheckLeaks(t *testing.T, tolerance int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		runtime.Gosched()
		if runtime.NumGoroutine() <= g.before+tolerance {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	if after := runtime.NumGoroutine(); after > g.before+tolerance {
		t.Errorf("goroutine leak: before=%d after=%d tolerance=%d", g.before, after, tolerance)
	}
}

// AssertTimeout runs fn and fails if it does not complete within d.
func AssertTimeout(t *testing.T, name string, d time.Duration, fn func()) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	select {
	case <-done:
	case <-time.After(d):
		t.Fatalf("%s: timed out after %v (possible deadlock)", name, d)
	}
}

// RunConcurrently starts count goroutines at once and waits for all of them.
func RunConcurrently(count int, fn func(i int)) {
	var wg sync.WaitGroup
	start := make(chan struct{})
	wg.Add(count)
	for i := 0; i < count; i++ {
		go func(idx int) {
			defer wg.Done()
			<-start
			fn(idx)
		}(i)
	}
	close(start)
	wg.Wait()
}
