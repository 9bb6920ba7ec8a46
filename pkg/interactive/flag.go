// Package interactive implements the pause/resume control plane: an atomic
// flag shared with every scan task and a keyboard loop that toggles it.
package interactive

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/waftester/dirhunter/pkg/duration"
)

// Flag is an atomic boolean handle passed explicitly to whoever needs it.
// The zero value is unset and ready to use.
type Flag struct {
	v atomic.Bool
}

// NewFlag returns a Flag with the given initial value.
func NewFlag(initial bool) *Flag {
	f := &Flag{}
	f.v.Store(initial)
	return f
}

// IsSet reports the current value.
func (f *Flag) IsSet() bool { return f.v.Load() }

// Set stores v.
func (f *Flag) Set(v bool) { f.v.Store(v) }

// Toggle flips the value atomically and returns the new value.
func (f *Flag) Toggle() bool {
	for {
		old := f.v.Load()
		if f.v.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// Wait blocks while the flag is set, re-checking every duration.PauseCheck.
// It returns nil once the flag is clear, or ctx.Err() if ctx ends first.
// Scan tasks call it between probes.
func (f *Flag) Wait(ctx context.Context) error {
	if !f.IsSet() {
		return ctx.Err()
	}
	ticker := time.NewTicker(duration.PauseCheck)
	defer ticker.Stop()
	for f.IsSet() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}
