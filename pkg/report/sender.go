package report

import (
	"sync"
)

// Sender is one reference to a reporting channel. Clone hands out another
// reference; Close releases this one. The channel itself is closed when
// the last reference is released, which lets the consumer finish.
//
// A Sender is safe for concurrent use. Close waits for in-flight Sends on
// the same handle, so a Send never races the channel close.
type Sender struct {
	mu       sync.RWMutex
	released bool
	shared   *channel
}

type channel struct {
	mu   sync.Mutex
	refs int
	ch   chan Result // nil for a discarding channel
}

// NewChannel creates a reporting channel with the given buffer size and
// returns its first Sender together with the receive side.
func NewChannel(buffer int) (*Sender, <-chan Result) {
	ch := make(chan Result, buffer)
	return &Sender{shared: &channel{refs: 1, ch: ch}}, ch
}

// Discard returns a Sender that accepts and drops every message. It
// follows the same Clone/Close rules as a real Sender.
func Discard() *Sender {
	return &Sender{shared: &channel{refs: 1}}
}

// Send delivers r, blocking while the channel buffer is full.
// It returns ErrClosed if this handle was already closed.
func (s *Sender) Send(r Result) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.released {
		return ErrClosed
	}
	if s.shared.ch != nil {
		s.shared.ch <- r
	}
	return nil
}

// Clone returns a new handle on the same channel. Cloning a closed handle
// returns a closed handle.
func (s *Sender) Clone() *Sender {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.released {
		return &Sender{released: true, shared: s.shared}
	}

	s.shared.mu.Lock()
	s.shared.refs++
	s.shared.mu.Unlock()
	return &Sender{shared: s.shared}
}

// Close releases this handle. Closing the last open handle closes the
// channel. Calling Close again is a no-op.
func (s *Sender) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return
	}
	s.released = true

	s.shared.mu.Lock()
	defer s.shared.mu.Unlock()
	s.shared.refs--
	if s.shared.refs == 0 && s.shared.ch != nil {
		close(s.shared.ch)
	}
}

// Closed reports whether this handle was closed.
func (s *Sender) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.released
}

// IsDiscard reports whether messages sent through s are dropped.
func (s *Sender) IsDiscard() bool {
	return s.shared.ch == nil
}
