package interactive

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"runtime"
	"time"

	"golang.org/x/term"
)

// KeySource delivers raw input bytes from the controlling terminal.
type KeySource interface {
	// Next waits at most timeout for the next byte. ok is false when the
	// timeout elapsed with nothing to read.
	Next(timeout time.Duration) (key byte, ok bool)

	// Close releases the underlying device.
	Close() error
}

// readerKeySource turns a blocking reader into a pollable source. A
// background goroutine performs the reads; once the reader hits EOF or an
// error, every poll times out.
type readerKeySource struct {
	keys   chan byte
	closer io.Closer
}

// NewReaderKeySource starts reading r in the background. closer, if not
// nil, is closed by Close.
func NewReaderKeySource(r io.Reader, closer io.Closer) KeySource {
	s := &readerKeySource{
		keys:   make(chan byte, 64),
		closer: closer,
	}
	go s.read(r)
	return s
}

func (s *readerKeySource) read(r io.Reader) {
	defer close(s.keys)
	buf := make([]byte, 64)
	for {
		n, err := r.Read(buf)
		for _, b := range buf[:n] {
			s.keys <- b
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, os.ErrClosed) {
				slog.Debug("key source read failed", slog.String("error", err.Error()))
			}
			return
		}
	}
}

func (s *readerKeySource) Next(timeout time.Duration) (byte, bool) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case b, ok := <-s.keys:
		if ok {
			return b, true
		}
		// Reader is gone: behave like an idle terminal.
		<-timer.C
		return 0, false
	case <-timer.C:
		return 0, false
	}
}

func (s *readerKeySource) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// idleKeySource never produces a key.
type idleKeySource struct{}

func (idleKeySource) Next(timeout time.Duration) (byte, bool) {
	time.Sleep(timeout)
	return 0, false
}

func (idleKeySource) Close() error { return nil }

// OpenTerminal returns a KeySource for the user's terminal. When stdin is
// a terminal and does not carry targets it is used directly; otherwise
// the controlling terminal device is opened. Without any terminal the
// returned source only ever times out.
func OpenTerminal(stdinCarriesTargets bool) KeySource {
	if !stdinCarriesTargets && term.IsTerminal(int(os.Stdin.Fd())) {
		return NewReaderKeySource(os.Stdin, nil)
	}

	tty, err := os.Open(ttyDevice())
	if err != nil {
		slog.Debug("no controlling terminal, pause disabled", slog.String("error", err.Error()))
		return idleKeySource{}
	}
	if !term.IsTerminal(int(tty.Fd())) {
		tty.Close()
		return idleKeySource{}
	}
	return NewReaderKeySource(tty, tty)
}

func ttyDevice() string {
	if runtime.GOOS == "windows" {
		return "CONIN$"
	}
	return "/dev/tty"
}
