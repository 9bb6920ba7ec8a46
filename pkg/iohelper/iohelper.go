// Package iohelper reads HTTP response bodies with a size cap and returns
// connections to the pool.
package iohelper

import (
	"bytes"
	"io"
)

const (
	// MaxBodySize caps how much of a probe response is read (1MB).
	MaxBodySize int64 = 1024 * 1024

	// drainLimit caps how much is discarded before closing (64KB).
	drainLimit int64 = 64 * 1024
)

// ReadBody appends at most maxSize bytes from r to dst and returns the
// number of bytes read. A nil reader reads nothing.
func ReadBody(dst *bytes.Buffer, r io.Reader, maxSize int64) (int64, error) {
	if r == nil {
		return 0, nil
	}
	return dst.ReadFrom(io.LimitReader(r, maxSize))
}

// DrainAndClose discards what is left of r, up to a limit, and closes it
// if it is an io.ReadCloser so the keep-alive connection can be reused.
// It always returns nil so it can be deferred.
func DrainAndClose(r io.Reader) error {
	if r == nil {
		return nil
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(r, drainLimit))
	if rc, ok := r.(io.ReadCloser); ok {
		_ = rc.Close()
	}
	return nil
}
