// Package bufpool provides sync.Pool-backed buffers for reading response
// bodies, the one allocation made on every probe.
package bufpool

import (
	"bytes"
	"sync"
)

// maxBufferSize is the largest buffer kept in the pool. Bodies bigger
// than this are rare and their buffers are left to the GC.
const maxBufferSize = 256 * 1024 // 256KB

var bufferPool = sync.Pool{
	New: func() any {
		return new(bytes.Buffer)
	},
}

// Get returns an empty buffer. Return it with Put.
func Get() *bytes.Buffer {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

// Put returns buf to the pool. Nil and oversized buffers are dropped.
func Put(buf *bytes.Buffer) {
	if buf == nil || buf.Cap() > maxBufferSize {
		return
	}
	buf.Reset()
	bufferPool.Put(buf)
}
