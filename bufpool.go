package xdr

import (
	"bytes"
	"sync"
)

// bytesBufPool reuses buffers for Marshal, which encodes fully before
// returning so that a failed encode never leaks partial output.
var bytesBufPool = sync.Pool{
	New: func() any {
		// A 4KB default is chosen to avoid re-allocations for common message sizes.
		return bytes.NewBuffer(make([]byte, 0, 4096))
	},
}

// CHUNK_SIZE bounds a single allocation while reading a payload whose
// declared length cannot be checked against the remaining input.
const CHUNK_SIZE = 32 * 1024

func getBuffer() *bytes.Buffer {
	buf := bytesBufPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

func putBuffer(buf *bytes.Buffer) {
	// Oversized buffers are dropped instead of pinning memory in the pool.
	if buf.Cap() > 1<<20 {
		return
	}
	bytesBufPool.Put(buf)
}
