package xdr

import "io"

// BytesWriter is an io.Writer that writes to a pre-allocated byte slice.
// It will not grow the slice's capacity. If a write exceeds the available space,
// it writes as much as it can and returns io.ErrShortWrite.
type BytesWriter struct {
	B []byte // destination slice
	N int    // current write position
}

// NewBytesWriter creates a new BytesWriter.
func NewBytesWriter(p []byte) *BytesWriter {
	return &BytesWriter{B: p[:cap(p)]}
}

// Write implements the io.Writer interface.
func (w *BytesWriter) Write(p []byte) (int, error) {
	if w.N >= len(w.B) && len(p) > 0 {
		return 0, io.ErrShortWrite
	}
	n := copy(w.B[w.N:], p)
	w.N += n
	if n < len(p) {
		return n, io.ErrShortWrite
	}
	return n, nil
}

// Flush do nothing
func (w *BytesWriter) Flush() error { return nil }

// Bytes returns a slice view of the written data.
func (w *BytesWriter) Bytes() []byte { return w.B[:w.N] }
