package xdr

import (
	"bufio"
	"bytes"
	"io"
)

type sink interface {
	io.Writer
	Flush() error
}

// nopFlusher adapts in-memory writers that need no flushing.
type nopFlusher struct{ io.Writer }

func (nopFlusher) Flush() error { return nil }

// Writer is the XDR sink. It tracks the byte count and the first error;
// after an error every subsequent write becomes a no-op, so encoders can
// emit a whole value and check Err once at the end.
type Writer struct {
	w     sink
	count int64 // total bytes written
	err   error // first error encountered. Subsequent writes become no-ops.
	depth int
}

// NewWriterSize creates a Writer on w. Unbuffered destinations get a
// bufio.Writer of the given size; in-memory destinations are written directly.
func NewWriterSize(w io.Writer, size int) (*Writer, error) {
	if w == nil {
		return nil, ErrNilIO
	}

	switch bw := w.(type) {
	// Nested writers share the outer sink; only the outermost one flushes.
	case *Writer:
		return &Writer{w: bw.w, depth: bw.depth + 1}, nil
	case *bufio.Writer:
		return &Writer{w: bw, depth: 1}, nil
	case *BytesWriter:
		return &Writer{w: bw}, nil
	case *bytes.Buffer:
		return &Writer{w: nopFlusher{bw}}, nil
	}

	return &Writer{w: bufio.NewWriterSize(w, size)}, nil
}

// NewWriter creates a new Writer with a default buffer size.
func NewWriter(w io.Writer) (*Writer, error) {
	return NewWriterSize(w, 0)
}

// Write implements io.Writer. Raw bytes bypass XDR framing; callers are
// responsible for alignment.
func (w *Writer) Write(buf []byte) (int, error) {
	if len(buf) == 0 || w.err != nil {
		return 0, w.err
	}
	n, err := w.w.Write(buf)
	if n < 0 {
		n, err = 0, ErrInvalidWrite
	}
	w.count += int64(n)
	w.setError(err)
	return n, w.err
}

func (w *Writer) Count() int64 { return w.count }
func (w *Writer) Err() error   { return w.err }

// Fail latches err as the writer's error unless one is already recorded.
// Hand-written encoders use it to report schema violations.
func (w *Writer) Fail(err error) {
	w.setError(err)
}

// setError records the first non-nil error.
// This preserves the root cause of a failure chain instead of a later,
// less relevant error.
func (w *Writer) setError(err error) {
	if w.err == nil && err != nil {
		w.err = err
	}
}

// Result flushes the buffer and returns the final count and error state.
func (w *Writer) Result() (int64, error) {
	w.Flush()
	return w.count, w.err
}

// Flush writes any buffered data to the underlying io.Writer.
func (w *Writer) Flush() error {
	// Only the outermost writer should be responsible for the final flush.
	if w.depth > 0 || w.err != nil {
		return w.err
	}
	err := w.w.Flush()
	w.setError(err)
	return err
}

// WriteZeros writes n zero bytes.
func (w *Writer) WriteZeros(n int) {
	for n > 0 && w.err == nil {
		k := min(n, len(zeros))
		_, _ = w.Write(zeros[:k])
		n -= k
	}
}

// Align writes zero bytes until the count is a multiple of Alignment.
func (w *Writer) Align() {
	w.WriteZeros(int(padLen(w.count)))
}
