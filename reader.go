package xdr

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// Reader is the bounded XDR source. It tracks the number of bytes consumed,
// the number still available when the source size is known, and the first
// error; after an error all reads become no-ops.
type Reader struct {
	r         io.Reader
	count     int64 // total bytes read
	remaining int64 // bytes left in the source, -1 when unknown
	err       error // first error encountered.
	strictPad bool
}

// NewReader creates a Reader on r. The remaining size is known for
// in-memory sources and for limited readers; for other streams it is
// unknown unless WithLimit is given.
func NewReader(r io.Reader, opts ...Option) (*Reader, error) {
	if r == nil {
		return nil, ErrNilIO
	}
	o := newOptions(opts)

	remaining := int64(-1)
	switch src := r.(type) {
	case *BytesReader:
		remaining = int64(src.Available())
	case *bytes.Reader:
		remaining = int64(src.Len())
	case *bytes.Buffer:
		remaining = int64(src.Len())
	case *LimitedReader:
		remaining = src.N
	case *io.LimitedReader:
		remaining = src.N
	}

	if o.limit > 0 && (remaining < 0 || o.limit < remaining) {
		r = LimitReader(r, o.limit)
		remaining = o.limit
	}

	return &Reader{r: r, remaining: remaining, strictPad: !o.lenientPadding}, nil
}

func (r *Reader) Count() int64 { return r.count }
func (r *Reader) Err() error   { return r.err }

// Remaining returns the number of bytes left in the source, or -1 when the
// source size is unknown.
func (r *Reader) Remaining() int64 { return r.remaining }

// Fail latches err as the reader's error unless one is already recorded.
// Hand-written decoders use it to report schema violations.
func (r *Reader) Fail(err error) {
	r.setError(err)
}

// setError records the first non-nil error.
func (r *Reader) setError(err error) {
	if r.err == nil && err != nil {
		r.err = err
	}
}

// Result returns the total bytes read and the final error state.
func (r *Reader) Result() (int64, error) {
	return r.count, r.err
}

// ensure fails with kind when fewer than n bytes are known to remain.
// It is the single bounds check in front of every read and allocation.
func (r *Reader) ensure(n int, kind Kind) bool {
	if r.err != nil {
		return false
	}
	if r.remaining >= 0 && int64(n) > r.remaining {
		r.err = shortRead(kind, n, r.remaining)
		return false
	}
	return true
}

func (r *Reader) consumed(n int) {
	r.count += int64(n)
	if r.remaining >= 0 {
		r.remaining -= int64(n)
	}
}

// readInto fills dst completely or fails with kind.
func (r *Reader) readInto(dst []byte, kind Kind) bool {
	if !r.ensure(len(dst), kind) {
		return false
	}
	n, err := io.ReadFull(r.r, dst)
	r.consumed(n)
	if err != nil {
		r.err = r.mapReadError(err, kind, len(dst), n)
		return false
	}
	return true
}

// mapReadError turns a truncated source into the type's format error and
// passes transport failures through.
func (r *Reader) mapReadError(err error, kind Kind, want, got int) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		e := newError(OpDecode, kind, "need %d bytes, got %d", want, got)
		e.Cause = err
		return e
	}
	return fmt.Errorf("xdr: read: %w", err)
}

// readPayload reads an n-byte payload whose length came from the input.
// When the source size is unknown the payload is read in bounded chunks so
// that memory grows with the bytes actually received, not with the prefix.
func (r *Reader) readPayload(n int, kind Kind) []byte {
	if !r.ensure(n, kind) {
		return nil
	}
	if n == 0 {
		return []byte{}
	}
	if r.remaining >= 0 || n <= CHUNK_SIZE {
		buf := make([]byte, n)
		if !r.readInto(buf, kind) {
			return nil
		}
		return buf
	}

	var buf bytes.Buffer
	buf.Grow(CHUNK_SIZE)
	got, err := io.CopyN(&buf, r.r, int64(n))
	r.consumed(int(got))
	if err != nil {
		r.err = r.mapReadError(err, kind, n, int(got))
		return nil
	}
	return buf.Bytes()
}

// readPadding consumes the padding that follows an n-byte payload.
func (r *Reader) readPadding(n int, kind Kind) bool {
	pad := padLen(n)
	if pad == 0 {
		return r.err == nil
	}
	var buf [Alignment]byte
	if !r.readInto(buf[:pad], kind) {
		return false
	}
	if r.strictPad && !allZero(buf[:pad]) {
		r.err = newError(OpDecode, KindInvalidPadding, "non-zero padding % x after %d-byte payload", buf[:pad], n)
		return false
	}
	return true
}

// Skip discards n bytes, failing with the opaque format error when the
// source is shorter.
func (r *Reader) Skip(n int) {
	if n <= 0 || !r.ensure(n, KindByteBadFormat) {
		return
	}
	got, err := io.CopyN(io.Discard, r.r, int64(n))
	r.consumed(int(got))
	if err != nil {
		r.err = r.mapReadError(err, KindByteBadFormat, n, int(got))
	}
}
