package xdr

import (
	"bufio"
	"bytes"
	"io"
)

// Encoder writes a sequence of XDR values to a stream. Each value is
// encoded in full before any of it is written, so a value that fails to
// encode leaves the stream untouched and the Encoder usable. Transport
// errors are permanent.
type Encoder struct {
	w   *Writer
	err error
}

func NewEncoder(w io.Writer) *Encoder {
	ww, err := NewWriter(w)
	return &Encoder{w: ww, err: err}
}

// Encode writes the XDR encoding of v and flushes it.
func (e *Encoder) Encode(v any) error {
	if e.err != nil {
		return e.err
	}
	data, err := Marshal(v)
	if err != nil {
		return err
	}
	_, _ = e.w.Write(data)
	e.err = e.w.Flush()
	return e.err
}

// Count returns the number of bytes written so far.
func (e *Encoder) Count() int64 {
	if e.w == nil {
		return 0
	}
	return e.w.Count()
}

// Decoder reads a sequence of XDR values from a stream. Any error is
// permanent: after a failed Decode the position within the stream is
// undefined.
type Decoder struct {
	r    *Reader
	peek *bufio.Reader // set when the source can be inspected ahead of decoding
	err  error
}

// NewDecoder creates a Decoder on r. Sources of unknown size are buffered;
// use WithLimit to cap the bytes a peer can make the Decoder consume.
func NewDecoder(r io.Reader, opts ...Option) *Decoder {
	var peek *bufio.Reader
	switch src := r.(type) {
	case nil, *BytesReader, *bytes.Reader, *bytes.Buffer, *LimitedReader, *io.LimitedReader:
	case *bufio.Reader:
		peek = src
	default:
		peek = bufio.NewReader(r)
		r = peek
	}
	rr, err := NewReader(r, opts...)
	return &Decoder{r: rr, peek: peek, err: err}
}

// More reports whether another value may follow. It is false once the
// source is known to be exhausted or after an error.
func (d *Decoder) More() bool {
	if d.err != nil || d.r.Remaining() == 0 {
		return false
	}
	if d.peek != nil {
		_, err := d.peek.Peek(1)
		return err == nil
	}
	return true
}

// Decode reads the next value into v and returns the bytes it consumed.
func (d *Decoder) Decode(v any) (int, error) {
	if d.err != nil {
		return 0, d.err
	}
	before := d.r.Count()
	d.r.ReadValue(v)
	d.err = d.r.Err()
	return int(d.r.Count() - before), d.err
}

// Count returns the number of bytes consumed so far.
func (d *Decoder) Count() int64 {
	if d.r == nil {
		return 0
	}
	return d.r.Count()
}
