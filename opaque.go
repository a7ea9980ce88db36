package xdr

import (
	"io"
	"math"
	"unicode/utf8"
)

// writeLength writes a variable-length prefix after checking it against max.
// Nothing is written when the check fails.
func (w *Writer) writeLength(n int, max uint32) bool {
	if w.err != nil {
		return false
	}
	if !withinBound(n, max) || uint64(n) > math.MaxUint32 {
		w.err = boundError(OpEncode, n, max)
		return false
	}
	w.WriteUint32(uint32(n))
	return w.err == nil
}

// WriteOpaque writes variable-length opaque data: length, bytes, padding.
func (w *Writer) WriteOpaque(b []byte, max uint32) {
	if !w.writeLength(len(b), max) {
		return
	}
	_, _ = w.Write(b)
	w.WriteZeros(padLen(len(b)))
}

// WriteFixedOpaque writes exactly n bytes followed by padding, without a
// length prefix.
func (w *Writer) WriteFixedOpaque(b []byte, n uint32) {
	if w.err != nil {
		return
	}
	if uint64(len(b)) != uint64(n) {
		w.err = fixedSizeError(OpEncode, len(b), n)
		return
	}
	_, _ = w.Write(b)
	w.WriteZeros(padLen(len(b)))
}

// WriteString writes a UTF-8 string with opaque framing. Strings that are
// not valid UTF-8 are rejected since they could not be decoded back.
func (w *Writer) WriteString(s string, max uint32) {
	if w.err != nil {
		return
	}
	if !utf8.ValidString(s) {
		w.err = newError(OpEncode, KindInvalidUTF8, "string is not valid UTF-8")
		return
	}
	if !w.writeLength(len(s), max) {
		return
	}
	w.writeRawString(s)
	w.WriteZeros(padLen(len(s)))
}

func (w *Writer) writeRawString(s string) {
	if len(s) == 0 || w.err != nil {
		return
	}
	if sw, ok := w.w.(io.StringWriter); ok {
		n, err := sw.WriteString(s)
		w.count += int64(n)
		w.setError(err)
		return
	}
	_, _ = w.Write([]byte(s))
}

// readLength reads a variable-length prefix and checks it against max
// before any payload byte is touched.
func (r *Reader) readLength(max uint32, kind Kind) (int, bool) {
	n, ok := r.read4(kind)
	if !ok {
		return 0, false
	}
	if !withinBound(int(n), max) {
		r.err = boundError(OpDecode, int(n), max)
		return 0, false
	}
	return int(n), true
}

// ReadOpaque reads variable-length opaque data bounded by max.
func (r *Reader) ReadOpaque(dest *[]byte, max uint32) {
	n, ok := r.readLength(max, KindByteBadFormat)
	if !ok {
		return
	}
	buf := r.readPayload(n, KindByteBadFormat)
	if buf == nil || !r.readPadding(n, KindByteBadFormat) {
		return
	}
	*dest = buf
}

// ReadFixedOpaque reads exactly n bytes plus padding.
func (r *Reader) ReadFixedOpaque(dest *[]byte, n uint32) {
	if !r.ensure(int(n)+padLen(int(n)), KindByteBadFormat) {
		return
	}
	buf := r.readPayload(int(n), KindByteBadFormat)
	if buf == nil || !r.readPadding(int(n), KindByteBadFormat) {
		return
	}
	*dest = buf
}

// ReadFixedOpaqueInto fills dst and consumes the padding after it. It backs
// Go array types such as [32]byte.
func (r *Reader) ReadFixedOpaqueInto(dst []byte) {
	if !r.ensure(len(dst)+padLen(len(dst)), KindByteBadFormat) {
		return
	}
	if r.readInto(dst, KindByteBadFormat) {
		r.readPadding(len(dst), KindByteBadFormat)
	}
}

// ReadString reads a UTF-8 string bounded by max bytes.
func (r *Reader) ReadString(dest *string, max uint32) {
	n, ok := r.readLength(max, KindStringBadFormat)
	if !ok {
		return
	}
	buf := r.readPayload(n, KindStringBadFormat)
	if buf == nil || !r.readPadding(n, KindStringBadFormat) {
		return
	}
	if !utf8.Valid(buf) {
		r.err = newError(OpDecode, KindInvalidUTF8, "%d-byte string is not valid UTF-8", n)
		return
	}
	*dest = string(buf)
}
