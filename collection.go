package xdr

import "unsafe"

// EncodeFunc encodes one element. Method expressions such as
// (*Writer).WriteUint32 satisfy it directly.
type EncodeFunc[T any] func(w *Writer, v T)

// DecodeFunc decodes one element in place. Method expressions such as
// (*Reader).ReadUint32 satisfy it directly.
type DecodeFunc[T any] func(r *Reader, v *T)

// maxPrealloc caps the capacity reserved from an untrusted element count;
// beyond it the slice grows with the elements actually decoded.
const maxPrealloc = 1024

// preallocLen returns the capacity to reserve for n decoded elements that
// occupy elemSize bytes in memory and at least minSize bytes on the wire.
// The reservation never exceeds CHUNK_SIZE bytes, nor the number of
// elements the remaining input could still hold.
func (r *Reader) preallocLen(n int, elemSize uintptr, minSize int) int {
	c := min(n, maxPrealloc)
	if elemSize > 0 {
		c = min(c, int(CHUNK_SIZE/elemSize))
	}
	if r.remaining >= 0 && minSize > 0 {
		c = int(min(int64(c), r.remaining/int64(minSize)))
	}
	return c
}

// EncodeMarshaler adapts a Marshaler element type to EncodeFunc.
func EncodeMarshaler[T Marshaler](w *Writer, v T) { v.EncodeXDR(w) }

// DecodeUnmarshaler adapts an element type whose pointer implements
// Unmarshaler to DecodeFunc.
func DecodeUnmarshaler[T any, PT interface {
	*T
	Unmarshaler
}](r *Reader, v *T) {
	PT(v).DecodeXDR(r)
}

// WriteFixedArray writes exactly n elements with no length prefix. The
// count is checked before anything is written.
func WriteFixedArray[T any](w *Writer, items []T, n uint32, enc EncodeFunc[T]) {
	if w.err != nil {
		return
	}
	if uint64(len(items)) != uint64(n) {
		w.err = fixedSizeError(OpEncode, len(items), n)
		return
	}
	writeElems(w, items, enc)
}

// WriteVarArray writes a length prefix followed by the elements. A count
// above max fails before the prefix is written.
func WriteVarArray[T any](w *Writer, items []T, max uint32, enc EncodeFunc[T]) {
	if !w.writeLength(len(items), max) {
		return
	}
	writeElems(w, items, enc)
}

func writeElems[T any](w *Writer, items []T, enc EncodeFunc[T]) {
	for _, item := range items {
		if w.err != nil {
			return
		}
		enc(w, item)
	}
}

// ReadFixedArray reads exactly n elements.
func ReadFixedArray[T any](r *Reader, dest *[]T, n uint32, dec DecodeFunc[T]) {
	if r.err != nil {
		return
	}
	if items, ok := readElems(r, int(n), dec); ok {
		*dest = items
	}
}

// ReadVarArray reads a length prefix and that many elements. A prefix
// above max fails before any element is read.
func ReadVarArray[T any](r *Reader, dest *[]T, max uint32, dec DecodeFunc[T]) {
	n, ok := r.readLength(max, KindUintBadFormat)
	if !ok {
		return
	}
	if items, ok := readElems(r, n, dec); ok {
		*dest = items
	}
}

func readElems[T any](r *Reader, n int, dec DecodeFunc[T]) ([]T, bool) {
	var zero T
	items := make([]T, 0, r.preallocLen(n, unsafe.Sizeof(zero), Alignment))
	for i := 0; i < n; i++ {
		var item T
		dec(r, &item)
		if r.err != nil {
			return nil, false
		}
		items = append(items, item)
	}
	return items, true
}
