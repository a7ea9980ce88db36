package xdr

import "math"

// Void is the XDR void type. It occupies no bytes on the wire and is
// rendered as "" in the JSON mirror.
type Void struct{}

// --- Primitive Write Operations ---

func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteUint32(1)
	} else {
		w.WriteUint32(0)
	}
}

func (w *Writer) WriteInt32(v int32) {
	w.WriteUint32(uint32(v))
}

func (w *Writer) WriteUint32(v uint32) {
	if w.err != nil {
		return
	}
	var buf [4]byte
	Order.PutUint32(buf[:], v)
	_, _ = w.Write(buf[:])
}

func (w *Writer) WriteInt64(v int64) {
	w.WriteUint64(uint64(v))
}

func (w *Writer) WriteUint64(v uint64) {
	if w.err != nil {
		return
	}
	var buf [8]byte
	Order.PutUint64(buf[:], v)
	_, _ = w.Write(buf[:])
}

func (w *Writer) WriteFloat32(v float32) {
	w.WriteUint32(math.Float32bits(v))
}

func (w *Writer) WriteFloat64(v float64) {
	w.WriteUint64(math.Float64bits(v))
}

// WriteVoid writes nothing.
func (w *Writer) WriteVoid(Void) {}

// --- Primitive Read Operations ---

// read4 and read8 decode a fixed-width word, reporting truncation as kind.
func (r *Reader) read4(kind Kind) (uint32, bool) {
	var buf [4]byte
	if !r.readInto(buf[:], kind) {
		return 0, false
	}
	return Order.Uint32(buf[:]), true
}

func (r *Reader) read8(kind Kind) (uint64, bool) {
	var buf [8]byte
	if !r.readInto(buf[:], kind) {
		return 0, false
	}
	return Order.Uint64(buf[:]), true
}

// ReadBool accepts only the encodings 0 and 1.
func (r *Reader) ReadBool(dest *bool) {
	v, ok := r.read4(KindBoolBadFormat)
	if !ok {
		return
	}
	switch v {
	case 0:
		*dest = false
	case 1:
		*dest = true
	default:
		r.err = newError(OpDecode, KindBoolBadFormat, "value %d is neither 0 nor 1", v)
	}
}

func (r *Reader) ReadInt32(dest *int32) {
	if v, ok := r.read4(KindIntBadFormat); ok {
		*dest = int32(v)
	}
}

func (r *Reader) ReadUint32(dest *uint32) {
	if v, ok := r.read4(KindUintBadFormat); ok {
		*dest = v
	}
}

func (r *Reader) ReadInt64(dest *int64) {
	if v, ok := r.read8(KindHyperBadFormat); ok {
		*dest = int64(v)
	}
}

func (r *Reader) ReadUint64(dest *uint64) {
	if v, ok := r.read8(KindUhyperBadFormat); ok {
		*dest = v
	}
}

func (r *Reader) ReadFloat32(dest *float32) {
	if v, ok := r.read4(KindFloatBadFormat); ok {
		*dest = math.Float32frombits(v)
	}
}

func (r *Reader) ReadFloat64(dest *float64) {
	if v, ok := r.read8(KindDoubleBadFormat); ok {
		*dest = math.Float64frombits(v)
	}
}

// ReadVoid always succeeds without consuming input.
func (r *Reader) ReadVoid(*Void) {}
