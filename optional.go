package xdr

// WriteOptional writes XDR optional-data: 0 for nil, 1 followed by the
// value otherwise.
func WriteOptional[T any](w *Writer, v *T, enc EncodeFunc[T]) {
	if v == nil {
		w.WriteUint32(0)
		return
	}
	w.WriteUint32(1)
	enc(w, *v)
}

// ReadOptional reads XDR optional-data. The presence flag must be 0 or 1;
// RFC 4506 defines it as a boolean, so other values fail like a bad bool.
func ReadOptional[T any](r *Reader, dest **T, dec DecodeFunc[T]) {
	flag, ok := r.readFlag()
	if !ok {
		return
	}
	if !flag {
		*dest = nil
		return
	}
	v := new(T)
	dec(r, v)
	if r.err == nil {
		*dest = v
	}
}

func (r *Reader) readFlag() (bool, bool) {
	v, ok := r.read4(KindBoolBadFormat)
	if !ok {
		return false, false
	}
	switch v {
	case 0:
		return false, true
	case 1:
		return true, true
	}
	r.err = newError(OpDecode, KindBoolBadFormat, "optional flag %d is neither 0 nor 1", v)
	return false, false
}
