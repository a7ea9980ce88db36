package xdr

// EncodeJSONFunc writes the JSON mirror of one element. Method expressions
// such as (*JSONWriter).Uint32 satisfy it directly.
type EncodeJSONFunc[T any] func(w *JSONWriter, v T)

// DecodeJSONFunc reads the JSON mirror of one element into v.
type DecodeJSONFunc[T any] func(j JSONValue, v *T) error

// DecodeJSONWith adapts a JSONValue accessor such as JSONValue.Uint32 to
// DecodeJSONFunc.
func DecodeJSONWith[T any](get func(JSONValue) (T, error)) DecodeJSONFunc[T] {
	return func(j JSONValue, v *T) error {
		x, err := get(j)
		if err != nil {
			return err
		}
		*v = x
		return nil
	}
}

// EncodeJSONMarshaler adapts a JSONMarshaler element type to EncodeJSONFunc.
func EncodeJSONMarshaler[T JSONMarshaler](w *JSONWriter, v T) { v.EncodeJSON(w) }

// DecodeJSONUnmarshaler adapts an element type whose pointer implements
// JSONUnmarshaler to DecodeJSONFunc.
func DecodeJSONUnmarshaler[T any, PT interface {
	*T
	JSONUnmarshaler
}](j JSONValue, v *T) error {
	return PT(v).DecodeJSON(j)
}

// WriteFixedArrayJSON writes exactly n elements as a JSON array.
func WriteFixedArrayJSON[T any](w *JSONWriter, items []T, n uint32, enc EncodeJSONFunc[T]) {
	if w.err != nil {
		return
	}
	if uint64(len(items)) != uint64(n) {
		w.err = fixedSizeError(OpEncodeJSON, len(items), n)
		return
	}
	writeElemsJSON(w, items, enc)
}

// WriteVarArrayJSON writes at most max elements as a JSON array.
func WriteVarArrayJSON[T any](w *JSONWriter, items []T, max uint32, enc EncodeJSONFunc[T]) {
	if w.err != nil {
		return
	}
	if !withinBound(len(items), max) {
		w.err = boundError(OpEncodeJSON, len(items), max)
		return
	}
	writeElemsJSON(w, items, enc)
}

func writeElemsJSON[T any](w *JSONWriter, items []T, enc EncodeJSONFunc[T]) {
	w.BeginArray()
	for _, item := range items {
		if w.err != nil {
			return
		}
		enc(w, item)
	}
	w.EndArray()
}

// ReadFixedArrayJSON reads an array of exactly n elements.
func ReadFixedArrayJSON[T any](j JSONValue, dest *[]T, n uint32, dec DecodeJSONFunc[T]) error {
	elems, err := j.Elements()
	if err != nil {
		return err
	}
	if uint64(len(elems)) != uint64(n) {
		return fixedSizeError(OpDecodeJSON, len(elems), n)
	}
	return readElemsJSON(elems, dest, dec)
}

// ReadVarArrayJSON reads an array of at most max elements.
func ReadVarArrayJSON[T any](j JSONValue, dest *[]T, max uint32, dec DecodeJSONFunc[T]) error {
	elems, err := j.Elements()
	if err != nil {
		return err
	}
	if !withinBound(len(elems), max) {
		return boundError(OpDecodeJSON, len(elems), max)
	}
	return readElemsJSON(elems, dest, dec)
}

func readElemsJSON[T any](elems []JSONValue, dest *[]T, dec DecodeJSONFunc[T]) error {
	items := make([]T, len(elems))
	for i, e := range elems {
		if err := dec(e, &items[i]); err != nil {
			return err
		}
	}
	*dest = items
	return nil
}

// WriteOptionalJSON writes [] for nil and [v] otherwise.
func WriteOptionalJSON[T any](w *JSONWriter, v *T, enc EncodeJSONFunc[T]) {
	w.BeginArray()
	if v != nil {
		enc(w, *v)
	}
	w.EndArray()
}

// ReadOptionalJSON reads [] or [v].
func ReadOptionalJSON[T any](j JSONValue, dest **T, dec DecodeJSONFunc[T]) error {
	if !j.IsArray() {
		return jsonError("optional must be an array, got %s", j.Type())
	}
	elems, err := j.elements()
	if err != nil {
		return err
	}
	switch len(elems) {
	case 0:
		*dest = nil
		return nil
	case 1:
		v := new(T)
		if err := dec(elems[0], v); err != nil {
			return err
		}
		*dest = v
		return nil
	}
	return jsonError("optional holds %d elements", len(elems))
}
