package xdr

import (
	"bytes"
	"fmt"
	"io"
	"reflect"

	"go.uber.org/zap"
)

// encodable resolves v for encoding: a pointer is dereferenced once, and a
// non-pointer is copied so that plans always see an addressable value.
func encodable(v any) (reflect.Value, *plan, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return reflect.Value{}, nil, ErrNilValue
	}
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return reflect.Value{}, nil, ErrNilValue
		}
		rv = rv.Elem()
	} else {
		tmp := reflect.New(rv.Type()).Elem()
		tmp.Set(rv)
		rv = tmp
	}
	p, err := planFor(rv.Type())
	return rv, p, err
}

// decodable resolves the destination of a decode, which must be a non-nil
// pointer.
func decodable(v any) (reflect.Value, *plan, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return reflect.Value{}, nil, fmt.Errorf("%w: decode destination must be a non-nil pointer, got %T", ErrNilValue, v)
	}
	rv = rv.Elem()
	p, err := planFor(rv.Type())
	return rv, p, err
}

// WriteValue encodes v with its compiled plan. It lets hand-written
// encoders embed types handled by the reflection binder.
func (w *Writer) WriteValue(v any) {
	if w.err != nil {
		return
	}
	rv, p, err := encodable(v)
	if err != nil {
		w.err = err
		return
	}
	p.encode(w, rv)
}

// ReadValue decodes into v, which must be a non-nil pointer. v is left
// untouched when decoding fails.
func (r *Reader) ReadValue(v any) {
	if r.err != nil {
		return
	}
	rv, p, err := decodable(v)
	if err != nil {
		r.err = err
		return
	}
	tmp := reflect.New(rv.Type()).Elem()
	p.decode(r, tmp)
	if r.err == nil {
		rv.Set(tmp)
	}
}

// Value writes the JSON mirror of v.
func (w *JSONWriter) Value(v any) {
	if w.err != nil {
		return
	}
	rv, p, err := encodable(v)
	if err != nil {
		w.err = err
		return
	}
	p.encodeJSON(w, rv)
}

// Decode decodes the JSON mirror held by j into v, which must be a non-nil
// pointer.
func (j JSONValue) Decode(v any) error {
	rv, p, err := decodable(v)
	if err != nil {
		return err
	}
	tmp := reflect.New(rv.Type()).Elem()
	if err := p.decodeJSON(j, tmp); err != nil {
		return err
	}
	rv.Set(tmp)
	return nil
}

// Marshal returns the XDR encoding of v. The value is encoded into a pooled
// buffer first, so a failure never yields partial output.
func Marshal(v any) ([]byte, error) {
	buf := getBuffer()
	defer putBuffer(buf)

	w, _ := NewWriter(buf)
	w.WriteValue(v)
	if _, err := w.Result(); err != nil {
		Logger().Debug("xdr encode failed",
			zap.String("type", fmt.Sprintf("%T", v)),
			zap.Error(err))
		return nil, err
	}
	return bytes.Clone(buf.Bytes()), nil
}

// Unmarshal decodes one value from the front of data into v and returns the
// number of bytes consumed. Trailing bytes are not examined.
func Unmarshal(data []byte, v any, opts ...Option) (int, error) {
	r, _ := NewReader(NewBytesReader(data), opts...)
	r.ReadValue(v)
	n, err := r.Result()
	if err != nil {
		Logger().Debug("xdr decode failed",
			zap.String("type", fmt.Sprintf("%T", v)),
			zap.Int64("consumed", n),
			zap.Int("size", len(data)),
			zap.Error(err))
		return int(n), err
	}
	return int(n), nil
}

// MarshalJSON returns the JSON mirror of v.
func MarshalJSON(v any) ([]byte, error) {
	w := NewJSONWriter()
	w.Value(v)
	data, err := w.BuildBytes()
	if err != nil {
		Logger().Debug("xdr json encode failed",
			zap.String("type", fmt.Sprintf("%T", v)),
			zap.Error(err))
		return nil, err
	}
	return data, nil
}

// UnmarshalJSON decodes the JSON mirror in data into v.
func UnmarshalJSON(data []byte, v any) error {
	j, err := ParseJSON(data)
	if err == nil {
		err = j.Decode(v)
	}
	if err != nil {
		Logger().Debug("xdr json decode failed",
			zap.String("type", fmt.Sprintf("%T", v)),
			zap.Int("size", len(data)),
			zap.Error(err))
		return err
	}
	return nil
}

// Size returns the length of the XDR encoding of v without producing it.
func Size(v any) (int, error) {
	w := &Writer{w: nopFlusher{io.Discard}}
	w.WriteValue(v)
	n, err := w.Result()
	return int(n), err
}
