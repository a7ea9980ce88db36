package xdr

import (
	"fmt"
	"io"
)

// Value provides a ready-made BinaryCodec and Codec for any bindable type,
// eliminating boilerplate where a standard library interface is expected:
//
//	var msg xdr.Value[Message]
//	_, err := msg.ReadFrom(conn)
type Value[T any] struct {
	V T
}

// Statically assert that Value implements the codec interfaces.
var (
	_ BinaryCodec = (*Value[struct{}])(nil)
	_ Codec       = (*Value[struct{}])(nil)
)

// Size returns the encoded size of V, or -1 if V cannot be encoded.
func (c *Value[T]) Size() int {
	n, err := Size(&c.V)
	if err != nil {
		return -1
	}
	return n
}

// MarshalBinary implements encoding.BinaryMarshaler.
// Note: This method allocates a new byte slice. For performance-critical paths,
// use MarshalTo or WriteTo instead.
func (c *Value[T]) MarshalBinary() ([]byte, error) {
	return Marshal(&c.V)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. Unlike Unmarshal
// it rejects non-zero bytes after the value, which prevents parsing
// ambiguous or spliced payloads.
func (c *Value[T]) UnmarshalBinary(data []byte) error {
	n, err := Unmarshal(data, &c.V)
	if err != nil {
		return err
	}
	if !allZero(data[n:]) {
		return fmt.Errorf("%w: %d bytes after a %d-byte value", ErrTrailingData, len(data)-n, n)
	}
	return nil
}

// WriteTo implements io.WriterTo, encoding directly to a stream without
// materializing the whole encoding.
func (c *Value[T]) WriteTo(w io.Writer) (int64, error) {
	ww, err := NewWriter(w)
	if err != nil {
		return 0, err
	}
	ww.WriteValue(&c.V)
	return ww.Result()
}

// ReadFrom implements io.ReaderFrom. It consumes exactly one value.
func (c *Value[T]) ReadFrom(r io.Reader) (int64, error) {
	rr, err := NewReader(r)
	if err != nil {
		return 0, err
	}
	rr.ReadValue(&c.V)
	return rr.Result()
}

// MarshalTo encodes into p, returning io.ErrShortWrite if p is too small.
func (c *Value[T]) MarshalTo(p []byte) (int, error) {
	w, _ := NewWriter(NewBytesWriter(p))
	w.WriteValue(&c.V)
	n, err := w.Result()
	return int(n), err
}

// MarshalJSON implements json.Marshaler with the JSON mirror.
func (c *Value[T]) MarshalJSON() ([]byte, error) {
	return MarshalJSON(&c.V)
}

// UnmarshalJSON implements json.Unmarshaler with the JSON mirror.
func (c *Value[T]) UnmarshalJSON(data []byte) error {
	return UnmarshalJSON(data, &c.V)
}

func (c *Value[T]) EncodeXDR(w *Writer)          { w.WriteValue(&c.V) }
func (c *Value[T]) DecodeXDR(r *Reader)          { r.ReadValue(&c.V) }
func (c *Value[T]) EncodeJSON(w *JSONWriter)     { w.Value(&c.V) }
func (c *Value[T]) DecodeJSON(j JSONValue) error { return j.Decode(&c.V) }
