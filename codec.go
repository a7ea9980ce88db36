package xdr

import (
	"encoding"
	"io"
)

// Marshaler is implemented by types that write their own XDR encoding.
// Errors are reported through the Writer (see Writer.Fail).
type Marshaler interface {
	EncodeXDR(w *Writer)
}

// Unmarshaler is implemented by types that read their own XDR encoding.
// Errors are reported through the Reader (see Reader.Fail).
type Unmarshaler interface {
	DecodeXDR(r *Reader)
}

// JSONMarshaler is implemented by types that write their own JSON mirror.
type JSONMarshaler interface {
	EncodeJSON(w *JSONWriter)
}

// JSONUnmarshaler is implemented by types that read their own JSON mirror.
type JSONUnmarshaler interface {
	DecodeJSON(v JSONValue) error
}

// Codec aggregates the binary and JSON directions. A type implementing Codec
// bypasses the reflection binder entirely.
type Codec interface {
	Marshaler
	Unmarshaler
	JSONMarshaler
	JSONUnmarshaler
}

// Enum is implemented by int32-based types whose values are restricted to a
// declared set of discriminants.
type Enum interface {
	XDRVariants() *Variants
}

// Sizer is an interface for types that can report their encoded size.
type Sizer interface {
	// Size returns the size of the type in bytes when XDR encoded.
	Size() int
}

// BinaryCodec is the standard library facing surface: a type implementing
// it can be used wherever encoding.BinaryMarshaler, io.WriterTo and friends
// are expected. Value implements it for any bindable T.
type BinaryCodec interface {
	Sizer
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
	io.WriterTo
	io.ReaderFrom

	// MarshalTo encodes into a pre-allocated buffer, returning
	// io.ErrShortWrite if the buffer is too small.
	MarshalTo(buf []byte) (int, error)
}
