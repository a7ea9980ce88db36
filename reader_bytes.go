package xdr

import "io"

// BytesReader is an io.Reader that reads from a pre-allocated byte slice.
// Unlike bytes.Reader it exposes its position, which Unmarshal reports as
// the number of bytes consumed.
type BytesReader struct {
	B []byte // source slice
	N int    // current read position
}

// NewBytesReader creates a new BytesReader.
func NewBytesReader(b []byte) *BytesReader {
	return &BytesReader{B: b}
}

// Read implements the [io.Reader] interface.
func (r *BytesReader) Read(p []byte) (int, error) {
	if r.N >= len(r.B) {
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}
	n := copy(p, r.B[r.N:])
	r.N += n
	return n, nil
}

// Available returns the number of bytes available for reading.
func (r *BytesReader) Available() int {
	length := len(r.B) - r.N
	if length <= 0 {
		return 0
	}
	return length
}
