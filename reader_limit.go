package xdr

import "io"

// LimitedReader caps the bytes readable from a stream. Reader recognises it
// and uses N as the remaining budget for its bounds checks.
type LimitedReader struct {
	*io.LimitedReader
}

func LimitReader(r io.Reader, n int64) *LimitedReader {
	if lr, ok := r.(*LimitedReader); ok && lr.N <= n {
		return lr
	}
	return &LimitedReader{&io.LimitedReader{R: r, N: n}}
}

