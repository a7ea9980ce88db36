package xdr

import (
	"encoding/binary"

	"golang.org/x/exp/constraints"
)

// Order is the XDR byte order. RFC 4506 fixes it to big-endian.
var Order = binary.BigEndian

// Alignment is the XDR unit: every encoded item occupies a multiple of 4 bytes.
const Alignment = 4

// Unbounded is the bound value meaning "no declared maximum".
const Unbounded uint32 = 0

// MaxHexOpaque is the largest fixed opaque rendered as hex in the JSON mirror.
const MaxHexOpaque = 64

// zeros backs padding writes and padding checks.
var zeros [Alignment]byte

func Ptr[T any](v T) *T { return &v } // Ptr returns a pointer to a copy of v, for optional fields in literals.

// Roundup rounds n up to the nearest multiple of align.
func Roundup[T constraints.Integer](n, align T) T { return (n + (align - 1)) &^ (align - 1) }

// padLen returns the number of zero bytes that follow an n-byte payload.
func padLen[T constraints.Integer](n T) T { return Roundup(n, T(Alignment)) - n }

// EncodedLen returns the XDR size of a variable-length payload of n bytes:
// length prefix, payload and padding.
func EncodedLen(n int) int { return Alignment + n + padLen(n) }

// withinBound reports whether n satisfies a variable bound (0 = unbounded).
func withinBound(n int, max uint32) bool {
	return max == Unbounded || uint64(n) <= uint64(max)
}

// allZero reports whether every byte of p is zero.
func allZero(p []byte) bool {
	for _, b := range p {
		if b != 0 {
			return false
		}
	}
	return true
}
