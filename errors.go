package xdr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a codec failure. The set is closed: every violation the
// codec can detect maps to exactly one Kind.
type Kind uint8

const (
	KindBoolBadFormat Kind = iota + 1
	KindIntBadFormat
	KindUintBadFormat
	KindHyperBadFormat
	KindUhyperBadFormat
	KindFloatBadFormat
	KindDoubleBadFormat
	KindByteBadFormat
	KindStringBadFormat
	KindFixedSize
	KindBoundExceeded
	KindInvalidEnum
	KindInvalidPadding
	KindInvalidJSON
	KindInvalidUTF8
)

var kindNames = [...]string{
	KindBoolBadFormat:   "bool bad format",
	KindIntBadFormat:    "int bad format",
	KindUintBadFormat:   "unsigned int bad format",
	KindHyperBadFormat:  "hyper bad format",
	KindUhyperBadFormat: "unsigned hyper bad format",
	KindFloatBadFormat:  "float bad format",
	KindDoubleBadFormat: "double bad format",
	KindByteBadFormat:   "opaque bad format",
	KindStringBadFormat: "string bad format",
	KindFixedSize:       "fixed size mismatch",
	KindBoundExceeded:   "variable bound exceeded",
	KindInvalidEnum:     "invalid enum value",
	KindInvalidPadding:  "invalid padding",
	KindInvalidJSON:     "invalid json",
	KindInvalidUTF8:     "invalid utf-8",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Op names the direction of the failed operation.
type Op string

const (
	OpEncode     Op = "encode"
	OpDecode     Op = "decode"
	OpEncodeJSON Op = "encode json"
	OpDecodeJSON Op = "decode json"
)

// Error is the single error type produced by the codec.
type Error struct {
	Cause  error
	Op     Op
	Kind   Kind
	Detail string
	Path   []string
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("xdr: ")
	if e.Op != "" {
		b.WriteString(string(e.Op))
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches any *Error of the same Kind, so the sentinels below work with
// errors.Is regardless of Op, Path or Detail.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// At returns a copy of e with name prepended to its field path.
func (e *Error) At(name string) *Error {
	c := *e
	c.Path = append([]string{name}, e.Path...)
	return &c
}

// Sentinels for errors.Is.
var (
	ErrBoolBadFormat   = &Error{Kind: KindBoolBadFormat}
	ErrIntBadFormat    = &Error{Kind: KindIntBadFormat}
	ErrUintBadFormat   = &Error{Kind: KindUintBadFormat}
	ErrHyperBadFormat  = &Error{Kind: KindHyperBadFormat}
	ErrUhyperBadFormat = &Error{Kind: KindUhyperBadFormat}
	ErrFloatBadFormat  = &Error{Kind: KindFloatBadFormat}
	ErrDoubleBadFormat = &Error{Kind: KindDoubleBadFormat}
	ErrByteBadFormat   = &Error{Kind: KindByteBadFormat}
	ErrStringBadFormat = &Error{Kind: KindStringBadFormat}
	ErrFixedSize       = &Error{Kind: KindFixedSize}
	ErrBoundExceeded   = &Error{Kind: KindBoundExceeded}
	ErrInvalidEnum     = &Error{Kind: KindInvalidEnum}
	ErrInvalidPadding  = &Error{Kind: KindInvalidPadding}
	ErrInvalidJSON     = &Error{Kind: KindInvalidJSON}
	ErrInvalidUTF8     = &Error{Kind: KindInvalidUTF8}
)

// newError builds a codec error; detail is formatted only when args are given.
func newError(op Op, kind Kind, detail string, args ...any) *Error {
	if len(args) > 0 {
		detail = fmt.Sprintf(detail, args...)
	}
	return &Error{Op: op, Kind: kind, Detail: detail}
}

// Named constructors for the common shapes.

func shortRead(kind Kind, need int, have int64) *Error {
	return newError(OpDecode, kind, "need %d bytes, %d remaining", need, have)
}

func fixedSizeError(op Op, got int, want uint32) *Error {
	return newError(op, KindFixedSize, "length %d, declared %d", got, want)
}

func boundError(op Op, got int, max uint32) *Error {
	return newError(op, KindBoundExceeded, "length %d exceeds bound %d", got, max)
}

func enumError(op Op, tag int32) *Error {
	return newError(op, KindInvalidEnum, "discriminant %d is not declared", tag)
}

func jsonError(detail string, args ...any) *Error {
	return newError(OpDecodeJSON, KindInvalidJSON, detail, args...)
}

// Errors outside the codec taxonomy: misuse of the I/O helpers or of the
// reflection binder.
var (
	// ErrNilIO indicates that NewReader/NewWriter was called with a nil io.Reader/io.Writer.
	ErrNilIO = errors.New("xdr: NewReader/NewWriter called with a nil io.Reader/io.Writer")

	// ErrUnsupportedType is returned when the binder meets a Go type with no XDR mapping.
	ErrUnsupportedType = errors.New("xdr: unsupported type")

	// ErrInvalidSchema is returned for a malformed or contradictory `xdr` struct
	// tag and for variant sets with duplicate discriminants.
	ErrInvalidSchema = errors.New("xdr: invalid schema")

	// ErrTrailingData is returned by Value.UnmarshalBinary when non-zero bytes
	// follow the decoded value.
	ErrTrailingData = errors.New("xdr: non-zero trailing data found after decoding")

	// ErrInvalidWrite indicates that an io.Writer returned an invalid (negative) count from Write.
	ErrInvalidWrite = errors.New("xdr: writer returned invalid count from Write")

	// ErrNilValue is returned when a nil pointer is passed where a value is required.
	ErrNilValue = errors.New("xdr: nil value")
)
