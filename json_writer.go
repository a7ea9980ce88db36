package xdr

import (
	"encoding/hex"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/mailru/easyjson/jwriter"
)

// JSONWriter produces the JSON mirror. Like Writer it latches the first
// error, after which every call is a no-op. Separators between object
// members and array elements are inserted automatically.
type JSONWriter struct {
	w        jwriter.Writer
	err      error
	comma    []bool // per open container: an element was already written
	afterKey bool
}

func NewJSONWriter() *JSONWriter {
	return &JSONWriter{w: jwriter.Writer{NoEscapeHTML: true}}
}

func (w *JSONWriter) Err() error { return w.err }

// Fail latches err as the writer's error unless one is already recorded.
func (w *JSONWriter) Fail(err error) {
	if w.err == nil && err != nil {
		w.err = err
	}
}

// BuildBytes returns the document written so far.
func (w *JSONWriter) BuildBytes() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	return w.w.BuildBytes()
}

// DumpTo copies the document to out.
func (w *JSONWriter) DumpTo(out io.Writer) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	return w.w.DumpTo(out)
}

func (w *JSONWriter) Size() int { return w.w.Size() }

// sep emits the separator owed before the next value and reports whether
// writing may proceed.
func (w *JSONWriter) sep() bool {
	if w.err != nil {
		return false
	}
	if w.afterKey {
		w.afterKey = false
		return true
	}
	if n := len(w.comma); n > 0 {
		if w.comma[n-1] {
			w.w.RawByte(',')
		}
		w.comma[n-1] = true
	}
	return true
}

func (w *JSONWriter) BeginObject() {
	if w.sep() {
		w.w.RawByte('{')
		w.comma = append(w.comma, false)
	}
}

func (w *JSONWriter) EndObject() {
	if w.err == nil {
		w.comma = w.comma[:len(w.comma)-1]
		w.w.RawByte('}')
	}
}

func (w *JSONWriter) BeginArray() {
	if w.sep() {
		w.w.RawByte('[')
		w.comma = append(w.comma, false)
	}
}

func (w *JSONWriter) EndArray() {
	if w.err == nil {
		w.comma = w.comma[:len(w.comma)-1]
		w.w.RawByte(']')
	}
}

// Key writes an object member name; the next value becomes its value.
func (w *JSONWriter) Key(name string) {
	if w.sep() {
		w.quote(name)
		w.w.RawByte(':')
		w.afterKey = true
	}
}

func (w *JSONWriter) Bool(v bool) {
	if w.sep() {
		w.w.Bool(v)
	}
}

func (w *JSONWriter) Int32(v int32) {
	if w.sep() {
		w.w.Int32(v)
	}
}

func (w *JSONWriter) Uint32(v uint32) {
	if w.sep() {
		w.w.Uint32(v)
	}
}

// Int64 and Uint64 are quoted so that consumers parsing numbers as doubles
// do not lose precision.
func (w *JSONWriter) Int64(v int64) {
	if w.sep() {
		w.w.Int64Str(v)
	}
}

func (w *JSONWriter) Uint64(v uint64) {
	if w.sep() {
		w.w.Uint64Str(v)
	}
}

func (w *JSONWriter) Float32(v float32) {
	w.float(float64(v), 32, KindFloatBadFormat)
}

func (w *JSONWriter) Float64(v float64) {
	w.float(v, 64, KindDoubleBadFormat)
}

// float writes the shortest representation that round-trips, always with a
// decimal point so the value reads back as a float.
func (w *JSONWriter) float(v float64, bits int, kind Kind) {
	if w.err != nil {
		return
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		w.err = newError(OpEncodeJSON, kind, "%v has no JSON representation", v)
		return
	}
	w.sep()
	s := strconv.FormatFloat(v, 'f', -1, bits)
	w.w.RawString(s)
	if !strings.ContainsRune(s, '.') {
		w.w.RawString(".0")
	}
}

// Void writes "".
func (w *JSONWriter) Void() {
	if w.sep() {
		w.w.RawString(`""`)
	}
}

// String writes s bounded by max bytes.
func (w *JSONWriter) String(s string, max uint32) {
	if w.err != nil {
		return
	}
	if !withinBound(len(s), max) {
		w.err = boundError(OpEncodeJSON, len(s), max)
		return
	}
	if !utf8.ValidString(s) {
		w.err = newError(OpEncodeJSON, KindInvalidUTF8, "string is not valid UTF-8")
		return
	}
	w.sep()
	w.quote(s)
}

// Opaque writes variable-length opaque data as standard base64.
func (w *JSONWriter) Opaque(b []byte, max uint32) {
	if w.err != nil {
		return
	}
	if !withinBound(len(b), max) {
		w.err = boundError(OpEncodeJSON, len(b), max)
		return
	}
	w.base64(b)
}

// FixedOpaque writes n bytes as lowercase hex when n <= MaxHexOpaque and as
// base64 otherwise.
func (w *JSONWriter) FixedOpaque(b []byte, n uint32) {
	if w.err != nil {
		return
	}
	if uint64(len(b)) != uint64(n) {
		w.err = fixedSizeError(OpEncodeJSON, len(b), n)
		return
	}
	if n > MaxHexOpaque {
		w.base64(b)
		return
	}
	w.sep()
	w.w.RawByte('"')
	w.w.RawString(hex.EncodeToString(b))
	w.w.RawByte('"')
}

func (w *JSONWriter) base64(b []byte) {
	if b == nil {
		b = []byte{} // jwriter renders nil as null
	}
	w.sep()
	w.w.Base64Bytes(b)
}

// Raw embeds an already encoded JSON value.
func (w *JSONWriter) Raw(data []byte) {
	if w.sep() {
		w.w.Raw(data, nil)
	}
}

const hexDigits = "0123456789abcdef"

// quote writes s as a JSON string. Only '"', '\\' and control bytes are
// escaped; everything else, including non-ASCII, is copied verbatim.
func (w *JSONWriter) quote(s string) {
	w.w.RawByte('"')
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 0x20 && c != '"' && c != '\\' {
			continue
		}
		w.w.RawString(s[start:i])
		switch c {
		case '"':
			w.w.RawString(`\"`)
		case '\\':
			w.w.RawString(`\\`)
		case '\b':
			w.w.RawString(`\b`)
		case '\t':
			w.w.RawString(`\t`)
		case '\n':
			w.w.RawString(`\n`)
		case '\f':
			w.w.RawString(`\f`)
		case '\r':
			w.w.RawString(`\r`)
		default:
			w.w.RawString(`\u00`)
			w.w.RawByte(hexDigits[c>>4])
			w.w.RawByte(hexDigits[c&0xf])
		}
		start = i + 1
	}
	w.w.RawString(s[start:])
	w.w.RawByte('"')
}
