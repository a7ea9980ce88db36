package xdr

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strconv"
	"unicode/utf8"

	"github.com/buger/jsonparser"
)

// JSONValue is one node of a parsed JSON mirror document. It is a view into
// the document bytes: containers are decoded lazily, field by field, as the
// decoder walks the schema. Strings are held unquoted and still escaped.
type JSONValue struct {
	raw []byte
	typ jsonparser.ValueType
}

// ParseJSON validates data and returns its root value.
func ParseJSON(data []byte) (JSONValue, error) {
	if !json.Valid(data) {
		return JSONValue{}, jsonError("malformed document")
	}
	raw, typ, _, err := jsonparser.Get(data)
	if err != nil {
		e := jsonError("malformed document")
		e.Cause = err
		return JSONValue{}, e
	}
	return JSONValue{raw: raw, typ: typ}, nil
}

func (v JSONValue) Type() jsonparser.ValueType { return v.typ }

// Raw returns the value bytes; strings are returned without quotes.
func (v JSONValue) Raw() []byte { return v.raw }

func (v JSONValue) IsNull() bool   { return v.typ == jsonparser.Null }
func (v JSONValue) IsNumber() bool { return v.typ == jsonparser.Number }
func (v JSONValue) IsObject() bool { return v.typ == jsonparser.Object }
func (v JSONValue) IsArray() bool  { return v.typ == jsonparser.Array }
func (v JSONValue) IsString() bool { return v.typ == jsonparser.String }

func (v JSONValue) typeError(kind Kind, want string) *Error {
	return newError(OpDecodeJSON, kind, "expected %s, got %s", want, v.typ)
}

func (v JSONValue) Bool() (bool, error) {
	if v.typ != jsonparser.Boolean {
		return false, v.typeError(KindBoolBadFormat, "boolean")
	}
	b, err := jsonparser.ParseBoolean(v.raw)
	if err != nil {
		return false, newError(OpDecodeJSON, KindBoolBadFormat, "%q", v.raw)
	}
	return b, nil
}

func (v JSONValue) Int32() (int32, error) {
	if v.typ != jsonparser.Number {
		return 0, v.typeError(KindIntBadFormat, "number")
	}
	n, err := strconv.ParseInt(string(v.raw), 10, 32)
	if err != nil {
		return 0, newError(OpDecodeJSON, KindIntBadFormat, "%s is not a 32-bit integer", v.raw)
	}
	return int32(n), nil
}

func (v JSONValue) Uint32() (uint32, error) {
	if v.typ != jsonparser.Number {
		return 0, v.typeError(KindUintBadFormat, "number")
	}
	n, err := strconv.ParseUint(string(v.raw), 10, 32)
	if err != nil {
		return 0, newError(OpDecodeJSON, KindUintBadFormat, "%s is not a 32-bit unsigned integer", v.raw)
	}
	return uint32(n), nil
}

// unquoted returns the body of a string value with escapes resolved. The
// raw bytes are returned as is when they hold no escape.
func (v JSONValue) unquoted(kind Kind, want string) ([]byte, error) {
	if v.typ != jsonparser.String {
		return nil, v.typeError(kind, want)
	}
	var stack [64]byte
	b, err := jsonparser.Unescape(v.raw, stack[:])
	if err != nil {
		e := newError(OpDecodeJSON, kind, "bad escape sequence")
		e.Cause = err
		return nil, e
	}
	return b, nil
}

// Int64 and Uint64 expect a quoted decimal string.
func (v JSONValue) Int64() (int64, error) {
	s, err := v.unquoted(KindHyperBadFormat, "quoted integer")
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(string(s), 10, 64)
	if err != nil {
		return 0, newError(OpDecodeJSON, KindHyperBadFormat, "%q is not a 64-bit integer", s)
	}
	return n, nil
}

func (v JSONValue) Uint64() (uint64, error) {
	s, err := v.unquoted(KindUhyperBadFormat, "quoted integer")
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(string(s), 10, 64)
	if err != nil {
		return 0, newError(OpDecodeJSON, KindUhyperBadFormat, "%q is not a 64-bit unsigned integer", s)
	}
	return n, nil
}

func (v JSONValue) Float32() (float32, error) {
	if v.typ != jsonparser.Number {
		return 0, v.typeError(KindFloatBadFormat, "number")
	}
	f, err := strconv.ParseFloat(string(v.raw), 32)
	if err != nil {
		return 0, newError(OpDecodeJSON, KindFloatBadFormat, "%s is not a float", v.raw)
	}
	return float32(f), nil
}

func (v JSONValue) Float64() (float64, error) {
	if v.typ != jsonparser.Number {
		return 0, v.typeError(KindDoubleBadFormat, "number")
	}
	f, err := jsonparser.ParseFloat(v.raw)
	if err != nil {
		return 0, newError(OpDecodeJSON, KindDoubleBadFormat, "%s is not a double", v.raw)
	}
	return f, nil
}

// Void accepts only "".
func (v JSONValue) Void() error {
	if v.typ != jsonparser.String || len(v.raw) != 0 {
		return jsonError(`void must be "", got %s %q`, v.typ, v.raw)
	}
	return nil
}

// Text decodes a string bounded by max bytes.
func (v JSONValue) Text(max uint32) (string, error) {
	if v.typ != jsonparser.String {
		return "", v.typeError(KindStringBadFormat, "string")
	}
	s, err := jsonparser.ParseString(v.raw)
	if err != nil {
		e := newError(OpDecodeJSON, KindStringBadFormat, "bad escape sequence")
		e.Cause = err
		return "", e
	}
	if !withinBound(len(s), max) {
		return "", boundError(OpDecodeJSON, len(s), max)
	}
	if !utf8.ValidString(s) {
		return "", newError(OpDecodeJSON, KindInvalidUTF8, "string is not valid UTF-8")
	}
	return s, nil
}

// Opaque decodes base64 variable-length opaque data bounded by max.
func (v JSONValue) Opaque(max uint32) ([]byte, error) {
	b, err := v.base64()
	if err != nil {
		return nil, err
	}
	if !withinBound(len(b), max) {
		return nil, boundError(OpDecodeJSON, len(b), max)
	}
	return b, nil
}

// FixedOpaque decodes exactly n bytes: hex when n <= MaxHexOpaque, base64
// otherwise.
func (v JSONValue) FixedOpaque(n uint32) ([]byte, error) {
	if n > MaxHexOpaque {
		b, err := v.base64()
		if err != nil {
			return nil, err
		}
		if uint64(len(b)) != uint64(n) {
			return nil, fixedSizeError(OpDecodeJSON, len(b), n)
		}
		return b, nil
	}
	s, err := v.unquoted(KindByteBadFormat, "hex string")
	if err != nil {
		return nil, err
	}
	if len(s)%2 != 0 || uint64(len(s)/2) != uint64(n) {
		return nil, fixedSizeError(OpDecodeJSON, len(s)/2, n)
	}
	b := make([]byte, n)
	if _, err := hex.Decode(b, s); err != nil {
		e := newError(OpDecodeJSON, KindByteBadFormat, "invalid hex")
		e.Cause = err
		return nil, e
	}
	return b, nil
}

func (v JSONValue) base64() ([]byte, error) {
	s, err := v.unquoted(KindByteBadFormat, "base64 string")
	if err != nil {
		return nil, err
	}
	b := make([]byte, base64.StdEncoding.DecodedLen(len(s)))
	n, err := base64.StdEncoding.Decode(b, s)
	if err != nil {
		e := newError(OpDecodeJSON, KindByteBadFormat, "invalid base64")
		e.Cause = err
		return nil, e
	}
	return b[:n], nil
}

// Lookup returns the member called name of an object value.
func (v JSONValue) Lookup(name string) (JSONValue, bool, error) {
	if v.typ != jsonparser.Object {
		return JSONValue{}, false, jsonError("expected object, got %s", v.typ)
	}
	raw, typ, _, err := jsonparser.Get(v.raw, name)
	if errors.Is(err, jsonparser.KeyPathNotFoundError) {
		return JSONValue{}, false, nil
	}
	if err != nil {
		e := jsonError("member %q", name)
		e.Cause = err
		return JSONValue{}, false, e
	}
	return JSONValue{raw: raw, typ: typ}, true, nil
}

// Field is like Lookup but a missing member is an error.
func (v JSONValue) Field(name string) (JSONValue, error) {
	f, ok, err := v.Lookup(name)
	if err != nil {
		return JSONValue{}, err
	}
	if !ok {
		return JSONValue{}, newError(OpDecodeJSON, KindInvalidJSON, "missing member").At(name)
	}
	return f, nil
}

// Elements returns the elements of an array value. null reads as an empty
// array, and a string holding a JSON array is accepted in place of the
// array itself.
func (v JSONValue) Elements() ([]JSONValue, error) {
	switch v.typ {
	case jsonparser.Null:
		return nil, nil
	case jsonparser.Array:
		return v.elements()
	case jsonparser.String:
		s, err := jsonparser.ParseString(v.raw)
		if err != nil {
			return nil, jsonError("expected array, got string")
		}
		inner, err := ParseJSON([]byte(s))
		if err != nil || inner.typ != jsonparser.Array {
			return nil, jsonError("expected array, got string")
		}
		return inner.elements()
	}
	return nil, jsonError("expected array, got %s", v.typ)
}

func (v JSONValue) elements() ([]JSONValue, error) {
	var (
		items []JSONValue
		cbErr error
	)
	_, err := jsonparser.ArrayEach(v.raw, func(raw []byte, typ jsonparser.ValueType, _ int, err error) {
		if err != nil {
			cbErr = err
			return
		}
		items = append(items, JSONValue{raw: raw, typ: typ})
	})
	if err == nil {
		err = cbErr
	}
	if err != nil {
		e := jsonError("malformed array")
		e.Cause = err
		return nil, e
	}
	return items, nil
}
