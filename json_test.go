package xdr

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// jsonOf runs fn against a fresh JSONWriter and returns the document.
func jsonOf(t *testing.T, fn func(w *JSONWriter)) string {
	t.Helper()
	w := NewJSONWriter()
	fn(w)
	out, err := w.BuildBytes()
	require.NoError(t, err)
	return string(out)
}

func parse(t *testing.T, doc string) JSONValue {
	t.Helper()
	j, err := ParseJSON([]byte(doc))
	require.NoError(t, err, doc)
	return j
}

// --- JSONWriter Test Suite ---

type JSONWriterTestSuite struct {
	suite.Suite
}

func (s *JSONWriterTestSuite) TestScalars() {
	t := s.T()
	s.Equal(`true`, jsonOf(t, func(w *JSONWriter) { w.Bool(true) }))
	s.Equal(`-7`, jsonOf(t, func(w *JSONWriter) { w.Int32(-7) }))
	s.Equal(`4294967295`, jsonOf(t, func(w *JSONWriter) { w.Uint32(math.MaxUint32) }))
	s.Equal(`"-1"`, jsonOf(t, func(w *JSONWriter) { w.Int64(-1) }))
	s.Equal(`"18446744073709551615"`, jsonOf(t, func(w *JSONWriter) { w.Uint64(math.MaxUint64) }))
	s.Equal(`""`, jsonOf(t, func(w *JSONWriter) { w.Void() }))
}

func (s *JSONWriterTestSuite) TestFloatsKeepDecimalPoint() {
	t := s.T()
	s.Equal(`1.0`, jsonOf(t, func(w *JSONWriter) { w.Float32(1) }))
	s.Equal(`0.1`, jsonOf(t, func(w *JSONWriter) { w.Float32(0.1) }))
	s.Equal(`-2.5`, jsonOf(t, func(w *JSONWriter) { w.Float64(-2.5) }))
	s.Equal(`100000000000000000000.0`, jsonOf(t, func(w *JSONWriter) { w.Float64(1e20) }))

	w := NewJSONWriter()
	w.Float64(math.NaN())
	_, err := w.BuildBytes()
	s.ErrorIs(err, ErrDoubleBadFormat)

	var xe *Error
	s.Require().ErrorAs(err, &xe)
	s.Equal(OpEncodeJSON, xe.Op)

	w = NewJSONWriter()
	w.Float32(float32(math.Inf(1)))
	_, err = w.BuildBytes()
	s.ErrorIs(err, ErrFloatBadFormat)
}

func (s *JSONWriterTestSuite) TestStrings() {
	t := s.T()
	s.Equal(`"a\"b\\c\n\t\u0001é<>&"`,
		jsonOf(t, func(w *JSONWriter) { w.String("a\"b\\c\n\t\x01é<>&", Unbounded) }))

	w := NewJSONWriter()
	w.String("hello", 4)
	_, err := w.BuildBytes()
	s.ErrorIs(err, ErrBoundExceeded)

	w = NewJSONWriter()
	w.String("\xff", Unbounded)
	_, err = w.BuildBytes()
	s.ErrorIs(err, ErrInvalidUTF8)
}

func (s *JSONWriterTestSuite) TestOpaque() {
	t := s.T()
	s.Equal(`"aGk="`, jsonOf(t, func(w *JSONWriter) { w.Opaque([]byte("hi"), Unbounded) }))
	s.Equal(`""`, jsonOf(t, func(w *JSONWriter) { w.Opaque(nil, Unbounded) }))
	s.Equal(`"deadbeef"`, jsonOf(t, func(w *JSONWriter) { w.FixedOpaque([]byte{0xDE, 0xAD, 0xBE, 0xEF}, 4) }))

	hex64 := jsonOf(t, func(w *JSONWriter) { w.FixedOpaque(make([]byte, MaxHexOpaque), MaxHexOpaque) })
	s.Equal(`"`+string(bytes.Repeat([]byte("0"), 2*MaxHexOpaque))+`"`, hex64)

	big := jsonOf(t, func(w *JSONWriter) { w.FixedOpaque(make([]byte, MaxHexOpaque+1), MaxHexOpaque+1) })
	s.Equal(`"`+string(bytes.Repeat([]byte("A"), 87))+`="`, big)

	w := NewJSONWriter()
	w.FixedOpaque([]byte{1, 2, 3}, 4)
	_, err := w.BuildBytes()
	s.ErrorIs(err, ErrFixedSize)
}

func (s *JSONWriterTestSuite) TestContainers() {
	out := jsonOf(s.T(), func(w *JSONWriter) {
		w.BeginObject()
		w.Key("a")
		w.BeginArray()
		w.Int32(1)
		w.Int32(2)
		w.BeginArray()
		w.EndArray()
		w.EndArray()
		w.Key("b\n")
		w.BeginObject()
		w.Key("c")
		w.Bool(false)
		w.EndObject()
		w.Key("d")
		w.Raw([]byte(`{"x":null}`))
		w.EndObject()
	})
	s.Equal(`{"a":[1,2,[]],"b\n":{"c":false},"d":{"x":null}}`, out)
}

func (s *JSONWriterTestSuite) TestErrorIsSticky() {
	w := NewJSONWriter()
	w.BeginArray()
	w.Int32(1)
	w.Float64(math.Inf(-1))
	w.Int32(2)
	w.EndArray()

	_, err := w.BuildBytes()
	s.ErrorIs(err, ErrDoubleBadFormat)

	var buf bytes.Buffer
	_, err = w.DumpTo(&buf)
	s.Error(err)
	s.Zero(buf.Len())
}

func TestJSONWriter(t *testing.T) {
	suite.Run(t, new(JSONWriterTestSuite))
}

// --- JSONValue ---

func TestParseJSON(t *testing.T) {
	for _, doc := range []string{``, `{`, `{"a":1} x`, `[1,]`} {
		_, err := ParseJSON([]byte(doc))
		assert.ErrorIs(t, err, ErrInvalidJSON, doc)
	}

	j := parse(t, ` {"a": [1, "x"]} `)
	assert.True(t, j.IsObject())
}

func TestJSONValueScalars(t *testing.T) {
	b, err := parse(t, `true`).Bool()
	require.NoError(t, err)
	assert.True(t, b)

	i, err := parse(t, `-2147483648`).Int32()
	require.NoError(t, err)
	assert.EqualValues(t, math.MinInt32, i)

	u, err := parse(t, `4294967295`).Uint32()
	require.NoError(t, err)
	assert.EqualValues(t, uint32(math.MaxUint32), u)

	h, err := parse(t, `"-9223372036854775808"`).Int64()
	require.NoError(t, err)
	assert.EqualValues(t, int64(math.MinInt64), h)

	uh, err := parse(t, `"18446744073709551615"`).Uint64()
	require.NoError(t, err)
	assert.EqualValues(t, uint64(math.MaxUint64), uh)

	f, err := parse(t, `1.5`).Float32()
	require.NoError(t, err)
	assert.EqualValues(t, float32(1.5), f)

	d, err := parse(t, `2`).Float64()
	require.NoError(t, err)
	assert.EqualValues(t, 2.0, d)

	assert.NoError(t, parse(t, `""`).Void())
}

func TestJSONValueScalarErrors(t *testing.T) {
	tests := []struct {
		doc  string
		get  func(JSONValue) error
		want error
	}{
		{`1`, func(j JSONValue) error { _, err := j.Bool(); return err }, ErrBoolBadFormat},
		{`"1"`, func(j JSONValue) error { _, err := j.Int32(); return err }, ErrIntBadFormat},
		{`2147483648`, func(j JSONValue) error { _, err := j.Int32(); return err }, ErrIntBadFormat},
		{`1.5`, func(j JSONValue) error { _, err := j.Int32(); return err }, ErrIntBadFormat},
		{`-1`, func(j JSONValue) error { _, err := j.Uint32(); return err }, ErrUintBadFormat},
		{`1`, func(j JSONValue) error { _, err := j.Int64(); return err }, ErrHyperBadFormat},
		{`"1e3"`, func(j JSONValue) error { _, err := j.Int64(); return err }, ErrHyperBadFormat},
		{`"-1"`, func(j JSONValue) error { _, err := j.Uint64(); return err }, ErrUhyperBadFormat},
		{`"1.5"`, func(j JSONValue) error { _, err := j.Float32(); return err }, ErrFloatBadFormat},
		{`null`, func(j JSONValue) error { _, err := j.Float64(); return err }, ErrDoubleBadFormat},
		{`"x"`, func(j JSONValue) error { return j.Void() }, ErrInvalidJSON},
		{`null`, func(j JSONValue) error { return j.Void() }, ErrInvalidJSON},
		{`7`, func(j JSONValue) error { _, err := j.Text(Unbounded); return err }, ErrStringBadFormat},
	}
	for _, tt := range tests {
		err := tt.get(parse(t, tt.doc))
		assert.ErrorIs(t, err, tt.want, tt.doc)

		var xe *Error
		if assert.ErrorAs(t, err, &xe) {
			assert.Equal(t, OpDecodeJSON, xe.Op)
		}
	}
}

func TestJSONValueEscapedQuotedValues(t *testing.T) {
	h, err := parse(t, `"\u002d12"`).Int64()
	require.NoError(t, err)
	assert.EqualValues(t, -12, h)

	uh, err := parse(t, `"\u0031\u0030"`).Uint64()
	require.NoError(t, err)
	assert.EqualValues(t, 10, uh)

	b, err := parse(t, `"\/w=="`).Opaque(Unbounded)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF}, b)

	b, err = parse(t, `"\u0061b"`).FixedOpaque(1)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xAB}, b)

	var blob []byte
	require.NoError(t, UnmarshalJSON([]byte(`"\/w=="`), &blob))
	assert.Equal(t, []byte{0xFF}, blob)
}

func TestJSONValueText(t *testing.T) {
	s, err := parse(t, `"a\nbé\"q"`).Text(Unbounded)
	require.NoError(t, err)
	assert.Equal(t, "a\nbé\"q", s)

	_, err = parse(t, `"abc"`).Text(2)
	assert.ErrorIs(t, err, ErrBoundExceeded)

	s, err = parse(t, `"ab"`).Text(2)
	require.NoError(t, err)
	assert.Equal(t, "ab", s)
}

func TestJSONValueOpaque(t *testing.T) {
	b, err := parse(t, `"aGk="`).Opaque(Unbounded)
	require.NoError(t, err)
	assert.Equal(t, []byte("hi"), b)

	b, err = parse(t, `""`).Opaque(Unbounded)
	require.NoError(t, err)
	assert.Empty(t, b)

	_, err = parse(t, `"aGk="`).Opaque(1)
	assert.ErrorIs(t, err, ErrBoundExceeded)

	_, err = parse(t, `"!!!"`).Opaque(Unbounded)
	assert.ErrorIs(t, err, ErrByteBadFormat)

	_, err = parse(t, `[1]`).Opaque(Unbounded)
	assert.ErrorIs(t, err, ErrByteBadFormat)

	b, err = parse(t, `"DEADbeef"`).FixedOpaque(4)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xDE, 0xAD, 0xBE, 0xEF}, b)

	_, err = parse(t, `"deadbe"`).FixedOpaque(4)
	assert.ErrorIs(t, err, ErrFixedSize)

	_, err = parse(t, `"zzzzzzzz"`).FixedOpaque(4)
	assert.ErrorIs(t, err, ErrByteBadFormat)

	big := make([]byte, MaxHexOpaque+1)
	doc := jsonOf(t, func(w *JSONWriter) { w.FixedOpaque(big, MaxHexOpaque+1) })
	b, err = parse(t, doc).FixedOpaque(MaxHexOpaque + 1)
	require.NoError(t, err)
	assert.Equal(t, big, b)

	_, err = parse(t, doc).FixedOpaque(MaxHexOpaque + 2)
	assert.ErrorIs(t, err, ErrFixedSize)
}

func TestJSONValueMembers(t *testing.T) {
	j := parse(t, `{"a":1,"b":{"c":"x"}}`)

	b, err := j.Field("b")
	require.NoError(t, err)
	c, ok, err := b.Lookup("c")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, c.IsString())
	assert.Equal(t, []byte("x"), c.Raw())

	_, ok, err = j.Lookup("z")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = j.Field("z")
	assert.ErrorIs(t, err, ErrInvalidJSON)
	var xe *Error
	require.ErrorAs(t, err, &xe)
	assert.Equal(t, []string{"z"}, xe.Path)

	_, _, err = parse(t, `[1]`).Lookup("a")
	assert.ErrorIs(t, err, ErrInvalidJSON)
}

func TestJSONValueElements(t *testing.T) {
	elems, err := parse(t, `[1, "x", [2], {"a":3}, null]`).Elements()
	require.NoError(t, err)
	require.Len(t, elems, 5)
	assert.True(t, elems[0].IsNumber())
	assert.True(t, elems[2].IsArray())
	assert.True(t, elems[3].IsObject())
	assert.True(t, elems[4].IsNull())

	elems, err = parse(t, `null`).Elements()
	require.NoError(t, err)
	assert.Empty(t, elems)

	elems, err = parse(t, `"[1,2]"`).Elements()
	require.NoError(t, err)
	require.Len(t, elems, 2)

	elems, err = parse(t, `"[\"a\"]"`).Elements()
	require.NoError(t, err)
	require.Len(t, elems, 1)
	s, err := elems[0].Text(Unbounded)
	require.NoError(t, err)
	assert.Equal(t, "a", s)

	for _, doc := range []string{`"x"`, `"{}"`, `{}`, `3`} {
		_, err := parse(t, doc).Elements()
		assert.ErrorIs(t, err, ErrInvalidJSON, doc)
	}
}
