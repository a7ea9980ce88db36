package xdr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type UnionTestSuite struct {
	suite.Suite
	vs *Variants
}

func (s *UnionTestSuite) SetupSuite() {
	s.vs = MustVariants(
		Case("First"),
		Case("Second"),
		Unit("Stop", 10),
		CaseTag("Neg", -5),
		Case("Third"),
	)
}

func (s *UnionTestSuite) TestNumbering() {
	want := map[string]int32{"First": 0, "Second": 1, "Stop": 10, "Neg": -5, "Third": 3}
	for name, tag := range want {
		v, ok := s.vs.ByName(name)
		s.Require().True(ok, name)
		s.Assert().Equal(tag, v.Tag, name)
	}
	s.Assert().Equal(5, s.vs.Len())
	s.Assert().False(s.vs.UnitOnly())

	stop, ok := s.vs.Lookup(10)
	s.Require().True(ok)
	s.Assert().True(stop.Unit)
	s.Assert().Equal(2, stop.Index)

	_, ok = s.vs.Lookup(2)
	s.Assert().False(ok, "the slot taken by Neg is not reused")
}

func (s *UnionTestSuite) TestDuplicates() {
	_, err := NewVariants(Case("A"), Unit("B", 0))
	s.Assert().ErrorIs(err, ErrInvalidSchema)

	_, err = NewVariants(Unit("A", 1), Unit("A", 2))
	s.Assert().ErrorIs(err, ErrInvalidSchema)

	s.Assert().Panics(func() { MustVariants(Case("A"), CaseTag("B", 0)) })
}

func (s *UnionTestSuite) TestPayloadVariant() {
	data := encode(s.T(), func(w *Writer) {
		WriteUnion(w, s.vs, 0, func(w *Writer) { w.WriteUint32(3) })
	})
	s.Assert().Equal([]byte{0, 0, 0, 0, 0, 0, 0, 3}, data)

	var got uint32
	r := newReader(data)
	v, ok := ReadUnion(r, s.vs, func(v Variant, r *Reader) {
		s.Assert().Equal("First", v.Name)
		r.ReadUint32(&got)
	})
	s.Require().True(ok)
	s.Assert().Equal(int32(0), v.Tag)
	s.Assert().EqualValues(3, got)

	w := NewJSONWriter()
	WriteUnionJSON(w, s.vs, 0, func(w *JSONWriter) { w.Uint32(3) })
	out, err := w.BuildBytes()
	s.Require().NoError(err)
	s.Assert().Equal(`{"type":0,"data":3}`, string(out))

	j, err := ParseJSON(out)
	s.Require().NoError(err)
	v, err = ReadUnionJSON(j, s.vs, func(_ Variant, data JSONValue) (err error) {
		got, err = data.Uint32()
		return err
	})
	s.Require().NoError(err)
	s.Assert().Equal("First", v.Name)
	s.Assert().EqualValues(3, got)
}

func (s *UnionTestSuite) TestUnitVariant() {
	called := false
	data := encode(s.T(), func(w *Writer) {
		WriteUnion(w, s.vs, 10, func(*Writer) { called = true })
	})
	s.Assert().Equal([]byte{0, 0, 0, 10}, data)
	s.Assert().False(called)

	w := NewJSONWriter()
	WriteUnionJSON(w, s.vs, 10, nil)
	out, err := w.BuildBytes()
	s.Require().NoError(err)
	s.Assert().Equal(`{"type":10,"data":""}`, string(out))

	for _, doc := range []string{`{"type":10,"data":""}`, `{"type":10}`, `10`} {
		j, err := ParseJSON([]byte(doc))
		s.Require().NoError(err)
		v, err := ReadUnionJSON(j, s.vs, nil)
		s.Require().NoError(err, doc)
		s.Assert().Equal("Stop", v.Name)
	}
}

func (s *UnionTestSuite) TestUnknownDiscriminant() {
	out, err := encodeErr(func(w *Writer) { WriteUnion(w, s.vs, 7, nil) })
	s.Assert().ErrorIs(err, ErrInvalidEnum)
	s.Assert().Empty(out)

	r := newReader([]byte{0, 0, 0, 7})
	_, ok := ReadUnion(r, s.vs, nil)
	s.Assert().False(ok)
	s.Assert().ErrorIs(r.Err(), ErrInvalidEnum)

	r = newReader([]byte{0, 0})
	_, ok = ReadUnion(r, s.vs, nil)
	s.Assert().False(ok)
	s.Assert().ErrorIs(r.Err(), ErrIntBadFormat)

	j, err := ParseJSON([]byte(`{"type":7,"data":""}`))
	s.Require().NoError(err)
	_, err = ReadUnionJSON(j, s.vs, nil)
	s.Assert().ErrorIs(err, ErrInvalidEnum)

	w := NewJSONWriter()
	WriteUnionJSON(w, s.vs, 7, nil)
	_, err = w.BuildBytes()
	s.Assert().ErrorIs(err, ErrInvalidEnum)
}

func (s *UnionTestSuite) TestMalformedJSON() {
	for _, doc := range []string{
		`0`,          // bare integer naming a payload variant
		`{"type":0}`, // payload variant without data
		`{"data":3}`, // no discriminant
		`"First"`,    // names are not accepted
	} {
		j, err := ParseJSON([]byte(doc))
		s.Require().NoError(err)
		_, err = ReadUnionJSON(j, s.vs, func(Variant, JSONValue) error { return nil })
		s.Assert().ErrorIs(err, ErrInvalidJSON, doc)
	}

	j, err := ParseJSON([]byte(`{"type":"0","data":3}`))
	s.Require().NoError(err)
	_, err = ReadUnionJSON(j, s.vs, nil)
	s.Assert().ErrorIs(err, ErrIntBadFormat)
}

func TestUnion(t *testing.T) {
	suite.Run(t, new(UnionTestSuite))
}

var colors = MustVariants(Unit("Red", 0), Unit("Green", 1), Unit("Blue", 4))

func TestEnum(t *testing.T) {
	require.True(t, colors.UnitOnly())

	data := encode(t, func(w *Writer) { WriteEnum(w, colors, 4) })
	assert.Equal(t, []byte{0, 0, 0, 4}, data)

	var tag int32
	r := newReader(data)
	ReadEnum(r, colors, &tag)
	require.NoError(t, r.Err())
	assert.EqualValues(t, 4, tag)

	r = newReader([]byte{0, 0, 0, 2})
	ReadEnum(r, colors, &tag)
	assert.ErrorIs(t, r.Err(), ErrInvalidEnum)

	w := NewJSONWriter()
	WriteUnionJSON(w, colors, 1, nil)
	out, err := w.BuildBytes()
	require.NoError(t, err)
	assert.Equal(t, `1`, string(out))

	j, err := ParseJSON([]byte(`4`))
	require.NoError(t, err)
	tag, err = ReadEnumJSON(j, colors)
	require.NoError(t, err)
	assert.EqualValues(t, 4, tag)

	j, err = ParseJSON([]byte(`3`))
	require.NoError(t, err)
	_, err = ReadEnumJSON(j, colors)
	assert.ErrorIs(t, err, ErrInvalidEnum)

	// Payload variants cannot be read as enums.
	mixed := MustVariants(Case("Some"), Unit("None", 1))
	r = newReader([]byte{0, 0, 0, 0})
	ReadEnum(r, mixed, &tag)
	assert.ErrorIs(t, r.Err(), ErrInvalidEnum)
}
