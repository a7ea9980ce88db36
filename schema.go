package xdr

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/puzpuzpuz/xsync/v4"
	"go.uber.org/zap"
)

// plan is the compiled codec of one Go type. Every function receives an
// addressable value: encoders read from it, decoders write into it.
type plan struct {
	typ        reflect.Type
	minSize    int // smallest possible binary encoding, 0 for zero-width types
	encode     func(w *Writer, v reflect.Value)
	decode     func(r *Reader, v reflect.Value)
	encodeJSON func(w *JSONWriter, v reflect.Value)
	decodeJSON func(j JSONValue, v reflect.Value) error
}

// plans caches compiled plans. Reflection is paid once per type; the cache
// is concurrent-safe and only ever grows.
var plans = xsync.NewMap[reflect.Type, *plan]()

var (
	voidType            = reflect.TypeFor[Void]()
	marshalerType       = reflect.TypeFor[Marshaler]()
	unmarshalerType     = reflect.TypeFor[Unmarshaler]()
	jsonMarshalerType   = reflect.TypeFor[JSONMarshaler]()
	jsonUnmarshalerType = reflect.TypeFor[JSONUnmarshaler]()
	enumType            = reflect.TypeFor[Enum]()
)

// planFor returns the cached plan for t, compiling it on first use.
func planFor(t reflect.Type) (*plan, error) {
	if p, ok := plans.Load(t); ok {
		return p, nil
	}
	c := &compiler{seen: make(map[reflect.Type]*plan)}
	p, err := c.compile(t)
	if err != nil {
		Logger().Debug("xdr plan compilation failed", zap.Stringer("type", t), zap.Error(err))
		return nil, err
	}
	for typ, q := range c.seen {
		plans.LoadOrStore(typ, q)
	}
	Logger().Debug("compiled xdr plan", zap.Stringer("type", t), zap.Int("types", len(c.seen)))
	return p, nil
}

// compiler holds the plans of one compilation. A plan is registered before
// its body is built so that recursive types resolve to the plan in progress.
type compiler struct {
	seen map[reflect.Type]*plan
}

func (c *compiler) compile(t reflect.Type) (*plan, error) {
	if p, ok := c.seen[t]; ok {
		return p, nil
	}
	if p, ok := plans.Load(t); ok {
		return p, nil
	}
	p := &plan{typ: t}
	c.seen[t] = p
	if err := c.build(p, t); err != nil {
		return nil, err
	}
	return p, nil
}

func (c *compiler) build(p *plan, t reflect.Type) error {
	custom := c.custom(p, t)
	if custom == 4 {
		p.minSize = 1
		return nil
	}

	base, err := c.reflected(t)
	switch {
	case err != nil && custom == 0:
		return err
	case err != nil:
		// Partially hand-written types need no reflected form until the
		// missing direction is used.
		base = failingPlan(t, err)
	}
	p.minSize = base.minSize
	if custom > 0 {
		// Hand-written encoders may emit anything.
		p.minSize = 1
	}
	if p.encode == nil {
		p.encode = base.encode
	}
	if p.decode == nil {
		p.decode = base.decode
	}
	if p.encodeJSON == nil {
		p.encodeJSON = base.encodeJSON
	}
	if p.decodeJSON == nil {
		p.decodeJSON = base.decodeJSON
	}
	return nil
}

func failingPlan(t reflect.Type, err error) *plan {
	return &plan{
		typ:        t,
		encode:     func(w *Writer, _ reflect.Value) { w.Fail(err) },
		decode:     func(r *Reader, _ reflect.Value) { r.Fail(err) },
		encodeJSON: func(w *JSONWriter, _ reflect.Value) { w.Fail(err) },
		decodeJSON: func(JSONValue, reflect.Value) error { return err },
	}
}

// custom installs the hand-written codec methods t implements and returns
// how many it found.
func (c *compiler) custom(p *plan, t reflect.Type) int {
	if t.Kind() == reflect.Pointer || t.Kind() == reflect.Interface {
		return 0
	}
	pt := reflect.PointerTo(t)
	n := 0
	if pt.Implements(marshalerType) {
		p.encode = func(w *Writer, v reflect.Value) {
			v.Addr().Interface().(Marshaler).EncodeXDR(w)
		}
		n++
	}
	if pt.Implements(unmarshalerType) {
		p.decode = func(r *Reader, v reflect.Value) {
			v.Addr().Interface().(Unmarshaler).DecodeXDR(r)
		}
		n++
	}
	if pt.Implements(jsonMarshalerType) {
		p.encodeJSON = func(w *JSONWriter, v reflect.Value) {
			v.Addr().Interface().(JSONMarshaler).EncodeJSON(w)
		}
		n++
	}
	if pt.Implements(jsonUnmarshalerType) {
		p.decodeJSON = func(j JSONValue, v reflect.Value) error {
			return v.Addr().Interface().(JSONUnmarshaler).DecodeJSON(j)
		}
		n++
	}
	return n
}

func hasCustom(t reflect.Type) bool {
	pt := reflect.PointerTo(t)
	return pt.Implements(marshalerType) || pt.Implements(unmarshalerType) ||
		pt.Implements(jsonMarshalerType) || pt.Implements(jsonUnmarshalerType)
}

// reflected builds the plan derived from t's structure.
func (c *compiler) reflected(t reflect.Type) (*plan, error) {
	if t == voidType {
		return voidPlan(t), nil
	}
	if t.Kind() == reflect.Int32 && reflect.PointerTo(t).Implements(enumType) {
		return enumPlan(t)
	}

	switch t.Kind() {
	case reflect.Bool:
		return scalarPlan(t, 4, reflect.Value.Bool, reflect.Value.SetBool,
			(*Writer).WriteBool, (*Reader).ReadBool, (*JSONWriter).Bool, JSONValue.Bool), nil
	case reflect.Int32:
		return scalarPlan(t, 4, getInt[int32], setInt[int32],
			(*Writer).WriteInt32, (*Reader).ReadInt32, (*JSONWriter).Int32, JSONValue.Int32), nil
	case reflect.Uint32:
		return scalarPlan(t, 4, getUint[uint32], setUint[uint32],
			(*Writer).WriteUint32, (*Reader).ReadUint32, (*JSONWriter).Uint32, JSONValue.Uint32), nil
	case reflect.Int64:
		return scalarPlan(t, 8, getInt[int64], setInt[int64],
			(*Writer).WriteInt64, (*Reader).ReadInt64, (*JSONWriter).Int64, JSONValue.Int64), nil
	case reflect.Uint64:
		return scalarPlan(t, 8, getUint[uint64], setUint[uint64],
			(*Writer).WriteUint64, (*Reader).ReadUint64, (*JSONWriter).Uint64, JSONValue.Uint64), nil
	case reflect.Float32:
		return scalarPlan(t, 4, getFloat[float32], setFloat[float32],
			(*Writer).WriteFloat32, (*Reader).ReadFloat32, (*JSONWriter).Float32, JSONValue.Float32), nil
	case reflect.Float64:
		return scalarPlan(t, 8, getFloat[float64], setFloat[float64],
			(*Writer).WriteFloat64, (*Reader).ReadFloat64, (*JSONWriter).Float64, JSONValue.Float64), nil
	case reflect.String:
		return stringPlan(t, Unbounded), nil
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return opaquePlan(t, Unbounded), nil
		}
		elem, err := c.compile(t.Elem())
		if err != nil {
			return nil, err
		}
		return varArrayPlan(t, elem, Unbounded)
	case reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return fixedOpaqueArrayPlan(t), nil
		}
		elem, err := c.compile(t.Elem())
		if err != nil {
			return nil, err
		}
		return fixedArrayPlan(t, elem), nil
	case reflect.Pointer:
		elem, err := c.compile(t.Elem())
		if err != nil {
			return nil, err
		}
		return optionalPlan(t, elem), nil
	case reflect.Struct:
		if isUnion(t) {
			return c.unionPlan(t)
		}
		return c.recordPlan(t)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
}

// fieldPlan applies the size options of a struct tag to t.
func (c *compiler) fieldPlan(t reflect.Type, tag fieldTag) (*plan, error) {
	if !tag.sized() {
		return c.compile(t)
	}
	if hasCustom(t) {
		return nil, fmt.Errorf("%w: field %s: size options on %s, which has its own codec", ErrInvalidSchema, tag.name, t)
	}

	switch t.Kind() {
	case reflect.Pointer:
		elem, err := c.fieldPlan(t.Elem(), tag)
		if err != nil {
			return nil, err
		}
		return optionalPlan(t, elem), nil
	case reflect.String:
		if tag.hasVar {
			return stringPlan(t, tag.bound), nil
		}
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			if tag.hasFixed {
				return fixedOpaquePlan(t, tag.fixed), nil
			}
			return opaquePlan(t, tag.bound), nil
		}
		elem, err := c.compile(t.Elem())
		if err != nil {
			return nil, err
		}
		if tag.hasFixed {
			return fixedSlicePlan(t, elem, tag.fixed), nil
		}
		return varArrayPlan(t, elem, tag.bound)
	case reflect.Array:
		if tag.hasFixed && uint64(t.Len()) == uint64(tag.fixed) {
			return c.compile(t)
		}
	}
	return nil, fmt.Errorf("%w: field %s: size option does not apply to %s", ErrInvalidSchema, tag.name, t)
}

// withPath prefixes codec errors with the member or index they occurred in.
func withPath(err error, name string) error {
	if e, ok := err.(*Error); ok {
		return e.At(name)
	}
	return err
}

// --- scalars ---

func getInt[T int32 | int64](v reflect.Value) T       { return T(v.Int()) }
func setInt[T int32 | int64](v reflect.Value, x T)    { v.SetInt(int64(x)) }
func getUint[T uint32 | uint64](v reflect.Value) T    { return T(v.Uint()) }
func setUint[T uint32 | uint64](v reflect.Value, x T) { v.SetUint(uint64(x)) }
func getFloat[T float32 | float64](v reflect.Value) T { return T(v.Float()) }
func setFloat[T float32 | float64](v reflect.Value, x T) {
	v.SetFloat(float64(x))
}

func scalarPlan[T any](
	t reflect.Type, size int,
	get func(reflect.Value) T, set func(reflect.Value, T),
	enc EncodeFunc[T], dec DecodeFunc[T],
	encJSON EncodeJSONFunc[T], decJSON func(JSONValue) (T, error),
) *plan {
	return &plan{
		typ:     t,
		minSize: size,
		encode:  func(w *Writer, v reflect.Value) { enc(w, get(v)) },
		decode: func(r *Reader, v reflect.Value) {
			var x T
			dec(r, &x)
			if r.err == nil {
				set(v, x)
			}
		},
		encodeJSON: func(w *JSONWriter, v reflect.Value) { encJSON(w, get(v)) },
		decodeJSON: func(j JSONValue, v reflect.Value) error {
			x, err := decJSON(j)
			if err != nil {
				return err
			}
			set(v, x)
			return nil
		},
	}
}

func voidPlan(t reflect.Type) *plan {
	return &plan{
		typ:        t,
		encode:     func(*Writer, reflect.Value) {},
		decode:     func(*Reader, reflect.Value) {},
		encodeJSON: func(w *JSONWriter, _ reflect.Value) { w.Void() },
		decodeJSON: func(j JSONValue, _ reflect.Value) error { return j.Void() },
	}
}

func enumPlan(t reflect.Type) (*plan, error) {
	vs := reflect.New(t).Interface().(Enum).XDRVariants()
	if vs == nil || !vs.UnitOnly() {
		return nil, fmt.Errorf("%w: enum %s must declare unit variants only", ErrInvalidSchema, t)
	}
	return &plan{
		typ:     t,
		minSize: 4,
		encode: func(w *Writer, v reflect.Value) {
			WriteEnum(w, vs, int32(v.Int()))
		},
		decode: func(r *Reader, v reflect.Value) {
			var tag int32
			ReadEnum(r, vs, &tag)
			if r.err == nil {
				v.SetInt(int64(tag))
			}
		},
		encodeJSON: func(w *JSONWriter, v reflect.Value) {
			WriteUnionJSON(w, vs, int32(v.Int()), nil)
		},
		decodeJSON: func(j JSONValue, v reflect.Value) error {
			tag, err := ReadEnumJSON(j, vs)
			if err != nil {
				return err
			}
			v.SetInt(int64(tag))
			return nil
		},
	}, nil
}

// --- text and opaque ---

func stringPlan(t reflect.Type, max uint32) *plan {
	return &plan{
		typ:     t,
		minSize: 4,
		encode:  func(w *Writer, v reflect.Value) { w.WriteString(v.String(), max) },
		decode: func(r *Reader, v reflect.Value) {
			var s string
			r.ReadString(&s, max)
			if r.err == nil {
				v.SetString(s)
			}
		},
		encodeJSON: func(w *JSONWriter, v reflect.Value) { w.String(v.String(), max) },
		decodeJSON: func(j JSONValue, v reflect.Value) error {
			s, err := j.Text(max)
			if err != nil {
				return err
			}
			v.SetString(s)
			return nil
		},
	}
}

func opaquePlan(t reflect.Type, max uint32) *plan {
	return &plan{
		typ:     t,
		minSize: 4,
		encode:  func(w *Writer, v reflect.Value) { w.WriteOpaque(v.Bytes(), max) },
		decode: func(r *Reader, v reflect.Value) {
			var b []byte
			r.ReadOpaque(&b, max)
			if r.err == nil {
				v.SetBytes(b)
			}
		},
		encodeJSON: func(w *JSONWriter, v reflect.Value) { w.Opaque(v.Bytes(), max) },
		decodeJSON: func(j JSONValue, v reflect.Value) error {
			b, err := j.Opaque(max)
			if err != nil {
				return err
			}
			v.SetBytes(b)
			return nil
		},
	}
}

// fixedOpaquePlan backs []byte fields tagged fixed=N.
func fixedOpaquePlan(t reflect.Type, n uint32) *plan {
	return &plan{
		typ:     t,
		minSize: Roundup(int(n), Alignment),
		encode:  func(w *Writer, v reflect.Value) { w.WriteFixedOpaque(v.Bytes(), n) },
		decode: func(r *Reader, v reflect.Value) {
			var b []byte
			r.ReadFixedOpaque(&b, n)
			if r.err == nil {
				v.SetBytes(b)
			}
		},
		encodeJSON: func(w *JSONWriter, v reflect.Value) { w.FixedOpaque(v.Bytes(), n) },
		decodeJSON: func(j JSONValue, v reflect.Value) error {
			b, err := j.FixedOpaque(n)
			if err != nil {
				return err
			}
			v.SetBytes(b)
			return nil
		},
	}
}

// fixedOpaqueArrayPlan backs [N]byte. The array length is the declared size,
// so encoding cannot mismatch.
func fixedOpaqueArrayPlan(t reflect.Type) *plan {
	n := uint32(t.Len())
	return &plan{
		typ:     t,
		minSize: Roundup(t.Len(), Alignment),
		encode:  func(w *Writer, v reflect.Value) { w.WriteFixedOpaque(v.Bytes(), n) },
		decode:  func(r *Reader, v reflect.Value) { r.ReadFixedOpaqueInto(v.Bytes()) },
		encodeJSON: func(w *JSONWriter, v reflect.Value) {
			w.FixedOpaque(v.Bytes(), n)
		},
		decodeJSON: func(j JSONValue, v reflect.Value) error {
			b, err := j.FixedOpaque(n)
			if err != nil {
				return err
			}
			copy(v.Bytes(), b)
			return nil
		},
	}
}

// --- arrays ---

func encodeElems(w *Writer, elem *plan, v reflect.Value) {
	for i := 0; i < v.Len() && w.err == nil; i++ {
		elem.encode(w, v.Index(i))
		if w.err != nil {
			w.err = withPath(w.err, strconv.Itoa(i))
		}
	}
}

func encodeElemsJSON(w *JSONWriter, elem *plan, v reflect.Value) {
	w.BeginArray()
	for i := 0; i < v.Len() && w.err == nil; i++ {
		elem.encodeJSON(w, v.Index(i))
		if w.err != nil {
			w.err = withPath(w.err, strconv.Itoa(i))
		}
	}
	w.EndArray()
}

// decodeElemsJSON decodes elems into the first len(elems) slots of v.
func decodeElemsJSON(elems []JSONValue, elem *plan, v reflect.Value) error {
	for i, e := range elems {
		if err := elem.decodeJSON(e, v.Index(i)); err != nil {
			return withPath(err, strconv.Itoa(i))
		}
	}
	return nil
}

// varArrayPlan backs []T. Elements that encode to zero bytes are rejected:
// a length prefix would then drive an unbounded loop that consumes no input.
func varArrayPlan(t reflect.Type, elem *plan, max uint32) (*plan, error) {
	if elem.minSize == 0 && elemSizeKnown(elem) {
		return nil, fmt.Errorf("%w: variable array of zero-width %s", ErrUnsupportedType, elem.typ)
	}
	return &plan{
		typ:     t,
		minSize: 4,
		encode: func(w *Writer, v reflect.Value) {
			if w.writeLength(v.Len(), max) {
				encodeElems(w, elem, v)
			}
		},
		decode: func(r *Reader, v reflect.Value) {
			n, ok := r.readLength(max, KindUintBadFormat)
			if !ok {
				return
			}
			s := reflect.MakeSlice(t, 0, r.preallocLen(n, t.Elem().Size(), elem.minSize))
			zero := reflect.Zero(t.Elem())
			for i := 0; i < n; i++ {
				s = reflect.Append(s, zero)
				elem.decode(r, s.Index(i))
				if r.err != nil {
					r.err = withPath(r.err, strconv.Itoa(i))
					return
				}
			}
			v.Set(s)
		},
		encodeJSON: func(w *JSONWriter, v reflect.Value) {
			if !withinBound(v.Len(), max) {
				w.Fail(boundError(OpEncodeJSON, v.Len(), max))
				return
			}
			encodeElemsJSON(w, elem, v)
		},
		decodeJSON: func(j JSONValue, v reflect.Value) error {
			elems, err := j.Elements()
			if err != nil {
				return err
			}
			if !withinBound(len(elems), max) {
				return boundError(OpDecodeJSON, len(elems), max)
			}
			s := reflect.MakeSlice(t, len(elems), len(elems))
			if err := decodeElemsJSON(elems, elem, s); err != nil {
				return err
			}
			v.Set(s)
			return nil
		},
	}, nil
}

// elemSizeKnown reports whether elem's minimum size is final. Plans still
// being compiled (recursive references) are always reached through a
// pointer or slice and therefore never zero-width.
func elemSizeKnown(elem *plan) bool { return elem.encode != nil }

// fixedSlicePlan backs []T fields tagged fixed=N.
func fixedSlicePlan(t reflect.Type, elem *plan, n uint32) *plan {
	return &plan{
		typ:     t,
		minSize: int(n) * elem.minSize,
		encode: func(w *Writer, v reflect.Value) {
			if uint64(v.Len()) != uint64(n) {
				w.Fail(fixedSizeError(OpEncode, v.Len(), n))
				return
			}
			encodeElems(w, elem, v)
		},
		decode: func(r *Reader, v reflect.Value) {
			s := reflect.MakeSlice(t, 0, r.preallocLen(int(n), t.Elem().Size(), elem.minSize))
			zero := reflect.Zero(t.Elem())
			for i := 0; i < int(n); i++ {
				s = reflect.Append(s, zero)
				elem.decode(r, s.Index(i))
				if r.err != nil {
					r.err = withPath(r.err, strconv.Itoa(i))
					return
				}
			}
			v.Set(s)
		},
		encodeJSON: func(w *JSONWriter, v reflect.Value) {
			if uint64(v.Len()) != uint64(n) {
				w.Fail(fixedSizeError(OpEncodeJSON, v.Len(), n))
				return
			}
			encodeElemsJSON(w, elem, v)
		},
		decodeJSON: func(j JSONValue, v reflect.Value) error {
			elems, err := j.Elements()
			if err != nil {
				return err
			}
			if uint64(len(elems)) != uint64(n) {
				return fixedSizeError(OpDecodeJSON, len(elems), n)
			}
			s := reflect.MakeSlice(t, len(elems), len(elems))
			if err := decodeElemsJSON(elems, elem, s); err != nil {
				return err
			}
			v.Set(s)
			return nil
		},
	}
}

// fixedArrayPlan backs [N]T.
func fixedArrayPlan(t reflect.Type, elem *plan) *plan {
	n := t.Len()
	return &plan{
		typ:     t,
		minSize: n * elem.minSize,
		encode:  func(w *Writer, v reflect.Value) { encodeElems(w, elem, v) },
		decode: func(r *Reader, v reflect.Value) {
			for i := 0; i < n; i++ {
				elem.decode(r, v.Index(i))
				if r.err != nil {
					r.err = withPath(r.err, strconv.Itoa(i))
					return
				}
			}
		},
		encodeJSON: func(w *JSONWriter, v reflect.Value) { encodeElemsJSON(w, elem, v) },
		decodeJSON: func(j JSONValue, v reflect.Value) error {
			elems, err := j.Elements()
			if err != nil {
				return err
			}
			if len(elems) != n {
				return fixedSizeError(OpDecodeJSON, len(elems), uint32(n))
			}
			return decodeElemsJSON(elems, elem, v)
		},
	}
}

// --- optional ---

func optionalPlan(t reflect.Type, elem *plan) *plan {
	return &plan{
		typ:     t,
		minSize: 4,
		encode: func(w *Writer, v reflect.Value) {
			if v.IsNil() {
				w.WriteUint32(0)
				return
			}
			w.WriteUint32(1)
			elem.encode(w, v.Elem())
		},
		decode: func(r *Reader, v reflect.Value) {
			present, ok := r.readFlag()
			if !ok {
				return
			}
			if !present {
				v.SetZero()
				return
			}
			p := reflect.New(t.Elem())
			elem.decode(r, p.Elem())
			if r.err == nil {
				v.Set(p)
			}
		},
		encodeJSON: func(w *JSONWriter, v reflect.Value) {
			w.BeginArray()
			if !v.IsNil() {
				elem.encodeJSON(w, v.Elem())
			}
			w.EndArray()
		},
		decodeJSON: func(j JSONValue, v reflect.Value) error {
			if !j.IsArray() {
				return jsonError("optional must be an array, got %s", j.Type())
			}
			elems, err := j.elements()
			if err != nil {
				return err
			}
			switch len(elems) {
			case 0:
				v.SetZero()
				return nil
			case 1:
				p := reflect.New(t.Elem())
				if err := elem.decodeJSON(elems[0], p.Elem()); err != nil {
					return err
				}
				v.Set(p)
				return nil
			}
			return jsonError("optional holds %d elements", len(elems))
		},
	}
}

// --- records ---

type member struct {
	index int
	name  string
	plan  *plan
}

// exported returns the exported fields of t with their parsed tags.
func exported(t reflect.Type) ([]reflect.StructField, []fieldTag, error) {
	var (
		fields []reflect.StructField
		tags   []fieldTag
	)
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag, err := parseTag(f)
		if err != nil {
			return nil, nil, err
		}
		if tag.skip {
			continue
		}
		fields = append(fields, f)
		tags = append(tags, tag)
	}
	return fields, tags, nil
}

func (c *compiler) recordPlan(t reflect.Type) (*plan, error) {
	fields, tags, err := exported(t)
	if err != nil {
		return nil, err
	}
	members := make([]member, 0, len(fields))
	size := 0
	for i, f := range fields {
		if tags[i].union || tags[i].variant() {
			return nil, fmt.Errorf("%w: %s.%s: union options outside a union", ErrInvalidSchema, t, f.Name)
		}
		fp, err := c.fieldPlan(f.Type, tags[i])
		if err != nil {
			return nil, err
		}
		members = append(members, member{index: f.Index[0], name: tags[i].name, plan: fp})
		size += fp.minSize
	}

	return &plan{
		typ:     t,
		minSize: size,
		encode: func(w *Writer, v reflect.Value) {
			for _, m := range members {
				m.plan.encode(w, v.Field(m.index))
				if w.err != nil {
					w.err = withPath(w.err, m.name)
					return
				}
			}
		},
		decode: func(r *Reader, v reflect.Value) {
			for _, m := range members {
				m.plan.decode(r, v.Field(m.index))
				if r.err != nil {
					r.err = withPath(r.err, m.name)
					return
				}
			}
		},
		encodeJSON: func(w *JSONWriter, v reflect.Value) {
			w.BeginObject()
			for _, m := range members {
				w.Key(m.name)
				m.plan.encodeJSON(w, v.Field(m.index))
				if w.err != nil {
					w.err = withPath(w.err, m.name)
					return
				}
			}
			w.EndObject()
		},
		decodeJSON: func(j JSONValue, v reflect.Value) error {
			if !j.IsObject() {
				return jsonError("expected object for %s, got %s", t, j.Type())
			}
			for _, m := range members {
				f, err := j.Field(m.name)
				if err != nil {
					return err
				}
				if err := m.plan.decodeJSON(f, v.Field(m.index)); err != nil {
					return withPath(err, m.name)
				}
			}
			return nil
		},
	}, nil
}

// --- unions ---

// isUnion reports whether the first exported field of t is tagged union.
func isUnion(t reflect.Type) bool {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag, err := parseTag(f)
		return err == nil && tag.union
	}
	return false
}

type arm struct {
	index int
	name  string
	ptr   bool
	plan  *plan // nil for unit variants
}

func (c *compiler) unionPlan(t reflect.Type) (*plan, error) {
	fields, tags, err := exported(t)
	if err != nil {
		return nil, err
	}
	disc := fields[0]
	if disc.Type.Kind() != reflect.Int32 {
		return nil, fmt.Errorf("%w: %s.%s: discriminant must be int32, got %s", ErrInvalidSchema, t, disc.Name, disc.Type)
	}

	var (
		decls []VariantDecl
		arms  []arm
	)
	for i, f := range fields[1:] {
		tag := tags[i+1]
		if !tag.variant() {
			return nil, fmt.Errorf("%w: %s.%s: union fields must be tagged arm or unit", ErrInvalidSchema, t, f.Name)
		}
		a := arm{index: f.Index[0], name: tag.name}
		if tag.unit {
			if f.Type != voidType {
				return nil, fmt.Errorf("%w: %s.%s: unit variant must be xdr.Void", ErrInvalidSchema, t, f.Name)
			}
		} else {
			payload := f.Type
			if payload.Kind() == reflect.Pointer {
				a.ptr = true
				payload = payload.Elem()
			}
			if a.plan, err = c.fieldPlan(payload, tag); err != nil {
				return nil, err
			}
		}
		decls = append(decls, tag.decl())
		arms = append(arms, a)
	}
	vs, err := NewVariants(decls...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", t, err)
	}

	discIndex := disc.Index[0]
	// payload returns the active arm's value for encoding; a nil pointer arm
	// encodes the zero value of its payload.
	payload := func(v reflect.Value, a arm) reflect.Value {
		fv := v.Field(a.index)
		if !a.ptr {
			return fv
		}
		if fv.IsNil() {
			return reflect.New(fv.Type().Elem()).Elem()
		}
		return fv.Elem()
	}
	// target allocates the active arm of out and returns the value to decode into.
	target := func(out reflect.Value, a arm) reflect.Value {
		fv := out.Field(a.index)
		if !a.ptr {
			return fv
		}
		p := reflect.New(fv.Type().Elem())
		fv.Set(p)
		return p.Elem()
	}

	return &plan{
		typ:     t,
		minSize: 4,
		encode: func(w *Writer, v reflect.Value) {
			tag := int32(v.Field(discIndex).Int())
			WriteUnion(w, vs, tag, func(w *Writer) {
				vr, _ := vs.Lookup(tag)
				a := arms[vr.Index]
				a.plan.encode(w, payload(v, a))
				if w.err != nil {
					w.err = withPath(w.err, a.name)
				}
			})
		},
		decode: func(r *Reader, v reflect.Value) {
			out := reflect.New(t).Elem()
			vr, ok := ReadUnion(r, vs, func(vr Variant, r *Reader) {
				a := arms[vr.Index]
				a.plan.decode(r, target(out, a))
				if r.err != nil {
					r.err = withPath(r.err, a.name)
				}
			})
			if ok {
				out.Field(discIndex).SetInt(int64(vr.Tag))
				v.Set(out)
			}
		},
		encodeJSON: func(w *JSONWriter, v reflect.Value) {
			tag := int32(v.Field(discIndex).Int())
			WriteUnionJSON(w, vs, tag, func(w *JSONWriter) {
				vr, _ := vs.Lookup(tag)
				a := arms[vr.Index]
				a.plan.encodeJSON(w, payload(v, a))
				if w.err != nil {
					w.err = withPath(w.err, a.name)
				}
			})
		},
		decodeJSON: func(j JSONValue, v reflect.Value) error {
			out := reflect.New(t).Elem()
			vr, err := ReadUnionJSON(j, vs, func(vr Variant, data JSONValue) error {
				a := arms[vr.Index]
				if err := a.plan.decodeJSON(data, target(out, a)); err != nil {
					return withPath(err, a.name)
				}
				return nil
			})
			if err != nil {
				return err
			}
			out.Field(discIndex).SetInt(int64(vr.Tag))
			v.Set(out)
			return nil
		},
	}, nil
}
