package xdr

import "fmt"

// Variant is one alternative of a sum type.
type Variant struct {
	Name  string
	Tag   int32
	Unit  bool // no payload
	Index int  // position in declaration order
}

// VariantDecl declares a variant; see Unit, Case and CaseTag.
type VariantDecl struct {
	name     string
	tag      int32
	unit     bool
	explicit bool
}

// Unit declares a payload-less variant with a literal discriminant.
func Unit(name string, tag int32) VariantDecl {
	return VariantDecl{name: name, tag: tag, unit: true, explicit: true}
}

// Case declares a payload variant numbered implicitly: the n-th payload
// variant in declaration order gets discriminant n.
func Case(name string) VariantDecl {
	return VariantDecl{name: name}
}

// CaseTag declares a payload variant with an explicit discriminant. It still
// consumes a slot of the implicit counter.
func CaseTag(name string, tag int32) VariantDecl {
	return VariantDecl{name: name, tag: tag, explicit: true}
}

// Variants is the immutable, resolved variant set of a sum type.
type Variants struct {
	list     []Variant
	byTag    map[int32]int
	byName   map[string]int
	unitOnly bool
}

// NewVariants resolves discriminants. Two variants with the same
// discriminant or the same name are a schema error.
func NewVariants(decls ...VariantDecl) (*Variants, error) {
	vs := &Variants{
		list:     make([]Variant, 0, len(decls)),
		byTag:    make(map[int32]int, len(decls)),
		byName:   make(map[string]int, len(decls)),
		unitOnly: true,
	}
	var next int32
	for i, d := range decls {
		v := Variant{Name: d.name, Tag: d.tag, Unit: d.unit, Index: i}
		if !d.unit {
			if !d.explicit {
				v.Tag = next
			}
			next++
			vs.unitOnly = false
		}
		if prev, dup := vs.byTag[v.Tag]; dup {
			return nil, fmt.Errorf("%w: variants %q and %q share discriminant %d",
				ErrInvalidSchema, vs.list[prev].Name, v.Name, v.Tag)
		}
		if _, dup := vs.byName[v.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate variant name %q", ErrInvalidSchema, v.Name)
		}
		vs.byTag[v.Tag] = i
		vs.byName[v.Name] = i
		vs.list = append(vs.list, v)
	}
	return vs, nil
}

// MustVariants is like NewVariants but panics on error. It is intended for
// package-level variables.
func MustVariants(decls ...VariantDecl) *Variants {
	vs, err := NewVariants(decls...)
	if err != nil {
		panic(err)
	}
	return vs
}

// Lookup returns the variant declared with tag.
func (vs *Variants) Lookup(tag int32) (Variant, bool) {
	i, ok := vs.byTag[tag]
	if !ok {
		return Variant{}, false
	}
	return vs.list[i], true
}

// ByName returns the variant declared with name.
func (vs *Variants) ByName(name string) (Variant, bool) {
	i, ok := vs.byName[name]
	if !ok {
		return Variant{}, false
	}
	return vs.list[i], true
}

// All returns the variants in declaration order.
func (vs *Variants) All() []Variant {
	return append([]Variant(nil), vs.list...)
}

func (vs *Variants) Len() int { return len(vs.list) }

// UnitOnly reports whether no variant carries a payload. Such types encode
// as a bare integer in the JSON mirror.
func (vs *Variants) UnitOnly() bool { return vs.unitOnly }

// WriteUnion writes the discriminant and, for payload variants, calls arm to
// write the payload. An undeclared tag fails before anything is written.
func WriteUnion(w *Writer, vs *Variants, tag int32, arm func(w *Writer)) {
	if w.err != nil {
		return
	}
	v, ok := vs.Lookup(tag)
	if !ok {
		w.err = enumError(OpEncode, tag)
		return
	}
	w.WriteInt32(tag)
	if !v.Unit && arm != nil {
		arm(w)
	}
}

// ReadUnion reads a discriminant, validates it and, for payload variants,
// calls arm to read the payload. It reports whether the union was read
// without error.
func ReadUnion(r *Reader, vs *Variants, arm func(v Variant, r *Reader)) (Variant, bool) {
	tag, ok := r.read4(KindIntBadFormat)
	if !ok {
		return Variant{}, false
	}
	v, ok := vs.Lookup(int32(tag))
	if !ok {
		r.err = enumError(OpDecode, int32(tag))
		return Variant{}, false
	}
	if !v.Unit && arm != nil {
		arm(v, r)
	}
	return v, r.err == nil
}

// WriteEnum writes a declared unit-only discriminant.
func WriteEnum(w *Writer, vs *Variants, tag int32) {
	WriteUnion(w, vs, tag, nil)
}

// ReadEnum reads a discriminant that must name a unit variant.
func ReadEnum(r *Reader, vs *Variants, dest *int32) {
	v, ok := ReadUnion(r, vs, func(v Variant, r *Reader) {
		r.err = newError(OpDecode, KindInvalidEnum, "variant %s carries a payload", v.Name)
	})
	if ok {
		*dest = v.Tag
	}
}

// WriteUnionJSON writes the JSON mirror of a sum value: a bare integer for
// unit-only types, {"type":d,"data":...} otherwise. Unit variants of mixed
// types carry "" as data.
func WriteUnionJSON(w *JSONWriter, vs *Variants, tag int32, arm func(w *JSONWriter)) {
	if w.err != nil {
		return
	}
	v, ok := vs.Lookup(tag)
	if !ok {
		w.Fail(enumError(OpEncodeJSON, tag))
		return
	}
	if vs.unitOnly {
		w.Int32(tag)
		return
	}
	w.BeginObject()
	w.Key("type")
	w.Int32(tag)
	w.Key("data")
	if v.Unit || arm == nil {
		w.Void()
	} else {
		arm(w)
	}
	w.EndObject()
}

// ReadUnionJSON accepts a bare integer or a {"type","data"} object. A bare
// integer must name a unit variant; payload variants require data.
func ReadUnionJSON(j JSONValue, vs *Variants, arm func(v Variant, data JSONValue) error) (Variant, error) {
	var (
		tag     int32
		data    JSONValue
		hasData bool
		err     error
	)
	switch {
	case j.IsNumber():
		if tag, err = j.Int32(); err != nil {
			return Variant{}, err
		}
	case j.IsObject():
		t, ok, err := j.Lookup("type")
		if err != nil {
			return Variant{}, err
		}
		if !ok {
			return Variant{}, jsonError(`sum value has no "type" field`)
		}
		if tag, err = t.Int32(); err != nil {
			return Variant{}, err
		}
		if data, hasData, err = j.Lookup("data"); err != nil {
			return Variant{}, err
		}
	default:
		return Variant{}, jsonError("sum value must be an integer or an object, got %s", j.Type())
	}

	v, ok := vs.Lookup(tag)
	if !ok {
		return Variant{}, enumError(OpDecodeJSON, tag)
	}
	if v.Unit {
		return v, nil
	}
	if !hasData {
		return Variant{}, jsonError("variant %s (%d) requires data", v.Name, tag)
	}
	if arm != nil {
		if err := arm(v, data); err != nil {
			return Variant{}, err
		}
	}
	return v, nil
}

// ReadEnumJSON decodes a discriminant that must name a unit variant.
func ReadEnumJSON(j JSONValue, vs *Variants) (int32, error) {
	v, err := ReadUnionJSON(j, vs, func(v Variant, _ JSONValue) error {
		return newError(OpDecodeJSON, KindInvalidEnum, "variant %s carries a payload", v.Name)
	})
	if err != nil {
		return 0, err
	}
	return v.Tag, nil
}
