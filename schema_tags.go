package xdr

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// fieldTag is the parsed form of an `xdr:"..."` struct tag:
//
//	Name  string   `xdr:"name"`           // JSON member name
//	Hash  []byte   `xdr:",fixed=32"`      // fixed opaque
//	Items []Item   `xdr:"items,var=16"`   // bounded variable array
//	Kind  int32    `xdr:",union"`         // union discriminant
//	Text  *string  `xdr:",arm"`           // payload variant, implicit tag
//	Err   *Fault   `xdr:",arm=-1"`        // payload variant, explicit tag
//	None  xdr.Void `xdr:",unit=7"`        // unit variant
//	Cache []byte   `xdr:"-"`              // skipped
type fieldTag struct {
	name string
	skip bool

	fixed    uint32
	hasFixed bool
	bound    uint32
	hasVar   bool

	union bool

	arm       bool
	armTag    int32
	hasArmTag bool

	unit    bool
	unitTag int32
}

func (t fieldTag) sized() bool { return t.hasFixed || t.hasVar }

func (t fieldTag) variant() bool { return t.arm || t.unit }

// decl returns the variant declaration of an arm or unit field.
func (t fieldTag) decl() VariantDecl {
	switch {
	case t.unit:
		return Unit(t.name, t.unitTag)
	case t.hasArmTag:
		return CaseTag(t.name, t.armTag)
	}
	return Case(t.name)
}

func parseTag(f reflect.StructField) (fieldTag, error) {
	tag := fieldTag{name: f.Name}
	raw, ok := f.Tag.Lookup("xdr")
	if !ok {
		return tag, nil
	}
	if raw == "-" {
		tag.skip = true
		return tag, nil
	}

	parts := strings.Split(raw, ",")
	if parts[0] != "" {
		tag.name = parts[0]
	}
	for _, opt := range parts[1:] {
		key, val, hasVal := strings.Cut(opt, "=")
		var err error
		switch key {
		case "fixed":
			tag.fixed, err = parseU32(val, hasVal)
			tag.hasFixed = true
		case "var":
			tag.bound, err = parseU32(val, hasVal)
			tag.hasVar = true
		case "union":
			tag.union = true
		case "arm":
			tag.arm = true
			if hasVal {
				tag.armTag, err = parseI32(val)
				tag.hasArmTag = true
			}
		case "unit":
			tag.unit = true
			if !hasVal {
				err = errors.New("unit requires a discriminant")
				break
			}
			tag.unitTag, err = parseI32(val)
		default:
			err = fmt.Errorf("unknown option %q", opt)
		}
		if err != nil {
			return tag, fmt.Errorf("%w: field %s: %v", ErrInvalidSchema, f.Name, err)
		}
	}

	n := 0
	for _, set := range []bool{tag.union, tag.arm, tag.unit} {
		if set {
			n++
		}
	}
	switch {
	case n > 1:
		return tag, fmt.Errorf("%w: field %s: union, arm and unit are exclusive", ErrInvalidSchema, f.Name)
	case tag.hasFixed && tag.hasVar:
		return tag, fmt.Errorf("%w: field %s: fixed and var are exclusive", ErrInvalidSchema, f.Name)
	case (tag.union || tag.unit) && tag.sized():
		return tag, fmt.Errorf("%w: field %s: size options do not apply to a discriminant", ErrInvalidSchema, f.Name)
	}
	return tag, nil
}

func parseU32(s string, ok bool) (uint32, error) {
	if !ok {
		return 0, errors.New("missing value")
	}
	n, err := strconv.ParseUint(s, 10, 32)
	return uint32(n), err
}

func parseI32(s string) (int32, error) {
	n, err := strconv.ParseInt(s, 10, 32)
	return int32(n), err
}
