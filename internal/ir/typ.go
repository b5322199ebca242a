package ir

import (
	"fmt"
	"math"
	"strings"
)

// TypKind is the discriminator of Typ.
type TypKind string

const (
	TypBool     TypKind = "bool"
	TypInt      TypKind = "int"
	TypNat      TypKind = "nat"
	TypUint     TypKind = "uint"
	TypSint     TypKind = "sint"
	TypDatatype TypKind = "datatype"
	TypParam    TypKind = "tparam"
	TypUnit     TypKind = "unit"
)

// Typ describes the type of a parameter, return value, binder or field.
// Bits == 0 on uint/sint means "architecture word width".
type Typ struct {
	Kind  TypKind `json:"kind"`
	Bits  uint32  `json:"bits,omitempty"`
	Name  *Path   `json:"name,omitempty"`
	Param string  `json:"param,omitempty"`
	Args  []Typ   `json:"args,omitempty"`
}

func Bool() Typ            { return Typ{Kind: TypBool} }
func Int() Typ             { return Typ{Kind: TypInt} }
func Nat() Typ             { return Typ{Kind: TypNat} }
func Uint(bits uint32) Typ { return Typ{Kind: TypUint, Bits: bits} }
func Sint(bits uint32) Typ { return Typ{Kind: TypSint, Bits: bits} }
func UnitTyp() Typ         { return Typ{Kind: TypUnit} }

// DatatypeTyp returns a reference to a named datatype.
func DatatypeTyp(name Path, args ...Typ) Typ {
	return Typ{Kind: TypDatatype, Name: &name, Args: args}
}

func (t Typ) String() string {
	switch t.Kind {
	case TypUint:
		if t.Bits == 0 {
			return "usize"
		}
		return fmt.Sprintf("u%d", t.Bits)
	case TypSint:
		if t.Bits == 0 {
			return "isize"
		}
		return fmt.Sprintf("i%d", t.Bits)
	case TypDatatype:
		name := "?"
		if t.Name != nil {
			name = t.Name.String()
		}
		if len(t.Args) == 0 {
			return name
		}
		args := make([]string, len(t.Args))
		for i, a := range t.Args {
			args[i] = a.String()
		}
		return name + "<" + strings.Join(args, ", ") + ">"
	case TypParam:
		return t.Param
	case TypUnit:
		return "()"
	default:
		return string(t.Kind)
	}
}

func (t Typ) Equal(o Typ) bool {
	if t.Kind != o.Kind || t.Bits != o.Bits || t.Param != o.Param || len(t.Args) != len(o.Args) {
		return false
	}
	if (t.Name == nil) != (o.Name == nil) {
		return false
	}
	if t.Name != nil && !t.Name.Equal(*o.Name) {
		return false
	}
	for i := range t.Args {
		if !t.Args[i].Equal(o.Args[i]) {
			return false
		}
	}
	return true
}

// IsInteger reports whether values of t are mathematical or machine integers.
func (t Typ) IsInteger() bool {
	switch t.Kind {
	case TypInt, TypNat, TypUint, TypSint:
		return true
	}
	return false
}

// Range returns the inclusive bounds of an integer type. Unbounded sides are
// reported through the ok flags. Widths of 64 bits and above are clamped to
// the int64 domain used by the evaluator.
func (t Typ) Range(wordBits uint32) (lo, hi int64, hasLo, hasHi bool) {
	bits := t.Bits
	if bits == 0 {
		bits = wordBits
	}
	if bits == 0 {
		bits = 64
	}
	switch t.Kind {
	case TypNat:
		return 0, 0, true, false
	case TypUint:
		if bits >= 63 {
			return 0, math.MaxInt64, true, true
		}
		return 0, int64(1)<<bits - 1, true, true
	case TypSint:
		if bits >= 64 {
			return math.MinInt64, math.MaxInt64, true, true
		}
		return -(int64(1) << (bits - 1)), int64(1)<<(bits-1) - 1, true, true
	}
	return 0, 0, false, false
}

// Datatypes lists the datatype paths mentioned by t, including type arguments.
func (t Typ) Datatypes() []Path {
	var out []Path
	var walk func(Typ)
	walk = func(t Typ) {
		if t.Kind == TypDatatype && t.Name != nil {
			out = append(out, *t.Name)
		}
		for _, a := range t.Args {
			walk(a)
		}
	}
	walk(t)
	return out
}

func (t Typ) clone() Typ {
	c := t
	c.Name = clonePathPtr(t.Name)
	if t.Args != nil {
		c.Args = make([]Typ, len(t.Args))
		for i, a := range t.Args {
			c.Args[i] = a.clone()
		}
	}
	return c
}
