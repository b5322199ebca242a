package sst

import (
	"strconv"

	"venir/internal/ir"
)

// ValueKind tags a Value.
type ValueKind uint8

const (
	// Unknown is the third truth value: the evaluator could not decide.
	Unknown ValueKind = iota
	Bool
	Int
)

// Value is the result of evaluating an expression under an assignment.
type Value struct {
	Kind ValueKind
	B    bool
	I    int64
}

func BoolValue(b bool) Value { return Value{Kind: Bool, B: b} }
func IntValue(i int64) Value { return Value{Kind: Int, I: i} }

func (v Value) IsTrue() bool  { return v.Kind == Bool && v.B }
func (v Value) IsFalse() bool { return v.Kind == Bool && !v.B }

func (v Value) String() string {
	switch v.Kind {
	case Bool:
		return strconv.FormatBool(v.B)
	case Int:
		return strconv.FormatInt(v.I, 10)
	}
	return "?"
}

// Expr turns a known value back into a literal.
func (v Value) Expr() *ir.Expr {
	switch v.Kind {
	case Bool:
		return ir.BoolLit(v.B)
	case Int:
		return ir.IntLit(v.I)
	}
	return nil
}

// Domain is the set of values tried for a variable of some type.
type Domain struct {
	Values []Value
	// Exhaustive is set when Values covers the whole type.
	Exhaustive bool
}

// DomainOf returns the values of t to enumerate. Types with at most maxEnum
// values are enumerated completely; larger and unbounded integer types are
// sampled around zero and their bounds within window. Datatypes and type
// parameters yield an empty, non-exhaustive domain.
func DomainOf(t ir.Typ, wordBits uint32, maxEnum, window int64) Domain {
	switch t.Kind {
	case ir.TypBool:
		return Domain{Values: []Value{BoolValue(false), BoolValue(true)}, Exhaustive: true}
	case ir.TypUnit:
		return Domain{Values: []Value{BoolValue(true)}, Exhaustive: true}
	}
	if !t.IsInteger() {
		return Domain{}
	}
	lo, hi, hasLo, hasHi := t.Range(wordBits)
	if hasLo && hasHi && hi-lo >= 0 && hi-lo < maxEnum {
		d := Domain{Exhaustive: true}
		for v := lo; v <= hi; v++ {
			d.Values = append(d.Values, IntValue(v))
		}
		return d
	}

	seen := make(map[int64]bool)
	var d Domain
	add := func(v int64) {
		if (hasLo && v < lo) || (hasHi && v > hi) || seen[v] {
			return
		}
		seen[v] = true
		d.Values = append(d.Values, IntValue(v))
	}
	for i := int64(0); i <= window; i++ {
		add(i)
		add(-i)
	}
	if hasLo {
		for i := int64(0); i <= window; i++ {
			add(lo + i)
		}
	}
	if hasHi {
		for i := int64(0); i <= window; i++ {
			add(hi - i)
		}
	}
	return d
}
