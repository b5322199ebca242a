package sst

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"venir/internal/ir"
	"venir/internal/simplify"
)

// ErrBudget is returned once an evaluation used up its step budget.
var ErrBudget = errors.New("step budget exhausted")

// Interp evaluates IR expressions over concrete values. Spec functions
// listed in Defs are unfolded; every other call evaluates to Unknown.
type Interp struct {
	Defs     map[string]*ir.Function
	WordBits uint32
	// Budget bounds the number of evaluation steps; Steps counts them.
	Budget uint64
	Steps  uint64
	// MaxDepth bounds spec function unfolding; deeper calls are Unknown.
	MaxDepth int
	// MaxEnum and Window shape quantifier domains, see DomainOf.
	MaxEnum int64
	Window  int64
	// Overflowed is set when MaxDepth cut an unfolding short.
	Overflowed bool

	depth int
}

// Default interpreter limits.
const (
	DefaultMaxDepth = 64
	DefaultMaxEnum  = 1 << 10
	DefaultWindow   = 16
)

// NewInterp returns an interpreter over defs with default limits.
func NewInterp(defs map[string]*ir.Function, wordBits uint32, budget uint64) *Interp {
	return &Interp{
		Defs:     defs,
		WordBits: wordBits,
		Budget:   budget,
		MaxDepth: DefaultMaxDepth,
		MaxEnum:  DefaultMaxEnum,
		Window:   DefaultWindow,
	}
}

func (in *Interp) step() error {
	in.Steps++
	if in.Steps > in.Budget {
		return ErrBudget
	}
	return nil
}

// Eval evaluates e under env. The only error is ErrBudget.
func (in *Interp) Eval(e *ir.Expr, env map[string]Value) (Value, error) {
	if err := in.step(); err != nil {
		return Value{}, err
	}
	if e == nil {
		return Value{}, nil
	}
	switch e.Kind {
	case ir.ExprConst:
		if e.Bool != nil {
			return BoolValue(*e.Bool), nil
		}
		return IntValue(*e.Int), nil
	case ir.ExprVar:
		return env[e.Name], nil
	case ir.ExprUnop:
		x, err := in.Eval(e.Args[0], env)
		if err != nil {
			return Value{}, err
		}
		switch {
		case e.Op == ir.OpNot && x.Kind == Bool:
			return BoolValue(!x.B), nil
		case e.Op == ir.OpNeg && x.Kind == Int:
			if v, ok := simplify.Arith(ir.OpSub, 0, x.I); ok {
				return IntValue(v), nil
			}
		}
		return Value{}, nil
	case ir.ExprBinop:
		return in.binop(e, env)
	case ir.ExprIf:
		c, err := in.Eval(e.Args[0], env)
		if err != nil {
			return Value{}, err
		}
		switch {
		case c.IsTrue():
			return in.Eval(e.Args[1], env)
		case c.IsFalse():
			return in.Eval(e.Args[2], env)
		}
		t, err := in.Eval(e.Args[1], env)
		if err != nil {
			return Value{}, err
		}
		f, err := in.Eval(e.Args[2], env)
		if err != nil {
			return Value{}, err
		}
		if t == f {
			return t, nil
		}
		return Value{}, nil
	case ir.ExprLet:
		v, err := in.Eval(e.Args[0], env)
		if err != nil {
			return Value{}, err
		}
		return in.Eval(e.Args[1], bind(env, e.Name, v))
	case ir.ExprCall:
		return in.call(e, env)
	case ir.ExprQuant:
		return in.quant(e, env)
	case ir.ExprAssert, ir.ExprAssume:
		return in.Eval(e.Args[1], env)
	}
	return Value{}, nil
}

func (in *Interp) binop(e *ir.Expr, env map[string]Value) (Value, error) {
	l, err := in.Eval(e.Args[0], env)
	if err != nil {
		return Value{}, err
	}
	// short-circuit
	switch {
	case e.Op == ir.OpAnd && l.IsFalse():
		return l, nil
	case e.Op == ir.OpOr && l.IsTrue():
		return l, nil
	case e.Op == ir.OpImplies && l.IsFalse():
		return BoolValue(true), nil
	}
	r, err := in.Eval(e.Args[1], env)
	if err != nil {
		return Value{}, err
	}
	switch e.Op {
	case ir.OpAnd:
		switch {
		case r.IsFalse():
			return r, nil
		case l.IsTrue() && r.IsTrue():
			return r, nil
		}
		return Value{}, nil
	case ir.OpOr:
		switch {
		case r.IsTrue():
			return r, nil
		case l.IsFalse() && r.IsFalse():
			return r, nil
		}
		return Value{}, nil
	case ir.OpImplies:
		switch {
		case r.IsTrue():
			return r, nil
		case l.IsTrue() && r.IsFalse():
			return r, nil
		}
		return Value{}, nil
	}
	if l.Kind == Unknown || r.Kind == Unknown || l.Kind != r.Kind {
		return Value{}, nil
	}
	switch e.Op {
	case ir.OpEq:
		return BoolValue(l == r), nil
	case ir.OpNe:
		return BoolValue(l != r), nil
	}
	if l.Kind != Int {
		return Value{}, nil
	}
	switch e.Op {
	case ir.OpLt:
		return BoolValue(l.I < r.I), nil
	case ir.OpLe:
		return BoolValue(l.I <= r.I), nil
	case ir.OpGt:
		return BoolValue(l.I > r.I), nil
	case ir.OpGe:
		return BoolValue(l.I >= r.I), nil
	}
	if v, ok := simplify.Arith(e.Op, l.I, r.I); ok {
		return IntValue(v), nil
	}
	return Value{}, nil
}

func (in *Interp) call(e *ir.Expr, env map[string]Value) (Value, error) {
	f, ok := in.Defs[e.Fun.String()]
	if !ok || f.Body == nil || f.Attrs.Opaque || len(f.Params) != len(e.Args) {
		return Value{}, nil
	}
	args := make(map[string]Value, len(f.Params))
	for i, a := range e.Args {
		v, err := in.Eval(a, env)
		if err != nil {
			return Value{}, err
		}
		args[f.Params[i].Name] = v
	}
	if in.depth >= in.MaxDepth {
		in.Overflowed = true
		return Value{}, nil
	}
	in.depth++
	defer func() { in.depth-- }()
	return in.Eval(f.Body, args)
}

// quant enumerates the binder domains. A universal is true only if every
// domain was exhaustive and every instance held; an existential is false
// only under the same condition.
func (in *Interp) quant(e *ir.Expr, env map[string]Value) (Value, error) {
	forall := e.Quant == ir.QuantForall
	domains := make([]Domain, len(e.Binders))
	exhaustive := true
	for i, b := range e.Binders {
		domains[i] = DomainOf(b.Typ, in.WordBits, in.MaxEnum, in.Window)
		exhaustive = exhaustive && domains[i].Exhaustive
	}
	undecided := false
	var decided *Value
	err := Enumerate(domains, func(vals []Value) (bool, error) {
		inner := env
		for i, b := range e.Binders {
			inner = bind(inner, b.Name, vals[i])
		}
		v, err := in.Eval(e.Args[0], inner)
		if err != nil {
			return false, err
		}
		switch {
		case forall && v.IsFalse():
			decided = &v
			return false, nil
		case !forall && v.IsTrue():
			decided = &v
			return false, nil
		case v.Kind == Unknown:
			undecided = true
		}
		return true, nil
	})
	if err != nil {
		return Value{}, err
	}
	if decided != nil {
		return *decided, nil
	}
	if exhaustive && !undecided {
		return BoolValue(forall), nil
	}
	return Value{}, nil
}

// Enumerate calls visit with every combination of domain values, stopping
// when visit returns false or an error.
func Enumerate(domains []Domain, visit func([]Value) (bool, error)) error {
	vals := make([]Value, len(domains))
	var rec func(i int) (bool, error)
	rec = func(i int) (bool, error) {
		if i == len(domains) {
			return visit(vals)
		}
		for _, v := range domains[i].Values {
			vals[i] = v
			more, err := rec(i + 1)
			if err != nil || !more {
				return more, err
			}
		}
		return true, nil
	}
	_, err := rec(0)
	return err
}

func bind(env map[string]Value, name string, v Value) map[string]Value {
	out := make(map[string]Value, len(env)+1)
	for k, x := range env {
		out[k] = x
	}
	out[name] = v
	return out
}

// EvalGround evaluates a call whose arguments are all literals and writes
// one line about it to log (which may be nil).
func EvalGround(in *Interp, call *ir.Expr, log io.Writer) (Value, bool) {
	for _, a := range call.Args {
		if a.Kind != ir.ExprConst {
			return Value{}, false
		}
	}
	start := in.Steps
	v, err := in.Eval(call, nil)
	if log != nil {
		args := make([]string, len(call.Args))
		for i, a := range call.Args {
			args[i] = ir.ExprString(a)
		}
		result := v.String()
		if err != nil {
			result = "step limit exceeded"
		}
		fmt.Fprintf(log, "%s(%s) = %s [%d steps]\n", call.Fun, strings.Join(args, ", "), result, in.Steps-start)
	}
	if err != nil || v.Kind == Unknown {
		return Value{}, false
	}
	return v, true
}
