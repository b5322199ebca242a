package ir

import (
	"fmt"
)

// ExprKind is the discriminator of the closed Expr variant.
type ExprKind string

const (
	ExprConst  ExprKind = "const"
	ExprVar    ExprKind = "var"
	ExprUnop   ExprKind = "unop"
	ExprBinop  ExprKind = "binop"
	ExprIf     ExprKind = "if"
	ExprCall   ExprKind = "call"
	ExprLet    ExprKind = "let"
	ExprQuant  ExprKind = "quant"
	ExprAssert ExprKind = "assert"
	ExprAssume ExprKind = "assume"
)

// Operators accepted by unop/binop nodes.
const (
	OpNot = "!"
	OpNeg = "-"

	OpAdd     = "+"
	OpSub     = "-"
	OpMul     = "*"
	OpDiv     = "/"
	OpMod     = "%"
	OpEq      = "=="
	OpNe      = "!="
	OpLt      = "<"
	OpLe      = "<="
	OpGt      = ">"
	OpGe      = ">="
	OpAnd     = "&&"
	OpOr      = "||"
	OpImplies = "==>"
)

const (
	QuantForall = "forall"
	QuantExists = "exists"
)

// Binder is a variable bound by a quantifier.
type Binder struct {
	Name string `json:"name"`
	Typ  Typ    `json:"typ"`
}

// Expr is one IR expression node. Operands live in Args with a fixed arity
// per kind:
//
//	unop [x]; binop [l, r]; if [cond, then, else]; call [args...];
//	let [value, body] (Name is the binder); assert/assume [cond, rest].
type Expr struct {
	Kind ExprKind `json:"kind"`
	Span Span     `json:"span"`

	Bool *bool  `json:"bool,omitempty"`
	Int  *int64 `json:"int,omitempty"`

	Name string  `json:"name,omitempty"`
	Op   string  `json:"op,omitempty"`
	Fun  *Path   `json:"fun,omitempty"`
	Args []*Expr `json:"args,omitempty"`

	Quant    string    `json:"quant,omitempty"`
	Binders  []Binder  `json:"binders,omitempty"`
	Triggers [][]*Expr `json:"triggers,omitempty"`
	Auto     bool      `json:"auto,omitempty"`
}

func BoolLit(v bool) *Expr { return &Expr{Kind: ExprConst, Bool: &v} }
func IntLit(v int64) *Expr { return &Expr{Kind: ExprConst, Int: &v} }
func Var(name string) *Expr {
	return &Expr{Kind: ExprVar, Name: name}
}
func Unop(op string, x *Expr) *Expr {
	return &Expr{Kind: ExprUnop, Op: op, Args: []*Expr{x}}
}
func Binop(op string, l, r *Expr) *Expr {
	return &Expr{Kind: ExprBinop, Op: op, Args: []*Expr{l, r}}
}
func If(c, t, e *Expr) *Expr {
	return &Expr{Kind: ExprIf, Args: []*Expr{c, t, e}}
}
func Call(fun Path, args ...*Expr) *Expr {
	return &Expr{Kind: ExprCall, Fun: &fun, Args: args}
}
func Let(name string, value, body *Expr) *Expr {
	return &Expr{Kind: ExprLet, Name: name, Args: []*Expr{value, body}}
}
func Assert(cond, rest *Expr) *Expr {
	return &Expr{Kind: ExprAssert, Args: []*Expr{cond, rest}}
}
func Assume(cond, rest *Expr) *Expr {
	return &Expr{Kind: ExprAssume, Args: []*Expr{cond, rest}}
}
func Forall(binders []Binder, body *Expr, triggers ...[]*Expr) *Expr {
	return &Expr{Kind: ExprQuant, Quant: QuantForall, Binders: binders, Args: []*Expr{body}, Triggers: triggers}
}
func Exists(binders []Binder, body *Expr, triggers ...[]*Expr) *Expr {
	return &Expr{Kind: ExprQuant, Quant: QuantExists, Binders: binders, Args: []*Expr{body}, Triggers: triggers}
}

// At returns e with its span replaced; handy for builders and tests.
func (e *Expr) At(sp Span) *Expr {
	e.Span = sp
	return e
}

// IsConstBool reports whether e is the boolean literal v.
func (e *Expr) IsConstBool(v bool) bool {
	return e != nil && e.Kind == ExprConst && e.Bool != nil && *e.Bool == v
}

var binops = map[string]bool{
	OpAdd: true, OpSub: true, OpMul: true, OpDiv: true, OpMod: true,
	OpEq: true, OpNe: true, OpLt: true, OpLe: true, OpGt: true, OpGe: true,
	OpAnd: true, OpOr: true, OpImplies: true,
}

// IsBoolOp reports whether a binop yields a boolean.
func IsBoolOp(op string) bool {
	switch op {
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe, OpAnd, OpOr, OpImplies:
		return true
	}
	return false
}

// Check validates the shape of the node and all its children.
func (e *Expr) Check() error {
	if e == nil {
		return fmt.Errorf("missing expression")
	}
	arity := func(n int) error {
		if len(e.Args) != n {
			return fmt.Errorf("%s expression at %s: expected %d operands, got %d", e.Kind, e.Span.AsString, n, len(e.Args))
		}
		return nil
	}
	var err error
	switch e.Kind {
	case ExprConst:
		if (e.Bool == nil) == (e.Int == nil) {
			return fmt.Errorf("const expression at %s must carry exactly one of bool/int", e.Span.AsString)
		}
	case ExprVar:
		if e.Name == "" {
			return fmt.Errorf("var expression at %s has no name", e.Span.AsString)
		}
	case ExprUnop:
		if e.Op != OpNot && e.Op != OpNeg {
			return fmt.Errorf("unknown unary operator %q at %s", e.Op, e.Span.AsString)
		}
		err = arity(1)
	case ExprBinop:
		if !binops[e.Op] {
			return fmt.Errorf("unknown binary operator %q at %s", e.Op, e.Span.AsString)
		}
		err = arity(2)
	case ExprIf:
		err = arity(3)
	case ExprCall:
		if e.Fun == nil {
			return fmt.Errorf("call at %s has no callee", e.Span.AsString)
		}
	case ExprLet:
		if e.Name == "" {
			return fmt.Errorf("let at %s has no binder", e.Span.AsString)
		}
		err = arity(2)
	case ExprQuant:
		if e.Quant != QuantForall && e.Quant != QuantExists {
			return fmt.Errorf("unknown quantifier %q at %s", e.Quant, e.Span.AsString)
		}
		if len(e.Binders) == 0 {
			return fmt.Errorf("quantifier at %s binds no variables", e.Span.AsString)
		}
		if err = arity(1); err != nil {
			return err
		}
		for _, trig := range e.Triggers {
			for _, term := range trig {
				if err := term.Check(); err != nil {
					return err
				}
			}
		}
	case ExprAssert, ExprAssume:
		err = arity(2)
	default:
		return fmt.Errorf("unknown expression kind %q at %s", e.Kind, e.Span.AsString)
	}
	if err != nil {
		return err
	}
	for _, a := range e.Args {
		if err := a.Check(); err != nil {
			return err
		}
	}
	return nil
}

// Clone deep-copies the expression tree.
func (e *Expr) Clone() *Expr {
	if e == nil {
		return nil
	}
	c := *e
	if e.Bool != nil {
		b := *e.Bool
		c.Bool = &b
	}
	if e.Int != nil {
		n := *e.Int
		c.Int = &n
	}
	c.Fun = clonePathPtr(e.Fun)
	if e.Args != nil {
		c.Args = make([]*Expr, len(e.Args))
		for i, a := range e.Args {
			c.Args[i] = a.Clone()
		}
	}
	if e.Binders != nil {
		c.Binders = make([]Binder, len(e.Binders))
		for i, b := range e.Binders {
			c.Binders[i] = Binder{Name: b.Name, Typ: b.Typ.clone()}
		}
	}
	if e.Triggers != nil {
		c.Triggers = make([][]*Expr, len(e.Triggers))
		for i, trig := range e.Triggers {
			c.Triggers[i] = make([]*Expr, len(trig))
			for j, term := range trig {
				c.Triggers[i][j] = term.Clone()
			}
		}
	}
	return &c
}

func cloneExprs(es []*Expr) []*Expr {
	if es == nil {
		return nil
	}
	out := make([]*Expr, len(es))
	for i, e := range es {
		out[i] = e.Clone()
	}
	return out
}
