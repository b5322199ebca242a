// Package simplify folds constants and inlines pure let bindings.
package simplify

import (
	"math"

	"venir/internal/ir"
)

// Unit returns a simplified copy of u. Only functions whose expressions
// change are copied.
func Unit(u *ir.Unit) *ir.Unit {
	idx := ir.NewIndex(u)
	pure := func(e *ir.Expr) bool { return IsPure(idx, e) }
	out := u.Clone()
	for i, f := range u.Functions {
		c := f.Clone()
		c.Requires = exprs(c.Requires, pure)
		c.Ensures = exprs(c.Ensures, pure)
		c.Decreases = exprs(c.Decreases, pure)
		if c.Body != nil {
			c.Body = Expr(c.Body, pure)
		}
		out.Functions[i] = c
	}
	return out
}

func exprs(es []*ir.Expr, pure func(*ir.Expr) bool) []*ir.Expr {
	for i, e := range es {
		es[i] = Expr(e, pure)
	}
	return es
}

// IsPure reports whether e can be duplicated or dropped: it calls only
// spec functions and contains no assert or assume.
func IsPure(idx *ir.Index, e *ir.Expr) bool {
	pure := true
	ir.Walk(e, func(n *ir.Expr) bool {
		switch n.Kind {
		case ir.ExprAssert, ir.ExprAssume:
			pure = false
		case ir.ExprCall:
			if f, ok := idx.Function(*n.Fun); !ok || f.Mode != ir.ModeSpec {
				pure = false
			}
		}
		return pure
	})
	return pure
}

// Expr simplifies e bottom-up. Lets whose value satisfies pure are
// substituted into their body.
func Expr(e *ir.Expr, pure func(*ir.Expr) bool) *ir.Expr {
	return ir.Rewrite(e, func(n *ir.Expr) *ir.Expr {
		switch n.Kind {
		case ir.ExprUnop:
			return foldUnop(n)
		case ir.ExprBinop:
			return foldBinop(n)
		case ir.ExprIf:
			switch {
			case n.Args[0].IsConstBool(true):
				return n.Args[1]
			case n.Args[0].IsConstBool(false):
				return n.Args[2]
			}
		case ir.ExprLet:
			if pure != nil && pure(n.Args[0]) {
				body := ir.Subst(n.Args[1], map[string]*ir.Expr{n.Name: n.Args[0]})
				return Expr(body, pure)
			}
		}
		return n
	})
}

func foldUnop(n *ir.Expr) *ir.Expr {
	x := n.Args[0]
	switch {
	case n.Op == ir.OpNot && x.Bool != nil && x.Kind == ir.ExprConst:
		return ir.BoolLit(!*x.Bool).At(n.Span)
	case n.Op == ir.OpNeg && x.Int != nil && x.Kind == ir.ExprConst && *x.Int != math.MinInt64:
		return ir.IntLit(-*x.Int).At(n.Span)
	case n.Op == ir.OpNot && x.Kind == ir.ExprUnop && x.Op == ir.OpNot:
		return x.Args[0]
	}
	return n
}

func foldBinop(n *ir.Expr) *ir.Expr {
	l, r := n.Args[0], n.Args[1]
	switch n.Op {
	case ir.OpAnd:
		switch {
		case l.IsConstBool(true):
			return r
		case l.IsConstBool(false):
			return l
		case r.IsConstBool(true):
			return l
		}
	case ir.OpOr:
		switch {
		case l.IsConstBool(false):
			return r
		case l.IsConstBool(true):
			return l
		case r.IsConstBool(false):
			return l
		}
	case ir.OpImplies:
		switch {
		case l.IsConstBool(true):
			return r
		case l.IsConstBool(false), r.IsConstBool(true):
			return ir.BoolLit(true).At(n.Span)
		}
	}

	if l.Kind != ir.ExprConst || r.Kind != ir.ExprConst {
		return n
	}
	if l.Bool != nil && r.Bool != nil {
		switch n.Op {
		case ir.OpEq:
			return ir.BoolLit(*l.Bool == *r.Bool).At(n.Span)
		case ir.OpNe:
			return ir.BoolLit(*l.Bool != *r.Bool).At(n.Span)
		}
		return n
	}
	if l.Int == nil || r.Int == nil {
		return n
	}
	a, b := *l.Int, *r.Int
	switch n.Op {
	case ir.OpEq:
		return ir.BoolLit(a == b).At(n.Span)
	case ir.OpNe:
		return ir.BoolLit(a != b).At(n.Span)
	case ir.OpLt:
		return ir.BoolLit(a < b).At(n.Span)
	case ir.OpLe:
		return ir.BoolLit(a <= b).At(n.Span)
	case ir.OpGt:
		return ir.BoolLit(a > b).At(n.Span)
	case ir.OpGe:
		return ir.BoolLit(a >= b).At(n.Span)
	}
	if v, ok := Arith(n.Op, a, b); ok {
		return ir.IntLit(v).At(n.Span)
	}
	return n
}

// Arith evaluates an integer operator. It fails on overflow and on division
// by zero. Division and remainder are Euclidean, like SMT-LIB div and mod.
func Arith(op string, a, b int64) (int64, bool) {
	switch op {
	case ir.OpAdd:
		s := a + b
		if (b > 0 && s < a) || (b < 0 && s > a) {
			return 0, false
		}
		return s, true
	case ir.OpSub:
		s := a - b
		if (b < 0 && s < a) || (b > 0 && s > a) {
			return 0, false
		}
		return s, true
	case ir.OpMul:
		if a == 0 || b == 0 {
			return 0, true
		}
		p := a * b
		if p/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
			return 0, false
		}
		return p, true
	case ir.OpDiv, ir.OpMod:
		if b == 0 || (a == math.MinInt64 && b == -1) {
			return 0, false
		}
		q, m := a/b, a%b
		if m < 0 {
			if b > 0 {
				q, m = q-1, m+b
			} else {
				q, m = q+1, m-b
			}
		}
		if op == ir.OpDiv {
			return q, true
		}
		return m, true
	}
	return 0, false
}
