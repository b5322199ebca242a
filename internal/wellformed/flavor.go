package wellformed

import (
	"venir/internal/diag"
	"venir/internal/ir"
	"venir/internal/simplify"
)

// CheckFlavor checks the shape every unit must have before simplification:
// all expressions are well-formed nodes and assert/assume only appear in
// bodies.
func CheckFlavor(u *ir.Unit) error {
	return eachExpr(u, func(f *ir.Function, e *ir.Expr, inBody bool) error {
		if err := e.Check(); err != nil {
			return diag.Errorf(diag.WfFlavor, "malformed expression in %s: %v", f.Name, err).WithSpan(f.Span)
		}
		if inBody {
			return nil
		}
		var bad *ir.Expr
		ir.Walk(e, func(n *ir.Expr) bool {
			if n.Kind == ir.ExprAssert || n.Kind == ir.ExprAssume {
				bad = n
				return false
			}
			return bad == nil
		})
		if bad != nil {
			return diag.Errorf(diag.WfFlavor, "%s statement in a specification clause of %s", bad.Kind, f.Name).
				WithSpan(f.Span).
				WithLabel(bad.Span, "not allowed here")
		}
		return nil
	})
}

// CheckSimplifiedFlavor checks the shape after simplification: everything
// CheckFlavor requires, and no let binding of a pure value left.
func CheckSimplifiedFlavor(u *ir.Unit) error {
	if err := CheckFlavor(u); err != nil {
		return err
	}
	idx := ir.NewIndex(u)
	return eachExpr(u, func(f *ir.Function, e *ir.Expr, _ bool) error {
		var let *ir.Expr
		ir.Walk(e, func(n *ir.Expr) bool {
			if n.Kind == ir.ExprLet && simplify.IsPure(idx, n.Args[0]) {
				let = n
			}
			return let == nil
		})
		if let != nil {
			return diag.Errorf(diag.WfFlavor, "let binding %s survived simplification in %s", let.Name, f.Name).
				WithSpan(f.Span).
				WithLabel(let.Span, "binding")
		}
		return nil
	})
}

func eachExpr(u *ir.Unit, fn func(f *ir.Function, e *ir.Expr, inBody bool) error) error {
	for _, f := range u.Functions {
		for _, e := range f.Requires {
			if err := fn(f, e, false); err != nil {
				return err
			}
		}
		for _, e := range f.Ensures {
			if err := fn(f, e, false); err != nil {
				return err
			}
		}
		for _, e := range f.Decreases {
			if err := fn(f, e, false); err != nil {
				return err
			}
		}
		if f.Body != nil {
			if err := fn(f, f.Body, true); err != nil {
				return err
			}
		}
	}
	return nil
}
