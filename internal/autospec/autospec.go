// Package autospec redirects spec-context calls of functions carrying an
// autospec attribute to the spec function they name.
package autospec

import (
	"venir/internal/diag"
	"venir/internal/ir"
)

// Resolve returns u with every spec-context call to an autospec function
// replaced by a call to its spec counterpart. Spec contexts are
// requires/ensures/decreases clauses, spec function bodies and the
// conditions of assert and assume.
func Resolve(u *ir.Unit) (*ir.Unit, error) {
	idx := ir.NewIndex(u)
	targets := make(map[string]ir.Path)
	for _, f := range u.Functions {
		if f.Attrs.Autospec == nil {
			continue
		}
		to, ok := idx.Function(*f.Attrs.Autospec)
		if !ok {
			return nil, diag.Errorf(diag.AutospecUnknown, "autospec target %s of %s is not declared", f.Attrs.Autospec, f.Name).
				WithSpan(f.Span)
		}
		if to.Mode != ir.ModeSpec {
			return nil, diag.Errorf(diag.AutospecMismatch, "autospec target %s of %s must be a spec function", to.Name, f.Name).
				WithSpan(f.Span).
				WithLabel(to.Span, "declared "+string(to.Mode))
		}
		if len(to.Params) != len(f.Params) {
			return nil, diag.Errorf(diag.AutospecMismatch, "autospec target %s takes %d arguments, %s takes %d",
				to.Name, len(to.Params), f.Name, len(f.Params)).
				WithSpan(f.Span).
				WithLabel(to.Span, "target declared here")
		}
		targets[f.Name.String()] = to.Name
	}
	if len(targets) == 0 {
		return u, nil
	}

	r := &resolver{targets: targets}
	out := u.Clone()
	for i, f := range u.Functions {
		c := f.Clone()
		r.changed = false
		c.Requires = r.all(c.Requires, true)
		c.Ensures = r.all(c.Ensures, true)
		c.Decreases = r.all(c.Decreases, true)
		c.Body = r.expr(c.Body, f.Mode == ir.ModeSpec)
		if r.changed {
			out.Functions[i] = c
		}
	}
	return out, nil
}

type resolver struct {
	targets map[string]ir.Path
	changed bool
}

func (r *resolver) all(es []*ir.Expr, ghost bool) []*ir.Expr {
	for i, e := range es {
		es[i] = r.expr(e, ghost)
	}
	return es
}

// expr rewrites e in place; e is already a private copy.
func (r *resolver) expr(e *ir.Expr, ghost bool) *ir.Expr {
	if e == nil {
		return nil
	}
	switch e.Kind {
	case ir.ExprCall:
		if to, ok := r.targets[e.Fun.String()]; ghost && ok {
			p := to.Clone()
			e.Fun = &p
			r.changed = true
		}
	case ir.ExprAssert, ir.ExprAssume:
		e.Args[0] = r.expr(e.Args[0], true)
		e.Args[1] = r.expr(e.Args[1], ghost)
		return e
	case ir.ExprQuant:
		for _, trig := range e.Triggers {
			r.all(trig, true)
		}
		// quantifiers are always ghost
		ghost = true
	}
	r.all(e.Args, ghost)
	return e
}
