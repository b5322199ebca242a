// Package modes checks that spec, proof and exec code only call what
// their mode allows.
//
// Rules:
//
//	spec  code calls spec functions only;
//	proof code calls spec and proof functions;
//	exec  code calls exec functions only; spec and proof functions are
//	      allowed in its ghost positions (assert/assume conditions,
//	      quantifiers), which are spec code.
//
// Requires, ensures and decreases clauses are spec code whatever the
// function's mode.
package modes

import (
	"venir/internal/diag"
	"venir/internal/ir"
)

// CallMode records the mode a call is compiled at.
type CallMode struct {
	Caller ir.Path
	Callee ir.Path
	Span   ir.Span
	Mode   ir.Mode
}

// ErasureModes is the side table produced by Check: every call inside an
// exec body with the mode it runs at. Ghost calls (spec or proof) are
// erased by a compiler.
type ErasureModes struct {
	Calls []CallMode
}

func rank(m ir.Mode) int {
	switch m {
	case ir.ModeSpec:
		return 0
	case ir.ModeProof:
		return 1
	default:
		return 2
	}
}

type checker struct {
	idx     *ir.Index
	fn      *ir.Function
	erasure *ErasureModes
}

// Check validates u and returns it unchanged together with the erasure
// table.
func Check(u *ir.Unit) (*ir.Unit, ErasureModes, error) {
	c := &checker{idx: ir.NewIndex(u), erasure: &ErasureModes{}}
	for _, f := range u.Functions {
		c.fn = f
		for _, p := range f.Params {
			if pm := paramMode(f, p); rank(pm) > rank(f.Mode) {
				return nil, ErasureModes{}, diag.Errorf(diag.ModeParam,
					"parameter %s of %s function %s cannot have mode %s", p.Name, f.Mode, f.Name, pm).
					WithSpan(f.Span)
			}
		}
		ghostVars := make(map[string]bool)
		if f.Mode == ir.ModeExec {
			for _, p := range f.Params {
				if paramMode(f, p) != ir.ModeExec {
					ghostVars[p.Name] = true
				}
			}
		}
		for _, e := range f.Requires {
			if err := c.expr(e, ir.ModeSpec, nil); err != nil {
				return nil, ErasureModes{}, err
			}
		}
		for _, e := range f.Ensures {
			if err := c.expr(e, ir.ModeSpec, nil); err != nil {
				return nil, ErasureModes{}, err
			}
		}
		for _, e := range f.Decreases {
			if err := c.expr(e, ir.ModeSpec, nil); err != nil {
				return nil, ErasureModes{}, err
			}
		}
		if f.Body != nil {
			if err := c.expr(f.Body, f.Mode, ghostVars); err != nil {
				return nil, ErasureModes{}, err
			}
		}
	}
	return u, *c.erasure, nil
}

func paramMode(f *ir.Function, p ir.Param) ir.Mode {
	if p.Mode == "" {
		return f.Mode
	}
	return p.Mode
}

// expr checks e evaluated at mode. ghostVars are variables that only exist
// in ghost code; they are nil outside exec bodies.
func (c *checker) expr(e *ir.Expr, mode ir.Mode, ghostVars map[string]bool) error {
	if e == nil {
		return nil
	}
	switch e.Kind {
	case ir.ExprVar:
		if mode == ir.ModeExec && ghostVars[e.Name] {
			return diag.Errorf(diag.ModeGhostInExec, "ghost variable %s used in exec code of %s", e.Name, c.fn.Name).
				WithSpan(c.fn.Span).
				WithLabel(e.Span, "used here")
		}
		return nil
	case ir.ExprCall:
		if err := c.call(e, mode); err != nil {
			return err
		}
	case ir.ExprAssert, ir.ExprAssume:
		if err := c.expr(e.Args[0], ir.ModeSpec, ghostVars); err != nil {
			return err
		}
		return c.expr(e.Args[1], mode, ghostVars)
	case ir.ExprQuant:
		for _, trig := range e.Triggers {
			for _, term := range trig {
				if err := c.expr(term, ir.ModeSpec, ghostVars); err != nil {
					return err
				}
			}
		}
		return c.expr(e.Args[0], ir.ModeSpec, ghostVars)
	case ir.ExprLet:
		if err := c.expr(e.Args[0], mode, ghostVars); err != nil {
			return err
		}
		if ghostVars[e.Name] {
			// an exec let shadows a ghost parameter
			ghostVars = without(ghostVars, e.Name)
		}
		return c.expr(e.Args[1], mode, ghostVars)
	}
	for _, a := range e.Args {
		if err := c.expr(a, mode, ghostVars); err != nil {
			return err
		}
	}
	return nil
}

func (c *checker) call(e *ir.Expr, mode ir.Mode) error {
	callee, ok := c.idx.Function(*e.Fun)
	if !ok {
		return nil
	}
	if c.fn.Mode == ir.ModeExec && c.fn.Body != nil {
		c.erasure.Calls = append(c.erasure.Calls, CallMode{Caller: c.fn.Name, Callee: callee.Name, Span: e.Span, Mode: mode})
	}
	allowed := rank(callee.Mode) <= rank(mode)
	if mode == ir.ModeExec {
		allowed = callee.Mode == ir.ModeExec
	}
	if allowed {
		return nil
	}
	var code diag.Code
	switch {
	case mode == ir.ModeSpec:
		code = diag.ModeSpecCallsNonSpec
	case mode == ir.ModeProof:
		code = diag.ModeProofCallsExec
	default:
		code = diag.ModeGhostInExec
	}
	return diag.Errorf(code, "cannot call %s function %s from %s code in %s", callee.Mode, callee.Name, mode, c.fn.Name).
		WithSpan(c.fn.Span).
		WithLabel(e.Span, "called here")
}

func without(m map[string]bool, name string) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		if k != name {
			out[k] = v
		}
	}
	return out
}
