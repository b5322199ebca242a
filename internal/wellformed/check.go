package wellformed

import (
	"strings"

	"venir/internal/callgraph"
	"venir/internal/diag"
	"venir/internal/ir"
)

// Options tune Check.
type Options struct {
	// Current names the unit under verification; cheating rules and
	// advisories only apply to its functions.
	Current string
	// NoVerify skips the advisories that only matter when bodies are verified.
	NoVerify bool
	// NoCheating rejects assume and external_body in the current unit.
	NoCheating bool
}

type checker struct {
	pruned    *ir.Index
	unpruned  *ir.Index
	calls     *callgraph.Graph
	recursive map[string]bool
	opts      Options
	adv       *diag.Bag
}

// Check validates the merged unit. unpruned is the merged unit before
// pruning. Advisory warnings and notes are appended to adv.
func Check(pruned, unpruned *ir.Unit, adv *diag.Bag, opts Options) error {
	calls := callgraph.FromUnit(pruned)
	c := &checker{
		pruned:    ir.NewIndex(pruned),
		unpruned:  ir.NewIndex(unpruned),
		calls:     calls,
		recursive: calls.Recursive(),
		opts:      opts,
		adv:       adv,
	}
	for _, d := range pruned.Datatypes {
		for _, v := range d.Variants {
			for _, fld := range v.Fields {
				if err := c.typ(fld.Typ, d.Span); err != nil {
					return err
				}
			}
		}
	}
	for _, ti := range pruned.TraitImpls {
		if _, ok := c.unpruned.Trait(ti.Trait); !ok {
			return diag.Errorf(diag.WfUnknownTrait, "impl %s refers to undeclared trait %s", ti.Impl, ti.Trait).
				WithSpan(ti.Span)
		}
		if err := c.typ(ti.ForType, ti.Span); err != nil {
			return err
		}
	}
	for _, f := range pruned.Functions {
		if err := c.function(f); err != nil {
			return err
		}
	}
	return nil
}

func (c *checker) advise(msg *diag.VirMessage) {
	if c.adv != nil {
		c.adv.Add(diag.Entry{Msg: msg, Level: msg.Level})
	}
}

func (c *checker) isCurrent(f *ir.Function) bool {
	return f.Name.Krate == c.opts.Current
}

func (c *checker) typ(t ir.Typ, sp ir.Span) error {
	for _, d := range t.Datatypes() {
		if _, ok := c.pruned.Datatype(d); !ok {
			return diag.Errorf(diag.WfUnknownDatatype, "type %s refers to undeclared datatype %s", t, d).WithSpan(sp)
		}
	}
	return nil
}

func (c *checker) function(f *ir.Function) error {
	for _, p := range f.Params {
		if err := c.typ(p.Typ, f.Span); err != nil {
			return err
		}
	}
	if f.Ret != nil {
		if err := c.typ(f.Ret.Typ, f.Span); err != nil {
			return err
		}
	}

	if f.Mode == ir.ModeSpec && len(f.Ensures) > 0 {
		return diag.Errorf(diag.WfSpecClauses, "spec function %s cannot have ensures clauses", f.Name).
			WithSpan(f.Span).
			WithHelp("state the property as a separate proof function")
	}

	params := make(map[string]bool, len(f.Params))
	for _, p := range f.Params {
		params[p.Name] = true
	}
	withRet := params
	if f.Ret != nil {
		withRet = with(params, f.Ret.Name)
	}
	for _, e := range f.Requires {
		if err := c.expr(f, e, params); err != nil {
			return err
		}
	}
	for _, e := range f.Ensures {
		if err := c.expr(f, e, withRet); err != nil {
			return err
		}
	}
	for _, e := range f.Decreases {
		if err := c.expr(f, e, params); err != nil {
			return err
		}
	}
	if f.Body != nil {
		if err := c.expr(f, f.Body, params); err != nil {
			return err
		}
	}

	recursive := c.recursive[f.Name.String()]
	switch {
	case recursive && f.HasBody() && len(f.Decreases) == 0 && f.Mode != ir.ModeExec:
		msg := diag.Errorf(diag.WfMissingDecreases, "recursive function %s must have a decreases clause", f.Name).
			WithSpan(f.Span)
		if cycle := c.calls.Component(f.Name.String()); len(cycle) > 1 {
			msg = msg.WithHelp("mutually recursive with " + strings.Join(cycle, ", "))
		}
		return msg
	case !recursive && len(f.Decreases) > 0 && !c.opts.NoVerify && c.isCurrent(f):
		c.advise(diag.Warningf(diag.WfNeedlessDecreases, "decreases clause on non-recursive function %s", f.Name).
			WithSpan(f.Span))
	}

	if f.Attrs.ExternalBody && c.isCurrent(f) {
		if c.opts.NoCheating && f.Mode == ir.ModeExec {
			return diag.Errorf(diag.WfExternalBodyForbidden, "external_body on %s is not allowed with no_cheating", f.Name).
				WithSpan(f.Span)
		}
		c.advise(diag.Notef(diag.WfTrustedBody, "the body of %s is trusted, not verified", f.Name).WithSpan(f.Span))
	}
	return nil
}

// expr checks variable scoping and call targets of e under the bound names.
func (c *checker) expr(f *ir.Function, e *ir.Expr, bound map[string]bool) error {
	if e == nil {
		return nil
	}
	switch e.Kind {
	case ir.ExprVar:
		if !bound[e.Name] {
			return diag.Errorf(diag.WfUnboundVar, "unbound variable %s in %s", e.Name, f.Name).
				WithSpan(f.Span).
				WithLabel(e.Span, "used here")
		}
		return nil
	case ir.ExprLet:
		if err := c.expr(f, e.Args[0], bound); err != nil {
			return err
		}
		return c.expr(f, e.Args[1], with(bound, e.Name))
	case ir.ExprQuant:
		inner := bound
		for _, b := range e.Binders {
			inner = with(inner, b.Name)
			if err := c.typ(b.Typ, e.Span); err != nil {
				return err
			}
		}
		for _, trig := range e.Triggers {
			for _, term := range trig {
				if err := c.expr(f, term, inner); err != nil {
					return err
				}
			}
		}
		return c.expr(f, e.Args[0], inner)
	case ir.ExprCall:
		if err := c.call(f, e); err != nil {
			return err
		}
	case ir.ExprAssume:
		if c.isCurrent(f) {
			if c.opts.NoCheating {
				return diag.Errorf(diag.WfAssumeForbidden, "assume is not allowed with no_cheating").
					WithSpan(f.Span).
					WithLabel(e.Span, "assume here")
			}
			if !c.opts.NoVerify {
				c.advise(diag.Warningf(diag.WfAssumeUsed, "%s uses assume; the assumed fact is not proven", f.Name).
					WithSpan(e.Span))
			}
		}
	}
	for _, a := range e.Args {
		if err := c.expr(f, a, bound); err != nil {
			return err
		}
	}
	return nil
}

func (c *checker) call(f *ir.Function, e *ir.Expr) error {
	callee, ok := c.pruned.Function(*e.Fun)
	if !ok {
		if _, known := c.unpruned.Function(*e.Fun); known {
			return diag.Errorf(diag.WfPrunedCallee, "%s calls %s, which was pruned away", f.Name, e.Fun).
				WithSpan(f.Span).
				WithLabel(e.Span, "called here")
		}
		return diag.Errorf(diag.WfUnknownCallee, "%s calls undeclared function %s", f.Name, e.Fun).
			WithSpan(f.Span).
			WithLabel(e.Span, "called here")
	}
	if len(e.Args) != len(callee.Params) {
		return diag.Errorf(diag.WfArity, "%s expects %d arguments, got %d", callee.Name, len(callee.Params), len(e.Args)).
			WithSpan(f.Span).
			WithLabel(e.Span, "called here")
	}
	if !callee.Public && !visibleFrom(callee.Owning, f.Owning) {
		return diag.Errorf(diag.WfPrivateCallee, "%s is private to module %s", callee.Name, callee.Owning).
			WithSpan(f.Span).
			WithLabel(e.Span, "called here")
	}
	return nil
}

// visibleFrom reports whether items private to owner can be used from
// module user: the same module or one nested inside it.
func visibleFrom(owner, user ir.Path) bool {
	o, u := owner.String(), user.String()
	return u == o || strings.HasPrefix(u, o+"::")
}

func with(m map[string]bool, name string) map[string]bool {
	out := make(map[string]bool, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	out[name] = true
	return out
}
