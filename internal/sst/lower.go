package sst

import (
	"fmt"
	"io"
	"slices"

	"venir/internal/diag"
	"venir/internal/ir"
)

// Options configure lowering.
type Options struct {
	// InterpBudget bounds the evaluation of one ground spec call.
	InterpBudget uint64
	// InterpLog receives one line per ground evaluation (may be nil).
	InterpLog io.Writer
}

// DefaultInterpBudget is used when Options.InterpBudget is zero.
const DefaultInterpBudget = 100_000

// Lowered is the result of lowering one function.
type Lowered struct {
	Queries  []*Query
	Triggers []ChosenTrigger
	// Notes are non-fatal findings, e.g. interpreter overflows.
	Notes []*diag.VirMessage
}

type state struct {
	facts []*ir.Expr
	env   map[string]*ir.Expr
}

func (st *state) child(extra ...*ir.Expr) *state {
	facts := slices.Clone(st.facts)
	facts = append(facts, extra...)
	return &state{facts: facts, env: st.env}
}

type lowerer struct {
	idx    *ir.Index
	fn     *ir.Function
	defs   map[string]*ir.Function
	bits   uint32
	opts   Options
	vars   []Var
	fresh  int
	out    *Lowered
	interp *Interp
}

// SpecDefs collects the spec functions of u by path.
func SpecDefs(u *ir.Unit) map[string]*ir.Function {
	defs := make(map[string]*ir.Function)
	for _, f := range u.Functions {
		if f.Mode == ir.ModeSpec {
			defs[f.Name.String()] = f
		}
	}
	return defs
}

// LowerFunction turns f into queries. Functions without a checked body
// produce nothing. idx and defs describe the unit f belongs to.
func LowerFunction(idx *ir.Index, defs map[string]*ir.Function, wordBits uint32, f *ir.Function, opts Options) (*Lowered, error) {
	out := &Lowered{}
	if !f.HasBody() {
		return out, nil
	}
	budget := opts.InterpBudget
	if budget == 0 {
		budget = DefaultInterpBudget
	}
	l := &lowerer{
		idx:    idx,
		fn:     f,
		defs:   defs,
		bits:   wordBits,
		opts:   opts,
		out:    out,
		interp: NewInterp(defs, wordBits, budget),
	}
	for _, p := range f.Params {
		l.vars = append(l.vars, Var{Name: p.Name, Typ: p.Typ})
	}

	st := &state{env: map[string]*ir.Expr{}}
	for _, req := range f.Requires {
		v, err := l.eval(req, st)
		if err != nil {
			return nil, err
		}
		st.facts = append(st.facts, v)
	}

	result, err := l.eval(f.Body, st)
	if err != nil {
		return nil, err
	}

	for _, ens := range l.ensures(f, result) {
		goal, err := l.eval(ens.expr, st)
		if err != nil {
			return nil, err
		}
		l.query(Postcondition, st, goal, f.Span, ens.span)
	}
	return out, nil
}

// LowerFunctions lowers the named functions of u in order and concatenates
// the results.
func LowerFunctions(u *ir.Unit, names []ir.Path, opts Options) (*Lowered, error) {
	idx := ir.NewIndex(u)
	defs := SpecDefs(u)
	bits := u.WordBits()
	out := &Lowered{}
	for _, name := range names {
		f, ok := idx.Function(name)
		if !ok {
			return nil, diag.Errorf(diag.Internal, "function %s is not in the unit being lowered", name)
		}
		one, err := LowerFunction(idx, defs, bits, f, opts)
		if err != nil {
			return nil, err
		}
		out.Queries = append(out.Queries, one.Queries...)
		out.Triggers = append(out.Triggers, one.Triggers...)
		out.Notes = append(out.Notes, one.Notes...)
	}
	return out, nil
}

type clause struct {
	expr *ir.Expr
	span ir.Span
}

// ensures returns the postconditions of f instantiated for the parameters
// args and the return value ret. Implementations also get the ensures of
// the trait method they implement.
func (l *lowerer) ensuresFor(f *ir.Function, args []*ir.Expr, ret *ir.Expr) []clause {
	var out []clause
	add := func(g *ir.Function) {
		if len(g.Params) != len(args) {
			return
		}
		sub := make(map[string]*ir.Expr, len(args)+1)
		for i, p := range g.Params {
			sub[p.Name] = args[i]
		}
		if g.Ret != nil && ret != nil {
			sub[g.Ret.Name] = ret
		}
		for _, e := range g.Ensures {
			out = append(out, clause{expr: ir.Subst(e, sub), span: e.Span})
		}
	}
	add(f)
	if f.Kind == ir.FunTraitMethodImpl && f.Method != nil {
		if decl, ok := l.idx.Function(*f.Method); ok {
			add(decl)
		}
	}
	return out
}

func (l *lowerer) ensures(f *ir.Function, result *ir.Expr) []clause {
	args := make([]*ir.Expr, len(f.Params))
	for i, p := range f.Params {
		args[i] = ir.Var(p.Name)
	}
	return l.ensuresFor(f, args, result)
}

func (l *lowerer) query(kind Kind, st *state, goal *ir.Expr, sp, label ir.Span) {
	l.out.Queries = append(l.out.Queries, &Query{
		Function: l.fn.Name,
		Kind:     kind,
		Span:     sp,
		Label:    label,
		Vars:     slices.Clone(l.vars),
		Facts:    slices.Clone(st.facts),
		Goal:     goal,
		Defs:     l.defs,
		WordBits: l.bits,
	})
}

func (l *lowerer) freshVar(base string, t ir.Typ) *ir.Expr {
	l.fresh++
	name := fmt.Sprintf("%s@%d", base, l.fresh)
	l.vars = append(l.vars, Var{Name: name, Typ: t})
	return ir.Var(name)
}

// eval lowers e under st and returns its value as a pure expression over
// the query variables. Obligations found on the way become queries; facts
// learned (assumes, callee ensures) are appended to st.
func (l *lowerer) eval(e *ir.Expr, st *state) (*ir.Expr, error) {
	switch e.Kind {
	case ir.ExprConst:
		return e, nil
	case ir.ExprVar:
		if v, ok := st.env[e.Name]; ok {
			return v, nil
		}
		return e, nil
	case ir.ExprUnop:
		x, err := l.eval(e.Args[0], st)
		if err != nil {
			return nil, err
		}
		return ir.Unop(e.Op, x).At(e.Span), nil
	case ir.ExprBinop:
		return l.binop(e, st)
	case ir.ExprIf:
		c, err := l.eval(e.Args[0], st)
		if err != nil {
			return nil, err
		}
		t, err := l.branch(st, c, e.Args[1])
		if err != nil {
			return nil, err
		}
		f, err := l.branch(st, ir.Unop(ir.OpNot, c), e.Args[2])
		if err != nil {
			return nil, err
		}
		return ir.If(c, t, f).At(e.Span), nil
	case ir.ExprLet:
		v, err := l.eval(e.Args[0], st)
		if err != nil {
			return nil, err
		}
		env := make(map[string]*ir.Expr, len(st.env)+1)
		for k, x := range st.env {
			env[k] = x
		}
		env[e.Name] = v
		inner := &state{facts: st.facts, env: env}
		res, err := l.eval(e.Args[1], inner)
		st.facts = inner.facts
		return res, err
	case ir.ExprCall:
		return l.call(e, st)
	case ir.ExprAssert:
		c, err := l.eval(e.Args[0], st)
		if err != nil {
			return nil, err
		}
		l.query(Assertion, st, c, e.Span, ir.Span{})
		st.facts = append(st.facts, c)
		return l.eval(e.Args[1], st)
	case ir.ExprAssume:
		c, err := l.eval(e.Args[0], st)
		if err != nil {
			return nil, err
		}
		st.facts = append(st.facts, c)
		return l.eval(e.Args[1], st)
	case ir.ExprQuant:
		return l.quant(e, st)
	}
	return nil, diag.Errorf(diag.Internal, "cannot lower %s expression", e.Kind).WithSpan(e.Span)
}

// branch lowers e assuming cond. Facts learned inside the branch are kept
// in st as implications from cond.
func (l *lowerer) branch(st *state, cond, e *ir.Expr) (*ir.Expr, error) {
	inner := st.child(cond)
	base := len(inner.facts)
	v, err := l.eval(e, inner)
	if err != nil {
		return nil, err
	}
	for _, fact := range inner.facts[base:] {
		st.facts = append(st.facts, ir.Binop(ir.OpImplies, cond, fact))
	}
	return v, nil
}

func (l *lowerer) binop(e *ir.Expr, st *state) (*ir.Expr, error) {
	left, err := l.eval(e.Args[0], st)
	if err != nil {
		return nil, err
	}
	var right *ir.Expr
	switch e.Op {
	case ir.OpAnd, ir.OpImplies:
		right, err = l.branch(st, left, e.Args[1])
	case ir.OpOr:
		right, err = l.branch(st, ir.Unop(ir.OpNot, left), e.Args[1])
	default:
		right, err = l.eval(e.Args[1], st)
	}
	if err != nil {
		return nil, err
	}
	return ir.Binop(e.Op, left, right).At(e.Span), nil
}

func (l *lowerer) call(e *ir.Expr, st *state) (*ir.Expr, error) {
	args := make([]*ir.Expr, len(e.Args))
	for i, a := range e.Args {
		v, err := l.eval(a, st)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	call := ir.Call(*e.Fun, args...).At(e.Span)

	callee, ok := l.idx.Function(*e.Fun)
	if !ok {
		return nil, diag.Errorf(diag.Internal, "call to unknown function %s survived validation", e.Fun).WithSpan(e.Span)
	}

	if callee.Name.Equal(l.fn.Name) && len(l.fn.Decreases) > 0 {
		l.termination(st, args, e.Span)
	}

	if callee.Mode == ir.ModeSpec {
		l.interp.Steps = 0
		if v, ok := EvalGround(l.interp, call, l.opts.InterpLog); ok {
			return v.Expr().At(e.Span), nil
		}
		if l.interp.Overflowed {
			l.interp.Overflowed = false
			l.out.Notes = append(l.out.Notes, diag.Notef(diag.VerifyInterpreterOverflow,
				"evaluation of %s hit the unfolding limit; the call is left to the solver", callee.Name).WithSpan(e.Span))
		}
		return call, nil
	}

	sub := make(map[string]*ir.Expr, len(args))
	for i, p := range callee.Params {
		if i < len(args) {
			sub[p.Name] = args[i]
		}
	}
	for _, req := range callee.Requires {
		l.query(Precondition, st, ir.Subst(req, sub), e.Span, req.Span)
	}

	var ret *ir.Expr
	if callee.Ret != nil {
		ret = l.freshVar(callee.Name.Last(), callee.Ret.Typ)
	}
	for _, c := range l.ensuresFor(callee, args, ret) {
		st.facts = append(st.facts, c.expr)
	}
	if ret == nil {
		return ir.BoolLit(true).At(e.Span), nil
	}
	return ret, nil
}

// termination adds the obligation that the first decreases measure of the
// current function, evaluated at the recursive call's arguments, is
// non-negative and smaller than at entry.
func (l *lowerer) termination(st *state, args []*ir.Expr, sp ir.Span) {
	measure := l.fn.Decreases[0]
	sub := make(map[string]*ir.Expr, len(args))
	for i, p := range l.fn.Params {
		if i < len(args) {
			sub[p.Name] = args[i]
		}
	}
	next := ir.Subst(measure, sub)
	goal := ir.Binop(ir.OpAnd,
		ir.Binop(ir.OpLe, ir.IntLit(0), next),
		ir.Binop(ir.OpLt, next, measure),
	).At(sp)
	l.query(Termination, st, goal, sp, measure.Span)
}

func (l *lowerer) quant(e *ir.Expr, st *state) (*ir.Expr, error) {
	q := e
	if len(st.env) > 0 {
		q = ir.Subst(e, st.env)
	}
	if len(q.Triggers) > 0 {
		return q, nil
	}
	terms, low, err := selectTrigger(q)
	if err != nil {
		return nil, err
	}
	c := *q
	c.Triggers = [][]*ir.Expr{terms}
	names := make([]string, len(terms))
	for i, t := range terms {
		names[i] = ir.ExprString(t)
	}
	l.out.Triggers = append(l.out.Triggers, ChosenTrigger{
		Module:        l.fn.Owning,
		Span:          e.Span,
		Terms:         names,
		LowConfidence: low,
	})
	return &c, nil
}
