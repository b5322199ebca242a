// Package prune reduces a unit to the items reachable from a root scope.
package prune

import (
	"slices"

	"venir/internal/callgraph"
	"venir/internal/ir"
)

// Options selects the root scope. Exactly one of Root and Module is set.
type Options struct {
	// Root makes every item of this unit a root (whole-unit pruning).
	Root *ir.Unit
	// Module makes the functions, datatypes and trait impls owned by this
	// module roots (bucket pruning).
	Module *ir.Path
	// Functions restricts the function roots of Module to this subset.
	// nil means every function of Module; an empty non-nil slice means none.
	Functions []ir.Path
	// ForVerification drops the bodies of non-root exec/proof functions;
	// callers only need their specifications.
	ForVerification bool
}

const (
	fnPrefix    = "fn:"
	dtPrefix    = "dt:"
	traitPrefix = "trait:"
	implPrefix  = "impl:"
)

// Unit returns the part of unpruned reachable from opts' roots. Item order
// is preserved; the input is not modified.
func Unit(unpruned *ir.Unit, opts Options) *ir.Unit {
	roots, rootFns := rootSet(unpruned, opts)

	keepBody := func(f *ir.Function) bool {
		return !opts.ForVerification || rootFns[f.Name.String()] || f.Mode == ir.ModeSpec
	}
	g := buildGraph(unpruned, keepBody)

	reached := g.Reachable(roots...)
	// Trait impls and impl methods only become live once both ends are live,
	// so iterate to a fixpoint.
	for {
		var extra []string
		for _, ti := range unpruned.TraitImpls {
			key := implPrefix + ti.Impl.String()
			if reached[key] || !reached[traitPrefix+ti.Trait.String()] {
				continue
			}
			if selfTypeLive(ti.ForType, reached) {
				extra = append(extra, key)
			}
		}
		for _, f := range unpruned.Functions {
			key := fnPrefix + f.Name.String()
			if reached[key] || f.Kind != ir.FunTraitMethodImpl || f.Impl == nil || f.Method == nil {
				continue
			}
			if reached[implPrefix+f.Impl.String()] && reached[fnPrefix+f.Method.String()] {
				extra = append(extra, key)
			}
		}
		if len(extra) == 0 {
			break
		}
		for k := range g.Reachable(append(extra, keys(reached)...)...) {
			reached[k] = true
		}
	}

	out := &ir.Unit{Name: unpruned.Name, Arch: unpruned.Arch}
	owners := make(map[string]bool)
	for _, f := range unpruned.Functions {
		if !reached[fnPrefix+f.Name.String()] {
			continue
		}
		if f.Body != nil && !keepBody(f) {
			f = f.Clone()
			f.Body = nil
		}
		out.Functions = append(out.Functions, f)
		owners[f.Owning.String()] = true
	}
	for _, d := range unpruned.Datatypes {
		if reached[dtPrefix+d.Name.String()] {
			out.Datatypes = append(out.Datatypes, d)
			owners[d.Owning.String()] = true
		}
	}
	for _, t := range unpruned.Traits {
		if reached[traitPrefix+t.Name.String()] {
			out.Traits = append(out.Traits, t)
			owners[t.Owning.String()] = true
		}
	}
	for _, ti := range unpruned.TraitImpls {
		if reached[implPrefix+ti.Impl.String()] {
			out.TraitImpls = append(out.TraitImpls, ti)
			owners[ti.Owning.String()] = true
		}
	}
	rootModules := make(map[string]bool)
	if opts.Root != nil {
		for _, m := range opts.Root.Modules {
			rootModules[m.Path.String()] = true
		}
	}
	if opts.Module != nil {
		rootModules[opts.Module.String()] = true
	}
	for _, m := range unpruned.Modules {
		if owners[m.Path.String()] || rootModules[m.Path.String()] {
			out.Modules = append(out.Modules, m)
		}
	}
	return out
}

func rootSet(u *ir.Unit, opts Options) (roots []string, rootFns map[string]bool) {
	rootFns = make(map[string]bool)
	if opts.Root != nil {
		for _, f := range opts.Root.Functions {
			roots = append(roots, fnPrefix+f.Name.String())
			rootFns[f.Name.String()] = true
		}
		for _, d := range opts.Root.Datatypes {
			roots = append(roots, dtPrefix+d.Name.String())
		}
		for _, t := range opts.Root.Traits {
			roots = append(roots, traitPrefix+t.Name.String())
		}
		for _, ti := range opts.Root.TraitImpls {
			roots = append(roots, implPrefix+ti.Impl.String())
		}
		return roots, rootFns
	}
	if opts.Module == nil {
		return nil, rootFns
	}
	subset := func(p ir.Path) bool {
		return opts.Functions == nil || slices.ContainsFunc(opts.Functions, p.Equal)
	}
	for _, f := range u.Functions {
		if f.Owning.Equal(*opts.Module) && subset(f.Name) {
			roots = append(roots, fnPrefix+f.Name.String())
			rootFns[f.Name.String()] = true
		}
	}
	for _, d := range u.Datatypes {
		if d.Owning.Equal(*opts.Module) {
			roots = append(roots, dtPrefix+d.Name.String())
		}
	}
	for _, ti := range u.TraitImpls {
		if ti.Owning.Equal(*opts.Module) {
			roots = append(roots, implPrefix+ti.Impl.String())
		}
	}
	return roots, rootFns
}

func buildGraph(u *ir.Unit, keepBody func(*ir.Function) bool) *callgraph.Graph {
	b := callgraph.NewBuilder()
	addTyp := func(from string, t ir.Typ) {
		for _, d := range t.Datatypes() {
			b.AddEdge(from, dtPrefix+d.String())
		}
	}
	addExpr := func(from string, e *ir.Expr) {
		ir.Walk(e, func(n *ir.Expr) bool {
			switch n.Kind {
			case ir.ExprCall:
				b.AddEdge(from, fnPrefix+n.Fun.String())
			case ir.ExprQuant:
				for _, bd := range n.Binders {
					addTyp(from, bd.Typ)
				}
				for _, trig := range n.Triggers {
					for _, term := range trig {
						for _, c := range ir.Calls(term) {
							b.AddEdge(from, fnPrefix+c.String())
						}
					}
				}
			}
			return true
		})
	}

	for _, f := range u.Functions {
		from := fnPrefix + f.Name.String()
		b.AddNode(from)
		for _, p := range f.Params {
			addTyp(from, p.Typ)
		}
		if f.Ret != nil {
			addTyp(from, f.Ret.Typ)
		}
		for _, e := range f.Requires {
			addExpr(from, e)
		}
		for _, e := range f.Ensures {
			addExpr(from, e)
		}
		for _, e := range f.Decreases {
			addExpr(from, e)
		}
		if f.Body != nil && keepBody(f) {
			addExpr(from, f.Body)
		}
		if f.Attrs.Autospec != nil {
			b.AddEdge(from, fnPrefix+f.Attrs.Autospec.String())
		}
		if f.Trait != nil {
			b.AddEdge(from, traitPrefix+f.Trait.String())
		}
		// an impl method keeps the declaration it implements (and its ensures)
		if f.Method != nil {
			b.AddEdge(from, fnPrefix+f.Method.String())
		}
	}
	for _, d := range u.Datatypes {
		from := dtPrefix + d.Name.String()
		b.AddNode(from)
		for _, v := range d.Variants {
			for _, fld := range v.Fields {
				addTyp(from, fld.Typ)
			}
		}
	}
	for _, t := range u.Traits {
		b.AddNode(traitPrefix + t.Name.String())
	}
	for _, ti := range u.TraitImpls {
		from := implPrefix + ti.Impl.String()
		b.AddEdge(from, traitPrefix+ti.Trait.String())
		addTyp(from, ti.ForType)
	}
	return b.Build()
}

func selfTypeLive(t ir.Typ, reached map[string]bool) bool {
	for _, d := range t.Datatypes() {
		if !reached[dtPrefix+d.String()] {
			return false
		}
	}
	return true
}

func keys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
