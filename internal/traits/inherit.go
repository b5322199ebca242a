// Package traits resolves trait plumbing on a merged unit: default method
// bodies, ensures flags and impl completeness.
package traits

import (
	"venir/internal/ir"
)

// InheritDefaultBodies synthesises an impl method for every trait method
// with a default body that an impl leaves out. The synthesised function is
// a copy of the declaration retargeted at the impl and marked Inherited.
func InheritDefaultBodies(u *ir.Unit) *ir.Unit {
	idx := ir.NewIndex(u)
	var added []*ir.Function
	for _, ti := range u.TraitImpls {
		tr, ok := idx.Trait(ti.Trait)
		if !ok {
			continue
		}
		for _, m := range tr.Methods {
			decl, ok := idx.Function(m)
			if !ok || decl.Body == nil {
				continue
			}
			if _, done := idx.ImplMethods[ir.ImplMethodKey(ti.Impl, m)]; done {
				continue
			}
			added = append(added, inherit(decl, ti))
		}
	}
	if len(added) == 0 {
		return u
	}
	out := u.Clone()
	out.Functions = append(out.Functions, added...)
	return ir.Sort(out)
}

func inherit(decl *ir.Function, ti ir.TraitImpl) *ir.Function {
	f := decl.Clone()
	impl := ti.Impl.Clone()
	method := decl.Name.Clone()
	trait := ti.Trait.Clone()
	f.Name = ti.Impl.Child(decl.Name.Last())
	f.Owning = ti.Owning.Clone()
	f.Kind = ir.FunTraitMethodImpl
	f.Trait = &trait
	f.Method = &method
	f.Impl = &impl
	f.Attrs.Inherited = true
	return f
}

// FixupEnsHasReturn copies EnsHasReturn from trait method declarations onto
// their implementations.
func FixupEnsHasReturn(u *ir.Unit) *ir.Unit {
	idx := ir.NewIndex(u)
	var out *ir.Unit
	for i, f := range u.Functions {
		if f.Kind != ir.FunTraitMethodImpl || f.Method == nil || f.EnsHasReturn {
			continue
		}
		decl, ok := idx.Function(*f.Method)
		if !ok || !decl.EnsHasReturn {
			continue
		}
		if out == nil {
			out = u.Clone()
		}
		c := f.Clone()
		c.EnsHasReturn = true
		out.Functions[i] = c
	}
	if out == nil {
		return u
	}
	return out
}
