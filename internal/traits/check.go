package traits

import (
	"venir/internal/diag"
	"venir/internal/ir"
)

// Check verifies that every trait impl implements exactly the methods its
// trait declares (methods with a default body may be omitted), that impl
// methods agree with their declarations, and that a trait is implemented at
// most once per type.
func Check(u *ir.Unit) error {
	idx := ir.NewIndex(u)

	for _, f := range u.Functions {
		if f.Kind != ir.FunTraitMethodImpl || f.Method == nil || f.Trait == nil {
			continue
		}
		tr, ok := idx.Trait(*f.Trait)
		if !ok {
			return diag.Errorf(diag.WfUnknownTrait, "%s implements a method of undeclared trait %s", f.Name, *f.Trait).
				WithSpan(f.Span)
		}
		if !tr.External && !containsPath(tr.Methods, *f.Method) {
			return diag.Errorf(diag.TraitUnknownMethod, "%s is not a method of trait %s", f.Method, tr.Name).
				WithSpan(f.Span)
		}
		decl, ok := idx.Function(*f.Method)
		if !ok {
			continue
		}
		if err := sameSignature(decl, f); err != nil {
			return err
		}
	}

	seen := make(map[string]ir.TraitImpl)
	for _, ti := range u.TraitImpls {
		key := ti.Trait.String() + " for " + ti.ForType.String()
		if prev, dup := seen[key]; dup {
			return diag.Errorf(diag.TraitDuplicateImpl, "trait %s is implemented more than once", key).
				WithSpan(prev.Span).
				WithLabel(ti.Span, "second implementation")
		}
		seen[key] = ti

		tr, ok := idx.Trait(ti.Trait)
		if !ok {
			return diag.Errorf(diag.WfUnknownTrait, "impl %s refers to undeclared trait %s", ti.Impl, ti.Trait).
				WithSpan(ti.Span)
		}
		if tr.External {
			continue
		}
		for _, m := range tr.Methods {
			if _, ok := idx.ImplMethods[ir.ImplMethodKey(ti.Impl, m)]; ok {
				continue
			}
			if decl, ok := idx.Function(m); ok && decl.Body != nil {
				continue
			}
			return diag.Errorf(diag.TraitMissingMethod, "impl %s does not implement %s", ti.Impl, m).
				WithSpan(ti.Span)
		}
	}
	return nil
}

func sameSignature(decl, impl *ir.Function) error {
	mismatch := func(what string) error {
		return diag.Errorf(diag.TraitImplMismatch, "%s does not match trait method %s: %s", impl.Name, decl.Name, what).
			WithSpan(impl.Span).
			WithLabel(decl.Span, "declared here")
	}
	if decl.Mode != impl.Mode {
		return mismatch("mode " + string(impl.Mode) + " instead of " + string(decl.Mode))
	}
	if len(decl.Params) != len(impl.Params) {
		return mismatch("wrong number of parameters")
	}
	for i := range decl.Params {
		if decl.Params[i].Mode != impl.Params[i].Mode {
			return mismatch("parameter " + impl.Params[i].Name + " has a different mode")
		}
	}
	if (decl.Ret == nil) != (impl.Ret == nil) {
		return mismatch("return value")
	}
	return nil
}

func containsPath(ps []ir.Path, p ir.Path) bool {
	for _, q := range ps {
		if q.Equal(p) {
			return true
		}
	}
	return false
}
