package wellformed

import (
	"venir/internal/diag"
	"venir/internal/ir"
)

// CheckOne validates the unit under verification in isolation.
func CheckOne(u *ir.Unit) error {
	modules := make(map[string]bool, len(u.Modules))
	for _, m := range u.Modules {
		modules[m.Path.String()] = true
	}
	owner := func(what string, name, owning ir.Path, sp ir.Span) error {
		if modules[owning.String()] {
			return nil
		}
		return diag.Errorf(diag.WfUnknownModule, "%s %s is owned by undeclared module %s", what, name, owning).
			WithSpan(sp)
	}

	names := make(map[string]ir.Span)
	unique := func(name ir.Path, sp ir.Span) error {
		key := name.String()
		if prev, dup := names[key]; dup {
			return diag.Errorf(diag.WfDuplicateName, "%s is defined more than once", key).
				WithSpan(prev).
				WithLabel(sp, "redefined here")
		}
		names[key] = sp
		return nil
	}

	for _, f := range u.Functions {
		if err := unique(f.Name, f.Span); err != nil {
			return err
		}
		if err := owner("function", f.Name, f.Owning, f.Span); err != nil {
			return err
		}
		params := make(map[string]bool, len(f.Params))
		for _, p := range f.Params {
			if params[p.Name] {
				return diag.Errorf(diag.WfDuplicateParam, "parameter %s of %s is declared twice", p.Name, f.Name).
					WithSpan(f.Span)
			}
			params[p.Name] = true
		}
		if f.Ret != nil && params[f.Ret.Name] {
			return diag.Errorf(diag.WfDuplicateParam, "return value of %s shadows parameter %s", f.Name, f.Ret.Name).
				WithSpan(f.Span)
		}
		if f.EnsHasReturn && f.Ret == nil {
			return diag.Errorf(diag.WfMissingReturn, "ensures of %s refer to a return value, but %s returns nothing", f.Name, f.Name).
				WithSpan(f.Span)
		}
		switch f.Kind {
		case ir.FunTraitMethodDecl:
			if f.Trait == nil {
				return diag.Errorf(diag.WfUnknownTrait, "trait method %s does not name its trait", f.Name).WithSpan(f.Span)
			}
		case ir.FunTraitMethodImpl:
			if f.Trait == nil || f.Method == nil || f.Impl == nil {
				return diag.Errorf(diag.WfUnknownTrait, "trait method impl %s is missing its trait, method or impl", f.Name).
					WithSpan(f.Span)
			}
		}
	}
	for _, d := range u.Datatypes {
		if err := unique(d.Name, d.Span); err != nil {
			return err
		}
		if err := owner("datatype", d.Name, d.Owning, d.Span); err != nil {
			return err
		}
	}
	for _, t := range u.Traits {
		if err := owner("trait", t.Name, t.Owning, t.Span); err != nil {
			return err
		}
	}
	for _, ti := range u.TraitImpls {
		if err := owner("trait impl", ti.Impl, ti.Owning, ti.Span); err != nil {
			return err
		}
	}
	return nil
}
