package ir

import (
	"slices"
	"strings"
)

// Sort returns a copy of u with every item list in a stable, deterministic
// order: by path, then by span text. Input order never leaks past Sort.
func Sort(u *Unit) *Unit {
	out := u.Clone()
	slices.SortStableFunc(out.Modules, func(a, b Module) int {
		return a.Path.Compare(b.Path)
	})
	slices.SortStableFunc(out.Functions, func(a, b *Function) int {
		if c := a.Name.Compare(b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.Span.AsString, b.Span.AsString)
	})
	slices.SortStableFunc(out.Datatypes, func(a, b *Datatype) int {
		if c := a.Name.Compare(b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.Span.AsString, b.Span.AsString)
	})
	for i, t := range out.Traits {
		if slices.IsSortedFunc(t.Methods, Path.Compare) {
			continue
		}
		c := *t
		c.Methods = append([]Path(nil), t.Methods...)
		slices.SortFunc(c.Methods, Path.Compare)
		out.Traits[i] = &c
	}
	slices.SortStableFunc(out.Traits, func(a, b *Trait) int {
		if c := a.Name.Compare(b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.Span.AsString, b.Span.AsString)
	})
	slices.SortStableFunc(out.TraitImpls, func(a, b TraitImpl) int {
		if c := a.Impl.Compare(b.Impl); c != 0 {
			return c
		}
		return strings.Compare(a.Span.AsString, b.Span.AsString)
	})
	return out
}
