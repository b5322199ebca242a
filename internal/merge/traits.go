package merge

import (
	"slices"

	"venir/internal/ir"
)

// ExternalTraits merges trait declarations sharing a path: a trait may be
// declared as external in one unit and defined in another. Methods are
// unioned, the non-external declaration keeps its span and owner. The
// merged trait takes the position of the first declaration.
func ExternalTraits(u *ir.Unit) *ir.Unit {
	byName := make(map[string]int)
	var traits []*ir.Trait
	changed := false
	for _, t := range u.Traits {
		key := t.Name.String()
		i, dup := byName[key]
		if !dup {
			byName[key] = len(traits)
			traits = append(traits, t)
			continue
		}
		changed = true
		traits[i] = mergeTrait(traits[i], t)
	}
	if !changed {
		return u
	}
	out := u.Clone()
	out.Traits = traits
	return out
}

func mergeTrait(a, b *ir.Trait) *ir.Trait {
	c := *a
	if a.External && !b.External {
		c.Span = b.Span
		c.Owning = b.Owning
	}
	c.External = a.External && b.External
	c.Methods = append(append([]ir.Path(nil), a.Methods...), b.Methods...)
	slices.SortFunc(c.Methods, ir.Path.Compare)
	c.Methods = slices.CompactFunc(c.Methods, ir.Path.Equal)
	return &c
}
