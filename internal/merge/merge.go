// Package merge combines the unit under verification with imported library
// units and prunes the result back to what the unit actually uses.
package merge

import (
	"strings"

	"venir/internal/diag"
	"venir/internal/ir"
)

// Units concatenates units into one unpruned unit named after the last one.
//
// Duplicates are resolved as follows:
//   - functions with the same path and fingerprint collapse into one copy,
//     a copy with a body wins over a declaration;
//   - functions or datatypes with the same path but different fingerprints
//     are a name collision;
//   - modules and trait impls dedupe by path;
//   - traits are kept as is (see ExternalTraits).
//
// The result is sorted, so the order of the input units does not matter.
func Units(units ...*ir.Unit) (*ir.Unit, error) {
	out := &ir.Unit{}
	if len(units) == 0 {
		return out, nil
	}
	out.Name = units[len(units)-1].Name

	var archFrom *ir.Unit
	modules := make(map[string]bool)
	funcs := make(map[string]int)
	dts := make(map[string]int)
	impls := make(map[string]int)

	for _, u := range units {
		if u == nil {
			continue
		}
		if wb := u.Arch.WordBits; wb != 0 {
			if archFrom != nil && out.Arch.WordBits != wb {
				return nil, diag.Errorf(diag.MergeArchConflict,
					"units %s and %s disagree on the machine word width (%d vs %d bits)",
					archFrom.Name, u.Name, out.Arch.WordBits, wb)
			}
			out.Arch.WordBits = wb
			archFrom = u
		}
		for _, m := range u.Modules {
			key := m.Path.String()
			if !modules[key] {
				modules[key] = true
				out.Modules = append(out.Modules, m)
			}
		}
		for _, f := range u.Functions {
			key := f.Name.String()
			i, dup := funcs[key]
			if !dup {
				funcs[key] = len(out.Functions)
				out.Functions = append(out.Functions, f)
				continue
			}
			prev := out.Functions[i]
			if ir.Fingerprint(prev) != ir.Fingerprint(f) {
				return nil, diag.Errorf(diag.MergeNameCollision,
					"function %s is declared with incompatible signatures", key).
					WithSpan(prev.Span).
					WithLabel(f.Span, "conflicting declaration")
			}
			if preferFunction(f, prev) {
				out.Functions[i] = f
			}
		}
		for _, d := range u.Datatypes {
			key := d.Name.String()
			i, dup := dts[key]
			if !dup {
				dts[key] = len(out.Datatypes)
				out.Datatypes = append(out.Datatypes, d)
				continue
			}
			prev := out.Datatypes[i]
			if ir.DatatypeFingerprint(prev) != ir.DatatypeFingerprint(d) {
				return nil, diag.Errorf(diag.MergeDatatypeCollision,
					"datatype %s is declared with incompatible definitions", key).
					WithSpan(prev.Span).
					WithLabel(d.Span, "conflicting declaration")
			}
			if d.Span.AsString < prev.Span.AsString {
				out.Datatypes[i] = d
			}
		}
		out.Traits = append(out.Traits, u.Traits...)
		for _, ti := range u.TraitImpls {
			key := ti.Impl.String()
			i, dup := impls[key]
			if !dup {
				impls[key] = len(out.TraitImpls)
				out.TraitImpls = append(out.TraitImpls, ti)
				continue
			}
			if ti.Span.AsString < out.TraitImpls[i].Span.AsString {
				out.TraitImpls[i] = ti
			}
		}
	}
	return ir.Sort(out), nil
}

// preferFunction reports whether candidate should replace kept. Bodies win;
// otherwise the choice is made on content so that input order is irrelevant.
func preferFunction(candidate, kept *ir.Function) bool {
	if (candidate.Body != nil) != (kept.Body != nil) {
		return candidate.Body != nil
	}
	return functionKey(candidate) < functionKey(kept)
}

func functionKey(f *ir.Function) string {
	var sb strings.Builder
	sb.WriteString(f.Span.AsString)
	sb.WriteByte(0)
	if f.Body != nil {
		sb.WriteString(ir.ExprString(f.Body))
	}
	return sb.String()
}
