package sst

import (
	"slices"

	"venir/internal/diag"
	"venir/internal/ir"
)

// selectTrigger picks trigger terms for a quantifier written without
// explicit triggers. Candidates are the call subterms of the body that
// mention at least one binder. A single candidate covering every binder is
// preferred, the smallest one first; otherwise candidates are added
// greedily until all binders are covered. The choice is low-confidence
// when it had to pick among several equally good options, unless the
// quantifier was marked auto.
func selectTrigger(q *ir.Expr) ([]*ir.Expr, bool, error) {
	binders := make([]string, len(q.Binders))
	for i, b := range q.Binders {
		binders[i] = b.Name
	}

	type candidate struct {
		term   *ir.Expr
		covers []string
		size   int
		key    string
	}
	var cands []candidate
	seen := make(map[string]bool)
	ir.Walk(q.Args[0], func(n *ir.Expr) bool {
		if n.Kind == ir.ExprQuant {
			return false
		}
		if n.Kind != ir.ExprCall {
			return true
		}
		key := ir.ExprString(n)
		if seen[key] {
			return true
		}
		var covers []string
		for _, b := range binders {
			if ir.Mentions(n, map[string]bool{b: true}) {
				covers = append(covers, b)
			}
		}
		if len(covers) > 0 {
			seen[key] = true
			cands = append(cands, candidate{term: n, covers: covers, size: size(n), key: key})
		}
		return true
	})
	if len(cands) == 0 {
		return nil, false, diag.Errorf(diag.VerifyTriggerMissing, "could not infer a trigger for this quantifier").
			WithSpan(q.Span).
			WithHelp("add an explicit trigger, or a function call that mentions every bound variable")
	}

	slices.SortStableFunc(cands, func(a, b candidate) int { return a.size - b.size })

	var full []candidate
	for _, c := range cands {
		if len(c.covers) == len(binders) {
			full = append(full, c)
		}
	}
	if len(full) > 0 {
		best := full[0]
		ties := 0
		for _, c := range full {
			if c.size == best.size {
				ties++
			}
		}
		low := !q.Auto && (ties > 1 || len(cands) > len(full))
		return []*ir.Expr{best.term}, low, nil
	}

	covered := make(map[string]bool)
	var terms []*ir.Expr
	for _, c := range cands {
		adds := false
		for _, b := range c.covers {
			if !covered[b] {
				adds = true
			}
		}
		if !adds {
			continue
		}
		terms = append(terms, c.term)
		for _, b := range c.covers {
			covered[b] = true
		}
	}
	if len(covered) < len(binders) {
		return nil, false, diag.Errorf(diag.VerifyTriggerMissing, "could not infer a trigger covering every bound variable").
			WithSpan(q.Span)
	}
	return terms, !q.Auto, nil
}

func size(e *ir.Expr) int {
	n := 0
	ir.Walk(e, func(*ir.Expr) bool {
		n++
		return true
	})
	return n
}
