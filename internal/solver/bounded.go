package solver

import (
	"context"
	"errors"

	"venir/internal/sst"
)

// Bounded decides queries in-process by evaluating them over every
// assignment of the query variables. Variables with small types are
// enumerated completely and a query that holds everywhere is proved.
// Other variables are sampled, so such queries end as disproved (with a
// counterexample) or unknown.
type Bounded struct {
	MaxEnum  int64
	Window   int64
	MaxDepth int
}

func NewBounded() *Bounded {
	return &Bounded{MaxEnum: sst.DefaultMaxEnum, Window: sst.DefaultWindow, MaxDepth: sst.DefaultMaxDepth}
}

func (*Bounded) Name() string { return NameBounded }

const cancelCheckEvery = 256

func (b *Bounded) Check(ctx context.Context, q *sst.Query, budget uint64) (Result, error) {
	in := sst.NewInterp(q.Defs, q.WordBits, budget)
	in.MaxEnum, in.Window, in.MaxDepth = b.MaxEnum, b.Window, b.MaxDepth

	res, err := b.check(ctx, in, q)
	res.Steps = min(in.Steps, budget)
	if errors.Is(err, sst.ErrBudget) {
		return Result{Status: Unknown, Steps: budget, Reason: "resource limit exhausted"}, nil
	}
	return res, err
}

func (b *Bounded) check(ctx context.Context, in *sst.Interp, q *sst.Query) (Result, error) {
	// без переменных: одна проверка
	goal, err := in.Eval(q.Goal, nil)
	if err != nil {
		return Result{}, err
	}
	if goal.IsTrue() {
		return Result{Status: Proved}, nil
	}

	domains := make([]sst.Domain, len(q.Vars))
	exhaustive := true
	for i, v := range q.Vars {
		domains[i] = sst.DomainOf(v.Typ, q.WordBits, b.MaxEnum, b.Window)
		if len(domains[i].Values) == 0 {
			// uninterpreted sort: leave the variable unknown
			domains[i].Values = []sst.Value{{}}
		}
		exhaustive = exhaustive && domains[i].Exhaustive
	}

	undecided := false
	var model map[string]string
	visited := 0
	err = sst.Enumerate(domains, func(vals []sst.Value) (bool, error) {
		visited++
		if visited%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return false, err
			}
		}
		env := make(map[string]sst.Value, len(vals))
		for i, v := range q.Vars {
			env[v.Name] = vals[i]
		}
		relevant := true
		for _, f := range q.Facts {
			fv, err := in.Eval(f, env)
			if err != nil {
				return false, err
			}
			if fv.IsFalse() {
				return true, nil
			}
			if !fv.IsTrue() {
				relevant = false
			}
		}
		gv, err := in.Eval(q.Goal, env)
		if err != nil {
			return false, err
		}
		switch {
		case gv.IsTrue():
		case gv.IsFalse() && relevant:
			model = make(map[string]string, len(vals))
			for i, v := range q.Vars {
				model[v.Name] = vals[i].String()
			}
			return false, nil
		default:
			undecided = true
		}
		return true, nil
	})
	if err != nil {
		return Result{}, err
	}
	switch {
	case model != nil:
		return Result{Status: Disproved, Model: model}, nil
	case exhaustive && !undecided:
		return Result{Status: Proved}, nil
	case undecided:
		return Result{Status: Unknown, Reason: "some cases could not be decided"}, nil
	}
	return Result{Status: Unknown, Reason: "no counterexample in the searched range"}, nil
}
