// Package validate runs the well-formedness and mode pipeline over a merged
// unit as an ordered chain of fallible stages.
package validate

import (
	"context"

	"venir/internal/autospec"
	"venir/internal/diag"
	"venir/internal/ir"
	"venir/internal/merge"
	"venir/internal/modes"
	"venir/internal/trace"
	"venir/internal/traits"
	"venir/internal/wellformed"
)

// Options configure the chain.
type Options struct {
	NoVerify   bool
	NoCheating bool
	// AfterStage, if set, is called with the unit produced by every stage
	// that succeeded. The driver uses it for the pipeline log.
	AfterStage func(stage string, u *ir.Unit)
}

// Stage is one step of the chain. A stage returns the rewritten unit or a
// *diag.VirMessage.
type Stage struct {
	Name string
	Run  func(ctx context.Context, u *ir.Unit) (*ir.Unit, error)
}

// Stages lists the chain for res in execution order. Advisories found by
// the merged well-formedness check are reported to d once that check has
// passed.
func Stages(res *merge.Result, opts Options, d diag.Diagnostics) []Stage {
	return []Stage{
		{Name: "inherit_default_bodies", Run: func(_ context.Context, u *ir.Unit) (*ir.Unit, error) {
			return traits.InheritDefaultBodies(u), nil
		}},
		{Name: "fixup_ens_has_return", Run: func(_ context.Context, u *ir.Unit) (*ir.Unit, error) {
			return traits.FixupEnsHasReturn(u), nil
		}},
		{Name: "check_one_unit", Run: func(_ context.Context, u *ir.Unit) (*ir.Unit, error) {
			return u, wellformed.CheckOne(res.Current)
		}},
		{Name: "check_unit", Run: func(_ context.Context, u *ir.Unit) (*ir.Unit, error) {
			adv := diag.NewBag(0)
			err := wellformed.Check(u, res.Unpruned, adv, wellformed.Options{
				Current:    res.Current.Name,
				NoVerify:   opts.NoVerify,
				NoCheating: opts.NoCheating,
			})
			if err != nil {
				return nil, err
			}
			adv.Drain(d)
			return u, nil
		}},
		{Name: "resolve_autospec", Run: func(_ context.Context, u *ir.Unit) (*ir.Unit, error) {
			return autospec.Resolve(u)
		}},
		{Name: "check_modes", Run: func(_ context.Context, u *ir.Unit) (*ir.Unit, error) {
			// таблица режимов стирания пока не нужна
			out, _, err := modes.Check(u)
			return out, err
		}},
	}
}

// Run executes Stages in order and stops at the first failure, returning
// that stage's error unchanged.
func Run(ctx context.Context, res *merge.Result, opts Options, d diag.Diagnostics) (*ir.Unit, error) {
	return RunStages(ctx, res.Unit, Stages(res, opts, d), opts.AfterStage)
}

// RunStages threads u through stages.
func RunStages(ctx context.Context, u *ir.Unit, stages []Stage, after func(string, *ir.Unit)) (*ir.Unit, error) {
	for _, st := range stages {
		sctx, sp := trace.Start(ctx, trace.ScopePass, st.Name)
		next, err := st.Run(sctx, u)
		if err != nil {
			sp.WithExtra("result", "error").End(err.Error())
			return nil, err
		}
		sp.End("")
		u = next
		if after != nil {
			after(st.Name, u)
		}
	}
	return u, nil
}
