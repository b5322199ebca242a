// Package verifier drives verification of a validated unit: it simplifies
// the unit, splits it into buckets and checks every bucket's obligations
// with a solver.
package verifier

import (
	"context"
	"errors"
	"fmt"
	"io"

	"venir/internal/buckets"
	"venir/internal/callgraph"
	"venir/internal/diag"
	"venir/internal/ir"
	"venir/internal/observ"
	"venir/internal/simplify"
	"venir/internal/solver"
	"venir/internal/trace"
	"venir/internal/traits"
	"venir/internal/triggers"
	"venir/internal/vctx"
	"venir/internal/wellformed"
)

// ErrVerificationFailed is returned (wrapped) when some obligation of a
// bucket was not proved. The individual failures have been reported.
var ErrVerificationFailed = errors.New("verification failed")

type Options struct {
	Rlimit float64
	Solver solver.Solver
	Filter *buckets.UserFilter
	// Triggers is the chosen-trigger reporting policy.
	Triggers triggers.Policy
	// ContinueOnError verifies every bucket even after a failure and then
	// returns the first failing bucket's error.
	ContinueOnError bool
	// Jobs > 1 verifies that many buckets at a time.
	Jobs int
	// Trace forces the progress line even for an unrestricted filter.
	Trace bool
	// Progress receives the "Verifying ..." lines (may be nil).
	Progress io.Writer
	Logs     *LogFiles
	Timer    *observ.Timer
}

// Result summarises a run.
type Result struct {
	Buckets []*buckets.Bucket
	Modules []ir.Module
	Queries int
	Failed  int
}

// Verifier holds the state of one verification run.
type Verifier struct {
	opts Options
	d    diag.Diagnostics
	unit string
}

func New(opts Options, d diag.Diagnostics) *Verifier {
	if opts.Solver == nil {
		opts.Solver = solver.NewBounded()
	}
	return &Verifier{opts: opts, d: d}
}

// Verify checks u, the output of the validation chain. currentModules are
// the modules of the unit being verified; the filter selects among them.
func (v *Verifier) Verify(ctx context.Context, u *ir.Unit, currentModules []ir.Module) (*Result, error) {
	v.unit = u.Name
	t := v.opts.Timer

	pass := func(name string, fn func() error) error {
		_, sp := trace.Start(ctx, trace.ScopePass, name)
		idx := t.Begin(name)
		err := fn()
		t.End(idx, "")
		if err != nil {
			sp.WithExtra("result", "error").End(err.Error())
			return err
		}
		sp.End("")
		return nil
	}

	if err := pass("check_traits", func() error { return traits.Check(u) }); err != nil {
		return nil, err
	}
	var simplified *ir.Unit
	err := pass("simplify", func() error {
		if err := wellformed.CheckFlavor(u); err != nil {
			return err
		}
		simplified = simplify.Unit(u)
		return wellformed.CheckSimplifiedFlavor(simplified)
	})
	if err != nil {
		return nil, err
	}

	var bs []*buckets.Bucket
	var modules []ir.Module
	err = pass("buckets", func() error {
		var err error
		bs, modules, err = buckets.Partition(simplified, currentModules, v.opts.Filter)
		return err
	})
	if err != nil {
		return nil, err
	}

	var closers []io.Closer
	defer func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}()
	cfg := vctx.Config{Rlimit: v.opts.Rlimit, Solver: v.opts.Solver}
	if logs := v.opts.Logs; logs != nil && logs.Interp {
		f, err := logs.Create(v.unit, "", InterpSuffix)
		if err != nil {
			return nil, err
		}
		closers = append(closers, f)
		cfg.InterpLog = f
	}
	global := vctx.New(simplified, cfg)
	if logs := v.opts.Logs; logs != nil && logs.CallGraph {
		if err := v.writeCallGraph(*logs, global.CallGraph); err != nil {
			return nil, err
		}
	}

	res := &Result{Buckets: bs, Modules: modules}
	var verr error
	if v.opts.Jobs > 1 && len(bs) > 1 {
		global, verr = v.verifyParallel(ctx, simplified, bs, global, res)
	} else {
		global, verr = v.verifySequential(ctx, simplified, bs, global, res)
	}
	if verr != nil && !errors.Is(verr, ErrVerificationFailed) {
		return res, verr
	}
	if verr == nil || v.opts.ContinueOnError {
		triggers.Report(v.d, global.Triggers, v.opts.Triggers, triggers.Selected(modules))
	}
	return res, verr
}

func (v *Verifier) writeCallGraph(logs LogFiles, g *callgraph.Graph) error {
	f, err := logs.Create(v.unit, "", CallGraphSuffix)
	if err != nil {
		return err
	}
	if err := callgraph.Write(f, g); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// progress prints the per-bucket line when tracing or when the user
// restricted the run.
func (v *Verifier) progress(ctx context.Context, b *buckets.Bucket) {
	everything := v.opts.Filter.IsEverything()
	if !v.opts.Trace && everything {
		return
	}
	line := "Verifying " + b.ID.FriendlyName()
	if v.opts.Filter != nil && v.opts.Filter.Function != "" {
		line += " (selected functions)"
	}
	trace.Point(ctx, trace.ScopeBucket, "progress", line)
	if v.opts.Progress != nil {
		fmt.Fprintln(v.opts.Progress, line)
	}
}

func (v *Verifier) verifySequential(ctx context.Context, u *ir.Unit, bs []*buckets.Bucket, global *vctx.GlobalCtx, res *Result) (*vctx.GlobalCtx, error) {
	var first error
	for _, b := range bs {
		v.progress(ctx, b)
		var out bucketOut
		global, out = v.verifyBucket(ctx, u, b, global, v.d)
		res.Queries += out.queries
		res.Failed += out.failed
		if out.err == nil {
			continue
		}
		if !errors.Is(out.err, ErrVerificationFailed) || !v.opts.ContinueOnError {
			return global, out.err
		}
		if first == nil {
			first = out.err
		}
	}
	return global, first
}
