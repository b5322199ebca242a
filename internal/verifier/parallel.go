package verifier

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"venir/internal/buckets"
	"venir/internal/diag"
	"venir/internal/ir"
	"venir/internal/vctx"
)

type parallelOut struct {
	bucketOut
	global *vctx.GlobalCtx
	bag    *diag.Bag
}

// verifyParallel verifies up to Jobs buckets at a time, each on a fork of
// global. Diagnostics, progress lines and chosen triggers are replayed in
// bucket order afterwards, so the output matches a sequential run up to
// the first failing bucket.
func (v *Verifier) verifyParallel(ctx context.Context, u *ir.Unit, bs []*buckets.Bucket, global *vctx.GlobalCtx, res *Result) (*vctx.GlobalCtx, error) {
	results := make([]parallelOut, len(bs))

	// Ошибки бакетов не отменяют соседей: порядок отчёта определяется
	// при воспроизведении, а не временем завершения.
	var g errgroup.Group
	g.SetLimit(min(v.opts.Jobs, len(bs)))
	for i, b := range bs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = parallelOut{bucketOut: bucketOut{err: err}, global: global.Fork(), bag: diag.NewBag(0)}
				return nil
			}
			bag := diag.NewBag(0)
			fork, out := v.verifyBucket(ctx, u, b, global.Fork(), diag.BagReporter{Bag: bag})
			results[i] = parallelOut{bucketOut: out, global: fork, bag: bag}
			return nil
		})
	}
	_ = g.Wait()

	var first error
	for i, r := range results {
		v.progress(ctx, bs[i])
		r.bag.Replay(v.d)
		if err := global.Join(r.global); err != nil {
			return global, err
		}
		res.Queries += r.queries
		res.Failed += r.failed
		if r.err == nil {
			continue
		}
		if !errors.Is(r.err, ErrVerificationFailed) || !v.opts.ContinueOnError {
			return global, r.err
		}
		if first == nil {
			first = r.err
		}
	}
	return global, first
}
