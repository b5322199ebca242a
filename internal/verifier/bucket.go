package verifier

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"venir/internal/buckets"
	"venir/internal/diag"
	"venir/internal/ir"
	"venir/internal/prune"
	"venir/internal/solver"
	"venir/internal/sst"
	"venir/internal/trace"
	"venir/internal/vctx"
)

type bucketOut struct {
	queries int
	failed  int
	err     error
}

// pruneOptions roots exactly the bucket's own functions. A module bucket
// loses its spinoff_prover functions to their own buckets, so the module
// alone is not enough.
func pruneOptions(b *buckets.Bucket) prune.Options {
	return prune.Options{
		Module:          &b.ID.Module,
		Functions:       append(make([]ir.Path, 0, len(b.Functions)), b.Functions...),
		ForVerification: true,
	}
}

// verifyBucket prunes u for b, lowers the bucket and checks each query.
// It owns global for the duration of the call and always hands it back.
func (v *Verifier) verifyBucket(ctx context.Context, u *ir.Unit, b *buckets.Bucket, global *vctx.GlobalCtx, d diag.Diagnostics) (*vctx.GlobalCtx, bucketOut) {
	name := b.ID.FriendlyName()
	ctx, sp := trace.Start(ctx, trace.ScopeBucket, name)
	var out bucketOut
	defer func() {
		sp.WithExtra("queries", strconv.Itoa(out.queries)).
			WithExtra("failed", strconv.Itoa(out.failed)).
			End("")
	}()

	pruned := prune.Unit(u, pruneOptions(b))

	c, err := vctx.NewCtx(pruned, b, global)
	if err != nil {
		out.err = err
		return global, out
	}

	if logs := v.opts.Logs; logs != nil && logs.VirPoly {
		if out.err = v.writeUnitLog(*logs, name, pruned); out.err != nil {
			return c.Free(), out
		}
	}

	initStart := time.Now()
	low, err := c.Lower()
	if err != nil {
		out.err = err
		return c.Free(), out
	}
	for _, n := range low.Notes {
		d.Report(n)
	}

	var smtLog io.WriteCloser
	if logs := v.opts.Logs; logs != nil && logs.SMT && len(low.Queries) > 0 {
		f, err := logs.Create(v.unit, name, SMTSuffix)
		if err != nil {
			out.err = err
			return c.Free(), out
		}
		smtLog = f
		defer f.Close()
	}
	b.Stats.TimeSMTInit = time.Since(initStart)

	budget := c.Global.Budget()
	runStart := time.Now()
	for _, q := range low.Queries {
		if smtLog != nil {
			if err := solver.WriteSMT(smtLog, q, budget); err != nil {
				out.err = err
				break
			}
		}
		res, err := c.Global.Solver.Check(ctx, q, budget)
		out.queries++
		b.Stats.RlimitCount += res.Steps
		if err != nil {
			out.err = err
			break
		}
		trace.Point(ctx, trace.ScopeQuery, q.Kind.String(), res.Status.String())
		if res.Status != solver.Proved {
			out.failed++
			d.Report(failure(q, res, c.Global.NoSpan))
		}
	}
	b.Stats.TimeSMTRun = time.Since(runStart)

	if out.err == nil && out.failed > 0 {
		out.err = fmt.Errorf("%s: %d of %d obligations not proved: %w", name, out.failed, out.queries, ErrVerificationFailed)
	}
	return c.Free(), out
}

// failure renders an unproved query as an error at the failing function
// or call, labelled with the clause it failed.
func failure(q *sst.Query, res solver.Result, noSpan ir.Span) *diag.VirMessage {
	var msg *diag.VirMessage
	if res.Status == solver.Unknown {
		msg = diag.Errorf(diag.VerifyInconclusive, "%s (inconclusive: %s)", q.Kind.Message(), res.Reason)
	} else {
		msg = diag.Errorf(q.Kind.Code(), "%s", q.Kind.Message())
	}
	span := q.Span
	if span.AsString == "" {
		span = noSpan
	}
	msg = msg.WithSpan(span)
	if q.Label.AsString != "" {
		msg = msg.WithLabel(q.Label, q.Kind.LabelNote())
	}
	if m := res.ModelString(); m != "" {
		msg = msg.WithHelp("counterexample: " + m)
	}
	return msg
}

func (v *Verifier) writeUnitLog(logs LogFiles, bucket string, u *ir.Unit) error {
	f, err := logs.Create(v.unit, bucket, VirPolySuffix)
	if err != nil {
		return err
	}
	if err := ir.WriteUnit(f, u); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
