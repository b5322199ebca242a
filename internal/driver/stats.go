package driver

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"venir/internal/observ"
	"venir/internal/statsdb"
	"venir/internal/trace"
)

type statsPayload struct {
	RunID   uuid.UUID            `json:"run_id"`
	Unit    string               `json:"unit"`
	Success bool                 `json:"success"`
	Queries int                  `json:"queries"`
	Failed  int                  `json:"failed"`
	TotalMS float64              `json:"total_ms"`
	Phases  []observ.PhaseReport `json:"phases,omitempty"`
	Buckets []statsdb.BucketRow  `json:"buckets"`
}

// writeStats emits the bucket statistics of a run that got as far as
// verification.
func writeStats(ctx context.Context, opts *Options, out *Outcome, started time.Time, success bool) error {
	if out.Result == nil {
		return nil
	}
	args := &opts.Args
	if !args.OutputJSON && args.StatsDB == "" {
		return nil
	}
	_, sp := trace.Start(ctx, trace.ScopeDriver, "stats")
	defer sp.End("")

	rows := statsdb.Rows(out.Result.Buckets)
	if args.OutputJSON && opts.Stdout != nil {
		report := opts.Timer.Report()
		payload := statsPayload{
			RunID:   out.RunID,
			Unit:    out.Unit.Name,
			Success: success,
			Queries: out.Result.Queries,
			Failed:  out.Result.Failed,
			TotalMS: observ.DurationToMillis(time.Since(started)),
			Phases:  report.Phases,
			Buckets: rows,
		}
		enc := json.NewEncoder(opts.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(payload); err != nil {
			return err
		}
	}

	if args.StatsDB != "" {
		store, err := statsdb.Open(args.StatsDB)
		if err != nil {
			return err
		}
		defer store.Close()
		return store.Save(ctx, &statsdb.Run{
			ID:      out.RunID,
			Unit:    out.Unit.Name,
			Started: started,
			Solver:  args.Solver,
			Rlimit:  args.Rlimit,
			Success: success,
			Queries: out.Result.Queries,
			Failed:  out.Result.Failed,
			Buckets: rows,
		})
	}
	return nil
}
