// Package driver runs the whole pipeline for one unit: decode, import,
// merge and prune, validation, verification and statistics.
package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"venir/internal/config"
	"venir/internal/diag"
	"venir/internal/importer"
	"venir/internal/ir"
	"venir/internal/merge"
	"venir/internal/observ"
	"venir/internal/solver"
	"venir/internal/trace"
	"venir/internal/triggers"
	"venir/internal/validate"
	"venir/internal/verifier"
)

// Provider returns the imported units. It is called once, before merging.
type Provider func(ctx context.Context) ([]ir.Library, error)

// FileProvider loads the libraries named by args from disk.
func FileProvider(args *config.Args) Provider {
	return func(ctx context.Context) ([]ir.Library, error) {
		specs, err := importer.ParseSpecs(args.Imports)
		if err != nil {
			return nil, err
		}
		return importer.Load(ctx, importer.Options{Imports: specs, NoVstd: args.NoVstd, Root: args.LibRoot})
	}
}

// Options configure Run.
type Options struct {
	Args config.Args
	// Provider defaults to FileProvider(&Args).
	Provider Provider
	// Solver overrides the backend named in Args.
	Solver solver.Solver
	// Stdout receives the --output-json statistics.
	Stdout io.Writer
	// Progress receives progress lines and the timing summary.
	Progress io.Writer
	Timer    *observ.Timer
}

// Outcome describes a finished (or failed) run.
type Outcome struct {
	RunID  uuid.UUID
	Unit   *ir.Unit
	Result *verifier.Result
}

// ExitCode maps the error returned by Run to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}

// Run executes the pipeline on the unit read from in. Diagnostics go to d;
// a fatal error is reported there exactly once before it is returned, and a
// failed run always leaves at least one Error in d.
func Run(ctx context.Context, in io.Reader, opts Options, d diag.Diagnostics) (*Outcome, error) {
	out := &Outcome{RunID: uuid.New()}
	started := time.Now()
	counted := diag.NewCounter(d)
	d = counted

	ctx = trace.WithRunID(ctx, out.RunID.String())
	ctx, sp := trace.Start(ctx, trace.ScopeDriver, "run")

	err := run(ctx, in, &opts, d, out)
	if err != nil {
		reportFatal(d, err)
		sp.WithExtra("result", "error").End(err.Error())
	} else {
		sp.End("")
	}

	if serr := writeStats(ctx, &opts, out, started, err == nil); serr != nil && err == nil {
		reportFatal(d, serr)
		err = serr
	}
	if opts.Args.Timings {
		summary := opts.Timer.Summary()
		trace.Point(ctx, trace.ScopeDriver, "timings", summary)
		if opts.Progress != nil {
			fmt.Fprint(opts.Progress, summary)
		}
	}
	if err != nil && counted.Count(diag.LevelError) == 0 {
		d.ReportNow(diag.Errorf(diag.Internal, "internal error: run failed without an error diagnostic: %v", err))
	}
	return out, err
}

func run(ctx context.Context, in io.Reader, opts *Options, d diag.Diagnostics, out *Outcome) error {
	args := &opts.Args
	if err := args.Validate(); err != nil {
		return diag.Errorf(diag.ConfigInvalid, "%v", err)
	}
	filter, err := args.Filter()
	if err != nil {
		return err
	}
	t := opts.Timer

	idx := t.Begin("decode")
	unit, err := ir.DecodeJSON(in)
	t.End(idx, "")
	if err != nil {
		return diag.Errorf(diag.InputDecode, "%v", err)
	}
	trace.Point(ctx, trace.ScopeDriver, "unit", unit.Name)

	provider := opts.Provider
	if provider == nil {
		provider = FileProvider(args)
	}
	idx = t.Begin("import")
	libs, err := provider(ctx)
	t.End(idx, "")
	if err != nil {
		return importError(err)
	}

	idx = t.Begin("merge_and_prune")
	res, err := merge.MergeAndPrune(ctx, unit, libs)
	t.End(idx, "")
	if err != nil {
		return err
	}

	vopts := validate.Options{NoVerify: args.NoVerify, NoCheating: args.NoCheating}
	if args.LogAll || args.LogPipeline {
		vopts.AfterStage = pipelineLog(ctx, logFiles(args), res.Current.Name)
	}
	idx = t.Begin("validate")
	validated, err := validate.Run(ctx, res, vopts, d)
	t.End(idx, "")
	if err != nil {
		return err
	}
	out.Unit = validated

	if args.Export != "" {
		if err := importer.Export(args.Export, validated.Name, validated); err != nil {
			return err
		}
	}
	if args.NoVerify {
		return nil
	}

	s := opts.Solver
	if s == nil {
		if s, err = solver.New(args.Solver, args.SolverPath); err != nil {
			return err
		}
	}
	logs := logFiles(args)
	v := verifier.New(verifier.Options{
		Rlimit:          args.Rlimit,
		Solver:          s,
		Filter:          filter,
		Triggers:        args.TriggerPolicy(),
		ContinueOnError: args.ContinueOnError,
		Jobs:            args.Jobs,
		Trace:           trace.FromContext(ctx).Enabled(),
		Progress:        opts.Progress,
		Logs:            logs,
		Timer:           t,
	}, d)
	idx = t.Begin("verify")
	out.Result, err = v.Verify(ctx, validated, res.CurrentModules)
	note := ""
	if out.Result != nil {
		note = fmt.Sprintf("%d buckets", len(out.Result.Buckets))
	}
	t.End(idx, note)
	return err
}

// importError enforces the provider contract: errors carry no spans.
func importError(err error) error {
	var vm *diag.VirMessage
	if errors.As(err, &vm) && (len(vm.Spans) > 0 || len(vm.Labels) > 0) {
		return diag.Errorf(diag.ImportSpanned, "library provider returned an error with source spans: %s", vm.Note)
	}
	return err
}

func logFiles(args *config.Args) *verifier.LogFiles {
	if !args.Logging() {
		return nil
	}
	l := verifier.LogFiles{
		Dir:       args.LogDir,
		Interp:    args.LogInterp,
		VirPoly:   args.LogVirPoly,
		SMT:       args.LogSMT,
		CallGraph: args.LogCallGraph,
	}
	if args.LogAll {
		l = l.All()
	}
	return &l
}

// pipelineLog writes the unit after every successful validation stage.
// A failed write never fails the run; it shows up as a trace point.
func pipelineLog(ctx context.Context, logs *verifier.LogFiles, unit string) func(string, *ir.Unit) {
	return func(stage string, u *ir.Unit) {
		if err := writeStageLog(logs, unit, stage, u); err != nil {
			trace.Point(ctx, trace.ScopePass, "pipeline_log_failed", err.Error())
		}
	}
}

func writeStageLog(logs *verifier.LogFiles, unit, stage string, u *ir.Unit) error {
	f, err := logs.Create(unit, stage, ".vir")
	if err != nil {
		return err
	}
	if err := ir.WriteUnit(f, u); err != nil {
		_ = f.Close()
		return fmt.Errorf("%s: %w", f.Name(), err)
	}
	return f.Close()
}

// reportFatal reports err unless it only summarises diagnostics that were
// already reported.
func reportFatal(d diag.Diagnostics, err error) {
	if errors.Is(err, verifier.ErrVerificationFailed) {
		return
	}
	var vm *diag.VirMessage
	if errors.As(err, &vm) {
		d.ReportNow(vm)
		return
	}
	var sm *diag.SolverMessage
	if errors.As(err, &sm) {
		d.ReportNow(sm)
		return
	}
	d.ReportNow(diag.Errorf(diag.Internal, "internal error: %v", err))
}

// Policies lists the trigger policy names.
func Policies() []string {
	return []string{
		triggers.Silent.String(), triggers.Selective.String(),
		triggers.Module.String(), triggers.Verbose.String(),
	}
}
