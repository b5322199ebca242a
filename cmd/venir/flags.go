package main

import (
	"strings"

	"github.com/spf13/cobra"

	"venir/internal/config"
	"venir/internal/driver"
	"venir/internal/prof"
)

// cliFlags holds the values bound to the command-line flags. Only flags the
// user set explicitly override the configuration file.
type cliFlags struct {
	configPath string
	noConfig   bool
	profile    prof.Options
	args       config.Args
}

func newCLIFlags() *cliFlags {
	return &cliFlags{args: config.Default()}
}

func (f *cliFlags) register(cmd *cobra.Command) {
	a := &f.args
	fs := cmd.Flags()
	fs.StringVar(&f.configPath, "config", "", "configuration file (default: venir.toml or venir.yaml found upwards)")
	fs.BoolVar(&f.noConfig, "no-config", false, "ignore configuration files")
	fs.StringVar(&f.profile.CPU, "cpu-profile", "", "write a CPU profile")
	fs.StringVar(&f.profile.Mem, "mem-profile", "", "write a heap profile on exit")
	fs.StringVar(&f.profile.Trace, "runtime-trace", "", "write a Go runtime trace")

	// Верификация
	fs.Float64Var(&a.Rlimit, "rlimit", a.Rlimit, "solver resource limit per query")
	fs.StringVar(&a.Solver, "solver", a.Solver, "solver backend (bounded|z3|cvc5)")
	fs.StringVar(&a.SolverPath, "solver-path", a.SolverPath, "path to the external solver binary")
	fs.BoolVar(&a.NoVerify, "no-verify", a.NoVerify, "validate only, skip verification")
	fs.BoolVar(&a.NoCheating, "no-cheating", a.NoCheating, "forbid assume and external_body")
	fs.BoolVar(&a.VerifyRoot, "verify-root", a.VerifyRoot, "verify only the root module")
	fs.StringSliceVar(&a.VerifyModule, "verify-module", a.VerifyModule, "verify the named modules and their submodules")
	fs.StringSliceVar(&a.VerifyOnlyModule, "verify-only-module", a.VerifyOnlyModule, "verify exactly the named modules")
	fs.StringVar(&a.VerifyFunction, "verify-function", a.VerifyFunction, "verify only functions whose name contains this")
	fs.StringVar(&a.Triggers, "triggers", a.Triggers,
		"chosen-trigger reporting ("+strings.Join(driver.Policies(), "|")+")")
	fs.BoolVar(&a.ContinueOnError, "continue-on-error", a.ContinueOnError, "keep verifying after a failed module")
	fs.IntVarP(&a.Jobs, "jobs", "j", a.Jobs, "modules verified in parallel")

	// Библиотеки
	fs.StringArrayVar(&a.Imports, "import", a.Imports, "import a library (name=path, repeatable)")
	fs.BoolVar(&a.NoVstd, "no-vstd", a.NoVstd, "do not import vstd from the library root")
	fs.StringVar(&a.LibRoot, "lib-root", a.LibRoot, "library root holding vstd.vir (default: $VENIR_ROOT or lib/ next to the binary)")
	fs.StringVar(&a.Export, "export", a.Export, "write the validated unit as a library file")

	// Журналы
	fs.StringVar(&a.LogDir, "log-dir", a.LogDir, "directory for log files (default .venir-log)")
	fs.BoolVar(&a.LogAll, "log-all", a.LogAll, "write every log file")
	fs.BoolVar(&a.LogInterp, "log-interpreter", a.LogInterp, "log interpreter steps")
	fs.BoolVar(&a.LogVirPoly, "log-vir-poly", a.LogVirPoly, "log each module before lowering")
	fs.BoolVar(&a.LogSMT, "log-smt", a.LogSMT, "log SMT-LIB queries")
	fs.BoolVar(&a.LogCallGraph, "log-call-graph", a.LogCallGraph, "log the call graph")
	fs.BoolVar(&a.LogPipeline, "log-pipeline", a.LogPipeline, "log the unit after every validation stage")

	// Вывод
	fs.StringVar(&a.Format, "format", a.Format, "diagnostics format (json|pretty)")
	fs.StringVar(&a.Color, "color", a.Color, "colorize pretty output (auto|on|off)")
	fs.StringVar(&a.TraceOutput, "trace", a.TraceOutput, "trace output file (- for stderr)")
	fs.StringVar(&a.TraceLevel, "trace-level", a.TraceLevel, "trace level (off|error|phase|detail|debug)")
	fs.StringVar(&a.TraceFormat, "trace-format", a.TraceFormat, "trace format (auto|text|ndjson)")
	fs.StringVar(&a.TraceMode, "trace-mode", a.TraceMode, "trace storage (stream|ring|both)")
	fs.DurationVar(&a.TraceHeartbeat, "trace-heartbeat", a.TraceHeartbeat, "trace heartbeat interval (0 disables)")
	fs.BoolVar(&a.Timings, "timings", a.Timings, "show phase timings")
	fs.BoolVar(&a.OutputJSON, "output-json", a.OutputJSON, "print run statistics as JSON on stdout")
	fs.StringVar(&a.StatsDB, "stats-db", a.StatsDB, "record run statistics in this SQLite database")
}

// resolve merges defaults, the configuration file and explicit flags.
func (f *cliFlags) resolve(cmd *cobra.Command) (config.Args, error) {
	args := config.Default()
	path := f.configPath
	if path == "" && !f.noConfig {
		found, ok, err := config.Find(".")
		if err != nil {
			return args, err
		}
		if ok {
			path = found
		}
	}
	if path != "" && !f.noConfig {
		if err := config.Load(path, &args); err != nil {
			return args, err
		}
	}
	config.Overlay(&args, &f.args, cmd.Flags().Changed)
	return args, args.Validate()
}
