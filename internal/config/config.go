// Package config holds the run configuration: defaults, an optional
// venir.toml / venir.yaml file and command-line overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"venir/internal/buckets"
	"venir/internal/diagfmt"
	"venir/internal/solver"
	"venir/internal/trace"
	"venir/internal/triggers"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// FileNames are looked up, in order, by Find.
var FileNames = []string{"venir.toml", "venir.yaml", "venir.yml"}

// Args is the complete run configuration.
type Args struct {
	Rlimit     float64 `toml:"rlimit" yaml:"rlimit"`
	Solver     string  `toml:"solver" yaml:"solver"`
	SolverPath string  `toml:"solver_path" yaml:"solver_path"`

	NoVerify   bool `toml:"no_verify" yaml:"no_verify"`
	NoCheating bool `toml:"no_cheating" yaml:"no_cheating"`

	VerifyRoot       bool     `toml:"verify_root" yaml:"verify_root"`
	VerifyModule     []string `toml:"verify_module" yaml:"verify_module"`
	VerifyOnlyModule []string `toml:"verify_only_module" yaml:"verify_only_module"`
	VerifyFunction   string   `toml:"verify_function" yaml:"verify_function"`

	Triggers        string `toml:"triggers" yaml:"triggers"`
	ContinueOnError bool   `toml:"continue_on_error" yaml:"continue_on_error"`
	Jobs            int    `toml:"jobs" yaml:"jobs"`

	// Imports are "name=path" pairs.
	Imports []string `toml:"imports" yaml:"imports"`
	NoVstd  bool     `toml:"no_vstd" yaml:"no_vstd"`
	LibRoot string   `toml:"lib_root" yaml:"lib_root"`
	Export  string   `toml:"export" yaml:"export"`

	LogDir       string `toml:"log_dir" yaml:"log_dir"`
	LogAll       bool   `toml:"log_all" yaml:"log_all"`
	LogInterp    bool   `toml:"log_interpreter" yaml:"log_interpreter"`
	LogVirPoly   bool   `toml:"log_vir_poly" yaml:"log_vir_poly"`
	LogSMT       bool   `toml:"log_smt" yaml:"log_smt"`
	LogCallGraph bool   `toml:"log_call_graph" yaml:"log_call_graph"`
	LogPipeline  bool   `toml:"log_pipeline" yaml:"log_pipeline"`

	Format string `toml:"format" yaml:"format"`
	Color  string `toml:"color" yaml:"color"`

	TraceLevel  string `toml:"trace_level" yaml:"trace_level"`
	TraceOutput string `toml:"trace_output" yaml:"trace_output"`
	TraceFormat string `toml:"trace_format" yaml:"trace_format"`
	TraceMode   string `toml:"trace_mode" yaml:"trace_mode"`
	// TraceHeartbeat emits a heartbeat event at this interval (0 disables).
	TraceHeartbeat time.Duration `toml:"trace_heartbeat" yaml:"trace_heartbeat"`
	Timings        bool          `toml:"timings" yaml:"timings"`

	OutputJSON bool   `toml:"output_json" yaml:"output_json"`
	StatsDB    string `toml:"stats_db" yaml:"stats_db"`
}

// Default returns the built-in configuration.
func Default() Args {
	return Args{
		Rlimit:      10,
		Solver:      solver.NameBounded,
		Triggers:    triggers.Selective.String(),
		Jobs:        1,
		Format:      diagfmt.FormatJSON.String(),
		Color:       "auto",
		TraceLevel:  "off",
		TraceFormat: "auto",
		TraceMode:   "stream",
	}
}

// Find walks up from startDir looking for a configuration file.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		for _, name := range FileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, true, nil
			} else if !errors.Is(err, os.ErrNotExist) {
				return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load decodes the file at path over args; keys missing from the file keep
// their current values. The format follows the extension.
func Load(path string, args *Args) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		meta, err := toml.DecodeFile(path, args)
		if err != nil {
			return fmt.Errorf("%s: failed to parse TOML: %w", path, err)
		}
		if undec := meta.Undecoded(); len(undec) > 0 {
			return fmt.Errorf("%s: unknown key %s: %w", path, undec[0], ErrInvalid)
		}
		return nil
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(args); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("%s: failed to parse YAML: %w", path, err)
		}
		return nil
	}
	return fmt.Errorf("%s: unsupported configuration format (want .toml or .yaml): %w", path, ErrInvalid)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalid)
}

// Validate checks field ranges and enumerations.
func (a *Args) Validate() error {
	if a.Rlimit < 0 {
		return invalid("rlimit must not be negative, got %v", a.Rlimit)
	}
	if !solver.Known(a.Solver) {
		return invalid("unknown solver %q (want bounded|z3|cvc5)", a.Solver)
	}
	if _, err := triggers.ParsePolicy(a.Triggers); err != nil {
		return invalid("%v", err)
	}
	if a.Jobs < 0 {
		return invalid("jobs must not be negative, got %d", a.Jobs)
	}
	if _, err := diagfmt.ParseFormat(a.Format); err != nil {
		return invalid("%v", err)
	}
	switch a.Color {
	case "auto", "on", "off":
	default:
		return invalid("unknown color mode %q (want auto|on|off)", a.Color)
	}
	if _, err := trace.ParseLevel(a.TraceLevel); err != nil {
		return invalid("%v", err)
	}
	if _, err := trace.ParseFormat(a.TraceFormat); err != nil {
		return invalid("%v", err)
	}
	if _, err := trace.ParseMode(a.TraceMode); err != nil {
		return invalid("%v", err)
	}
	if a.TraceHeartbeat < 0 {
		return invalid("trace heartbeat must not be negative, got %v", a.TraceHeartbeat)
	}
	for _, imp := range a.Imports {
		name, path, ok := strings.Cut(imp, "=")
		if !ok || name == "" || path == "" {
			return invalid("import %q is not of the form name=path", imp)
		}
	}
	return nil
}

// Filter builds the bucket filter from the verify_* fields.
func (a *Args) Filter() (*buckets.UserFilter, error) {
	return buckets.NewUserFilter(buckets.FilterConfig{
		VerifyRoot:       a.VerifyRoot,
		VerifyModule:     a.VerifyModule,
		VerifyOnlyModule: a.VerifyOnlyModule,
		VerifyFunction:   a.VerifyFunction,
	})
}

// TriggerPolicy returns the parsed trigger policy; call Validate first.
func (a *Args) TriggerPolicy() triggers.Policy {
	p, _ := triggers.ParsePolicy(a.Triggers)
	return p
}

// Logging reports whether any log file was requested.
func (a *Args) Logging() bool {
	return a.LogAll || a.LogInterp || a.LogVirPoly || a.LogSMT || a.LogCallGraph || a.LogPipeline
}
