// Package solver decides the queries produced by internal/sst.
package solver

import (
	"context"
	"fmt"
	"math"
	"os/exec"
	"sort"
	"strings"

	"fortio.org/safecast"

	"venir/internal/diag"
	"venir/internal/sst"
)

// Status is the outcome of one query.
type Status uint8

const (
	Unknown Status = iota
	Proved
	Disproved
)

func (s Status) String() string {
	switch s {
	case Proved:
		return "proved"
	case Disproved:
		return "disproved"
	}
	return "unknown"
}

// Result of checking one query.
type Result struct {
	Status Status
	// Steps is the amount of budget the check used.
	Steps uint64
	// Model is a counterexample when Status is Disproved (may be empty).
	Model map[string]string
	// Reason explains an Unknown status.
	Reason string
}

// ModelString renders the counterexample deterministically.
func (r Result) ModelString() string {
	if len(r.Model) == 0 {
		return ""
	}
	names := make([]string, 0, len(r.Model))
	for n := range r.Model {
		names = append(names, n)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = n + " = " + r.Model[n]
	}
	return strings.Join(parts, ", ")
}

// Solver checks one query within a step budget. A returned error is a
// solver malfunction, not a failed proof: either a *diag.SolverMessage or a
// *diag.VirMessage.
type Solver interface {
	Name() string
	Check(ctx context.Context, q *sst.Query, budget uint64) (Result, error)
}

// StepsPerRlimit converts the user-facing resource limit into steps.
const StepsPerRlimit = 1_000_000

// Budget converts an rlimit into a step budget. Non-positive limits give a
// zero budget; limits too large for uint64 saturate.
func Budget(rlimit float64) uint64 {
	if rlimit <= 0 || math.IsNaN(rlimit) {
		return 0
	}
	if math.IsInf(rlimit, 1) {
		return math.MaxUint64
	}
	steps, err := safecast.Truncate[uint64](rlimit * StepsPerRlimit)
	if err != nil {
		return math.MaxUint64
	}
	return steps
}

// Names of the available backends.
const (
	NameBounded = "bounded"
	NameZ3      = "z3"
	NameCVC5    = "cvc5"
)

// Known reports whether name is a backend New understands.
func Known(name string) bool {
	switch name {
	case NameBounded, NameZ3, NameCVC5:
		return true
	}
	return false
}

// New returns the backend called name. External solvers must be on PATH
// (or named by path).
func New(name, path string) (Solver, error) {
	switch name {
	case "", NameBounded:
		return NewBounded(), nil
	case NameZ3, NameCVC5:
		if path == "" {
			path = name
		}
		bin, err := exec.LookPath(path)
		if err != nil {
			return nil, diag.Errorf(diag.SolverUnavailable, "solver %s not found: %v", name, err).
				WithHelp("install it, pass --solver-path, or use --solver bounded")
		}
		return NewProcess(name, bin), nil
	}
	return nil, diag.Errorf(diag.SolverUnavailable, "unknown solver %q", name)
}

func crash(format string, args ...any) *diag.SolverMessage {
	return &diag.SolverMessage{Level: diag.LevelError, Note: fmt.Sprintf(format, args...)}
}
