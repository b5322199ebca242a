package solver

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strconv"
	"strings"

	"venir/internal/source"
	"venir/internal/sst"
)

// Process runs an external SMT-LIB 2 solver once per query.
type Process struct {
	name string
	bin  string
	args []string
}

func NewProcess(name, bin string) *Process {
	p := &Process{name: name, bin: bin}
	switch name {
	case NameZ3:
		p.args = []string{"-in", "-smt2"}
	case NameCVC5:
		p.args = []string{"--lang=smt2", "--incremental"}
	}
	return p
}

func (p *Process) Name() string { return p.name }

func (p *Process) Check(ctx context.Context, q *sst.Query, budget uint64) (Result, error) {
	if budget == 0 {
		return Result{Status: Unknown, Reason: "resource limit exhausted"}, nil
	}
	var script bytes.Buffer
	if err := WriteSMT(&script, q, budget); err != nil {
		return Result{}, err
	}
	if p.name == NameZ3 {
		script.WriteString("(get-info :rlimit)\n")
	}

	cmd := exec.CommandContext(ctx, p.bin, p.args...)
	cmd.Stdin = &script
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	runErr := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Result{}, ctxErr
	}

	res, ok := parseOutput(stdout.String())
	if !ok {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = strings.TrimSpace(stdout.String())
		}
		var exitErr *exec.ExitError
		if runErr != nil && !errors.As(runErr, &exitErr) {
			msg = runErr.Error()
		}
		note := p.name + ": unexpected output: " + msg
		// позиция в начале текста, её вытащит репортер
		if sp := source.ExtractPrefix(q.Span.AsString); sp != "" {
			note = sp + " " + note
		}
		return Result{}, crash("%s", note)
	}
	if res.Steps == 0 || res.Steps > budget {
		res.Steps = min(max(res.Steps, 1), budget)
	}
	return res, nil
}

// parseOutput reads the check-sat answer and, if present, the rlimit the
// solver reports having used.
func parseOutput(out string) (Result, bool) {
	var res Result
	found := false
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "unsat" && !found:
			res.Status, found = Proved, true
		case line == "sat" && !found:
			res.Status, found = Disproved, true
		case line == "unknown" && !found:
			res.Status, found = Unknown, true
			res.Reason = "solver returned unknown"
		case strings.HasPrefix(line, "(:rlimit "):
			n := strings.TrimSuffix(strings.TrimPrefix(line, "(:rlimit "), ")")
			if v, err := strconv.ParseUint(strings.TrimSpace(n), 10, 64); err == nil {
				res.Steps = v
			}
		case strings.HasPrefix(line, "(error"):
			return Result{}, false
		}
	}
	return res, found
}
