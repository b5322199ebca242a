package verifier

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Log file suffixes.
const (
	InterpSuffix    = ".interp"
	VirPolySuffix   = "-poly.vir"
	SMTSuffix       = ".smt2"
	CallGraphSuffix = ".call-graph"
)

// DefaultLogDir is used when logging is requested without a directory.
const DefaultLogDir = ".venir-log"

// LogFiles selects the optional log files and where they go.
type LogFiles struct {
	Dir       string
	Interp    bool
	VirPoly   bool
	SMT       bool
	CallGraph bool
}

// All enables every log file.
func (l LogFiles) All() LogFiles {
	l.Interp, l.VirPoly, l.SMT, l.CallGraph = true, true, true, true
	return l
}

// Create opens the log file for unit (and bucket, if non-empty) with the
// given suffix, creating the directory on first use.
func (l LogFiles) Create(unit, bucket, suffix string) (*os.File, error) {
	dir := l.Dir
	if dir == "" {
		dir = DefaultLogDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	name := unit
	if bucket != "" {
		name += "-" + bucket
	}
	name = strings.NewReplacer("::", "__", "/", "_", `\`, "_").Replace(name)
	f, err := os.Create(filepath.Join(dir, name+suffix))
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}
	return f, nil
}
