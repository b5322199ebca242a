// Package buckets partitions a validated unit into independently
// verifiable groups and applies the user's module/function selection.
package buckets

import (
	"fmt"
	"strings"

	"venir/internal/diag"
	"venir/internal/ir"
)

// FilterKind selects what a UserFilter restricts verification to.
type FilterKind uint8

const (
	// Everything verifies every module of the unit.
	Everything FilterKind = iota
	// Root verifies the unit's root module only.
	Root
	// Modules verifies the listed modules and the modules nested in them.
	Modules
	// OnlyModules verifies exactly the listed modules.
	OnlyModules
)

// FilterConfig is the raw user selection as it comes from configuration.
type FilterConfig struct {
	VerifyRoot       bool
	VerifyModule     []string
	VerifyOnlyModule []string
	VerifyFunction   string
}

// UserFilter is a validated FilterConfig.
type UserFilter struct {
	Kind     FilterKind
	Modules  []string
	Function string
}

// NewUserFilter validates cfg. Malformed combinations are FilterInvalid
// errors.
func NewUserFilter(cfg FilterConfig) (*UserFilter, error) {
	set := 0
	f := &UserFilter{Kind: Everything, Function: cfg.VerifyFunction}
	if cfg.VerifyRoot {
		set++
		f.Kind = Root
	}
	if len(cfg.VerifyModule) > 0 {
		set++
		f.Kind = Modules
		f.Modules = cfg.VerifyModule
	}
	if len(cfg.VerifyOnlyModule) > 0 {
		set++
		f.Kind = OnlyModules
		f.Modules = cfg.VerifyOnlyModule
	}
	switch {
	case set > 1:
		return nil, diag.Errorf(diag.FilterInvalid, "--verify-root, --verify-module and --verify-only-module are mutually exclusive")
	case f.Function != "" && f.Kind == Everything:
		return nil, diag.Errorf(diag.FilterInvalid, "--verify-function requires --verify-root, --verify-module or --verify-only-module")
	case f.Function != "" && len(f.Modules) > 1:
		return nil, diag.Errorf(diag.FilterInvalid, "--verify-function requires exactly one module")
	case f.Function != "" && strings.Trim(f.Function, "*") == "":
		return nil, diag.Errorf(diag.FilterInvalid, "--verify-function pattern %q matches nothing specific", f.Function)
	}
	for _, m := range f.Modules {
		if m == "" {
			return nil, diag.Errorf(diag.FilterInvalid, "empty module name in module selection")
		}
	}
	return f, nil
}

// IsEverything reports whether the filter selects the whole unit.
func (f *UserFilter) IsEverything() bool {
	return f == nil || (f.Kind == Everything && f.Function == "")
}

// FilterModules returns the modules of current selected by f, in unit
// order.
func (f *UserFilter) FilterModules(current []ir.Module) ([]ir.Module, error) {
	if f == nil || f.Kind == Everything {
		return current, nil
	}
	if f.Kind == Root {
		for _, m := range current {
			if len(m.Path.Segments) == 0 {
				return []ir.Module{m}, nil
			}
		}
		return nil, diag.Errorf(diag.FilterUnknownModule, "the unit has no root module").
			WithHelp("available modules: " + moduleList(current))
	}

	selected := make(map[string]bool)
	for _, want := range f.Modules {
		found := false
		for _, m := range current {
			if matchModule(m.Path, want, f.Kind == Modules) {
				selected[m.Path.String()] = true
				found = true
			}
		}
		if !found {
			return nil, diag.Errorf(diag.FilterUnknownModule, "could not find module %s specified by --verify-module", want).
				WithHelp("available modules: " + moduleList(current))
		}
	}
	var out []ir.Module
	for _, m := range current {
		if selected[m.Path.String()] {
			out = append(out, m)
		}
	}
	return out, nil
}

// matchModule matches a user-written module name against path. The unit
// name may be left out: "a::b" matches "krate::a::b".
func matchModule(path ir.Path, want string, nested bool) bool {
	full := path.String()
	rel := strings.Join(path.Segments, "::")
	for _, name := range []string{full, rel} {
		if name == want {
			return true
		}
		if nested && strings.HasPrefix(name, want+"::") {
			return true
		}
	}
	return false
}

func moduleList(ms []ir.Module) string {
	if len(ms) == 0 {
		return "(none)"
	}
	names := make([]string, len(ms))
	for i, m := range ms {
		names[i] = m.Path.String()
	}
	return strings.Join(names, ", ")
}

// matchFunction matches a --verify-function pattern against a function
// path. "*" at either end of the pattern is a wildcard.
func matchFunction(pattern string, fn ir.Path) bool {
	name := fn.Last()
	full := fn.String()
	prefix := strings.HasSuffix(pattern, "*")
	suffix := strings.HasPrefix(pattern, "*")
	core := strings.Trim(pattern, "*")
	for _, s := range []string{name, full} {
		switch {
		case prefix && suffix:
			if strings.Contains(s, core) {
				return true
			}
		case prefix:
			if strings.HasPrefix(s, core) {
				return true
			}
		case suffix:
			if strings.HasSuffix(s, core) {
				return true
			}
		default:
			if s == core {
				return true
			}
		}
	}
	return false
}

func (f *UserFilter) String() string {
	if f.IsEverything() {
		return "everything"
	}
	var sb strings.Builder
	switch f.Kind {
	case Root:
		sb.WriteString("root")
	case Modules:
		fmt.Fprintf(&sb, "modules %s", strings.Join(f.Modules, ", "))
	case OnlyModules:
		fmt.Fprintf(&sb, "only modules %s", strings.Join(f.Modules, ", "))
	}
	if f.Function != "" {
		fmt.Fprintf(&sb, ", function %s", f.Function)
	}
	return sb.String()
}
