// Package triggers reports the quantifier triggers chosen during lowering.
package triggers

import (
	"fmt"
	"strings"

	"venir/internal/diag"
	"venir/internal/ir"
	"venir/internal/sst"
)

// Policy controls which chosen triggers are shown.
type Policy uint8

const (
	// Silent shows nothing.
	Silent Policy = iota
	// Selective shows low-confidence triggers of the selected modules.
	Selective
	// Module shows every trigger of the selected modules.
	Module
	// Verbose shows every trigger.
	Verbose
)

var policyNames = [...]string{
	Silent:    "silent",
	Selective: "selective",
	Module:    "module",
	Verbose:   "verbose",
}

func (p Policy) String() string {
	if int(p) < len(policyNames) {
		return policyNames[p]
	}
	return fmt.Sprintf("Policy(%d)", p)
}

// ParsePolicy accepts the names printed by String.
func ParsePolicy(s string) (Policy, error) {
	for i, n := range policyNames {
		if n == s {
			return Policy(i), nil
		}
	}
	return Silent, fmt.Errorf("unknown trigger policy %q (want silent|selective|module|verbose)", s)
}

const explanation = `one or more automatically chosen quantifier triggers were printed
because their choice had low confidence.
To suppress these messages, do one of the following:
  (1) annotate the desired trigger terms on the quantifier explicitly,
  (2) give several explicit trigger groups if more than one pattern is wanted,
  (3) mark the quantifier auto to accept the automatic choice,
  (4) run with --triggers silent to suppress all printing of triggers.
(Triggers are the patterns the solver uses to decide when to instantiate a quantifier.)`

// Note renders one chosen trigger.
func Note(t sst.ChosenTrigger) *diag.VirMessage {
	return diag.Notef(diag.VerifyTriggerChosen, "automatically chosen trigger: %s", strings.Join(t.Terms, ", ")).
		WithSpan(t.Span)
}

// Report shows the records allowed by policy, in order. selected tells
// whether a module is among the modules being verified. If a
// low-confidence record was shown, a single explanatory note follows,
// attached to the last such record.
func Report(d diag.Diagnostics, records []sst.ChosenTrigger, policy Policy, selected func(ir.Path) bool) {
	var last *ir.Span
	for i := range records {
		t := records[i]
		inSelection := selected != nil && selected(t.Module)
		switch {
		case policy == Selective && inSelection && t.LowConfidence:
			d.Report(Note(t))
			last = &records[i].Span
		case policy == Module && inSelection:
			d.Report(Note(t))
		case policy == Verbose:
			d.Report(Note(t))
		}
	}
	if last != nil {
		d.Report(diag.Notef(diag.VerifyTriggerExplanation, "%s", explanation).WithSpan(*last))
	}
}

// Selected returns a predicate matching exactly the given modules.
func Selected(modules []ir.Module) func(ir.Path) bool {
	set := make(map[string]bool, len(modules))
	for _, m := range modules {
		set[m.Path.String()] = true
	}
	return func(p ir.Path) bool { return set[p.String()] }
}
