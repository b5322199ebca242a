// Package sst lowers validated IR functions into solver queries: one
// closed verification condition per postcondition, callee precondition,
// assertion and termination check.
package sst

import (
	"venir/internal/diag"
	"venir/internal/ir"
)

// Kind is the origin of a query.
type Kind uint8

const (
	Postcondition Kind = iota
	Precondition
	Assertion
	Termination
)

var kindInfo = [...]struct {
	code  diag.Code
	msg   string
	label string
}{
	Postcondition: {diag.VerifyPostcondition, "postcondition not satisfied", "failed this postcondition"},
	Precondition:  {diag.VerifyPrecondition, "precondition not satisfied", "failed precondition"},
	Assertion:     {diag.VerifyAssertion, "assertion failed", "failed assertion"},
	Termination:   {diag.VerifyDecreases, "could not prove termination", "decreases clause"},
}

func (k Kind) Code() diag.Code   { return kindInfo[k].code }
func (k Kind) Message() string   { return kindInfo[k].msg }
func (k Kind) LabelNote() string { return kindInfo[k].label }
func (k Kind) String() string    { return kindInfo[k].msg }

// Var is a free variable of a query.
type Var struct {
	Name string
	Typ  ir.Typ
}

// Query asks whether Goal follows from Facts for every assignment of Vars
// within their types. Defs holds the spec functions Facts and Goal may call.
type Query struct {
	Function ir.Path
	Kind     Kind
	// Span is where the error is reported; Label points at the clause that
	// failed (may be empty).
	Span  ir.Span
	Label ir.Span

	Vars     []Var
	Facts    []*ir.Expr
	Goal     *ir.Expr
	Defs     map[string]*ir.Function
	WordBits uint32
}

// ChosenTrigger records an automatically selected quantifier trigger.
type ChosenTrigger struct {
	Module        ir.Path
	Span          ir.Span
	Terms         []string
	LowConfidence bool
}
