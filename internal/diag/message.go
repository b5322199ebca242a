package diag

import (
	"fmt"
	"strings"

	"venir/internal/ir"
)

// Message is the closed set of payloads a Diagnostics implementation accepts:
// *VirMessage and *SolverMessage. Renderers switch on the concrete type.
type Message interface {
	message()
}

// Label attaches a secondary note to a span.
type Label struct {
	Span ir.Span
	Note string
}

// VirMessage is a structured pipeline message. It doubles as the error type
// of every stage: a stage that fails returns a *VirMessage with LevelError.
type VirMessage struct {
	Level  Level
	Code   Code
	Note   string
	Spans  []ir.Span
	Labels []Label
	Help   string
}

// SolverMessage originates from the solver itself (crash, malformed output).
type SolverMessage struct {
	Level Level
	Note  string
	// Label marks a message that only annotates another one.
	Label bool
}

func (*VirMessage) message()    {}
func (*SolverMessage) message() {}

// New builds a message at the given level.
func New(level Level, code Code, note string) *VirMessage {
	return &VirMessage{Level: level, Code: code, Note: note}
}

func Errorf(code Code, format string, args ...any) *VirMessage {
	return New(LevelError, code, fmt.Sprintf(format, args...))
}

func Warningf(code Code, format string, args ...any) *VirMessage {
	return New(LevelWarning, code, fmt.Sprintf(format, args...))
}

func Notef(code Code, format string, args ...any) *VirMessage {
	return New(LevelNote, code, fmt.Sprintf(format, args...))
}

// WithSpan appends a primary span. Empty spans are ignored.
func (m *VirMessage) WithSpan(sp ir.Span) *VirMessage {
	if sp.AsString == "" && sp.ID == 0 {
		return m
	}
	m.Spans = append(m.Spans, sp)
	return m
}

func (m *VirMessage) WithLabel(sp ir.Span, note string) *VirMessage {
	m.Labels = append(m.Labels, Label{Span: sp, Note: note})
	return m
}

func (m *VirMessage) WithHelp(help string) *VirMessage {
	m.Help = help
	return m
}

// Error implements error.
func (m *VirMessage) Error() string {
	var sb strings.Builder
	sb.WriteString(m.Level.String())
	sb.WriteString("[")
	sb.WriteString(m.Code.ID())
	sb.WriteString("]: ")
	sb.WriteString(m.Note)
	if n := len(m.Spans); n > 0 {
		sb.WriteString(" at ")
		sb.WriteString(m.Spans[n-1].AsString)
	}
	return sb.String()
}

func (m *SolverMessage) Error() string {
	return "solver: " + m.Note
}

// LevelOf returns the level a message carries itself.
func LevelOf(msg Message) Level {
	switch m := msg.(type) {
	case *VirMessage:
		return m.Level
	case *SolverMessage:
		return m.Level
	}
	return LevelError
}
