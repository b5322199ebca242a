package diagfmt

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"

	"venir/internal/diag"
	"venir/internal/source"
)

// PrettyReporter renders messages for humans:
//
//	error[V7001]: postcondition not satisfied
//	  --> (0, 10, 20)
//	  = failed this postcondition: (0, 12, 18)
//	  = help: ...
type PrettyReporter struct {
	mu   sync.Mutex
	w    io.Writer
	opts PrettyOpts

	errColor   *color.Color
	warnColor  *color.Color
	noteColor  *color.Color
	crashColor *color.Color
	dimColor   *color.Color
}

func NewPrettyReporter(w io.Writer, opts PrettyOpts) *PrettyReporter {
	r := &PrettyReporter{
		w:          w,
		opts:       opts,
		errColor:   color.New(color.FgRed, color.Bold),
		warnColor:  color.New(color.FgYellow, color.Bold),
		noteColor:  color.New(color.FgCyan, color.Bold),
		crashColor: color.New(color.FgMagenta, color.Bold),
		dimColor:   color.New(color.FgBlue),
	}
	for _, c := range []*color.Color{r.errColor, r.warnColor, r.noteColor, r.crashColor, r.dimColor} {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return r
}

func (r *PrettyReporter) Report(msg diag.Message)    { r.ReportAs(msg, diag.LevelOf(msg)) }
func (r *PrettyReporter) ReportNow(msg diag.Message) { r.ReportAs(msg, diag.LevelOf(msg)) }

func (r *PrettyReporter) ReportAs(msg diag.Message, level diag.Level) {
	if msg == nil {
		return
	}
	text := r.render(msg, level)
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = io.WriteString(r.w, text)
}

func (r *PrettyReporter) ReportAsNow(msg diag.Message, level diag.Level) { r.ReportAs(msg, level) }

func (r *PrettyReporter) render(msg diag.Message, level diag.Level) string {
	var sb strings.Builder
	switch m := msg.(type) {
	case *diag.SolverMessage:
		sb.WriteString(r.crashColor.Sprint("solver"))
		sb.WriteString(": ")
		sb.WriteString(m.Note)
		sb.WriteString("\n")
		if sp := source.ExtractPrefix(m.Note); sp != "" {
			fmt.Fprintf(&sb, "  %s %s\n", r.dimColor.Sprint("-->"), sp)
		}
	case *diag.VirMessage:
		head := r.levelColor(level).Sprintf("%s[%s]", level, m.Code.ID())
		fmt.Fprintf(&sb, "%s: %s\n", head, m.Note)
		if n := len(m.Spans); n > 0 {
			fmt.Fprintf(&sb, "  %s %s\n", r.dimColor.Sprint("-->"), spanText(m.Spans[n-1].AsString))
		}
		for _, l := range m.Labels {
			fmt.Fprintf(&sb, "  %s %s: %s\n", r.dimColor.Sprint("="), l.Note, spanText(l.Span.AsString))
		}
		if r.opts.ShowHelp && m.Help != "" {
			fmt.Fprintf(&sb, "  %s help: %s\n", r.dimColor.Sprint("="), m.Help)
		}
	}
	return sb.String()
}

func (r *PrettyReporter) levelColor(level diag.Level) *color.Color {
	switch level {
	case diag.LevelError:
		return r.errColor
	case diag.LevelWarning:
		return r.warnColor
	default:
		return r.noteColor
	}
}

func spanText(s string) string {
	if p := source.ExtractPrefix(s); p != "" {
		return p
	}
	if s == "" {
		return "<no span>"
	}
	return s
}
