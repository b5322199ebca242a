package ir

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Printer renders a unit as S-expressions. The output is only meant for
// humans reading log files; nothing parses it back.
type Printer struct {
	w      io.Writer
	indent int
	err    error
}

func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// WriteUnit prints the whole unit to w.
func WriteUnit(w io.Writer, u *Unit) error {
	p := NewPrinter(w)
	p.Unit(u)
	return p.err
}

func (p *Printer) line(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, "%s%s\n", strings.Repeat("  ", p.indent), fmt.Sprintf(format, args...))
}

func (p *Printer) Unit(u *Unit) {
	p.line("(unit %s (word-bits %d)", u.Name, u.Arch.WordBits)
	p.indent++
	for _, m := range u.Modules {
		p.line("(module %s)", m.Path)
	}
	for _, d := range u.Datatypes {
		p.datatype(d)
	}
	for _, t := range u.Traits {
		methods := make([]string, len(t.Methods))
		for i, m := range t.Methods {
			methods[i] = m.String()
		}
		p.line("(trait %s (methods %s)%s)", t.Name, strings.Join(methods, " "), flag(t.External, " external"))
	}
	for _, ti := range u.TraitImpls {
		p.line("(impl %s (trait %s) (for %s))", ti.Impl, ti.Trait, ti.ForType)
	}
	for _, f := range u.Functions {
		p.Function(f)
	}
	p.indent--
	p.line(")")
}

func (p *Printer) datatype(d *Datatype) {
	p.line("(datatype %s", d.Name)
	p.indent++
	for _, v := range d.Variants {
		fields := make([]string, len(v.Fields))
		for i, f := range v.Fields {
			fields[i] = f.Name + ":" + f.Typ.String()
		}
		p.line("(%s %s)", v.Name, strings.Join(fields, " "))
	}
	p.indent--
	p.line(")")
}

func (p *Printer) Function(f *Function) {
	params := make([]string, len(f.Params))
	for i, prm := range f.Params {
		params[i] = prm.Name + ":" + prm.Typ.String()
	}
	ret := ""
	if f.Ret != nil {
		ret = fmt.Sprintf(" (ret %s:%s)", f.Ret.Name, f.Ret.Typ)
	}
	p.line("(function %s %s (params %s)%s%s", f.Name, f.Mode, strings.Join(params, " "), ret, flag(f.Attrs.ExternalBody, " external_body"))
	p.indent++
	for _, e := range f.Requires {
		p.line("(requires %s)", ExprString(e))
	}
	for _, e := range f.Ensures {
		p.line("(ensures %s)", ExprString(e))
	}
	for _, e := range f.Decreases {
		p.line("(decreases %s)", ExprString(e))
	}
	if f.Body != nil {
		p.line("(body %s)", ExprString(f.Body))
	}
	p.indent--
	p.line(")")
}

func flag(on bool, s string) string {
	if on {
		return s
	}
	return ""
}

// ExprString renders one expression on a single line.
func ExprString(e *Expr) string {
	var sb strings.Builder
	writeExpr(&sb, e)
	return sb.String()
}

func writeExpr(sb *strings.Builder, e *Expr) {
	if e == nil {
		sb.WriteString("<nil>")
		return
	}
	switch e.Kind {
	case ExprConst:
		switch {
		case e.Bool != nil:
			sb.WriteString(strconv.FormatBool(*e.Bool))
		case e.Int != nil:
			sb.WriteString(strconv.FormatInt(*e.Int, 10))
		}
		return
	case ExprVar:
		sb.WriteString(e.Name)
		return
	case ExprCall:
		sb.WriteString("(")
		sb.WriteString(e.Fun.String())
		for _, a := range e.Args {
			sb.WriteString(" ")
			writeExpr(sb, a)
		}
		sb.WriteString(")")
		return
	case ExprQuant:
		sb.WriteString("(")
		sb.WriteString(e.Quant)
		sb.WriteString(" (")
		for i, b := range e.Binders {
			if i > 0 {
				sb.WriteString(" ")
			}
			sb.WriteString(b.Name + ":" + b.Typ.String())
		}
		sb.WriteString(")")
		for _, trig := range e.Triggers {
			sb.WriteString(" (trigger")
			for _, term := range trig {
				sb.WriteString(" ")
				writeExpr(sb, term)
			}
			sb.WriteString(")")
		}
		sb.WriteString(" ")
		writeExpr(sb, e.Args[0])
		sb.WriteString(")")
		return
	case ExprLet:
		sb.WriteString("(let " + e.Name)
	case ExprUnop, ExprBinop:
		sb.WriteString("(" + e.Op)
	default:
		sb.WriteString("(" + string(e.Kind))
	}
	for _, a := range e.Args {
		sb.WriteString(" ")
		writeExpr(sb, a)
	}
	sb.WriteString(")")
}
