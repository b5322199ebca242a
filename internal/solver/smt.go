package solver

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"venir/internal/ir"
	"venir/internal/sst"
)

// WriteSMT renders q as an SMT-LIB 2 script that is unsat exactly when
// the query holds. budget becomes the :rlimit option (0 omits it).
func WriteSMT(w io.Writer, q *sst.Query, budget uint64) error {
	var sb strings.Builder
	e := &smtEmitter{sb: &sb, wordBits: q.WordBits}

	fmt.Fprintf(&sb, "; %s: %s\n", q.Function, q.Kind)
	sb.WriteString("(set-logic ALL)\n")
	if budget > 0 {
		fmt.Fprintf(&sb, "(set-option :rlimit %d)\n", budget)
	}
	sb.WriteString("(declare-sort Poly 0)\n")

	e.defs(q)
	for _, v := range q.Vars {
		fmt.Fprintf(&sb, "(declare-const %s %s)\n", symbol(v.Name), sortOf(v.Typ))
		if r := e.rangeOf(symbol(v.Name), v.Typ); r != "" {
			fmt.Fprintf(&sb, "(assert %s)\n", r)
		}
	}
	for _, f := range q.Facts {
		fmt.Fprintf(&sb, "(assert %s)\n", e.expr(f))
	}
	fmt.Fprintf(&sb, "(assert (not %s))\n", e.expr(q.Goal))
	sb.WriteString("(check-sat)\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

type smtEmitter struct {
	sb       *strings.Builder
	wordBits uint32
}

// defs emits the spec functions reachable from the query as recursive
// definitions, in name order.
func (e *smtEmitter) defs(q *sst.Query) {
	used := make(map[string]bool)
	var visit func(x *ir.Expr)
	visit = func(x *ir.Expr) {
		ir.Walk(x, func(n *ir.Expr) bool {
			if n.Kind != ir.ExprCall {
				return true
			}
			name := n.Fun.String()
			if used[name] {
				return true
			}
			used[name] = true
			if f, ok := q.Defs[name]; ok && f.Body != nil && !f.Attrs.Opaque {
				visit(f.Body)
			}
			return true
		})
	}
	for _, f := range q.Facts {
		visit(f)
	}
	visit(q.Goal)

	names := make([]string, 0, len(used))
	for n := range used {
		names = append(names, n)
	}
	sort.Strings(names)

	var decls, bodies []string
	for _, n := range names {
		f, ok := q.Defs[n]
		if !ok {
			continue
		}
		params := make([]string, len(f.Params))
		for i, p := range f.Params {
			params[i] = fmt.Sprintf("(%s %s)", symbol(p.Name), sortOf(p.Typ))
		}
		ret := "Bool"
		if f.Ret != nil {
			ret = sortOf(f.Ret.Typ)
		}
		if f.Body == nil || f.Attrs.Opaque {
			sorts := make([]string, len(f.Params))
			for i, p := range f.Params {
				sorts[i] = sortOf(p.Typ)
			}
			fmt.Fprintf(e.sb, "(declare-fun %s (%s) %s)\n", symbol(n), strings.Join(sorts, " "), ret)
			continue
		}
		decls = append(decls, fmt.Sprintf("(%s (%s) %s)", symbol(n), strings.Join(params, " "), ret))
		bodies = append(bodies, e.expr(f.Body))
	}
	if len(decls) > 0 {
		fmt.Fprintf(e.sb, "(define-funs-rec (%s) (%s))\n", strings.Join(decls, " "), strings.Join(bodies, " "))
	}
}

func sortOf(t ir.Typ) string {
	switch {
	case t.Kind == ir.TypBool, t.Kind == ir.TypUnit:
		return "Bool"
	case t.IsInteger():
		return "Int"
	}
	return "Poly"
}

func (e *smtEmitter) rangeOf(name string, t ir.Typ) string {
	if !t.IsInteger() {
		return ""
	}
	lo, hi, hasLo, hasHi := t.Range(e.wordBits)
	var parts []string
	if hasLo {
		parts = append(parts, fmt.Sprintf("(<= %s %s)", intLit(lo), name))
	}
	if hasHi {
		parts = append(parts, fmt.Sprintf("(<= %s %s)", name, intLit(hi)))
	}
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	}
	return "(and " + strings.Join(parts, " ") + ")"
}

var smtOps = map[string]string{
	ir.OpEq:      "=",
	ir.OpNe:      "distinct",
	ir.OpAnd:     "and",
	ir.OpOr:      "or",
	ir.OpImplies: "=>",
	ir.OpDiv:     "div",
	ir.OpMod:     "mod",
}

func (e *smtEmitter) expr(x *ir.Expr) string {
	switch x.Kind {
	case ir.ExprConst:
		if x.Bool != nil {
			return strconv.FormatBool(*x.Bool)
		}
		return intLit(*x.Int)
	case ir.ExprVar:
		return symbol(x.Name)
	case ir.ExprUnop:
		op := "not"
		if x.Op == ir.OpNeg {
			op = "-"
		}
		return "(" + op + " " + e.expr(x.Args[0]) + ")"
	case ir.ExprBinop:
		op, ok := smtOps[x.Op]
		if !ok {
			op = x.Op
		}
		return "(" + op + " " + e.expr(x.Args[0]) + " " + e.expr(x.Args[1]) + ")"
	case ir.ExprIf:
		return "(ite " + e.expr(x.Args[0]) + " " + e.expr(x.Args[1]) + " " + e.expr(x.Args[2]) + ")"
	case ir.ExprLet:
		return "(let ((" + symbol(x.Name) + " " + e.expr(x.Args[0]) + ")) " + e.expr(x.Args[1]) + ")"
	case ir.ExprCall:
		if len(x.Args) == 0 {
			return symbol(x.Fun.String())
		}
		args := make([]string, len(x.Args))
		for i, a := range x.Args {
			args[i] = e.expr(a)
		}
		return "(" + symbol(x.Fun.String()) + " " + strings.Join(args, " ") + ")"
	case ir.ExprQuant:
		return e.quant(x)
	case ir.ExprAssert, ir.ExprAssume:
		return "(and " + e.expr(x.Args[0]) + " " + e.expr(x.Args[1]) + ")"
	}
	return "true"
}

func (e *smtEmitter) quant(x *ir.Expr) string {
	binders := make([]string, len(x.Binders))
	var ranges []string
	for i, b := range x.Binders {
		binders[i] = fmt.Sprintf("(%s %s)", symbol(b.Name), sortOf(b.Typ))
		if r := e.rangeOf(symbol(b.Name), b.Typ); r != "" {
			ranges = append(ranges, r)
		}
	}
	body := e.expr(x.Args[0])
	if len(ranges) > 0 {
		guard := ranges[0]
		if len(ranges) > 1 {
			guard = "(and " + strings.Join(ranges, " ") + ")"
		}
		if x.Quant == ir.QuantForall {
			body = "(=> " + guard + " " + body + ")"
		} else {
			body = "(and " + guard + " " + body + ")"
		}
	}
	if len(x.Triggers) > 0 {
		var pats []string
		for _, trig := range x.Triggers {
			terms := make([]string, len(trig))
			for i, t := range trig {
				terms[i] = e.expr(t)
			}
			pats = append(pats, ":pattern ("+strings.Join(terms, " ")+")")
		}
		body = "(! " + body + " " + strings.Join(pats, " ") + ")"
	}
	return "(" + x.Quant + " (" + strings.Join(binders, " ") + ") " + body + ")"
}

func intLit(v int64) string {
	if v < 0 {
		// -9223372036854775808 has no positive counterpart in int64
		return "(- " + strconv.FormatUint(uint64(-(v+1))+1, 10) + ")"
	}
	return strconv.FormatInt(v, 10)
}

// symbol quotes names that are not plain SMT-LIB simple symbols.
func symbol(name string) string {
	for _, r := range name {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_') {
			return "|" + name + "|"
		}
	}
	if name == "" || name[0] >= '0' && name[0] <= '9' {
		return "|" + name + "|"
	}
	return name
}
