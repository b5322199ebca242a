package sst

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"venir/internal/diag"
	"venir/internal/ir"
)

func sp(s string) ir.Span { return ir.Span{AsString: s} }

func execFn(name string, params ...string) *ir.Function {
	f := &ir.Function{
		Name:   ir.ParsePath(name),
		Owning: ir.ParsePath(name).Parent(),
		Mode:   ir.ModeExec,
		Span:   sp("(0, 0, 100) fn " + name),
		Ret:    &ir.Param{Name: "r", Typ: ir.Int()},
	}
	for _, p := range params {
		f.Params = append(f.Params, ir.Param{Name: p, Typ: ir.Int()})
	}
	return f
}

func kinds(qs []*Query) []Kind {
	out := make([]Kind, len(qs))
	for i, q := range qs {
		out[i] = q.Kind
	}
	return out
}

func TestLowerPostcondition(t *testing.T) {
	x := ir.Var("x")
	f := execFn("k::m::double", "x")
	f.Body = ir.Binop(ir.OpMul, x, ir.IntLit(2))
	f.Requires = []*ir.Expr{ir.Binop(ir.OpGe, x, ir.IntLit(0)).At(sp("(0, 5, 10)"))}
	f.Ensures = []*ir.Expr{ir.Binop(ir.OpEq, ir.Var("r"), ir.Binop(ir.OpAdd, x, x)).At(sp("(0, 20, 30)"))}
	u := &ir.Unit{Functions: []*ir.Function{f}}

	low, err := LowerFunctions(u, []ir.Path{f.Name}, Options{})
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	if len(low.Queries) != 1 {
		t.Fatalf("want one query, got %d", len(low.Queries))
	}
	q := low.Queries[0]
	if q.Kind != Postcondition || q.Span != f.Span || q.Label.AsString != "(0, 20, 30)" {
		t.Fatalf("query header: %+v", q)
	}
	if got := ir.ExprString(q.Goal); got != "(== (* x 2) (+ x x))" {
		t.Fatalf("goal: %s", got)
	}
	if len(q.Facts) != 1 || ir.ExprString(q.Facts[0]) != "(>= x 0)" {
		t.Fatalf("facts: %v", q.Facts)
	}
	if diff := cmp.Diff([]Var{{Name: "x", Typ: ir.Int()}}, q.Vars); diff != "" {
		t.Fatalf("vars (-want +got):\n%s", diff)
	}
}

func TestLowerCalleeContract(t *testing.T) {
	x := ir.Var("x")
	inc := execFn("k::m::inc", "a")
	inc.Requires = []*ir.Expr{ir.Binop(ir.OpLt, ir.Var("a"), ir.IntLit(100)).At(sp("(0, 1, 2) requires"))}
	inc.Ensures = []*ir.Expr{ir.Binop(ir.OpEq, ir.Var("r"), ir.Binop(ir.OpAdd, ir.Var("a"), ir.IntLit(1)))}
	inc.Attrs.ExternalBody = true
	inc.Body = ir.IntLit(0)

	f := execFn("k::m::f", "x")
	call := ir.Call(inc.Name, x).At(sp("(0, 40, 50) inc(x)"))
	f.Body = ir.Assert(ir.Binop(ir.OpGt, ir.Var("y"), x), ir.Var("y"))
	f.Body = ir.Let("y", call, f.Body)
	u := &ir.Unit{Functions: []*ir.Function{inc, f}}

	low, err := LowerFunctions(u, []ir.Path{inc.Name, f.Name}, Options{})
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	if diff := cmp.Diff([]Kind{Precondition, Assertion}, kinds(low.Queries)); diff != "" {
		t.Fatalf("kinds (-want +got):\n%s", diff)
	}
	pre := low.Queries[0]
	if pre.Span != call.Span || pre.Label.AsString != "(0, 1, 2) requires" {
		t.Fatalf("precondition spans: %+v %+v", pre.Span, pre.Label)
	}
	if got := ir.ExprString(pre.Goal); got != "(< x 100)" {
		t.Fatalf("precondition goal: %s", got)
	}

	as := low.Queries[1]
	if got := ir.ExprString(as.Goal); got != "(> inc@1 x)" {
		t.Fatalf("assertion goal: %s", got)
	}
	if len(as.Facts) != 1 || ir.ExprString(as.Facts[0]) != "(== inc@1 (+ x 1))" {
		t.Fatalf("assertion facts: %v", as.Facts)
	}
	if len(as.Vars) != 2 || as.Vars[1].Name != "inc@1" {
		t.Fatalf("vars: %+v", as.Vars)
	}
}

func TestLowerBranchFacts(t *testing.T) {
	x := ir.Var("x")
	f := execFn("k::m::abs", "x")
	f.Body = ir.If(ir.Binop(ir.OpLt, x, ir.IntLit(0)),
		ir.Assert(ir.Binop(ir.OpLt, x, ir.IntLit(0)), ir.Unop(ir.OpNeg, x)),
		x)
	u := &ir.Unit{Functions: []*ir.Function{f}}

	low, err := LowerFunctions(u, []ir.Path{f.Name}, Options{})
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	if len(low.Queries) != 1 {
		t.Fatalf("queries: %d", len(low.Queries))
	}
	if got := ir.ExprString(low.Queries[0].Facts[0]); got != "(< x 0)" {
		t.Fatalf("branch condition not assumed: %s", got)
	}
}

func TestLowerGroundSpecCall(t *testing.T) {
	n := ir.Var("n")
	sq := specFn("k::m::sq", ir.Binop(ir.OpMul, n, n), "n")
	f := execFn("k::m::f")
	f.Body = ir.IntLit(9)
	f.Ensures = []*ir.Expr{ir.Binop(ir.OpEq, ir.Var("r"), ir.Call(sq.Name, ir.IntLit(3)))}
	u := &ir.Unit{Functions: []*ir.Function{sq, f}}

	var log bytes.Buffer
	low, err := LowerFunctions(u, []ir.Path{f.Name}, Options{InterpLog: &log})
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	if got := ir.ExprString(low.Queries[0].Goal); got != "(== 9 9)" {
		t.Fatalf("goal: %s", got)
	}
	if !strings.Contains(log.String(), "k::m::sq(3) = 9") {
		t.Fatalf("interp log: %q", log.String())
	}
}

func TestLowerTermination(t *testing.T) {
	n := ir.Var("n")
	count := execFn("k::m::count", "n")
	count.Mode = ir.ModeProof
	count.Decreases = []*ir.Expr{n.At(sp("(0, 7, 8)"))}
	count.Body = ir.If(ir.Binop(ir.OpLe, ir.Var("n"), ir.IntLit(0)),
		ir.IntLit(0),
		ir.Call(count.Name, ir.Binop(ir.OpSub, ir.Var("n"), ir.IntLit(1))))
	u := &ir.Unit{Functions: []*ir.Function{count}}

	low, err := LowerFunctions(u, []ir.Path{count.Name}, Options{})
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	if diff := cmp.Diff([]Kind{Termination}, kinds(low.Queries)); diff != "" {
		t.Fatalf("kinds (-want +got):\n%s", diff)
	}
	q := low.Queries[0]
	if got := ir.ExprString(q.Goal); got != "(&& (<= 0 (- n 1)) (< (- n 1) n))" {
		t.Fatalf("goal: %s", got)
	}
	if q.Label.AsString != "(0, 7, 8)" {
		t.Fatalf("label: %+v", q.Label)
	}
}

func TestLowerTraitImplGetsDeclEnsures(t *testing.T) {
	trait := ir.ParsePath("k::m::Pos")
	decl := execFn("k::m::Pos::get", "s")
	decl.Kind = ir.FunTraitMethodDecl
	decl.Trait = &trait
	decl.Ensures = []*ir.Expr{ir.Binop(ir.OpGt, ir.Var("r"), ir.Var("s"))}

	impl := execFn("k::m::PosForInt::get", "self")
	impl.Kind = ir.FunTraitMethodImpl
	impl.Trait = &trait
	impl.Method = &decl.Name
	impl.Body = ir.Binop(ir.OpAdd, ir.Var("self"), ir.IntLit(1))
	u := &ir.Unit{Functions: []*ir.Function{decl, impl}}

	low, err := LowerFunctions(u, []ir.Path{impl.Name}, Options{})
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	if len(low.Queries) != 1 {
		t.Fatalf("queries: %d", len(low.Queries))
	}
	if got := ir.ExprString(low.Queries[0].Goal); got != "(> (+ self 1) self)" {
		t.Fatalf("goal: %s", got)
	}
}

func TestLowerChoosesTriggers(t *testing.T) {
	p := specFn("k::m::p", ir.BoolLit(true), "i")
	p.Ret.Typ = ir.Bool()
	i := ir.Var("i")
	f := execFn("k::m::f")
	f.Body = ir.Assume(
		ir.Forall([]ir.Binder{{Name: "i", Typ: ir.Int()}}, ir.Call(p.Name, i)).At(sp("(0, 60, 70) forall")),
		ir.IntLit(0))
	u := &ir.Unit{Functions: []*ir.Function{p, f}}

	low, err := LowerFunctions(u, []ir.Path{f.Name}, Options{})
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	want := []ChosenTrigger{{
		Module: ir.ParsePath("k::m"),
		Span:   sp("(0, 60, 70) forall"),
		Terms:  []string{"(k::m::p i)"},
	}}
	if diff := cmp.Diff(want, low.Triggers); diff != "" {
		t.Fatalf("triggers (-want +got):\n%s", diff)
	}
}

func TestLowerMissingTrigger(t *testing.T) {
	i := ir.Var("i")
	f := execFn("k::m::f")
	f.Body = ir.Assume(
		ir.Forall([]ir.Binder{{Name: "i", Typ: ir.Int()}}, ir.Binop(ir.OpGe, ir.Binop(ir.OpMul, i, i), ir.IntLit(0))),
		ir.IntLit(0))
	u := &ir.Unit{Functions: []*ir.Function{f}}

	_, err := LowerFunctions(u, []ir.Path{f.Name}, Options{})
	var msg *diag.VirMessage
	if !errors.As(err, &msg) || msg.Code != diag.VerifyTriggerMissing {
		t.Fatalf("expected V7101, got %v", err)
	}
}
