package simplify

import (
	"testing"

	"venir/internal/ir"
)

func TestExpr(t *testing.T) {
	x := ir.Var("x")
	tests := []struct {
		name string
		in   *ir.Expr
		want string
	}{
		{"arith", ir.Binop(ir.OpAdd, ir.IntLit(2), ir.Binop(ir.OpMul, ir.IntLit(3), ir.IntLit(4))), "14"},
		{"compare", ir.Binop(ir.OpLt, ir.IntLit(2), ir.IntLit(3)), "true"},
		{"and true", ir.Binop(ir.OpAnd, ir.BoolLit(true), ir.Binop(ir.OpGt, x, ir.IntLit(0))), "(> x 0)"},
		{"implies false", ir.Binop(ir.OpImplies, ir.BoolLit(false), x), "true"},
		{"if", ir.If(ir.Binop(ir.OpEq, ir.IntLit(1), ir.IntLit(1)), x, ir.IntLit(0)), "x"},
		{"double not", ir.Unop(ir.OpNot, ir.Unop(ir.OpNot, x)), "x"},
		{"let", ir.Let("y", ir.Binop(ir.OpAdd, ir.IntLit(1), ir.IntLit(1)), ir.Binop(ir.OpMul, ir.Var("y"), x)), "(* 2 x)"},
		{"nested let", ir.Let("a", ir.IntLit(1), ir.Let("b", ir.Var("a"), ir.Binop(ir.OpAdd, ir.Var("b"), ir.Var("a")))), "2"},
		{"div by zero kept", ir.Binop(ir.OpDiv, ir.IntLit(1), ir.IntLit(0)), "(/ 1 0)"},
	}
	pure := func(*ir.Expr) bool { return true }
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ir.ExprString(Expr(tt.in, pure)); got != tt.want {
				t.Fatalf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestArithEuclidean(t *testing.T) {
	tests := []struct {
		op         string
		a, b, want int64
	}{
		{ir.OpDiv, 7, 2, 3},
		{ir.OpMod, 7, 2, 1},
		{ir.OpDiv, -7, 2, -4},
		{ir.OpMod, -7, 2, 1},
		{ir.OpDiv, -7, -2, 4},
		{ir.OpMod, -7, -2, 1},
	}
	for _, tt := range tests {
		got, ok := Arith(tt.op, tt.a, tt.b)
		if !ok || got != tt.want {
			t.Errorf("%d %s %d = %d (%v), want %d", tt.a, tt.op, tt.b, got, ok, tt.want)
		}
	}
	if _, ok := Arith(ir.OpAdd, 1<<62, 1<<62); ok {
		t.Errorf("overflow not detected")
	}
}

func TestUnitKeepsImpureLets(t *testing.T) {
	exec := &ir.Function{Name: ir.ParsePath("k::m::tick"), Owning: ir.ParsePath("k::m"), Mode: ir.ModeExec,
		Ret: &ir.Param{Name: "r", Typ: ir.Int()}}
	f := &ir.Function{Name: ir.ParsePath("k::m::f"), Owning: ir.ParsePath("k::m"), Mode: ir.ModeExec,
		Body: ir.Let("t", ir.Call(exec.Name), ir.Binop(ir.OpAdd, ir.Var("t"), ir.Var("t")))}
	u := &ir.Unit{Functions: []*ir.Function{exec, f}}

	got := Unit(u)
	if got.Functions[1].Body.Kind != ir.ExprLet {
		t.Fatalf("impure let inlined: %s", ir.ExprString(got.Functions[1].Body))
	}
	if u.Functions[1].Body.Args[0].Kind != ir.ExprCall {
		t.Fatalf("input mutated")
	}
}
