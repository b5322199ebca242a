package sst

import (
	"testing"

	"venir/internal/ir"
)

func terms(ts []*ir.Expr) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = ir.ExprString(t)
	}
	return out
}

func TestSelectTrigger(t *testing.T) {
	f := ir.ParsePath("k::f")
	g := ir.ParsePath("k::g")
	x, y := ir.Var("x"), ir.Var("y")
	xy := []ir.Binder{{Name: "x", Typ: ir.Int()}, {Name: "y", Typ: ir.Int()}}

	tests := []struct {
		name string
		q    *ir.Expr
		want []string
		low  bool
	}{
		{
			name: "single covering term",
			q:    ir.Forall(xy, ir.Binop(ir.OpEq, ir.Call(f, x, y), ir.IntLit(0))),
			want: []string{"(k::f x y)"},
		},
		{
			name: "smallest of several",
			q: ir.Forall(xy, ir.Binop(ir.OpImplies,
				ir.Call(g, ir.Call(f, x, y)),
				ir.Call(g, x))),
			want: []string{"(k::f x y)"},
			low:  true,
		},
		{
			name: "greedy cover",
			q:    ir.Forall(xy, ir.Binop(ir.OpLe, ir.Call(f, x), ir.Call(g, y))),
			want: []string{"(k::f x)", "(k::g y)"},
			low:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, low, err := selectTrigger(tt.q)
			if err != nil {
				t.Fatalf("select: %v", err)
			}
			gs := terms(got)
			if len(gs) != len(tt.want) {
				t.Fatalf("got %v, want %v", gs, tt.want)
			}
			for i := range gs {
				if gs[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", gs, tt.want)
				}
			}
			if low != tt.low {
				t.Fatalf("low confidence = %v, want %v", low, tt.low)
			}
		})
	}
}

func TestSelectTriggerAutoIsConfident(t *testing.T) {
	x, y := ir.Var("x"), ir.Var("y")
	q := ir.Forall([]ir.Binder{{Name: "x", Typ: ir.Int()}, {Name: "y", Typ: ir.Int()}},
		ir.Binop(ir.OpLe, ir.Call(ir.ParsePath("k::f"), x), ir.Call(ir.ParsePath("k::g"), y)))
	q.Auto = true
	if _, low, err := selectTrigger(q); err != nil || low {
		t.Fatalf("auto trigger: low=%v err=%v", low, err)
	}
}
