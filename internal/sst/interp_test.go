package sst

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"venir/internal/ir"
)

func specFn(name string, body *ir.Expr, params ...string) *ir.Function {
	f := &ir.Function{
		Name:   ir.ParsePath(name),
		Owning: ir.ParsePath(name).Parent(),
		Mode:   ir.ModeSpec,
		Ret:    &ir.Param{Name: "result", Typ: ir.Int()},
		Body:   body,
	}
	for _, p := range params {
		f.Params = append(f.Params, ir.Param{Name: p, Typ: ir.Int()})
	}
	return f
}

func TestEvalThreeValued(t *testing.T) {
	in := NewInterp(nil, 64, 1000)
	x := ir.Var("x")
	tests := []struct {
		name string
		e    *ir.Expr
		env  map[string]Value
		want Value
	}{
		{"known", ir.Binop(ir.OpAdd, x, ir.IntLit(1)), map[string]Value{"x": IntValue(2)}, IntValue(3)},
		{"unknown var", ir.Binop(ir.OpAdd, x, ir.IntLit(1)), nil, Value{}},
		{"false and unknown", ir.Binop(ir.OpAnd, ir.BoolLit(false), x), nil, BoolValue(false)},
		{"unknown or true", ir.Binop(ir.OpOr, x, ir.BoolLit(true)), nil, BoolValue(true)},
		{"unknown implies true", ir.Binop(ir.OpImplies, x, ir.BoolLit(true)), nil, BoolValue(true)},
		{"if unknown same arms", ir.If(x, ir.IntLit(4), ir.IntLit(4)), nil, IntValue(4)},
		{"euclid mod", ir.Binop(ir.OpMod, ir.IntLit(-7), ir.IntLit(2)), nil, IntValue(1)},
		{"div by zero", ir.Binop(ir.OpDiv, ir.IntLit(1), ir.IntLit(0)), nil, Value{}},
		{"opaque call", ir.Call(ir.ParsePath("k::g"), ir.IntLit(1)), nil, Value{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := in.Eval(tt.e, tt.env)
			if err != nil {
				t.Fatalf("eval: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvalUnfoldsSpecFunctions(t *testing.T) {
	// fact(n) = if n <= 0 then 1 else n * fact(n - 1)
	n := ir.Var("n")
	fact := specFn("k::fact", ir.If(
		ir.Binop(ir.OpLe, n, ir.IntLit(0)),
		ir.IntLit(1),
		ir.Binop(ir.OpMul, n, ir.Call(ir.ParsePath("k::fact"), ir.Binop(ir.OpSub, n, ir.IntLit(1)))),
	), "n")
	defs := map[string]*ir.Function{"k::fact": fact}

	in := NewInterp(defs, 64, 10_000)
	got, err := in.Eval(ir.Call(fact.Name, ir.IntLit(5)), nil)
	if err != nil || got != IntValue(120) {
		t.Fatalf("fact(5) = %v, %v", got, err)
	}

	in = NewInterp(defs, 64, 10_000)
	in.MaxDepth = 3
	got, err = in.Eval(ir.Call(fact.Name, ir.IntLit(5)), nil)
	if err != nil || got.Kind != Unknown || !in.Overflowed {
		t.Fatalf("depth limit: got %v, %v, overflowed=%v", got, err, in.Overflowed)
	}
}

func TestEvalBudget(t *testing.T) {
	n := ir.Var("n")
	loop := specFn("k::loop", ir.Call(ir.ParsePath("k::loop"), ir.Binop(ir.OpAdd, n, ir.IntLit(1))), "n")
	in := NewInterp(map[string]*ir.Function{"k::loop": loop}, 64, 50)
	in.MaxDepth = 1 << 20
	_, err := in.Eval(ir.Call(loop.Name, ir.IntLit(0)), nil)
	if !errors.Is(err, ErrBudget) {
		t.Fatalf("expected ErrBudget, got %v", err)
	}
}

func TestEvalQuantifiers(t *testing.T) {
	b := ir.Var("b")
	in := NewInterp(nil, 64, 10_000)

	// forall b: bool. b || !b
	taut := ir.Forall([]ir.Binder{{Name: "b", Typ: ir.Bool()}}, ir.Binop(ir.OpOr, b, ir.Unop(ir.OpNot, b)))
	if v, err := in.Eval(taut, nil); err != nil || !v.IsTrue() {
		t.Fatalf("tautology: %v %v", v, err)
	}

	// forall x: u8. x < 255 is refuted by 255
	x := ir.Var("x")
	refuted := ir.Forall([]ir.Binder{{Name: "x", Typ: ir.Uint(8)}}, ir.Binop(ir.OpLt, x, ir.IntLit(255)))
	if v, err := in.Eval(refuted, nil); err != nil || !v.IsFalse() {
		t.Fatalf("refuted: %v %v", v, err)
	}

	// forall x: int. x * x >= 0 holds on samples only
	sampled := ir.Forall([]ir.Binder{{Name: "x", Typ: ir.Int()}}, ir.Binop(ir.OpGe, ir.Binop(ir.OpMul, x, x), ir.IntLit(0)))
	if v, err := in.Eval(sampled, nil); err != nil || v.Kind != Unknown {
		t.Fatalf("sampled: %v %v", v, err)
	}

	// exists x: int. x == 3 is found
	found := ir.Exists([]ir.Binder{{Name: "x", Typ: ir.Int()}}, ir.Binop(ir.OpEq, x, ir.IntLit(3)))
	if v, err := in.Eval(found, nil); err != nil || !v.IsTrue() {
		t.Fatalf("exists: %v %v", v, err)
	}
}

func TestDomainOf(t *testing.T) {
	if d := DomainOf(ir.Uint(8), 64, DefaultMaxEnum, DefaultWindow); !d.Exhaustive || len(d.Values) != 256 {
		t.Fatalf("u8: exhaustive=%v len=%d", d.Exhaustive, len(d.Values))
	}
	d := DomainOf(ir.Nat(), 64, DefaultMaxEnum, 2)
	if d.Exhaustive {
		t.Fatalf("nat must not be exhaustive")
	}
	for _, v := range d.Values {
		if v.I < 0 {
			t.Fatalf("nat domain contains %d", v.I)
		}
	}
	if d := DomainOf(ir.DatatypeTyp(ir.ParsePath("k::T")), 64, DefaultMaxEnum, 2); len(d.Values) != 0 || d.Exhaustive {
		t.Fatalf("datatype domain: %+v", d)
	}
}

func TestEvalGroundLogs(t *testing.T) {
	n := ir.Var("n")
	double := specFn("k::double", ir.Binop(ir.OpMul, n, ir.IntLit(2)), "n")
	in := NewInterp(map[string]*ir.Function{"k::double": double}, 64, 1000)

	var log bytes.Buffer
	v, ok := EvalGround(in, ir.Call(double.Name, ir.IntLit(21)), &log)
	if !ok || v != IntValue(42) {
		t.Fatalf("got %v %v", v, ok)
	}
	if !strings.HasPrefix(log.String(), "k::double(21) = 42 [") {
		t.Fatalf("log line: %q", log.String())
	}

	if _, ok := EvalGround(in, ir.Call(double.Name, n), &log); ok {
		t.Fatalf("non-ground call evaluated")
	}
}
