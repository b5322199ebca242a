package merge

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"venir/internal/diag"
	"venir/internal/ir"
)

func span(s string) ir.Span { return ir.Span{AsString: s} }

func function(name string, mode ir.Mode, body *ir.Expr, params ...ir.Param) *ir.Function {
	p := ir.ParsePath(name)
	return &ir.Function{
		Name:   p,
		Span:   span("(0, 0, 1) " + name),
		Owning: p.Parent(),
		Public: true,
		Mode:   mode,
		Kind:   ir.FunStatic,
		Params: params,
		Body:   body,
	}
}

func lib(name string, fns ...*ir.Function) *ir.Unit {
	u := &ir.Unit{Name: name, Modules: []ir.Module{{Path: ir.NewPath(name, "m")}}}
	u.Functions = fns
	return u
}

func TestUnitsIsOrderIndependent(t *testing.T) {
	a := lib("a", function("a::m::f", ir.ModeSpec, ir.BoolLit(true)))
	b := lib("b", function("b::m::g", ir.ModeSpec, nil))
	c := lib("c", function("c::m::h", ir.ModeExec, nil))
	self := lib("self", function("self::m::main", ir.ModeExec, nil))

	want, err := Units(a, b, c, self)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	for _, perm := range [][]*ir.Unit{{c, b, a, self}, {b, a, c, self}, {c, a, b, self}} {
		got, err := Units(perm...)
		if err != nil {
			t.Fatalf("merge: %v", err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("merge depends on import order (-want +got):\n%s", diff)
		}
	}
	if want.Name != "self" {
		t.Fatalf("merged unit named %q, want self", want.Name)
	}
}

func TestUnitsRejectsIncompatibleSignatures(t *testing.T) {
	x := ir.Param{Name: "x", Typ: ir.Int()}
	y := ir.Param{Name: "x", Typ: ir.Nat()}
	a := lib("a", function("shared::util::f", ir.ModeSpec, nil, x))
	b := lib("b", function("shared::util::f", ir.ModeSpec, nil, y))

	_, err := Units(a, b, lib("self"))
	var vm *diag.VirMessage
	if !errors.As(err, &vm) {
		t.Fatalf("expected *diag.VirMessage, got %v", err)
	}
	if vm.Code != diag.MergeNameCollision || vm.Level != diag.LevelError {
		t.Fatalf("unexpected error %v", vm)
	}
	if len(vm.Spans) == 0 || len(vm.Labels) == 0 {
		t.Fatalf("collision should name both declarations: %+v", vm)
	}
}

func TestUnitsKeepsDefinitionOverDeclaration(t *testing.T) {
	decl := function("shared::util::f", ir.ModeSpec, nil)
	def := function("shared::util::f", ir.ModeSpec, ir.BoolLit(true))

	for _, order := range [][]*ir.Unit{{lib("a", decl), lib("b", def)}, {lib("b", def), lib("a", decl)}} {
		got, err := Units(order...)
		if err != nil {
			t.Fatalf("merge: %v", err)
		}
		if len(got.Functions) != 1 || got.Functions[0] != def {
			t.Fatalf("expected the definition to survive, got %+v", got.Functions)
		}
	}
}

func TestUnitsArchConflict(t *testing.T) {
	a := lib("a")
	a.Arch.WordBits = 32
	b := lib("b")
	b.Arch.WordBits = 64
	_, err := Units(a, b)
	var vm *diag.VirMessage
	if !errors.As(err, &vm) || vm.Code != diag.MergeArchConflict {
		t.Fatalf("expected arch conflict, got %v", err)
	}

	c := lib("c")
	got, err := Units(a, c)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if got.Arch.WordBits != 32 {
		t.Fatalf("word bits = %d, want 32", got.Arch.WordBits)
	}
}

func TestExternalTraits(t *testing.T) {
	ext := &ir.Trait{Name: ir.ParsePath("core::ops::Add"), Span: span("ext"), External: true,
		Methods: []ir.Path{ir.ParsePath("core::ops::Add::add")}}
	def := &ir.Trait{Name: ir.ParsePath("core::ops::Add"), Span: span("(1, 2, 3) def"), Owning: ir.ParsePath("core::ops"),
		Methods: []ir.Path{ir.ParsePath("core::ops::Add::add"), ir.ParsePath("core::ops::Add::zero")}}
	other := &ir.Trait{Name: ir.ParsePath("core::ops::Sub"), Span: span("sub")}

	u := &ir.Unit{Name: "k", Traits: []*ir.Trait{ext, other, def}}
	got := ExternalTraits(u)

	want := []*ir.Trait{
		{
			Name: ir.ParsePath("core::ops::Add"), Span: span("(1, 2, 3) def"), Owning: ir.ParsePath("core::ops"),
			Methods: []ir.Path{ir.ParsePath("core::ops::Add::add"), ir.ParsePath("core::ops::Add::zero")},
		},
		other,
	}
	if diff := cmp.Diff(want, got.Traits); diff != "" {
		t.Fatalf("merged traits (-want +got):\n%s", diff)
	}
	if len(u.Traits) != 3 {
		t.Fatalf("input mutated")
	}
}

func TestMergeAndPrune(t *testing.T) {
	used := function("vstd::m::used", ir.ModeSpec, ir.BoolLit(true))
	unused := function("vstd::m::unused", ir.ModeSpec, ir.BoolLit(false))
	vstd := lib("vstd", unused, used)
	vstd.Arch.WordBits = 32

	main := function("self::m::main", ir.ModeExec, ir.Assert(ir.Call(used.Name), ir.BoolLit(true)))
	current := lib("self", main)

	res, err := MergeAndPrune(context.Background(), current, []ir.Library{{Name: "vstd", Unit: vstd}})
	if err != nil {
		t.Fatalf("MergeAndPrune: %v", err)
	}

	names := func(u *ir.Unit) []string {
		var out []string
		for _, f := range u.Functions {
			out = append(out, f.Name.String())
		}
		return out
	}
	if diff := cmp.Diff([]string{"self::m::main", "vstd::m::used"}, names(res.Unit)); diff != "" {
		t.Fatalf("pruned functions (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"self::m::main", "vstd::m::unused", "vstd::m::used"}, names(res.Unpruned)); diff != "" {
		t.Fatalf("unpruned functions (-want +got):\n%s", diff)
	}
	if res.Current.Arch.WordBits != 32 {
		t.Fatalf("word width not propagated: %d", res.Current.Arch.WordBits)
	}
	if current.Arch.WordBits != 0 {
		t.Fatalf("input unit mutated")
	}
	if diff := cmp.Diff([]string{"self", "vstd"}, res.UnitNames); diff != "" {
		t.Fatalf("unit names (-want +got):\n%s", diff)
	}
	if len(res.CurrentModules) != 1 || res.CurrentModules[0].Path.String() != "self::m" {
		t.Fatalf("current modules: %+v", res.CurrentModules)
	}
}

func TestMergeAndPruneCollisionBeforePruning(t *testing.T) {
	a := lib("a", function("shared::m::f", ir.ModeSpec, nil, ir.Param{Name: "x", Typ: ir.Int()}))
	b := lib("b", function("shared::m::f", ir.ModeSpec, nil))
	_, err := MergeAndPrune(context.Background(), lib("self"), []ir.Library{{Name: "a", Unit: a}, {Name: "b", Unit: b}})
	var vm *diag.VirMessage
	if !errors.As(err, &vm) || vm.Code != diag.MergeNameCollision {
		t.Fatalf("expected name collision, got %v", err)
	}
}
