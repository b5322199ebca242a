package prune

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"venir/internal/ir"
)

func fn(name string, mode ir.Mode, body *ir.Expr, ensures ...*ir.Expr) *ir.Function {
	p := ir.ParsePath(name)
	return &ir.Function{Name: p, Owning: p.Parent(), Mode: mode, Kind: ir.FunStatic, Body: body, Ensures: ensures}
}

func names(u *ir.Unit) []string {
	var out []string
	for _, f := range u.Functions {
		out = append(out, f.Name.String())
	}
	for _, d := range u.Datatypes {
		out = append(out, "dt "+d.Name.String())
	}
	for _, ti := range u.TraitImpls {
		out = append(out, "impl "+ti.Impl.String())
	}
	return out
}

func sample() *ir.Unit {
	point := ir.ParsePath("k::a::Point")
	spec := fn("k::a::inv", ir.ModeSpec, ir.BoolLit(true))
	helper := fn("k::a::helper", ir.ModeExec, ir.Call(ir.ParsePath("k::b::deep")), ir.Call(spec.Name))
	deep := fn("k::b::deep", ir.ModeExec, nil)
	main := fn("k::a::main", ir.ModeExec, ir.Call(helper.Name))
	main.Params = []ir.Param{{Name: "p", Typ: ir.DatatypeTyp(point)}}
	lonely := fn("k::c::lonely", ir.ModeExec, nil)
	return &ir.Unit{
		Name: "k",
		Modules: []ir.Module{
			{Path: ir.ParsePath("k::a")}, {Path: ir.ParsePath("k::b")}, {Path: ir.ParsePath("k::c")},
		},
		Functions: []*ir.Function{spec, helper, deep, main, lonely},
		Datatypes: []*ir.Datatype{{Name: point, Owning: ir.ParsePath("k::a")}},
	}
}

func TestPruneAgainstItselfIsIdentity(t *testing.T) {
	u := sample()
	got := Unit(u, Options{Root: u})
	if diff := cmp.Diff(u, got); diff != "" {
		t.Fatalf("pruning a unit against itself changed it (-want +got):\n%s", diff)
	}
	again := Unit(got, Options{Root: got})
	if diff := cmp.Diff(got, again); diff != "" {
		t.Fatalf("second prune changed the unit (-want +got):\n%s", diff)
	}
}

func TestPruneFromRootDropsUnreachable(t *testing.T) {
	u := sample()
	root := &ir.Unit{Name: "k", Functions: []*ir.Function{u.Functions[3]}} // main
	got := Unit(u, Options{Root: root})
	want := []string{"k::a::inv", "k::a::helper", "k::b::deep", "k::a::main", "dt k::a::Point"}
	if diff := cmp.Diff(want, names(got)); diff != "" {
		t.Fatalf("reachable set (-want +got):\n%s", diff)
	}
	for _, m := range got.Modules {
		if m.Path.String() == "k::c" {
			t.Fatalf("module k::c should have been pruned")
		}
	}
}

func TestPruneForVerificationDropsCalleeBodies(t *testing.T) {
	u := sample()
	mod := ir.ParsePath("k::a")
	got := Unit(u, Options{Module: &mod, Functions: []ir.Path{ir.ParsePath("k::a::main")}, ForVerification: true})

	byName := make(map[string]*ir.Function)
	for _, f := range got.Functions {
		byName[f.Name.String()] = f
	}
	if byName["k::a::main"].Body == nil {
		t.Fatalf("root body dropped")
	}
	helper, ok := byName["k::a::helper"]
	if !ok || helper.Body != nil {
		t.Fatalf("helper should be kept without body: %+v", helper)
	}
	if _, ok := byName["k::a::inv"]; !ok {
		t.Fatalf("helper's ensures mention inv, it must stay")
	}
	if _, ok := byName["k::b::deep"]; ok {
		t.Fatalf("deep is only called from a dropped body")
	}
	if u.Functions[1].Body == nil {
		t.Fatalf("input unit mutated")
	}
}

func TestPruneTraitImplNeedsTraitAndType(t *testing.T) {
	trait := ir.ParsePath("k::t::Show")
	decl := &ir.Function{Name: ir.ParsePath("k::t::Show::show"), Owning: ir.ParsePath("k::t"), Mode: ir.ModeSpec,
		Kind: ir.FunTraitMethodDecl, Trait: &trait}
	impl := ir.ParsePath("k::a::impl_Show_Point")
	method := &ir.Function{Name: ir.ParsePath("k::a::impl_Show_Point::show"), Owning: ir.ParsePath("k::a"), Mode: ir.ModeSpec,
		Kind: ir.FunTraitMethodImpl, Trait: &trait, Method: &decl.Name, Impl: &impl, Body: ir.BoolLit(true)}
	point := ir.ParsePath("k::a::Point")

	u := &ir.Unit{
		Name:       "k",
		Functions:  []*ir.Function{decl, method},
		Datatypes:  []*ir.Datatype{{Name: point, Owning: ir.ParsePath("k::a")}},
		Traits:     []*ir.Trait{{Name: trait, Owning: ir.ParsePath("k::t"), Methods: []ir.Path{decl.Name}}},
		TraitImpls: []ir.TraitImpl{{Impl: impl, Trait: trait, ForType: ir.DatatypeTyp(point), Owning: ir.ParsePath("k::a")}},
	}

	// only the datatype: the trait is not used, so neither is the impl
	onlyType := Unit(u, Options{Root: &ir.Unit{Datatypes: u.Datatypes}})
	if diff := cmp.Diff([]string{"dt k::a::Point"}, names(onlyType)); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}

	// a caller of the trait method plus the datatype pulls in impl and method
	caller := fn("k::a::use", ir.ModeSpec, ir.Call(decl.Name))
	u.Functions = append(u.Functions, caller)
	both := Unit(u, Options{Root: &ir.Unit{Functions: []*ir.Function{caller}, Datatypes: u.Datatypes}})
	want := []string{"k::t::Show::show", "k::a::impl_Show_Point::show", "k::a::use", "dt k::a::Point", "impl k::a::impl_Show_Point"}
	if diff := cmp.Diff(want, names(both)); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestPruneEmptyFunctionSubsetRootsNoFunctions(t *testing.T) {
	u := sample()
	mod := ir.ParsePath("k::a")
	got := Unit(u, Options{Module: &mod, Functions: []ir.Path{}, ForVerification: true})
	for _, f := range got.Functions {
		if f.Body != nil && f.Mode != ir.ModeSpec {
			t.Fatalf("%s kept its body without being a root", f.Name)
		}
	}
	all := Unit(u, Options{Module: &mod, ForVerification: true})
	if len(all.Functions) <= len(got.Functions) {
		t.Fatalf("nil subset should root every function of the module: %d vs %d", len(all.Functions), len(got.Functions))
	}
}
