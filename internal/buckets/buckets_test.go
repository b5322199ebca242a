package buckets

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"venir/internal/diag"
	"venir/internal/ir"
)

func sample() *ir.Unit {
	fn := func(name string) *ir.Function {
		p := ir.ParsePath(name)
		return &ir.Function{Name: p, Owning: p.Parent(), Mode: ir.ModeExec}
	}
	heavy := fn("k::a::heavy")
	heavy.Attrs.SpinoffProver = true
	return &ir.Unit{
		Name: "k",
		Modules: []ir.Module{
			{Path: ir.ParsePath("k")}, {Path: ir.ParsePath("k::a")}, {Path: ir.ParsePath("k::a::inner")}, {Path: ir.ParsePath("k::b")},
		},
		Functions: []*ir.Function{
			fn("k::main"), fn("k::a::add"), heavy, fn("k::a::sub"), fn("k::a::inner::deep"), fn("k::b::test_one"), fn("k::b::test_two"),
		},
	}
}

func ids(bs []*Bucket) []string {
	var out []string
	for _, b := range bs {
		out = append(out, b.ID.FriendlyName())
	}
	return out
}

func partition(t *testing.T, cfg FilterConfig) ([]*Bucket, error) {
	t.Helper()
	f, err := NewUserFilter(cfg)
	if err != nil {
		t.Fatalf("NewUserFilter: %v", err)
	}
	u := sample()
	bs, _, err := Partition(u, u.Modules, f)
	return bs, err
}

func TestPartitionEverything(t *testing.T) {
	bs, err := partition(t, FilterConfig{})
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	want := []string{"k", "k::a", "k::a::heavy", "k::a::inner", "k::b"}
	if diff := cmp.Diff(want, ids(bs)); diff != "" {
		t.Fatalf("buckets (-want +got):\n%s", diff)
	}
	for _, b := range bs {
		if b.ID.Module.String() == "k::a" && b.ID.Function == nil {
			if len(b.Functions) != 2 {
				t.Fatalf("spinoff function must leave its module bucket: %v", b.Functions)
			}
		}
	}
}

func TestPartitionIsDeterministic(t *testing.T) {
	cfg := FilterConfig{VerifyModule: []string{"a"}}
	first, err := partition(t, cfg)
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	for range 5 {
		again, err := partition(t, cfg)
		if err != nil {
			t.Fatalf("Partition: %v", err)
		}
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("partition changed between runs (-first +again):\n%s", diff)
		}
	}
	if diff := cmp.Diff([]string{"k::a", "k::a::heavy", "k::a::inner"}, ids(first)); diff != "" {
		t.Fatalf("buckets (-want +got):\n%s", diff)
	}
}

func TestPartitionModuleSelections(t *testing.T) {
	tests := []struct {
		name string
		cfg  FilterConfig
		want []string
	}{
		{"root", FilterConfig{VerifyRoot: true}, []string{"k"}},
		{"only module", FilterConfig{VerifyOnlyModule: []string{"k::a"}}, []string{"k::a", "k::a::heavy"}},
		{"two modules", FilterConfig{VerifyModule: []string{"b", "a::inner"}}, []string{"k::a::inner", "k::b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bs, err := partition(t, tt.cfg)
			if err != nil {
				t.Fatalf("Partition: %v", err)
			}
			if diff := cmp.Diff(tt.want, ids(bs)); diff != "" {
				t.Fatalf("buckets (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPartitionFunctionFilter(t *testing.T) {
	bs, err := partition(t, FilterConfig{VerifyModule: []string{"b"}, VerifyFunction: "test_*"})
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	if len(bs) != 1 || bs[0].ID.FriendlyName() != "k::b" || !bs[0].Restricted || len(bs[0].Functions) != 2 {
		t.Fatalf("unexpected buckets %+v", bs)
	}

	bs, err = partition(t, FilterConfig{VerifyModule: []string{"b"}, VerifyFunction: "*_two"})
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	if diff := cmp.Diff([]ir.Path{ir.ParsePath("k::b::test_two")}, bs[0].Functions); diff != "" {
		t.Fatalf("functions (-want +got):\n%s", diff)
	}
}

func TestPartitionErrors(t *testing.T) {
	_, err := partition(t, FilterConfig{VerifyModule: []string{"missing"}})
	var vm *diag.VirMessage
	if !errors.As(err, &vm) || vm.Code != diag.FilterUnknownModule {
		t.Fatalf("want unknown module, got %v", err)
	}

	_, err = partition(t, FilterConfig{VerifyModule: []string{"a"}, VerifyFunction: "nothing_here"})
	if !errors.As(err, &vm) || vm.Code != diag.FilterUnknownFunction {
		t.Fatalf("want unknown function, got %v", err)
	}
}

func TestNewUserFilterRejectsMalformed(t *testing.T) {
	for _, cfg := range []FilterConfig{
		{VerifyRoot: true, VerifyModule: []string{"a"}},
		{VerifyFunction: "f"},
		{VerifyModule: []string{"a", "b"}, VerifyFunction: "f"},
		{VerifyModule: []string{"a"}, VerifyFunction: "**"},
	} {
		_, err := NewUserFilter(cfg)
		var vm *diag.VirMessage
		if !errors.As(err, &vm) || vm.Code != diag.FilterInvalid {
			t.Errorf("%+v: want FilterInvalid, got %v", cfg, err)
		}
	}
}
