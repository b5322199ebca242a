package importer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/vmihailenco/msgpack/v5"

	"venir/internal/diag"
	"venir/internal/ir"
)

func libUnit(name string) *ir.Unit {
	return &ir.Unit{
		Name:    name,
		Modules: []ir.Module{{Path: ir.NewPath(name, "m")}},
		Functions: []*ir.Function{{
			Name:   ir.NewPath(name, "m", "succ"),
			Owning: ir.NewPath(name, "m"),
			Public: true,
			Mode:   ir.ModeSpec,
			Kind:   ir.FunStatic,
			Params: []ir.Param{{Name: "x", Typ: ir.Int()}},
			Ret:    &ir.Param{Name: "r", Typ: ir.Int()},
			Body:   ir.Binop("+", ir.Var("x"), ir.IntLit(1)),
		}},
	}
}

// requireSpanless checks the provider contract: level Error, no spans.
func requireSpanless(t *testing.T, err error, code diag.Code) {
	t.Helper()
	var vm *diag.VirMessage
	if !errors.As(err, &vm) {
		t.Fatalf("expected *diag.VirMessage, got %T: %v", err, err)
	}
	if vm.Level != diag.LevelError || vm.Code != code {
		t.Fatalf("unexpected message %v", vm)
	}
	if len(vm.Spans) != 0 || len(vm.Labels) != 0 {
		t.Fatalf("provider error carries spans: %+v", vm)
	}
}

func TestExportReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "lib.vir")
	want := libUnit("lib")
	if err := Export(path, "lib", want); err != nil {
		t.Fatalf("export: %v", err)
	}
	got, err := ReadFile(path, "lib")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("unit mismatch (-want +got):\n%s", diff)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("temporary files left behind: %v", entries)
	}
}

func TestReadFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadFile(filepath.Join(dir, "missing.vir"), "lib")
	requireSpanless(t, err, diag.ImportNotFound)

	path := filepath.Join(dir, "lib.vir")
	if err := Export(path, "lib", libUnit("lib")); err != nil {
		t.Fatal(err)
	}
	_, err = ReadFile(path, "other")
	requireSpanless(t, err, diag.ImportSchema)

	old := filepath.Join(dir, "old.vir")
	f, err := os.Create(old)
	if err != nil {
		t.Fatal(err)
	}
	enc := msgpack.NewEncoder(f)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(&LibraryFile{Schema: SchemaVersion + 1, Name: "old", Unit: libUnit("old")}); err != nil {
		t.Fatal(err)
	}
	_ = f.Close()
	_, err = ReadFile(old, "old")
	requireSpanless(t, err, diag.ImportSchema)

	garbage := filepath.Join(dir, "garbage.vir")
	if err := os.WriteFile(garbage, []byte{0xc1, 0x00}, 0o600); err != nil {
		t.Fatal(err)
	}
	_, err = ReadFile(garbage, "garbage")
	requireSpanless(t, err, diag.ImportDecode)

	_, err = ReadFile(filepath.Join(dir, "lib.txt"), "lib")
	requireSpanless(t, err, diag.ImportDecode)
}

func TestReadJSONLibrary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lib.json")
	data := `{"name":"lib","modules":[{"path":{"krate":"lib","segments":["m"]},"span":{"as_string":""}}]}`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	u, err := ReadFile(path, "lib")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if u.Name != "lib" || len(u.Modules) != 1 {
		t.Fatalf("unexpected unit %+v", u)
	}
}

func TestLoadOrder(t *testing.T) {
	root := t.TempDir()
	if err := Export(filepath.Join(root, VstdFile), VstdName, libUnit(VstdName)); err != nil {
		t.Fatal(err)
	}
	extra := filepath.Join(t.TempDir(), "a.vir")
	if err := Export(extra, "a", libUnit("a")); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvRoot, root)

	libs, err := Load(context.Background(), Options{Imports: []Spec{{Name: "a", Path: extra}}})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	var names []string
	for _, l := range libs {
		names = append(names, l.Name)
	}
	if diff := cmp.Diff([]string{"vstd", "a"}, names); diff != "" {
		t.Fatalf("library order (-want +got):\n%s", diff)
	}

	libs, err = Load(context.Background(), Options{NoVstd: true})
	if err != nil || len(libs) != 0 {
		t.Fatalf("no-vstd load: %v %v", libs, err)
	}
}

func TestLoadMissingVstd(t *testing.T) {
	t.Setenv(EnvRoot, t.TempDir())
	_, err := Load(context.Background(), Options{Root: t.TempDir()})
	requireSpanless(t, err, diag.ImportNotFound)
	if !strings.Contains(err.Error(), "--no-vstd") {
		t.Fatalf("missing hint: %v", err)
	}
}

func TestParseSpecs(t *testing.T) {
	specs, err := ParseSpecs([]string{"a=x/a.vir", "b=b.json"})
	if err != nil {
		t.Fatal(err)
	}
	want := []Spec{{Name: "a", Path: "x/a.vir"}, {Name: "b", Path: "b.json"}}
	if diff := cmp.Diff(want, specs); diff != "" {
		t.Fatalf("specs (-want +got):\n%s", diff)
	}
	for _, bad := range [][]string{{"a"}, {"=p"}, {"a=p", "a=q"}} {
		if _, err := ParseSpecs(bad); err == nil {
			t.Fatalf("expected error for %v", bad)
		}
	}
}
