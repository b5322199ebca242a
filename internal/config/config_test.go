package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestDefaultIsValid(t *testing.T) {
	a := Default()
	if err := a.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if a.Rlimit != 10 || a.Jobs != 1 || a.Solver != "bounded" {
		t.Fatalf("unexpected defaults: %+v", a)
	}
}

func TestLoadTOMLKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "venir.toml")
	writeFile(t, path, `
rlimit = 2.5
jobs = 4
verify_module = ["m1", "m2"]
imports = ["vstd=lib/vstd.vir"]
`)
	a := Default()
	if err := Load(path, &a); err != nil {
		t.Fatalf("load: %v", err)
	}
	want := Default()
	want.Rlimit = 2.5
	want.Jobs = 4
	want.VerifyModule = []string{"m1", "m2"}
	want.Imports = []string{"vstd=lib/vstd.vir"}
	if diff := cmp.Diff(want, a); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "venir.yaml")
	writeFile(t, path, "solver: z3\ncontinue_on_error: true\ntriggers: verbose\n")
	a := Default()
	if err := Load(path, &a); err != nil {
		t.Fatalf("load: %v", err)
	}
	if a.Solver != "z3" || !a.ContinueOnError || a.Triggers != "verbose" {
		t.Fatalf("unexpected config: %+v", a)
	}
	if a.Rlimit != 10 {
		t.Fatalf("default rlimit lost: %v", a.Rlimit)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	tomlPath := filepath.Join(dir, "a.toml")
	writeFile(t, tomlPath, "rlimmit = 3\n")
	a := Default()
	if err := Load(tomlPath, &a); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for unknown TOML key, got %v", err)
	}

	yamlPath := filepath.Join(dir, "a.yaml")
	writeFile(t, yamlPath, "rlimmit: 3\n")
	if err := Load(yamlPath, &a); err == nil {
		t.Fatalf("expected error for unknown YAML key")
	}

	if err := Load(filepath.Join(dir, "a.ini"), &a); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for unsupported extension, got %v", err)
	}
}

func TestFindWalksUp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "venir.toml"), "jobs = 2\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	path, ok, err := Find(nested)
	if err != nil || !ok {
		t.Fatalf("find: ok=%v err=%v", ok, err)
	}
	if path != filepath.Join(root, "venir.toml") {
		t.Fatalf("found %q", path)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		edit func(*Args)
	}{
		{"negative rlimit", func(a *Args) { a.Rlimit = -1 }},
		{"unknown solver", func(a *Args) { a.Solver = "vampire" }},
		{"unknown policy", func(a *Args) { a.Triggers = "loud" }},
		{"negative jobs", func(a *Args) { a.Jobs = -2 }},
		{"bad format", func(a *Args) { a.Format = "xml" }},
		{"bad color", func(a *Args) { a.Color = "sometimes" }},
		{"bad import", func(a *Args) { a.Imports = []string{"vstd"} }},
		{"bad trace level", func(a *Args) { a.TraceLevel = "chatty" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := Default()
			tc.edit(&a)
			if err := a.Validate(); !errors.Is(err, ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
		})
	}

	a := Default()
	a.Rlimit = 0
	a.Jobs = 0
	if err := a.Validate(); err != nil {
		t.Fatalf("zero rlimit and jobs should be accepted: %v", err)
	}
}

func TestOverlayOnlyChanged(t *testing.T) {
	file := Default()
	file.Rlimit = 3
	file.Jobs = 8

	flags := Default()
	flags.Rlimit = 7
	flags.Jobs = 1

	Overlay(&file, &flags, func(name string) bool { return name == "rlimit" })
	if file.Rlimit != 7 {
		t.Fatalf("changed flag not applied: %v", file.Rlimit)
	}
	if file.Jobs != 8 {
		t.Fatalf("unchanged flag overrode file value: %v", file.Jobs)
	}
}

func TestFilterFromArgs(t *testing.T) {
	a := Default()
	a.VerifyModule = []string{"m"}
	a.VerifyFunction = "f"
	if _, err := a.Filter(); err != nil {
		t.Fatalf("filter: %v", err)
	}
}
