// Package importer provides the trusted library units merged into the unit
// under verification.
//
// Library files come in two encodings: ".vir" is a msgpack LibraryFile
// written by Export, ".json" is a bare unit as produced by the front end.
// Every error returned here is a *diag.VirMessage with level Error and no
// spans.
package importer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"venir/internal/diag"
	"venir/internal/ir"
	"venir/internal/trace"
)

// SchemaVersion is bumped whenever LibraryFile changes shape.
const SchemaVersion uint16 = 1

const (
	// EnvRoot overrides the library root.
	EnvRoot  = "VENIR_ROOT"
	VstdName = "vstd"
	VstdFile = "vstd.vir"
)

// LibraryFile is the on-disk form of an exported unit.
type LibraryFile struct {
	Schema uint16   `json:"schema"`
	Name   string   `json:"name"`
	Unit   *ir.Unit `json:"unit"`
}

// Spec is one "name=path" import request.
type Spec struct {
	Name string
	Path string
}

// ParseSpecs parses "name=path" pairs, keeping their order.
func ParseSpecs(pairs []string) ([]Spec, error) {
	out := make([]Spec, 0, len(pairs))
	seen := make(map[string]bool, len(pairs))
	for _, pair := range pairs {
		name, path, ok := strings.Cut(pair, "=")
		if !ok || name == "" || path == "" {
			return nil, diag.Errorf(diag.ImportNotFound, "import %q is not of the form name=path", pair)
		}
		if seen[name] {
			return nil, diag.Errorf(diag.ImportNotFound, "library %s imported twice", name)
		}
		seen[name] = true
		out = append(out, Spec{Name: name, Path: path})
	}
	return out, nil
}

// Options select which libraries Load provides.
type Options struct {
	Imports []Spec
	NoVstd  bool
	// Root is the library root; empty means DetectRoot.
	Root string
}

// DetectRoot returns the first directory holding vstd.vir among: $VENIR_ROOT,
// lib/ next to the executable. It returns "" when none does.
func DetectRoot() string {
	if root := os.Getenv(EnvRoot); root != "" && hasVstd(root) {
		return root
	}
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	lib := filepath.Join(filepath.Dir(exe), "lib")
	if hasVstd(lib) {
		return lib
	}
	return ""
}

func hasVstd(root string) bool {
	info, err := os.Stat(filepath.Join(root, VstdFile))
	return err == nil && !info.IsDir()
}

// Load reads every requested library: vstd first unless disabled, then the
// explicit imports in order.
func Load(ctx context.Context, opts Options) ([]ir.Library, error) {
	_, sp := trace.Start(ctx, trace.ScopePass, "import")
	defer sp.End("")

	specs := make([]Spec, 0, len(opts.Imports)+1)
	if !opts.NoVstd {
		root := opts.Root
		if root == "" {
			root = DetectRoot()
		}
		if root == "" || !hasVstd(root) {
			return nil, diag.Errorf(diag.ImportNotFound,
				"could not find %s; set %s or pass --no-vstd", VstdFile, EnvRoot)
		}
		specs = append(specs, Spec{Name: VstdName, Path: filepath.Join(root, VstdFile)})
	}
	for _, s := range opts.Imports {
		if s.Name == VstdName && !opts.NoVstd {
			return nil, diag.Errorf(diag.ImportNotFound, "library %s is provided by the library root", VstdName)
		}
		specs = append(specs, s)
	}

	libs := make([]ir.Library, 0, len(specs))
	for _, s := range specs {
		u, err := ReadFile(s.Path, s.Name)
		if err != nil {
			return nil, err
		}
		libs = append(libs, ir.Library{Name: s.Name, Unit: u})
	}
	sp.WithExtra("libraries", strconv.Itoa(len(libs)))
	return libs, nil
}

// ReadFile decodes the library at path. For .vir files the recorded name
// must equal name.
func ReadFile(path, name string) (*ir.Unit, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".vir":
		return readLibrary(path, name)
	case ".json":
		// #nosec G304 -- path comes from the command line.
		f, err := os.Open(path)
		if err != nil {
			return nil, openError(path, name, err)
		}
		defer f.Close()
		u, err := ir.DecodeJSON(f)
		if err != nil {
			return nil, diag.Errorf(diag.ImportDecode, "library %s (%s): %v", name, path, err)
		}
		return u, nil
	}
	return nil, diag.Errorf(diag.ImportDecode, "library %s (%s): unsupported file type (want .vir or .json)", name, path)
}

func openError(path, name string, err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return diag.Errorf(diag.ImportNotFound, "library %s not found at %s", name, path)
	}
	return diag.Errorf(diag.ImportNotFound, "library %s (%s): %v", name, path, err)
}

func newDecoder(f *os.File) *msgpack.Decoder {
	dec := msgpack.NewDecoder(f)
	dec.SetCustomStructTag("json")
	return dec
}

func readLibrary(path, name string) (*ir.Unit, error) {
	// #nosec G304 -- path comes from the command line or the library root.
	f, err := os.Open(path)
	if err != nil {
		return nil, openError(path, name, err)
	}
	defer f.Close()

	var lib LibraryFile
	if err := newDecoder(f).Decode(&lib); err != nil {
		return nil, diag.Errorf(diag.ImportDecode, "library %s (%s): %v", name, path, err)
	}
	if lib.Schema != SchemaVersion {
		return nil, diag.Errorf(diag.ImportSchema,
			"library %s (%s) has schema %d, expected %d; re-export it", name, path, lib.Schema, SchemaVersion)
	}
	if lib.Name != name {
		return nil, diag.Errorf(diag.ImportSchema, "library %s (%s) was exported as %q", name, path, lib.Name)
	}
	if lib.Unit == nil {
		return nil, diag.Errorf(diag.ImportDecode, "library %s (%s) holds no unit", name, path)
	}
	if err := lib.Unit.Validate(); err != nil {
		return nil, diag.Errorf(diag.ImportDecode, "library %s (%s): %v", name, path, err)
	}
	return lib.Unit, nil
}

// Export writes u as a library file named name. The file is replaced
// atomically.
func Export(path, name string, u *ir.Unit) (err error) {
	fail := func(err error) error {
		return diag.Errorf(diag.ImportExport, "failed to export %s to %s: %v", name, path, err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fail(err)
	}
	f, err := os.CreateTemp(dir, ".export-*")
	if err != nil {
		return fail(err)
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	enc := msgpack.NewEncoder(f)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(&LibraryFile{Schema: SchemaVersion, Name: name, Unit: u}); err != nil {
		return fail(err)
	}
	if err := f.Close(); err != nil {
		return fail(err)
	}
	// Атомарная замена
	if err := os.Rename(f.Name(), path); err != nil {
		return fail(fmt.Errorf("rename: %w", err))
	}
	return nil
}
