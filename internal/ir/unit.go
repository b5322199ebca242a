package ir

// Span is the IR location attached by the front end. AsString starts with a
// "(file, start, end)" tuple (see internal/source).
type Span struct {
	ID       uint64 `json:"id,omitempty"`
	AsString string `json:"as_string"`
}

// Mode separates specification-only code from proof and executable code.
type Mode string

const (
	ModeSpec  Mode = "spec"
	ModeProof Mode = "proof"
	ModeExec  Mode = "exec"
)

// Arch describes the target machine. WordBits == 0 is provisional and gets
// resolved during merging.
type Arch struct {
	WordBits uint32 `json:"word_bits,omitempty"`
}

type Module struct {
	Path Path `json:"path"`
	Span Span `json:"span"`
}

type Param struct {
	Name string `json:"name"`
	Typ  Typ    `json:"typ"`
	Mode Mode   `json:"mode,omitempty"`
}

// FunctionKind distinguishes free functions from trait method declarations
// and their implementations.
type FunctionKind string

const (
	FunStatic          FunctionKind = "static"
	FunTraitMethodDecl FunctionKind = "trait_method_decl"
	FunTraitMethodImpl FunctionKind = "trait_method_impl"
)

type FunAttrs struct {
	ExternalBody  bool  `json:"external_body,omitempty"`
	Opaque        bool  `json:"opaque,omitempty"`
	SpinoffProver bool  `json:"spinoff_prover,omitempty"`
	Inherited     bool  `json:"inherited,omitempty"`
	Autospec      *Path `json:"autospec,omitempty"`
}

type Function struct {
	Name   Path         `json:"name"`
	Span   Span         `json:"span"`
	Owning Path         `json:"owning"`
	Public bool         `json:"public,omitempty"`
	Mode   Mode         `json:"mode"`
	Kind   FunctionKind `json:"kind,omitempty"`
	// Trait method plumbing: Trait is set for declarations and impls,
	// Method names the declaration an impl implements, Impl the trait impl.
	Trait  *Path `json:"trait,omitempty"`
	Method *Path `json:"method,omitempty"`
	Impl   *Path `json:"impl,omitempty"`

	Params    []Param  `json:"params,omitempty"`
	Ret       *Param   `json:"ret,omitempty"`
	Requires  []*Expr  `json:"requires,omitempty"`
	Ensures   []*Expr  `json:"ensures,omitempty"`
	Decreases []*Expr  `json:"decreases,omitempty"`
	Body      *Expr    `json:"body,omitempty"`
	Attrs     FunAttrs `json:"attrs,omitempty"`

	EnsHasReturn bool `json:"ens_has_return,omitempty"`
}

func (f *Function) Clone() *Function {
	c := *f
	c.Name = f.Name.Clone()
	c.Owning = f.Owning.Clone()
	c.Trait = clonePathPtr(f.Trait)
	c.Method = clonePathPtr(f.Method)
	c.Impl = clonePathPtr(f.Impl)
	if f.Params != nil {
		c.Params = make([]Param, len(f.Params))
		for i, p := range f.Params {
			c.Params[i] = Param{Name: p.Name, Typ: p.Typ.clone(), Mode: p.Mode}
		}
	}
	if f.Ret != nil {
		r := Param{Name: f.Ret.Name, Typ: f.Ret.Typ.clone(), Mode: f.Ret.Mode}
		c.Ret = &r
	}
	c.Requires = cloneExprs(f.Requires)
	c.Ensures = cloneExprs(f.Ensures)
	c.Decreases = cloneExprs(f.Decreases)
	c.Body = f.Body.Clone()
	c.Attrs.Autospec = clonePathPtr(f.Attrs.Autospec)
	return &c
}

// Exprs lists every top-level expression owned by f, bodies last.
func (f *Function) Exprs() []*Expr {
	out := make([]*Expr, 0, len(f.Requires)+len(f.Ensures)+len(f.Decreases)+1)
	out = append(out, f.Requires...)
	out = append(out, f.Ensures...)
	out = append(out, f.Decreases...)
	if f.Body != nil {
		out = append(out, f.Body)
	}
	return out
}

// HasBody reports whether f carries a body that is checked rather than trusted.
func (f *Function) HasBody() bool {
	return f.Body != nil && !f.Attrs.ExternalBody
}

type Field struct {
	Name string `json:"name"`
	Typ  Typ    `json:"typ"`
}

type Variant struct {
	Name   string  `json:"name"`
	Fields []Field `json:"fields,omitempty"`
}

type Datatype struct {
	Name     Path      `json:"name"`
	Span     Span      `json:"span"`
	Owning   Path      `json:"owning"`
	Public   bool      `json:"public,omitempty"`
	Variants []Variant `json:"variants,omitempty"`
}

type Trait struct {
	Name     Path   `json:"name"`
	Span     Span   `json:"span"`
	Owning   Path   `json:"owning"`
	Methods  []Path `json:"methods,omitempty"`
	External bool   `json:"external,omitempty"`
}

type TraitImpl struct {
	Impl    Path `json:"impl"`
	Trait   Path `json:"trait"`
	ForType Typ  `json:"for_type"`
	Span    Span `json:"span"`
	Owning  Path `json:"owning"`
}

// Unit is one program unit (crate): a flat, sortable view of a module tree.
// Passes never mutate a Unit they received; they return a new one.
type Unit struct {
	Name       string      `json:"name"`
	Arch       Arch        `json:"arch"`
	Modules    []Module    `json:"modules,omitempty"`
	Functions  []*Function `json:"functions,omitempty"`
	Datatypes  []*Datatype `json:"datatypes,omitempty"`
	Traits     []*Trait    `json:"traits,omitempty"`
	TraitImpls []TraitImpl `json:"trait_impls,omitempty"`
}

// Clone copies the top-level slices so that a pass can replace elements
// without touching the receiver. Elements themselves are shared.
func (u *Unit) Clone() *Unit {
	c := *u
	c.Modules = append([]Module(nil), u.Modules...)
	c.Functions = append([]*Function(nil), u.Functions...)
	c.Datatypes = append([]*Datatype(nil), u.Datatypes...)
	c.Traits = append([]*Trait(nil), u.Traits...)
	c.TraitImpls = append([]TraitImpl(nil), u.TraitImpls...)
	return &c
}

// Module returns the module with the given path.
func (u *Unit) Module(p Path) (Module, bool) {
	for _, m := range u.Modules {
		if m.Path.Equal(p) {
			return m, true
		}
	}
	return Module{}, false
}

// WordBits returns the effective machine word width (64 when unresolved).
func (u *Unit) WordBits() uint32 {
	if u.Arch.WordBits == 0 {
		return 64
	}
	return u.Arch.WordBits
}

// Library is an imported, already validated unit together with the name it
// was provided under.
type Library struct {
	Name string
	Unit *Unit
}
