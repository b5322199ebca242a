package ir

// Index gives O(1) lookups over a unit. It is a read-only view; build a new
// one after a pass returns a new unit.
type Index struct {
	Functions  map[string]*Function
	Datatypes  map[string]*Datatype
	Traits     map[string]*Trait
	TraitImpls map[string]*TraitImpl
	Modules    map[string]Module
	// ImplMethods maps "impl path|method decl path" to the implementing function.
	ImplMethods map[string]*Function
}

func NewIndex(u *Unit) *Index {
	idx := &Index{
		Functions:   make(map[string]*Function, len(u.Functions)),
		Datatypes:   make(map[string]*Datatype, len(u.Datatypes)),
		Traits:      make(map[string]*Trait, len(u.Traits)),
		TraitImpls:  make(map[string]*TraitImpl, len(u.TraitImpls)),
		Modules:     make(map[string]Module, len(u.Modules)),
		ImplMethods: make(map[string]*Function),
	}
	for _, f := range u.Functions {
		if _, dup := idx.Functions[f.Name.String()]; !dup {
			idx.Functions[f.Name.String()] = f
		}
		if f.Kind == FunTraitMethodImpl && f.Impl != nil && f.Method != nil {
			idx.ImplMethods[ImplMethodKey(*f.Impl, *f.Method)] = f
		}
	}
	for _, d := range u.Datatypes {
		if _, dup := idx.Datatypes[d.Name.String()]; !dup {
			idx.Datatypes[d.Name.String()] = d
		}
	}
	for _, t := range u.Traits {
		if _, dup := idx.Traits[t.Name.String()]; !dup {
			idx.Traits[t.Name.String()] = t
		}
	}
	for i := range u.TraitImpls {
		ti := &u.TraitImpls[i]
		if _, dup := idx.TraitImpls[ti.Impl.String()]; !dup {
			idx.TraitImpls[ti.Impl.String()] = ti
		}
	}
	for _, m := range u.Modules {
		idx.Modules[m.Path.String()] = m
	}
	return idx
}

// ImplMethodKey identifies the implementation of method decl inside impl.
func ImplMethodKey(impl, decl Path) string {
	return impl.String() + "|" + decl.String()
}

func (idx *Index) Function(p Path) (*Function, bool) {
	f, ok := idx.Functions[p.String()]
	return f, ok
}

func (idx *Index) Datatype(p Path) (*Datatype, bool) {
	d, ok := idx.Datatypes[p.String()]
	return d, ok
}

func (idx *Index) Trait(p Path) (*Trait, bool) {
	t, ok := idx.Traits[p.String()]
	return t, ok
}
