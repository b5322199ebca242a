package buckets

import (
	"time"

	"venir/internal/diag"
	"venir/internal/ir"
)

// ID identifies a bucket: a module, or a single function split off from
// its module with spinoff_prover.
type ID struct {
	Module   ir.Path
	Function *ir.Path
}

// FriendlyName renders the ID for progress lines and log file names.
func (id ID) FriendlyName() string {
	if id.Function != nil {
		return id.Function.String()
	}
	return id.Module.String()
}

// Stats are written back by the verifier.
type Stats struct {
	TimeSMTInit time.Duration
	TimeSMTRun  time.Duration
	RlimitCount uint64
}

// Bucket is one unit of verification work.
type Bucket struct {
	ID ID
	// Functions are the functions this bucket verifies.
	Functions []ir.Path
	// Restricted is set once a function filter reduced Functions.
	Restricted bool
	Stats      Stats
}

// Get builds one bucket per module in order. A spinoff_prover function
// gets a bucket of its own right after its module's bucket and is left out
// of the module bucket.
func Get(u *ir.Unit, modules []ir.Module) []*Bucket {
	byModule := make(map[string][]*ir.Function)
	for _, f := range u.Functions {
		key := f.Owning.String()
		byModule[key] = append(byModule[key], f)
	}
	var out []*Bucket
	for _, m := range modules {
		b := &Bucket{ID: ID{Module: m.Path}}
		var spun []*Bucket
		for _, f := range byModule[m.Path.String()] {
			if f.Attrs.SpinoffProver {
				name := f.Name
				spun = append(spun, &Bucket{ID: ID{Module: m.Path, Function: &name}, Functions: []ir.Path{name}})
				continue
			}
			b.Functions = append(b.Functions, f.Name)
		}
		out = append(out, b)
		out = append(out, spun...)
	}
	return out
}

// FilterBuckets applies the function restriction. Buckets keep their ID;
// buckets without a matching function are dropped. It fails if the pattern
// matches no function at all.
func (f *UserFilter) FilterBuckets(bs []*Bucket) ([]*Bucket, error) {
	if f == nil || f.Function == "" {
		return bs, nil
	}
	var out []*Bucket
	for _, b := range bs {
		var keep []ir.Path
		for _, fn := range b.Functions {
			if matchFunction(f.Function, fn) {
				keep = append(keep, fn)
			}
		}
		if len(keep) == 0 {
			continue
		}
		c := *b
		c.Functions = keep
		c.Restricted = true
		out = append(out, &c)
	}
	if len(out) == 0 {
		return nil, diag.Errorf(diag.FilterUnknownFunction, "could not find function %s specified by --verify-function", f.Function)
	}
	return out, nil
}

// Partition is FilterModules, Get and FilterBuckets in one call.
func Partition(u *ir.Unit, current []ir.Module, f *UserFilter) ([]*Bucket, []ir.Module, error) {
	modules, err := f.FilterModules(current)
	if err != nil {
		return nil, nil, err
	}
	bs, err := f.FilterBuckets(Get(u, modules))
	if err != nil {
		return nil, nil, err
	}
	return bs, modules, nil
}
