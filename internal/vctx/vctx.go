// Package vctx holds the verification contexts threaded through the
// per-bucket steps of the verifier. A GlobalCtx lives for the whole run; a
// Ctx wraps it for one bucket and hands it back with Free.
package vctx

import (
	"bytes"
	"io"

	"venir/internal/buckets"
	"venir/internal/callgraph"
	"venir/internal/diag"
	"venir/internal/ir"
	"venir/internal/solver"
	"venir/internal/sst"
)

// Config seeds a GlobalCtx.
type Config struct {
	Rlimit    float64
	Solver    solver.Solver
	InterpLog io.Writer
}

// GlobalCtx is the state shared by every bucket of a run.
type GlobalCtx struct {
	UnitName string
	// NoSpan is reported for errors that have no location of their own.
	NoSpan    ir.Span
	Rlimit    float64
	Solver    solver.Solver
	CallGraph *callgraph.Graph
	// Triggers are the automatically chosen triggers, in discovery order.
	Triggers  []sst.ChosenTrigger
	InterpLog io.Writer

	forkLog *bytes.Buffer
}

// New builds the global context for the simplified unit u.
func New(u *ir.Unit, cfg Config) *GlobalCtx {
	s := cfg.Solver
	if s == nil {
		s = solver.NewBounded()
	}
	return &GlobalCtx{
		UnitName:  u.Name,
		NoSpan:    ir.Span{AsString: "no location"},
		Rlimit:    cfg.Rlimit,
		Solver:    s,
		CallGraph: callgraph.FromUnit(u),
		InterpLog: cfg.InterpLog,
	}
}

// Budget is the step budget of one query.
func (g *GlobalCtx) Budget() uint64 { return solver.Budget(g.Rlimit) }

// Fork returns a context for concurrent use. The call graph and solver are
// shared; triggers and interpreter output are collected separately until
// Join.
func (g *GlobalCtx) Fork() *GlobalCtx {
	c := &GlobalCtx{
		UnitName:  g.UnitName,
		NoSpan:    g.NoSpan,
		Rlimit:    g.Rlimit,
		Solver:    g.Solver,
		CallGraph: g.CallGraph,
	}
	if g.InterpLog != nil {
		c.forkLog = &bytes.Buffer{}
		c.InterpLog = c.forkLog
	}
	return c
}

// Join folds what a forked context collected back into g.
func (g *GlobalCtx) Join(child *GlobalCtx) error {
	g.Triggers = append(g.Triggers, child.Triggers...)
	child.Triggers = nil
	if child.forkLog != nil && g.InterpLog != nil {
		if _, err := child.forkLog.WriteTo(g.InterpLog); err != nil {
			return err
		}
	}
	return nil
}

// Ctx is the context of one bucket.
type Ctx struct {
	Global *GlobalCtx
	Bucket *buckets.Bucket
	// Unit is the unit pruned for the bucket.
	Unit  *ir.Unit
	Index *ir.Index
}

// NewCtx takes ownership of global for the bucket b over the pruned unit u.
// Every function of the bucket must survive pruning.
func NewCtx(u *ir.Unit, b *buckets.Bucket, global *GlobalCtx) (*Ctx, error) {
	idx := ir.NewIndex(u)
	for _, name := range b.Functions {
		if _, ok := idx.Function(name); !ok {
			return nil, diag.Errorf(diag.Internal, "function %s of bucket %s was pruned away", name, b.ID.FriendlyName())
		}
	}
	return &Ctx{Global: global, Bucket: b, Unit: u, Index: idx}, nil
}

// Lower turns the bucket's functions into queries. Chosen triggers are
// recorded on the global context.
func (c *Ctx) Lower() (*sst.Lowered, error) {
	low, err := sst.LowerFunctions(c.Unit, c.Bucket.Functions, sst.Options{InterpLog: c.Global.InterpLog})
	if err != nil {
		return nil, err
	}
	c.Global.Triggers = append(c.Global.Triggers, low.Triggers...)
	return low, nil
}

// Free releases the bucket and returns the global context.
func (c *Ctx) Free() *GlobalCtx {
	g := c.Global
	c.Global = nil
	c.Unit = nil
	c.Index = nil
	return g
}
