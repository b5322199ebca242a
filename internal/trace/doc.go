// Package trace provides the tracing subsystem of the verifier.
//
// Tracing follows a run through its pipeline stages and buckets and is the
// place to look when a run is slow or a solver query hangs. It never carries
// user-facing diagnostics; those go through internal/diag.
//
// # Usage
//
//	venir --trace=- --trace-level=detail < unit.json
//
// # Tracers
//
//   - Nop: zero-overhead tracer when disabled
//   - StreamTracer: immediate write to a file or stderr (text or NDJSON)
//   - RingTracer: circular buffer dumped when the run panics
//   - MultiTracer: combines stream and ring
//
// # Levels and scopes
//
// LevelPhase shows ScopeDriver and ScopePass events (merge, validate, ...),
// LevelDetail adds ScopeBucket, LevelDebug adds ScopeQuery (single solver
// queries). LevelError only fills the ring buffer.
//
// # Context propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx = trace.WithRunID(ctx, id) // every event below carries run_id
//	ctx, span := trace.Start(ctx, trace.ScopePass, "merge")
//	defer span.End("")
//
// A Heartbeat started with StartHeartbeat ticks at ScopeDriver until its
// context ends; gaps between bucket events and heartbeats point at a stuck
// query.
package trace
