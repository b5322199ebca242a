// Package ir defines the typed intermediate representation consumed by the
// verification pipeline.
//
// # Shape
//
// A Unit is the top-level container of one program unit (crate). The module
// tree is stored flat: every function, datatype, trait and trait impl names
// its owning module, and Unit.Modules lists the module paths. This keeps
// merging of several units a concatenation and lets pruning work on plain
// reachability.
//
// Expressions form a closed variant (Expr.Kind) with fixed operand arity per
// kind; Expr.Check enforces it right after decoding, so later passes may
// index Args directly.
//
// # Immutability
//
// Units are never mutated in place by passes. A pass clones the slices it
// rewrites (Unit.Clone, Function.Clone, Rewrite) and returns a new *Unit;
// any snapshot held by an earlier stage stays valid.
//
// # Serialisation
//
// The front end ships units as JSON (DecodeJSON). Library units use msgpack
// with the same field names; see internal/importer.
package ir
