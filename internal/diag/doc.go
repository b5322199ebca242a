// Package diag defines the message model shared by all pipeline stages.
//
// # Purpose
//
//   - Provide a closed set of message payloads (Message) that every stage
//     produces: structured pipeline messages (*VirMessage) and raw solver
//     messages (*SolverMessage).
//   - Offer the Diagnostics capability through which all output flows, plus
//     small in-memory implementations (BagReporter, DedupReporter, Counter).
//
// # Scope
//
// Package diag does not perform any formatting or IO. Rendering lives in
// internal/diagfmt; the driver picks the renderer and constructs exactly one
// Diagnostics value per run, passing it to every stage explicitly.
//
// # Data model
//
// VirMessage is the central record. It contains:
//
//   - Level – tri-level enum (Note, Warning, Error) defined in severity.go.
//   - Code – compact numeric identifier (see codes.go) with a stable "Vnnnn" form.
//   - Note – human oriented text; keep it short and actionable.
//   - Spans – primary locations; the last one is the canonical location.
//   - Labels – optional secondary span/note pairs.
//   - Help – optional hint.
//
// VirMessage implements error. A stage that fails returns a *VirMessage and
// callers recover it with errors.As; nothing wraps it with extra text, so the
// message reaches the user unmodified.
//
// SolverMessage carries solver-originated text verbatim. Renderers treat it
// as the distinguished "crash" kind regardless of its level.
//
// # Emitting
//
// Report uses the message's own level; ReportAs overrides it (for example
// advisories re-leveled by the driver). The *Now variants are synchronous
// in every implementation here.
package diag
