// Package memory contains concrete MemoryStore implementations. The store
// interface and document types reside in the core package. Import
// github.com/hupe1980/evonet/core and depend on core.MemoryStore in your
// code; select an implementation at wiring time:
//
//   - FileStore persists the full document as a single JSON file, rewriting
//     it on every mutation (the original whole-document contract).
//   - InMemoryStore keeps the document in process memory only, for tests and
//     for callers that want an explicit no-durability fallback mode.
//   - RetryStore decorates any store with bounded exponential-backoff retries
//     on mutating calls, for hosts that prefer absorbing transient write
//     failures over aborting a cycle.
//
// Rationale: keeps domain contracts centralized while allowing pluggable
// backends (append-only logs, embedded stores) to be added without
// introducing dependency cycles.
package memory
