// Package core provides the foundational domain types and interfaces used by
// EvoNet. It defines the core abstractions for:
//
//   - Resource samples and the uniform system-metrics entry shape
//   - Agent records, merge patches and per-evolution history snapshots
//   - Cycle records and the persisted evolution memory document
//   - Pluggable contracts for memory stores, resource monitors, clocks and
//     randomness sources
//
// The package intentionally keeps implementation concerns (file persistence,
// host sampling, concrete agents, network orchestration) out of scope,
// exposing small interfaces so components can be injected and replaced in
// tests without real I/O, real time or real randomness.
package core
