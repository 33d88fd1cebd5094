// Package agent implements the self-evolving unit of the evolution network.
//
// Each Agent owns one domain's scalar state and advances it through Evolve,
// an atomic multi-factor transition combining unconstrained exploration,
// peer constraints, host resource pressure and self-correction from the
// agent's own error history. ProcessJob simulates work whose failure odds
// shrink as the state grows, feeding the error history that Evolve corrects
// against. Echo scores how strongly a payload resonates with the agent's
// domain without mutating evolution state.
//
// Agents never share mutable state with each other; coordination happens in
// the network package, which feeds every agent its peers' last published
// states as constraints.
package agent
