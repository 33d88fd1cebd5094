// Package network coordinates a population of evolving agents through
// synchronized concurrent rounds.
//
// The Network registers agents, computes each agent's constraints (every
// other agent's last published state) and drives rounds in which all agents
// evolve concurrently, synchronized only by a barrier at the end of the
// round. Each round's evolutions compute from the round's opening emitter
// snapshot; new states are published only after every agent has finished, so
// no agent ever observes a half-finished round. Round N+1's constraints are
// exactly round N's closing snapshot.
//
// The memory store and resource monitor are injected at construction; the
// network never creates hidden defaults or global singletons.
package network
