// Package testutil contains deterministic stand-ins used across tests:
// a fake clock that advances instead of sleeping, a scripted randomness
// source, a static resource sampler, a fake monitor and a store that fails
// on demand. These helpers keep rounds fully deterministic with zero real
// delay. They are not intended for production usage.
package testutil
