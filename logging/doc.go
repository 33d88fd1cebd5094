// Package logging provides a tiny abstraction over slog so downstream code
// can depend on a minimal interface (Logger) while allowing users to plug any
// structured logger. Components receive a Logger via their Options and fall
// back to NoOpLogger when none is supplied, so logging never becomes a hard
// dependency of the evolution engine.
package logging
