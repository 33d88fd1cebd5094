package core

// MemoryStore is the persistence contract for evolution memory. Implementations
// must be safe for concurrent use; the document itself follows a single-writer
// convention (one store instance per process for a given backing file).
//
// Every mutating call persists the full document. Write errors are returned to
// the caller and abort the in-flight operation; they are never swallowed.
type MemoryStore interface {
	// RecordCycle appends a completed evolution round to the cycle history.
	RecordCycle(cycle CycleRecord) error

	// UpdateAgent merges the patch into the named agent's record, creating the
	// record (and stamping its creation time) if it does not exist, and appends
	// a timestamped snapshot of the patch to the agent's history.
	UpdateAgent(name string, patch AgentUpdate) error

	// RecordSystemMetrics stamps the entry's timestamp and appends it to the
	// system metrics history.
	RecordSystemMetrics(entry MetricsEntry) error

	// AgentHistory returns a copy of the named agent's history snapshots.
	// Unknown agents yield an empty slice, not an error.
	AgentHistory(name string) []AgentSnapshot

	// RecentCycles returns copies of the most recent n cycle records, oldest
	// first. Fewer (or zero) records are returned when the history is short.
	RecentCycles(n int) []CycleRecord

	// Document returns a deep copy of the full persisted document.
	Document() Document
}

// ResourceMonitor publishes the most recent host resource sample. Start and
// Stop manage the background sampling loop; both are no-ops (with a logged
// warning) when called in the wrong state.
type ResourceMonitor interface {
	Start()
	Stop()
	Running() bool

	// CurrentMetrics returns the latest published sample, or a zero-valued
	// sample when nothing has been published yet.
	CurrentMetrics() ResourceSample
}
