package memory

import (
	"sync"
	"time"

	"github.com/hupe1980/evonet/core"
)

// InMemoryStore is a volatile core.MemoryStore keeping the evolution document
// in a process local structure. It is safe for concurrent access and best
// suited for tests, demos or an explicit no-durability fallback mode. All
// reads return copies to prevent external mutation of internal state.
type InMemoryStore struct {
	mu  sync.RWMutex
	doc core.Document
	now func() time.Time
}

var _ core.MemoryStore = (*InMemoryStore)(nil)

// InMemoryStoreOptions configures an InMemoryStore.
type InMemoryStoreOptions struct {
	// Now supplies timestamps. Defaults to time.Now in UTC.
	Now func() time.Time
}

// NewInMemoryStore constructs an empty in-memory evolution memory.
func NewInMemoryStore(optFns ...func(o *InMemoryStoreOptions)) *InMemoryStore {
	opts := InMemoryStoreOptions{Now: func() time.Time { return time.Now().UTC() }}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &InMemoryStore{doc: core.NewDocument(), now: opts.Now}
}

// RecordCycle appends the cycle to the document.
func (s *InMemoryStore) RecordCycle(cycle core.CycleRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc.Cycles = append(s.doc.Cycles, cycle)
	s.doc.LastUpdated = s.now()

	return nil
}

// UpdateAgent merges the patch into the named agent's record, creating it if
// absent, and appends a timestamped history snapshot.
func (s *InMemoryStore) UpdateAgent(name string, patch core.AgentUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.doc.Agents[name]
	if !ok {
		rec = core.AgentRecord{CreatedAt: s.now(), History: []core.AgentSnapshot{}}
	}

	rec.History = append(rec.History, core.AgentSnapshot{Timestamp: s.now(), AgentUpdate: patch})
	rec.Apply(patch)
	s.doc.Agents[name] = rec
	s.doc.LastUpdated = s.now()

	return nil
}

// RecordSystemMetrics stamps the entry and appends it to the metrics history.
func (s *InMemoryStore) RecordSystemMetrics(entry core.MetricsEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry.Timestamp = s.now()
	s.doc.SystemMetrics = append(s.doc.SystemMetrics, entry)
	s.doc.LastUpdated = s.now()

	return nil
}

// AgentHistory returns a copy of the named agent's history snapshots.
func (s *InMemoryStore) AgentHistory(name string) []core.AgentSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.doc.Agents[name]
	if !ok {
		return []core.AgentSnapshot{}
	}

	return append([]core.AgentSnapshot{}, rec.History...)
}

// RecentCycles returns copies of the most recent n cycles, oldest first.
func (s *InMemoryStore) RecentCycles(n int) []core.CycleRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return recentCycles(s.doc.Cycles, n)
}

// Document returns a deep copy of the document.
func (s *InMemoryStore) Document() core.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.doc.Clone()
}
