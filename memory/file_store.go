package memory

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/hupe1980/evonet/core"
	"github.com/hupe1980/evonet/logging"
)

// DefaultFilePerm is the permission mode used when writing the memory file.
const DefaultFilePerm fs.FileMode = 0o644

// FileStoreOptions configures a FileStore.
type FileStoreOptions struct {
	// Logger receives load warnings and debug output. Defaults to NoOpLogger.
	Logger logging.Logger

	// Now supplies timestamps for last_updated, created_at and history
	// entries. Defaults to time.Now in UTC. Override in tests for
	// deterministic documents.
	Now func() time.Time
}

// FileStore is a core.MemoryStore backed by a single JSON document on disk.
//
// Every mutating call rewrites the entire document and refreshes its
// last_updated stamp; there is no partial or incremental write. The store is
// safe for concurrent use within one process, but the file itself assumes a
// single writer: two stores sharing a path will lose updates through
// interleaved whole-document rewrites.
//
// A missing or corrupt backing file is replaced with a fresh empty document
// at construction time. The replacement is logged as a warning because it can
// silently discard history; callers that need stronger guarantees should
// inspect the file before constructing the store.
type FileStore struct {
	mu     sync.Mutex
	path   string
	doc    core.Document
	logger logging.Logger
	now    func() time.Time
}

var _ core.MemoryStore = (*FileStore)(nil)

// NewFileStore loads (or creates) the document at path. An unreadable or
// unparsable file is replaced with a fresh document, which is immediately
// persisted; the error from that initial write is returned.
func NewFileStore(path string, optFns ...func(o *FileStoreOptions)) (*FileStore, error) {
	opts := FileStoreOptions{
		Logger: logging.NoOpLogger{},
		Now:    func() time.Time { return time.Now().UTC() },
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	s := &FileStore{
		path:   path,
		logger: logging.OrNoOp(opts.Logger),
		now:    opts.Now,
	}

	if err := s.load(); err != nil {
		return nil, err
	}

	return s, nil
}

// Path returns the backing file path.
func (s *FileStore) Path() string { return s.path }

// load reads the document from disk, falling back to a fresh empty document
// when the file is missing or corrupt.
func (s *FileStore) load() error {
	raw, err := os.ReadFile(s.path)
	if err == nil {
		var doc core.Document
		if jsonErr := json.Unmarshal(raw, &doc); jsonErr == nil {
			if doc.Agents == nil {
				doc.Agents = map[string]core.AgentRecord{}
			}
			s.doc = doc
			return nil
		}

		s.logger.Warn("evolution memory file is corrupt, starting fresh", "path", s.path)
	} else if errors.Is(err, fs.ErrNotExist) {
		s.logger.Warn("evolution memory file not found, starting fresh", "path", s.path)
	} else {
		return fmt.Errorf("read evolution memory %s: %w", s.path, err)
	}

	s.doc = core.NewDocument()

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.persistLocked()
}

// persistLocked rewrites the whole document. Caller must hold the mutex.
func (s *FileStore) persistLocked() error {
	s.doc.LastUpdated = s.now()

	raw, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode evolution memory: %w", err)
	}

	if err := os.WriteFile(s.path, raw, DefaultFilePerm); err != nil {
		return fmt.Errorf("write evolution memory %s: %w", s.path, err)
	}

	return nil
}

// RecordCycle appends the cycle and persists the full document.
func (s *FileStore) RecordCycle(cycle core.CycleRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc.Cycles = append(s.doc.Cycles, cycle)

	return s.persistLocked()
}

// UpdateAgent merges the patch into the named agent's record, creating it if
// absent, appends a timestamped history snapshot and persists.
func (s *FileStore) UpdateAgent(name string, patch core.AgentUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.doc.Agents[name]
	if !ok {
		rec = core.AgentRecord{CreatedAt: s.now(), History: []core.AgentSnapshot{}}
	}

	rec.History = append(rec.History, core.AgentSnapshot{Timestamp: s.now(), AgentUpdate: patch})
	rec.Apply(patch)
	s.doc.Agents[name] = rec

	return s.persistLocked()
}

// RecordSystemMetrics stamps the entry and appends it to the metrics history.
func (s *FileStore) RecordSystemMetrics(entry core.MetricsEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry.Timestamp = s.now()
	s.doc.SystemMetrics = append(s.doc.SystemMetrics, entry)

	return s.persistLocked()
}

// AgentHistory returns a copy of the named agent's history snapshots; an
// unknown agent yields an empty slice.
func (s *FileStore) AgentHistory(name string) []core.AgentSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.doc.Agents[name]
	if !ok {
		return []core.AgentSnapshot{}
	}

	return append([]core.AgentSnapshot{}, rec.History...)
}

// RecentCycles returns copies of the most recent n cycles, oldest first.
func (s *FileStore) RecentCycles(n int) []core.CycleRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return recentCycles(s.doc.Cycles, n)
}

// Document returns a deep copy of the persisted document.
func (s *FileStore) Document() core.Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.doc.Clone()
}

// recentCycles deep-copies the last n entries of cycles, oldest first.
func recentCycles(cycles []core.CycleRecord, n int) []core.CycleRecord {
	if n <= 0 || len(cycles) == 0 {
		return []core.CycleRecord{}
	}

	if n > len(cycles) {
		n = len(cycles)
	}

	out := make([]core.CycleRecord, 0, n)
	for _, c := range cycles[len(cycles)-n:] {
		out = append(out, c.Clone())
	}

	return out
}
