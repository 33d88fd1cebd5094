package memory

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/hupe1980/evonet/core"
	"github.com/hupe1980/evonet/logging"
)

// RetryStoreOptions configures a RetryStore.
type RetryStoreOptions struct {
	// MaxTries bounds the attempts per mutating call (initial try included).
	MaxTries uint

	// InitialInterval seeds the exponential backoff between attempts.
	InitialInterval time.Duration

	// Logger receives a warning per failed attempt. Defaults to NoOpLogger.
	Logger logging.Logger
}

// RetryStore decorates a core.MemoryStore with bounded exponential-backoff
// retries on mutating calls. Transient write failures (a busy disk, a brief
// permission hiccup) are absorbed instead of aborting the in-flight cycle;
// once the attempt budget is exhausted the last error is returned unchanged.
// Read methods pass through untouched.
type RetryStore struct {
	inner           core.MemoryStore
	maxTries        uint
	initialInterval time.Duration
	logger          logging.Logger
}

var _ core.MemoryStore = (*RetryStore)(nil)

// NewRetryStore wraps inner with retrying mutation semantics.
func NewRetryStore(inner core.MemoryStore, optFns ...func(o *RetryStoreOptions)) *RetryStore {
	opts := RetryStoreOptions{
		MaxTries:        3,
		InitialInterval: 100 * time.Millisecond,
		Logger:          logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &RetryStore{
		inner:           inner,
		maxTries:        opts.MaxTries,
		initialInterval: opts.InitialInterval,
		logger:          logging.OrNoOp(opts.Logger),
	}
}

func (s *RetryStore) retry(op string, fn func() error) error {
	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = s.initialInterval

	_, err := backoff.Retry(context.Background(), func() (struct{}, error) {
		if err := fn(); err != nil {
			s.logger.Warn("evolution memory write failed, retrying", "operation", op, "error", err)
			return struct{}{}, err
		}
		return struct{}{}, nil
	}, backoff.WithBackOff(expo), backoff.WithMaxTries(s.maxTries))

	return err
}

// RecordCycle retries the wrapped RecordCycle.
func (s *RetryStore) RecordCycle(cycle core.CycleRecord) error {
	return s.retry("record_cycle", func() error { return s.inner.RecordCycle(cycle) })
}

// UpdateAgent retries the wrapped UpdateAgent.
func (s *RetryStore) UpdateAgent(name string, patch core.AgentUpdate) error {
	return s.retry("update_agent", func() error { return s.inner.UpdateAgent(name, patch) })
}

// RecordSystemMetrics retries the wrapped RecordSystemMetrics.
func (s *RetryStore) RecordSystemMetrics(entry core.MetricsEntry) error {
	return s.retry("record_system_metrics", func() error { return s.inner.RecordSystemMetrics(entry) })
}

// AgentHistory passes through to the wrapped store.
func (s *RetryStore) AgentHistory(name string) []core.AgentSnapshot {
	return s.inner.AgentHistory(name)
}

// RecentCycles passes through to the wrapped store.
func (s *RetryStore) RecentCycles(n int) []core.CycleRecord {
	return s.inner.RecentCycles(n)
}

// Document passes through to the wrapped store.
func (s *RetryStore) Document() core.Document {
	return s.inner.Document()
}
