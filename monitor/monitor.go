package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/hupe1980/evonet/core"
	"github.com/hupe1980/evonet/logging"
)

const (
	// DefaultSampleInterval is the period of the background sampling loop.
	DefaultSampleInterval = 500 * time.Millisecond

	// DefaultPersistInterval is how often samples are additionally recorded
	// to the evolution memory.
	DefaultPersistInterval = 5 * time.Second

	// DefaultErrorBackoff is the pause after a failed sample before the loop
	// tries again.
	DefaultErrorBackoff = time.Second
)

// Options configures a Monitor.
type Options struct {
	// Sampler captures resource readings. Defaults to a SystemSampler.
	Sampler Sampler

	// SampleInterval is the sampling period. Defaults to DefaultSampleInterval.
	SampleInterval time.Duration

	// PersistInterval is the minimum spacing between samples persisted to the
	// memory store. Defaults to DefaultPersistInterval.
	PersistInterval time.Duration

	// ErrorBackoff is the pause after a sampling error. Defaults to
	// DefaultErrorBackoff.
	ErrorBackoff time.Duration

	// Logger receives lifecycle and error output. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Monitor runs one background goroutine that samples host resources,
// publishes the newest reading and periodically persists samples to the
// evolution memory.
//
// Sampling errors are logged and followed by a short backoff; the loop never
// terminates on error. Stop signals the loop and blocks until the goroutine
// exits, with no timeout.
type Monitor struct {
	sampler         Sampler
	store           core.MemoryStore
	logger          logging.Logger
	sampleInterval  time.Duration
	persistInterval time.Duration
	errorBackoff    time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}

	latestMu  sync.Mutex
	latest    core.ResourceSample
	published bool
}

var _ core.ResourceMonitor = (*Monitor)(nil)

// New constructs a Monitor persisting periodic samples to store.
func New(store core.MemoryStore, optFns ...func(o *Options)) *Monitor {
	opts := Options{
		SampleInterval:  DefaultSampleInterval,
		PersistInterval: DefaultPersistInterval,
		ErrorBackoff:    DefaultErrorBackoff,
		Logger:          logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Sampler == nil {
		opts.Sampler = NewSystemSampler()
	}

	return &Monitor{
		sampler:         opts.Sampler,
		store:           store,
		logger:          logging.OrNoOp(opts.Logger),
		sampleInterval:  opts.SampleInterval,
		persistInterval: opts.PersistInterval,
		errorBackoff:    opts.ErrorBackoff,
	}
}

// Start spawns the sampling goroutine. Calling Start while the monitor is
// already running logs a warning and does nothing.
func (m *Monitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		m.logger.Warn("resource monitor is already running")
		return
	}

	m.stopCh = make(chan struct{})
	m.doneCh = make(chan struct{})
	m.running = true

	go m.loop(m.stopCh, m.doneCh)

	m.logger.Info("resource monitoring started")
}

// Stop signals the sampling loop and blocks until the goroutine exits.
// Calling Stop while the monitor is not running logs a warning and does
// nothing.
func (m *Monitor) Stop() {
	m.mu.Lock()

	if !m.running {
		m.mu.Unlock()
		m.logger.Warn("resource monitor is not running")

		return
	}

	stopCh, doneCh := m.stopCh, m.doneCh
	m.running = false
	m.mu.Unlock()

	close(stopCh)
	<-doneCh

	m.logger.Info("resource monitoring stopped")
}

// Running reports whether the sampling goroutine is active.
func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.running
}

// CurrentMetrics returns the latest published sample, or a zero-valued
// sample when nothing has been published yet.
func (m *Monitor) CurrentMetrics() core.ResourceSample {
	m.latestMu.Lock()
	defer m.latestMu.Unlock()

	if !m.published {
		return core.ResourceSample{}
	}

	return m.latest
}

// loop is the background sampling goroutine.
func (m *Monitor) loop(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	lastPersist := time.Now()

	for {
		sample, err := m.sampler.Sample(context.Background())
		if err != nil {
			m.logger.Error("resource sampling failed", "error", err)

			if !m.pause(stopCh, m.errorBackoff) {
				return
			}

			continue
		}

		m.publish(sample)

		if time.Since(lastPersist) >= m.persistInterval {
			if err := m.store.RecordSystemMetrics(core.NewResourceEntry(sample)); err != nil {
				m.logger.Error("recording system metrics failed", "error", err)
			} else {
				lastPersist = time.Now()
			}
		}

		if !m.pause(stopCh, m.sampleInterval) {
			return
		}
	}
}

// publish replaces the latest-value cell with the newest sample.
func (m *Monitor) publish(sample core.ResourceSample) {
	m.latestMu.Lock()
	defer m.latestMu.Unlock()

	m.latest = sample
	m.published = true
}

// pause waits for d or a stop signal; it returns false when stopping.
func (m *Monitor) pause(stopCh <-chan struct{}, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-stopCh:
		return false
	case <-t.C:
		return true
	}
}
