package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/hupe1980/evonet/core"
	"github.com/hupe1980/evonet/memory"
)

// FakeClock advances its internal time instead of sleeping, so paced code
// runs instantly and deterministically.
type FakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

var _ core.Clock = (*FakeClock)(nil)

// NewFakeClock starts a fake clock at the given instant.
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

// Now returns the fake current time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

// Sleep records the requested duration, advances the fake time and returns
// immediately. Context cancellation is still honored.
func (c *FakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
	c.sleeps = append(c.sleeps, d)

	return nil
}

// Sleeps returns a copy of all recorded sleep durations in order.
func (c *FakeClock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]time.Duration(nil), c.sleeps...)
}

// ScriptedRand replays a fixed sequence of draws, repeating the last value
// once the script is exhausted. Safe for concurrent use.
type ScriptedRand struct {
	mu     sync.Mutex
	values []float64
	index  int
}

var _ core.Rand = (*ScriptedRand)(nil)

// NewScriptedRand builds a randomness source replaying values in order.
func NewScriptedRand(values ...float64) *ScriptedRand {
	if len(values) == 0 {
		values = []float64{0.5}
	}

	return &ScriptedRand{values: values}
}

// Float64 returns the next scripted draw.
func (r *ScriptedRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	v := r.values[r.index]
	if r.index < len(r.values)-1 {
		r.index++
	}

	return v
}

// StaticSampler returns a fixed sample (or error) on every call.
type StaticSampler struct {
	mu     sync.Mutex
	sample core.ResourceSample
	err    error
	calls  int
}

// NewStaticSampler builds a sampler always returning sample.
func NewStaticSampler(sample core.ResourceSample) *StaticSampler {
	return &StaticSampler{sample: sample}
}

// SetError makes subsequent Sample calls fail with err; nil restores success.
func (s *StaticSampler) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.err = err
}

// Sample returns the fixed sample or the armed error.
func (s *StaticSampler) Sample(context.Context) (core.ResourceSample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++

	if s.err != nil {
		return core.ResourceSample{}, s.err
	}

	return s.sample, nil
}

// Calls returns how many times Sample was invoked.
func (s *StaticSampler) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.calls
}

// FakeMonitor is a core.ResourceMonitor serving a fixed sample without any
// background goroutine.
type FakeMonitor struct {
	mu      sync.Mutex
	sample  core.ResourceSample
	running bool
	starts  int
	stops   int
}

var _ core.ResourceMonitor = (*FakeMonitor)(nil)

// NewFakeMonitor builds a monitor that always reports sample.
func NewFakeMonitor(sample core.ResourceSample) *FakeMonitor {
	return &FakeMonitor{sample: sample}
}

// Start marks the monitor as running.
func (m *FakeMonitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.running = true
	m.starts++
}

// Stop marks the monitor as stopped.
func (m *FakeMonitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.running = false
	m.stops++
}

// Running reports the fake running flag.
func (m *FakeMonitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.running
}

// CurrentMetrics returns the fixed sample.
func (m *FakeMonitor) CurrentMetrics() core.ResourceSample {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.sample
}

// Starts returns how often Start was called.
func (m *FakeMonitor) Starts() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.starts
}

// Stops returns how often Stop was called.
func (m *FakeMonitor) Stops() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.stops
}

// FailingStore wraps an in-memory store and fails mutating calls while
// armed. FailWith arms it permanently; FailTimes arms it for the next n
// calls only, which lets retry decorators be tested deterministically.
type FailingStore struct {
	*memory.InMemoryStore

	mu        sync.Mutex
	err       error
	remaining int // failing calls left; -1 means unlimited
	attempts  int
}

var _ core.MemoryStore = (*FailingStore)(nil)

// NewFailingStore builds a store that succeeds until armed.
func NewFailingStore() *FailingStore {
	return &FailingStore{InMemoryStore: memory.NewInMemoryStore()}
}

// FailWith arms the store: every subsequent mutating call returns err. Pass
// nil to disarm.
func (s *FailingStore) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.err = err
	s.remaining = -1
}

// FailTimes arms the store for the next n mutating calls.
func (s *FailingStore) FailTimes(n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.err = err
	s.remaining = n
}

// Attempts returns how many mutating calls have been made.
func (s *FailingStore) Attempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.attempts
}

func (s *FailingStore) armed() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.attempts++

	if s.err == nil || s.remaining == 0 {
		return nil
	}

	if s.remaining > 0 {
		s.remaining--
	}

	return s.err
}

// RecordCycle fails when armed, otherwise delegates.
func (s *FailingStore) RecordCycle(cycle core.CycleRecord) error {
	if err := s.armed(); err != nil {
		return err
	}

	return s.InMemoryStore.RecordCycle(cycle)
}

// UpdateAgent fails when armed, otherwise delegates.
func (s *FailingStore) UpdateAgent(name string, patch core.AgentUpdate) error {
	if err := s.armed(); err != nil {
		return err
	}

	return s.InMemoryStore.UpdateAgent(name, patch)
}

// RecordSystemMetrics fails when armed, otherwise delegates.
func (s *FailingStore) RecordSystemMetrics(entry core.MetricsEntry) error {
	if err := s.armed(); err != nil {
		return err
	}

	return s.InMemoryStore.RecordSystemMetrics(entry)
}
