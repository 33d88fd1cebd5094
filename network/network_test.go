package network

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/evonet/agent"
	"github.com/hupe1980/evonet/core"
	"github.com/hupe1980/evonet/internal/testutil"
	"github.com/hupe1980/evonet/memory"
)

var idleSample = core.ResourceSample{CPUUsage: 10, MemoryUsage: 10, DiskUsage: 10}

type netFixture struct {
	store   core.MemoryStore
	monitor *testutil.FakeMonitor
	clock   *testutil.FakeClock
	net     *Network
}

func newFixture(t *testing.T, store core.MemoryStore) *netFixture {
	t.Helper()

	if store == nil {
		store = memory.NewInMemoryStore()
	}

	f := &netFixture{
		store:   store,
		monitor: testutil.NewFakeMonitor(idleSample),
		clock:   testutil.NewFakeClock(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)),
	}

	f.net = New(store, f.monitor, func(o *Options) {
		o.Clock = f.clock
	})

	return f
}

// addAgent registers a new agent sharing the fixture's store and clock.
func (f *netFixture) addAgent(t *testing.T, name, domain string, state float64, draws ...float64) *agent.Agent {
	t.Helper()

	if len(draws) == 0 {
		draws = []float64{0.5}
	}

	a, err := agent.New(name, domain, func(o *agent.Options) {
		o.InitialState = state
		o.Store = f.store
		o.Clock = f.clock
		o.Rand = testutil.NewScriptedRand(draws...)
	})
	require.NoError(t, err)

	f.net.AddAgent(a)

	return a
}

func TestAddAgent_DuplicateIsIgnored(t *testing.T) {
	f := newFixture(t, nil)

	first := f.addAgent(t, "A", "Cognitive Architecture", 0.3)

	dup, err := agent.New("A", "Memory Management", func(o *agent.Options) {
		o.Store = f.store
	})
	require.NoError(t, err)

	f.net.AddAgent(dup)

	assert.Equal(t, 1, f.net.AgentCount())
	assert.Same(t, first, f.net.Agent("A"))
}

func TestConstraints_ExcludeSelfInRegistrationOrder(t *testing.T) {
	f := newFixture(t, nil)

	f.addAgent(t, "A", "Cognitive Architecture", 0.1)
	f.addAgent(t, "B", "Memory Management", 0.2)
	f.addAgent(t, "C", "Sensory Processing", 0.3)

	assert.Equal(t, []float64{0.2, 0.3}, f.net.Constraints("A"))
	assert.Equal(t, []float64{0.1, 0.3}, f.net.Constraints("B"))
	assert.Equal(t, []float64{0.1, 0.2}, f.net.Constraints("C"))
}

func TestRunCycle_SynchronizedRound(t *testing.T) {
	f := newFixture(t, nil)

	// With the innovation draw fixed at 0.2, abundant resources and clean
	// error histories:
	//   A: 0.0 + 0.2 + mean(1.0)*0.1 + 0.2 + 0.1 = 0.6
	//   B: 1.0 + 0.2 + mean(0.0)*0.1 + 0.2 + 0.1 = 1.5
	f.addAgent(t, "A", "Cognitive Architecture", 0.0)
	f.addAgent(t, "B", "Memory Management", 1.0)

	record, err := f.net.RunCycle(context.Background())
	require.NoError(t, err)

	assert.InDelta(t, 0.6, record.Agents["A"], 1e-9)
	assert.InDelta(t, 1.5, record.Agents["B"], 1e-9)
	assert.Equal(t, idleSample, record.ResourceMetrics)

	// The next round's constraints reflect the published closing snapshot.
	assert.InDelta(t, 1.5, f.net.Constraints("A")[0], 1e-9)
	assert.InDelta(t, 0.6, f.net.Constraints("B")[0], 1e-9)

	// The round was persisted to the evolution memory.
	cycles := f.store.RecentCycles(1)
	require.Len(t, cycles, 1)
	assert.InDelta(t, 0.6, cycles[0].Agents["A"], 1e-9)
}

func TestRunCycle_StartsMonitorWhenStopped(t *testing.T) {
	f := newFixture(t, nil)
	f.addAgent(t, "A", "Cognitive Architecture", 0.0)

	_, err := f.net.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, f.monitor.Starts())

	// A running monitor is not restarted.
	_, err = f.net.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, f.monitor.Starts())
}

func TestRunCycle_PersistenceFailureAbortsRound(t *testing.T) {
	store := testutil.NewFailingStore()
	f := newFixture(t, store)

	f.addAgent(t, "A", "Cognitive Architecture", 0.0)
	f.addAgent(t, "B", "Memory Management", 1.0)

	store.FailWith(errors.New("disk full"))

	_, err := f.net.RunCycle(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "disk full")

	// The emitter snapshot is untouched, so constraints still show the
	// opening states.
	assert.Equal(t, []float64{1.0}, f.net.Constraints("A"))
	assert.Equal(t, []float64{0.0}, f.net.Constraints("B"))
}

func TestRunJobCycle_SuccessRate(t *testing.T) {
	f := newFixture(t, nil)

	// A (state 0.0): failure threshold 0.5, draw 0.9 succeeds.
	// B (state 1.0): failure threshold 0.4, draw 0.1 fails.
	f.addAgent(t, "A", "Cognitive Architecture", 0.0, 0.9)
	f.addAgent(t, "B", "Memory Management", 1.0, 0.1)

	report := f.net.RunJobCycle(context.Background())

	assert.NotEmpty(t, report.ID)
	assert.Equal(t, 0.5, report.SuccessRate)
	assert.True(t, report.JobResults["A"])
	assert.False(t, report.JobResults["B"])
}

func TestRunJobCycle_EmptyNetwork(t *testing.T) {
	f := newFixture(t, nil)

	report := f.net.RunJobCycle(context.Background())

	assert.Equal(t, 0.0, report.SuccessRate)
	assert.Empty(t, report.JobResults)
}

func TestRunEvolutionAndJobs(t *testing.T) {
	f := newFixture(t, nil)

	f.addAgent(t, "A", "Cognitive Architecture", 0.0)
	f.addAgent(t, "B", "Memory Management", 1.0)

	report, err := f.net.RunEvolutionAndJobs(context.Background(), 3)
	require.NoError(t, err)

	assert.NotEmpty(t, report.ID)
	assert.Len(t, report.EvolutionCycles, 3)
	assert.Len(t, report.JobCycles, 3)
	assert.Len(t, report.AgentProgression["A"], 3)
	assert.Len(t, report.AgentProgression["B"], 3)

	// States never regress under clean histories and abundant resources.
	prog := report.AgentProgression["A"]
	assert.Greater(t, prog[1], prog[0])
	assert.Greater(t, prog[2], prog[1])

	// The monitor is stopped exactly once when the run finishes.
	assert.Equal(t, 1, f.monitor.Stops())

	// One inter-round pause per cycle.
	pauses := 0
	for _, d := range f.clock.Sleeps() {
		if d == DefaultCyclePause {
			pauses++
		}
	}
	assert.Equal(t, 3, pauses)
}

func TestRunEvolutionAndJobs_AbortReturnsPartialReport(t *testing.T) {
	store := testutil.NewFailingStore()
	f := newFixture(t, store)

	f.addAgent(t, "A", "Cognitive Architecture", 0.0)

	// Let the first run succeed, then fail persistence.
	report, err := f.net.RunEvolutionAndJobs(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, report.EvolutionCycles, 1)

	store.FailWith(errors.New("disk full"))

	report, err = f.net.RunEvolutionAndJobs(context.Background(), 2)
	require.Error(t, err)
	assert.Empty(t, report.EvolutionCycles)

	// Stopped once per run.
	assert.Equal(t, 2, f.monitor.Stops())
}

func TestSummary(t *testing.T) {
	f := newFixture(t, nil)

	f.addAgent(t, "A", "Cognitive Architecture", 0.2)
	f.addAgent(t, "B", "Memory Management", 0.6)

	summary := f.net.Summary()

	assert.Equal(t, 2, summary.AgentCount)
	assert.InDelta(t, 0.4, summary.AverageState, 1e-9)
	assert.Equal(t, 0.2, summary.Agents["A"].State)
	assert.Equal(t, agent.DefaultPollInterval, summary.Agents["A"].PollInterval)
}

func TestSummary_EmptyNetwork(t *testing.T) {
	f := newFixture(t, nil)

	summary := f.net.Summary()

	assert.Equal(t, 0, summary.AgentCount)
	assert.Equal(t, 0.0, summary.AverageState)
}
