package network

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/evonet/agent"
	"github.com/hupe1980/evonet/core"
	"github.com/hupe1980/evonet/logging"
)

// DefaultCyclePause is the fixed pause inserted between evolution rounds by
// RunEvolutionAndJobs.
const DefaultCyclePause = 200 * time.Millisecond

// Options configures a Network.
type Options struct {
	// Logger receives orchestration output. Defaults to NoOpLogger.
	Logger logging.Logger

	// Clock paces the inter-round pauses and stamps reports. Defaults to the
	// real clock.
	Clock core.Clock

	// CyclePause is the pause between rounds in RunEvolutionAndJobs.
	// Defaults to DefaultCyclePause.
	CyclePause time.Duration
}

// Network manages a population of evolving agents that mutually influence
// each other, forming a self-improving ecosystem. All methods are safe for
// concurrent use, but rounds are expected to be driven by a single caller.
type Network struct {
	store   core.MemoryStore
	monitor core.ResourceMonitor
	logger  logging.Logger
	clock   core.Clock
	pause   time.Duration

	mu      sync.RWMutex
	agents  map[string]*agent.Agent
	order   []string           // registration order, for stable iteration
	emitter map[string]float64 // last published state per agent
}

// New constructs a Network around the injected store and monitor.
func New(store core.MemoryStore, mon core.ResourceMonitor, optFns ...func(o *Options)) *Network {
	opts := Options{
		Logger:     logging.NoOpLogger{},
		CyclePause: DefaultCyclePause,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Clock == nil {
		opts.Clock = core.RealClock()
	}

	return &Network{
		store:   store,
		monitor: mon,
		logger:  logging.OrNoOp(opts.Logger),
		clock:   opts.Clock,
		pause:   opts.CyclePause,
		agents:  map[string]*agent.Agent{},
		emitter: map[string]float64{},
	}
}

// AddAgent registers the agent by its unique name and seeds the emitter
// snapshot with its current state. A duplicate name is ignored with a logged
// warning; the existing registration wins.
func (n *Network) AddAgent(a *agent.Agent) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, exists := n.agents[a.Name()]; exists {
		n.logger.Warn("agent already exists in the network", "agent", a.Name())
		return
	}

	n.agents[a.Name()] = a
	n.order = append(n.order, a.Name())
	n.emitter[a.Name()] = a.State()

	n.logger.Info("added agent to the evolution network", "agent", a.Name(), "domain", a.Domain())
}

// AgentCount returns the number of registered agents.
func (n *Network) AgentCount() int {
	n.mu.RLock()
	defer n.mu.RUnlock()

	return len(n.agents)
}

// Agent returns the registered agent with the given name, or nil.
func (n *Network) Agent(name string) *agent.Agent {
	n.mu.RLock()
	defer n.mu.RUnlock()

	return n.agents[name]
}

// Constraints returns the last published state of every agent except the
// named one, in registration order.
func (n *Network) Constraints(name string) []float64 {
	n.mu.RLock()
	defer n.mu.RUnlock()

	return n.constraintsLocked(name)
}

func (n *Network) constraintsLocked(name string) []float64 {
	out := make([]float64, 0, len(n.order))

	for _, other := range n.order {
		if other == name {
			continue
		}
		out = append(out, n.emitter[other])
	}

	return out
}

// RunCycle runs a single synchronized evolution round. It ensures the
// resource monitor is running, captures one sample shared by every agent,
// evolves all agents concurrently against the round's opening emitter
// snapshot, waits for the barrier, publishes the new states and records a
// cycle to the evolution memory.
//
// Any agent error (persistence failures included) aborts the round: the
// emitter snapshot is left untouched, nothing is recorded and the first
// error is returned.
func (n *Network) RunCycle(ctx context.Context) (core.CycleRecord, error) {
	start := n.clock.Now()

	if !n.monitor.Running() {
		n.monitor.Start()
	}

	sample := n.monitor.CurrentMetrics()

	// Opening snapshot: names, agents and constraints are fixed before any
	// evolution starts.
	n.mu.RLock()
	names := append([]string(nil), n.order...)
	agents := make([]*agent.Agent, len(names))
	constraints := make([][]float64, len(names))

	for i, name := range names {
		agents[i] = n.agents[name]
		constraints[i] = n.constraintsLocked(name)
	}
	n.mu.RUnlock()

	results := make([]float64, len(names))
	errCh := make(chan error, len(names))

	var wg sync.WaitGroup

	for i := range names {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			state, err := agents[i].Evolve(ctx, constraints[i], &sample)
			if err != nil {
				errCh <- fmt.Errorf("evolution failed for agent %s: %w", names[i], err)
				return
			}

			results[i] = state
		}(i)
	}

	wg.Wait()
	close(errCh)

	if len(errCh) > 0 {
		return core.CycleRecord{}, <-errCh
	}

	// Publish the closing snapshot only after the full barrier.
	states := make(map[string]float64, len(names))

	n.mu.Lock()
	for i, name := range names {
		n.emitter[name] = results[i]
		states[name] = results[i]
	}
	n.mu.Unlock()

	record := core.CycleRecord{
		Timestamp:       n.clock.Now(),
		Duration:        n.clock.Now().Sub(start).Seconds(),
		Agents:          states,
		ResourceMetrics: sample,
	}

	if err := n.store.RecordCycle(record); err != nil {
		return core.CycleRecord{}, fmt.Errorf("record cycle: %w", err)
	}

	return record, nil
}

// JobCycleReport summarizes one concurrent job-processing round. Job cycles
// are not persisted to the evolution memory.
type JobCycleReport struct {
	ID          string          `json:"id"`
	Timestamp   time.Time       `json:"timestamp"`
	Duration    float64         `json:"duration"`
	SuccessRate float64         `json:"success_rate"`
	JobResults  map[string]bool `json:"job_results"`
}

// RunJobCycle concurrently processes one job per agent and reports the
// success fraction. Individual failures are counted by the agents
// themselves; this call never fails.
func (n *Network) RunJobCycle(ctx context.Context) JobCycleReport {
	start := n.clock.Now()

	n.mu.RLock()
	names := append([]string(nil), n.order...)
	agents := make([]*agent.Agent, len(names))

	for i, name := range names {
		agents[i] = n.agents[name]
	}
	n.mu.RUnlock()

	results := make([]bool, len(names))

	var wg sync.WaitGroup

	for i := range names {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()
			results[i] = agents[i].ProcessJob(ctx)
		}(i)
	}

	wg.Wait()

	jobResults := make(map[string]bool, len(names))
	successes := 0

	for i, name := range names {
		jobResults[name] = results[i]
		if results[i] {
			successes++
		}
	}

	successRate := 0.0
	if len(names) > 0 {
		successRate = float64(successes) / float64(len(names))
	}

	return JobCycleReport{
		ID:          uuid.NewString(),
		Timestamp:   n.clock.Now(),
		Duration:    n.clock.Now().Sub(start).Seconds(),
		SuccessRate: successRate,
		JobResults:  jobResults,
	}
}

// RunReport aggregates the outcome of RunEvolutionAndJobs.
type RunReport struct {
	ID               string               `json:"id"`
	StartTime        time.Time            `json:"start_time"`
	EndTime          time.Time            `json:"end_time"`
	TotalDuration    float64              `json:"total_duration"`
	EvolutionCycles  []core.CycleRecord   `json:"evolution_cycles"`
	JobCycles        []JobCycleReport     `json:"job_cycles"`
	AgentProgression map[string][]float64 `json:"agent_progression"`
}

// RunEvolutionAndJobs alternates evolution and job rounds for the given
// number of cycles, tracking each agent's state progression and pausing
// briefly between rounds. The resource monitor is stopped when the run
// finishes, whether it completes or aborts on an error. An aborting error
// is returned together with the partial report.
func (n *Network) RunEvolutionAndJobs(ctx context.Context, cycles int) (RunReport, error) {
	report := RunReport{
		ID:               uuid.NewString(),
		StartTime:        n.clock.Now(),
		EvolutionCycles:  []core.CycleRecord{},
		JobCycles:        []JobCycleReport{},
		AgentProgression: map[string][]float64{},
	}

	n.mu.RLock()
	for _, name := range n.order {
		report.AgentProgression[name] = []float64{}
	}
	n.mu.RUnlock()

	defer n.monitor.Stop()

	for cycle := 0; cycle < cycles; cycle++ {
		n.logger.Info("global evolution cycle", "cycle", cycle+1, "total", cycles)

		record, err := n.RunCycle(ctx)
		if err != nil {
			return report, err
		}

		report.EvolutionCycles = append(report.EvolutionCycles, record)

		for name, state := range record.Agents {
			report.AgentProgression[name] = append(report.AgentProgression[name], state)
		}

		n.logger.Info("global job cycle", "cycle", cycle+1, "total", cycles)

		report.JobCycles = append(report.JobCycles, n.RunJobCycle(ctx))

		if err := n.clock.Sleep(ctx, n.pause); err != nil {
			return report, err
		}
	}

	report.EndTime = n.clock.Now()
	report.TotalDuration = report.EndTime.Sub(report.StartTime).Seconds()

	return report, nil
}

// AgentSummary is one agent's row in a network summary.
type AgentSummary struct {
	State        float64 `json:"state"`
	Iteration    int     `json:"iteration"`
	ErrorRate    float64 `json:"error_rate"`
	PollInterval float64 `json:"poll_interval"`
}

// NetworkSummary is a point-in-time view of the network's agents.
type NetworkSummary struct {
	Timestamp    time.Time               `json:"timestamp"`
	AgentCount   int                     `json:"agent_count"`
	Agents       map[string]AgentSummary `json:"agents"`
	AverageState float64                 `json:"average_state"`
}

// Summary reads the live in-memory agent states; it never touches the
// persisted evolution memory.
func (n *Network) Summary() NetworkSummary {
	n.mu.RLock()
	defer n.mu.RUnlock()

	summary := NetworkSummary{
		Timestamp:  n.clock.Now(),
		AgentCount: len(n.agents),
		Agents:     make(map[string]AgentSummary, len(n.agents)),
	}

	total := 0.0

	for name, a := range n.agents {
		state := a.State()
		total += state

		summary.Agents[name] = AgentSummary{
			State:        state,
			Iteration:    a.Iteration(),
			ErrorRate:    a.ErrorRate(),
			PollInterval: a.PollInterval(),
		}
	}

	if len(n.agents) > 0 {
		summary.AverageState = total / float64(len(n.agents))
	}

	return summary
}

// averageEmitterState returns the mean of the last published states, or
// false when no agent is registered.
func (n *Network) averageEmitterState() (float64, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if len(n.emitter) == 0 {
		return 0, false
	}

	total := 0.0
	for _, state := range n.emitter {
		total += state
	}

	return total / float64(len(n.emitter)), true
}
