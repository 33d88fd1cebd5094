package agent

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/hupe1980/evonet/core"
	"github.com/hupe1980/evonet/logging"
	"github.com/hupe1980/evonet/memory"
)

const (
	// DefaultPollInterval is the initial cooperative pause, in seconds, at
	// the end of every Evolve and ProcessJob call.
	DefaultPollInterval = 1.0

	// MinPollInterval is the floor the poll interval can shrink to.
	MinPollInterval = 0.1

	// DefaultErrorThreshold is the error rate above which the agent switches
	// from reward to correction.
	DefaultErrorThreshold = 0.1
)

// Innovation term bounds for the unconstrained exploration draw.
const (
	innovationMin = -0.1
	innovationMax = 0.5
)

// Options configures an Agent.
type Options struct {
	// InitialState seeds the agent's scalar state. Defaults to 0.
	InitialState float64

	// PollInterval is the initial cooperative pause in seconds. Defaults to
	// DefaultPollInterval.
	PollInterval float64

	// ErrorThreshold is the error rate tipping point. Defaults to
	// DefaultErrorThreshold.
	ErrorThreshold float64

	// Store receives the agent's audit trail. Defaults to a fresh in-memory
	// store; inject a shared store so all agents write one document.
	Store core.MemoryStore

	// Logger receives per-evolution output. Defaults to NoOpLogger.
	Logger logging.Logger

	// Clock paces the agent's cooperative sleeps. Defaults to the real clock.
	Clock core.Clock

	// Rand drives the innovation and job-failure draws. Defaults to the
	// shared math/rand generator; inject a scripted source for determinism.
	Rand core.Rand
}

// Agent is a self-evolving unit with a scalar state and a labeled domain.
// All exported methods are safe for concurrent use, though within a round
// the network invokes Evolve exactly once per agent.
type Agent struct {
	name           string
	domain         string
	store          core.MemoryStore
	logger         logging.Logger
	clock          core.Clock
	rand           core.Rand
	errorThreshold float64

	mu           sync.Mutex // protects the evolving counters below
	state        float64
	iteration    int
	errorCount   int
	jobCount     int
	pollInterval float64 // seconds
}

// New constructs an Agent and registers it in the evolution memory, writing
// its domain, initial state, poll interval and error threshold. The
// registration write can fail, so construction returns an error.
func New(name, domain string, optFns ...func(o *Options)) (*Agent, error) {
	opts := Options{
		PollInterval:   DefaultPollInterval,
		ErrorThreshold: DefaultErrorThreshold,
		Logger:         logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Store == nil {
		opts.Store = memory.NewInMemoryStore()
	}

	if opts.Clock == nil {
		opts.Clock = core.RealClock()
	}

	if opts.Rand == nil {
		opts.Rand = core.DefaultRand()
	}

	if opts.PollInterval < MinPollInterval {
		opts.PollInterval = MinPollInterval
	}

	a := &Agent{
		name:           name,
		domain:         domain,
		store:          opts.Store,
		logger:         logging.OrNoOp(opts.Logger),
		clock:          opts.Clock,
		rand:           opts.Rand,
		errorThreshold: opts.ErrorThreshold,
		state:          opts.InitialState,
		pollInterval:   opts.PollInterval,
	}

	err := a.store.UpdateAgent(name, core.AgentUpdate{
		Domain:         core.Ptr(domain),
		State:          core.Ptr(opts.InitialState),
		PollInterval:   core.Ptr(opts.PollInterval),
		ErrorThreshold: core.Ptr(opts.ErrorThreshold),
	})
	if err != nil {
		return nil, fmt.Errorf("register agent %s: %w", name, err)
	}

	return a, nil
}

// Name returns the agent's unique name.
func (a *Agent) Name() string { return a.name }

// Domain returns the agent's domain label.
func (a *Agent) Domain() string { return a.domain }

// State returns the agent's current scalar state.
func (a *Agent) State() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.state
}

// Iteration returns how many evolutions the agent has completed.
func (a *Agent) Iteration() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.iteration
}

// ErrorCount returns how many jobs have failed so far.
func (a *Agent) ErrorCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.errorCount
}

// JobCount returns how many jobs the agent has been credited with.
func (a *Agent) JobCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.jobCount
}

// ErrorRate returns errorCount / (jobCount + 1).
func (a *Agent) ErrorRate() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.errorRateLocked()
}

// PollInterval returns the agent's current cooperative pause in seconds.
func (a *Agent) PollInterval() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.pollInterval
}

func (a *Agent) errorRateLocked() float64 {
	return float64(a.errorCount) / float64(a.jobCount+1)
}

// Evolve advances the agent's state by one multi-factor step:
//
//  1. innovation: a uniform draw in [-0.1, 0.5), unconstrained exploration
//  2. constraint: the mean of the peers' published states, weighted by 0.1,
//     pulling the agent toward the network average
//  3. resource: -0.2 under host load (cpu or memory above 80%), +0.2 when
//     resources are abundant (cpu below 30% and memory below 50%), else 0
//  4. correction: -0.2 when the error rate exceeds the threshold, else +0.1
//
// The new state is floored at zero. Side effects: the iteration and job
// counters advance, an audit snapshot with all four factors is persisted,
// and the poll interval adapts to the error rate (+0.1 over threshold,
// -0.05 under, floored at MinPollInterval) and is persisted as well. The
// call finishes by sleeping for the poll interval, the agent's only yield
// point. Persistence failures abort the call and propagate.
func (a *Agent) Evolve(ctx context.Context, constraints []float64, sample *core.ResourceSample) (float64, error) {
	innovation := innovationMin + a.rand.Float64()*(innovationMax-innovationMin)

	constraintFactor := 0.0
	if len(constraints) > 0 {
		sum := 0.0
		for _, c := range constraints {
			sum += c
		}
		constraintFactor = sum / float64(len(constraints))
	}

	resourceFactor := 0.0
	if sample != nil {
		switch {
		case sample.CPUUsage > 80 || sample.MemoryUsage > 80:
			resourceFactor = -0.2
		case sample.CPUUsage < 30 && sample.MemoryUsage < 50:
			resourceFactor = 0.2
		}
	}

	a.mu.Lock()

	errorRate := a.errorRateLocked()

	correctionFactor := 0.1
	if errorRate > a.errorThreshold {
		correctionFactor = -0.2
	}

	previous := a.state
	a.state = math.Max(0, a.state+innovation+constraintFactor*0.1+resourceFactor+correctionFactor)
	a.iteration++
	a.jobCount++

	if errorRate > a.errorThreshold {
		a.pollInterval += 0.1
	} else {
		a.pollInterval = math.Max(MinPollInterval, a.pollInterval-0.05)
	}

	state := a.state
	iteration := a.iteration
	errorCount := a.errorCount
	jobCount := a.jobCount
	poll := a.pollInterval

	a.mu.Unlock()

	a.logger.Info("agent evolved",
		"agent", a.name,
		"cycle", iteration,
		"state", state,
		"previous", previous,
		"change", state-previous,
	)
	a.logger.Debug("evolution factors",
		"agent", a.name,
		"innovation", innovation,
		"constraint", constraintFactor,
		"resource", resourceFactor,
		"correction", correctionFactor,
	)

	err := a.store.UpdateAgent(a.name, core.AgentUpdate{
		State:      core.Ptr(state),
		Iteration:  core.Ptr(iteration),
		ErrorCount: core.Ptr(errorCount),
		JobCount:   core.Ptr(jobCount),
		Factors: &core.EvolutionFactors{
			Innovation: innovation,
			Constraint: constraintFactor,
			Resource:   resourceFactor,
			Correction: correctionFactor,
		},
		ErrorRate: core.Ptr(errorRate),
	})
	if err != nil {
		return state, fmt.Errorf("record evolution of agent %s: %w", a.name, err)
	}

	if err := a.store.UpdateAgent(a.name, core.AgentUpdate{PollInterval: core.Ptr(poll)}); err != nil {
		return state, fmt.Errorf("record poll interval of agent %s: %w", a.name, err)
	}

	if err := a.clock.Sleep(ctx, secondsToDuration(poll)); err != nil {
		return state, err
	}

	return state, nil
}

// ProcessJob simulates one unit of work. The failure threshold shrinks as
// the state grows, max(0.05, 0.5 - state*0.1), so more evolved agents fail
// less often. A failed draw (or an interrupted sleep) increments the error
// count. ProcessJob never returns an error; failures are reported as false.
func (a *Agent) ProcessJob(ctx context.Context) bool {
	a.mu.Lock()
	state := a.state
	poll := a.pollInterval
	a.mu.Unlock()

	if err := a.clock.Sleep(ctx, secondsToDuration(poll)); err != nil {
		a.recordFailure()
		a.logger.Error("job interrupted", "agent", a.name, "error", err)

		return false
	}

	failureThreshold := math.Max(0.05, 0.5-state*0.1)

	if a.rand.Float64() < failureThreshold {
		errors, jobs := a.recordFailure()
		a.logger.Warn("job failed", "agent", a.name, "errors", errors, "jobs", jobs+1)

		return false
	}

	a.logger.Debug("job completed", "agent", a.name)

	return true
}

func (a *Agent) recordFailure() (errors, jobs int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.errorCount++

	return a.errorCount, a.jobCount
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
