// Package evonet provides a high-level façade over the evolution network and
// its service abstractions (evolution memory, resource monitoring & logging)
// enabling rapid construction of self-evolving agent populations. Most
// applications interact with this package by:
//  1. Creating an EvoNet via New() (optionally overriding the default
//     file-backed memory, monitor or logger)
//  2. Registering one or more domain agents (AddAgent / AddDefaultAgents)
//  3. Driving synchronized rounds (RunCycle, RunEvolutionAndJobs) and reading
//     results back (Summary, Echo, Memory)
//
// The façade delegates orchestration to network.Network while keeping setup
// and usage ergonomics concise. All defaults are safe for local development
// and testing; production deployments typically supply a durable store path
// and a structured logger.
package evonet

import (
	"context"
	"time"

	"github.com/hupe1980/evonet/agent"
	"github.com/hupe1980/evonet/core"
	"github.com/hupe1980/evonet/logging"
	"github.com/hupe1980/evonet/memory"
	"github.com/hupe1980/evonet/monitor"
	"github.com/hupe1980/evonet/network"
)

// DefaultMemoryPath is the default location of the file-backed evolution
// memory document.
const DefaultMemoryPath = "evolution_memory.json"

// AgentDomain pairs an agent name with the conceptual domain it evolves.
type AgentDomain struct {
	Name   string
	Domain string
}

// DefaultAgentDomains are the canonical subsystem domains of the host
// cognitive architecture.
var DefaultAgentDomains = []AgentDomain{
	{Name: "CognitiveAgent", Domain: "Cognitive Architecture"},
	{Name: "MemoryAgent", Domain: "Memory Management"},
	{Name: "SensoryAgent", Domain: "Sensory Processing"},
	{Name: "IntegrationAgent", Domain: "System Integration"},
}

// Options configures the EvoNet instance.
type Options struct {
	// MemoryPath locates the file-backed evolution memory. Ignored when
	// Memory is set. Defaults to DefaultMemoryPath.
	MemoryPath string

	// Memory overrides the evolution memory store.
	Memory core.MemoryStore

	// Monitor overrides the resource monitor.
	Monitor core.ResourceMonitor

	// CyclePause is the pause between evolution rounds. Defaults to
	// network.DefaultCyclePause.
	CyclePause time.Duration

	// Logger (defaults to NoOp logger if nil).
	Logger logging.Logger

	// Clock paces all cooperative sleeps (defaults to the real clock).
	Clock core.Clock

	// Rand drives all agent randomness (defaults to math/rand).
	Rand core.Rand
}

// EvoNet is the high-level façade aggregating the evolution memory, resource
// monitor and agent network.
type EvoNet struct {
	opts    Options
	memory  core.MemoryStore
	monitor core.ResourceMonitor
	network *network.Network
}

// New creates a new EvoNet instance with optional overrides. Any unset
// service is initialized with its default implementation: a file-backed
// memory at MemoryPath and a gopsutil-backed resource monitor.
func New(optFns ...func(o *Options)) (*EvoNet, error) {
	opts := Options{
		MemoryPath: DefaultMemoryPath,
		CyclePause: network.DefaultCyclePause,
		Logger:     logging.NoOpLogger{},
		Clock:      core.RealClock(),
		Rand:       core.DefaultRand(),
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	opts.Logger = logging.OrNoOp(opts.Logger)

	if opts.Clock == nil {
		opts.Clock = core.RealClock()
	}

	if opts.Rand == nil {
		opts.Rand = core.DefaultRand()
	}

	mem := opts.Memory
	if mem == nil {
		store, err := memory.NewFileStore(opts.MemoryPath, func(o *memory.FileStoreOptions) {
			o.Logger = opts.Logger
		})
		if err != nil {
			return nil, err
		}

		mem = store
	}

	mon := opts.Monitor
	if mon == nil {
		mon = monitor.New(mem, func(o *monitor.Options) {
			o.Logger = opts.Logger
		})
	}

	net := network.New(mem, mon, func(o *network.Options) {
		o.Logger = opts.Logger
		o.Clock = opts.Clock
		o.CyclePause = opts.CyclePause
	})

	return &EvoNet{opts: opts, memory: mem, monitor: mon, network: net}, nil
}

// AddAgent creates an agent wired to the shared memory, logger, clock and
// randomness source, registers it with the network and returns it.
func (e *EvoNet) AddAgent(name, domain string, initialState float64) (*agent.Agent, error) {
	a, err := agent.New(name, domain, func(o *agent.Options) {
		o.InitialState = initialState
		o.Store = e.memory
		o.Logger = e.opts.Logger
		o.Clock = e.opts.Clock
		o.Rand = e.opts.Rand
	})
	if err != nil {
		return nil, err
	}

	e.network.AddAgent(a)

	return a, nil
}

// AddDefaultAgents registers the canonical subsystem agents, each seeded
// with a random initial state in [0, 1).
func (e *EvoNet) AddDefaultAgents() error {
	for _, d := range DefaultAgentDomains {
		if _, err := e.AddAgent(d.Name, d.Domain, e.opts.Rand.Float64()); err != nil {
			return err
		}
	}

	return nil
}

// RunCycle runs a single synchronized evolution round.
func (e *EvoNet) RunCycle(ctx context.Context) (core.CycleRecord, error) {
	return e.network.RunCycle(ctx)
}

// RunEvolutionAndJobs alternates evolution and job rounds for the given
// number of cycles.
func (e *EvoNet) RunEvolutionAndJobs(ctx context.Context, cycles int) (network.RunReport, error) {
	return e.network.RunEvolutionAndJobs(ctx, cycles)
}

// Summary returns a point-in-time view of the network's agents.
func (e *EvoNet) Summary() network.NetworkSummary {
	return e.network.Summary()
}

// Echo collects every agent's echo of the payload.
func (e *EvoNet) Echo(data any, echoValue float64) network.EchoReport {
	return e.network.Echo(data, echoValue)
}

// ModifyEnvironment applies the collective-state cron heuristic to an
// external YAML workflow file.
func (e *EvoNet) ModifyEnvironment(workflowFile string) (bool, error) {
	return e.network.ModifyEnvironment(workflowFile)
}

// Network exposes the underlying orchestrator.
func (e *EvoNet) Network() *network.Network { return e.network }

// Memory exposes the evolution memory store.
func (e *EvoNet) Memory() core.MemoryStore { return e.memory }

// Monitor exposes the resource monitor.
func (e *EvoNet) Monitor() core.ResourceMonitor { return e.monitor }
