package network

import (
	"time"

	"github.com/hupe1980/evonet/agent"
)

// EchoReport aggregates the echo of every registered agent against one
// payload together with network-level resonance.
type EchoReport struct {
	EchoValue        float64            `json:"network_echo_value"`
	AgentEchoes      []agent.EchoReport `json:"agent_echoes"`
	NetworkResonance float64            `json:"network_resonance"`
	EvolutionState   NetworkSummary     `json:"evolution_state"`
	Timestamp        time.Time          `json:"timestamp"`
}

// Echo collects echoes from all agents in registration order. An agent whose
// echo fails (a memory write error) is logged and skipped; the remaining
// echoes still contribute. Network resonance is the mean resonance of the
// collected echoes.
func (n *Network) Echo(data any, echoValue float64) EchoReport {
	n.mu.RLock()
	names := append([]string(nil), n.order...)
	agents := make([]*agent.Agent, len(names))

	for i, name := range names {
		agents[i] = n.agents[name]
	}
	n.mu.RUnlock()

	echoes := make([]agent.EchoReport, 0, len(names))
	totalResonance := 0.0

	for i, a := range agents {
		report, err := a.Echo(data, echoValue)
		if err != nil {
			n.logger.Warn("agent echo failed", "agent", names[i], "error", err)
			continue
		}

		echoes = append(echoes, report)
		totalResonance += report.Resonance
	}

	resonance := 0.0
	if len(echoes) > 0 {
		resonance = totalResonance / float64(len(echoes))
	}

	return EchoReport{
		EchoValue:        echoValue,
		AgentEchoes:      echoes,
		NetworkResonance: resonance,
		EvolutionState:   n.Summary(),
		Timestamp:        n.clock.Now(),
	}
}
