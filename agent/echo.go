package agent

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/hupe1980/evonet/core"
)

// EchoMetadata carries derived quality metrics attached to an echo report.
type EchoMetadata struct {
	// ProcessingQuality is the agent state clamped to [0, 1].
	ProcessingQuality float64 `json:"processing_quality"`

	// AgentMaturity normalizes the iteration count against a nominal
	// lifetime of 100 evolutions.
	AgentMaturity float64 `json:"agent_maturity"`

	// DomainExpertise is resonance weighted by the applied echo value.
	DomainExpertise float64 `json:"domain_expertise"`
}

// EchoReport is the agent's perspective on a payload: how strongly it
// resonates with the agent's domain, plus the agent's current evolutionary
// standing.
type EchoReport struct {
	OriginalData any          `json:"original_data"`
	AgentName    string       `json:"agent_name"`
	AgentDomain  string       `json:"agent_domain"`
	EchoValue    float64      `json:"echo_value"`
	Resonance    float64      `json:"resonance"`
	AgentState   float64      `json:"agent_state"`
	Iteration    int          `json:"iteration"`
	ErrorRate    float64      `json:"error_rate"`
	PollInterval float64      `json:"poll_interval"`
	Timestamp    time.Time    `json:"timestamp"`
	Metadata     EchoMetadata `json:"echo_metadata"`
}

// Echo scores the payload against the agent's domain and returns a report
// with the agent's current state attached. When no explicit echoValue is
// given the agent's state is applied. One echo metrics entry is recorded to
// the evolution memory as a side effect; otherwise the call is read-only.
func (a *Agent) Echo(data any, echoValue ...float64) (EchoReport, error) {
	a.mu.Lock()
	state := a.state
	iteration := a.iteration
	errorRate := a.errorRateLocked()
	poll := a.pollInterval
	a.mu.Unlock()

	value := state
	if len(echoValue) > 0 {
		value = echoValue[0]
	}

	resonance := a.resonance(data, state)

	report := EchoReport{
		OriginalData: data,
		AgentName:    a.name,
		AgentDomain:  a.domain,
		EchoValue:    value,
		Resonance:    resonance,
		AgentState:   state,
		Iteration:    iteration,
		ErrorRate:    errorRate,
		PollInterval: poll,
		Timestamp:    a.clock.Now(),
		Metadata: EchoMetadata{
			ProcessingQuality: clamp01(state),
			AgentMaturity:     float64(iteration) / 100.0,
			DomainExpertise:   resonance * value,
		},
	}

	entry := core.NewEchoEntry(a.name, resonance, value, fmt.Sprintf("%T", data))
	if err := a.store.RecordSystemMetrics(entry); err != nil {
		return report, fmt.Errorf("record echo of agent %s: %w", a.name, err)
	}

	return report, nil
}

// resonance measures how well the payload matches the agent's domain: the
// fraction of domain keywords found (case-insensitively) in the stringified
// payload, boosted by up to 20% of the agent's state and clamped to [0, 1].
// A domain without keywords yields a moderate base of 0.5.
func (a *Agent) resonance(data any, state float64) float64 {
	if data == nil {
		return 0.0
	}

	dataStr := strings.ToLower(fmt.Sprint(data))
	if dataStr == "" {
		return 0.0
	}

	keywords := strings.Fields(strings.ToLower(a.domain))

	base := 0.5
	if len(keywords) > 0 {
		matches := 0
		for _, kw := range keywords {
			if strings.Contains(dataStr, kw) {
				matches++
			}
		}
		base = float64(matches) / float64(len(keywords))
	}

	return math.Min(1.0, base+state*0.2)
}

func clamp01(v float64) float64 {
	return math.Min(1.0, math.Max(0.0, v))
}
