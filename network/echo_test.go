package network

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/evonet/internal/testutil"
)

func TestEcho_AggregatesAgentEchoes(t *testing.T) {
	f := newFixture(t, nil)

	// "memory management" matches both keywords of B's domain and none of
	// A's, so with zero states the resonances are 0.0 and 1.0.
	f.addAgent(t, "A", "Cognitive Architecture", 0.0)
	f.addAgent(t, "B", "Memory Management", 0.0)

	report := f.net.Echo("memory management", 0.7)

	assert.Equal(t, 0.7, report.EchoValue)
	require.Len(t, report.AgentEchoes, 2)

	// Registration order is preserved.
	assert.Equal(t, "A", report.AgentEchoes[0].AgentName)
	assert.Equal(t, "B", report.AgentEchoes[1].AgentName)
	assert.InDelta(t, 0.0, report.AgentEchoes[0].Resonance, 1e-9)
	assert.InDelta(t, 1.0, report.AgentEchoes[1].Resonance, 1e-9)

	assert.InDelta(t, 0.5, report.NetworkResonance, 1e-9)
	assert.Equal(t, 2, report.EvolutionState.AgentCount)
}

func TestEcho_EmptyNetwork(t *testing.T) {
	f := newFixture(t, nil)

	report := f.net.Echo("payload", 1.0)

	assert.Empty(t, report.AgentEchoes)
	assert.Equal(t, 0.0, report.NetworkResonance)
}

func TestEcho_FailedAgentEchoIsSkipped(t *testing.T) {
	store := testutil.NewFailingStore()
	f := newFixture(t, store)

	f.addAgent(t, "A", "Cognitive Architecture", 0.0)
	f.addAgent(t, "B", "Memory Management", 0.0)

	store.FailWith(errors.New("disk full"))

	report := f.net.Echo("memory management", 0.7)

	assert.Empty(t, report.AgentEchoes)
	assert.Equal(t, 0.0, report.NetworkResonance)
	assert.Equal(t, 2, report.EvolutionState.AgentCount)
}
