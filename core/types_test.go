package core

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgentRecord_Apply(t *testing.T) {
	rec := AgentRecord{}

	rec.Apply(AgentUpdate{
		Domain:         Ptr("Memory Management"),
		State:          Ptr(0.4),
		PollInterval:   Ptr(1.0),
		ErrorThreshold: Ptr(0.1),
	})

	assert.Equal(t, "Memory Management", rec.Domain)
	assert.Equal(t, 0.4, rec.State)
	assert.Equal(t, 1.0, rec.PollInterval)

	// A partial patch leaves everything else untouched.
	rec.Apply(AgentUpdate{
		State:     Ptr(0.9),
		Iteration: Ptr(3),
		Factors:   &EvolutionFactors{Innovation: 0.2, Correction: 0.1},
		ErrorRate: Ptr(0.0),
	})

	assert.Equal(t, "Memory Management", rec.Domain)
	assert.Equal(t, 0.9, rec.State)
	assert.Equal(t, 3, rec.Iteration)
	assert.Equal(t, 1.0, rec.PollInterval)
	require.NotNil(t, rec.Factors)
	assert.Equal(t, 0.2, rec.Factors.Innovation)
}

func TestAgentSnapshot_InlineJSON(t *testing.T) {
	snap := AgentSnapshot{
		Timestamp:   time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		AgentUpdate: AgentUpdate{State: Ptr(0.5), Iteration: Ptr(2)},
	}

	raw, err := json.Marshal(snap)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	// Patch fields inline into the snapshot object.
	assert.Contains(t, decoded, "timestamp")
	assert.Equal(t, 0.5, decoded["state"])
	assert.Equal(t, float64(2), decoded["iteration"])
	assert.NotContains(t, decoded, "domain")
}

func TestMetricsEntry_ZeroReadingsSurviveRoundTrip(t *testing.T) {
	entry := NewResourceEntry(ResourceSample{})

	raw, err := json.Marshal(entry)
	require.NoError(t, err)

	var decoded MetricsEntry
	require.NoError(t, json.Unmarshal(raw, &decoded))

	require.NotNil(t, decoded.CPUUsage)
	assert.Equal(t, 0.0, *decoded.CPUUsage)
	require.NotNil(t, decoded.MemoryUsage)
	assert.Equal(t, 0.0, *decoded.MemoryUsage)
	assert.Empty(t, decoded.AgentEcho)
	assert.Nil(t, decoded.Resonance)
}

func TestNewEchoEntry(t *testing.T) {
	entry := NewEchoEntry("CognitiveAgent", 0.75, 1.2, "string")

	assert.Equal(t, "CognitiveAgent", entry.AgentEcho)
	require.NotNil(t, entry.Resonance)
	assert.Equal(t, 0.75, *entry.Resonance)
	require.NotNil(t, entry.EchoValue)
	assert.Equal(t, 1.2, *entry.EchoValue)
	assert.Equal(t, "string", entry.DataType)
	assert.Nil(t, entry.CPUUsage)
}

func TestDocument_Clone(t *testing.T) {
	doc := NewDocument()
	doc.Cycles = append(doc.Cycles, CycleRecord{Agents: map[string]float64{"A": 1}})
	doc.Agents["A"] = AgentRecord{
		State:   1,
		History: []AgentSnapshot{{AgentUpdate: AgentUpdate{State: Ptr(1.0)}}},
	}

	clone := doc.Clone()
	clone.Cycles[0].Duration = 99
	clone.Agents["A"] = AgentRecord{State: 42}

	assert.Equal(t, 0.0, doc.Cycles[0].Duration)
	assert.Equal(t, 1.0, doc.Agents["A"].State)
	assert.Len(t, doc.Agents["A"].History, 1)
}
