package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/evonet/core"
)

// Interface compliance (compile-time assertions)
var (
	_ core.MemoryStore = (*InMemoryStore)(nil)
	_ core.MemoryStore = (*FileStore)(nil)
	_ core.MemoryStore = (*RetryStore)(nil)
)

func TestInMemoryStore_DocumentIsACopy(t *testing.T) {
	s := NewInMemoryStore()
	require.NoError(t, s.RecordCycle(core.CycleRecord{Agents: map[string]float64{"A": 1}}))

	doc := s.Document()
	doc.Cycles[0].Agents["A"] = 99

	assert.Equal(t, 1.0, s.Document().Cycles[0].Agents["A"])
}

func TestInMemoryStore_UpdateAgentHistoryOrder(t *testing.T) {
	s := NewInMemoryStore()

	for i := 0; i < 3; i++ {
		require.NoError(t, s.UpdateAgent("A", core.AgentUpdate{Iteration: core.Ptr(i)}))
	}

	history := s.AgentHistory("A")
	require.Len(t, history, 3)

	for i, snap := range history {
		require.NotNil(t, snap.Iteration)
		assert.Equal(t, i, *snap.Iteration)
	}
}
