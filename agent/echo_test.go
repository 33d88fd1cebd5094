package agent

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/evonet/internal/testutil"
	"github.com/hupe1980/evonet/memory"
)

func TestEcho_ResonanceKeywordMatching(t *testing.T) {
	tests := []struct {
		name   string
		domain string
		state  float64
		data   any
		want   float64
	}{
		{
			name:   "full keyword match",
			domain: "memory management",
			data:   "unified memory management subsystem",
			want:   1.0,
		},
		{
			name:   "half keyword match",
			domain: "memory management",
			data:   "episodic memory trace",
			want:   0.5,
		},
		{
			name:   "case insensitive",
			domain: "Sensory Processing",
			data:   "SENSORY input buffer",
			want:   0.5,
		},
		{
			name:   "no match",
			domain: "memory management",
			data:   "visual cortex",
			want:   0.0,
		},
		{
			name:   "state bonus",
			domain: "memory management",
			state:  1.0,
			data:   "episodic memory trace",
			want:   0.7, // 0.5 base + 1.0*0.2
		},
		{
			name:   "clamped to one",
			domain: "memory management",
			state:  4.0,
			data:   "memory management",
			want:   1.0,
		},
		{
			name: "nil data",
			data: nil,
			want: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			domain := tt.domain
			if domain == "" {
				domain = "memory management"
			}

			a, err := New("A", domain, func(o *Options) {
				o.InitialState = tt.state
				o.Rand = testutil.NewScriptedRand(0.5)
			})
			require.NoError(t, err)

			report, err := a.Echo(tt.data)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, report.Resonance, 1e-9)
		})
	}
}

func TestEcho_DefaultsEchoValueToState(t *testing.T) {
	a, err := New("A", "memory management", func(o *Options) { o.InitialState = 0.8 })
	require.NoError(t, err)

	report, err := a.Echo("memory management")
	require.NoError(t, err)

	assert.Equal(t, 0.8, report.EchoValue)
	assert.Equal(t, 0.8, report.AgentState)
	assert.Equal(t, "A", report.AgentName)
	assert.Equal(t, "memory management", report.AgentDomain)
}

func TestEcho_ExplicitEchoValue(t *testing.T) {
	a, err := New("A", "memory management", func(o *Options) { o.InitialState = 0.25 })
	require.NoError(t, err)

	report, err := a.Echo("memory management", 2.0)
	require.NoError(t, err)

	assert.Equal(t, 2.0, report.EchoValue)
	// resonance = min(1, 1.0 + 0.25*0.2) = 1.0; expertise = resonance * echoValue
	assert.InDelta(t, 2.0, report.Metadata.DomainExpertise, 1e-9)
}

func TestEcho_Metadata(t *testing.T) {
	a, err := New("A", "memory management", func(o *Options) { o.InitialState = 2.5 })
	require.NoError(t, err)

	report, err := a.Echo("memory")
	require.NoError(t, err)

	assert.Equal(t, 1.0, report.Metadata.ProcessingQuality) // state clamped to [0,1]
	assert.Equal(t, 0.0, report.Metadata.AgentMaturity)     // no evolutions yet
	assert.Equal(t, 0, report.Iteration)
	assert.Equal(t, 0.0, report.ErrorRate)
}

func TestEcho_RecordsMetricsEntry(t *testing.T) {
	store := memory.NewInMemoryStore()

	a, err := New("A", "memory management", func(o *Options) { o.Store = store })
	require.NoError(t, err)

	_, err = a.Echo("memory payload")
	require.NoError(t, err)

	entries := store.Document().SystemMetrics
	require.Len(t, entries, 1)
	assert.Equal(t, "A", entries[0].AgentEcho)
	assert.Equal(t, "string", entries[0].DataType)
	require.NotNil(t, entries[0].Resonance)
}

func TestEcho_StoreErrorSurfaces(t *testing.T) {
	store := testutil.NewFailingStore()

	a, err := New("A", "memory management", func(o *Options) { o.Store = store })
	require.NoError(t, err)

	store.FailWith(errors.New("disk full"))

	report, err := a.Echo("memory")
	require.Error(t, err)
	// The report is still computed; only the side effect failed.
	assert.Equal(t, "A", report.AgentName)
}
