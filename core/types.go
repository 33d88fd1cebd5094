package core

import "time"

// ResourceSample is a point-in-time reading of host utilization. All usage
// values are percentages in [0, 100].
type ResourceSample struct {
	CPUUsage    float64   `json:"cpu_usage"`
	MemoryUsage float64   `json:"memory_usage"`
	DiskUsage   float64   `json:"disk_usage"`
	Timestamp   time.Time `json:"timestamp"`
}

// MetricsEntry is the uniform row type of the document's system_metrics
// array. Background resource samples and per-agent echo records share this
// single shape; fields that do not apply to an entry are omitted from the
// persisted JSON. Numeric fields are pointers so a legitimate zero reading
// survives the omitempty round trip.
type MetricsEntry struct {
	Timestamp   time.Time `json:"timestamp"`
	CPUUsage    *float64  `json:"cpu_usage,omitempty"`
	MemoryUsage *float64  `json:"memory_usage,omitempty"`
	DiskUsage   *float64  `json:"disk_usage,omitempty"`
	AgentEcho   string    `json:"agent_echo,omitempty"`
	Resonance   *float64  `json:"resonance,omitempty"`
	EchoValue   *float64  `json:"echo_value,omitempty"`
	DataType    string    `json:"data_type,omitempty"`
}

// NewResourceEntry converts a resource sample into a metrics entry. The
// store stamps the timestamp when the entry is recorded.
func NewResourceEntry(s ResourceSample) MetricsEntry {
	return MetricsEntry{
		CPUUsage:    Ptr(s.CPUUsage),
		MemoryUsage: Ptr(s.MemoryUsage),
		DiskUsage:   Ptr(s.DiskUsage),
	}
}

// NewEchoEntry builds the metrics entry recorded as a side effect of an
// agent echo operation.
func NewEchoEntry(agentName string, resonance, echoValue float64, dataType string) MetricsEntry {
	return MetricsEntry{
		AgentEcho: agentName,
		Resonance: Ptr(resonance),
		EchoValue: Ptr(echoValue),
		DataType:  dataType,
	}
}

// EvolutionFactors captures the four additive terms applied during a single
// evolution step. They are persisted with every per-evolution snapshot so an
// agent's trajectory can be audited after the fact.
type EvolutionFactors struct {
	Innovation float64 `json:"innovation"`
	Constraint float64 `json:"constraint"`
	Resource   float64 `json:"resource"`
	Correction float64 `json:"correction"`
}

// AgentUpdate is a merge patch for an agent record. Only non-nil fields are
// applied; the store appends every applied patch to the agent's history as a
// timestamped snapshot.
type AgentUpdate struct {
	Domain         *string           `json:"domain,omitempty"`
	State          *float64          `json:"state,omitempty"`
	Iteration      *int              `json:"iteration,omitempty"`
	ErrorCount     *int              `json:"error_count,omitempty"`
	JobCount       *int              `json:"job_count,omitempty"`
	PollInterval   *float64          `json:"poll_interval,omitempty"`
	ErrorThreshold *float64          `json:"error_threshold,omitempty"`
	Factors        *EvolutionFactors `json:"factors,omitempty"`
	ErrorRate      *float64          `json:"error_rate,omitempty"`
}

// AgentSnapshot is one entry of an agent's persisted history: the applied
// patch plus the time it was applied.
type AgentSnapshot struct {
	Timestamp time.Time `json:"timestamp"`

	// Embedded without a tag so the patch fields inline into the snapshot
	// object, matching the flat history entries of the on-disk format.
	AgentUpdate
}

// AgentRecord is the persisted state of a single agent, keyed by name in the
// document. Current values are merged in place by Apply; History preserves
// every patch in order.
type AgentRecord struct {
	Domain         string            `json:"domain"`
	State          float64           `json:"state"`
	Iteration      int               `json:"iteration"`
	ErrorCount     int               `json:"error_count"`
	JobCount       int               `json:"job_count"`
	PollInterval   float64           `json:"poll_interval"`
	ErrorThreshold float64           `json:"error_threshold"`
	Factors        *EvolutionFactors `json:"factors,omitempty"`
	ErrorRate      *float64          `json:"error_rate,omitempty"`
	History        []AgentSnapshot   `json:"history"`
	CreatedAt      time.Time         `json:"created_at"`
}

// Apply merges the non-nil fields of the patch into the record.
func (r *AgentRecord) Apply(patch AgentUpdate) {
	if patch.Domain != nil {
		r.Domain = *patch.Domain
	}
	if patch.State != nil {
		r.State = *patch.State
	}
	if patch.Iteration != nil {
		r.Iteration = *patch.Iteration
	}
	if patch.ErrorCount != nil {
		r.ErrorCount = *patch.ErrorCount
	}
	if patch.JobCount != nil {
		r.JobCount = *patch.JobCount
	}
	if patch.PollInterval != nil {
		r.PollInterval = *patch.PollInterval
	}
	if patch.ErrorThreshold != nil {
		r.ErrorThreshold = *patch.ErrorThreshold
	}
	if patch.Factors != nil {
		f := *patch.Factors
		r.Factors = &f
	}
	if patch.ErrorRate != nil {
		r.ErrorRate = Ptr(*patch.ErrorRate)
	}
}

// Clone returns a deep copy of the record so callers can hand out history
// without exposing internal slices.
func (r AgentRecord) Clone() AgentRecord {
	out := r
	out.History = append([]AgentSnapshot(nil), r.History...)
	if r.Factors != nil {
		f := *r.Factors
		out.Factors = &f
	}
	if r.ErrorRate != nil {
		out.ErrorRate = Ptr(*r.ErrorRate)
	}
	return out
}

// CycleRecord summarizes one completed evolution round: when it ran, how
// long it took, every agent's closing state and the resource sample shared
// by all agents in the round.
type CycleRecord struct {
	Timestamp       time.Time          `json:"timestamp"`
	Duration        float64            `json:"duration"`
	Agents          map[string]float64 `json:"agents"`
	ResourceMetrics ResourceSample     `json:"resource_metrics"`
}

// Document is the full persisted evolution memory. Every mutating store call
// rewrites the entire document and refreshes LastUpdated; there is no
// partial or incremental write.
type Document struct {
	Cycles        []CycleRecord          `json:"cycles"`
	Agents        map[string]AgentRecord `json:"agents"`
	SystemMetrics []MetricsEntry         `json:"system_metrics"`
	LastUpdated   time.Time              `json:"last_updated"`
}

// NewDocument returns an empty document with initialized collections.
func NewDocument() Document {
	return Document{
		Cycles:        []CycleRecord{},
		Agents:        map[string]AgentRecord{},
		SystemMetrics: []MetricsEntry{},
	}
}

// Clone returns a deep copy of the cycle record.
func (c CycleRecord) Clone() CycleRecord {
	out := c
	out.Agents = make(map[string]float64, len(c.Agents))
	for name, state := range c.Agents {
		out.Agents[name] = state
	}
	return out
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	out := d
	out.Cycles = make([]CycleRecord, len(d.Cycles))
	for i, c := range d.Cycles {
		out.Cycles[i] = c.Clone()
	}
	out.SystemMetrics = append([]MetricsEntry(nil), d.SystemMetrics...)
	out.Agents = make(map[string]AgentRecord, len(d.Agents))
	for name, rec := range d.Agents {
		out.Agents[name] = rec.Clone()
	}
	return out
}

// Ptr returns a pointer to v. Convenience for building merge patches.
func Ptr[T any](v T) *T { return &v }
