// Package finops tracks embedding API consumption so operators can see what
// the model endpoint is costing them before the invoice arrives.
package finops

import (
	"sync"
	"time"
)

// charsPerToken is a rough token estimate for mixed English text.
const charsPerToken = 4.0

// costPerMillionTokens is the list price for small embedding models
// served over OpenAI-compatible endpoints. Overridable per monitor.
const costPerMillionTokens = 0.02

// OperationUsage aggregates embedding consumption for one operation kind.
type OperationUsage struct {
	Calls           int64   `json:"calls"`
	Texts           int64   `json:"texts"`
	EstimatedTokens int64   `json:"estimated_tokens"`
	EstimatedCost   float64 `json:"estimated_cost_usd"`
	TotalLatencyMs  int64   `json:"total_latency_ms"`
}

// UsageMonitor accumulates per-operation embedding usage in memory. Counters
// reset on process restart; this is a gauge for operators, not an audit log.
type UsageMonitor struct {
	mu                   sync.RWMutex
	byOperation          map[string]*OperationUsage
	costPerMillionTokens float64
	startedAt            time.Time
}

func NewUsageMonitor() *UsageMonitor {
	return &UsageMonitor{
		byOperation:          make(map[string]*OperationUsage),
		costPerMillionTokens: costPerMillionTokens,
		startedAt:            time.Now(),
	}
}

// Record accounts one embedding call: how many texts it carried, their total
// character length, and how long the call took.
func (m *UsageMonitor) Record(operation string, texts int, chars int, latency time.Duration) {
	tokens := EstimateTokens(chars)

	m.mu.Lock()
	defer m.mu.Unlock()

	usage, ok := m.byOperation[operation]
	if !ok {
		usage = &OperationUsage{}
		m.byOperation[operation] = usage
	}
	usage.Calls++
	usage.Texts += int64(texts)
	usage.EstimatedTokens += tokens
	usage.EstimatedCost += m.estimateCost(tokens)
	usage.TotalLatencyMs += latency.Milliseconds()
}

// Snapshot is a point-in-time copy of all accumulated usage.
type Snapshot struct {
	Since           time.Time                  `json:"since"`
	TotalCalls      int64                      `json:"total_calls"`
	EstimatedTokens int64                      `json:"estimated_tokens"`
	EstimatedCost   float64                    `json:"estimated_cost_usd"`
	ByOperation     map[string]*OperationUsage `json:"by_operation"`
}

func (m *UsageMonitor) Snapshot() *Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshot := &Snapshot{
		Since:       m.startedAt,
		ByOperation: make(map[string]*OperationUsage, len(m.byOperation)),
	}
	for operation, usage := range m.byOperation {
		copied := *usage
		snapshot.ByOperation[operation] = &copied
		snapshot.TotalCalls += usage.Calls
		snapshot.EstimatedTokens += usage.EstimatedTokens
		snapshot.EstimatedCost += usage.EstimatedCost
	}
	return snapshot
}

func (m *UsageMonitor) estimateCost(tokens int64) float64 {
	return float64(tokens) / 1_000_000.0 * m.costPerMillionTokens
}

// EstimateTokens converts a character count to an approximate token count.
// Embedding billing is per token but batches are assembled from raw text, so
// an estimate is the best available signal ahead of the provider's meter.
func EstimateTokens(chars int) int64 {
	if chars <= 0 {
		return 0
	}
	tokens := int64(float64(chars) / charsPerToken)
	if tokens == 0 {
		tokens = 1
	}
	return tokens
}
