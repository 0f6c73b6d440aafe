package observability

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics aggregates per-operation request counts, failures, and latency.
// Everything lives in process memory; a restart starts the counters over.
type Metrics struct {
	requestTotal  atomic.Int64
	requestFailed atomic.Int64

	mu          sync.Mutex
	byOperation map[string]*operationMetrics
	startedAt   time.Time
}

type operationMetrics struct {
	count         atomic.Int64
	failures      atomic.Int64
	totalDuration atomic.Int64 // milliseconds
}

func NewMetrics() *Metrics {
	return &Metrics{
		byOperation: make(map[string]*operationMetrics),
		startedAt:   time.Now(),
	}
}

// RecordRequest accounts one request for the given operation.
func (m *Metrics) RecordRequest(operation string, failed bool, duration time.Duration) {
	m.requestTotal.Add(1)
	if failed {
		m.requestFailed.Add(1)
	}

	om := m.operation(operation)
	om.count.Add(1)
	if failed {
		om.failures.Add(1)
	}
	om.totalDuration.Add(duration.Milliseconds())
}

func (m *Metrics) operation(name string) *operationMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	om, ok := m.byOperation[name]
	if !ok {
		om = &operationMetrics{}
		m.byOperation[name] = om
	}
	return om
}

// OperationSnapshot is a point-in-time view of one operation's counters.
type OperationSnapshot struct {
	Count    int64 `json:"count"`
	Failures int64 `json:"failures"`
	AvgMs    int64 `json:"avg_ms"`
	TotalMs  int64 `json:"total_ms"`
}

// Snapshot is a point-in-time view of all counters.
type Snapshot struct {
	Since         time.Time                    `json:"since"`
	UptimeSeconds int64                        `json:"uptime_seconds"`
	RequestTotal  int64                        `json:"request_total"`
	RequestFailed int64                        `json:"request_failed"`
	SuccessRate   float64                      `json:"success_rate"`
	ByOperation   map[string]OperationSnapshot `json:"by_operation"`
}

func (m *Metrics) Snapshot() *Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := &Snapshot{
		Since:         m.startedAt,
		UptimeSeconds: int64(time.Since(m.startedAt).Seconds()),
		RequestTotal:  m.requestTotal.Load(),
		RequestFailed: m.requestFailed.Load(),
		ByOperation:   make(map[string]OperationSnapshot, len(m.byOperation)),
	}

	snapshot.SuccessRate = 100.0
	if snapshot.RequestTotal > 0 {
		snapshot.SuccessRate = float64(snapshot.RequestTotal-snapshot.RequestFailed) /
			float64(snapshot.RequestTotal) * 100.0
	}

	for name, om := range m.byOperation {
		count := om.count.Load()
		total := om.totalDuration.Load()
		os := OperationSnapshot{
			Count:    count,
			Failures: om.failures.Load(),
			TotalMs:  total,
		}
		if count > 0 {
			os.AvgMs = total / count
		}
		snapshot.ByOperation[name] = os
	}
	return snapshot
}
