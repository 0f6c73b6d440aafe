package finops

import (
	"sync"
	"testing"
	"time"
)

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		name  string
		chars int
		want  int64
	}{
		{name: "zero chars", chars: 0, want: 0},
		{name: "negative chars", chars: -5, want: 0},
		{name: "short text rounds up to one token", chars: 2, want: 1},
		{name: "four chars per token", chars: 400, want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EstimateTokens(tt.chars); got != tt.want {
				t.Errorf("EstimateTokens(%d) = %d, want %d", tt.chars, got, tt.want)
			}
		})
	}
}

func TestUsageMonitorRecordAndSnapshot(t *testing.T) {
	monitor := NewUsageMonitor()

	monitor.Record("search", 1, 40, 120*time.Millisecond)
	monitor.Record("search", 1, 80, 80*time.Millisecond)
	monitor.Record("backfill", 50, 40000, 2*time.Second)

	snapshot := monitor.Snapshot()
	if snapshot.TotalCalls != 3 {
		t.Errorf("total calls = %d, want 3", snapshot.TotalCalls)
	}

	search := snapshot.ByOperation["search"]
	if search == nil {
		t.Fatal("missing search operation")
	}
	if search.Calls != 2 || search.Texts != 2 {
		t.Errorf("search usage = %+v, want 2 calls / 2 texts", search)
	}
	if search.EstimatedTokens != 10+20 {
		t.Errorf("search tokens = %d, want 30", search.EstimatedTokens)
	}
	if search.TotalLatencyMs != 200 {
		t.Errorf("search latency = %d, want 200", search.TotalLatencyMs)
	}

	backfill := snapshot.ByOperation["backfill"]
	if backfill == nil {
		t.Fatal("missing backfill operation")
	}
	if backfill.EstimatedTokens != 10000 {
		t.Errorf("backfill tokens = %d, want 10000", backfill.EstimatedTokens)
	}
	if snapshot.EstimatedTokens != search.EstimatedTokens+backfill.EstimatedTokens {
		t.Errorf("snapshot tokens not additive: %d", snapshot.EstimatedTokens)
	}
	if snapshot.EstimatedCost <= 0 {
		t.Errorf("expected positive estimated cost, got %f", snapshot.EstimatedCost)
	}
}

func TestUsageMonitorSnapshotIsolation(t *testing.T) {
	monitor := NewUsageMonitor()
	monitor.Record("search", 1, 100, time.Millisecond)

	snapshot := monitor.Snapshot()
	snapshot.ByOperation["search"].Calls = 999

	if monitor.Snapshot().ByOperation["search"].Calls != 1 {
		t.Error("mutating a snapshot must not affect the monitor")
	}
}

func TestUsageMonitorConcurrentRecord(t *testing.T) {
	monitor := NewUsageMonitor()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				monitor.Record("search", 1, 40, time.Millisecond)
			}
		}()
	}
	wg.Wait()

	if got := monitor.Snapshot().ByOperation["search"].Calls; got != 1000 {
		t.Errorf("calls = %d, want 1000", got)
	}
}
