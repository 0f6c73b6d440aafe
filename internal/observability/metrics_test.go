package observability

import (
	"sync"
	"testing"
	"time"
)

func TestMetricsRecordRequest(t *testing.T) {
	metrics := NewMetrics()

	metrics.RecordRequest("search", false, 100*time.Millisecond)
	metrics.RecordRequest("search", false, 300*time.Millisecond)
	metrics.RecordRequest("search", true, 200*time.Millisecond)
	metrics.RecordRequest("backfill", false, time.Second)

	snapshot := metrics.Snapshot()
	if snapshot.RequestTotal != 4 {
		t.Errorf("total = %d, want 4", snapshot.RequestTotal)
	}
	if snapshot.RequestFailed != 1 {
		t.Errorf("failed = %d, want 1", snapshot.RequestFailed)
	}
	if snapshot.SuccessRate != 75.0 {
		t.Errorf("success rate = %f, want 75.0", snapshot.SuccessRate)
	}

	search, ok := snapshot.ByOperation["search"]
	if !ok {
		t.Fatal("missing search operation")
	}
	if search.Count != 3 || search.Failures != 1 {
		t.Errorf("search = %+v, want 3 count / 1 failure", search)
	}
	if search.AvgMs != 200 {
		t.Errorf("search avg = %dms, want 200", search.AvgMs)
	}
}

func TestMetricsEmptySnapshot(t *testing.T) {
	snapshot := NewMetrics().Snapshot()
	if snapshot.SuccessRate != 100.0 {
		t.Errorf("success rate with no traffic = %f, want 100.0", snapshot.SuccessRate)
	}
	if len(snapshot.ByOperation) != 0 {
		t.Errorf("expected no operations, got %v", snapshot.ByOperation)
	}
}

func TestMetricsConcurrentRecord(t *testing.T) {
	metrics := NewMetrics()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(failed bool) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				metrics.RecordRequest("search", failed, time.Millisecond)
			}
		}(i%2 == 0)
	}
	wg.Wait()

	snapshot := metrics.Snapshot()
	if snapshot.RequestTotal != 1000 {
		t.Errorf("total = %d, want 1000", snapshot.RequestTotal)
	}
	if snapshot.RequestFailed != 500 {
		t.Errorf("failed = %d, want 500", snapshot.RequestFailed)
	}
}
