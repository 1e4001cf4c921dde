package pipeline

import (
	"testing"
	"time"
)

func TestStatsSnapshotPercentiles(t *testing.T) {
	stats := NewStats(time.Hour)
	for i := 1; i <= 5; i++ {
		stats.Record(time.Duration(i*100)*time.Millisecond, 1, i)
	}

	snap := stats.Snapshot()
	if snap.Batches != 5 {
		t.Fatalf("expected batches=5, got %d", snap.Batches)
	}
	if snap.Files != 5 {
		t.Fatalf("expected files=5, got %d", snap.Files)
	}
	if snap.Records != 15 {
		t.Fatalf("expected records=15, got %d", snap.Records)
	}
	if snap.MinMs != 100 {
		t.Fatalf("expected min=100, got %d", snap.MinMs)
	}
	if snap.MaxMs != 500 {
		t.Fatalf("expected max=500, got %d", snap.MaxMs)
	}
	if snap.AvgMs != 300 {
		t.Fatalf("expected avg=300, got %f", snap.AvgMs)
	}
	if snap.P50Ms != 300 {
		t.Fatalf("expected p50=300, got %f", snap.P50Ms)
	}
	if snap.P95Ms != 480 {
		t.Fatalf("expected p95=480, got %f", snap.P95Ms)
	}
	if snap.P99Ms != 496 {
		t.Fatalf("expected p99=496, got %f", snap.P99Ms)
	}
}

func TestStatsPrunesExpiredSamples(t *testing.T) {
	stats := NewStats(10 * time.Millisecond)
	stats.Record(100*time.Millisecond, 1, 1)
	stats.RecordFailure()
	time.Sleep(25 * time.Millisecond)

	snap := stats.Snapshot()
	if snap.Batches != 0 || snap.Failures != 0 {
		t.Fatalf("expected empty window after prune, got batches=%d failures=%d", snap.Batches, snap.Failures)
	}

	stats.Record(200*time.Millisecond, 2, 3)
	snap = stats.Snapshot()
	if snap.Batches != 1 {
		t.Fatalf("expected batches=1 for fresh sample, got %d", snap.Batches)
	}
	if snap.MinMs != 200 || snap.MaxMs != 200 {
		t.Fatalf("expected min=max=200, got min=%d max=%d", snap.MinMs, snap.MaxMs)
	}
}

func TestStatsRecordClampsNegativeDuration(t *testing.T) {
	stats := NewStats(time.Hour)
	stats.Record(-10*time.Millisecond, 1, 0)
	snap := stats.Snapshot()
	if snap.Batches != 1 {
		t.Fatalf("expected batches=1, got %d", snap.Batches)
	}
	if snap.MinMs != 0 || snap.MaxMs != 0 {
		t.Fatalf("expected clamped duration=0, got min=%d max=%d", snap.MinMs, snap.MaxMs)
	}
}

func TestStatsCountsFailures(t *testing.T) {
	stats := NewStats(time.Hour)
	stats.RecordFailure()
	stats.RecordFailure()
	snap := stats.Snapshot()
	if snap.Failures != 2 {
		t.Fatalf("expected failures=2, got %d", snap.Failures)
	}
	if snap.Batches != 0 {
		t.Fatalf("expected batches=0, got %d", snap.Batches)
	}
}
