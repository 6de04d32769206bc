package stats

import (
	"math"
	"testing"
	"time"
)

func TestCounters(t *testing.T) {
	s := New()
	if s.TotalBytes() != 0 {
		t.Fatalf("TotalBytes() = %d, want 0", s.TotalBytes())
	}
	if s.Successes() != 0 || s.Failures() != 0 {
		t.Fatal("fresh statistics should have zero counts")
	}

	s.AddBytes(10)
	if s.TotalBytes() != 10 {
		t.Fatalf("TotalBytes() = %d, want 10", s.TotalBytes())
	}

	s.RecordSuccess()
	if s.Successes() != 1 {
		t.Fatalf("Successes() = %d, want 1", s.Successes())
	}
	if got := s.SuccessPercentage(); got != 100.0 {
		t.Fatalf("SuccessPercentage() = %f, want 100.0", got)
	}

	s.RecordFailure()
	s.RecordFailure()
	s.RecordFailure()
	if s.Failures() != 3 {
		t.Fatalf("Failures() = %d, want 3", s.Failures())
	}
	if got := s.SuccessPercentage(); got != 25.0 {
		t.Fatalf("SuccessPercentage() = %f, want 25.0", got)
	}
	if s.Attempts() != 4 {
		t.Fatalf("Attempts() = %d, want 4", s.Attempts())
	}
}

func TestSuccessPercentageWithoutAttempts(t *testing.T) {
	s := New()
	if got := s.SuccessPercentage(); got != 0 {
		t.Fatalf("SuccessPercentage() = %f, want 0 with no attempts", got)
	}
}

func TestMergeFoldsTallies(t *testing.T) {
	s := New()

	a := NewTally()
	a.RecordSuccess(100, time.Millisecond)
	a.RecordSuccess(100, 2*time.Millisecond)
	a.RecordFailure(time.Millisecond)

	b := NewTally()
	b.RecordSuccess(50, time.Millisecond)

	s.Merge(a)
	s.Merge(b)
	s.Merge(nil) // no-op

	if s.TotalBytes() != 250 {
		t.Fatalf("TotalBytes() = %d, want 250", s.TotalBytes())
	}
	if s.Successes() != 3 {
		t.Fatalf("Successes() = %d, want 3", s.Successes())
	}
	if s.Failures() != 1 {
		t.Fatalf("Failures() = %d, want 1", s.Failures())
	}
	if a.Attempts() != 3 {
		t.Fatalf("tally Attempts() = %d, want 3", a.Attempts())
	}

	snap := s.Snapshot(time.Second)
	if snap.P50Latency == 0 {
		t.Fatal("merged latencies should surface in the snapshot")
	}
}

func TestThroughputTruncatesToWholeSeconds(t *testing.T) {
	s := New()
	s.AddBytes(4096)

	// Sub-second elapsed time truncates to zero seconds, making the
	// throughput non-finite. That imprecision is contractual.
	s.RecordThroughput()
	if got := s.Throughput(); !math.IsInf(got, 1) {
		t.Fatalf("Throughput() = %f, want +Inf for sub-second run", got)
	}
}

func TestThroughputZeroUntilRecorded(t *testing.T) {
	s := New()
	s.AddBytes(100)
	if got := s.Throughput(); got != 0 {
		t.Fatalf("Throughput() = %f, want 0 before RecordThroughput", got)
	}
}

func TestSnapshotLatencyFields(t *testing.T) {
	s := New()
	s.RecordLatency(2 * time.Millisecond)
	s.RecordLatency(4 * time.Millisecond)
	s.RecordSuccess()
	s.RecordSuccess()
	s.AddBytes(10)

	snap := s.Snapshot(1500 * time.Millisecond)
	if snap.Attempts != 2 {
		t.Fatalf("Attempts = %d, want 2", snap.Attempts)
	}
	if snap.MinLatency <= 0 || snap.MaxLatency < snap.MinLatency {
		t.Fatalf("latency range invalid: min=%s max=%s", snap.MinLatency, snap.MaxLatency)
	}
	if snap.DurationMs != 1500 {
		t.Fatalf("DurationMs = %f, want 1500", snap.DurationMs)
	}
}

func TestReportSanitized(t *testing.T) {
	r := Report{Throughput: math.Inf(1)}
	if got := r.Sanitized().Throughput; got != 0 {
		t.Fatalf("Sanitized() throughput = %f, want 0", got)
	}

	r = Report{Throughput: 42.5}
	if got := r.Sanitized().Throughput; got != 42.5 {
		t.Fatalf("Sanitized() throughput = %f, want 42.5", got)
	}
}
