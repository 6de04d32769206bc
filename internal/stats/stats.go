package stats

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Statistics accumulates the outcome of one run. Counters only increase
// while a run is in flight and the throughput is written exactly once when
// the run finishes. A fresh instance is constructed per run; the start time
// origin is captured at construction and never reset.
type Statistics struct {
	start time.Time

	totalBytes atomic.Uint64
	successes  atomic.Uint64
	failures   atomic.Uint64

	// throughput holds float64 bits so the final value can be stored after
	// all workers have joined without a lock.
	throughput atomic.Uint64

	mu   sync.Mutex
	hist *hdrhistogram.Histogram
}

// New creates Statistics with the elapsed-time origin set to now.
func New() *Statistics {
	return &Statistics{
		start: time.Now(),
		hist:  newLatencyHistogram(),
	}
}

// Track latencies from 1µs up to 60s with 3 significant figures.
func newLatencyHistogram() *hdrhistogram.Histogram {
	return hdrhistogram.New(1, 60_000_000, 3)
}

// AddBytes increments the total number of bytes written.
func (s *Statistics) AddBytes(n uint64) {
	s.totalBytes.Add(n)
}

// RecordSuccess increments the number of successful write attempts.
func (s *Statistics) RecordSuccess() {
	s.successes.Add(1)
}

// RecordFailure increments the number of failed write attempts.
func (s *Statistics) RecordFailure() {
	s.failures.Add(1)
}

// RecordLatency records the wall-clock cost of a single write attempt.
func (s *Statistics) RecordLatency(latency time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	recordLatency(s.hist, latency)
}

func recordLatency(hist *hdrhistogram.Histogram, latency time.Duration) {
	us := latency.Microseconds()
	if us < hist.LowestTrackableValue() {
		us = hist.LowestTrackableValue()
	}
	if us > hist.HighestTrackableValue() {
		us = hist.HighestTrackableValue()
	}
	_ = hist.RecordValue(us)
}

// Merge folds a worker's local tally into the aggregate. Callers must only
// merge after the worker has finished; the engine serializes all merges
// behind its join step.
func (s *Statistics) Merge(t *Tally) {
	if t == nil {
		return
	}
	s.totalBytes.Add(t.Bytes)
	s.successes.Add(t.Successes)
	s.failures.Add(t.Failures)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.hist.Merge(t.hist)
}

// TotalBytes returns the total number of bytes confirmed sent.
func (s *Statistics) TotalBytes() uint64 { return s.totalBytes.Load() }

// Successes returns the number of successful write attempts.
func (s *Statistics) Successes() uint64 { return s.successes.Load() }

// Failures returns the number of failed write attempts.
func (s *Statistics) Failures() uint64 { return s.failures.Load() }

// Attempts returns the total number of write attempts issued.
func (s *Statistics) Attempts() uint64 {
	return s.successes.Load() + s.failures.Load()
}

// SuccessPercentage returns the share of attempts that succeeded, or zero
// when no attempts were issued.
func (s *Statistics) SuccessPercentage() float64 {
	success := float64(s.successes.Load())
	failure := float64(s.failures.Load())
	if success+failure == 0 {
		return 0
	}
	return (success / (success + failure)) * 100.0
}

// Elapsed returns the time since the Statistics were constructed.
func (s *Statistics) Elapsed() time.Duration { return time.Since(s.start) }

// RecordThroughput derives bytes-per-second from the total bytes written and
// stores it. Elapsed time is truncated to whole seconds, so runs shorter
// than one second yield a non-finite throughput; that imprecision is part of
// the contract rather than something to paper over with sub-second math.
func (s *Statistics) RecordThroughput() {
	secs := uint64(time.Since(s.start) / time.Second)
	tp := float64(s.totalBytes.Load()) / float64(secs)
	s.throughput.Store(floatBits(tp))
}

// Throughput returns the recorded bytes-per-second throughput. It is zero
// until RecordThroughput has been called at the end of a run.
func (s *Statistics) Throughput() float64 {
	return floatFromBits(s.throughput.Load())
}

// Snapshot renders the current counters into a Report. The caller supplies
// the elapsed duration so progress reporters and the final report share one
// clock.
func (s *Statistics) Snapshot(elapsed time.Duration) Report {
	r := Report{
		TotalBytes:     s.TotalBytes(),
		Attempts:       s.Attempts(),
		Successes:      s.Successes(),
		Failures:       s.Failures(),
		SuccessPercent: s.SuccessPercentage(),
		Throughput:     s.Throughput(),
		Duration:       elapsed,
		DurationMs:     float64(elapsed) / float64(time.Millisecond),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hist.TotalCount() > 0 {
		r.MinLatency = time.Duration(s.hist.Min()) * time.Microsecond
		r.MaxLatency = time.Duration(s.hist.Max()) * time.Microsecond
		r.MeanLatency = time.Duration(s.hist.Mean()) * time.Microsecond
		r.P50Latency = time.Duration(s.hist.ValueAtQuantile(50)) * time.Microsecond
		r.P90Latency = time.Duration(s.hist.ValueAtQuantile(90)) * time.Microsecond
		r.P99Latency = time.Duration(s.hist.ValueAtQuantile(99)) * time.Microsecond
	}
	r.MinLatencyMs = float64(r.MinLatency) / float64(time.Millisecond)
	r.MaxLatencyMs = float64(r.MaxLatency) / float64(time.Millisecond)
	r.MeanLatencyMs = float64(r.MeanLatency) / float64(time.Millisecond)
	r.P50LatencyMs = float64(r.P50Latency) / float64(time.Millisecond)
	r.P90LatencyMs = float64(r.P90Latency) / float64(time.Millisecond)
	r.P99LatencyMs = float64(r.P99Latency) / float64(time.Millisecond)
	return r
}

// Tally is a worker-local accumulator. Workers never touch the shared
// Statistics; they record into their own Tally and hand it back to the
// engine to merge once they have joined.
type Tally struct {
	Bytes     uint64
	Successes uint64
	Failures  uint64

	hist *hdrhistogram.Histogram
}

// NewTally creates an empty worker tally.
func NewTally() *Tally {
	return &Tally{hist: newLatencyHistogram()}
}

// RecordSuccess adds one successful attempt and its byte count.
func (t *Tally) RecordSuccess(bytes uint64, latency time.Duration) {
	t.Bytes += bytes
	t.Successes++
	recordLatency(t.hist, latency)
}

// RecordFailure adds one failed attempt.
func (t *Tally) RecordFailure(latency time.Duration) {
	t.Failures++
	recordLatency(t.hist, latency)
}

// Attempts returns the number of attempts recorded in this tally.
func (t *Tally) Attempts() uint64 { return t.Successes + t.Failures }
