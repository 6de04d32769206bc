package stats

import (
	"math"
	"time"
)

// Report is a point-in-time rendering of a run's Statistics, shaped for both
// the human-readable report and JSON output.
type Report struct {
	RunID    string `json:"run_id,omitempty"`
	Target   string `json:"target,omitempty"`
	Protocol string `json:"protocol,omitempty"`

	TotalBytes     uint64  `json:"total_bytes"`
	Attempts       uint64  `json:"attempts"`
	Successes      uint64  `json:"successes"`
	Failures       uint64  `json:"failures"`
	SuccessPercent float64 `json:"success_percent"`
	Throughput     float64 `json:"throughput_bytes_per_sec"`

	MinLatency  time.Duration `json:"-"`
	MaxLatency  time.Duration `json:"-"`
	MeanLatency time.Duration `json:"-"`
	P50Latency  time.Duration `json:"-"`
	P90Latency  time.Duration `json:"-"`
	P99Latency  time.Duration `json:"-"`
	Duration    time.Duration `json:"-"`

	// JSON-friendly millisecond fields.
	MinLatencyMs  float64 `json:"min_latency_ms"`
	MaxLatencyMs  float64 `json:"max_latency_ms"`
	MeanLatencyMs float64 `json:"mean_latency_ms"`
	P50LatencyMs  float64 `json:"p50_latency_ms"`
	P90LatencyMs  float64 `json:"p90_latency_ms"`
	P99LatencyMs  float64 `json:"p99_latency_ms"`
	DurationMs    float64 `json:"duration_ms"`
}

// Sanitized returns a copy with non-finite floats zeroed. Sub-second runs
// produce a non-finite throughput which encoding/json refuses to encode.
func (r Report) Sanitized() Report {
	if math.IsInf(r.Throughput, 0) || math.IsNaN(r.Throughput) {
		r.Throughput = 0
	}
	return r
}

func floatBits(f float64) uint64     { return math.Float64bits(f) }
func floatFromBits(b uint64) float64 { return math.Float64frombits(b) }
