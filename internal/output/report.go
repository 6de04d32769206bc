// Package output renders run reports and live progress for gn.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gofrs/flock"

	"github.com/jdockerty/gn/internal/stats"
)

// PrintReport outputs a human-readable summary of a run.
func PrintReport(w io.Writer, r stats.Report) {
	fmt.Fprintln(w, "\n--- Write Results ---")
	if r.RunID != "" {
		fmt.Fprintf(w, "Run ID:            %s\n", r.RunID)
	}
	if r.Target != "" {
		fmt.Fprintf(w, "Target:            %s://%s\n", r.Protocol, r.Target)
	}
	fmt.Fprintf(w, "Bytes Written:     %d\n", r.TotalBytes)
	fmt.Fprintf(w, "Throughput:        %.2f B/s\n", r.Throughput)
	fmt.Fprintf(w, "Attempts:          %d\n", r.Attempts)
	fmt.Fprintf(w, "Successful:        %d\n", r.Successes)
	fmt.Fprintf(w, "Failed:            %d\n", r.Failures)
	fmt.Fprintf(w, "Success Rate:      %.2f%%\n", r.SuccessPercent)
	fmt.Fprintf(w, "Duration:          %s\n", r.Duration)
	if r.Attempts > 0 {
		fmt.Fprintln(w, "\nAttempt Latency:")
		fmt.Fprintf(w, "  Min:             %s\n", r.MinLatency)
		fmt.Fprintf(w, "  Max:             %s\n", r.MaxLatency)
		fmt.Fprintf(w, "  Mean:            %s\n", r.MeanLatency)
		fmt.Fprintf(w, "  P50:             %s\n", r.P50Latency)
		fmt.Fprintf(w, "  P90:             %s\n", r.P90Latency)
		fmt.Fprintf(w, "  P99:             %s\n", r.P99Latency)
	}
}

// PrintJSONReport outputs a JSON-formatted report. Non-finite throughput
// values from sub-second runs are zeroed since JSON cannot carry them.
func PrintJSONReport(w io.Writer, r stats.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r.Sanitized())
}

// WriteReportFile appends one JSON report line to path, guarded by a file
// lock so concurrent gn runs can safely share a report file.
func WriteReportFile(path string, r stats.Report) error {
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock report file: %w", err)
	}
	defer lock.Unlock()

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open report file: %w", err)
	}
	defer f.Close()

	line, err := json.Marshal(r.Sanitized())
	if err != nil {
		return err
	}
	line = append(line, '\n')
	if _, err := f.Write(line); err != nil {
		return fmt.Errorf("write report file: %w", err)
	}
	return nil
}

// FormatRate renders a bytes-per-second figure for progress lines.
func FormatRate(bytes uint64, elapsed time.Duration) string {
	if elapsed <= 0 {
		return "0.0 B/s"
	}
	return fmt.Sprintf("%.1f B/s", float64(bytes)/elapsed.Seconds())
}
