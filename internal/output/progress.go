package output

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/jdockerty/gn/internal/stats"
)

// ProgressReporter displays a live status line while a run is in flight.
type ProgressReporter struct {
	stats    *stats.Statistics
	ticker   *time.Ticker
	done     chan struct{}
	finished chan struct{}
	writer   io.Writer
	active   int32
	start    time.Time
}

// NewProgressReporter creates a reporter that rewrites its status line at
// the given interval.
func NewProgressReporter(st *stats.Statistics, interval time.Duration, writer io.Writer) *ProgressReporter {
	if writer == nil {
		writer = io.Discard
	}
	return &ProgressReporter{
		stats:    st,
		ticker:   time.NewTicker(interval),
		done:     make(chan struct{}),
		finished: make(chan struct{}),
		writer:   writer,
		start:    time.Now(),
	}
}

// Start begins displaying progress updates in a background goroutine.
func (p *ProgressReporter) Start() {
	if !atomic.CompareAndSwapInt32(&p.active, 0, 1) {
		return // already running
	}
	go p.run()
}

// Stop halts progress updates.
func (p *ProgressReporter) Stop() {
	if atomic.CompareAndSwapInt32(&p.active, 1, 0) {
		close(p.done)
		p.ticker.Stop()
		<-p.finished
	}
}

func (p *ProgressReporter) run() {
	defer close(p.finished)
	for {
		select {
		case <-p.ticker.C:
			elapsed := time.Since(p.start)
			fmt.Fprintf(p.writer, "\rAttempts: %d | Bytes: %d | Failures: %d | %s",
				p.stats.Attempts(), p.stats.TotalBytes(), p.stats.Failures(),
				FormatRate(p.stats.TotalBytes(), elapsed))
		case <-p.done:
			return
		}
	}
}
