// Package engine implements gn's write-scheduling core: it resolves a
// target, fans write attempts out across sequential or concurrent execution
// paths according to a Policy, and folds every outcome into one Statistics
// instance.
package engine

import (
	"context"
	"fmt"
	"net"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/jdockerty/gn/internal/protocol"
	"github.com/jdockerty/gn/internal/stats"
	"github.com/jdockerty/gn/internal/tracing"
)

// Options configure an Engine.
type Options struct {
	Target   string            // host:port to write to (required)
	Payload  []byte            // bytes written on every attempt, read-only for the run
	Protocol protocol.Protocol // transport used for every attempt
	Policy   Policy            // write-scheduling strategy

	RatePerSecond int          // attempts per second pacing (0 means unlimited)
	Tracer        trace.Tracer // optional; nil disables run spans

	// LimiterFactory allows tests to inject a limiter; nil installs the
	// default burst-smoothing factory.
	LimiterFactory func(rps int) *rate.Limiter
}

func (o *Options) normalize() {
	if o.Protocol == "" {
		o.Protocol = protocol.TCP
	}
	if o.RatePerSecond < 0 {
		o.RatePerSecond = 0
	}
	if o.LimiterFactory == nil {
		o.LimiterFactory = func(rps int) *rate.Limiter {
			if rps <= 0 {
				return rate.NewLimiter(rate.Inf, 0)
			}
			return rate.NewLimiter(rate.Limit(rps), rps)
		}
	}
}

// Engine executes one run. It exclusively owns its Statistics: sequential
// policies record into it directly and concurrent policies merge worker
// tallies into it only after every worker has joined.
type Engine struct {
	opt     Options
	limiter *rate.Limiter
	stats   *stats.Statistics
}

// New creates an Engine for a single run. The Statistics elapsed-time
// origin is captured here.
func New(opt Options) *Engine {
	opt.normalize()
	return &Engine{
		opt:     opt,
		limiter: opt.LimiterFactory(opt.RatePerSecond),
		stats:   stats.New(),
	}
}

// Stats exposes the run's Statistics for progress reporting. Counters are
// safe to read while the run is in flight.
func (e *Engine) Stats() *stats.Statistics { return e.stats }

// Write resolves the target and executes the configured policy against each
// resolved address, returning the total number of bytes written.
//
// An unresolvable target is a configuration error surfaced before any send.
// Individual send failures are recorded and never abort the run; a worker
// that fails to report back does abort it, since the aggregate counts would
// be silently incomplete.
func (e *Engine) Write(ctx context.Context) (uint64, error) {
	addrs, err := e.resolve(ctx)
	if err != nil {
		return 0, err
	}

	var span trace.Span
	if e.opt.Tracer != nil {
		ctx, span = tracing.StartRunSpan(ctx, e.opt.Tracer, e.opt.Protocol.String(), e.opt.Target, e.opt.Policy.String())
	}

	for _, addr := range addrs {
		if err := e.writeAddr(ctx, addr); err != nil {
			if span != nil {
				tracing.EndSpan(span, err)
			}
			return 0, err
		}
	}

	e.stats.RecordThroughput()
	if span != nil {
		tracing.EndSpan(span, nil,
			attribute.Int64("gn.bytes_written", int64(e.stats.TotalBytes())),
			attribute.Int64("gn.successes", int64(e.stats.Successes())),
			attribute.Int64("gn.failures", int64(e.stats.Failures())),
		)
	}
	return e.stats.TotalBytes(), nil
}

// resolve expands the configured host:port into concrete addresses. A name
// may resolve to several addresses; each is written to in turn.
func (e *Engine) resolve(ctx context.Context) ([]string, error) {
	host, port, err := net.SplitHostPort(e.opt.Target)
	if err != nil {
		return nil, fmt.Errorf("invalid target %q: %w", e.opt.Target, err)
	}
	ips, err := net.DefaultResolver.LookupHost(ctx, host)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", host, err)
	}
	addrs := make([]string, 0, len(ips))
	for _, ip := range ips {
		addrs = append(addrs, net.JoinHostPort(ip, port))
	}
	return addrs, nil
}

// writeAddr dispatches one resolved address to the selected policy. The
// switch is exhaustive over PolicyKind; an unknown kind is a programming
// error.
func (e *Engine) writeAddr(ctx context.Context, addr string) error {
	p := e.opt.Policy
	switch p.Kind {
	case PolicyCount:
		e.runCount(ctx, addr, p.Count)
		return nil
	case PolicyDuration:
		e.runDuration(ctx, addr, p.Duration)
		return nil
	case PolicyCountOrDuration:
		e.runCountOrDuration(ctx, addr, p.Count, p.Duration)
		return nil
	case PolicyConcurrentCount:
		if p.Concurrency == 0 {
			return fmt.Errorf("policy %s: concurrency must be at least 1", p.Kind)
		}
		// Integer division: a count not evenly divisible by the concurrency
		// writes fewer than Count attempts in total. Documented boundary.
		perWorker := p.Count / p.Concurrency
		return e.runWorkers(ctx, p.Concurrency, func(ctx context.Context, t *stats.Tally) {
			for i := uint64(0); i < perWorker; i++ {
				e.attemptInto(ctx, addr, t)
			}
		})
	case PolicyConcurrentDuration:
		if p.Concurrency == 0 {
			return fmt.Errorf("policy %s: concurrency must be at least 1", p.Kind)
		}
		return e.runWorkers(ctx, p.Concurrency, func(ctx context.Context, t *stats.Tally) {
			// Each worker measures the duration on its own clock.
			start := time.Now()
			for time.Since(start) < p.Duration {
				e.attemptInto(ctx, addr, t)
			}
		})
	default:
		panic(fmt.Sprintf("unhandled policy kind: %s", p.Kind))
	}
}

func (e *Engine) runCount(ctx context.Context, addr string, n uint64) {
	for i := uint64(0); i < n; i++ {
		e.recordOutcome(e.attempt(ctx, addr))
	}
}

func (e *Engine) runDuration(ctx context.Context, addr string, d time.Duration) {
	// Elapsed time is checked before each send; the attempt that crosses
	// the boundary is allowed to complete.
	start := time.Now()
	for time.Since(start) < d {
		e.recordOutcome(e.attempt(ctx, addr))
	}
}

func (e *Engine) runCountOrDuration(ctx context.Context, addr string, n uint64, d time.Duration) {
	start := time.Now()
	for sent := uint64(0); sent < n && time.Since(start) < d; sent++ {
		e.recordOutcome(e.attempt(ctx, addr))
	}
}

// runWorkers fans loop out across c goroutines, each with a private Tally,
// and merges every tally into the shared Statistics only after all workers
// have joined. A worker panic is surfaced as a fatal run error rather than
// reporting a silently incomplete aggregate.
func (e *Engine) runWorkers(ctx context.Context, c uint64, loop func(ctx context.Context, t *stats.Tally)) error {
	tallies := make([]*stats.Tally, c)
	var g errgroup.Group
	for i := uint64(0); i < c; i++ {
		i := i
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("worker %d: %v", i, r)
				}
			}()
			t := stats.NewTally()
			loop(ctx, t)
			tallies[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("await workers: %w", err)
	}
	for _, t := range tallies {
		e.stats.Merge(t)
	}
	return nil
}

// attempt performs one paced send and reports bytes written, wall-clock
// latency, and the outcome.
func (e *Engine) attempt(ctx context.Context, addr string) (uint64, time.Duration, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return 0, 0, err
	}
	start := time.Now()
	n, err := e.opt.Protocol.Send(ctx, addr, e.opt.Payload)
	return uint64(n), time.Since(start), err
}

// attemptInto performs one attempt and records it into a worker tally.
func (e *Engine) attemptInto(ctx context.Context, addr string, t *stats.Tally) {
	bytes, latency, err := e.attempt(ctx, addr)
	if err != nil {
		t.RecordFailure(latency)
		return
	}
	t.RecordSuccess(bytes, latency)
}

// recordOutcome records a sequential attempt directly into the Statistics.
func (e *Engine) recordOutcome(bytes uint64, latency time.Duration, err error) {
	e.stats.RecordLatency(latency)
	if err != nil {
		e.stats.RecordFailure()
		return
	}
	e.stats.RecordSuccess()
	e.stats.AddBytes(bytes)
}
