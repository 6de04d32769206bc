package engine

import (
	"fmt"
	"time"
)

// PolicyKind enumerates the closed set of write-scheduling strategies.
type PolicyKind int

const (
	// PolicyCount issues exactly Count writes per resolved address.
	PolicyCount PolicyKind = iota
	// PolicyDuration issues writes continuously until Duration has elapsed.
	PolicyDuration
	// PolicyCountOrDuration stops at Count writes or after Duration,
	// whichever comes first.
	PolicyCountOrDuration
	// PolicyConcurrentCount splits Count writes across Concurrency workers,
	// Count/Concurrency each. Integer division: the remainder is dropped.
	PolicyConcurrentCount
	// PolicyConcurrentDuration runs Concurrency workers, each writing until
	// its own clock reaches Duration.
	PolicyConcurrentDuration
)

func (k PolicyKind) String() string {
	switch k {
	case PolicyCount:
		return "count"
	case PolicyDuration:
		return "duration"
	case PolicyCountOrDuration:
		return "count-or-duration"
	case PolicyConcurrentCount:
		return "concurrent-count"
	case PolicyConcurrentDuration:
		return "concurrent-duration"
	default:
		return fmt.Sprintf("policy(%d)", int(k))
	}
}

// Policy describes how many writes to issue and for how long. It is built
// once, either through a constructor or FromFlags, and never mutated.
// Fields are only meaningful for the kinds that name them.
type Policy struct {
	Kind        PolicyKind
	Count       uint64
	Duration    time.Duration
	Concurrency uint64
}

func (p Policy) String() string {
	switch p.Kind {
	case PolicyCount:
		return fmt.Sprintf("count(%d)", p.Count)
	case PolicyDuration:
		return fmt.Sprintf("duration(%s)", p.Duration)
	case PolicyCountOrDuration:
		return fmt.Sprintf("count-or-duration(%d, %s)", p.Count, p.Duration)
	case PolicyConcurrentCount:
		return fmt.Sprintf("concurrent-count(%d, %d)", p.Concurrency, p.Count)
	case PolicyConcurrentDuration:
		return fmt.Sprintf("concurrent-duration(%d, %s)", p.Concurrency, p.Duration)
	default:
		return p.Kind.String()
	}
}

// Count issues exactly n writes per resolved address.
func Count(n uint64) Policy {
	return Policy{Kind: PolicyCount, Count: n}
}

// Duration issues writes continuously until d has elapsed.
func Duration(d time.Duration) Policy {
	return Policy{Kind: PolicyDuration, Duration: d}
}

// CountOrDuration issues writes until n have been attempted or d has
// elapsed, whichever happens first.
func CountOrDuration(n uint64, d time.Duration) Policy {
	return Policy{Kind: PolicyCountOrDuration, Count: n, Duration: d}
}

// ConcurrentCount splits n writes across c concurrent workers.
func ConcurrentCount(c, n uint64) Policy {
	return Policy{Kind: PolicyConcurrentCount, Concurrency: c, Count: n}
}

// ConcurrentDuration runs c concurrent workers for d each.
func ConcurrentDuration(c uint64, d time.Duration) Policy {
	return Policy{Kind: PolicyConcurrentDuration, Concurrency: c, Duration: d}
}

// FromFlags derives a Policy from the three user-facing knobs. A zero
// duration means "not set" and a zero concurrency means "not set".
//
// Concurrency, when present, always wins over a plain count or duration,
// and duration plus concurrency yields ConcurrentDuration regardless of the
// count value. The count is ignored in that branch; surprising, but it is
// the tool's long-standing observable behaviour.
func FromFlags(count uint64, duration time.Duration, concurrency uint64) Policy {
	switch {
	case duration > 0 && concurrency == 0 && count > 1:
		return CountOrDuration(count, duration)
	case duration > 0 && concurrency == 0:
		return Duration(duration)
	case duration == 0 && concurrency > 0:
		return ConcurrentCount(concurrency, count)
	case duration > 0 && concurrency > 0:
		return ConcurrentDuration(concurrency, duration)
	default:
		return Count(count)
	}
}
