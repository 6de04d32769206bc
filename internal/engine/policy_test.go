package engine

import (
	"testing"
	"time"
)

func TestFromFlags(t *testing.T) {
	tenSeconds := 10 * time.Second

	tests := []struct {
		name        string
		count       uint64
		duration    time.Duration
		concurrency uint64
		want        Policy
	}{
		{
			name:  "default count",
			count: 1,
			want:  Count(1),
		},
		{
			name:  "non default count",
			count: 100_000_000,
			want:  Count(100_000_000),
		},
		{
			name:  "zero count",
			count: 0,
			want:  Count(0),
		},
		{
			name:     "duration only",
			count:    1,
			duration: tenSeconds,
			want:     Duration(tenSeconds),
		},
		{
			name:     "count above one with duration",
			count:    3,
			duration: tenSeconds,
			want:     CountOrDuration(3, tenSeconds),
		},
		{
			name:        "concurrency with count",
			count:       100,
			concurrency: 10,
			want:        ConcurrentCount(10, 100),
		},
		{
			name:        "concurrency with duration ignores count",
			count:       500,
			duration:    tenSeconds,
			concurrency: 10,
			want:        ConcurrentDuration(10, tenSeconds),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromFlags(tt.count, tt.duration, tt.concurrency)
			if got != tt.want {
				t.Fatalf("FromFlags(%d, %s, %d) = %v, want %v",
					tt.count, tt.duration, tt.concurrency, got, tt.want)
			}
		})
	}
}

func TestPolicyString(t *testing.T) {
	tests := []struct {
		policy Policy
		want   string
	}{
		{Count(5), "count(5)"},
		{Duration(2 * time.Second), "duration(2s)"},
		{CountOrDuration(3, time.Second), "count-or-duration(3, 1s)"},
		{ConcurrentCount(5, 100), "concurrent-count(5, 100)"},
		{ConcurrentDuration(10, time.Second), "concurrent-duration(10, 1s)"},
	}
	for _, tt := range tests {
		if got := tt.policy.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
