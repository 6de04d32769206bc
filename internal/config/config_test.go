package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	cfg := *Defaults()
	cfg.Target = "localhost:4000"
	return cfg
}

func TestValidateAcceptsDefaults(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
}

func TestValidateIssues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{
			name:   "missing target",
			mutate: func(c *Config) { c.Target = "  " },
			want:   "target is required",
		},
		{
			name:   "bad protocol",
			mutate: func(c *Config) { c.Protocol = "sctp" },
			want:   "unsupported protocol",
		},
		{
			name:   "negative duration",
			mutate: func(c *Config) { c.Duration = -time.Second },
			want:   "duration must be >= 0",
		},
		{
			name:   "negative rate",
			mutate: func(c *Config) { c.Rate = -1 },
			want:   "rate must be >= 0",
		},
		{
			name: "payload and payload-file together",
			mutate: func(c *Config) {
				c.Payload = "hello"
				c.PayloadFile = "payload.txt"
			},
			want: "mutually exclusive",
		},
		{
			name: "dashboard with json output",
			mutate: func(c *Config) {
				c.Dashboard = true
				c.JSONOutput = true
			},
			want: "dashboard and json-output are mutually exclusive",
		},
		{
			name:   "sample rate out of range",
			mutate: func(c *Config) { c.Tracing.SampleRate = 1.5 },
			want:   "sample_rate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestValidationErrorCollectsAllIssues(t *testing.T) {
	cfg := validConfig()
	cfg.Target = ""
	cfg.Protocol = "carrier-pigeon"
	cfg.Rate = -2

	err := cfg.Validate()
	verr, ok := err.(ValidationError)
	if !ok {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if len(verr.Issues()) != 3 {
		t.Fatalf("Issues() = %d, want 3: %v", len(verr.Issues()), verr.Issues())
	}
}
