// Package config carries the user-facing configuration for gn's write and
// serve commands, loaded from flags and an optional config file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/jdockerty/gn/internal/protocol"
	"github.com/jdockerty/gn/internal/tracing"
)

// Config is the single value handed from the command surface to the core.
type Config struct {
	Target      string         `mapstructure:"target"`
	Payload     string         `mapstructure:"payload"`
	PayloadFile string         `mapstructure:"payload_file"`
	Protocol    string         `mapstructure:"protocol"`
	Count       uint64         `mapstructure:"count"`
	Duration    time.Duration  `mapstructure:"duration"`
	Concurrency uint64         `mapstructure:"concurrency"`
	Rate        int            `mapstructure:"rate"`
	JSONOutput  bool           `mapstructure:"json_output"`
	Dashboard   bool           `mapstructure:"dashboard"`
	ReportFile  string         `mapstructure:"report_file"`
	ListenAddr  string         `mapstructure:"listen"`
	Tracing     tracing.Config `mapstructure:"tracing"`
	ConfigFile  string         `mapstructure:"-"`
}

// ValidationError aggregates every configuration issue found so the user
// can fix them in one pass.
type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

// Issues returns the individual validation problems.
func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

// Validate checks a write-command configuration.
func (c Config) Validate() error {
	var issues []string

	if strings.TrimSpace(c.Target) == "" {
		issues = append(issues, "target is required (use --help for usage information)")
	}
	if _, err := protocol.Parse(c.Protocol); err != nil {
		issues = append(issues, err.Error())
	}
	if c.Duration < 0 {
		issues = append(issues, "duration must be >= 0")
	}
	if c.Rate < 0 {
		issues = append(issues, "rate must be >= 0")
	}
	if strings.TrimSpace(c.Payload) != "" && strings.TrimSpace(c.PayloadFile) != "" {
		issues = append(issues, "payload and payload-file are mutually exclusive")
	}
	if c.Dashboard && c.JSONOutput {
		issues = append(issues, "dashboard and json-output are mutually exclusive")
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1.0 {
		issues = append(issues, "tracing sample_rate must be between 0.0 and 1.0")
	}

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}
	return nil
}
