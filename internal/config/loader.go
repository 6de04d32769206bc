package config

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jdockerty/gn/internal/tracing"
)

// Defaults returns a Config carrying the documented defaults.
func Defaults() *Config {
	return &Config{
		Protocol: "tcp",
		Count:    1,
		Tracing:  tracing.Config{SampleRate: 1.0},
	}
}

// Load builds a Config from an already-parsed flag set. When --config names
// a file, viper reads it first and explicitly-set flags override the file's
// values.
func Load(flags *pflag.FlagSet) (*Config, error) {
	cfg := Defaults()

	configPath, err := flags.GetString("config")
	if err == nil && configPath != "" {
		v := viper.New()
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := v.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
		cfg.ConfigFile = configPath
	}

	if err := applyFlagOverrides(cfg, flags); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFlagOverrides copies explicitly-set flag values over the config,
// overriding anything loaded from a file.
func applyFlagOverrides(cfg *Config, fs *pflag.FlagSet) error {
	var err error
	set := func(name string, apply func() error) {
		if err != nil || !fs.Changed(name) {
			return
		}
		err = apply()
	}

	set("host", func() error {
		v, e := fs.GetString("host")
		cfg.Target = v
		return e
	})
	set("protocol", func() error {
		v, e := fs.GetString("protocol")
		cfg.Protocol = v
		return e
	})
	set("count", func() error {
		v, e := fs.GetUint64("count")
		cfg.Count = v
		return e
	})
	set("duration", func() error {
		v, e := fs.GetDuration("duration")
		cfg.Duration = v
		return e
	})
	set("concurrency", func() error {
		v, e := fs.GetUint64("concurrency")
		cfg.Concurrency = v
		return e
	})
	set("rate", func() error {
		v, e := fs.GetInt("rate")
		cfg.Rate = v
		return e
	})
	set("payload-file", func() error {
		v, e := fs.GetString("payload-file")
		cfg.PayloadFile = v
		return e
	})
	set("json-output", func() error {
		v, e := fs.GetBool("json-output")
		cfg.JSONOutput = v
		return e
	})
	set("dashboard", func() error {
		v, e := fs.GetBool("dashboard")
		cfg.Dashboard = v
		return e
	})
	set("report-file", func() error {
		v, e := fs.GetString("report-file")
		cfg.ReportFile = v
		return e
	})
	set("address", func() error {
		v, e := fs.GetString("address")
		cfg.ListenAddr = v
		return e
	})
	set("tracing-endpoint", func() error {
		v, e := fs.GetString("tracing-endpoint")
		cfg.Tracing.Endpoint = v
		return e
	})
	set("tracing-insecure", func() error {
		v, e := fs.GetBool("tracing-insecure")
		cfg.Tracing.Insecure = v
		return e
	})
	return err
}
