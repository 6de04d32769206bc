package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"

	"github.com/jdockerty/gn/internal/config"
	"github.com/jdockerty/gn/internal/dashboard"
	"github.com/jdockerty/gn/internal/engine"
	"github.com/jdockerty/gn/internal/output"
	"github.com/jdockerty/gn/internal/protocol"
	"github.com/jdockerty/gn/internal/tracing"
)

const progressInterval = time.Second

func newWriteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "write [input]",
		Short: "Write a payload to a host over TCP or UDP",
		Long: `Write a payload to a host over TCP or UDP.

The input argument is the payload to send and defaults to "-", which reads
the payload from stdin. How many writes are issued, for how long, and across
how many concurrent workers is derived from --count, --duration and
--concurrency.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runWrite,
	}

	flags := cmd.Flags()
	flags.String("host", "", "Target address to write to (host:port)")
	flags.StringP("protocol", "p", "tcp", "Transport protocol: 'tcp' or 'udp'")
	flags.Uint64P("count", "c", 1, "Number of writes to issue per resolved address")
	flags.DurationP("duration", "d", 0, "How long to keep writing (e.g. 30s, 1m)")
	flags.Uint64("concurrency", 0, "Number of concurrent workers (0 means sequential)")
	flags.IntP("rate", "r", 0, "Write attempts per second limit (0 means unlimited)")
	flags.String("payload-file", "", "Path to a file containing the payload")
	flags.Bool("json-output", false, "Emit JSON formatted output")
	flags.Bool("dashboard", false, "Show live terminal dashboard while writing")
	flags.String("report-file", "", "Append a JSON report line to the given file")
	flags.String("config", "", "Path to configuration file (JSON or YAML)")
	flags.String("tracing-endpoint", "", "OTLP endpoint for trace export")
	flags.Bool("tracing-insecure", false, "Skip TLS when exporting traces")
	return cmd
}

func runWrite(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	input := "-"
	if len(args) == 1 {
		input = args[0]
	}
	payload, err := resolvePayload(cfg, input, cmd.InOrStdin())
	if err != nil {
		return err
	}

	proto, err := protocol.Parse(cfg.Protocol)
	if err != nil {
		return err
	}
	policy := engine.FromFlags(cfg.Count, cfg.Duration, cfg.Concurrency)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	provider, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer provider.Shutdown(context.Background())

	opts := engine.Options{
		Target:        cfg.Target,
		Payload:       payload,
		Protocol:      proto,
		Policy:        policy,
		RatePerSecond: cfg.Rate,
	}
	if provider.Enabled() {
		opts.Tracer = provider.Tracer()
	}
	eng := engine.New(opts)

	runID := ulid.Make().String()

	var dash *dashboard.Dashboard
	if cfg.Dashboard {
		dash, err = dashboard.New(eng.Stats(), dashboard.RunConfig{
			Target:      cfg.Target,
			Protocol:    proto.String(),
			Policy:      policy.String(),
			Rate:        cfg.Rate,
			PayloadSize: len(payload),
		}, cancel)
		if err != nil {
			return err
		}
		dash.Start()
		defer dash.Stop()
	}

	var progress *output.ProgressReporter
	if !cfg.JSONOutput && !cfg.Dashboard {
		progress = output.NewProgressReporter(eng.Stats(), progressInterval, os.Stdout)
		progress.Start()
		defer func() {
			progress.Stop()
			fmt.Fprintln(os.Stdout)
		}()
	}

	if _, err := eng.Write(ctx); err != nil {
		return err
	}

	report := eng.Stats().Snapshot(eng.Stats().Elapsed())
	report.RunID = runID
	report.Target = cfg.Target
	report.Protocol = proto.String()

	if cfg.JSONOutput {
		if err := output.PrintJSONReport(os.Stdout, report); err != nil {
			return err
		}
	} else {
		output.PrintReport(os.Stdout, report)
	}

	if cfg.ReportFile != "" {
		if err := output.WriteReportFile(cfg.ReportFile, report); err != nil {
			return err
		}
	}

	if report.Failures > 0 {
		return fmt.Errorf("%d write attempts failed", report.Failures)
	}
	return nil
}

// resolvePayload picks the payload bytes from, in order of precedence, the
// configured payload file, a literal input argument, the config file's
// payload value, and finally stdin.
func resolvePayload(cfg *config.Config, input string, stdin io.Reader) ([]byte, error) {
	switch {
	case cfg.PayloadFile != "":
		data, err := os.ReadFile(cfg.PayloadFile)
		if err != nil {
			return nil, fmt.Errorf("read payload file: %w", err)
		}
		return data, nil
	case input != "-":
		return []byte(input), nil
	case cfg.Payload != "":
		return []byte(cfg.Payload), nil
	default:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read payload from stdin: %w", err)
		}
		return data, nil
	}
}
