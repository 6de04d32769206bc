package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jdockerty/gn/internal/config"
	"github.com/jdockerty/gn/internal/listener"
	"github.com/jdockerty/gn/internal/protocol"
)

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Listen for TCP or UDP traffic and echo received payloads",
		Long: `Listen for TCP or UDP traffic and echo received payloads.

Each received payload is written as one line of text to the output sink,
which defaults to stderr.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	flags := cmd.Flags()
	flags.String("address", "127.0.0.1:5000", "Address to listen on")
	flags.StringP("protocol", "p", "tcp", "Transport protocol: 'tcp' or 'udp'")
	flags.StringP("output", "o", "", "File to write received payloads to (defaults to stderr)")
	flags.String("config", "", "Path to configuration file (JSON or YAML)")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = "127.0.0.1:5000"
	}

	proto, err := protocol.Parse(cfg.Protocol)
	if err != nil {
		return err
	}

	sink := os.Stderr
	if path, _ := cmd.Flags().GetString("output"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open output file: %w", err)
		}
		defer f.Close()
		sink = f
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	srv := listener.New(cfg.ListenAddr, proto, sink)
	if err := srv.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
