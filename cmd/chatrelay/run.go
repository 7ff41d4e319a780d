package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Wartem/llm-chat-lite/pkg/cli"
	"github.com/Wartem/llm-chat-lite/pkg/config"
	"github.com/Wartem/llm-chat-lite/pkg/server"
	"github.com/Wartem/llm-chat-lite/pkg/telemetry/logging"
	"github.com/Wartem/llm-chat-lite/pkg/telemetry/tracing"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the chat relay",
	Long: `Start the chat relay with the specified configuration.

The relay listens on the configured address, serves the chat API and the
static UI, and keeps probing the configured backend instances.

Examples:
  # Start with default config
  chatrelay run

  # Start with custom config
  chatrelay run --config /etc/chatrelay/config.yaml

  # Override listen address
  chatrelay run --listen 0.0.0.0:8080

  # Validate config without starting the relay
  chatrelay run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting the relay")
}

func runServer(cmd *cobra.Command, args []string) error {
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError(cfgFile, err)
	}
	cfg := config.GetConfig()

	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}
	if err := config.Validate(cfg); err != nil {
		return cli.NewConfigError(cfgFile, err)
	}

	logger, err := logging.New(cfg.Telemetry.Logging, os.Stdout)
	if err != nil {
		return cli.NewConfigError(cfgFile, err)
	}
	logger.Install()

	out := cmd.OutOrStdout()
	if runFlags.dryRun {
		fmt.Fprintln(out, "✓ Configuration valid")
		return nil
	}

	printBanner(out, cfg)

	tracer, err := tracing.New(&cfg.Telemetry.Tracing, Version)
	if err != nil {
		return cli.NewCommandError("run", fmt.Errorf("failed to initialize tracing: %w", err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Telemetry.Tracing.Timeout)
		defer cancel()
		if err := tracer.Shutdown(ctx); err != nil {
			slog.Warn("failed to flush traces", "error", err)
		}
	}()

	r, err := buildRelay(cfg)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	fmt.Fprintf(out, "✓ Backends registered (%d instances)\n", len(cfg.Instances))

	ctx, stop := cli.SetupSignalHandler()
	defer stop()

	if err := r.sweeper.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}
	defer r.sweeper.Stop()

	if cfg.Theme.WatchEnabled() {
		go func() {
			if err := r.themes.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				slog.Warn("theme watcher stopped", "error", err)
			}
		}()
	}

	srv := server.New(cfg, server.Dependencies{
		Chat:      r.orchestrator,
		Models:    r.manager,
		Status:    r.manager,
		Theme:     r.themes,
		Health:    r.checker,
		Metrics:   r.collector,
		Version:   Version,
		Commit:    GitCommit,
		BuildTime: BuildDate,
	})

	scheme := "http"
	if cfg.Server.TLS.Enabled() {
		scheme = "https"
	}
	fmt.Fprintf(out, "✓ Listening on %s://%s\n", scheme, cfg.Server.ListenAddress)
	fmt.Fprintf(out, "✓ Health endpoint: %s://%s%s\n", scheme, cfg.Server.ListenAddress, cfg.Telemetry.Health.LivenessPath)
	if cfg.Telemetry.Metrics.IsEnabled() {
		fmt.Fprintf(out, "✓ Metrics endpoint: %s://%s%s\n", scheme, cfg.Server.ListenAddress, cfg.Telemetry.Metrics.Path)
	}
	if cfg.Server.RateLimit.Enabled() {
		fmt.Fprintf(out, "✓ Chat rate limit: %d/min per client, %d concurrent\n",
			cfg.Server.RateLimit.RequestsPerMinute, cfg.Server.RateLimit.MaxConcurrent)
	}
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")

	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}

	fmt.Fprintln(out, "✓ Relay stopped")
	return nil
}

func printBanner(w io.Writer, cfg *config.Config) {
	fmt.Fprintf(w, "chatrelay v%s\n", Version)
	fmt.Fprintf(w, "Loading configuration from: %s\n", cfgFile)
	fmt.Fprintln(w, "✓ Configuration loaded")

	for _, inst := range cfg.Instances {
		slog.Debug("instance configured", "name", inst.Name, "url", inst.URL, "priority", inst.Priority)
	}
	if cfg.Translation.IsEnabled() {
		slog.Debug("translation enabled", "provider_url", cfg.Translation.ProviderURL)
	}
	if cfg.Telemetry.Tracing.Enabled {
		slog.Debug("tracing enabled", "endpoint", cfg.Telemetry.Tracing.Endpoint)
	}
}
