package main

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Wartem/llm-chat-lite/pkg/backend"
	"github.com/Wartem/llm-chat-lite/pkg/chat"
	"github.com/Wartem/llm-chat-lite/pkg/config"
	"github.com/Wartem/llm-chat-lite/pkg/failover"
	"github.com/Wartem/llm-chat-lite/pkg/session"
	"github.com/Wartem/llm-chat-lite/pkg/telemetry/health"
	"github.com/Wartem/llm-chat-lite/pkg/telemetry/metrics"
	"github.com/Wartem/llm-chat-lite/pkg/theme"
	"github.com/Wartem/llm-chat-lite/pkg/translation"
)

// relay holds the wired components of the chat relay.
type relay struct {
	collector    *metrics.Collector
	manager      *failover.Manager
	sweeper      *failover.Sweeper
	gateway      *translation.Gateway
	orchestrator *chat.Orchestrator
	themes       *theme.Store
	checker      *health.Checker
}

// newManager builds the backend client and the failover manager using it.
// recorder may be nil.
func newManager(cfg *config.Config, recorder failover.Recorder) (*backend.Client, *failover.Manager) {
	client := backend.NewClient(backend.Options{
		ProbeTimeout: cfg.Health.ProbeTimeout,
		PullTimeout:  cfg.Models.PullTimeout,
	})

	return client, failover.NewManager(failover.RegistryFromConfig(cfg.Instances), client, failover.Options{
		Freshness:     cfg.Health.Freshness,
		Quarantine:    cfg.Health.Quarantine,
		ModelCacheTTL: cfg.Models.CacheTTL,
		DefaultModel:  cfg.Models.DefaultModel,
		PullOnEmpty:   cfg.Models.PullEnabled(),
		Recorder:      recorder,
	})
}

// newTranslationFactory returns the provider factory for the configured
// translation mode.
func newTranslationFactory(cfg config.TranslationConfig) translation.Factory {
	if !cfg.IsEnabled() {
		return translation.PassthroughFactory()
	}
	return translation.LibreTranslateFactory(cfg.ProviderURL, cfg.APIKey, cfg.RequestTimeout)
}

// buildRelay wires every component from cfg. The default slog logger must
// already be installed; components capture it on construction.
func buildRelay(cfg *config.Config) (*relay, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, registry)

	client, manager := newManager(cfg, collector)

	gateway := translation.NewGateway(newTranslationFactory(cfg.Translation), translation.Options{
		MaxAttempts:      cfg.Translation.MaxAttempts,
		RetryDelay:       cfg.Translation.RetryDelay,
		DetectCacheSize:  cfg.Translation.DetectCacheSize,
		CollapsePrefixes: cfg.Translation.CollapsePrefixes,
		Recorder:         collector,
	})

	orchestrator := chat.NewOrchestrator(manager, client, gateway, session.NewStore(cfg.Chat.HistoryLimit), chat.Options{
		DefaultSession: cfg.Chat.DefaultSession,
		StreamTimeout:  cfg.Chat.StreamTimeout,
		Recorder:       collector,
	})

	themes, err := theme.Open(cfg.Theme.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open theme file: %w", err)
	}

	checker := health.New(cfg.Telemetry.Health.CheckTimeout)
	checker.RegisterCheck("backend", manager.Ready)

	slog.Info("relay components initialized",
		"instances", len(cfg.Instances),
		"translation_enabled", cfg.Translation.IsEnabled(),
		"metrics_enabled", cfg.Telemetry.Metrics.IsEnabled(),
		"theme_file", themes.Path(),
	)

	return &relay{
		collector:    collector,
		manager:      manager,
		sweeper:      failover.NewSweeper(manager, cfg.Health.SweepSchedule),
		gateway:      gateway,
		orchestrator: orchestrator,
		themes:       themes,
		checker:      checker,
	}, nil
}
