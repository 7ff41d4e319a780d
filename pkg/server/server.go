package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/Wartem/llm-chat-lite/pkg/certs"
	"github.com/Wartem/llm-chat-lite/pkg/config"
	"github.com/Wartem/llm-chat-lite/pkg/proxy/handlers"
	"github.com/Wartem/llm-chat-lite/pkg/proxy/middleware"
	"github.com/Wartem/llm-chat-lite/pkg/ratelimit"
	"github.com/Wartem/llm-chat-lite/pkg/telemetry/health"
	"github.com/Wartem/llm-chat-lite/pkg/telemetry/metrics"
	"github.com/Wartem/llm-chat-lite/pkg/telemetry/tracing"
)

// Dependencies are the services the HTTP surface is built on.
type Dependencies struct {
	Chat   handlers.ChatService
	Models handlers.ModelLister
	Status handlers.StatusReporter

	// Theme enables the theme endpoints. Optional.
	Theme handlers.ThemeStore

	// Health serves /health and /ready. Optional.
	Health *health.Checker

	// Metrics serves the metrics endpoint and records request metrics. Optional.
	Metrics *metrics.Collector

	// Build information reported by /version.
	Version   string
	Commit    string
	BuildTime string
}

// Server is the HTTP server of the chat relay.
type Server struct {
	config     *config.Config
	deps       Dependencies
	httpServer *http.Server
	listener   net.Listener
	logger     *slog.Logger

	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// New creates a server. Routes are built on Start or Handler.
func New(cfg *config.Config, deps Dependencies) *Server {
	return &Server{
		config: cfg,
		deps:   deps,
		logger: slog.Default().With("component", "server"),
	}
}

// Start listens on the configured address and serves until ctx is
// cancelled or the server fails. Cancellation triggers a graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}

	cfg := s.config.Server
	ln, err := net.Listen("tcp", cfg.ListenAddress)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on %s: %w", cfg.ListenAddress, err)
	}

	if cfg.TLS.Enabled() {
		reloader, err := certs.NewReloader(cfg.TLS.CertFile, cfg.TLS.KeyFile)
		if err != nil {
			ln.Close()
			s.mu.Unlock()
			return fmt.Errorf("failed to load TLS certificate: %w", err)
		}
		if cfg.TLS.WatchEnabled() {
			go func() {
				if err := reloader.Watch(ctx); err != nil {
					s.logger.Error("certificate watcher stopped", "error", err)
				}
			}()
		}
		ln = tls.NewListener(ln, certs.ServerConfig(reloader, cfg.TLS.MinVersion))
	}

	s.listener = ln
	// A zero WriteTimeout keeps event streams open; the orchestrator bounds them.
	s.httpServer = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}
	s.isRunning = true
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting chat relay", "address", ln.Addr().String(), "tls", cfg.TLS.Enabled())

		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
		close(errChan)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case err, ok := <-errChan:
		if !ok {
			return nil
		}
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		return err
	}
}

// Shutdown gracefully stops the server, waiting up to the configured
// shutdown timeout for open requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.RLock()
		running := s.isRunning
		s.mu.RUnlock()
		if !running {
			return
		}

		timeout := s.config.Server.ShutdownTimeout
		s.logger.Info("initiating graceful shutdown", "timeout", timeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("error during server shutdown", "error", err)
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("chat relay stopped")
	})

	return shutdownErr
}

// Addr returns the listening address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := s.routes()

	route := func(r *http.Request) string {
		_, pattern := mux.Handler(r)
		return pattern
	}

	var recorder middleware.Recorder
	if s.deps.Metrics != nil {
		recorder = s.deps.Metrics
	}

	var handler http.Handler = mux
	handler = middleware.CORSMiddleware(s.config.Server.CORS)(handler)
	handler = tracing.HTTPMiddleware(route)(handler)
	handler = middleware.RequestIDMiddleware(handler)
	handler = middleware.LoggingMiddleware(recorder, route)(handler)

	// Recovery middleware (outermost)
	handler = middleware.RecoveryMiddleware(handler)

	return handler
}

// routes registers every endpoint on a new mux.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	limit := s.chatLimit()
	chat := limit(handlers.NewChatHandler(s.deps.Chat))
	mux.Handle("GET /api/chat", chat)
	mux.Handle("POST /api/chat", chat)
	mux.Handle("GET /api/chat/ws", limit(handlers.NewWebSocketHandler(s.deps.Chat, s.config.Server.CORS.AllowedOrigins)))
	mux.Handle("POST /api/reset", handlers.ResetHandler(s.deps.Chat))
	mux.Handle("GET /api/models", handlers.ModelsHandler(s.deps.Models))
	mux.Handle("GET /api/status", handlers.StatusHandler(s.deps.Status))

	if s.deps.Theme != nil {
		mux.Handle("GET /api/theme", handlers.GetThemeHandler(s.deps.Theme))
		mux.Handle("POST /api/theme/{name}", handlers.SetThemeHandler(s.deps.Theme))
	}

	if s.deps.Health != nil {
		s.deps.Health.Register(mux, s.config.Telemetry.Health, s.deps.Version, s.deps.Commit, s.deps.BuildTime)
	}

	if s.deps.Metrics != nil && s.config.Telemetry.Metrics.IsEnabled() {
		mux.Handle("GET "+s.config.Telemetry.Metrics.Path, s.deps.Metrics.Handler())
	}

	if dir := s.config.Server.StaticDir; dir != "" {
		mux.Handle("GET /", http.FileServer(http.Dir(dir)))
	}

	return mux
}

// chatLimit returns the per-client limiter for chat endpoints, or the
// identity when no limit is configured.
func (s *Server) chatLimit() func(http.Handler) http.Handler {
	cfg := s.config.Server.RateLimit
	if !cfg.Enabled() {
		return func(h http.Handler) http.Handler { return h }
	}

	limiter := ratelimit.New(ratelimit.Config{
		RequestsPerMinute: cfg.RequestsPerMinute,
		Burst:             cfg.Burst,
		MaxConcurrent:     cfg.MaxConcurrent,
		IdleTTL:           cfg.IdleTTL,
	})

	var recorder middleware.RateLimitRecorder
	if s.deps.Metrics != nil {
		recorder = s.deps.Metrics
	}
	return middleware.RateLimitMiddleware(limiter, recorder)
}
