package failover

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Sweeper re-runs instance selection and model listing on a cron schedule
// so request handlers find warm caches. It is optional; selection works
// the same without it.
type Sweeper struct {
	manager  *Manager
	schedule string
	cron     *cron.Cron
	mu       sync.Mutex
	logger   *slog.Logger
	running  bool
}

// NewSweeper creates a sweeper for the given cron schedule
// (e.g. "@every 30s" or "*/1 * * * *").
func NewSweeper(manager *Manager, schedule string) *Sweeper {
	return &Sweeper{
		manager:  manager,
		schedule: schedule,
		cron:     cron.New(),
		logger:   slog.Default().With("component", "failover.sweeper"),
	}
}

// Start schedules the sweep. An empty schedule leaves the sweeper idle.
// The sweeper stops when ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == "" {
		s.logger.Info("health sweep not configured, skipping")
		return nil
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}

	if _, err := s.cron.AddFunc(s.schedule, func() {
		s.sweep(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule health sweep: %w", err)
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("health sweep started", "schedule", s.schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// sweep runs one selection pass followed by a model listing.
func (s *Sweeper) sweep(ctx context.Context) {
	started := time.Now()

	inst, err := s.manager.HealthyInstance(ctx)
	if err != nil {
		s.logger.Warn("health sweep found no instance", "error", err)
		return
	}

	models := s.manager.AvailableModels(ctx)
	s.logger.Debug("health sweep completed",
		"instance", inst.Name,
		"models", len(models),
		"duration", time.Since(started),
	)
}

// Stop stops the sweeper and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		<-s.cron.Stop().Done()
		s.running = false
		s.logger.Info("health sweep stopped")
	}
}

// IsRunning reports whether the sweeper is scheduled.
func (s *Sweeper) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the next scheduled sweep, or nil when idle.
func (s *Sweeper) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
