package failover

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Wartem/llm-chat-lite/pkg/backend"
	"github.com/Wartem/llm-chat-lite/pkg/telemetry/tracing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Backend is the subset of the instance client the manager needs.
type Backend interface {
	Probe(ctx context.Context, baseURL string) (backend.ProbeResult, error)
	Pull(ctx context.Context, baseURL, model string) error
}

// Recorder receives failover metrics.
type Recorder interface {
	RecordProbe(instance string, healthy bool, duration time.Duration)
	RecordSelection(instance, reason string)
	SetInstanceHealth(instance string, healthy bool)
	SetQuarantined(count int)
	RecordModelCache(hit bool)
}

type nopRecorder struct{}

func (nopRecorder) RecordProbe(string, bool, time.Duration) {}
func (nopRecorder) RecordSelection(string, string) {}
func (nopRecorder) SetInstanceHealth(string, bool) {}
func (nopRecorder) SetQuarantined(int) {}
func (nopRecorder) RecordModelCache(bool) {}

// Manager implements instance selection, model discovery and status
// reporting over a fixed registry.
type Manager struct {
	registry   *Registry
	backend    Backend
	health     *HealthCache
	quarantine *Quarantine
	models     *ModelCache
	opts       Options
	now        func() time.Time
	recorder   Recorder
	logger     *slog.Logger

	currentMu sync.RWMutex
	current   *Instance
}

// NewManager creates a Manager. Zero durations in opts fall back to 30s
// freshness, 60s quarantine and a 30s model cache.
func NewManager(registry *Registry, b Backend, opts Options) *Manager {
	if opts.Freshness <= 0 {
		opts.Freshness = 30 * time.Second
	}
	if opts.Quarantine <= 0 {
		opts.Quarantine = 60 * time.Second
	}
	if opts.ModelCacheTTL <= 0 {
		opts.ModelCacheTTL = 30 * time.Second
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}
	var recorder Recorder = nopRecorder{}
	if opts.Recorder != nil {
		recorder = opts.Recorder
	}

	return &Manager{
		registry:   registry,
		backend:    b,
		health:     NewHealthCache(),
		quarantine: NewQuarantine(),
		models:     NewModelCache(opts.ModelCacheTTL),
		opts:       opts,
		now:        now,
		recorder:   recorder,
		logger:     slog.Default().With("component", "failover"),
	}
}

// Registry returns the instance registry.
func (m *Manager) Registry() *Registry {
	return m.registry
}

// Current returns the instance currently selected, if any.
func (m *Manager) Current() (Instance, bool) {
	m.currentMu.RLock()
	defer m.currentMu.RUnlock()
	if m.current == nil {
		return Instance{}, false
	}
	return *m.current, true
}

func (m *Manager) setCurrent(inst Instance) {
	m.currentMu.Lock()
	defer m.currentMu.Unlock()
	m.current = &inst
}

// HealthyInstance returns the instance that should serve the next request.
//
// The current instance is returned without a probe while its health record
// is fresh, healthy and it is not quarantined. Otherwise the registry is walked in priority order, skipping
// quarantined instances and probing those whose record is stale. If the
// walk finds nothing, the previous current instance is returned even though
// it is stale. A *NoBackendError is returned only when no instance was ever
// selected.
func (m *Manager) HealthyInstance(ctx context.Context) (Instance, error) {
	now := m.now()

	if cur, ok := m.Current(); ok {
		rec, fresh := m.health.Fresh(cur.URL, now, m.opts.Freshness)
		if fresh && rec.Healthy && !m.quarantine.Contains(cur.URL, now) {
			m.recorder.RecordSelection(cur.Name, ReasonSticky)
			return cur, nil
		}
	}

	m.recorder.SetQuarantined(m.quarantine.Evict(now))

	var attempted []string
	skipped := 0

	for _, inst := range m.registry.Instances() {
		if m.quarantine.Contains(inst.URL, now) {
			skipped++
			continue
		}

		if rec, fresh := m.health.Fresh(inst.URL, now, m.opts.Freshness); fresh {
			if rec.Healthy {
				m.setCurrent(inst)
				m.recorder.RecordSelection(inst.Name, ReasonFresh)
				m.logger.Info("using recently checked instance", "instance", inst.Name, "url", inst.URL)
				return inst, nil
			}
			continue
		}

		attempted = append(attempted, inst.Name)
		healthy, err := m.probe(ctx, inst, true)
		if err != nil {
			return Instance{}, err
		}
		if healthy {
			m.setCurrent(inst)
			m.recorder.RecordSelection(inst.Name, ReasonProbed)
			m.logger.Info("using instance", "instance", inst.Name, "url", inst.URL, "priority", inst.Priority)
			return inst, nil
		}
	}

	if cur, ok := m.Current(); ok {
		m.recorder.RecordSelection(cur.Name, ReasonFallback)
		m.logger.Warn("no healthy instances found, using last known good instance",
			"instance", cur.Name,
			"attempted", attempted,
		)
		return cur, nil
	}

	m.logger.Error("no healthy instances available", "attempted", attempted, "quarantined", skipped)
	return Instance{}, &NoBackendError{Attempted: attempted, Quarantined: skipped}
}

// probe checks one instance and updates the health cache, the quarantine
// set and, when cacheModels is set, the model cache. No lock is held while
// the request is in flight. A non-nil error means ctx ended and nothing
// was recorded.
func (m *Manager) probe(ctx context.Context, inst Instance, cacheModels bool) (bool, error) {
	ctx, span := otel.Tracer(tracing.InstrumentationName).Start(ctx, "failover.probe")
	defer span.End()
	tracing.SetInstanceAttributes(span, inst.Name, inst.URL)

	started := m.now()
	result, err := m.backend.Probe(ctx, inst.URL)
	at := m.now()

	span.SetAttributes(attribute.Bool(tracing.AttrHealthy, err == nil))
	if err != nil && ctx.Err() != nil {
		return false, fmt.Errorf("probe of %s interrupted: %w", inst.Name, ctx.Err())
	}

	m.recorder.RecordProbe(inst.Name, err == nil, at.Sub(started))
	m.recorder.SetInstanceHealth(inst.Name, err == nil)
	m.health.Record(inst.URL, err == nil, at)

	if err != nil {
		m.quarantine.Add(inst.URL, at.Add(m.opts.Quarantine))
		m.recorder.SetQuarantined(m.quarantine.Len())
		m.logger.Warn("instance failed health check",
			"instance", inst.Name,
			"url", inst.URL,
			"error", err,
		)
		return false, nil
	}

	m.quarantine.Remove(inst.URL)
	m.recorder.SetQuarantined(m.quarantine.Len())

	if cacheModels && result.Listed {
		m.models.Store(inst.URL, result.Models, at)
		m.logger.Debug("cached models during health check", "instance", inst.Name, "models", result.Models)
	}
	return true, nil
}

// AvailableModels returns the model names offered by the current instance.
// A listing younger than the cache TTL is returned without a network call.
// Failures are never surfaced: the last good listing, possibly empty, is
// returned instead.
func (m *Manager) AvailableModels(ctx context.Context) []string {
	if names, fresh := m.models.Get(m.now()); fresh {
		m.recorder.RecordModelCache(true)
		return names
	}
	m.recorder.RecordModelCache(false)

	inst, err := m.HealthyInstance(ctx)
	if err != nil {
		m.logger.Error("cannot list models", "error", err)
		return m.models.Last()
	}

	// Selection may have probed the instance and refreshed the cache already.
	if names, fresh := m.models.Get(m.now()); fresh && m.models.Source() == inst.URL {
		return names
	}

	result, err := m.backend.Probe(ctx, inst.URL)
	if err != nil {
		m.logger.Error("error getting models", "instance", inst.Name, "error", err)
		return m.models.Last()
	}
	if !result.Listed {
		m.logger.Error("instance returned no models field", "instance", inst.Name)
		return m.models.Last()
	}

	m.models.Store(inst.URL, result.Models, m.now())
	m.logger.Info("found models", "instance", inst.Name, "models", result.Models)
	return result.Models
}

// EnsureModel returns a model to chat with: the first listed model, or,
// when the instance lists none and pulls are enabled, the default model
// after the instance accepted a pull request. The pull is attempted once.
func (m *Manager) EnsureModel(ctx context.Context) (string, error) {
	models := m.AvailableModels(ctx)
	if len(models) > 0 {
		return models[0], nil
	}

	if !m.opts.PullOnEmpty || m.opts.DefaultModel == "" {
		return "", ErrNoModel
	}

	inst, err := m.HealthyInstance(ctx)
	if err != nil {
		return "", err
	}

	if err := m.backend.Pull(ctx, inst.URL, m.opts.DefaultModel); err != nil {
		m.logger.Error("error pulling model", "instance", inst.Name, "model", m.opts.DefaultModel, "error", err)
		return "", fmt.Errorf("%w: pull of %q failed: %v", ErrNoModel, m.opts.DefaultModel, err)
	}

	m.logger.Info("pulled model", "instance", inst.Name, "model", m.opts.DefaultModel)
	return m.opts.DefaultModel, nil
}

// Status probes every instance concurrently, ignoring stickiness and
// quarantine, and returns the results in priority order. Health records
// and quarantine are updated with the outcomes. Only the current
// instance's listing is written to the model cache.
func (m *Manager) Status(ctx context.Context) []InstanceStatus {
	instances := m.registry.Instances()
	statuses := make([]InstanceStatus, len(instances))
	cur, hasCurrent := m.Current()

	var wg sync.WaitGroup
	for i, inst := range instances {
		wg.Add(1)
		go func(i int, inst Instance) {
			defer wg.Done()

			isCurrent := hasCurrent && cur.URL == inst.URL
			st := InstanceStatus{
				Name:     inst.Name,
				URL:      inst.URL,
				Priority: inst.Priority,
				Status:   StatusUnhealthy,
				Current:  isCurrent,
			}

			started := m.now()
			result, err := m.backend.Probe(ctx, inst.URL)
			at := m.now()

			if err != nil {
				st.Error = err.Error()
				if ctx.Err() == nil {
					m.recorder.RecordProbe(inst.Name, false, at.Sub(started))
					m.recorder.SetInstanceHealth(inst.Name, false)
					m.health.Record(inst.URL, false, at)
					m.quarantine.Add(inst.URL, at.Add(m.opts.Quarantine))
				}
				statuses[i] = st
				return
			}

			st.Status = StatusHealthy
			st.Models = result.Models
			m.recorder.RecordProbe(inst.Name, true, at.Sub(started))
			m.recorder.SetInstanceHealth(inst.Name, true)
			m.health.Record(inst.URL, true, at)
			m.quarantine.Remove(inst.URL)
			if isCurrent && result.Listed {
				m.models.Store(inst.URL, result.Models, at)
			}
			statuses[i] = st
		}(i, inst)
	}
	wg.Wait()

	m.recorder.SetQuarantined(m.quarantine.Len())
	return statuses
}

// Ready reports whether an instance can be selected. It is registered as a
// readiness check.
func (m *Manager) Ready(ctx context.Context) error {
	_, err := m.HealthyInstance(ctx)
	return err
}
