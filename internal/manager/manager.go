package manager

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"edgellm/internal/catalog"
	"edgellm/internal/engine"
	"edgellm/internal/events"
	"edgellm/internal/generation"
	"edgellm/internal/residency"
	"edgellm/internal/scheduler"
)

// Manager owns the residency guard, the load scheduler and the generation
// pipeline of one process.
type Manager struct {
	cat        *catalog.Catalog
	guard      *residency.Guard
	sched      *scheduler.Scheduler
	pipe       *generation.Pipeline
	modelsDir  string
	engineName string
	log        zerolog.Logger

	history *events.Memory
	sink    events.Publisher
	loads   atomic.Uint64

	startTime time.Time

	mu      sync.RWMutex
	lastErr string
	closed  bool
}

// New constructs a Manager with default settings around eng.
func New(cat *catalog.Catalog, eng engine.Engine, modelsDir string) (*Manager, error) {
	return NewWithConfig(Config{Catalog: cat, Engine: eng, ModelsDir: modelsDir})
}

// NewWithConfig constructs a Manager from Config. The load scheduler's worker
// starts immediately; call Close to stop it.
func NewWithConfig(cfg Config) (*Manager, error) {
	if cfg.Engine == nil {
		return nil, errors.New("manager: engine is required")
	}
	cfg = cfg.withDefaults()
	m := &Manager{
		cat:        cfg.Catalog,
		modelsDir:  cfg.ModelsDir,
		engineName: cfg.EngineName,
		log:        cfg.Logger.With().Str("component", "manager").Logger(),
		history:    events.NewMemory(cfg.EventHistory),
		sink:       events.OrNoop(cfg.Events),
		startTime:  time.Now(),
	}
	m.guard = residency.NewGuard(residency.Config{
		Engine:    cfg.Engine,
		ModelsDir: cfg.ModelsDir,
		Logger:    cfg.Logger,
		Events:    m,
	})
	m.sched = scheduler.New(scheduler.Config{Guard: m.guard, Logger: cfg.Logger, Events: m})
	m.pipe = generation.New(generation.Config{
		Engine:     cfg.Engine,
		Residency:  m.guard,
		Thresholds: cfg.Thresholds,
		FormatChat: cfg.FormatChat,
		Logger:     cfg.Logger,
		Events:     m,
	})
	return m, nil
}

// Publish records e in the bounded history, updates counters and forwards it
// to the configured sink.
func (m *Manager) Publish(e events.Event) {
	switch e.Name {
	case events.SwapDone:
		m.loads.Add(1)
	case events.SwapFailed, events.UnloadFailed:
		if msg, ok := e.Fields["error"].(string); ok {
			m.setErr(fmt.Sprintf("%s %s: %s", e.Name, e.ModelID, msg))
		}
	}
	m.history.Publish(e)
	m.sink.Publish(e)
}

// Events returns the recent lifecycle events, oldest first.
func (m *Manager) Events() []events.Event { return m.history.Events() }

// Catalog returns the model catalog.
func (m *Manager) Catalog() *catalog.Catalog { return m.cat }

// Thresholds returns the effective generation stop thresholds.
func (m *Manager) Thresholds() generation.Thresholds { return m.pipe.Thresholds() }

func (m *Manager) setErr(msg string) {
	m.mu.Lock()
	m.lastErr = msg
	m.mu.Unlock()
}

func (m *Manager) isClosed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}

// RequestLoad blocks until d is resident or its load request fails. A model
// that is already resident returns immediately. If ctx ends first, ctx.Err()
// is returned and the queued request still runs.
func (m *Manager) RequestLoad(ctx context.Context, d catalog.Descriptor) error {
	if m.isClosed() {
		return ErrClosed
	}
	err := m.sched.Submit(ctx, d)
	if err != nil && ctx.Err() == nil {
		m.setErr(err.Error())
		m.log.Warn().Str("model", d.Filename).Err(err).Msg("load request failed")
	}
	return err
}

// RequestLoadByName looks filename up in the catalog and requests it.
func (m *Manager) RequestLoadByName(ctx context.Context, filename string) error {
	d, err := m.cat.Lookup(filename)
	if err != nil {
		return err
	}
	return m.RequestLoad(ctx, d)
}

// RequestLoadFor requests the catalog model for category c and perspective p.
func (m *Manager) RequestLoadFor(ctx context.Context, c catalog.Category, p catalog.Perspective) error {
	d, ok := m.cat.For(c, p)
	if !ok {
		return catalog.ErrUnknownModel(string(c) + "/" + string(p))
	}
	return m.RequestLoad(ctx, d)
}

// IsResident reports whether any model occupies the slot.
func (m *Manager) IsResident() bool { return m.guard.IsResident() }

// CurrentResident returns the resident model, if any.
func (m *Manager) CurrentResident() (catalog.Descriptor, bool) { return m.guard.Current() }

// Generate streams a generation for prompt against the resident model. It
// never loads a model; an empty slot ends the stream with an Error event.
func (m *Manager) Generate(ctx context.Context, prompt string, p catalog.Perspective) iter.Seq[generation.Event] {
	if m.isClosed() {
		return func(yield func(generation.Event) bool) {
			if !yield(generation.Event{Kind: generation.KindLoading}) {
				return
			}
			yield(generation.Event{Kind: generation.KindError, Message: ErrClosed.Error(), Err: ErrClosed})
		}
	}
	return m.pipe.Generate(ctx, prompt, p)
}

// Unload vacates the slot.
func (m *Manager) Unload(ctx context.Context) error {
	if m.isClosed() {
		return ErrClosed
	}
	return m.guard.Unload(ctx)
}

// Ready reports whether the manager accepts requests.
func (m *Manager) Ready() bool { return !m.isClosed() }

// Close stops the scheduler, failing queued requests, and unloads the
// resident model. It is safe to call more than once.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	err := m.sched.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if uerr := m.guard.Unload(ctx); uerr != nil && err == nil {
		err = uerr
	}
	m.log.Info().Msg("manager closed")
	return err
}
