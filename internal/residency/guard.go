// Package residency owns the single in-memory inference slot. A Guard is the
// only place where the native engine's resident model changes: every swap runs
// under one process-wide exclusive section, and readers observe either the
// previous occupant, an empty slot, or the new occupant.
package residency

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"edgellm/internal/catalog"
	"edgellm/internal/common/fsutil"
	"edgellm/internal/engine"
	"edgellm/internal/events"
)

// Config wires a Guard to its collaborators.
type Config struct {
	Engine    engine.Engine
	ModelsDir string
	Logger    zerolog.Logger
	Events    events.Publisher
}

// Guard serializes load/unload against the native engine and tracks the
// resident model. Construct exactly one per process and share it.
type Guard struct {
	eng    engine.Engine
	root   string
	log    zerolog.Logger
	events events.Publisher

	// sem is held for the whole unload+load sequence.
	sem *semaphore.Weighted

	mu      sync.RWMutex
	current *catalog.Descriptor
	loaded  bool

	users atomic.Int64
}

// NewGuard constructs an empty Guard.
func NewGuard(cfg Config) *Guard {
	return &Guard{
		eng:    cfg.Engine,
		root:   cfg.ModelsDir,
		log:    cfg.Logger.With().Str("component", "residency").Logger(),
		events: events.OrNoop(cfg.Events),
		sem:    semaphore.NewWeighted(1),
	}
}

// Engine returns the engine the guard drives.
func (g *Guard) Engine() engine.Engine { return g.eng }

// IsResident reports whether any model occupies the slot.
func (g *Guard) IsResident() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.loaded
}

// Current returns the resident descriptor, if any.
func (g *Guard) Current() (catalog.Descriptor, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.loaded || g.current == nil {
		return catalog.Descriptor{}, false
	}
	return *g.current, true
}

// IsResidentModel reports whether d is the resident model.
func (g *Guard) IsResidentModel(d catalog.Descriptor) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.loaded && g.current != nil && g.current.Same(d)
}

// BeginUse marks a generation session reading from the resident model. The
// returned func must be called when the session ends. Swaps do not wait for
// users; evicting under an active session is reported, not prevented.
func (g *Guard) BeginUse() func() {
	g.users.Add(1)
	var once sync.Once
	return func() { once.Do(func() { g.users.Add(-1) }) }
}

// ActiveUsers is the number of open BeginUse sessions.
func (g *Guard) ActiveUsers() int { return int(g.users.Load()) }

// setState publishes a new slot state. loaded implies d != nil.
func (g *Guard) setState(d *catalog.Descriptor) {
	g.mu.Lock()
	g.current = d
	g.loaded = d != nil
	g.mu.Unlock()
	if d != nil {
		residentGauge.Set(1)
	} else {
		residentGauge.Set(0)
	}
}

// Swap makes target the resident model. Only waiting for exclusive access
// honours ctx; once the swap has started it runs to completion.
//
// Errors: MissingFile when the model file cannot be resolved (the engine is
// not called and the slot is left empty), EngineFailure when the native load
// fails (slot left empty).
func (g *Guard) Swap(ctx context.Context, target catalog.Descriptor) error {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer g.sem.Release(1)

	g.mu.RLock()
	cur, loaded := g.current, g.loaded
	g.mu.RUnlock()
	if loaded && cur != nil && cur.Same(target) {
		swapsTotal.WithLabelValues("noop").Inc()
		return nil
	}

	g.events.Publish(events.Event{Name: events.SwapStart, ModelID: target.Filename, Fields: map[string]any{"from": filenameOf(cur)}})
	if loaded {
		g.evictLocked(*cur)
	}

	fi, err := fsutil.ResolveModelPath(g.root, target.Filename)
	if err != nil {
		swapsTotal.WithLabelValues("missing_file").Inc()
		g.log.Warn().Str("model", target.Filename).Err(err).Msg("model file missing")
		g.events.Publish(events.Event{Name: events.SwapFailed, ModelID: target.Filename, Fields: map[string]any{"reason": "missing_file"}})
		return missingFileError{filename: target.Filename, err: err}
	}

	start := time.Now()
	if err := g.eng.Load(fi.Path); err != nil {
		swapsTotal.WithLabelValues("engine_failure").Inc()
		g.log.Error().Str("model", target.Filename).Str("path", fi.Path).Err(err).Msg("native load failed")
		g.events.Publish(events.Event{Name: events.SwapFailed, ModelID: target.Filename, Fields: map[string]any{"reason": "engine_failure", "error": err.Error()}})
		return engineFailureError{filename: target.Filename, err: err}
	}
	dur := time.Since(start)
	swapDuration.Observe(dur.Seconds())
	swapsTotal.WithLabelValues("loaded").Inc()

	t := target
	g.setState(&t)
	g.log.Info().Str("model", target.Filename).Int64("size_bytes", fi.Size).Dur("dur", dur).Msg("model resident")
	g.events.Publish(events.Event{Name: events.SwapDone, ModelID: target.Filename, Fields: map[string]any{"duration_ms": dur.Milliseconds()}})
	return nil
}

// Unload vacates the slot. It is a no-op when nothing is resident.
func (g *Guard) Unload(ctx context.Context) error {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer g.sem.Release(1)
	g.mu.RLock()
	cur, loaded := g.current, g.loaded
	g.mu.RUnlock()
	if !loaded {
		return nil
	}
	g.evictLocked(*cur)
	return nil
}

// evictLocked unloads old best-effort and clears the slot. Caller holds sem.
func (g *Guard) evictLocked(old catalog.Descriptor) {
	if n := g.users.Load(); n > 0 {
		// Accepted race: sessions reading from old are not notified.
		g.log.Warn().Str("model", old.Filename).Int64("sessions", n).Msg("evicting model with active generation sessions")
		g.events.Publish(events.Event{Name: events.EvictDuringGeneration, ModelID: old.Filename, Fields: map[string]any{"sessions": n}})
	}
	if err := g.eng.Unload(); err != nil {
		unloadFailuresTotal.Inc()
		g.log.Warn().Str("model", old.Filename).Err(err).Msg("unload failed; slot considered vacated")
		g.events.Publish(events.Event{Name: events.UnloadFailed, ModelID: old.Filename, Fields: map[string]any{"error": err.Error()}})
	}
	g.setState(nil)
	g.events.Publish(events.Event{Name: events.Unloaded, ModelID: old.Filename})
}

func filenameOf(d *catalog.Descriptor) string {
	if d == nil {
		return ""
	}
	return d.Filename
}
