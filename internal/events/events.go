// Package events carries lifecycle notifications out of the residency guard,
// load scheduler and generation pipeline.
package events

// Event represents a lifecycle event.
// Minimal and stable: name + model filename and optional fields via key/values.
type Event struct {
	Name    string
	ModelID string
	Fields  map[string]any
}

// Well-known event names.
const (
	LoadEnqueued          = "load_enqueued"
	LoadSubsumed          = "load_subsumed"
	SwapStart             = "swap_start"
	SwapDone              = "swap_done"
	SwapFailed            = "swap_failed"
	UnloadFailed          = "unload_failed"
	Unloaded              = "unloaded"
	EvictDuringGeneration = "evict_during_generation"
	GenerationStopped     = "generation_stopped"
)

// Publisher receives events. Implementations should be lightweight and
// non-blocking; Publish must not panic.
type Publisher interface {
	Publish(Event)
}

// Noop drops events.
type Noop struct{}

func (Noop) Publish(Event) {}

// OrNoop returns p, or Noop when p is nil.
func OrNoop(p Publisher) Publisher {
	if p == nil {
		return Noop{}
	}
	return p
}
