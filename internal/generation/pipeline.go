// Package generation turns the engine's raw fragment stream into a bounded,
// cleaned answer. A Session accumulates fragments and evaluates the
// perspective's stop predicate; the cleanup and assembly steps are pure
// functions that run once the stream stops.
package generation

import (
	"context"
	"errors"
	"iter"
	"time"

	"github.com/rs/zerolog"

	"edgellm/internal/catalog"
	"edgellm/internal/engine"
	"edgellm/internal/events"
)

// ErrNoModelResident is reported when generation is requested with an empty slot.
var ErrNoModelResident = errors.New("no model resident")

// Resident is the view of the residency slot the pipeline needs.
type Resident interface {
	Current() (catalog.Descriptor, bool)
	BeginUse() func()
}

// Config wires a Pipeline.
type Config struct {
	Engine     engine.Engine
	Residency  Resident
	Thresholds Thresholds
	// FormatChat wraps prompts in the chat template before generation.
	FormatChat bool
	Logger     zerolog.Logger
	Events     events.Publisher
}

// Pipeline runs generations against whatever model is resident.
type Pipeline struct {
	eng        engine.Engine
	res        Resident
	th         Thresholds
	formatChat bool
	log        zerolog.Logger
	events     events.Publisher
}

// New constructs a Pipeline.
func New(cfg Config) *Pipeline {
	return &Pipeline{
		eng:        cfg.Engine,
		res:        cfg.Residency,
		th:         cfg.Thresholds.WithDefaults(),
		formatChat: cfg.FormatChat,
		log:        cfg.Logger.With().Str("component", "generation").Logger(),
		events:     events.OrNoop(cfg.Events),
	}
}

// Thresholds returns the effective stop thresholds.
func (p *Pipeline) Thresholds() Thresholds { return p.th }

// Generate streams events for prompt. Iteration is driven by the caller; the
// engine is asked for the next fragment only when the previous event has been
// consumed. Breaking out of the loop or canceling ctx stops the engine.
//
// The resident model is checked once at the start. A swap that evicts it
// mid-stream is not detected here.
func (p *Pipeline) Generate(ctx context.Context, prompt string, perspective catalog.Perspective) iter.Seq[Event] {
	return func(yield func(Event) bool) {
		if !yield(Event{Kind: KindLoading}) {
			return
		}
		d, ok := p.res.Current()
		if !ok {
			failuresTotal.WithLabelValues("no_model").Inc()
			yield(errorEvent(ErrNoModelResident))
			return
		}
		release := p.res.BeginUse()
		defer release()
		if d.Perspective != perspective {
			p.log.Debug().Str("model", d.Filename).Str("model_perspective", string(d.Perspective)).
				Str("perspective", string(perspective)).Msg("perspective differs from resident model")
		}

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		start := time.Now()
		sess := NewSession(perspective, p.th)
		for frag, err := range p.eng.Generate(ctx, prompt, p.formatChat) {
			if err != nil {
				failuresTotal.WithLabelValues("stream").Inc()
				p.log.Warn().Str("model", d.Filename).Int("fragments", sess.TokenCount()).Err(err).Msg("stream failed")
				yield(errorEvent(err))
				return
			}
			stop := sess.Feed(frag)
			if !yield(Event{Kind: KindStreaming, Text: sess.Raw()}) {
				return
			}
			if stop {
				break
			}
		}
		sess.Finish()

		stopsTotal.WithLabelValues(string(perspective), string(sess.Reason())).Inc()
		fragmentsPerGeneration.WithLabelValues(string(perspective)).Observe(float64(sess.TokenCount()))
		p.log.Debug().Str("model", d.Filename).Str("reason", string(sess.Reason())).
			Int("fragments", sess.TokenCount()).Dur("dur", time.Since(start)).Msg("generation finished")
		p.events.Publish(events.Event{Name: events.GenerationStopped, ModelID: d.Filename, Fields: map[string]any{
			"reason": string(sess.Reason()), "fragments": sess.TokenCount(),
		}})
		yield(Event{
			Kind:       KindSuccess,
			Text:       sess.Result(),
			TokenCount: sess.TokenCount(),
			Raw:        sess.Raw(),
			StopReason: sess.Reason(),
		})
	}
}

// Collect drains seq and returns its terminal event. A stream that ends
// without one yields an Error event.
func Collect(seq iter.Seq[Event]) Event {
	for e := range seq {
		if e.Terminal() {
			return e
		}
	}
	return errorEvent(errors.New("generation stream ended without a result"))
}
