// Package scheduler serializes load requests from many callers onto the
// single residency slot. Requests wait in a priority queue drained by one
// worker goroutine; each caller blocks until its own request is resolved.
package scheduler

import (
	"container/heap"
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"edgellm/internal/catalog"
	"edgellm/internal/events"
)

// ErrSchedulerClosed is returned for requests submitted after, or still queued
// at, Close.
var ErrSchedulerClosed = errors.New("load scheduler closed")

// Swapper is the residency capability the scheduler drives.
type Swapper interface {
	Swap(ctx context.Context, d catalog.Descriptor) error
	IsResidentModel(d catalog.Descriptor) bool
}

// Config wires a Scheduler.
type Config struct {
	Guard  Swapper
	Logger zerolog.Logger
	Events events.Publisher
}

// Scheduler owns the pending-load queue and its drain worker.
type Scheduler struct {
	guard  Swapper
	log    zerolog.Logger
	events events.Publisher

	// mu guards queue, seq and closed. It is never held across a swap.
	mu     sync.Mutex
	queue  requestHeap
	seq    uint64
	closed bool

	wake   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// New constructs a Scheduler and starts its worker. Call Close to stop it.
func New(cfg Config) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		guard:  cfg.Guard,
		log:    cfg.Logger.With().Str("component", "scheduler").Logger(),
		events: events.OrNoop(cfg.Events),
		wake:   make(chan struct{}, 1),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go s.run()
	return s
}

// Submit asks for d to become resident and blocks until that request is
// resolved or ctx ends. A model that is already resident returns nil without
// touching the queue. When ctx ends first, the queued request still runs;
// only the wait is abandoned.
func (s *Scheduler) Submit(ctx context.Context, d catalog.Descriptor) error {
	if s.guard.IsResidentModel(d) {
		requestsTotal.WithLabelValues("resident").Inc()
		return nil
	}
	r := &request{desc: d, done: make(chan error, 1)}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		requestsTotal.WithLabelValues("closed").Inc()
		return ErrSchedulerClosed
	}
	s.seq++
	r.seq = s.seq
	heap.Push(&s.queue, r)
	depth := s.queue.Len()
	s.mu.Unlock()
	queueDepth.Set(float64(depth))
	s.events.Publish(events.Event{Name: events.LoadEnqueued, ModelID: d.Filename, Fields: map[string]any{"priority": d.Priority, "depth": depth}})
	s.trigger()

	select {
	case err := <-r.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pending is the number of queued, not yet started requests.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Len()
}

// Close rejects new work, resolves queued requests with ErrSchedulerClosed and
// waits for an in-flight swap to finish.
func (s *Scheduler) Close() error {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		pending := make([]*request, 0, s.queue.Len())
		for s.queue.Len() > 0 {
			pending = append(pending, heap.Pop(&s.queue).(*request))
		}
		s.mu.Unlock()
		queueDepth.Set(0)
		for _, r := range pending {
			requestsTotal.WithLabelValues("closed").Inc()
			r.resolve(ErrSchedulerClosed)
		}
		s.cancel()
		<-s.done
	})
	return nil
}

// trigger wakes the worker. A wake while one is already pending coalesces.
func (s *Scheduler) trigger() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Scheduler) run() {
	defer close(s.done)
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-s.wake:
			s.drain()
		}
	}
}

// drain processes requests until the queue is empty. Items queued while a
// swap is in progress are picked up by the same drain.
func (s *Scheduler) drain() {
	for {
		s.mu.Lock()
		if s.closed || s.queue.Len() == 0 {
			s.mu.Unlock()
			return
		}
		r := heap.Pop(&s.queue).(*request)
		depth := s.queue.Len()
		s.mu.Unlock()
		queueDepth.Set(float64(depth))
		s.process(r)
	}
}

func (s *Scheduler) process(r *request) {
	if s.guard.IsResidentModel(r.desc) {
		requestsTotal.WithLabelValues("subsumed").Inc()
		r.resolve(nil)
		return
	}
	err := s.guard.Swap(s.ctx, r.desc)
	if err != nil {
		if errors.Is(err, context.Canceled) && s.ctx.Err() != nil {
			err = ErrSchedulerClosed
		}
		requestsTotal.WithLabelValues("failed").Inc()
		s.log.Warn().Str("model", r.desc.Filename).Err(err).Msg("load request failed")
		r.resolve(err)
		return
	}
	requestsTotal.WithLabelValues("loaded").Inc()
	r.resolve(nil)

	// Queued requests for the same model are satisfied by this swap.
	s.mu.Lock()
	same := s.queue.extract(r.desc.Filename)
	depth := s.queue.Len()
	s.mu.Unlock()
	if len(same) == 0 {
		return
	}
	queueDepth.Set(float64(depth))
	for _, o := range same {
		requestsTotal.WithLabelValues("subsumed").Inc()
		s.events.Publish(events.Event{Name: events.LoadSubsumed, ModelID: o.desc.Filename})
		o.resolve(nil)
	}
}
