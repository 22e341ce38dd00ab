package engine

import (
	"context"
	"errors"
	"iter"
	"path/filepath"
	"sync"
)

// Scripted is an in-memory Engine that replays canned fragments. It records
// every Load/Unload call and tracks how many loads overlap, which makes it
// useful both for tests and for running the daemon without native support.
type Scripted struct {
	mu sync.Mutex

	// Fragments are yielded in order by every Generate call.
	Fragments []string
	// FailAt, when >= 0, yields GenErr instead of the fragment at that index.
	FailAt int
	GenErr error
	// LoadErr maps a model file base name to the error Load returns for it.
	LoadErr   map[string]error
	UnloadErr error
	// Hold, when non-nil, blocks every Load until a value is received or it is closed.
	Hold chan struct{}

	resident   string
	calls      []string
	inLoad     int
	maxInLoad  int
	consumed   int
	loadSignal chan string
}

// NewScripted returns a Scripted engine yielding fragments.
func NewScripted(fragments ...string) *Scripted {
	return &Scripted{Fragments: fragments, FailAt: -1}
}

// LoadStarted returns a channel that receives the base name of each model as
// Load begins. It must be called before the loads of interest.
func (s *Scripted) LoadStarted() <-chan string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadSignal == nil {
		s.loadSignal = make(chan string, 64)
	}
	return s.loadSignal
}

func (s *Scripted) Load(path string) error {
	name := filepath.Base(path)
	s.mu.Lock()
	s.calls = append(s.calls, "load:"+name)
	s.inLoad++
	if s.inLoad > s.maxInLoad {
		s.maxInLoad = s.inLoad
	}
	hold, sig := s.Hold, s.loadSignal
	s.mu.Unlock()
	if sig != nil {
		sig <- name
	}
	if hold != nil {
		<-hold
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inLoad--
	if err := s.LoadErr[name]; err != nil {
		return err
	}
	s.resident = name
	return nil
}

func (s *Scripted) Unload() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "unload")
	s.resident = ""
	return s.UnloadErr
}

func (s *Scripted) Generate(ctx context.Context, prompt string, formatChat bool) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		s.mu.Lock()
		frags := append([]string(nil), s.Fragments...)
		failAt, genErr, resident := s.FailAt, s.GenErr, s.resident
		s.mu.Unlock()
		if resident == "" {
			yield("", errors.New("no model loaded"))
			return
		}
		for i, f := range frags {
			if err := ctx.Err(); err != nil {
				yield("", err)
				return
			}
			if i == failAt {
				if genErr == nil {
					genErr = errors.New("scripted failure")
				}
				yield("", genErr)
				return
			}
			s.mu.Lock()
			s.consumed++
			s.mu.Unlock()
			if !yield(f, nil) {
				return
			}
		}
	}
}

// Calls returns the recorded "load:<name>" / "unload" sequence.
func (s *Scripted) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// Loads returns only the model names passed to Load, in call order.
func (s *Scripted) Loads() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, c := range s.calls {
		if len(c) > 5 && c[:5] == "load:" {
			out = append(out, c[5:])
		}
	}
	return out
}

// MaxConcurrentLoads is the highest number of overlapping Load calls observed.
func (s *Scripted) MaxConcurrentLoads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxInLoad
}

// Consumed is the total number of fragments handed to consumers.
func (s *Scripted) Consumed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.consumed
}

// Resident is the base name of the loaded model, or "".
func (s *Scripted) Resident() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resident
}
