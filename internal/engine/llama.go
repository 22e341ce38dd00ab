//go:build llama

package engine

import (
	"context"
	"errors"
	"iter"
	"strings"
	"sync"

	llama "github.com/go-skynet/go-llama.cpp"
)

// llamaBuilt indicates this binary was compiled with real llama support.
const llamaBuilt = true

// llamaEngine owns at most one loaded go-llama.cpp model.
type llamaEngine struct {
	params Params

	mu    sync.Mutex
	model *llama.LLama
}

// NewLlama returns the in-process llama.cpp engine.
func NewLlama(p Params) Engine {
	return &llamaEngine{params: p}
}

func (e *llamaEngine) Load(path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("model path is empty")
	}
	m, err := llama.New(path, llama.SetContext(zn(e.params.ContextSize, 1024)))
	if err != nil {
		return err
	}
	e.mu.Lock()
	old := e.model
	e.model = m
	e.mu.Unlock()
	if old != nil {
		old.Free()
	}
	return nil
}

func (e *llamaEngine) Unload() error {
	e.mu.Lock()
	m := e.model
	e.model = nil
	e.mu.Unlock()
	if m != nil {
		m.Free()
	}
	return nil
}

func (e *llamaEngine) Generate(ctx context.Context, prompt string, formatChat bool) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		e.mu.Lock()
		m := e.model
		e.mu.Unlock()
		if m == nil {
			yield("", errors.New("llama model not initialized"))
			return
		}
		if formatChat {
			prompt = FormatChat(prompt)
		}
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		// Predict blocks; bridge its token callback onto a channel so the
		// consumer drives iteration one fragment at a time.
		tokens := make(chan string)
		done := make(chan error, 1)
		m.SetTokenCallback(func(tok string) bool {
			select {
			case tokens <- tok:
				return true
			case <-ctx.Done():
				return false
			}
		})
		go func() {
			_, err := m.Predict(prompt, predictOptions(e.params)...)
			close(tokens)
			done <- err
		}()
		for tok := range tokens {
			if !yield(tok, nil) {
				cancel()
				for range tokens {
				}
				<-done
				return
			}
		}
		if err := <-done; err != nil && ctx.Err() == nil {
			yield("", err)
		}
	}
}

func zn(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func zf(v, def float32) float32 {
	if v > 0 {
		return v
	}
	return def
}

// predictOptions converts Params into go-llama.cpp options.
func predictOptions(p Params) []llama.PredictOption {
	po := []llama.PredictOption{
		llama.SetTokens(zn(p.MaxTokens, 256)),
		llama.SetThreads(zn(p.Threads, 1)),
		llama.SetTopP(zf(p.TopP, llama.DefaultOptions.TopP)),
		llama.SetTopK(zn(p.TopK, llama.DefaultOptions.TopK)),
		llama.SetTemperature(zf(p.Temperature, llama.DefaultOptions.Temperature)),
		llama.SetPenalty(zf(p.RepeatPenalty, llama.DefaultOptions.Penalty)),
	}
	if p.Seed != 0 {
		po = append(po, llama.SetSeed(p.Seed))
	}
	if len(p.Stop) > 0 {
		po = append(po, llama.SetStopWords(p.Stop...))
	}
	return po
}
