//go:build !llama

package engine

// This file provides a no-CGO stub for the llama engine. It is compiled when
// the 'llama' build tag is NOT set, keeping default builds and CI CGO-free.

import (
	"context"
	"iter"
)

const llamaBuilt = false

type llamaEngine struct {
	params Params
}

// NewLlama returns a stub that refuses to load without the 'llama' build tag.
func NewLlama(p Params) Engine {
	return &llamaEngine{params: p}
}

func (e *llamaEngine) Load(path string) error {
	return ErrDependencyUnavailable("llama support not built (missing 'llama' build tag)")
}

func (e *llamaEngine) Unload() error { return nil }

func (e *llamaEngine) Generate(ctx context.Context, prompt string, formatChat bool) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		yield("", ErrDependencyUnavailable("llama support not built (missing 'llama' build tag)"))
	}
}
