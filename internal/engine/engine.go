// Package engine defines the narrow capability the rest of the system needs
// from a native inference runtime: load one model file, unload it, and stream
// text fragments for a prompt.
//
// Build tags and runtimes:
//
//   - In-process llama: go-llama.cpp, enabled with `-tags=llama`
//     (llama.go, llama_cgo.go).
//   - Default builds carry a no-CGO stub (llama_stub.go) that refuses to load.
//   - Scripted replays canned fragments and is used by tests and `--engine=scripted`.
package engine

import (
	"context"
	"errors"
	"fmt"
	"iter"
)

// Engine is a single-slot native inference runtime. Implementations are not
// required to be safe for concurrent Load/Unload; callers serialize them.
type Engine interface {
	// Load makes the model at path resident.
	Load(path string) error
	// Unload releases the resident model. Unloading an empty slot is a no-op.
	Unload() error
	// Generate lazily streams text fragments for prompt. Iteration stops on the
	// first non-nil error. Breaking out of the loop or canceling ctx stops the
	// native generation.
	Generate(ctx context.Context, prompt string, formatChat bool) iter.Seq2[string, error]
}

// Chat turn markers for the instruction-tuned models in the catalog.
const (
	TurnStart = "<start_of_turn>"
	TurnEnd   = "<end_of_turn>"
)

// FormatChat wraps prompt in a single user turn and opens the model turn.
func FormatChat(prompt string) string {
	return fmt.Sprintf("%suser\n%s%s\n%smodel\n", TurnStart, prompt, TurnEnd, TurnStart)
}

// dependencyUnavailableError signals a missing native runtime.
type dependencyUnavailableError struct{ msg string }

func (e dependencyUnavailableError) Error() string { return e.msg }

// ErrDependencyUnavailable constructs a dependencyUnavailableError.
func ErrDependencyUnavailable(msg string) error { return dependencyUnavailableError{msg: msg} }

// IsDependencyUnavailable reports whether err indicates a missing runtime dependency.
func IsDependencyUnavailable(err error) bool {
	var e dependencyUnavailableError
	return errors.As(err, &e)
}

// Params are generation settings shared by native adapters.
type Params struct {
	ContextSize   int
	Threads       int
	MaxTokens     int
	Temperature   float32
	TopP          float32
	TopK          int
	RepeatPenalty float32
	Seed          int
	Stop          []string
}

// DefaultParams are tuned for short on-device replies.
func DefaultParams() Params {
	return Params{
		ContextSize: 1024,
		Threads:     4,
		MaxTokens:   256,
		Stop:        []string{TurnEnd},
	}
}
