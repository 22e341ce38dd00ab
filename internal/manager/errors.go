package manager

import (
	"errors"

	"edgellm/internal/catalog"
	"edgellm/internal/engine"
	"edgellm/internal/generation"
	"edgellm/internal/residency"
	"edgellm/internal/scheduler"
)

// ErrClosed is returned by every entry point after Close.
var ErrClosed = errors.New("manager closed")

// IsNotFound reports whether err means the requested model is unknown to the
// catalog or missing from disk (return 404).
func IsNotFound(err error) bool {
	return catalog.IsUnknownModel(err) || residency.IsMissingFile(err)
}

// IsNoModelResident reports whether generation was refused for an empty slot
// (return 409).
func IsNoModelResident(err error) bool {
	return errors.Is(err, generation.ErrNoModelResident)
}

// IsUnavailable reports whether err indicates the engine or the manager
// cannot serve right now (return 503).
func IsUnavailable(err error) bool {
	return residency.IsEngineFailure(err) ||
		engine.IsDependencyUnavailable(err) ||
		errors.Is(err, scheduler.ErrSchedulerClosed) ||
		errors.Is(err, ErrClosed)
}
