package manager

import (
	"github.com/rs/zerolog"

	"edgellm/internal/catalog"
	"edgellm/internal/engine"
	"edgellm/internal/events"
	"edgellm/internal/generation"
)

// Defaults applied when corresponding Config fields are unset.
const (
	defaultEventHistory = 128
	defaultEngineName   = "custom"
)

// Config encapsulates all tunables for Manager construction.
type Config struct {
	// Catalog of loadable models; catalog.Default() when nil.
	Catalog *catalog.Catalog
	// Engine is the native engine capability. Required.
	Engine engine.Engine
	// EngineName is reported by Status.
	EngineName string
	ModelsDir  string
	Thresholds generation.Thresholds
	FormatChat bool
	Logger     zerolog.Logger
	// Events receives lifecycle events in addition to the manager's own
	// bounded history.
	Events events.Publisher
	// EventHistory bounds the in-memory event history.
	EventHistory int
}

func (c Config) withDefaults() Config {
	if c.Catalog == nil {
		c.Catalog = catalog.Default()
	}
	if c.EngineName == "" {
		c.EngineName = defaultEngineName
	}
	if c.EventHistory <= 0 {
		c.EventHistory = defaultEventHistory
	}
	c.Thresholds = c.Thresholds.WithDefaults()
	return c
}
