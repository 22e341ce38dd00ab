package cli

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// logger is the process logger, configured in the root PersistentPreRunE.
var logger = zerolog.Nop()

// setupLogger builds the process logger from level and format.
func setupLogger(w io.Writer, level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	if strings.ToLower(format) == "json" {
		return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	}
	cw := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	return zerolog.New(cw).Level(lvl).With().Timestamp().Logger()
}

func initLogging(o *Options) {
	logger = setupLogger(os.Stderr, o.Cfg.LogLevel, o.Cfg.LogFormat)
}
