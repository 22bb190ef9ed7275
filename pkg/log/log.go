// Package log wires zerolog for the analysis runner. The pipeline is a batch
// process, so the default output is a human-readable console writer; fields
// stay structured so a run can also be captured as JSON.
package log

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

var (
	mu     sync.RWMutex
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
)

// Setup configures the global logger. Level is one of debug, info, warn,
// error; anything else falls back to info. When json is true the console
// writer is bypassed and raw JSON lines are written instead.
func Setup(level string, json bool) {
	mu.Lock()
	defer mu.Unlock()

	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stderr}
	if json {
		out = os.Stderr
	}
	logger = zerolog.New(out).With().Timestamp().Logger().Level(parseLevel(level))
}

// L returns the global logger.
func L() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Stage returns a logger scoped to one pipeline stage.
func Stage(name string) zerolog.Logger {
	return L().With().Str("stage", name).Logger()
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
