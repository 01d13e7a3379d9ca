package infra

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger aliases zerolog.Logger so the rest of the codebase depends on one
// logging surface instead of importing the module everywhere.
type Logger = zerolog.Logger

// NewLogger builds the process logger. Development gets a human-readable
// console writer at debug level; everything else emits JSON at info, unless
// LOG_LEVEL overrides it.
func NewLogger(appEnv string) Logger {
	development := appEnv == "development"

	level := zerolog.InfoLevel
	if development {
		level = zerolog.DebugLevel
	}
	if raw := strings.TrimSpace(os.Getenv("LOG_LEVEL")); raw != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(raw)); err == nil {
			level = parsed
		}
	}

	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	if development {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}
	return logger
}
