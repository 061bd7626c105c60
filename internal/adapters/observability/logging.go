package observability

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds the process-wide zerolog Logger. Production emits JSON;
// APP_ENV=dev (or development) switches to the console writer. LOG_LEVEL
// takes any zerolog level name, defaulting to info.
func NewLogger(env string) zerolog.Logger {
	level := zerolog.InfoLevel
	if s := os.Getenv("LOG_LEVEL"); s != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(s)); err == nil {
			level = parsed
		}
	}

	l := zerolog.New(os.Stdout).Level(level).With().Timestamp().Str("service", "roomrate").Logger()
	if env == "dev" || env == "development" {
		l = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			Level(level).
			With().Timestamp().Logger()
	}
	return l
}
