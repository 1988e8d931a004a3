package logger

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// New creates a zerolog logger writing to out. Unknown levels fall back to
// info.
func New(out io.Writer, logLevel, logFormat string) zerolog.Logger {
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil || logLevel == "" {
		level = zerolog.InfoLevel
	}

	writer := out
	if logFormat != "json" {
		writer = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
			NoColor:    true,
		}
	}

	return zerolog.New(writer).
		Level(level).
		With().
		Timestamp().
		Logger()
}
