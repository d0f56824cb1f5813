package config

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds a logger writing to w at the configured level. Console output is
// human-readable; otherwise each event is one JSON line.
func (l LoggingConfig) NewLogger(w io.Writer) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if l.Level != "" {
		parsed, err := zerolog.ParseLevel(l.Level)
		if err != nil {
			return zerolog.Logger{}, fmt.Errorf("logging level: %w", err)
		}
		level = parsed
	}
	if l.Console {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}
