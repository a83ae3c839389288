// Package logging builds the process-wide zerolog logger from configuration.
// Components never read global logger state; they receive the logger built
// here as a field.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options configures New.
type Options struct {
	Level  string    // zerolog level name; "" means info
	Format string    // "console" (default) or "json"
	Writer io.Writer // os.Stderr when nil
}

// New returns a timestamped logger. An unknown level or format is an error.
func New(opt Options) (zerolog.Logger, error) {
	w := opt.Writer
	if w == nil {
		w = os.Stderr
	}

	level := zerolog.InfoLevel
	if s := strings.TrimSpace(opt.Level); s != "" {
		l, err := zerolog.ParseLevel(strings.ToLower(s))
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("logging: %w", err)
		}
		level = l
	}

	switch opt.Format {
	case "", "console":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	case "json":
	default:
		return zerolog.Nop(), fmt.Errorf("logging: unknown format %q", opt.Format)
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}
