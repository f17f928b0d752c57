// Package logger builds the zerolog loggers used by the storefront binaries.
package logger

import (
	"io"
	stdlog "log"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

// Options controls the root logger.
type Options struct {
	// Level is one of trace, debug, info, warn, error. Anything else is info.
	Level string
	// Pretty writes coloured console lines instead of JSON.
	Pretty bool
	// Service, Env and Version are attached to every entry when set.
	Service string
	Env     string
	Version string
	// Output defaults to os.Stdout.
	Output io.Writer
}

// Init sets the zerolog globals and returns the root logger. The zerolog/log
// package logger and the standard library logger both write through it.
func Init(opts Options) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.DurationFieldUnit = time.Millisecond
	zerolog.SetGlobalLevel(ParseLevel(opts.Level))

	root := New(opts)
	zlog.Logger = root

	stdlog.SetFlags(0)
	stdlog.SetOutput(root.With().Str("source", "stdlog").Logger())
	return root
}

// New returns a logger for opts without touching any global state.
func New(opts Options) zerolog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}

	fields := zerolog.New(out).Level(ParseLevel(opts.Level)).With().Timestamp()
	for k, v := range map[string]string{"service": opts.Service, "env": opts.Env, "version": opts.Version} {
		if v != "" {
			fields = fields.Str(k, v)
		}
	}
	return fields.Logger()
}

// ParseLevel maps a configured level name onto zerolog. Unknown or empty
// names select info.
func ParseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || s == "" || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
