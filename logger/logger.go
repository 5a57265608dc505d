// Package logger provides the configured zerolog logger.
package logger

import (
	"io"
	"os"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	zpkgerrors "github.com/rs/zerolog/pkgerrors"
)

type Config struct {
	Service string
	Level   string
	Pretty  bool
	Output  io.Writer
}

type stackTracer interface{ StackTrace() pkgerrors.StackTrace }

// New builds the logger and installs it as the global zerolog logger.
// Call sites use .Stack() on error events to include stacks.
func New(cfg Config) zerolog.Logger {
	zerolog.ErrorStackMarshaler = func(err error) interface{} {
		if _, ok := err.(stackTracer); !ok {
			err = pkgerrors.WithStack(err)
		}
		return zpkgerrors.MarshalStack(err)
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}

	l := zerolog.New(out).With().
		Str("service", cfg.Service).
		Timestamp().
		Logger()
	log.Logger = l
	return l
}
