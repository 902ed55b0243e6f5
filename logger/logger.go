// Package logger provides the global logger used across the transpiler
// passes. It is a thin wrapper around zerolog with a console writer.
package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

var logger zerolog.Logger

func init() {
	w := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	logger = zerolog.New(w).With().Timestamp().Logger().Level(zerolog.InfoLevel)
}

// Logger returns the current global logger.
func Logger() zerolog.Logger {
	return logger
}

// Set replaces the global logger.
func Set(l zerolog.Logger) {
	logger = l
}

// Disable silences all transpiler logging.
func Disable() {
	logger = zerolog.New(io.Discard)
}
