// Package logging wraps zerolog into the structured logger every other
// package in this module accepts (engine warnings, API request logs,
// CLI batch runs) — the ambient logging layer spec.md itself is silent
// on (§3 of SPEC_FULL.md).
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds a console-friendly zerolog.Logger writing to out. The CLI
// passes os.Stderr (as Default does); tests can pass a buffer.
func New(out io.Writer, debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	writer := zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

// Nop returns a logger that discards everything, for callers such as
// tests that need a Handler logger but no output.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

// Default is a convenience logger for command-line entrypoints.
func Default() zerolog.Logger {
	return New(os.Stderr, false)
}

// WarnFunc adapts a zerolog.Logger into the plain func(string) callback
// internal/engine components take, tagging every message with the given
// source (the input file name at the call sites) for correlation.
func WarnFunc(logger zerolog.Logger, source string) func(string) {
	return func(msg string) {
		logger.Warn().Str("source", source).Msg(msg)
	}
}
