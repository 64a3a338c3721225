// Package logging wires go.uber.org/zap -- declared in the teacher's
// go.mod but never imported there -- into structured logging throughout
// c4align, in place of the teacher's io.Writer-based SetWarnings style.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a *zap.Logger at the given level. When devMode is true it
// uses zap's human-readable console encoder (console-friendly stack
// traces, colorized levels); otherwise it emits JSON, suitable for
// `c4align --json-logs`.
func New(level zapcore.Level, devMode bool) (*zap.Logger, error) {
	var cfg zap.Config
	if devMode {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	return cfg.Build()
}

// NopLogger returns a logger that discards everything, for use in tests.
func NopLogger() *zap.Logger { return zap.NewNop() }

// ParseLevel maps a --log-level flag value to a zapcore.Level, defaulting
// to Info on an unrecognized name.
func ParseLevel(name string) zapcore.Level {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(name)); err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}
