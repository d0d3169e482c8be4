// Package logging builds the process logger. Diagnostics go to stderr so
// they never mix with script output or the summary on stdout.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category names a subsystem; each gets its own named child logger.
type Category string

const (
	CategoryConfig   Category = "config"
	CategoryAudit    Category = "audit"
	CategoryWatch    Category = "watch"
	CategoryExecutor Category = "executor"
	CategorySummary  Category = "summary"
)

// Level maps the -v count to a log level. Two or more enables debug output.
func Level(verbosity int) zapcore.Level {
	switch {
	case verbosity >= 2:
		return zapcore.DebugLevel
	case verbosity == 1:
		return zapcore.InfoLevel
	default:
		return zapcore.WarnLevel
	}
}

// New builds a console logger at the level selected by verbosity.
func New(verbosity int) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.Encoding = "console"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	config.Level = zap.NewAtomicLevelAt(Level(verbosity))
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}
	if verbosity < 2 {
		config.DisableCaller = true
		config.DisableStacktrace = true
	}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// For returns the child logger of a category. A nil parent yields a no-op
// logger.
func For(parent *zap.Logger, c Category) *zap.Logger {
	if parent == nil {
		return zap.NewNop()
	}
	return parent.Named(string(c))
}
