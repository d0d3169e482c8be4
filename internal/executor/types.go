// Package executor is the process boundary to the external runtime.
// It runs interpreter commands on the host and turns a generated script
// into an Outcome the drivers can act on.
package executor

import (
	"context"
	"strings"
	"time"
)

// Command represents a command to be executed.
type Command struct {
	// Binary is the executable to run (e.g. "python").
	Binary string

	// Arguments are the command-line arguments.
	Arguments []string

	// WorkingDirectory is the directory to execute in.
	// If empty, uses the executor's default working directory.
	WorkingDirectory string

	// Environment variables to set (in KEY=VALUE format).
	// These are appended to the inherited environment.
	Environment []string

	// Timeout bounds the run. Zero means use the executor's default.
	Timeout time.Duration

	// RequestID uniquely identifies this execution request.
	RequestID string
}

// CommandString returns the full command as a string (for display/logging).
func (c Command) CommandString() string {
	if len(c.Arguments) == 0 {
		return c.Binary
	}
	return c.Binary + " " + strings.Join(c.Arguments, " ")
}

// ExecutionResult is the output of a command execution.
type ExecutionResult struct {
	// Success indicates whether the command could be run at all.
	// A command that runs but returns a non-zero exit code has Success=true.
	Success bool

	// ExitCode is the command's exit code (-1 if not available).
	ExitCode int

	Stdout string
	Stderr string

	// Duration is how long the command ran.
	Duration time.Duration

	// Killed indicates the command was terminated by timeout or cancellation.
	Killed     bool
	KillReason string

	// Truncated indicates output was cut at the capture limit.
	Truncated      bool
	TruncatedBytes int64

	// Error contains any infrastructure-level error message.
	Error string
}

// IsError returns true if the execution failed (infrastructure error).
func (r *ExecutionResult) IsError() bool {
	return !r.Success || r.Error != ""
}

// IsNonZeroExit returns true if the command ran but returned non-zero.
func (r *ExecutionResult) IsNonZeroExit() bool {
	return r.Success && r.ExitCode != 0
}

// Output returns stdout and stderr joined by a newline.
func (r *ExecutionResult) Output() string {
	if r.Stderr == "" {
		return r.Stdout
	}
	if r.Stdout == "" {
		return r.Stderr
	}
	return r.Stdout + "\n" + r.Stderr
}

// Executor runs a command and reports what happened.
type Executor interface {
	// Execute runs cmd. The context can be used for cancellation.
	Execute(ctx context.Context, cmd Command) (*ExecutionResult, error)

	// Validate checks if a command can be executed by this executor.
	Validate(cmd Command) error
}

// ExecutorConfig is the configuration for creating executors.
type ExecutorConfig struct {
	// DefaultWorkingDir is used when Command.WorkingDirectory is empty.
	DefaultWorkingDir string

	// DefaultTimeout is used when the command has no timeout.
	// Zero means no timeout.
	DefaultTimeout time.Duration

	// MaxOutputBytes caps output capture per stream.
	MaxOutputBytes int64
}

// DefaultExecutorConfig returns the defaults used for the runtime.
// Evaluations can be interactive (plots, edit sessions), so there is no
// default timeout.
func DefaultExecutorConfig() ExecutorConfig {
	return ExecutorConfig{
		DefaultWorkingDir: ".",
		MaxOutputBytes:    10 * 1024 * 1024, // 10MB
	}
}

// Merge fills unset command fields from the config.
func (c ExecutorConfig) Merge(cmd Command) Command {
	result := cmd

	if result.WorkingDirectory == "" {
		result.WorkingDirectory = c.DefaultWorkingDir
	}
	if result.Timeout == 0 {
		result.Timeout = c.DefaultTimeout
	}

	return result
}
