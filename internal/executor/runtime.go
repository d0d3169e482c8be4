package executor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// DefaultInterpreter is the binary used to run generated scripts.
	DefaultInterpreter = "python"

	// InterpreterEnv overrides DefaultInterpreter.
	InterpreterEnv = "PYSPRINT_PYTHON"
)

// handshakeScript fails unless the runtime libraries import cleanly.
const handshakeScript = "import numpy as np\nimport pysprint as ps\nimport matplotlib.pyplot as plt\n"

// Outcome is the result of running one script.
type Outcome struct {
	Success   bool
	Traceback string
	ExitCode  int
	Duration  time.Duration

	// Output is what the script printed to stdout, unless it already
	// serves as the Traceback.
	Output string
}

// Interpreter returns the interpreter binary, honouring PYSPRINT_PYTHON.
func Interpreter() string {
	if v := strings.TrimSpace(os.Getenv(InterpreterEnv)); v != "" {
		return v
	}
	return DefaultInterpreter
}

// Runtime hands complete scripts to the interpreter, one at a time.
type Runtime struct {
	exec        Executor
	interpreter string
	workdir     string
	tempDir     string
	logger      *zap.Logger

	mu sync.Mutex
}

// NewRuntime returns a runtime that runs scripts with workdir as the
// current directory. Script files are staged under the system temp
// directory so they never appear in a watched folder.
func NewRuntime(exec Executor, workdir string, logger *zap.Logger) *Runtime {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runtime{
		exec:        exec,
		interpreter: Interpreter(),
		workdir:     workdir,
		tempDir:     os.TempDir(),
		logger:      logger,
	}
}

// Run writes source to a uniquely named file, runs it and waits for it to
// finish. A non-zero exit status is reported as an unsuccessful Outcome
// carrying the captured diagnostics, never as a Go error.
func (r *Runtime) Run(ctx context.Context, name, source string) Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.NewString()
	path := filepath.Join(r.tempDir, fmt.Sprintf("pysprint_%s_%s.py", sanitize(name), id[:8]))
	if err := os.WriteFile(path, []byte(source), 0600); err != nil {
		return Outcome{ExitCode: -1, Traceback: fmt.Sprintf("failed to stage script: %v", err)}
	}
	defer os.Remove(path)

	log := r.logger.With(zap.String("script", name), zap.String("request_id", id))
	log.Debug("running script", zap.String("interpreter", r.interpreter), zap.String("path", path))

	res, err := r.exec.Execute(ctx, Command{
		Binary:           r.interpreter,
		Arguments:        []string{path},
		WorkingDirectory: r.workdir,
		RequestID:        id,
	})
	if err != nil {
		return Outcome{ExitCode: -1, Traceback: err.Error()}
	}

	out := Outcome{
		ExitCode: res.ExitCode,
		Duration: res.Duration,
		Output:   strings.TrimRight(res.Stdout, "\r\n"),
	}
	switch {
	case res.IsError():
		out.Traceback = res.Error
	case res.Killed:
		out.Traceback = res.KillReason
	case res.IsNonZeroExit():
		out.Traceback = diagnostics(res)
		if out.Traceback == strings.TrimSpace(out.Output) {
			out.Output = ""
		}
	default:
		out.Success = true
	}
	if res.Truncated {
		log.Warn("script output truncated", zap.Int64("discarded_bytes", res.TruncatedBytes))
	}

	log.Debug("script finished",
		zap.Bool("success", out.Success),
		zap.Int("exit", out.ExitCode),
		zap.Duration("duration", out.Duration))
	return out
}

// Handshake checks that the interpreter starts and the runtime libraries
// are importable.
func (r *Runtime) Handshake(ctx context.Context) error {
	out := r.Run(ctx, "handshake", handshakeScript)
	if !out.Success {
		return fmt.Errorf("runtime %q is not usable (is pysprint installed?): %s", r.interpreter, out.Traceback)
	}
	return nil
}

func diagnostics(res *ExecutionResult) string {
	if s := strings.TrimSpace(res.Stderr); s != "" {
		return s
	}
	return strings.TrimSpace(res.Output())
}

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		}
		return '_'
	}, name)
}
