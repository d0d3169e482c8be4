// Package audit evaluates every discovered file of a directory in one batch.
package audit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Ptrskay3/pysprint-cli/internal/codegen"
	"github.com/Ptrskay3/pysprint-cli/internal/config"
	"github.com/Ptrskay3/pysprint-cli/internal/console"
	"github.com/Ptrskay3/pysprint-cli/internal/discovery"
	"github.com/Ptrskay3/pysprint-cli/internal/executor"
)

// ReportFileName is the error report written under the root directory.
const ReportFileName = "errors.log"

// Runner executes one complete script.
type Runner interface {
	Run(ctx context.Context, name, source string) executor.Outcome
}

// Options describe one audit run.
type Options struct {
	Root       string
	Config     *config.Config
	ResultFile string
	Verbosity  int
	Persist    bool
}

// Failure is one unit whose script did not succeed.
type Failure struct {
	File      string
	Traceback string
}

// Report summarizes a finished (or interrupted) run.
type Report struct {
	Processed  int
	Failures   []Failure
	ReportPath string
	Warnings   []string
}

// Failed returns the failure count.
func (r *Report) Failed() int { return len(r.Failures) }

// ExecutionError is returned when the single script of an aggregate method
// fails. There is no smaller unit to retry, so the run stops.
type ExecutionError struct {
	Script    string
	Traceback string
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("evaluation of %s failed:\n%s", e.Script, e.Traceback)
}

// Driver runs audits. It holds no per-run state and may be reused.
type Driver struct {
	renderer *codegen.Renderer
	runtime  Runner
	logger   *zap.Logger
	console  *console.Console
}

// NewDriver wires a driver. A nil logger or console discards output.
func NewDriver(renderer *codegen.Renderer, runtime Runner, logger *zap.Logger, con *console.Console) *Driver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if con == nil {
		con = console.Discard()
	}
	return &Driver{renderer: renderer, runtime: runtime, logger: logger, console: con}
}

// Run discovers, classifies and evaluates the files under opts.Root.
// Per-file failures are collected in the report and written to
// <root>/errors.log; they do not produce an error. Cancelling ctx stops the
// run before the next unit.
func (d *Driver) Run(ctx context.Context, opts Options) (*Report, error) {
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", opts.Root, err)
	}
	cfg := opts.Config

	files, err := discovery.Discover(root, cfg.Load)
	if err != nil {
		return nil, err
	}
	set, warnings := discovery.Classify(files, cfg.Load.Grouping)
	for _, w := range warnings {
		d.console.Warnf("%s", w)
	}
	d.logger.Info("files classified",
		zap.String("root", root),
		zap.Int("discovered", len(files)),
		zap.Int("primary", len(set.Primary)),
		zap.Int("secondary", len(set.Secondary)),
		zap.Int("tertiary", len(set.Tertiary)))

	report := &Report{Warnings: warnings}
	env := codegen.Env{
		Workdir:    root,
		ResultFile: opts.ResultFile,
		Verbosity:  opts.Verbosity,
		Audit:      true,
	}

	if cfg.IsAggregate() {
		return report, d.runAggregate(ctx, cfg, set, env, opts.Persist, report)
	}

	units := Units(set, cfg.Load.Grouping)
	for i, unit := range units {
		if err := ctx.Err(); err != nil {
			d.logger.Warn("audit interrupted", zap.Int("done", i), zap.Int("total", len(units)))
			if werr := d.finish(root, report); werr != nil {
				return report, werr
			}
			return report, err
		}

		name := filepath.Base(unit.Primary)
		d.logger.Info("evaluating", zap.String("file", name), zap.Int("index", i+1), zap.Int("total", len(units)))

		script, err := d.renderer.RenderFile(cfg, unit, env)
		if err != nil {
			return report, err
		}
		if opts.Persist {
			d.persist(script, root)
		}

		out := d.run(ctx, script)
		report.Processed++
		if !out.Success {
			d.logger.Debug("evaluation failed", zap.String("file", name), zap.Int("exit", out.ExitCode))
			report.Failures = append(report.Failures, Failure{File: name, Traceback: out.Traceback})
		}
	}

	return report, d.finish(root, report)
}

func (d *Driver) runAggregate(ctx context.Context, cfg *config.Config, set discovery.ClassifiedSet, env codegen.Env, persist bool, report *Report) error {
	script, err := d.renderer.RenderSet(cfg, set, env)
	if err != nil {
		return err
	}
	if persist {
		d.persist(script, env.Workdir)
	}

	out := d.run(ctx, script)
	report.Processed++
	if !out.Success {
		report.Failures = append(report.Failures, Failure{File: script.Name, Traceback: out.Traceback})
		return &ExecutionError{Script: script.Name, Traceback: out.Traceback}
	}
	return nil
}

// finish writes the error report when there were failures.
func (d *Driver) finish(root string, report *Report) error {
	if report.Failed() == 0 {
		return nil
	}
	d.console.Infof("%d files skipped or errored out.", report.Failed())

	path := filepath.Join(root, ReportFileName)
	if err := WriteReport(path, report.Failures); err != nil {
		return err
	}
	report.ReportPath = path
	d.console.Infof("Report generated at `%s`.", path)
	return nil
}

// run evaluates one script and forwards whatever it printed.
func (d *Driver) run(ctx context.Context, script *codegen.Script) executor.Outcome {
	out := d.runtime.Run(ctx, script.Name, script.Source())
	if out.Output != "" {
		d.console.Println(out.Output)
	}
	return out
}

func (d *Driver) persist(script *codegen.Script, dir string) {
	path, err := codegen.Persist(script.Name, script.Text, dir)
	if err != nil {
		d.logger.Warn("failed to persist script", zap.String("script", script.Name), zap.Error(err))
		return
	}
	d.logger.Debug("script persisted", zap.String("path", path))
}

// Units pairs the classified arms into per-file work items. Only Triple
// grouping pairs; the other modes evaluate the primary alone.
func Units(set discovery.ClassifiedSet, mode config.GroupingMode) []codegen.Unit {
	units := make([]codegen.Unit, len(set.Primary))
	for i, p := range set.Primary {
		units[i].Primary = p
		if mode == config.Triple && i < len(set.Secondary) && i < len(set.Tertiary) {
			units[i].Secondary = set.Secondary[i]
			units[i].Tertiary = set.Tertiary[i]
		}
	}
	return units
}

// WriteReport writes one "file: <name>\terror: <traceback>" line per
// failure. Line breaks inside a traceback are escaped.
func WriteReport(path string, failures []Failure) error {
	var b strings.Builder
	for _, f := range failures {
		fmt.Fprintf(&b, "file: %s\terror: %s\n", f.File, oneLine(f.Traceback))
	}
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to write error report: %w", err)
	}
	return nil
}

var lineBreaks = strings.NewReplacer("\r\n", `\n`, "\n", `\n`, "\r", `\n`)

func oneLine(s string) string {
	return lineBreaks.Replace(strings.TrimSpace(s))
}
