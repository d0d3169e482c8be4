package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Ptrskay3/pysprint-cli/internal/audit"
	"github.com/Ptrskay3/pysprint-cli/internal/codegen"
	"github.com/Ptrskay3/pysprint-cli/internal/config"
	"github.com/Ptrskay3/pysprint-cli/internal/executor"
	"github.com/Ptrskay3/pysprint-cli/internal/logging"
	"github.com/Ptrskay3/pysprint-cli/internal/store"
	"github.com/Ptrskay3/pysprint-cli/internal/summary"
	"github.com/Ptrskay3/pysprint-cli/internal/watch"
)

// scriptRuntime is what the drivers need from the Python side.
type scriptRuntime interface {
	audit.Runner
	Handshake(ctx context.Context) error
}

// newRuntime builds the runtime for a session rooted at root. Tests swap it.
var newRuntime = func(root string) scriptRuntime {
	exec := executor.NewDirectExecutor(logging.For(logger, logging.CategoryExecutor))
	return executor.NewRuntime(exec, root, logging.For(logger, logging.CategoryExecutor))
}

func runAudit(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd)
	defer stop()

	root := args[0]
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	rt, err := prepare(ctx, root)
	if err != nil {
		return err
	}

	d := audit.NewDriver(codegen.NewRenderer(), rt, logging.For(logger, logging.CategoryAudit), con)
	report, err := d.Run(ctx, audit.Options{
		Root:       root,
		Config:     cfg,
		ResultFile: resultFile,
		Verbosity:  scriptVerbosity(),
		Persist:    persist,
	})
	if errors.Is(err, context.Canceled) && report != nil {
		return fmt.Errorf("audit interrupted after %d file(s): %w", report.Processed, err)
	}
	if err != nil {
		return err
	}

	con.Infof("Done. %d evaluated, %d failed.", report.Processed, report.Failed())
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd)
	defer stop()

	con.Infof("PySprint watch mode starting.")
	root := args[0]
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if cfg.IsAggregate() {
		return config.NewValidationError("method", "%s is not supported in watch mode", cfg.Method)
	}
	rt, err := prepare(ctx, root)
	if err != nil {
		return err
	}

	d := watch.NewDriver(codegen.NewRenderer(), rt, logging.For(logger, logging.CategoryWatch), con)
	con.Infof("Watch started..")
	return d.Run(ctx, watch.Options{
		Root:       root,
		Config:     cfg,
		ResultFile: resultFile,
		Verbosity:  scriptVerbosity(),
		Persist:    persist,
	})
}

func runSummarize(cmd *cobra.Command, args []string) error {
	s, err := summary.Load(resultFile)
	if err != nil {
		return err
	}
	logging.For(logger, logging.CategorySummary).Debug("result store loaded",
		zap.String("path", resultFile), zap.Int("entries", s.Entries))
	return s.Write(cmd.OutOrStdout())
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	path, err := config.WriteDefault(dir, initMethod, override)
	if errors.Is(err, config.ErrConfigExists) {
		return fmt.Errorf("%w (use --override to replace it)", err)
	}
	if err != nil {
		return err
	}
	con.Infof("Default config written to %s.", path)
	return nil
}

// prepare readies the result store and checks that the runtime is usable.
// Everything it reports is fatal.
func prepare(ctx context.Context, root string) (scriptRuntime, error) {
	if err := prepareStore(store.Resolve(root, resultFile)); err != nil {
		return nil, err
	}

	rt := newRuntime(root)
	if err := rt.Handshake(ctx); err != nil {
		return nil, err
	}
	return rt, nil
}

func loadConfig(root string) (*config.Config, error) {
	path := configFile
	if path == "" {
		path = config.DefaultFileName
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config file %s does not exist, run `pysprint init %s` to create one", path, root)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	logging.For(logger, logging.CategoryConfig).Debug("config loaded",
		zap.String("path", path), zap.String("method", cfg.Method.String()))
	return cfg, nil
}

func prepareStore(path string) error {
	_, statErr := os.Stat(path)
	existed := statErr == nil

	created, err := store.Prepare(path, override)
	if err != nil {
		return err
	}
	switch {
	case created && existed:
		con.Infof("Overriding result file at %s.", path)
	case created:
		con.Infof("Created %s result file.", path)
	default:
		con.Warnf("The result file %s already exists, new results are merged into it.", path)
	}
	return nil
}

// scriptVerbosity is the verbosity handed to the generated scripts, which
// only know "quiet" and "verbose".
func scriptVerbosity() int {
	return min(verbosity, 1)
}

func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}
