// Package watch re-evaluates data files as they appear or change in a
// directory.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Ptrskay3/pysprint-cli/internal/codegen"
	"github.com/Ptrskay3/pysprint-cli/internal/config"
	"github.com/Ptrskay3/pysprint-cli/internal/console"
	"github.com/Ptrskay3/pysprint-cli/internal/discovery"
	"github.com/Ptrskay3/pysprint-cli/internal/executor"
)

// DebounceWindow is how long a path must stay quiet before it is evaluated.
const DebounceWindow = 100 * time.Millisecond

// Runner executes one complete script.
type Runner interface {
	Run(ctx context.Context, name, source string) executor.Outcome
}

// Options describe one watch session.
type Options struct {
	Root       string
	Config     *config.Config
	ResultFile string
	Verbosity  int
	Persist    bool
}

// WatcherError reports a failure of the notification subsystem. It ends
// the session.
type WatcherError struct {
	Root string
	Err  error
}

func (e *WatcherError) Error() string {
	return fmt.Sprintf("error watching %s: %v", e.Root, e.Err)
}

func (e *WatcherError) Unwrap() error { return e.Err }

// Driver runs watch sessions.
type Driver struct {
	renderer *codegen.Renderer
	runtime  Runner
	logger   *zap.Logger
	console  *console.Console
	debounce time.Duration

	// ready is called once the directory is subscribed.
	ready func()
}

// NewDriver wires a driver. A nil logger or console discards output.
func NewDriver(renderer *codegen.Renderer, runtime Runner, logger *zap.Logger, con *console.Console) *Driver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if con == nil {
		con = console.Discard()
	}
	return &Driver{
		renderer: renderer,
		runtime:  runtime,
		logger:   logger,
		console:  con,
		debounce: DebounceWindow,
	}
}

// Run watches opts.Root until ctx is cancelled or the watcher fails.
// Aggregate methods are rejected before anything is subscribed. Failing
// evaluations are reported and the session continues.
func (d *Driver) Run(ctx context.Context, opts Options) error {
	cfg := opts.Config
	if cfg.IsAggregate() {
		return config.NewValidationError("method", "%s is not supported in watch mode", cfg.Method)
	}

	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", opts.Root, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return &WatcherError{Root: root, Err: err}
	}
	defer w.Close()

	if err := w.Add(root); err != nil {
		return &WatcherError{Root: root, Err: err}
	}
	d.logger.Info("watching directory", zap.String("root", root), zap.Strings("extensions", cfg.Load.Extensions))
	if d.ready != nil {
		d.ready()
	}

	env := codegen.Env{
		Workdir:    root,
		ResultFile: opts.ResultFile,
		Verbosity:  opts.Verbosity,
		Audit:      false,
	}

	paths := make(chan string)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(paths)
		return d.produce(gctx, w, root, cfg.Load.Extensions, paths)
	})
	g.Go(func() error {
		return d.consume(gctx, cfg, env, opts.Persist, paths)
	})

	err = g.Wait()
	if err != nil && errors.Is(err, context.Canceled) && ctx.Err() != nil {
		err = nil
	}
	d.logger.Info("watch stopped", zap.Error(err))
	return err
}

// pending is a path waiting for its quiet period to pass.
type pending struct {
	first time.Time
	last  time.Time
}

// produce turns raw notifications into one path per settled burst, in the
// order the bursts started.
func (d *Driver) produce(ctx context.Context, w *fsnotify.Watcher, root string, exts []string, out chan<- string) error {
	debounceMap := make(map[string]*pending)

	ticker := time.NewTicker(d.debounce / 4)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return &WatcherError{Root: root, Err: errors.New("event channel closed")}
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !discovery.HasExtension(event.Name, exts) {
				continue
			}
			now := time.Now()
			if p, ok := debounceMap[event.Name]; ok {
				p.last = now
			} else {
				debounceMap[event.Name] = &pending{first: now, last: now}
			}

		case err, ok := <-w.Errors:
			if !ok {
				return &WatcherError{Root: root, Err: errors.New("error channel closed")}
			}
			return &WatcherError{Root: root, Err: err}

		case <-ticker.C:
			for _, path := range settled(debounceMap, time.Now(), d.debounce) {
				select {
				case out <- path:
				case <-ctx.Done():
					return nil
				}
			}
		}
	}
}

// settled removes and returns the paths that have been quiet for at least
// window, ordered by when their burst started.
func settled(table map[string]*pending, now time.Time, window time.Duration) []string {
	var ready []string
	for path, p := range table {
		if now.Sub(p.last) >= window {
			ready = append(ready, path)
		}
	}
	sort.Slice(ready, func(i, j int) bool {
		a, b := table[ready[i]].first, table[ready[j]].first
		if a.Equal(b) {
			return ready[i] < ready[j]
		}
		return a.Before(b)
	})
	for _, path := range ready {
		delete(table, path)
	}
	return ready
}

func (d *Driver) consume(ctx context.Context, cfg *config.Config, env codegen.Env, persist bool, in <-chan string) error {
	for path := range in {
		if err := d.evaluate(ctx, cfg, env, persist, path); err != nil {
			return err
		}
	}
	return nil
}

func (d *Driver) evaluate(ctx context.Context, cfg *config.Config, env codegen.Env, persist bool, path string) error {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		d.logger.Debug("skipping vanished or non-regular path", zap.String("path", path))
		return nil
	}

	name := filepath.Base(path)
	script, err := d.renderer.RenderFile(cfg, codegen.Unit{Primary: path}, env)
	if err != nil {
		return err
	}
	if persist {
		if p, err := codegen.Persist(script.Name, script.Text, env.Workdir); err != nil {
			d.logger.Warn("failed to persist script", zap.String("script", script.Name), zap.Error(err))
		} else {
			d.logger.Debug("script persisted", zap.String("path", p))
		}
	}

	d.console.Infof("Change detected in %s, evaluating..", name)
	out := d.runtime.Run(ctx, script.Name, script.Source())
	if out.Output != "" {
		d.console.Println(out.Output)
	}
	if !out.Success {
		d.logger.Debug("evaluation failed", zap.String("file", name), zap.Int("exit", out.ExitCode))
		d.console.Errorf("Python error in %s:\n%s", name, out.Traceback)
		return nil
	}
	d.logger.Info("evaluated", zap.String("file", name), zap.Duration("duration", out.Duration))
	return nil
}
