// Package watch turns filesystem notifications under resource source roots
// into batches of change events.
//
// fsnotify does not watch recursively, so the watcher subscribes to every
// root and to every resource folder below it, and picks up folders created
// later. Events are collected until no new notification has arrived for the
// quiet period and are then handed to the handler in one batch:
//
//	w, err := watch.New(roots, watch.WithQuietPeriod(200*time.Millisecond))
//	if err != nil {
//		return err
//	}
//	defer w.Close()
//	err = w.Run(ctx, func(ctx context.Context, events []resource.ChangeEvent) error {
//		return m.ApplyChanges(events)
//	})
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/erraggy/resmerge/internal/options"
	"github.com/erraggy/resmerge/reserrors"
	"github.com/erraggy/resmerge/resource"
)

// DefaultQuietPeriod is how long the watcher waits after the last
// notification before it flushes a batch.
const DefaultQuietPeriod = 300 * time.Millisecond

// Handler receives one batch of change events. A returned error stops Run.
type Handler func(ctx context.Context, events []resource.ChangeEvent) error

// Option is a function that configures a Watcher
type Option func(*config) error

type config struct {
	quiet  time.Duration
	logger resource.Logger
}

// WithQuietPeriod sets the debounce interval.
func WithQuietPeriod(d time.Duration) Option {
	return func(cfg *config) error {
		if d <= 0 {
			return &reserrors.ConfigError{Option: "quiet period", Value: d.String(), Message: "must be positive"}
		}
		cfg.quiet = d
		return nil
	}
}

// WithLogger sets the logger. A nil logger keeps the default, which
// discards output.
func WithLogger(logger resource.Logger) Option {
	return func(cfg *config) error {
		if logger != nil {
			cfg.logger = logger
		}
		return nil
	}
}

// Watcher watches a fixed list of source roots.
type Watcher struct {
	cfg   config
	roots []string
	fsw   *fsnotify.Watcher
}

// New subscribes to roots and their resource folders. Roots that do not
// exist yet are skipped with a warning.
func New(roots []string, opts ...Option) (*Watcher, error) {
	cfg := config{quiet: DefaultQuietPeriod, logger: resource.NopLogger{}}
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, fmt.Errorf("watch: invalid options: %w", err)
	}
	if len(roots) == 0 {
		return nil, &reserrors.ConfigError{Option: "roots", Message: "at least one source root is required"}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: creating watcher: %w", err)
	}
	w := &Watcher{cfg: cfg, fsw: fsw}
	for _, root := range roots {
		root = filepath.Clean(root)
		if !slices.Contains(w.roots, root) {
			w.roots = append(w.roots, root)
		}
		if err := w.addRoot(root); err != nil {
			_ = fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

// Roots returns the watched source roots.
func (w *Watcher) Roots() []string {
	return slices.Clone(w.roots)
}

// Close releases the underlying notification handle.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Run delivers batches to handle until ctx is cancelled, the handler fails,
// or the watcher is closed. Cancellation is not an error.
func (w *Watcher) Run(ctx context.Context, handle Handler) error {
	pending := newBatch()
	timer := time.NewTimer(w.cfg.quiet)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			for _, e := range w.translate(event) {
				pending.add(e)
			}
			if pending.len() > 0 {
				timer.Reset(w.cfg.quiet)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				w.cfg.logger.Warn("file notifications overflowed; some changes may be missed", "error", err)
				continue
			}
			w.cfg.logger.Warn("file watch error", "error", err)

		case <-timer.C:
			if pending.len() == 0 {
				continue
			}
			events := pending.flush()
			w.cfg.logger.Debug("flushing change batch", "events", len(events))
			if err := handle(ctx, events); err != nil {
				return err
			}
		}
	}
}

// translate maps one notification to change events. Notifications for a
// new resource folder subscribe to it and report the files already inside.
func (w *Watcher) translate(event fsnotify.Event) []resource.ChangeEvent {
	path := filepath.Clean(event.Name)
	root, depth, ok := w.locate(path)
	if !ok || resource.IsIgnoredName(filepath.Base(path)) {
		return nil
	}

	if depth == 1 {
		if !event.Has(fsnotify.Create) {
			return nil
		}
		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			return nil
		}
		return w.addFolder(root, path)
	}

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return []resource.ChangeEvent{{Root: root, Path: path, Status: resource.StatusRemoved}}
	case event.Has(fsnotify.Create):
		return []resource.ChangeEvent{{Root: root, Path: path, Status: resource.StatusNew}}
	case event.Has(fsnotify.Write):
		return []resource.ChangeEvent{{Root: root, Path: path, Status: resource.StatusChanged}}
	default:
		return nil
	}
}

// locate finds the root containing path and how deep below it path is.
// Only folders (depth 1) and files in folders (depth 2) are of interest.
func (w *Watcher) locate(path string) (string, int, bool) {
	parent := filepath.Dir(path)
	for _, root := range w.roots {
		switch root {
		case parent:
			return root, 1, true
		case filepath.Dir(parent):
			return root, 2, true
		}
	}
	return "", 0, false
}

func (w *Watcher) addRoot(root string) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			w.cfg.logger.Warn("source root does not exist, not watching it", "root", root)
			return nil
		}
		return &reserrors.IOError{Op: "read directory", Path: root, Cause: err}
	}
	if err := w.fsw.Add(root); err != nil {
		return &reserrors.IOError{Op: "watch", Path: root, Cause: err}
	}
	for _, e := range entries {
		if !e.IsDir() || resource.IsIgnoredName(e.Name()) {
			continue
		}
		dir := filepath.Join(root, e.Name())
		if err := w.fsw.Add(dir); err != nil {
			return &reserrors.IOError{Op: "watch", Path: dir, Cause: err}
		}
	}
	return nil
}

// addFolder subscribes to a folder created after startup. Files written
// into it before the subscription took effect are reported as new.
func (w *Watcher) addFolder(root, dir string) []resource.ChangeEvent {
	if err := w.fsw.Add(dir); err != nil {
		w.cfg.logger.Warn("cannot watch new folder", "folder", dir, "error", err)
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var events []resource.ChangeEvent
	for _, e := range entries {
		if e.IsDir() || resource.IsIgnoredName(e.Name()) {
			continue
		}
		events = append(events, resource.ChangeEvent{
			Root:   root,
			Path:   filepath.Join(dir, e.Name()),
			Status: resource.StatusNew,
		})
	}
	return events
}
