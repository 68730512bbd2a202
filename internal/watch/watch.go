// Package watch re-runs a handler when source files change on disk.
//
// fsnotify does not watch recursively, so every directory below the roots is
// added on start and directories created later are added as they appear.
// Events are batched: a handler call receives every file that changed during
// the debounce window, and calls never overlap.
package watch

import (
	"context"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// DefaultDebounce is the quiet period after the last event before the
// handler runs.
const DefaultDebounce = 150 * time.Millisecond

// Handler receives the sorted paths that changed since its last call.
type Handler func(ctx context.Context, paths []string) error

// Options configures a Watcher.
type Options struct {
	// Debounce is the quiet period before changes are handled.
	// Zero means DefaultDebounce.
	Debounce time.Duration

	// Filter selects the files whose changes are reported. Nil accepts all.
	Filter func(path string) bool

	// SkipDir reports directories that are not watched. Nil skips
	// node_modules and hidden directories.
	SkipDir func(path string) bool

	// Log receives debug entries and watcher errors. Nil means silent.
	Log logrus.FieldLogger
}

// Watcher reports file changes below a set of roots.
type Watcher struct {
	fs   *fsnotify.Watcher
	opts Options
}

// New watches every directory below roots. A root that is a file watches
// its directory.
func New(roots []string, opts Options) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.SkipDir == nil {
		opts.SkipDir = defaultSkipDir
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{fs: fw, opts: opts}

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			_ = fw.Close()
			return nil, err
		}
		if !info.IsDir() {
			root = filepath.Dir(root)
		}
		if err := w.addTree(root); err != nil {
			_ = fw.Close()
			return nil, err
		}
	}
	return w, nil
}

// Dirs returns the watched directories.
func (w *Watcher) Dirs() []string {
	dirs := w.fs.WatchList()
	slices.Sort(dirs)
	return dirs
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fs.Close()
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.opts.SkipDir(path) {
			return filepath.SkipDir
		}
		w.debug("watching", path)
		return w.fs.Add(path)
	})
}

// Run calls handle for batches of changed files until ctx is done or the
// watcher is closed. A handler error stops Run and is returned.
func (w *Watcher) Run(ctx context.Context, handle Handler) error {
	pending := make(map[string]struct{})
	timer := time.NewTimer(w.opts.Debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if w.track(ev) {
				pending[filepath.Clean(ev.Name)] = struct{}{}
				timer.Reset(w.opts.Debounce)
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			// Overflow loses events but the watcher keeps working.
			w.warn(err)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			paths := slices.Sorted(maps.Keys(pending))
			clear(pending)
			if err := handle(ctx, paths); err != nil {
				return err
			}
		}
	}
}

// track reports whether ev is a change to a watched file. New directories
// are added to the watch list.
func (w *Watcher) track(ev fsnotify.Event) bool {
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if !w.opts.SkipDir(ev.Name) {
				if err := w.addTree(ev.Name); err != nil {
					w.warn(err)
				}
			}
			return false
		}
	}
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return false
	}
	if w.opts.Filter != nil && !w.opts.Filter(ev.Name) {
		return false
	}
	w.debug("changed", ev.Name)
	return true
}

func (w *Watcher) debug(msg, path string) {
	if w.opts.Log != nil {
		w.opts.Log.WithField("path", path).Debug(msg)
	}
}

func (w *Watcher) warn(err error) {
	if w.opts.Log != nil {
		w.opts.Log.WithError(err).Warn("watch error")
	}
}

func defaultSkipDir(path string) bool {
	base := filepath.Base(path)
	return base == "node_modules" || (strings.HasPrefix(base, ".") && base != "." && base != "..")
}
