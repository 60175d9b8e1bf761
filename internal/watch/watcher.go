// Package watch triggers tag regeneration when posts change, either from
// file system notifications or on a cron schedule.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/tagbuilder/internal/logfields"
	"git.home.luguber.info/inful/tagbuilder/internal/posts"
)

// DefaultDebounce coalesces bursts of editor writes into one rebuild.
const DefaultDebounce = 500 * time.Millisecond

// Options configure a Watcher.
type Options struct {
	Extensions []string
	Recursive  bool
	Debounce   time.Duration
	Logger     *slog.Logger
}

// Watcher monitors a posts directory and calls a rebuild function after
// changes to post files settle.
type Watcher struct {
	dir     string
	opts    Options
	rebuild func(ctx context.Context)
	watcher *fsnotify.Watcher
	ready   chan struct{}
}

// NewWatcher creates a watcher for dir. Nothing is watched until Run.
func NewWatcher(dir string, opts Options, rebuild func(ctx context.Context)) (*Watcher, error) {
	if rebuild == nil {
		return nil, errors.New("watch: rebuild function is required")
	}
	if len(opts.Extensions) == 0 {
		opts.Extensions = posts.DefaultExtensions
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &Watcher{
		dir:     dir,
		opts:    opts,
		rebuild: rebuild,
		watcher: fw,
		ready:   make(chan struct{}),
	}, nil
}

// Ready is closed once the initial directories are being watched.
func (w *Watcher) Ready() <-chan struct{} { return w.ready }

// Run watches until ctx is canceled. Rebuilds run on the watch goroutine, so
// they never overlap and events arriving meanwhile are coalesced into the
// next debounce window.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() {
		if err := w.watcher.Close(); err != nil {
			w.opts.Logger.Error("Error closing file watcher", logfields.Error(err))
		}
	}()

	if err := w.addTree(w.dir); err != nil {
		return err
	}
	close(w.ready)
	w.opts.Logger.Info("Watching posts", logfields.PostsDir(w.dir), slog.Bool("recursive", w.opts.Recursive))

	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.opts.Logger.Debug("Post change detected", logfields.Path(event.Name), slog.String("op", event.Op.String()))
			if timer == nil {
				timer = time.NewTimer(w.opts.Debounce)
			} else {
				timer.Reset(w.opts.Debounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			w.rebuild(ctx)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.opts.Logger.Error("Post watcher error", logfields.Error(err))
		}
	}
}

// relevant reports whether event should trigger a rebuild. New directories
// are added to the watch list when recursive.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	name := filepath.Base(event.Name)

	if event.Op.Has(fsnotify.Create) && w.opts.Recursive {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if strings.HasPrefix(name, ".") {
				return false
			}
			if err := w.addTree(event.Name); err != nil {
				w.opts.Logger.Warn("Failed to watch new directory", logfields.Path(event.Name), logfields.Error(err))
			}
			// Files created together with the directory produce no events.
			return true
		}
	}

	// A removed or renamed directory may have held posts.
	if w.opts.Recursive && event.Op.Has(fsnotify.Remove|fsnotify.Rename) && filepath.Ext(name) == "" {
		return true
	}

	return posts.HasExtension(name, w.opts.Extensions)
}

func (w *Watcher) addTree(root string) error {
	if !w.opts.Recursive {
		if err := w.watcher.Add(root); err != nil {
			return fmt.Errorf("failed to watch posts directory %s: %w", root, err)
		}
		return nil
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch posts directory %s: %w", path, err)
		}
		return nil
	})
}
