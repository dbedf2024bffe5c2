// Package watcher turns filesystem notifications for tracked assets into
// debounced hot-sync triggers.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Trigger is called once per burst of relevant events
type Trigger func(ctx context.Context)

// Options tune a Watcher
type Options struct {
	Debounce time.Duration
	Ignore   []string // glob patterns matched against the base name
	Logger   *slog.Logger
}

// Watcher watches the directories containing tracked files. Directories are
// watched instead of files so that editors replacing a file by rename are seen.
type Watcher struct {
	fsw      *fsnotify.Watcher
	trigger  Trigger
	debounce time.Duration
	ignore   []string
	log      *slog.Logger

	mu      sync.Mutex
	tracked map[string]bool
	dirs    map[string]bool
}

// New creates a watcher; call Refresh to choose files, then Run
func New(trigger Trigger, opts Options) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	if opts.Debounce <= 0 {
		opts.Debounce = 200 * time.Millisecond
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Watcher{
		fsw:      fsw,
		trigger:  trigger,
		debounce: opts.Debounce,
		ignore:   opts.Ignore,
		log:      opts.Logger,
		tracked:  make(map[string]bool),
		dirs:     make(map[string]bool),
	}, nil
}

// Refresh replaces the set of tracked files, adding and dropping directory
// watches as needed
func (w *Watcher) Refresh(paths []string) error {
	tracked := make(map[string]bool, len(paths))
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", p, err)
		}
		tracked[abs] = true
		dirs[filepath.Dir(abs)] = true
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	for d := range w.dirs {
		if !dirs[d] {
			if err := w.fsw.Remove(d); err != nil {
				w.log.Debug("failed to drop watch", "dir", d, "err", err)
			}
		}
	}
	for d := range dirs {
		if w.dirs[d] {
			continue
		}
		if err := w.fsw.Add(d); err != nil {
			return fmt.Errorf("failed to watch %s: %w", d, err)
		}
	}

	w.tracked = tracked
	w.dirs = dirs
	return nil
}

// Dirs returns the number of watched directories
func (w *Watcher) Dirs() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.dirs)
}

// Run processes events until ctx is done or the watcher is closed
func (w *Watcher) Run(ctx context.Context) error {
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
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.log.Debug("asset changed", "path", event.Name, "op", event.Op.String())

			// Reset debounce timer
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Stop()
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			w.trigger(ctx)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watcher error", "err", err)

		case <-ctx.Done():
			return nil
		}
	}
}

// Close stops the underlying watcher
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) &&
		!event.Has(fsnotify.Rename) {
		return false
	}

	base := filepath.Base(event.Name)
	for _, pattern := range w.ignore {
		if ok, _ := filepath.Match(pattern, base); ok {
			return false
		}
	}

	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	return w.tracked[abs]
}
