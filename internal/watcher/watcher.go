// Package watcher re-runs a callback when pipeline or catalog files change.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/kpn-dsh/dsh-cli-sub000/internal/utils/logger"
	"go.uber.org/zap"
)

// DefaultDebounce is how long the watcher waits for changes to settle
const DefaultDebounce = 300 * time.Millisecond

// Watcher watches files and directories and calls onChange once changes settle
type Watcher struct {
	watcher   *fsnotify.Watcher
	onChange  func(path string)
	debouncer *Debouncer
	files     map[string]bool
	dirs      map[string]bool
}

// Debouncer prevents rapid-fire reloads
type Debouncer struct {
	mu       sync.Mutex
	timer    *time.Timer
	duration time.Duration
}

// NewDebouncer creates a debouncer that fires after d of quiet
func NewDebouncer(d time.Duration) *Debouncer {
	return &Debouncer{duration: d}
}

// Debounce schedules fn, cancelling any call still pending
func (d *Debouncer) Debounce(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.duration, fn)
}

// Stop cancels a pending call
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
}

// New creates a watcher. A debounce of zero uses DefaultDebounce.
func New(debounce time.Duration, onChange func(path string)) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &Watcher{
		watcher:   fsWatcher,
		onChange:  onChange,
		debouncer: NewDebouncer(debounce),
		files:     make(map[string]bool),
		dirs:      make(map[string]bool),
	}, nil
}

// Add watches paths. For a file, its directory is watched and events are
// filtered to that file, so editors that replace files are handled. For a
// directory, YAML files in it are watched.
func (w *Watcher) Add(paths ...string) error {
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}

		dir := filepath.Clean(path)
		if info.IsDir() {
			w.dirs[dir] = true
		} else {
			w.files[dir] = true
			dir = filepath.Dir(dir)
		}
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		logger.Debug("Watching path", zap.String("path", path))
	}
	return nil
}

// Run processes file system events until ctx is done
func (w *Watcher) Run(ctx context.Context) error {
	logger.Info("Starting file watcher", zap.Strings("paths", w.watcher.WatchList()))

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("File watcher error", zap.Error(err))
		}
	}
}

// handleEvent handles a single file system event
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}
	if !w.relevant(event.Name) {
		return
	}

	logger.Debug("File changed", zap.String("file", event.Name), zap.String("op", event.Op.String()))
	name := event.Name
	w.debouncer.Debounce(func() {
		w.onChange(name)
	})
}

// relevant reports whether a changed path is one of the watched files or a YAML
// file in a watched directory
func (w *Watcher) relevant(path string) bool {
	path = filepath.Clean(path)
	return w.files[path] || (isYAML(path) && w.dirs[filepath.Dir(path)])
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Close closes the watcher
func (w *Watcher) Close() error {
	w.debouncer.Stop()
	return w.watcher.Close()
}
