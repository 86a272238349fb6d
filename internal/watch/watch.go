// Package watch reports edits to the action document while the process runs.
// Bindings are fixed for the life of the process, so a change is only
// surfaced to the user; applying it takes a restart.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/MrSnakeDoc/hass-hotkeys/internal/logger"
)

// DefaultDebounce coalesces the burst of events a single save produces.
const DefaultDebounce = 300 * time.Millisecond

// Watcher calls OnChange once per burst of writes to a file.
type Watcher struct {
	path     string
	base     string
	debounce time.Duration
	logger   logger.Logger
	onChange func(path string)
}

// New creates a watcher for path. A debounce <= 0 uses DefaultDebounce.
func New(path string, debounce time.Duration, log logger.Logger, onChange func(path string)) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	clean := filepath.Clean(path)
	return &Watcher{
		path:     clean,
		base:     filepath.Base(clean),
		debounce: debounce,
		logger:   log,
		onChange: onChange,
	}
}

// Relevant reports whether an fsnotify event touches the watched file.
// Editors that save via temp file + rename only show up under the base name.
func (w *Watcher) Relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	name := filepath.Clean(event.Name)
	return name == w.path || filepath.Base(name) == w.base
}

// Run watches the file's directory until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.logger.Debug("watching config file", logger.String("path", w.path))

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if w.Relevant(event) {
				timer.Reset(w.debounce)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("config watcher error", logger.Error(err))

		case <-timer.C:
			w.logger.Info("config file changed", logger.String("path", w.path))
			w.onChange(w.path)
		}
	}
}
