package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is used when Config.Debounce is not positive.
const DefaultDebounce = 300 * time.Millisecond

// Action regenerates output after inputs changed. It returns the path it
// wrote and a short detail for the log line.
type Action func(changed []string) (output, detail string, err error)

// Config configures the watcher.
type Config struct {
	// Files are the inputs whose changes trigger Action.
	Files    []string
	Action   Action
	Debounce time.Duration
	Logger   *Logger
}

// Watcher watches a fixed set of files and runs an action when they change.
//
// The parent directories are watched rather than the files themselves so that
// editors that save by renaming a temp file over the original keep triggering
// events.
type Watcher struct {
	config    Config
	fsWatcher *fsnotify.Watcher
	debouncer *Debouncer
	logger    *Logger
	targets   map[string]bool

	// actionMu prevents overlapping action runs
	actionMu sync.Mutex
}

// New creates a watcher for cfg.Files.
func New(cfg Config) (*Watcher, error) {
	if len(cfg.Files) == 0 {
		return nil, errors.New("no files to watch")
	}
	if cfg.Action == nil {
		return nil, errors.New("no action to run")
	}

	targets := make(map[string]bool, len(cfg.Files))
	for _, f := range cfg.Files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("invalid path %s: %w", f, err)
		}
		targets[abs] = true
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = NewLogger(LoggerConfig{})
	}

	return &Watcher{
		config:    cfg,
		fsWatcher: fsWatcher,
		logger:    logger,
		targets:   targets,
	}, nil
}

// Run starts the watch loop. It blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	window := w.config.Debounce
	if window <= 0 {
		window = DefaultDebounce
	}
	w.debouncer = NewDebouncer(window, w.handleChanged)
	defer w.debouncer.Stop()

	dirs := make(map[string]bool)
	for target := range w.targets {
		dir := filepath.Dir(target)
		if dirs[dir] {
			continue
		}
		dirs[dir] = true
		if err := w.fsWatcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	w.logger.Ready(w.config.Files)

	for {
		select {
		case <-ctx.Done():
			w.logger.Shutdown()
			return nil

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error(err)
		}
	}
}

// handleEvent filters events down to the watched files.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	path, err := filepath.Abs(event.Name)
	if err != nil || !w.targets[path] {
		return
	}

	var change ChangeType
	switch {
	case event.Has(fsnotify.Create):
		change = ChangeAdded
	case event.Has(fsnotify.Write):
		change = ChangeModified
	case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
		// The file may come back via a rename from a temp file; the
		// action decides whether a missing input is an error.
		change = ChangeDeleted
	default:
		return
	}

	w.logger.FileChanged(path, change)
	w.debouncer.Add(path)
}

// handleChanged runs the action once per debounced burst.
func (w *Watcher) handleChanged(paths []string) {
	w.actionMu.Lock()
	defer w.actionMu.Unlock()

	slices.Sort(paths)

	// Skip bursts where every input vanished; an editor rename will
	// produce a Create shortly after.
	present := slices.ContainsFunc(paths, func(p string) bool {
		_, err := os.Stat(p)
		return err == nil
	})
	if !present {
		return
	}

	output, detail, err := w.config.Action(paths)
	if err != nil {
		w.logger.Error(err)
		return
	}
	w.logger.Updated(output, detail)
}

// Close closes the watcher and releases resources.
func (w *Watcher) Close() error {
	if w.fsWatcher != nil {
		return w.fsWatcher.Close()
	}
	return nil
}
