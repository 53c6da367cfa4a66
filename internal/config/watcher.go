package config

import (
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// ReloadFunc receives the result of reloading the config file.
// On error cfg is nil and the previous configuration should stay in use.
type ReloadFunc func(cfg *Config, err error)

// Watcher watches the config file and reloads it when it changes.
type Watcher struct {
	watcher *fsnotify.Watcher
	logger  *slog.Logger
	path    string
	onLoad  ReloadFunc
	done    chan struct{}
	mu      sync.Mutex
	running bool
}

// NewWatcher creates a watcher for the config file at path.
// An empty path watches the default config path.
func NewWatcher(path string, onLoad ReloadFunc, logger *slog.Logger) (*Watcher, error) {
	if path == "" {
		path = ConfigPath()
	}
	if logger == nil {
		logger = slog.Default()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		watcher: fw,
		logger:  logger,
		path:    path,
		onLoad:  onLoad,
		done:    make(chan struct{}),
	}, nil
}

// Start begins watching the file for changes.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	// Watch the directory containing the file; editors replace files on save
	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		return err
	}

	w.running = true
	go w.watch()
	w.logger.Debug("config watcher started", "path", w.path)
	return nil
}

// watch is the main watch loop.
func (w *Watcher) watch() {
	filename := filepath.Base(w.path)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if filepath.Base(event.Name) != filename {
				continue
			}

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.reload()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", "error", err)

		case <-w.done:
			return
		}
	}
}

// reload loads the file and reports the result.
func (w *Watcher) reload() {
	cfg, err := LoadConfig(w.path)
	if err != nil {
		w.logger.Warn("failed to reload config", "path", w.path, "error", err)
	} else {
		w.logger.Info("config reloaded", "path", w.path)
	}
	if w.onLoad != nil {
		w.onLoad(cfg, err)
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return w.watcher.Close()
	}

	w.running = false
	close(w.done)
	return w.watcher.Close()
}
