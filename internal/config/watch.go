package config

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/codefionn/rechenwerk/internal/logger"
)

// Watcher reloads the configuration file when it changes on disk and hands
// the fresh Config to a callback.
type Watcher struct {
	path      string
	watcher   *fsnotify.Watcher
	onChange  func(*Config)
	stopWatch chan struct{}
}

// Watch starts watching the configuration file at path. The directory is
// watched rather than the file itself, since editors replace files and an
// inode watch would be lost on the first save.
func Watch(path string, onChange func(*Config)) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create config watcher: %w", err)
	}

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w := &Watcher{
		path:      path,
		watcher:   watcher,
		onChange:  onChange,
		stopWatch: make(chan struct{}),
	}
	go w.watchFile()

	return w, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.stopWatch)
	return w.watcher.Close()
}

// watchFile monitors filesystem events and reloads the configuration
func (w *Watcher) watchFile() {
	for {
		select {
		case <-w.stopWatch:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Name != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			cfg, err := Load(w.path)
			if err != nil {
				logger.Global().Warn("failed to reload config from %s: %v", w.path, err)
				continue
			}
			logger.Global().Info("configuration reloaded from %s", w.path)
			w.onChange(cfg)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Global().Error("config watcher error: %v", err)
		}
	}
}
