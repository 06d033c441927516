package config

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"mathcourt/internal/logging"
)

// Watcher reloads the config file when it changes on disk and invokes a
// callback with the fresh config. Used to flip debug logging at runtime
// without restarting a trial in progress.
type Watcher struct {
	watcher *fsnotify.Watcher
	path    string
	done    chan struct{}
}

// Watch starts watching the given config file. onReload runs on the watcher
// goroutine; keep it cheap.
func Watch(path string, onReload func(*Config)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	// Watch the directory: editors replace files on save, which drops a
	// watch registered on the file itself.
	dir := filepath.Dir(path)
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w := &Watcher{watcher: fw, path: path, done: make(chan struct{})}

	go func() {
		for {
			select {
			case event, ok := <-fw.Events:
				if !ok {
					return
				}
				if event.Name != path {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				cfg, err := Load(path)
				if err != nil {
					logging.Get(logging.CategoryConfig).Warn("Config reload failed: %v", err)
					continue
				}
				logging.Config("Config reloaded from %s", path)
				onReload(cfg)
			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				logging.Get(logging.CategoryConfig).Warn("Config watcher error: %v", err)
			case <-w.done:
				return
			}
		}
	}()

	return w, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
