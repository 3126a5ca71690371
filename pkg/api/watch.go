package api

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long a watcher waits for writes to settle.
const DefaultDebounce = 200 * time.Millisecond

// Watcher calls OnChange once after a burst of file system events under its
// paths settles. OnChange runs on the watcher goroutine, never concurrently
// with itself.
type Watcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	match    func(path string) bool
	onChange func()

	stopOnce sync.Once
	done     chan struct{}
}

// WatchFile watches a single file. The parent directory is watched so an
// atomic rename over the file is observed.
func WatchFile(path string, debounce time.Duration, onChange func()) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w, err := newWatcher(debounce, func(p string) bool { return p == abs }, onChange)
	if err != nil {
		return nil, err
	}
	if err := w.watcher.Add(filepath.Dir(abs)); err != nil {
		w.watcher.Close()
		return nil, err
	}
	return w, nil
}

// WatchTree watches every directory under root and reports changes to files
// accepted by match. Directories created later are added as they appear.
func WatchTree(root string, debounce time.Duration, match func(path string) bool, onChange func()) (*Watcher, error) {
	w, err := newWatcher(debounce, match, onChange)
	if err != nil {
		return nil, err
	}
	if _, err := w.addTree(root); err != nil {
		w.watcher.Close()
		return nil, err
	}
	return w, nil
}

func newWatcher(debounce time.Duration, match func(string) bool, onChange func()) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		watcher:  fw,
		debounce: debounce,
		match:    match,
		onChange: onChange,
		done:     make(chan struct{}),
	}, nil
}

// addTree watches every directory under root and reports whether root
// already holds a file accepted by match. A directory moved into the tree
// brings its files without emitting events for them.
func (w *Watcher) addTree(root string) (bool, error) {
	matched := false
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			return w.watcher.Add(path)
		}
		if !matched && w.match(path) {
			matched = true
		}
		return nil
	})
	return matched, err
}

// Run processes events until ctx is done or Stop is called.
func (w *Watcher) Run(ctx context.Context) {
	var timer *time.Timer
	var fire <-chan time.Time
	arm := func() {
		if timer == nil {
			timer = time.NewTimer(w.debounce)
		} else {
			timer.Reset(w.debounce)
		}
		fire = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					matched, err := w.addTree(event.Name)
					if err != nil {
						slog.Warn("watch_add_failed", "path", event.Name, "error", err)
					}
					if matched {
						arm()
					}
					continue
				}
			}
			if event.Has(fsnotify.Chmod) || !w.match(event.Name) {
				continue
			}
			arm()
		case <-fire:
			fire = nil
			w.onChange()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("watch_error", "error", err)
		}
	}
}

// Stop closes the underlying watcher. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.watcher.Close()
	})
}
