// Package watcher reports changes to the assets directory so candidate lists
// can be refreshed without a restart.
package watcher

import (
	"fmt"
	"sync"
	"time"

	"image-selector/internal/logger"

	"github.com/fsnotify/fsnotify"
)

const component = "AssetsWatcher"

// DefaultDebounce coalesces bursts such as a batch copy into one refresh
const DefaultDebounce = 200 * time.Millisecond

// AssetsWatcher calls onChange at most once per debounce window after files
// in the watched directory are created, removed or renamed.
type AssetsWatcher struct {
	watcher  *fsnotify.Watcher
	onChange func()
	debounce time.Duration
	logger   logger.Logger

	mu      sync.Mutex
	timer   *time.Timer
	done    chan struct{}
	stopped bool
	wg      sync.WaitGroup
}

// New starts watching dir. onChange runs on the watcher's goroutine.
func New(dir string, debounce time.Duration, log logger.Logger, onChange func()) (*AssetsWatcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if log == nil {
		log = logger.NewNop()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w := &AssetsWatcher{
		watcher:  fw,
		onChange: onChange,
		debounce: debounce,
		logger:   log,
		done:     make(chan struct{}),
	}

	w.wg.Add(1)
	go w.loop()

	log.Debug(component, "watching assets directory", map[string]interface{}{"dir": dir})
	return w, nil
}

func (w *AssetsWatcher) loop() {
	defer w.wg.Done()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) || event.Has(fsnotify.Write) {
				w.schedule()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error(component, err, nil)
		case <-w.done:
			return
		}
	}
}

func (w *AssetsWatcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.fire)
}

func (w *AssetsWatcher) fire() {
	w.mu.Lock()
	stopped := w.stopped
	w.mu.Unlock()

	if !stopped && w.onChange != nil {
		w.onChange()
	}
}

// Close stops the watcher. It is safe to call more than once.
func (w *AssetsWatcher) Close() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
	}
	close(w.done)
	w.mu.Unlock()

	err := w.watcher.Close()
	w.wg.Wait()
	return err
}
