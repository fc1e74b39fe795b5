package session

import (
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDelay coalesces the burst of events editors emit for one save.
const reloadDelay = 200 * time.Millisecond

// docWatcher reloads sessions when their document changes. It watches the
// containing directory so documents replaced by rename are still seen.
type docWatcher struct {
	fs     *fsnotify.Watcher
	logger *slog.Logger
	reload func(sessionID string)

	mu       sync.Mutex
	byPath   map[string]map[string]struct{} // document -> session ids
	byID     map[string]string              // session id -> document
	dirs     map[string]int                 // watched directory -> documents in it
	pending  map[string]*time.Timer
	done     chan struct{}
	stopOnce sync.Once
}

func newDocWatcher(logger *slog.Logger, reload func(string)) (*docWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &docWatcher{
		fs:      fsw,
		logger:  logger,
		reload:  reload,
		byPath:  make(map[string]map[string]struct{}),
		byID:    make(map[string]string),
		dirs:    make(map[string]int),
		pending: make(map[string]*time.Timer),
		done:    make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Add starts watching path on behalf of sessionID.
func (w *docWatcher) Add(sessionID, path string) error {
	path = filepath.Clean(path)
	dir := filepath.Dir(path)

	w.mu.Lock()
	defer w.mu.Unlock()

	ids, ok := w.byPath[path]
	if !ok {
		if w.dirs[dir] == 0 {
			if err := w.fs.Add(dir); err != nil {
				return err
			}
		}
		w.dirs[dir]++
		ids = make(map[string]struct{})
		w.byPath[path] = ids
	}
	ids[sessionID] = struct{}{}
	w.byID[sessionID] = path
	return nil
}

// Remove stops watching on behalf of sessionID.
func (w *docWatcher) Remove(sessionID string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	path, ok := w.byID[sessionID]
	if !ok {
		return
	}
	delete(w.byID, sessionID)

	ids := w.byPath[path]
	delete(ids, sessionID)
	if len(ids) > 0 {
		return
	}
	delete(w.byPath, path)
	if t, ok := w.pending[path]; ok {
		t.Stop()
		delete(w.pending, path)
	}

	dir := filepath.Dir(path)
	w.dirs[dir]--
	if w.dirs[dir] <= 0 {
		delete(w.dirs, dir)
		_ = w.fs.Remove(dir)
	}
}

// Close stops the watcher.
func (w *docWatcher) Close() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.fs.Close()

		w.mu.Lock()
		for path, t := range w.pending {
			t.Stop()
			delete(w.pending, path)
		}
		w.mu.Unlock()
	})
}

func (w *docWatcher) run() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.schedule(filepath.Clean(event.Name))
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("document watcher error", "error", err)
		}
	}
}

func (w *docWatcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.byPath[path]; !ok {
		return
	}
	if t, ok := w.pending[path]; ok {
		t.Reset(reloadDelay)
		return
	}
	w.pending[path] = time.AfterFunc(reloadDelay, func() { w.fire(path) })
}

func (w *docWatcher) fire(path string) {
	w.mu.Lock()
	delete(w.pending, path)
	ids := make([]string, 0, len(w.byPath[path]))
	for id := range w.byPath[path] {
		ids = append(ids, id)
	}
	w.mu.Unlock()

	for _, id := range ids {
		w.logger.Debug("document changed", "path", path, "session", id)
		w.reload(id)
	}
}
