// Package watch reports changes to a repository's refs by watching its git
// directory.
package watch

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/thiagokokada/gitview/internal/debounce"
)

const DefaultDelay = 350 * time.Millisecond

// Watcher signals on Changes once a burst of file system events under the git
// directory has settled.
type Watcher struct {
	mu       sync.Mutex
	closed   bool
	watcher  *fsnotify.Watcher
	debounce *debounce.Debouncer
	changes  chan struct{}
	done     chan struct{}
	logger   *slog.Logger
}

// New starts watching gitDir. A delay of zero uses DefaultDelay.
func New(gitDir string, delay time.Duration, logger *slog.Logger) (*Watcher, error) {
	if delay <= 0 {
		delay = DefaultDelay
	}
	if logger == nil {
		logger = slog.Default()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}
	for path := range Paths(gitDir) {
		logger.Debug("adding path to FS watcher", slog.String("path", path))
		if err := fw.Add(path); err != nil {
			err := errors.Join(err, fw.Close())
			return nil, fmt.Errorf("watch %s: %w", path, err)
		}
	}
	w := &Watcher{
		watcher: fw,
		changes: make(chan struct{}, 1),
		done:    make(chan struct{}),
		logger:  logger,
	}
	debounce.Ensure(&w.debounce, delay, w.notify)
	go w.loop()
	return w, nil
}

// Changes receives one value per settled burst. Bursts that arrive while a
// value is still pending are folded into it.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.debounce.Stop()
	w.mu.Unlock()
	err := w.watcher.Close()
	<-w.done
	return err
}

func (w *Watcher) notify() {
	select {
	case w.changes <- struct{}{}:
	default:
	}
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if shouldIgnore(ev.Name) {
				continue
			}
			w.logger.Debug("fsnotify event",
				slog.String("op", ev.Op.String()),
				slog.String("path", ev.Name),
			)
			w.schedule()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("fsnotify error", slog.Any("error", err))
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.debounce.Trigger()
}

// Paths lists the directories to watch for gitDir: the git directory itself
// (HEAD, packed-refs) and the loose ref directories that exist.
func Paths(gitDir string) iter.Seq[string] {
	return func(yield func(string) bool) {
		if gitDir == "" {
			return
		}
		if !yield(gitDir) {
			return
		}
		for _, sub := range []string{"heads", "tags", "remotes"} {
			dir := filepath.Join(gitDir, "refs", sub)
			if info, err := os.Stat(dir); err != nil || !info.IsDir() {
				continue
			}
			if !yield(dir) {
				return
			}
		}
	}
}

func shouldIgnore(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".lock" || ext == ".ipc"
}
