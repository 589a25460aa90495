// Package watch reports changes to a single report file.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period after the last write before a change
// is reported. ERANOS writes its output incrementally.
const DefaultDebounce = 500 * time.Millisecond

// Event is a settled change of the watched file.
type Event struct {
	Path string
	// Removed is true when the file no longer exists.
	Removed bool
	At      time.Time
}

// Watcher monitors one file through its parent directory, so editors and
// solvers that replace the file by rename are still seen.
type Watcher struct {
	Path    string
	Changes <-chan Event

	changes  chan Event
	done     chan struct{}
	debounce time.Duration
	logger   *slog.Logger
	watcher  *fsnotify.Watcher
}

// New creates a watcher for path. A non-positive debounce selects
// DefaultDebounce.
func New(path string, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ch := make(chan Event, 4)
	return &Watcher{
		Path:     abs,
		Changes:  ch,
		changes:  ch,
		done:     make(chan struct{}),
		debounce: debounce,
		logger:   logger,
		watcher:  fw,
	}, nil
}

// Start begins watching.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(filepath.Dir(w.Path)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(w.Path), err)
	}
	go w.loop()
	return nil
}

// Stop closes the watcher and the Changes channel.
func (w *Watcher) Stop() {
	w.watcher.Close()
	<-w.done
	close(w.changes)
}

// Run calls handle for every change until ctx is done or the watcher stops.
// handle runs on the caller's goroutine.
func (w *Watcher) Run(ctx context.Context, handle func(Event)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.Changes:
			if !ok {
				return nil
			}
			handle(ev)
		}
	}
}

func (w *Watcher) loop() {
	defer close(w.done)

	var (
		last    time.Time
		pending bool
	)
	ticker := time.NewTicker(max(w.debounce/4, time.Millisecond))
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				if pending {
					w.emit()
				}
				return
			}
			if filepath.Clean(event.Name) != w.Path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				last = time.Now()
				pending = true
			}

		case <-ticker.C:
			if pending && time.Since(last) >= w.debounce {
				w.emit()
				pending = false
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "path", w.Path, "error", err)
		}
	}
}

func (w *Watcher) emit() {
	_, err := os.Stat(w.Path)
	ev := Event{Path: w.Path, Removed: os.IsNotExist(err), At: time.Now()}
	select {
	case w.changes <- ev:
	default:
		// A change is already queued; the consumer reloads the latest file.
		w.logger.Debug("change coalesced", "path", w.Path)
	}
}
