// Package watcher reports changes to section bundles under the catalog root.
package watcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce batches the burst of events an editor save produces.
const DefaultDebounce = 300 * time.Millisecond

// Op is what happened to a bundle.
type Op string

const (
	OpChanged Op = "changed"
	OpRemoved Op = "removed"
)

// Event reports one bundle whose folder changed.
type Event struct {
	SectionID string
	Op        Op
}

// Handler receives debounced bundle events. It runs on the watcher goroutine.
type Handler func(Event)

// Watcher watches the catalog root and every bundle folder directly below it.
type Watcher struct {
	root     string
	fsw      *fsnotify.Watcher
	handler  Handler
	debounce time.Duration
	logger   *slog.Logger

	pending   map[string]time.Time
	watched   map[string]bool
	closeOnce sync.Once
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// New starts watching root and its bundle folders. Changes made after New
// returns are delivered once Run is called.
func New(root string, handler Handler, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{
		root:     filepath.Clean(root),
		fsw:      fsw,
		handler:  handler,
		debounce: DefaultDebounce,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		pending:  make(map[string]time.Time),
		watched:  make(map[string]bool),
	}
	for _, opt := range opts {
		opt(w)
	}

	if err := fsw.Add(w.root); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch catalog root %s: %w", w.root, err)
	}

	entries, err := os.ReadDir(w.root)
	if err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to read catalog root %s: %w", w.root, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			w.addBundle(entry.Name())
		}
	}
	w.logger.Info("Watching catalog", "root", w.root, "bundles", len(w.watched))
	return w, nil
}

func (w *Watcher) addBundle(sectionID string) {
	if w.watched[sectionID] {
		return
	}
	if err := w.fsw.Add(filepath.Join(w.root, sectionID)); err != nil {
		w.logger.Warn("Failed to watch bundle folder", "sectionID", sectionID, "error", err)
		return
	}
	w.watched[sectionID] = true
}

// Run delivers events until ctx is done, then releases the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.Close()

	tick := w.debounce / 2
	if tick <= 0 {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.flush(time.Time{})
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Catalog watcher error", "error", err)

		case now := <-ticker.C:
			w.flush(now.Add(-w.debounce))
		}
	}
}

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		err = w.fsw.Close()
	})
	return err
}

// sectionIDFor maps a path under the root to its bundle folder name.
func (w *Watcher) sectionIDFor(path string) (string, bool) {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return strings.SplitN(rel, string(filepath.Separator), 2)[0], true
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op == fsnotify.Chmod {
		return
	}
	sectionID, ok := w.sectionIDFor(event.Name)
	if !ok {
		return
	}

	topLevel := filepath.Dir(filepath.Clean(event.Name)) == w.root
	if topLevel {
		switch {
		case event.Has(fsnotify.Create):
			info, err := os.Stat(event.Name)
			if err != nil || !info.IsDir() {
				return
			}
			w.addBundle(sectionID)
		case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
			if !w.watched[sectionID] {
				return
			}
			delete(w.watched, sectionID)
		default:
			return
		}
	}

	w.logger.Debug("Bundle event", "sectionID", sectionID, "op", event.Op.String(), "path", event.Name)
	w.pending[sectionID] = time.Now()
}

// flush emits every pending bundle last touched before cutoff.
// A zero cutoff emits everything.
func (w *Watcher) flush(cutoff time.Time) {
	for sectionID, last := range w.pending {
		if !cutoff.IsZero() && last.After(cutoff) {
			continue
		}
		delete(w.pending, sectionID)

		op := OpChanged
		if _, err := os.Stat(filepath.Join(w.root, sectionID)); os.IsNotExist(err) {
			op = OpRemoved
		}
		if w.handler != nil {
			w.handler(Event{SectionID: sectionID, Op: op})
		}
	}
}
