package source

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatcherConfig configures the batch file watcher
type WatcherConfig struct {
	// Patterns are the globs a file must match to be reported
	Patterns []string

	// DebounceDelay is how long to wait for more changes before loading
	DebounceDelay time.Duration

	// Logger for logging events
	Logger *slog.Logger
}

// WatchOperation indicates the type of file operation
type WatchOperation string

const (
	OpCreate WatchOperation = "create"
	OpModify WatchOperation = "modify"
	OpDelete WatchOperation = "delete"
)

// WatchEvent represents a batch file change
type WatchEvent struct {
	// Path is the absolute file path
	Path string

	Operation WatchOperation

	// File is the loaded batch (nil for deletes and failed loads)
	File *BatchFile

	// Error if loading failed
	Error error
}

// Watcher watches batch files and emits loaded batches when they change.
type Watcher struct {
	config  WatcherConfig
	watcher *fsnotify.Watcher
	logger  *slog.Logger

	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op // path → most recent operation

	hashMu sync.RWMutex
	hashes map[string]string // path → content hash

	events    chan WatchEvent
	closeOnce sync.Once
}

// NewWatcher creates a new batch file watcher
func NewWatcher(config WatcherConfig) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.DebounceDelay <= 0 {
		config.DebounceDelay = 100 * time.Millisecond
	}

	return &Watcher{
		config:  config,
		watcher: fsw,
		logger:  config.Logger,
		pending: make(map[string]fsnotify.Op),
		hashes:  make(map[string]string),
		events:  make(chan WatchEvent, 100),
	}, nil
}

// Events returns the channel of watch events
func (w *Watcher) Events() <-chan WatchEvent {
	return w.events
}

// Start adds watches below every pattern root and begins processing events.
// Roots that do not exist yet are skipped with a warning.
func (w *Watcher) Start(ctx context.Context) error {
	roots, err := WatchRoots(w.config.Patterns)
	if err != nil {
		return err
	}
	for _, root := range roots {
		if _, err := os.Stat(root); err != nil {
			w.logger.Warn("Watch root unavailable", "root", root, "error", err)
			continue
		}
		if err := w.addWatchesRecursive(root); err != nil {
			return err
		}
	}

	go w.processEvents(ctx)

	w.logger.Info("Batch watcher started",
		"roots", roots,
		"debounce", w.config.DebounceDelay)

	return nil
}

// Stop stops the watcher. The events channel is closed once processing ends.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

// SetHash records the hash for a file (used after the initial load)
func (w *Watcher) SetHash(path, hash string) {
	w.hashMu.Lock()
	defer w.hashMu.Unlock()
	w.hashes[path] = hash
}

// GetHash returns the recorded hash for a file
func (w *Watcher) GetHash(path string) (string, bool) {
	w.hashMu.RLock()
	defer w.hashMu.RUnlock()
	hash, ok := w.hashes[path]
	return hash, ok
}

// addWatchesRecursive adds watches to all directories below root
func (w *Watcher) addWatchesRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}

		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}

		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("Failed to watch directory",
				"path", path,
				"error", err)
		} else {
			w.logger.Debug("Watching directory", "path", path)
		}
		return nil
	})
}

// processEvents handles fsnotify events with debouncing
func (w *Watcher) processEvents(ctx context.Context) {
	ticker := time.NewTicker(w.config.DebounceDelay)
	defer ticker.Stop()
	defer w.closeOnce.Do(func() { close(w.events) })

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFSEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher error", "error", err)

		case <-ticker.C:
			w.flushPending(ctx)
		}
	}
}

// handleFSEvent records a change to a matching file
func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	path := event.Name

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			w.handleNewDirectory(path)
			return
		}
	}

	if !Match(w.config.Patterns, path) {
		return
	}

	w.pendingMu.Lock()
	w.pending[path] = event.Op
	w.pendingMu.Unlock()

	w.logger.Debug("Batch change detected",
		"path", path,
		"op", event.Op.String())
}

// handleNewDirectory watches a newly created directory and queues the
// matching files already written into it.
func (w *Watcher) handleNewDirectory(path string) {
	if strings.HasPrefix(filepath.Base(path), ".") {
		return
	}

	if err := w.addWatchesRecursive(path); err != nil {
		w.logger.Warn("Failed to watch new directory",
			"path", path,
			"error", err)
		return
	}

	_ = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err == nil && !d.IsDir() && Match(w.config.Patterns, p) {
			w.pendingMu.Lock()
			w.pending[p] = fsnotify.Create
			w.pendingMu.Unlock()
		}
		return nil
	})
}

// flushPending loads the accumulated changes. A hash is only committed once
// its event is delivered; changes left over when ctx ends are queued again.
func (w *Watcher) flushPending(ctx context.Context) {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	toProcess := w.pending
	w.pending = make(map[string]fsnotify.Op)
	w.pendingMu.Unlock()

	for path, op := range toProcess {
		if ctx.Err() != nil || !w.flushPath(ctx, path, op) {
			w.requeue(path, op)
		}
	}
}

// flushPath emits the event for one changed path. It returns false when the
// event could not be delivered.
func (w *Watcher) flushPath(ctx context.Context, path string, op fsnotify.Op) bool {
	event := WatchEvent{Path: path}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		// Removed or renamed away
		if _, known := w.GetHash(path); !known {
			return true
		}
		event.Operation = OpDelete
		if !w.sendEvent(ctx, event) {
			return false
		}
		w.hashMu.Lock()
		delete(w.hashes, path)
		w.hashMu.Unlock()
		return true
	}

	file, err := LoadFile(path)
	if err != nil {
		event.Operation = OpModify
		event.Error = err
		return w.sendEvent(ctx, event)
	}

	oldHash, hadHash := w.GetHash(path)
	if hadHash && oldHash == file.Hash {
		return true
	}

	if op.Has(fsnotify.Create) || !hadHash {
		event.Operation = OpCreate
	} else {
		event.Operation = OpModify
	}
	event.File = file

	if !w.sendEvent(ctx, event) {
		return false
	}
	w.SetHash(path, file.Hash)
	return true
}

// requeue puts an undelivered change back unless a newer one arrived.
func (w *Watcher) requeue(path string, op fsnotify.Op) {
	w.pendingMu.Lock()
	if _, ok := w.pending[path]; !ok {
		w.pending[path] = op
	}
	w.pendingMu.Unlock()
}

// sendEvent blocks until the event is consumed or ctx ends.
func (w *Watcher) sendEvent(ctx context.Context, event WatchEvent) bool {
	select {
	case w.events <- event:
		w.logger.Debug("Sent watch event",
			"path", event.Path,
			"op", event.Operation)
		return true
	case <-ctx.Done():
		w.logger.Debug("Watch event not delivered",
			"path", event.Path,
			"error", ctx.Err())
		return false
	}
}
