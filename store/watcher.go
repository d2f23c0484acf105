package store

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

// eventChannelBuffer is the size of the watch event channel.
const eventChannelBuffer = 100

// WatchConfig configures model file watching.
type WatchConfig struct {
	// DebounceDelay is how long to wait for more changes before emitting
	// a batch.
	DebounceDelay time.Duration `yaml:"debounce_delay"`

	// FileExtensions lists file extensions to watch.
	FileExtensions []string `yaml:"file_extensions"`
}

// DefaultWatchConfig returns default watch configuration.
func DefaultWatchConfig() WatchConfig {
	return WatchConfig{
		DebounceDelay:  500 * time.Millisecond,
		FileExtensions: []string{".json", ".yaml", ".yml"},
	}
}

func (c WatchConfig) debounce() time.Duration {
	if c.DebounceDelay <= 0 {
		return 500 * time.Millisecond
	}
	return c.DebounceDelay
}

// WatchEvent is a debounced batch of model file changes.
type WatchEvent struct {
	// Paths are the files that changed since the previous batch.
	Paths []string
}

// Watcher watches a model directory and emits debounced change batches.
type Watcher struct {
	config  WatchConfig
	dir     string
	watcher *fsnotify.Watcher
	logger  *slog.Logger

	extensions map[string]bool

	pendingMu sync.Mutex
	pending   map[string]bool

	events chan WatchEvent
}

// NewWatcher creates a watcher over dir.
func NewWatcher(config WatchConfig, dir string, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	extensions := make(map[string]bool)
	exts := config.FileExtensions
	if len(exts) == 0 {
		exts = DefaultWatchConfig().FileExtensions
	}
	for _, ext := range exts {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		extensions[strings.ToLower(ext)] = true
	}

	return &Watcher{
		config:     config,
		dir:        dir,
		watcher:    fsw,
		logger:     logger,
		extensions: extensions,
		pending:    make(map[string]bool),
		events:     make(chan WatchEvent, eventChannelBuffer),
	}, nil
}

// Events returns the channel of debounced change batches. It is closed
// when the watcher stops.
func (w *Watcher) Events() <-chan WatchEvent {
	return w.events
}

// Start begins watching the model directory. The events channel is
// closed when ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return err
	}
	if err := w.watcher.Add(w.dir); err != nil {
		return err
	}

	go w.processEvents(ctx)

	w.logger.Info("Model watcher started",
		"dir", w.dir,
		"debounce", w.config.debounce())
	return nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.events)
	ticker := time.NewTicker(w.config.debounce())
	defer ticker.Stop()

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
			w.flushPending()
		}
	}
}

func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}
	if !w.extensions[strings.ToLower(filepath.Ext(event.Name))] {
		return
	}

	w.pendingMu.Lock()
	w.pending[event.Name] = true
	w.pendingMu.Unlock()
}

func (w *Watcher) flushPending() {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	paths := make([]string, 0, len(w.pending))
	for path := range w.pending {
		paths = append(paths, path)
	}
	w.pending = make(map[string]bool)
	w.pendingMu.Unlock()

	select {
	case w.events <- WatchEvent{Paths: paths}:
	default:
		w.logger.Warn("Dropping watch event, channel full", "paths", len(paths))
	}
}
