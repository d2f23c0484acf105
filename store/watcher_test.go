package store_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semdelta/store"
)

func TestDefaultWatchConfig(t *testing.T) {
	cfg := store.DefaultWatchConfig()

	assert.Equal(t, 500*time.Millisecond, cfg.DebounceDelay)
	assert.Equal(t, []string{".json", ".yaml", ".yml"}, cfg.FileExtensions)
}

func TestWatcherEmitsDebouncedBatch(t *testing.T) {
	dir := t.TempDir()
	cfg := store.WatchConfig{DebounceDelay: 50 * time.Millisecond}

	w, err := store.NewWatcher(cfg, dir, nil)
	require.NoError(t, err)
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))

	modelPath := filepath.Join(dir, "sales.json")
	require.NoError(t, os.WriteFile(modelPath, []byte(`{"name": "Sales"}`), 0644))
	// changes to non-model extensions are filtered out
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	select {
	case event := <-w.Events():
		assert.Contains(t, event.Paths, modelPath)
		for _, p := range event.Paths {
			assert.NotEqual(t, filepath.Join(dir, "notes.txt"), p)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for watch event")
	}
}

func TestWatcherClosesOnCancel(t *testing.T) {
	w, err := store.NewWatcher(store.WatchConfig{DebounceDelay: 10 * time.Millisecond}, t.TempDir(), nil)
	require.NoError(t, err)
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx))
	cancel()

	select {
	case _, ok := <-w.Events():
		assert.False(t, ok, "events channel should be closed")
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for events channel to close")
	}
}
