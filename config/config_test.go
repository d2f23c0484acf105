package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, ".", cfg.Models.Dir)
	assert.Equal(t, "*.json", cfg.Models.Pattern)
	assert.Equal(t, 0.8, cfg.Debt.SimilarityThreshold)
	assert.Equal(t, "ours", cfg.Merge.Strategy)
	assert.Equal(t, 500*time.Millisecond, cfg.Watch.DebounceDelay)
	assert.Equal(t, "markdown", cfg.Output.Format)

	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"empty dir", func(c *Config) { c.Models.Dir = "" }, "models.dir"},
		{"empty pattern", func(c *Config) { c.Models.Pattern = "" }, "models.pattern"},
		{"threshold too low", func(c *Config) { c.Debt.SimilarityThreshold = 0 }, "similarity_threshold"},
		{"threshold too high", func(c *Config) { c.Debt.SimilarityThreshold = 1.5 }, "similarity_threshold"},
		{"bad strategy", func(c *Config) { c.Merge.Strategy = "newest" }, "merge.strategy"},
		{"bad format", func(c *Config) { c.Output.Format = "xml" }, "output.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "semdelta.yaml")
	content := `
models:
  dir: ./models
  pattern: "**/*.yaml"
debt:
  similarity_threshold: 0.6
merge:
  strategy: theirs
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "./models", cfg.Models.Dir)
	assert.Equal(t, "**/*.yaml", cfg.Models.Pattern)
	assert.Equal(t, 0.6, cfg.Debt.SimilarityThreshold)
	assert.Equal(t, "theirs", cfg.Merge.Strategy)
	// fields absent from the file keep their defaults
	assert.Equal(t, "markdown", cfg.Output.Format)
	assert.Equal(t, 500*time.Millisecond, cfg.Watch.DebounceDelay)
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "semdelta.yaml")

	cfg := DefaultConfig()
	cfg.Models.Pattern = "*.yaml"
	cfg.Debt.SimilarityThreshold = 0.9
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestMerge(t *testing.T) {
	base := DefaultConfig()
	base.MergeFrom(&Config{
		Models: ModelsConfig{Pattern: "*.yml"},
		Debt:   DebtConfig{SimilarityThreshold: 0.5},
	})

	assert.Equal(t, "*.yml", base.Models.Pattern)
	assert.Equal(t, 0.5, base.Debt.SimilarityThreshold)
	// zero values in the overlay leave the base untouched
	assert.Equal(t, ".", base.Models.Dir)
	assert.Equal(t, "ours", base.Merge.Strategy)
	assert.Equal(t, "markdown", base.Output.Format)
}

func TestMergeNil(t *testing.T) {
	base := DefaultConfig()
	base.MergeFrom(nil)
	assert.Equal(t, DefaultConfig(), base)
}
