// Package store loads and saves ontology models on the local
// filesystem. Models are interchange-format documents in JSON or YAML;
// decoding applies defaults and validates identity fields so the
// engines never see malformed input.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/c360studio/semdelta/model"
)

// ErrNotFound is returned when a model file does not exist.
var ErrNotFound = errors.New("model file not found")

// Store reads and writes model files under a root directory.
type Store struct {
	root   string
	logger *slog.Logger
}

// New creates a store rooted at dir. Paths passed to Load and Save are
// resolved relative to dir unless absolute.
func New(dir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{root: dir, logger: logger}
}

// Root returns the store's root directory.
func (s *Store) Root() string {
	return s.root
}

func (s *Store) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.root, path)
}

// Load reads and decodes one model file. The format is chosen by
// extension: .json for JSON, .yaml/.yml for YAML.
func (s *Store) Load(ctx context.Context, path string) (*model.Ontology, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	abs := s.resolve(path)
	data, err := os.ReadFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read model file: %w", err)
	}

	return Decode(data, filepath.Ext(abs))
}

// Decode unmarshals model data in the format implied by ext, applies
// interchange defaults, and validates identity fields.
func Decode(data []byte, ext string) (*model.Ontology, error) {
	var o model.Ontology
	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(data, &o); err != nil {
			return nil, fmt.Errorf("parse model JSON: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &o); err != nil {
			return nil, fmt.Errorf("parse model YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported model file extension: %q", ext)
	}

	o.ApplyDefaults()
	if err := o.Validate(); err != nil {
		return nil, fmt.Errorf("validate model: %w", err)
	}
	return &o, nil
}

// Save encodes the model in the format implied by the path's extension
// and writes it, creating parent directories as needed.
func (s *Store) Save(ctx context.Context, path string, o *model.Ontology) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := o.Validate(); err != nil {
		return fmt.Errorf("validate model: %w", err)
	}

	abs := s.resolve(path)
	var data []byte
	var err error
	switch strings.ToLower(filepath.Ext(abs)) {
	case ".json":
		data, err = json.MarshalIndent(o, "", "  ")
	case ".yaml", ".yml":
		data, err = yaml.Marshal(o)
	default:
		return fmt.Errorf("unsupported model file extension: %q", filepath.Ext(abs))
	}
	if err != nil {
		return fmt.Errorf("encode model: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		return fmt.Errorf("create model directory: %w", err)
	}
	if err := os.WriteFile(abs, data, 0644); err != nil {
		return fmt.Errorf("write model file: %w", err)
	}
	return nil
}

// LoadGlob loads every model matching the doublestar pattern (relative
// to the store root) into a map keyed by file base name without
// extension. Files that fail to decode are skipped and logged, matching
// the tolerant directory-scan behavior the analyzer expects.
func (s *Store) LoadGlob(ctx context.Context, pattern string) (map[string]*model.Ontology, error) {
	matches, err := doublestar.FilepathGlob(s.resolve(pattern))
	if err != nil {
		return nil, fmt.Errorf("glob models: %w", err)
	}

	models := make(map[string]*model.Ontology, len(matches))
	for _, match := range matches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		o, err := s.Load(ctx, match)
		if err != nil {
			s.logger.Warn("Skipping model file", slog.String("path", match), slog.String("error", err.Error()))
			continue
		}
		name := strings.TrimSuffix(filepath.Base(match), filepath.Ext(match))
		models[name] = o
	}
	return models, nil
}
