package profile

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// FileConfig holds configuration for a file-backed profile
type FileConfig struct {
	// Path of the YAML file holding the profile
	Path string

	// Logger receives a warning when an unreadable profile is discarded
	Logger *slog.Logger
}

// fileStore keeps a profile as a flat YAML map on disk. Every write rewrites
// the whole file through a temp file and rename.
type fileStore struct {
	mu     sync.Mutex
	path   string
	values map[string]string
}

// NewFile opens or creates the profile at cfg.Path. A file that cannot be
// parsed is treated as an empty profile.
func NewFile(cfg *FileConfig) (*fileStore, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.Path == "" {
		return nil, errors.New("profile path cannot be empty")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	store := &fileStore{
		path:   cfg.Path,
		values: make(map[string]string),
	}

	raw, err := os.ReadFile(cfg.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return store, nil
		}
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}

	if err := yaml.Unmarshal(raw, &store.values); err != nil {
		logger.Warn("discarding unreadable profile", "path", cfg.Path, "err", err)
		store.values = make(map[string]string)
	}
	if store.values == nil {
		store.values = make(map[string]string)
	}

	return store, nil
}

// Get returns the value stored for key
func (f *fileStore) Get(key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	value, ok := f.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

// Set stores value under key and flushes the profile
func (f *fileStore) Set(key, value string) error {
	return f.SetMany(map[string]string{key: value})
}

// SetMany stores every entry of values and flushes the profile once
func (f *fileStore) SetMany(values map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	next := make(map[string]string, len(f.values)+len(values))
	for key, value := range f.values {
		next[key] = value
	}
	for key, value := range values {
		next[key] = value
	}

	if err := f.flush(next); err != nil {
		return err
	}

	f.values = next
	return nil
}

// flush writes values to disk; callers hold mu
func (f *fileStore) flush(values map[string]string) error {
	raw, err := yaml.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("failed to create profile directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".profile-*")
	if err != nil {
		return fmt.Errorf("failed to create temp profile: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write profile: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close profile: %w", err)
	}

	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("failed to replace profile: %w", err)
	}

	return nil
}
