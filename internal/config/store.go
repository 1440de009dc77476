package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Store loads and saves the configuration file.
type Store struct {
	path string
}

// NewStore returns a store backed by the file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultStore returns a store at the platform configuration path.
func DefaultStore() (*Store, error) {
	paths, err := GetPaths()
	if err != nil {
		return nil, fmt.Errorf("%w: determine config paths: %w", ErrPersistence, err)
	}
	return NewStore(paths.ConfigFile), nil
}

// Path returns the configuration file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the configuration. A missing file yields the defaults, which are
// persisted right away. A file at the previous schema version is migrated and
// rewritten.
func (s *Store) Load() (*Config, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		cfg := Default()
		if err := s.Save(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read config %s: %w", ErrPersistence, s.path, err)
	}

	return Migrate(
		func() (*Config, error) { return decodeCurrent(data) },
		func() (*ConfigV1, error) { return decodePrevious(data) },
		s.Save,
	)
}

// Save writes the configuration atomically: the whole file is written to a
// temporary sibling which is then renamed over the old one.
func (s *Store) Save(cfg *Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("%w: marshal config: %w", ErrPersistence, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: create config dir: %w", ErrPersistence, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("%w: create temp config: %w", ErrPersistence, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: write config: %w", ErrPersistence, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: sync config: %w", ErrPersistence, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close config: %w", ErrPersistence, err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("%w: chmod config: %w", ErrPersistence, err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("%w: replace config: %w", ErrPersistence, err)
	}
	return nil
}
