package config

import (
	"errors"
	"fmt"
)

var (
	// ErrPersistence marks failures to read, parse or write the configuration.
	ErrPersistence = errors.New("config: persistence failure")

	// ErrVersionMismatch is returned when a file parses as a schema but
	// carries another schema's version number.
	ErrVersionMismatch = errors.New("config: invalid config version number")
)

// Migrate loads the configuration at the current schema version, falling back
// to the previous one. A configuration loaded at the previous version is
// upgraded and handed to save before it is returned.
func Migrate(
	loadCurrent func() (*Config, error),
	loadPrevious func() (*ConfigV1, error),
	save func(*Config) error,
) (*Config, error) {
	cfg, currentErr := loadCurrent()
	if currentErr == nil {
		if err := checkVersion(cfg.Version, CurrentVersion); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	old, previousErr := loadPrevious()
	if previousErr == nil {
		if err := checkVersion(old.Version, PreviousVersion); err != nil {
			return nil, err
		}
		upgraded := old.Upgrade()
		if err := save(upgraded); err != nil {
			return nil, fmt.Errorf("save migrated config: %w", err)
		}
		return upgraded, nil
	}

	return nil, fmt.Errorf("%w: failed to load config: tried to load as v%d config, got error: %v; tried to load as v%d config, got error: %v",
		ErrPersistence, CurrentVersion, currentErr, PreviousVersion, previousErr)
}

func checkVersion(got, expected int) error {
	if got != expected {
		return fmt.Errorf("%w: %w %d expected %d", ErrPersistence, ErrVersionMismatch, got, expected)
	}
	return nil
}
