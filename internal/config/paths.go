// Package config provides the persisted krunvm configuration: global
// defaults plus the set of named VM definitions.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName is used for the configuration directory and in user-facing messages.
const AppName = "krunvm"

// ConfigFileName is the name of the configuration file inside ConfigDir.
const ConfigFileName = "default-config.toml"

// ConfigDirEnv overrides the configuration directory when set.
const ConfigDirEnv = "KRUNVM_CONFIG_DIR"

// Paths holds platform-specific directory paths for krunvm.
type Paths struct {
	// ConfigDir is the directory for configuration files.
	// macOS: ~/Library/Application Support/krunvm
	// Linux: ~/.config/krunvm (or XDG_CONFIG_HOME)
	ConfigDir string

	// ConfigFile is the path to the main config file.
	ConfigFile string
}

// GetPaths returns platform-aware paths for krunvm.
func GetPaths() (*Paths, error) {
	p := &Paths{}

	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		p.ConfigDir = dir
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}

		switch runtime.GOOS {
		case "darwin":
			p.ConfigDir = filepath.Join(home, "Library", "Application Support", AppName)
		default: // Linux and others
			// Respect XDG_CONFIG_HOME if set
			if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
				p.ConfigDir = filepath.Join(xdgConfig, AppName)
			} else {
				p.ConfigDir = filepath.Join(home, ".config", AppName)
			}
		}
	}

	p.ConfigFile = filepath.Join(p.ConfigDir, ConfigFileName)

	return p, nil
}
