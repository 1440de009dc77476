package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultStorageVolume is offered when asking for a storage volume on macOS.
const DefaultStorageVolume = "/Volumes/krunvm"

// CheckCaseSensitivity reports whether the filesystem at volume tells apart
// file names that differ only in case. Container storage on macOS needs it.
func CheckCaseSensitivity(volume string) (bool, error) {
	first := filepath.Join(volume, "krunvm_test")
	second := filepath.Join(volume, "krunVM_test")

	if err := os.WriteFile(first, []byte("first"), 0644); err != nil {
		return false, fmt.Errorf("write %s: %w", first, err)
	}
	defer os.Remove(first)

	if err := os.WriteFile(second, []byte("second"), 0644); err != nil {
		return false, fmt.Errorf("write %s: %w", second, err)
	}

	data, err := os.ReadFile(first)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", first, err)
	}
	if string(data) != "first" {
		return false, nil
	}

	os.Remove(second)
	return true, nil
}
