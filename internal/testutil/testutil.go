// Package testutil provides fakes and helpers shared by krunvm tests.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/javanstorm/krunvm/internal/config"
)

// Recorder collects events from several fakes in the order they happen.
type Recorder struct {
	mu     sync.Mutex
	events []string
}

// Record appends an event. A nil Recorder discards it.
func (r *Recorder) Record(format string, args ...any) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

// TempStore returns a config store in a temporary directory.
func TempStore(t *testing.T) *config.Store {
	t.Helper()
	return config.NewStore(filepath.Join(t.TempDir(), config.ConfigFileName))
}

// TestConfig returns a default configuration holding the given VMs.
func TestConfig(t *testing.T, vms ...config.VMConfig) *config.Config {
	t.Helper()

	cfg := config.Default()
	for _, vm := range vms {
		if err := cfg.AddVM(vm); err != nil {
			t.Fatalf("failed to add VM %s: %v", vm.Name, err)
		}
	}
	return cfg
}

// HostDir creates a directory usable as a volume host path.
func HostDir(t *testing.T, name string) string {
	t.Helper()

	dir := filepath.Join(t.TempDir(), name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create directory %s: %v", dir, err)
	}
	return dir
}
