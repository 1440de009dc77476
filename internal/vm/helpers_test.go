package vm

import (
	"os"
	"testing"

	"github.com/javanstorm/krunvm/internal/config"
	"github.com/javanstorm/krunvm/internal/testutil"
	"github.com/javanstorm/krunvm/pkg/hypervisor"
)

// noVolumes keeps tests away from host mounts.
type noVolumes struct{}

func (noVolumes) MapVolumes(hypervisor.Runtime, uint32, string, map[string]string) ([]hypervisor.GuestMount, error) {
	return nil, nil
}

type testEnv struct {
	m       *Manager
	rootfs  *testutil.FakeRootfs
	runtime *testutil.FakeRuntime
}

func newTestEnv(t *testing.T, vms ...config.VMConfig) *testEnv {
	t.Helper()

	fr := testutil.NewFakeRootfs(t)
	for _, vm := range vms {
		fr.AddContainer(vm.Container, "alpine")
	}
	rt := testutil.NewFakeRuntime()

	m, err := NewManager(ManagerConfig{
		Config:      testutil.TestConfig(t, vms...),
		Rootfs:      fr,
		Launcher:    hypervisor.NewBuilder(rt, hypervisor.WithVolumeMapper(noVolumes{})),
		RaiseLimits: func() error { return nil },
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return &testEnv{m: m, rootfs: fr, runtime: rt}
}

func demoVM() config.VMConfig {
	return config.VMConfig{
		Name:        "demo",
		CPUs:        2,
		MemoryMiB:   512,
		Container:   "demo-ctr",
		DNS:         "1.1.1.1",
		NetworkMode: config.NetworkModeTSI,
		Volumes:     map[string]string{},
		Ports:       map[string]string{},
	}
}

func ptr[T any](v T) *T {
	return &v
}

func mustMkdir(t *testing.T, dir string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	return dir
}
