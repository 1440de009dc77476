package vm

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/containerd/errdefs"
	"github.com/google/go-cmp/cmp"

	"github.com/javanstorm/krunvm/internal/config"
	"github.com/javanstorm/krunvm/internal/rootfs"
	"github.com/javanstorm/krunvm/internal/testutil"
)

func TestCreateAppliesDefaults(t *testing.T) {
	env := newTestEnv(t)

	vm, err := env.m.Create(context.Background(), CreateOptions{Image: "alpine"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	want := config.VMConfig{
		Name:        "alpine-working-container",
		CPUs:        config.DefaultCPUs,
		MemoryMiB:   config.DefaultMemoryMiB,
		Container:   "alpine-working-container",
		DNS:         config.DefaultDNS,
		NetworkMode: config.DefaultNetworkMode,
		Volumes:     map[string]string{},
		Ports:       map[string]string{},
	}
	if diff := cmp.Diff(want, vm); diff != "" {
		t.Errorf("VM mismatch (-want +got):\n%s", diff)
	}
	stored, err := env.m.Config().GetVM(vm.Name)
	if err != nil {
		t.Fatalf("VM not stored: %v", err)
	}
	if diff := cmp.Diff(want, stored); diff != "" {
		t.Errorf("stored VM mismatch (-want +got):\n%s", diff)
	}
}

func TestCreatePreparesRootfs(t *testing.T) {
	env := newTestEnv(t)
	rec := &testutil.Recorder{}
	env.rootfs.Recorder = rec

	vm, err := env.m.Create(context.Background(), CreateOptions{
		Image:   "alpine",
		Name:    "demo",
		DNS:     "9.9.9.9",
		Workdir: "/app",
		Volumes: []config.PathPair{{Host: "/srv", Guest: "/srv"}},
		Ports:   []config.PortPair{{Host: "8080", Guest: "80"}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	wantEvents := []string{"from alpine", "mount " + vm.Container, "unmount " + vm.Container}
	if diff := cmp.Diff(wantEvents, rec.Events()); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}

	root := env.rootfs.MountPoint(vm.Container)
	resolv, err := os.ReadFile(filepath.Join(root, ResolvConfFile))
	if err != nil {
		t.Fatalf("resolv.conf not written: %v", err)
	}
	if string(resolv) != "options use-vc\nnameserver 9.9.9.9\n" {
		t.Errorf("resolv.conf = %q", resolv)
	}
	imageConfig, err := os.ReadFile(filepath.Join(root, ImageConfigFile))
	if err != nil {
		t.Fatalf("image config not written: %v", err)
	}
	if !strings.Contains(string(imageConfig), `"FromImage":"alpine"`) {
		t.Errorf("image config = %s", imageConfig)
	}

	if vm.Workdir != "/app" || vm.Volumes["/srv"] != "/srv" || vm.Ports["8080"] != "80" {
		t.Errorf("options not stored: %+v", vm)
	}
}

func TestCreateRejectsDuplicateName(t *testing.T) {
	env := newTestEnv(t, demoVM())

	_, err := env.m.Create(context.Background(), CreateOptions{Image: "alpine", Name: "demo"})
	if !errdefs.IsAlreadyExists(err) {
		t.Fatalf("expected already exists, got %v", err)
	}
	if env.rootfs.Calls[rootfs.VerbFrom] != 0 {
		t.Error("container created for a duplicate name")
	}
}

func TestCreateRejectsRepeatedHostKeys(t *testing.T) {
	tests := []struct {
		name string
		opts CreateOptions
	}{
		{"volume", CreateOptions{Image: "alpine", Volumes: []config.PathPair{{Host: "/a", Guest: "/x"}, {Host: "/a", Guest: "/y"}}}},
		{"port", CreateOptions{Image: "alpine", Ports: []config.PortPair{{Host: "8080", Guest: "80"}, {Host: "8080", Guest: "81"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			if _, err := env.m.Create(context.Background(), tt.opts); !errdefs.IsInvalidArgument(err) {
				t.Fatalf("expected invalid argument, got %v", err)
			}
			if env.rootfs.Calls[rootfs.VerbFrom] != 0 {
				t.Error("container created for a repeated host key")
			}
		})
	}
}

func TestCreateBounds(t *testing.T) {
	tests := []struct {
		name    string
		cpus    uint32
		mem     uint32
		wantErr bool
	}{
		{"max cpus", 8, 1024, false},
		{"too many cpus", 9, 1024, true},
		{"max memory", 2, 16384, false},
		{"too much memory", 2, 16385, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			_, err := env.m.Create(context.Background(), CreateOptions{Image: "alpine", CPUs: tt.cpus, MemoryMiB: tt.mem})
			if tt.wantErr {
				if !errdefs.IsInvalidArgument(err) {
					t.Fatalf("expected invalid argument, got %v", err)
				}
				if env.rootfs.Calls[rootfs.VerbFrom] != 0 {
					t.Error("container created for invalid options")
				}
				return
			}
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
		})
	}
}

func TestCreateRejectsInvalidImage(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.m.Create(context.Background(), CreateOptions{Image: "Not A Valid/Ref"})
	if !errdefs.IsInvalidArgument(err) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}

func TestCreateCleansUpOnFailure(t *testing.T) {
	env := newTestEnv(t)
	env.rootfs.Fail[rootfs.VerbInspect] = &rootfs.ToolError{Tool: "buildah", Verb: rootfs.VerbInspect, Output: "image not known"}

	_, err := env.m.Create(context.Background(), CreateOptions{Image: "alpine", Name: "demo"})
	if err == nil {
		t.Fatal("expected error")
	}
	if len(env.rootfs.Containers) != 0 {
		t.Errorf("container left behind: %v", env.rootfs.Containers)
	}
	if env.m.Config().HasVM("demo") {
		t.Error("VM recorded despite the failure")
	}
}

func TestCreateX86RequiresMacOS(t *testing.T) {
	orig := goos
	t.Cleanup(func() { goos = orig })
	goos = "linux"

	env := newTestEnv(t)
	_, err := env.m.Create(context.Background(), CreateOptions{Image: "alpine", X86: true})
	if !errdefs.IsInvalidArgument(err) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}

func TestCreateX86(t *testing.T) {
	origGOOS, origHome := goos, userHomeDir
	t.Cleanup(func() { goos, userHomeDir = origGOOS, origHome })

	home := t.TempDir()
	goos = "darwin"
	userHomeDir = func() (string, error) { return home, nil }

	env := newTestEnv(t)
	_, err := env.m.Create(context.Background(), CreateOptions{Image: "alpine", X86: true})
	if !errdefs.IsFailedPrecondition(err) {
		t.Fatalf("expected failed precondition without %s, got %v", RosettaFile, err)
	}

	if err := os.WriteFile(filepath.Join(home, RosettaFile), []byte("rosetta"), 0644); err != nil {
		t.Fatal(err)
	}
	vm, err := env.m.Create(context.Background(), CreateOptions{Image: "alpine", CPUs: 4, X86: true})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if vm.CPUs != 1 {
		t.Errorf("CPUs = %d, want 1", vm.CPUs)
	}
	if _, err := os.Stat(filepath.Join(env.rootfs.MountPoint(vm.Container), RosettaDir)); err != nil {
		t.Errorf("rosetta dir missing: %v", err)
	}
}

func TestWriteResolvConfReplacesSymlink(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "etc"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink("../run/systemd/resolve/stub-resolv.conf", filepath.Join(root, ResolvConfFile)); err != nil {
		t.Fatal(err)
	}

	if err := WriteResolvConf(root, "1.1.1.1"); err != nil {
		t.Fatalf("WriteResolvConf: %v", err)
	}
	info, err := os.Lstat(filepath.Join(root, ResolvConfFile))
	if err != nil {
		t.Fatal(err)
	}
	if !info.Mode().IsRegular() {
		t.Errorf("resolv.conf mode = %v, want regular file", info.Mode())
	}
}
