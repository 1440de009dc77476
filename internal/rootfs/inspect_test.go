package rootfs

import (
	"context"
	"testing"
)

const inspectOutput = `{
  "Type": "buildah 0.0.1",
  "FromImage": "docker.io/library/alpine:latest",
  "FromImageID": "c1aabb73d2339c5ebaa3681de2e9d9c18d57485045a4e311d9f8004bec208d67",
  "Container": "alpine-working-container",
  "ContainerID": "6f0ac4b5e1a5",
  "MountPoint": "/var/lib/containers/storage/overlay/6f0a/merged",
  "OCIv1": {
    "architecture": "amd64",
    "os": "linux",
    "config": {
      "Env": ["PATH=/usr/local/sbin:/usr/local/bin:/usr/sbin:/usr/bin:/sbin:/bin"],
      "Cmd": ["/bin/sh"],
      "WorkingDir": "/"
    },
    "rootfs": {"type": "layers", "diff_ids": []}
  },
  "Docker": {}
}`

func TestParseContainerInfo(t *testing.T) {
	info, err := ParseContainerInfo([]byte(inspectOutput))
	if err != nil {
		t.Fatalf("ParseContainerInfo: %v", err)
	}
	if info.MountPoint != "/var/lib/containers/storage/overlay/6f0a/merged" {
		t.Errorf("MountPoint = %q", info.MountPoint)
	}
	if info.FromImage != "docker.io/library/alpine:latest" {
		t.Errorf("FromImage = %q", info.FromImage)
	}
	if info.OCIv1.OS != "linux" || info.OCIv1.Architecture != "amd64" {
		t.Errorf("platform = %s/%s", info.OCIv1.OS, info.OCIv1.Architecture)
	}
	if len(info.OCIv1.Config.Cmd) != 1 || info.OCIv1.Config.Cmd[0] != "/bin/sh" {
		t.Errorf("Cmd = %v", info.OCIv1.Config.Cmd)
	}
}

func TestParseContainerInfoInvalid(t *testing.T) {
	if _, err := ParseContainerInfo([]byte("not json")); err == nil {
		t.Fatal("expected error")
	}
}

func TestInspectContainerUnmounted(t *testing.T) {
	r := &fakeInspect{out: `{"Container":"demo","MountPoint":""}`}
	c := NewClient(WithRunner(r))

	info, err := c.InspectContainer(context.Background(), "demo")
	if err != nil {
		t.Fatalf("InspectContainer: %v", err)
	}
	if info.MountPoint != "" {
		t.Errorf("MountPoint = %q, want empty", info.MountPoint)
	}
}

type fakeInspect struct{ out string }

func (f *fakeInspect) Run(context.Context, string, ...string) ([]byte, error) {
	return []byte(f.out), nil
}
