package cli

import (
	"errors"
	"os"
	"testing"

	"github.com/javanstorm/krunvm/internal/config"
	"github.com/javanstorm/krunvm/internal/rootfs"
)

func TestPlatformPreflight(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("root always passes")
	}
	stubRootfsTool(t, nil)

	t.Setenv("BUILDAH_ISOLATION", "")
	if err := platformPreflight(nil, config.Default()); !errors.Is(err, errNeedsUnshare) {
		t.Errorf("error = %v, want errNeedsUnshare", err)
	}

	t.Setenv("BUILDAH_ISOLATION", "rootless")
	if err := platformPreflight(nil, config.Default()); err != nil {
		t.Errorf("inside buildah unshare: %v", err)
	}
}

func TestPlatformPreflightMissingTool(t *testing.T) {
	stubRootfsTool(t, rootfs.ErrToolNotFound)
	t.Setenv("BUILDAH_ISOLATION", "rootless")

	if err := platformPreflight(nil, config.Default()); !errors.Is(err, rootfs.ErrToolNotFound) {
		t.Errorf("error = %v, want ErrToolNotFound", err)
	}
}
