package rootfs

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"

	pkgerrors "github.com/pkg/errors"
)

// Test dependencies.
var (
	osExecutable = os.Executable
	runXattr     = func(ctx context.Context, args ...string) error {
		return exec.CommandContext(ctx, "xattr", args...).Run()
	}
)

// globalArgs returns the arguments for verb. buildah keeps its storage on the
// case-sensitive volume, and images are always pulled for Linux.
func (c *Client) globalArgs(verb Verb) []string {
	args := []string{
		"--root", filepath.Join(c.storage, "root"),
		"--runroot", filepath.Join(c.storage, "runroot"),
		string(verb),
	}
	if verb != VerbFrom {
		return args
	}

	exe, err := osExecutable()
	if err != nil {
		c.log.WithError(err).Warn("can't locate the krunvm executable, using buildah's default policy")
		return append(args, "--os", "linux")
	}
	etc := filepath.Join(filepath.Dir(exe), "..", "etc", "containers")
	return append(args,
		"--signature-policy", filepath.Join(etc, "policy.json"),
		"--registries-conf", filepath.Join(etc, "registries.conf"),
		"--os", "linux",
	)
}

// fixupRootfs makes files in the rootfs appear owned by root inside the
// guest.
func fixupRootfs(ctx context.Context, rootfs string) error {
	if err := runXattr(ctx, "-w", "user.containers.override_stat", "0:0:0555", rootfs); err != nil {
		return pkgerrors.Wrap(err, "set override_stat xattr")
	}
	return nil
}
