package hypervisor

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	v1 "github.com/opencontainers/image-spec/specs-go/v1"
	pkgerrors "github.com/pkg/errors"
)

const (
	// MountScript is the guest path of the helper that mounts shared
	// directories before running the command.
	MountScript = "/.krunvm-mount.sh"

	// DefaultShell is run by the helper when neither a command nor an
	// image entry point is available.
	DefaultShell = "/bin/sh"

	// ImageConfigFile holds the rootfs manager's description of the image,
	// written into the rootfs when the VM is created.
	ImageConfigFile = ".krun_config.json"
)

// GuestMount is a shared directory the guest has to mount itself.
type GuestMount struct {
	Tag  string
	Path string
}

// writeMountScript writes the mount helper into rootfs and returns its guest
// path.
func writeMountScript(rootfs string, mounts []GuestMount) (string, error) {
	var b strings.Builder
	b.WriteString("#!/bin/sh\n")
	b.WriteString("set -e\n")
	for _, m := range mounts {
		fmt.Fprintf(&b, "mount -t virtiofs %s %s\n", shellQuote(m.Tag), shellQuote(m.Path))
	}
	b.WriteString("exec \"$@\"\n")

	hostPath := filepath.Join(rootfs, MountScript)
	if err := os.WriteFile(hostPath, []byte(b.String()), 0755); err != nil {
		return "", pkgerrors.Wrap(err, "create mount helper script")
	}
	// WriteFile honors the umask.
	if err := os.Chmod(hostPath, 0755); err != nil {
		return "", pkgerrors.Wrap(err, "set mount helper permissions")
	}
	return MountScript, nil
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// imageEntry returns the image's entry point followed by its default
// arguments. It is empty when the rootfs has no image description or the
// image defines neither.
func imageEntry(rootfs string) ([]string, error) {
	data, err := os.ReadFile(filepath.Join(rootfs, ImageConfigFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "read image config")
	}

	var desc struct {
		OCIv1 v1.Image `json:"OCIv1"`
	}
	if err := json.Unmarshal(data, &desc); err != nil {
		return nil, pkgerrors.Wrap(err, "parse image config")
	}
	entry := append([]string{}, desc.OCIv1.Config.Entrypoint...)
	return append(entry, desc.OCIv1.Config.Cmd...), nil
}
