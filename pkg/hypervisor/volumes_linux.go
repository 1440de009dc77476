package hypervisor

import (
	"errors"
	"path/filepath"

	"github.com/moby/sys/mountinfo"
	pkgerrors "github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Test dependencies.
var (
	unixMkdir   = unix.Mkdir
	unixMount   = unix.Mount
	unixUnmount = unix.Unmount
	isMounted   = mountinfo.Mounted
)

// DefaultVolumeMapper bind mounts volumes into the rootfs on the host.
func DefaultVolumeMapper() VolumeMapper {
	return bindMounter{}
}

type bindMounter struct{}

func (bindMounter) MapVolumes(_ Runtime, _ uint32, rootfs string, volumes map[string]string) ([]GuestMount, error) {
	for _, host := range sortedHosts(volumes) {
		guest := filepath.Join(rootfs, volumes[host])
		if err := bindMount(host, guest); err != nil {
			return nil, &StepError{Step: StepVolumes, Err: err}
		}
	}
	return nil, nil
}

func bindMount(host, guest string) error {
	if err := unixMkdir(guest, 0755); err != nil && !errors.Is(err, unix.EEXIST) {
		return pkgerrors.Wrapf(err, "create directory %s", guest)
	}

	// A mount left over from an unclean shutdown would be stacked on.
	mounted, err := isMounted(guest)
	if err != nil {
		return pkgerrors.Wrapf(err, "check mount state of %s", guest)
	}
	if mounted {
		if err := unixUnmount(guest, 0); err != nil {
			return pkgerrors.Wrapf(err, "unmount stale volume %s", guest)
		}
	}

	if err := unixMount(host, guest, "", unix.MS_BIND|unix.MS_REC, ""); err != nil {
		return pkgerrors.Wrapf(err, "mount volume %s on %s", host, guest)
	}
	return nil
}
