package hypervisor

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	pkgerrors "github.com/pkg/errors"
)

// Test dependencies.
var osMkdir = os.Mkdir

// DefaultVolumeMapper shares volumes with the guest over virtio-fs. The
// guest mounts them through the helper script.
func DefaultVolumeMapper() VolumeMapper {
	return virtiofsMapper{}
}

type virtiofsMapper struct{}

func (virtiofsMapper) MapVolumes(rt Runtime, id uint32, rootfs string, volumes map[string]string) ([]GuestMount, error) {
	mounts := make([]GuestMount, 0, len(volumes))
	for idx, host := range sortedHosts(volumes) {
		guest := volumes[host]
		dir := filepath.Join(rootfs, guest)
		if err := osMkdir(dir, 0755); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, &StepError{Step: StepVolumes, Err: pkgerrors.Wrapf(err, "create guest path %s", guest)}
		}

		tag := fmt.Sprintf("krunvm%d", idx)
		if status := rt.AddVirtiofs(id, tag, host); status < 0 {
			return nil, statusError(StepVolumes, status)
		}
		mounts = append(mounts, GuestMount{Tag: tag, Path: guest})
	}
	return mounts, nil
}
