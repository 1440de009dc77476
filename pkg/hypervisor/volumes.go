package hypervisor

import (
	"sort"

	"github.com/samber/lo"
)

// VolumeMapper makes host directories visible in the guest. It may return
// mounts that the guest still has to perform.
type VolumeMapper interface {
	MapVolumes(rt Runtime, id uint32, rootfs string, volumes map[string]string) ([]GuestMount, error)
}

// sortedHosts orders volumes so that tags and mount order are stable.
func sortedHosts(volumes map[string]string) []string {
	hosts := lo.Keys(volumes)
	sort.Strings(hosts)
	return hosts
}
