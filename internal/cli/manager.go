package cli

import (
	"github.com/sirupsen/logrus"

	"github.com/javanstorm/krunvm/internal/config"
	"github.com/javanstorm/krunvm/internal/rootfs"
	"github.com/javanstorm/krunvm/internal/vm"
	"github.com/javanstorm/krunvm/pkg/hypervisor"
)

// RuntimeFactory opens the hypervisor runtime used by start.
type RuntimeFactory func() (hypervisor.Runtime, error)

// Test dependencies.
var (
	newRootfs = func(cfg *config.Config) vm.Rootfs {
		return rootfs.NewClient(
			rootfs.WithStorageVolume(cfg.StorageVolume),
			rootfs.WithLogger(logrus.WithField("component", "rootfs")),
		)
	}
	newRuntime RuntimeFactory = func() (hypervisor.Runtime, error) {
		return nil, hypervisor.ErrUnsupportedPlatform
	}
	checkRootfsTool = func(cfg *config.Config) error {
		return rootfs.NewClient(rootfs.WithStorageVolume(cfg.StorageVolume)).CheckTool()
	}
)

// newManager builds a VM manager over the loaded configuration. Only start
// needs a launcher.
func newManager(mc vm.ManagerConfig) (*vm.Manager, error) {
	mc.Config = appConfig
	mc.Rootfs = newRootfs(appConfig)
	if mc.Log == nil {
		mc.Log = logrus.WithField("component", "vm")
	}
	return vm.NewManager(mc)
}
