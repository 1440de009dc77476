package vm

import (
	"fmt"

	"github.com/containerd/errdefs"

	"github.com/javanstorm/krunvm/internal/config"
)

// ChangeOptions lists the VM settings to change. Nil fields are kept.
type ChangeOptions struct {
	NewName     *string
	CPUs        *uint32
	MemoryMiB   *uint32
	Workdir     *string
	NetworkMode *config.NetworkMode

	// Volumes replaces all volumes when not empty. RemoveVolumes clears
	// them; the two are exclusive.
	Volumes       []config.PathPair
	RemoveVolumes bool

	// Ports and RemovePorts work like Volumes and RemoveVolumes.
	Ports       []config.PortPair
	RemovePorts bool
}

// Validate checks the options without looking at any VM.
func (o ChangeOptions) Validate() error {
	if o.RemoveVolumes && len(o.Volumes) > 0 {
		return fmt.Errorf("--remove-volumes can't be used together with --volume: %w", errdefs.ErrInvalidArgument)
	}
	if o.RemovePorts && len(o.Ports) > 0 {
		return fmt.Errorf("--remove-ports can't be used together with --port: %w", errdefs.ErrInvalidArgument)
	}
	if o.NewName != nil {
		if err := config.ValidateName(*o.NewName); err != nil {
			return err
		}
	}
	if o.CPUs != nil {
		if err := config.ValidateCPUs(*o.CPUs); err != nil {
			return err
		}
	}
	if o.MemoryMiB != nil {
		if err := config.ValidateMemory(*o.MemoryMiB); err != nil {
			return err
		}
	}
	if o.NetworkMode != nil {
		if _, err := config.ParseNetworkMode(string(*o.NetworkMode)); err != nil {
			return err
		}
	}
	if _, err := config.VolumeMap(o.Volumes); err != nil {
		return err
	}
	if _, err := config.PortMap(o.Ports); err != nil {
		return err
	}
	return nil
}

// Change updates a VM definition and returns the result. Either every
// change applies or none does.
func (m *Manager) Change(name string, opts ChangeOptions) (config.VMConfig, error) {
	if err := opts.Validate(); err != nil {
		return config.VMConfig{}, err
	}
	vm, err := m.cfg.GetVM(name)
	if err != nil {
		return config.VMConfig{}, err
	}
	if opts.NewName != nil && *opts.NewName != name && m.cfg.HasVM(*opts.NewName) {
		return config.VMConfig{}, fmt.Errorf("a VM with name %q already exists: %w", *opts.NewName, errdefs.ErrAlreadyExists)
	}

	if opts.CPUs != nil {
		vm.CPUs = *opts.CPUs
	}
	if opts.MemoryMiB != nil {
		vm.MemoryMiB = *opts.MemoryMiB
	}
	if opts.Workdir != nil {
		vm.Workdir = *opts.Workdir
	}
	if opts.NetworkMode != nil {
		vm.NetworkMode = *opts.NetworkMode
	}
	switch {
	case opts.RemoveVolumes:
		vm.Volumes = map[string]string{}
	case len(opts.Volumes) > 0:
		vm.Volumes, _ = config.VolumeMap(opts.Volumes)
	}
	switch {
	case opts.RemovePorts:
		vm.Ports = map[string]string{}
	case len(opts.Ports) > 0:
		vm.Ports, _ = config.PortMap(opts.Ports)
	}

	if err := m.cfg.PutVM(vm); err != nil {
		return config.VMConfig{}, err
	}
	if opts.NewName != nil {
		return m.cfg.RenameVM(name, *opts.NewName)
	}
	return vm, nil
}
