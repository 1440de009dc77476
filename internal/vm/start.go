package vm

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/javanstorm/krunvm/internal/config"
	"github.com/javanstorm/krunvm/pkg/hypervisor"
)

// ErrNoLauncher is returned by Start when the manager has no hypervisor.
var ErrNoLauncher = errors.New("vm: no hypervisor launcher configured")

// StartOptions selects what runs in the guest.
type StartOptions struct {
	// Command runs in the guest with Args. Empty runs the image default.
	Command string
	Args    []string

	// Env holds extra KEY=value entries.
	Env []string
}

// Start mounts the VM's rootfs, locks it and runs the guest until it exits.
// The rootfs is unmounted on every path once it was mounted, except when
// another instance turns out to own it.
func (m *Manager) Start(ctx context.Context, name string, opts StartOptions) (err error) {
	if m.launcher == nil {
		return ErrNoLauncher
	}
	vm, err := m.cfg.GetVM(name)
	if err != nil {
		return err
	}
	// The file may have been edited by hand.
	if err := config.ValidateCPUs(vm.CPUs); err != nil {
		return err
	}
	if err := config.ValidateMemory(vm.MemoryMiB); err != nil {
		return err
	}
	for _, env := range opts.Env {
		if _, err := config.ParseEnv(env); err != nil {
			return err
		}
	}
	log := m.log.WithFields(logrus.Fields{"vm": vm.Name, "container": vm.Container})

	if err := m.unmountStale(ctx, vm.Container, log); err != nil {
		return err
	}

	rootfsPath, err := m.rootfs.Mount(ctx, vm.Container)
	if err != nil {
		return fmt.Errorf("mount container: %w", err)
	}
	log = log.WithField("rootfs", rootfsPath)
	m.mark("mount")

	unmount := true
	defer func() {
		if !unmount {
			return
		}
		if uerr := m.rootfs.Unmount(context.WithoutCancel(ctx), vm.Container); uerr != nil {
			log.WithError(uerr).Errorf("failed to unmount the container, run `buildah umount %s` to clean up", vm.Container)
		}
	}()

	if err := m.raiseLimits(); err != nil {
		return err
	}

	lock, err := AcquireLock(rootfsPath)
	if err != nil {
		if errors.Is(err, ErrAlreadyRunning) {
			// The mount belongs to the running instance.
			unmount = false
		}
		return err
	}
	defer lock.Release()
	m.mark("lock")

	backend, err := m.network(vm.NetworkMode, vm.Ports)
	if err != nil {
		return err
	}
	netCfg, err := backend.Prepare()
	if err != nil {
		return fmt.Errorf("prepare %s network: %w", vm.NetworkMode, err)
	}
	defer backend.Close()
	m.mark("network")

	if m.beforeLaunch != nil {
		m.beforeLaunch()
	}

	log.Debug("handing off to the guest")
	return m.launcher.Launch(&hypervisor.LaunchConfig{
		Name:      vm.Name,
		CPUs:      vm.CPUs,
		MemoryMiB: vm.MemoryMiB,
		Rootfs:    rootfsPath,
		Volumes:   vm.Volumes,
		Network:   netCfg,
		Workdir:   vm.Workdir,
		Env:       opts.Env,
		Command:   opts.Command,
		Args:      opts.Args,
	})
}

// unmountStale removes a mount left behind by an instance that did not shut
// down cleanly. A mount whose lock is still held belongs to a running
// instance and is left alone.
func (m *Manager) unmountStale(ctx context.Context, container string, log *logrus.Entry) error {
	info, err := m.rootfs.InspectContainer(ctx, container)
	if err == nil && info.MountPoint == "" {
		return nil
	}
	if err == nil && lockHeld(info.MountPoint) {
		return ErrAlreadyRunning
	}

	if uerr := m.rootfs.Unmount(ctx, container); uerr != nil {
		log.WithError(uerr).Warn("failed to unmount stale container mount")
	}
	return nil
}
