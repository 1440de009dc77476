package vm

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/containerd/errdefs"
	"github.com/sirupsen/logrus"

	"github.com/javanstorm/krunvm/internal/config"
	"github.com/javanstorm/krunvm/internal/rootfs"
	"github.com/javanstorm/krunvm/pkg/hypervisor"
)

// Files written into a new container's rootfs.
const (
	ImageConfigFile = hypervisor.ImageConfigFile
	ResolvConfFile  = "etc/resolv.conf"
	RosettaDir      = ".rosetta"
)

// RosettaFile must exist in the user's home directory to run x86_64 guests
// on Apple silicon.
const RosettaFile = ".krunvm-rosetta"

// Test dependencies.
var (
	goos        = runtime.GOOS
	userHomeDir = os.UserHomeDir
)

// CreateOptions describes a new VM. Zero values take the configured
// defaults.
type CreateOptions struct {
	Image       string
	Name        string
	CPUs        uint32
	MemoryMiB   uint32
	DNS         string
	Workdir     string
	NetworkMode config.NetworkMode
	Volumes     []config.PathPair
	Ports       []config.PortPair

	// X86 creates an x86_64 VM on an arm64 macOS host through Rosetta.
	X86 bool
}

// Create makes a working container from an image, prepares its rootfs and
// records the new VM in the configuration.
func (m *Manager) Create(ctx context.Context, opts CreateOptions) (config.VMConfig, error) {
	vm, err := m.resolveCreate(opts)
	if err != nil {
		return config.VMConfig{}, err
	}

	fromOpts := rootfs.FromOptions{}
	if opts.X86 {
		fromOpts.Arch = "x86_64"
	}
	container, err := m.rootfs.From(ctx, opts.Image, fromOpts)
	if err != nil {
		return config.VMConfig{}, err
	}
	vm.Container = container
	if vm.Name == "" {
		vm.Name = container
	}
	log := m.log.WithFields(logrus.Fields{"vm": vm.Name, "container": container})

	if err := m.prepareRootfs(ctx, vm, opts, log); err != nil {
		m.discard(ctx, container, log)
		return config.VMConfig{}, err
	}
	if err := m.cfg.AddVM(vm); err != nil {
		m.discard(ctx, container, log)
		return config.VMConfig{}, err
	}
	log.Info("VM created")
	return vm, nil
}

// resolveCreate applies defaults and checks everything that can be checked
// before the container exists.
func (m *Manager) resolveCreate(opts CreateOptions) (config.VMConfig, error) {
	volumes, err := config.VolumeMap(opts.Volumes)
	if err != nil {
		return config.VMConfig{}, err
	}
	ports, err := config.PortMap(opts.Ports)
	if err != nil {
		return config.VMConfig{}, err
	}
	vm := config.VMConfig{
		Name:        opts.Name,
		CPUs:        opts.CPUs,
		MemoryMiB:   opts.MemoryMiB,
		DNS:         opts.DNS,
		Workdir:     opts.Workdir,
		NetworkMode: opts.NetworkMode,
		Volumes:     volumes,
		Ports:       ports,
	}
	if vm.CPUs == 0 {
		vm.CPUs = m.cfg.DefaultCPUs
	}
	if vm.MemoryMiB == 0 {
		vm.MemoryMiB = m.cfg.DefaultMemoryMiB
	}
	if vm.DNS == "" {
		vm.DNS = m.cfg.DefaultDNS
	}
	if vm.NetworkMode == "" {
		vm.NetworkMode = m.cfg.DefaultNetworkMode
	}

	if opts.X86 {
		if err := checkRosetta(); err != nil {
			return config.VMConfig{}, err
		}
		if vm.CPUs != 1 {
			m.log.Warn("x86 microVMs on Aarch64 are restricted to 1 CPU")
			vm.CPUs = 1
		}
	}

	if err := config.ValidateCPUs(vm.CPUs); err != nil {
		return config.VMConfig{}, err
	}
	if err := config.ValidateMemory(vm.MemoryMiB); err != nil {
		return config.VMConfig{}, err
	}
	if vm.Name != "" {
		if err := config.ValidateName(vm.Name); err != nil {
			return config.VMConfig{}, err
		}
		if m.cfg.HasVM(vm.Name) {
			return config.VMConfig{}, fmt.Errorf("a VM with name %q already exists: %w", vm.Name, errdefs.ErrAlreadyExists)
		}
	}
	if err := ValidateImage(opts.Image); err != nil {
		return config.VMConfig{}, err
	}
	return vm, nil
}

func checkRosetta() error {
	if goos != "darwin" {
		return fmt.Errorf("x86 microVMs are only supported on macOS: %w", errdefs.ErrInvalidArgument)
	}
	home, err := userHomeDir()
	if err != nil {
		return fmt.Errorf("locate home directory: %w", err)
	}
	path := filepath.Join(home, RosettaFile)
	if info, err := os.Stat(path); err != nil || !info.Mode().IsRegular() {
		return fmt.Errorf("to use Rosetta for Linux you need to create %s with the contents the rosetta binary expects to be served from its ioctl: %w",
			path, errdefs.ErrFailedPrecondition)
	}
	return nil
}

// prepareRootfs writes the image config and DNS settings into the container.
func (m *Manager) prepareRootfs(ctx context.Context, vm config.VMConfig, opts CreateOptions, log *logrus.Entry) error {
	rootfsPath, err := m.rootfs.Mount(ctx, vm.Container)
	if err != nil {
		return fmt.Errorf("mount container: %w", err)
	}

	if err := m.writeRootfsFiles(ctx, rootfsPath, vm.DNS, opts); err != nil {
		if uerr := m.rootfs.Unmount(ctx, vm.Container); uerr != nil {
			log.WithError(uerr).Warn("failed to unmount container")
		}
		return err
	}

	if err := m.rootfs.Unmount(ctx, vm.Container); err != nil {
		return fmt.Errorf("unmount container: %w", err)
	}
	return nil
}

func (m *Manager) writeRootfsFiles(ctx context.Context, rootfsPath, dns string, opts CreateOptions) error {
	imageConfig, err := m.rootfs.Inspect(ctx, opts.Image)
	if err != nil {
		return fmt.Errorf("inspect image: %w", err)
	}
	if err := os.WriteFile(filepath.Join(rootfsPath, ImageConfigFile), []byte(imageConfig), 0644); err != nil {
		return fmt.Errorf("write image config: %w", err)
	}

	if err := WriteResolvConf(rootfsPath, dns); err != nil {
		return err
	}

	if opts.X86 {
		if err := os.Mkdir(filepath.Join(rootfsPath, RosettaDir), 0755); err != nil && !os.IsExist(err) {
			return fmt.Errorf("create rosetta mount point: %w", err)
		}
	}
	return nil
}

// WriteResolvConf points the guest resolver at dns over TCP (use-vc).
func WriteResolvConf(rootfsPath, dns string) error {
	path := filepath.Join(rootfsPath, ResolvConfFile)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	// Images often ship resolv.conf as a symlink.
	os.Remove(path)
	content := "options use-vc\nnameserver " + dns + "\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("write resolv.conf: %w", err)
	}
	return nil
}

// discard removes a container whose VM could not be created.
func (m *Manager) discard(ctx context.Context, container string, log *logrus.Entry) {
	if err := m.rootfs.Unmount(ctx, container); err != nil {
		log.WithError(err).Warn("failed to unmount container")
		return
	}
	if err := m.rootfs.Remove(ctx, container); err != nil {
		log.WithError(err).Warn("failed to remove container")
	}
}
