package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/containerd/errdefs"
	"github.com/samber/lo"
)

// CurrentVersion is the schema version written by this build.
const CurrentVersion = 2

// Defaults for a freshly created configuration.
const (
	DefaultCPUs        = 2
	DefaultMemoryMiB   = 1024
	DefaultDNS         = "1.1.1.1"
	DefaultNetworkMode = NetworkModeTSI
)

// NetworkMode selects the network backend of a VM.
type NetworkMode string

const (
	// NetworkModeTSI forwards host ports into the guest through libkrun's
	// transparent socket impersonation. No helper process is involved.
	NetworkModeTSI NetworkMode = "Tsi"

	// NetworkModePasst attaches a virtio-net device backed by a passt
	// process over a unix socket pair.
	NetworkModePasst NetworkMode = "Passt"
)

// ParseNetworkMode parses a user supplied mode, ignoring case.
func ParseNetworkMode(s string) (NetworkMode, error) {
	switch {
	case strings.EqualFold(s, string(NetworkModeTSI)):
		return NetworkModeTSI, nil
	case strings.EqualFold(s, string(NetworkModePasst)):
		return NetworkModePasst, nil
	default:
		return "", fmt.Errorf("invalid network mode %q (want tsi or passt): %w", s, errdefs.ErrInvalidArgument)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m NetworkMode) MarshalText() ([]byte, error) {
	return []byte(m), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *NetworkMode) UnmarshalText(text []byte) error {
	mode, err := ParseNetworkMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// VMConfig is the persisted definition of one named VM.
type VMConfig struct {
	// Name is the unique key of the VM.
	Name string `toml:"name"`

	// CPUs is the number of vCPUs (1-8).
	CPUs uint32 `toml:"cpus"`

	// MemoryMiB is the amount of guest RAM in MiB (up to 16384).
	MemoryMiB uint32 `toml:"mem"`

	// Container is the buildah container backing the root filesystem.
	Container string `toml:"container"`

	// Workdir is the working directory inside the guest. Empty means the
	// image default.
	Workdir string `toml:"workdir"`

	// DNS is the nameserver written into the guest resolv.conf.
	DNS string `toml:"dns"`

	// NetworkMode selects the network backend.
	NetworkMode NetworkMode `toml:"network_mode"`

	// Volumes maps absolute host paths to direct children of the guest root.
	Volumes map[string]string `toml:"mapped_volumes"`

	// Ports maps host ports to guest ports, both as numeric strings.
	Ports map[string]string `toml:"mapped_ports"`
}

// Config is the process-wide persisted state.
type Config struct {
	Version            int                 `toml:"version"`
	DefaultCPUs        uint32              `toml:"default_cpus"`
	DefaultMemoryMiB   uint32              `toml:"default_mem"`
	DefaultDNS         string              `toml:"default_dns"`
	DefaultNetworkMode NetworkMode         `toml:"default_network_mode"`
	StorageVolume      string              `toml:"storage_volume"`
	VMs                map[string]VMConfig `toml:"vmconfig_map"`
}

// Default returns a Config at the current schema version.
func Default() *Config {
	return &Config{
		Version:            CurrentVersion,
		DefaultCPUs:        DefaultCPUs,
		DefaultMemoryMiB:   DefaultMemoryMiB,
		DefaultDNS:         DefaultDNS,
		DefaultNetworkMode: DefaultNetworkMode,
		VMs:                map[string]VMConfig{},
	}
}

// normalize replaces nil maps so that decoded and freshly built values compare equal.
func (c *Config) normalize() {
	if c.VMs == nil {
		c.VMs = map[string]VMConfig{}
	}
	for name, vm := range c.VMs {
		if vm.Volumes == nil {
			vm.Volumes = map[string]string{}
		}
		if vm.Ports == nil {
			vm.Ports = map[string]string{}
		}
		c.VMs[name] = vm
	}
}

// GetVM returns a copy of the named VM definition.
func (c *Config) GetVM(name string) (VMConfig, error) {
	vm, ok := c.VMs[name]
	if !ok {
		return VMConfig{}, fmt.Errorf("no VM found with name %q: %w", name, errdefs.ErrNotFound)
	}
	return vm, nil
}

// HasVM reports whether a VM with the given name exists.
func (c *Config) HasVM(name string) bool {
	_, ok := c.VMs[name]
	return ok
}

// AddVM inserts a new definition, rejecting duplicate names.
func (c *Config) AddVM(vm VMConfig) error {
	if c.HasVM(vm.Name) {
		return fmt.Errorf("a VM with name %q already exists: %w", vm.Name, errdefs.ErrAlreadyExists)
	}
	if c.VMs == nil {
		c.VMs = map[string]VMConfig{}
	}
	c.VMs[vm.Name] = vm
	return nil
}

// PutVM replaces an existing definition.
func (c *Config) PutVM(vm VMConfig) error {
	if !c.HasVM(vm.Name) {
		return fmt.Errorf("no VM found with name %q: %w", vm.Name, errdefs.ErrNotFound)
	}
	c.VMs[vm.Name] = vm
	return nil
}

// RenameVM moves a definition to a new key. The new name must be free.
func (c *Config) RenameVM(oldName, newName string) (VMConfig, error) {
	vm, err := c.GetVM(oldName)
	if err != nil {
		return VMConfig{}, err
	}
	if oldName == newName {
		return vm, nil
	}
	if c.HasVM(newName) {
		return VMConfig{}, fmt.Errorf("a VM with name %q already exists: %w", newName, errdefs.ErrAlreadyExists)
	}
	delete(c.VMs, oldName)
	vm.Name = newName
	c.VMs[newName] = vm
	return vm, nil
}

// RemoveVM deletes a definition and returns it.
func (c *Config) RemoveVM(name string) (VMConfig, error) {
	vm, err := c.GetVM(name)
	if err != nil {
		return VMConfig{}, err
	}
	delete(c.VMs, name)
	return vm, nil
}

// SortedVMs returns all definitions ordered by name.
func (c *Config) SortedVMs() []VMConfig {
	names := lo.Keys(c.VMs)
	sort.Strings(names)
	return lo.Map(names, func(name string, _ int) VMConfig {
		return c.VMs[name]
	})
}
