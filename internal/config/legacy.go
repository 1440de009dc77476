package config

import (
	"bytes"
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"github.com/samber/lo"
)

// PreviousVersion is the schema version that Load can still migrate from.
const PreviousVersion = 1

// VMConfigV1 is a VM definition as written by schema version 1, before
// per-VM network modes existed.
type VMConfigV1 struct {
	Name      string            `toml:"name"`
	CPUs      uint32            `toml:"cpus"`
	MemoryMiB uint32            `toml:"mem"`
	Container string            `toml:"container"`
	Workdir   string            `toml:"workdir"`
	DNS       string            `toml:"dns"`
	Volumes   map[string]string `toml:"mapped_volumes"`
	Ports     map[string]string `toml:"mapped_ports"`
}

// ConfigV1 is the configuration as written by schema version 1.
type ConfigV1 struct {
	Version          int                   `toml:"version"`
	DefaultCPUs      uint32                `toml:"default_cpus"`
	DefaultMemoryMiB uint32                `toml:"default_mem"`
	DefaultDNS       string                `toml:"default_dns"`
	StorageVolume    string                `toml:"storage_volume"`
	VMs              map[string]VMConfigV1 `toml:"vmconfig_map"`
}

// DefaultV1 returns the defaults schema version 1 used to ship with.
func DefaultV1() *ConfigV1 {
	return &ConfigV1{
		Version:          PreviousVersion,
		DefaultCPUs:      DefaultCPUs,
		DefaultMemoryMiB: DefaultMemoryMiB,
		DefaultDNS:       DefaultDNS,
		VMs:              map[string]VMConfigV1{},
	}
}

// Upgrade converts a version 1 configuration to the current schema. Fields
// introduced since version 1 take their defaults.
func (old *ConfigV1) Upgrade() *Config {
	cfg := &Config{
		Version:            CurrentVersion,
		DefaultCPUs:        old.DefaultCPUs,
		DefaultMemoryMiB:   old.DefaultMemoryMiB,
		DefaultDNS:         old.DefaultDNS,
		DefaultNetworkMode: DefaultNetworkMode,
		StorageVolume:      old.StorageVolume,
		VMs: lo.MapValues(old.VMs, func(vm VMConfigV1, _ string) VMConfig {
			return VMConfig{
				Name:        vm.Name,
				CPUs:        vm.CPUs,
				MemoryMiB:   vm.MemoryMiB,
				Container:   vm.Container,
				Workdir:     vm.Workdir,
				DNS:         vm.DNS,
				NetworkMode: DefaultNetworkMode,
				Volumes:     vm.Volumes,
				Ports:       vm.Ports,
			}
		}),
	}
	cfg.normalize()
	return cfg
}

// currentFile mirrors Config with the fields added in version 2 as
// pointers, so that their absence is detected instead of zero-filled.
type currentFile struct {
	Version            int                      `toml:"version"`
	DefaultCPUs        uint32                   `toml:"default_cpus"`
	DefaultMemoryMiB   uint32                   `toml:"default_mem"`
	DefaultDNS         string                   `toml:"default_dns"`
	DefaultNetworkMode *NetworkMode             `toml:"default_network_mode"`
	StorageVolume      string                   `toml:"storage_volume"`
	VMs                map[string]currentFileVM `toml:"vmconfig_map"`
}

type currentFileVM struct {
	Name        string            `toml:"name"`
	CPUs        uint32            `toml:"cpus"`
	MemoryMiB   uint32            `toml:"mem"`
	Container   string            `toml:"container"`
	Workdir     string            `toml:"workdir"`
	DNS         string            `toml:"dns"`
	NetworkMode *NetworkMode      `toml:"network_mode"`
	Volumes     map[string]string `toml:"mapped_volumes"`
	Ports       map[string]string `toml:"mapped_ports"`
}

// decodeCurrent parses data as a version 2 configuration.
func decodeCurrent(data []byte) (*Config, error) {
	var f currentFile
	if err := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(&f); err != nil {
		return nil, err
	}
	if f.DefaultNetworkMode == nil {
		return nil, fmt.Errorf("missing field `default_network_mode`")
	}

	cfg := &Config{
		Version:            f.Version,
		DefaultCPUs:        f.DefaultCPUs,
		DefaultMemoryMiB:   f.DefaultMemoryMiB,
		DefaultDNS:         f.DefaultDNS,
		DefaultNetworkMode: *f.DefaultNetworkMode,
		StorageVolume:      f.StorageVolume,
		VMs:                make(map[string]VMConfig, len(f.VMs)),
	}
	for key, vm := range f.VMs {
		if vm.NetworkMode == nil {
			return nil, fmt.Errorf("vmconfig_map.%s: missing field `network_mode`", key)
		}
		cfg.VMs[key] = VMConfig{
			Name:        vm.Name,
			CPUs:        vm.CPUs,
			MemoryMiB:   vm.MemoryMiB,
			Container:   vm.Container,
			Workdir:     vm.Workdir,
			DNS:         vm.DNS,
			NetworkMode: *vm.NetworkMode,
			Volumes:     vm.Volumes,
			Ports:       vm.Ports,
		}
	}
	cfg.normalize()
	return cfg, nil
}

// decodePrevious parses data as a version 1 configuration.
func decodePrevious(data []byte) (*ConfigV1, error) {
	var cfg ConfigV1
	if err := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
