package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/containerd/errdefs"
)

// Resource limits accepted for a VM.
const (
	MaxCPUs      = 8
	MaxMemoryMiB = 16384
)

// Test dependencies.
var osStat = os.Stat

// ValidateCPUs checks a vCPU count.
func ValidateCPUs(cpus uint32) error {
	if cpus == 0 {
		return fmt.Errorf("the number of CPUs must be at least 1: %w", errdefs.ErrInvalidArgument)
	}
	if cpus > MaxCPUs {
		return fmt.Errorf("the maximum number of CPUs supported is %d: %w", MaxCPUs, errdefs.ErrInvalidArgument)
	}
	return nil
}

// ValidateMemory checks a RAM size in MiB.
func ValidateMemory(mem uint32) error {
	if mem == 0 {
		return fmt.Errorf("the amount of RAM must be at least 1 MiB: %w", errdefs.ErrInvalidArgument)
	}
	if mem > MaxMemoryMiB {
		return fmt.Errorf("the maximum amount of RAM supported is %d MiB: %w", MaxMemoryMiB, errdefs.ErrInvalidArgument)
	}
	return nil
}

// ValidateName checks that a VM name is usable as a key and a hostname.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("VM name must not be empty: %w", errdefs.ErrInvalidArgument)
	}
	if strings.ContainsAny(name, "/\\:*?\"<>| \t\n") {
		return fmt.Errorf("invalid VM name %q: contains forbidden characters: %w", name, errdefs.ErrInvalidArgument)
	}
	return nil
}

// PortPair is a validated "host:guest" port mapping.
type PortPair struct {
	Host  string
	Guest string
}

func (p PortPair) String() string {
	return p.Host + ":" + p.Guest
}

// ParsePortPair parses "host_port:guest_port". Both ports must be in 1-65535.
func ParsePortPair(s string) (PortPair, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return PortPair{}, fmt.Errorf("invalid port mapping %q, expected host_port:guest_port: %w", s, errdefs.ErrInvalidArgument)
	}
	host, err := parsePort(parts[0])
	if err != nil {
		return PortPair{}, fmt.Errorf("invalid host port in %q: %w", s, err)
	}
	guest, err := parsePort(parts[1])
	if err != nil {
		return PortPair{}, fmt.Errorf("invalid guest port in %q: %w", s, err)
	}
	return PortPair{Host: host, Guest: guest}, nil
}

func parsePort(s string) (string, error) {
	port, err := strconv.ParseUint(s, 10, 16)
	if err != nil || port == 0 {
		return "", fmt.Errorf("%q is not a port number: %w", s, errdefs.ErrInvalidArgument)
	}
	return strconv.FormatUint(port, 10), nil
}

// PathPair is a validated "host_path:guest_path" volume mapping.
type PathPair struct {
	Host  string
	Guest string
}

func (p PathPair) String() string {
	return p.Host + ":" + p.Guest
}

// ParsePathPair parses "host_path:guest_path". The host path must be absolute
// and exist. The guest path must be a direct child of the guest root, which
// is the only shape both volume strategies can map.
func ParsePathPair(s string) (PathPair, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return PathPair{}, fmt.Errorf("invalid volume %q, expected host_path:guest_path: %w", s, errdefs.ErrInvalidArgument)
	}
	host, guest := parts[0], parts[1]

	if !filepath.IsAbs(host) {
		return PathPair{}, fmt.Errorf("invalid volume %q, host_path is not an absolute path: %w", s, errdefs.ErrInvalidArgument)
	}
	if _, err := osStat(host); err != nil {
		return PathPair{}, fmt.Errorf("invalid volume %q, host_path does not exist: %w", s, errdefs.ErrInvalidArgument)
	}
	if !filepath.IsAbs(guest) {
		return PathPair{}, fmt.Errorf("invalid volume %q, guest_path is not an absolute path: %w", s, errdefs.ErrInvalidArgument)
	}
	clean := filepath.Clean(guest)
	if clean == "/" || strings.Contains(strings.TrimPrefix(clean, "/"), "/") {
		return PathPair{}, fmt.Errorf("invalid volume %q, only single direct root children are supported as guest_path: %w", s, errdefs.ErrInvalidArgument)
	}
	return PathPair{Host: host, Guest: clean}, nil
}

// ParseEnv checks a "KEY=value" guest environment entry.
func ParseEnv(s string) (string, error) {
	key, _, ok := strings.Cut(s, "=")
	if !ok || key == "" {
		return "", fmt.Errorf("invalid environment variable %q, expected KEY=value: %w", s, errdefs.ErrInvalidArgument)
	}
	return s, nil
}

// PortMap collects port pairs into the persisted host->guest map. A host
// port given twice is rejected.
func PortMap(pairs []PortPair) (map[string]string, error) {
	m := make(map[string]string, len(pairs))
	for _, p := range pairs {
		if guest, ok := m[p.Host]; ok {
			return nil, fmt.Errorf("host port %s is already mapped to %s: %w", p.Host, guest, errdefs.ErrInvalidArgument)
		}
		m[p.Host] = p.Guest
	}
	return m, nil
}

// VolumeMap collects path pairs into the persisted host->guest map. A host
// path given twice is rejected.
func VolumeMap(pairs []PathPair) (map[string]string, error) {
	m := make(map[string]string, len(pairs))
	for _, p := range pairs {
		if guest, ok := m[p.Host]; ok {
			return nil, fmt.Errorf("host path %s is already mapped to %s: %w", p.Host, guest, errdefs.ErrInvalidArgument)
		}
		m[p.Host] = p.Guest
	}
	return m, nil
}
