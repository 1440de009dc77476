package hypervisor

import "os"

// NetworkConfig is what a network backend hands to the builder. Exactly
// one of the fields is used: PasstFD when set, PortMap otherwise.
type NetworkConfig struct {
	// PortMap lists "host:guest" port pairs forwarded by libkrun's TSI.
	PortMap []string

	// PasstFD is the VM end of the socket connected to passt.
	PasstFD *os.File
}

// LaunchConfig holds everything needed to start a guest. Values are expected
// to be validated already; Validate only checks presence.
type LaunchConfig struct {
	// Name is the VM name, exported to the guest as HOSTNAME.
	Name string

	CPUs      uint32
	MemoryMiB uint32

	// Rootfs is the host path of the mounted container.
	Rootfs string

	// Volumes maps host paths to guest paths directly under the guest root.
	Volumes map[string]string

	Network NetworkConfig

	// Workdir is the guest working directory. Empty keeps the default.
	Workdir string

	// Env holds extra KEY=value entries for the guest.
	Env []string

	// Command is run in the guest with Args. Empty runs the image default.
	Command string
	Args    []string
}

// Validate checks that the required fields are set.
func (c *LaunchConfig) Validate() error {
	if c.Name == "" {
		return ErrMissingName
	}
	if c.Rootfs == "" {
		return ErrMissingRootfs
	}
	if c.CPUs == 0 {
		return ErrMissingCPUs
	}
	if c.MemoryMiB == 0 {
		return ErrMissingMemory
	}
	return nil
}

// GuestPath is the PATH exported to every guest.
const GuestPath = "/bin:/sbin:/usr/bin:/usr/sbin:/usr/local/bin"

// Environment returns the guest environment: HOSTNAME, HOME and PATH first,
// then the user entries.
func (c *LaunchConfig) Environment() []string {
	env := make([]string, 0, len(c.Env)+3)
	env = append(env, "HOSTNAME="+c.Name, "HOME=/root", "PATH="+GuestPath)
	return append(env, c.Env...)
}
