// Package vm runs the krunvm operations: creating, starting, changing and
// deleting VMs on top of the rootfs manager and the hypervisor.
package vm

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/javanstorm/krunvm/internal/config"
	"github.com/javanstorm/krunvm/internal/network"
	"github.com/javanstorm/krunvm/internal/rootfs"
	"github.com/javanstorm/krunvm/internal/timing"
	"github.com/javanstorm/krunvm/pkg/hypervisor"
)

// Rootfs manages working containers. It is implemented by *rootfs.Client.
type Rootfs interface {
	From(ctx context.Context, image string, opts rootfs.FromOptions) (string, error)
	Mount(ctx context.Context, id string) (string, error)
	Unmount(ctx context.Context, id string) error
	Remove(ctx context.Context, id string) error
	Inspect(ctx context.Context, id string) (string, error)
	InspectContainer(ctx context.Context, id string) (*rootfs.ContainerInfo, error)
}

// Launcher configures and runs a guest. It is implemented by
// *hypervisor.Builder.
type Launcher interface {
	Launch(cfg *hypervisor.LaunchConfig) error
}

// NetworkFactory returns the network backend for a VM.
type NetworkFactory func(mode config.NetworkMode, ports map[string]string) (network.Backend, error)

// ManagerConfig holds the collaborators of a Manager.
type ManagerConfig struct {
	// Config is the loaded configuration. Mutations are made in place and
	// saved by the caller.
	Config *config.Config

	Rootfs   Rootfs
	Launcher Launcher

	// Network defaults to network.New.
	Network NetworkFactory

	// RaiseLimits defaults to RaiseFileLimit.
	RaiseLimits func() error

	// Timer, when set, gets a mark for every start phase.
	Timer *timing.Timer

	// BeforeLaunch runs right before the hand-off to the guest.
	BeforeLaunch func()

	Log *logrus.Entry
}

// Manager runs VM operations against one loaded configuration.
type Manager struct {
	cfg          *config.Config
	rootfs       Rootfs
	launcher     Launcher
	network      NetworkFactory
	raiseLimits  func() error
	timer        *timing.Timer
	beforeLaunch func()
	log          *logrus.Entry
}

// NewManager creates a VM manager.
func NewManager(cfg ManagerConfig) (*Manager, error) {
	if cfg.Config == nil {
		return nil, errors.New("vm: configuration is required")
	}
	if cfg.Rootfs == nil {
		return nil, errors.New("vm: rootfs manager is required")
	}

	// Apply defaults
	if cfg.Network == nil {
		cfg.Network = network.New
	}
	if cfg.RaiseLimits == nil {
		cfg.RaiseLimits = RaiseFileLimit
	}
	if cfg.Log == nil {
		cfg.Log = logrus.NewEntry(logrus.StandardLogger())
	}

	return &Manager{
		cfg:          cfg.Config,
		rootfs:       cfg.Rootfs,
		launcher:     cfg.Launcher,
		network:      cfg.Network,
		raiseLimits:  cfg.RaiseLimits,
		timer:        cfg.Timer,
		beforeLaunch: cfg.BeforeLaunch,
		log:          cfg.Log,
	}, nil
}

// Config returns the configuration the manager mutates.
func (m *Manager) Config() *config.Config {
	return m.cfg
}

// Inspect returns the rootfs manager's description of the VM's container.
func (m *Manager) Inspect(ctx context.Context, name string) (string, error) {
	vm, err := m.cfg.GetVM(name)
	if err != nil {
		return "", err
	}
	return m.rootfs.Inspect(ctx, vm.Container)
}

func (m *Manager) mark(phase string) {
	if m.timer != nil {
		m.timer.Mark(phase)
	}
}
