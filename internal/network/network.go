// Package network prepares the guest network for one of the two modes:
// port forwarding through libkrun's TSI, or a virtio-net device backed by a
// passt process.
package network

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/containerd/errdefs"
	"github.com/samber/lo"

	"github.com/javanstorm/krunvm/internal/config"
	"github.com/javanstorm/krunvm/pkg/hypervisor"
)

// ErrAlreadyPrepared is returned when a backend is prepared twice.
var ErrAlreadyPrepared = errors.New("network: backend already prepared")

// Backend produces the network settings for one launch.
type Backend interface {
	Prepare() (hypervisor.NetworkConfig, error)
	Close() error
}

// New returns the backend for mode forwarding ports (host -> guest).
func New(mode config.NetworkMode, ports map[string]string) (Backend, error) {
	switch mode {
	case config.NetworkModeTSI:
		return &portForward{ports: portList(ports)}, nil
	case config.NetworkModePasst:
		return &passt{ports: portList(ports)}, nil
	default:
		return nil, fmt.Errorf("unknown network mode %q: %w", mode, errdefs.ErrInvalidArgument)
	}
}

// portList renders ports as sorted "host:guest" pairs.
func portList(ports map[string]string) []string {
	list := lo.MapToSlice(ports, func(host, guest string) string {
		return host + ":" + guest
	})
	sort.Strings(list)
	return list
}

// portForward lets libkrun forward host ports itself. No process is involved.
type portForward struct {
	ports    []string
	prepared bool
}

func (p *portForward) Prepare() (hypervisor.NetworkConfig, error) {
	if p.prepared {
		return hypervisor.NetworkConfig{}, ErrAlreadyPrepared
	}
	p.prepared = true
	return hypervisor.NetworkConfig{PortMap: p.ports}, nil
}

func (p *portForward) Close() error {
	return nil
}

// passtArgs builds the passt command line for the inherited socket at fd.
func passtArgs(fd int, ports []string) []string {
	args := []string{"-q", "-f", "--fd", fmt.Sprint(fd)}
	if len(ports) > 0 {
		args = append(args, "-t", strings.Join(ports, ","))
	}
	return args
}
