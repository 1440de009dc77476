package network

import (
	"os"
	"os/exec"

	pkgerrors "github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/javanstorm/krunvm/pkg/hypervisor"
)

// PasstBinary is the network helper run in passt mode.
const PasstBinary = "passt"

// passtFD is the descriptor number the socket gets in the child. ExtraFiles
// start right after the three standard streams.
const passtFD = 3

// Test dependencies.
var (
	unixSocketpair = unix.Socketpair
	startCommand   = func(cmd *exec.Cmd) error { return cmd.Start() }
)

type passtState int

const (
	passtUnconfigured passtState = iota
	passtSpawning
	passtReady
)

// passt attaches the guest to a passt process over a socketpair. The process
// is started and left running; it exits once the VM closes its end.
type passt struct {
	ports []string
	state passtState
	vmEnd *os.File
	cmd   *exec.Cmd
}

func (p *passt) Prepare() (hypervisor.NetworkConfig, error) {
	if p.state != passtUnconfigured {
		return hypervisor.NetworkConfig{}, ErrAlreadyPrepared
	}
	p.state = passtSpawning

	fds, err := unixSocketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		return hypervisor.NetworkConfig{}, pkgerrors.Wrap(err, "create socketpair for passt")
	}
	unix.CloseOnExec(fds[0])
	unix.CloseOnExec(fds[1])
	vmEnd := os.NewFile(uintptr(fds[0]), "passt-vm")
	passtEnd := os.NewFile(uintptr(fds[1]), "passt")
	// The child has its own copy once started.
	defer passtEnd.Close()

	cmd := exec.Command(PasstBinary, passtArgs(passtFD, p.ports)...)
	cmd.ExtraFiles = []*os.File{passtEnd}
	cmd.Stdin, cmd.Stdout, cmd.Stderr = nil, nil, nil

	if err := startCommand(cmd); err != nil {
		vmEnd.Close()
		return hypervisor.NetworkConfig{}, pkgerrors.Wrapf(err, "start %s", PasstBinary)
	}

	p.cmd = cmd
	p.vmEnd = vmEnd
	p.state = passtReady
	return hypervisor.NetworkConfig{PasstFD: vmEnd}, nil
}

// Close releases the VM end of the socket. passt is never waited for.
func (p *passt) Close() error {
	if p.vmEnd == nil {
		return nil
	}
	err := p.vmEnd.Close()
	p.vmEnd = nil
	return err
}
