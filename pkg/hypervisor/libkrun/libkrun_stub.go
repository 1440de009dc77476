//go:build !cgo || !(linux || darwin)

package libkrun

import (
	"syscall"

	"github.com/javanstorm/krunvm/pkg/hypervisor"
)

var _ hypervisor.Runtime = (*Runtime)(nil)

// Runtime is unavailable without cgo on Linux or macOS.
type Runtime struct{}

// New returns hypervisor.ErrUnsupportedPlatform.
func New() (*Runtime, error) {
	return nil, hypervisor.ErrUnsupportedPlatform
}

const enosys = -int32(syscall.ENOSYS)

func (*Runtime) SetLogLevel(uint32) int32 { return enosys }
func (*Runtime) CreateContext() int32 { return enosys }
func (*Runtime) FreeContext(uint32) int32 { return enosys }
func (*Runtime) SetVMConfig(uint32, uint8, uint32) int32 { return enosys }
func (*Runtime) SetRoot(uint32, string) int32 { return enosys }
func (*Runtime) AddVirtiofs(uint32, string, string) int32 { return enosys }
func (*Runtime) SetPortMap(uint32, []string) int32 { return enosys }
func (*Runtime) SetPasstFD(uint32, int) int32 { return enosys }
func (*Runtime) SetWorkdir(uint32, string) int32 { return enosys }
func (*Runtime) SetExec(uint32, string, []string, []string) int32 { return enosys }
func (*Runtime) SetEnv(uint32, []string) int32 { return enosys }
func (*Runtime) StartEnter(uint32) int32 { return enosys }
