package vm

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Test dependencies.
var (
	unixGetrlimit = unix.Getrlimit
	unixSetrlimit = unix.Setrlimit
)

// RaiseFileLimit lifts the soft open-files limit to the hard limit. virtio-fs
// keeps a descriptor open for every file the guest touches.
func RaiseFileLimit() error {
	var lim unix.Rlimit
	if err := unixGetrlimit(unix.RLIMIT_NOFILE, &lim); err != nil {
		return fmt.Errorf("get RLIMIT_NOFILE: %w", err)
	}
	if lim.Cur == lim.Max {
		return nil
	}
	lim.Cur = lim.Max
	if err := unixSetrlimit(unix.RLIMIT_NOFILE, &lim); err != nil {
		return fmt.Errorf("set RLIMIT_NOFILE: %w", err)
	}
	return nil
}
