package vm

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/containerd/errdefs"
	"golang.org/x/sys/unix"
)

// LockFileName is created at the root of the mounted rootfs.
const LockFileName = ".krunvm.lock"

// ErrAlreadyRunning is returned when another process holds the VM lock.
var ErrAlreadyRunning = fmt.Errorf("another instance of this VM is already running: %w", errdefs.ErrUnavailable)

// Test dependencies.
var unixFlock = unix.Flock

// Lock is an exclusive lock on a mounted rootfs. It is held until Release
// or process exit.
type Lock struct {
	f *os.File
}

// AcquireLock takes the lock for rootfs without blocking.
func AcquireLock(rootfs string) (*Lock, error) {
	path := filepath.Join(rootfs, LockFileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("create lock file: %w", err)
	}

	if err := unixFlock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, ErrAlreadyRunning
		}
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	return &Lock{f: f}, nil
}

// Release drops the lock. It is safe to call more than once.
func (l *Lock) Release() error {
	if l == nil || l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f = nil
	return err
}

// lockHeld reports whether a running VM holds the lock on rootfs.
func lockHeld(rootfs string) bool {
	lock, err := AcquireLock(rootfs)
	if err != nil {
		return errors.Is(err, ErrAlreadyRunning)
	}
	lock.Release()
	return false
}
