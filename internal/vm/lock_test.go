package vm

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/containerd/errdefs"
)

func TestAcquireLockExclusive(t *testing.T) {
	rootfs := t.TempDir()

	first, err := AcquireLock(rootfs)
	if err != nil {
		t.Fatalf("first AcquireLock: %v", err)
	}

	_, err = AcquireLock(rootfs)
	if !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("second AcquireLock: expected ErrAlreadyRunning, got %v", err)
	}
	if !errdefs.IsUnavailable(err) {
		t.Errorf("contention is not reported as unavailable: %v", err)
	}
	if !lockHeld(rootfs) {
		t.Error("lockHeld = false while the lock is held")
	}

	if err := first.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if err := first.Release(); err != nil {
		t.Errorf("second Release: %v", err)
	}
	if lockHeld(rootfs) {
		t.Error("lockHeld = true after release")
	}

	again, err := AcquireLock(rootfs)
	if err != nil {
		t.Fatalf("AcquireLock after release: %v", err)
	}
	again.Release()

	if _, err := os.Stat(filepath.Join(rootfs, LockFileName)); err != nil {
		t.Errorf("lock file missing: %v", err)
	}
}

func TestAcquireLockMissingRootfs(t *testing.T) {
	_, err := AcquireLock(filepath.Join(t.TempDir(), "missing"))
	if err == nil || errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("expected a plain error, got %v", err)
	}
	if lockHeld(filepath.Join(t.TempDir(), "missing")) {
		t.Error("lockHeld = true for a missing rootfs")
	}
}
