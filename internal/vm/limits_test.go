package vm

import (
	"testing"

	"golang.org/x/sys/unix"
)

func TestRaiseFileLimit(t *testing.T) {
	origGet, origSet := unixGetrlimit, unixSetrlimit
	t.Cleanup(func() { unixGetrlimit, unixSetrlimit = origGet, origSet })

	var set *unix.Rlimit
	unixGetrlimit = func(resource int, lim *unix.Rlimit) error {
		if resource != unix.RLIMIT_NOFILE {
			t.Errorf("resource = %d", resource)
		}
		lim.Cur, lim.Max = 1024, 524288
		return nil
	}
	unixSetrlimit = func(_ int, lim *unix.Rlimit) error {
		set = lim
		return nil
	}

	if err := RaiseFileLimit(); err != nil {
		t.Fatalf("RaiseFileLimit: %v", err)
	}
	if set == nil || set.Cur != 524288 || set.Max != 524288 {
		t.Errorf("limit set to %+v", set)
	}
}

func TestRaiseFileLimitAlreadyMax(t *testing.T) {
	origGet, origSet := unixGetrlimit, unixSetrlimit
	t.Cleanup(func() { unixGetrlimit, unixSetrlimit = origGet, origSet })

	unixGetrlimit = func(_ int, lim *unix.Rlimit) error {
		lim.Cur, lim.Max = 4096, 4096
		return nil
	}
	unixSetrlimit = func(int, *unix.Rlimit) error {
		t.Error("setrlimit called although the limit is already at max")
		return nil
	}
	if err := RaiseFileLimit(); err != nil {
		t.Fatalf("RaiseFileLimit: %v", err)
	}
}
