package config

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMigrateLoadsCurrentWithoutMigrating(t *testing.T) {
	cfg := Default()
	cfg.DefaultDNS = "8.8.8.8"

	got, err := Migrate(
		func() (*Config, error) { return cfg, nil },
		func() (*ConfigV1, error) {
			t.Fatal("loading v1 should not be attempted")
			return nil, nil
		},
		func(*Config) error {
			t.Fatal("migration should not occur")
			return nil
		},
	)
	if err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if diff := cmp.Diff(cfg, got); diff != "" {
		t.Errorf("Migrate() mismatch (-want +got):\n%s", diff)
	}
}

func TestMigrateFromV1(t *testing.T) {
	old := DefaultV1()
	old.DefaultDNS = "8.8.8.8"
	old.VMs["fedora"] = VMConfigV1{
		Name:      "fedora",
		CPUs:      2,
		MemoryMiB: 8192,
		Container: "fedora",
		Workdir:   "/",
		DNS:       "1.1.1.1",
		Volumes:   map[string]string{},
		Ports:     map[string]string{"8080": "80"},
	}

	want := Default()
	want.DefaultDNS = "8.8.8.8"
	want.VMs["fedora"] = VMConfig{
		Name:        "fedora",
		CPUs:        2,
		MemoryMiB:   8192,
		Container:   "fedora",
		Workdir:     "/",
		DNS:         "1.1.1.1",
		NetworkMode: NetworkModeTSI,
		Volumes:     map[string]string{},
		Ports:       map[string]string{"8080": "80"},
	}

	var loadCurrentCalled, loadPreviousCalled, saveCalled bool
	got, err := Migrate(
		func() (*Config, error) {
			loadCurrentCalled = true
			return nil, errors.New("missing field `default_network_mode`")
		},
		func() (*ConfigV1, error) {
			loadPreviousCalled = true
			return old, nil
		},
		func(migrated *Config) error {
			saveCalled = true
			if diff := cmp.Diff(want, migrated); diff != "" {
				t.Errorf("saved config mismatch (-want +got):\n%s", diff)
			}
			return nil
		},
	)
	if err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	if !loadCurrentCalled {
		t.Error("load v2 must be called")
	}
	if !loadPreviousCalled {
		t.Error("load v1 must be called")
	}
	if !saveCalled {
		t.Error("save must be called")
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Migrate() mismatch (-want +got):\n%s", diff)
	}
}

func TestMigrateVersionMismatch(t *testing.T) {
	t.Run("current schema with wrong version", func(t *testing.T) {
		cfg := Default()
		cfg.Version = 3

		_, err := Migrate(
			func() (*Config, error) { return cfg, nil },
			func() (*ConfigV1, error) { return DefaultV1(), nil },
			func(*Config) error { return nil },
		)
		if !errors.Is(err, ErrVersionMismatch) {
			t.Fatalf("Migrate error = %v, want ErrVersionMismatch", err)
		}
	})

	t.Run("previous schema with wrong version", func(t *testing.T) {
		old := DefaultV1()
		old.Version = 2

		saved := false
		_, err := Migrate(
			func() (*Config, error) { return nil, errors.New("bad v2") },
			func() (*ConfigV1, error) { return old, nil },
			func(*Config) error { saved = true; return nil },
		)
		if !errors.Is(err, ErrVersionMismatch) {
			t.Fatalf("Migrate error = %v, want ErrVersionMismatch", err)
		}
		if saved {
			t.Error("nothing should be saved on version mismatch")
		}
	})
}

func TestMigrateBothFail(t *testing.T) {
	_, err := Migrate(
		func() (*Config, error) { return nil, errors.New("v2 decode boom") },
		func() (*ConfigV1, error) { return nil, errors.New("v1 decode boom") },
		func(*Config) error { return nil },
	)
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("Migrate error = %v, want ErrPersistence", err)
	}
	for _, want := range []string{"v2 decode boom", "v1 decode boom"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q should mention %q", err, want)
		}
	}
}

func TestMigrateSaveFailure(t *testing.T) {
	_, err := Migrate(
		func() (*Config, error) { return nil, errors.New("bad v2") },
		func() (*ConfigV1, error) { return DefaultV1(), nil },
		func(*Config) error { return errors.New("disk full") },
	)
	if err == nil {
		t.Fatal("Migrate should fail when the migrated config cannot be saved")
	}
}
