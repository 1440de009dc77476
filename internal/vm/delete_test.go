package vm

import (
	"context"
	"testing"

	"github.com/containerd/errdefs"

	"github.com/javanstorm/krunvm/internal/rootfs"
)

func TestDelete(t *testing.T) {
	env := newTestEnv(t, demoVM())

	if err := env.m.Delete(context.Background(), "demo"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if env.m.Config().HasVM("demo") {
		t.Error("VM still defined")
	}
	if _, ok := env.rootfs.Containers["demo-ctr"]; ok {
		t.Error("container not removed")
	}
}

func TestDeleteKeepsVMWhenUnmountFails(t *testing.T) {
	env := newTestEnv(t, demoVM())
	env.rootfs.Fail[rootfs.VerbUnmount] = &rootfs.ToolError{Tool: "buildah", Verb: rootfs.VerbUnmount, Output: "busy"}

	if err := env.m.Delete(context.Background(), "demo"); err == nil {
		t.Fatal("expected error")
	}
	if env.rootfs.Calls[rootfs.VerbRemove] != 0 {
		t.Error("remove attempted after a failed unmount")
	}
	if !env.m.Config().HasVM("demo") {
		t.Error("VM dropped although its container still exists")
	}
}

func TestDeleteKeepsVMWhenRemoveFails(t *testing.T) {
	env := newTestEnv(t, demoVM())
	env.rootfs.Fail[rootfs.VerbRemove] = &rootfs.ToolError{Tool: "buildah", Verb: rootfs.VerbRemove, Output: "in use"}

	if err := env.m.Delete(context.Background(), "demo"); err == nil {
		t.Fatal("expected error")
	}
	if !env.m.Config().HasVM("demo") {
		t.Error("VM dropped although its container still exists")
	}
}

func TestDeleteUnknownVM(t *testing.T) {
	env := newTestEnv(t)
	if err := env.m.Delete(context.Background(), "nope"); !errdefs.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestInspect(t *testing.T) {
	env := newTestEnv(t, demoVM())
	out, err := env.m.Inspect(context.Background(), "demo")
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if out == "" {
		t.Error("empty inspection")
	}
	if _, err := env.m.Inspect(context.Background(), "nope"); !errdefs.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}
