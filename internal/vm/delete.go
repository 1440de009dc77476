package vm

import (
	"context"
	"fmt"
)

// Delete removes the VM's container and its definition. Nothing is removed
// when the container cannot be unmounted.
func (m *Manager) Delete(ctx context.Context, name string) error {
	vm, err := m.cfg.GetVM(name)
	if err != nil {
		return err
	}

	if err := m.rootfs.Unmount(ctx, vm.Container); err != nil {
		return fmt.Errorf("unmount container: %w", err)
	}
	if err := m.rootfs.Remove(ctx, vm.Container); err != nil {
		return fmt.Errorf("remove container: %w", err)
	}

	if _, err := m.cfg.RemoveVM(name); err != nil {
		return err
	}
	m.log.WithField("vm", name).Info("VM deleted")
	return nil
}
