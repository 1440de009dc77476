package cli

import (
	"github.com/spf13/cobra"

	"github.com/javanstorm/krunvm/internal/vm"
)

var deleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Delete an existing microVM",
	Long:  `Delete a microVM along with its buildah container. The image itself is kept.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newManager(vm.ManagerConfig{})
		if err != nil {
			return err
		}
		if err := m.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		return saveConfig()
	},
}
