package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javanstorm/krunvm/internal/vm"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect NAME",
	Short: "Print the buildah description of a microVM's container",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newManager(vm.ManagerConfig{})
		if err != nil {
			return err
		}
		info, err := m.Inspect(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), info)
		return nil
	},
}
