package cli

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/javanstorm/krunvm/internal/vm"
)

var listDebug bool

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List microVMs",
	Args:    cobra.NoArgs,
	RunE:    runList,
}

func runList(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	vms := appConfig.SortedVMs()
	if len(vms) == 0 {
		fmt.Fprintln(out, "No microVMs found")
		return nil
	}

	var m *vm.Manager
	if listDebug {
		var err error
		if m, err = newManager(vm.ManagerConfig{}); err != nil {
			return err
		}
	}

	for i, v := range vms {
		if i > 0 {
			fmt.Fprintln(out)
		}
		printVM(out, v)
		if m == nil {
			continue
		}
		info, err := m.Inspect(cmd.Context(), v.Name)
		if err != nil {
			logrus.WithError(err).WithField("vm", v.Name).Warn("failed to inspect container")
			continue
		}
		fmt.Fprintf(out, " Container info: %s\n", info)
	}
	return nil
}

func init() {
	listCmd.Flags().BoolVarP(&listDebug, "debug", "d", false, "also print the buildah description of each container")
}
