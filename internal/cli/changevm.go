package cli

import (
	"github.com/spf13/cobra"

	"github.com/javanstorm/krunvm/internal/config"
	"github.com/javanstorm/krunvm/internal/vm"
)

var (
	changeNewName       string
	changeCPUs          uint32
	changeMem           uint32
	changeWorkdir       string
	changeNet           config.NetworkMode
	changeVolumes       []config.PathPair
	changeRemoveVolumes bool
	changePorts         []config.PortPair
	changeRemovePorts   bool
)

var changeVMCmd = &cobra.Command{
	Use:   "changevm NAME",
	Short: "Change the configuration of a microVM",
	Long: `Change the configuration of an existing microVM.

--volume and --port replace the whole list when given. Use
--remove-volumes or --remove-ports to clear a list.`,
	Args: cobra.ExactArgs(1),
	RunE: runChangeVM,
}

func runChangeVM(cmd *cobra.Command, args []string) error {
	f := cmd.Flags()
	opts := vm.ChangeOptions{
		Volumes:       changeVolumes,
		RemoveVolumes: changeRemoveVolumes,
		Ports:         changePorts,
		RemovePorts:   changeRemovePorts,
	}
	if f.Changed("new-name") {
		opts.NewName = &changeNewName
	}
	if f.Changed("cpus") {
		opts.CPUs = &changeCPUs
	}
	if f.Changed("mem") {
		opts.MemoryMiB = &changeMem
	}
	if f.Changed("workdir") {
		opts.Workdir = &changeWorkdir
	}
	if f.Changed("net") {
		opts.NetworkMode = &changeNet
	}

	m, err := newManager(vm.ManagerConfig{})
	if err != nil {
		return err
	}
	changed, err := m.Change(args[0], opts)
	if err != nil {
		return err
	}
	if err := saveConfig(); err != nil {
		return err
	}

	printVM(cmd.OutOrStdout(), changed)
	return nil
}

func init() {
	f := changeVMCmd.Flags()
	f.StringVar(&changeNewName, "new-name", "", "new name for the VM")
	f.Uint32Var(&changeCPUs, "cpus", 0, "number of vCPUs")
	f.Uint32Var(&changeMem, "mem", 0, "amount of RAM in MiB")
	f.StringVarP(&changeWorkdir, "workdir", "w", "", "working directory inside the VM")
	f.Var(newNetworkModeValue(&changeNet), "net", "network mode")
	f.Var(newPathPairsValue(&changeVolumes), "volume", "volume to expose to the guest, may be repeated")
	f.BoolVar(&changeRemoveVolumes, "remove-volumes", false, "remove all volumes")
	f.Var(newPortPairsValue(&changePorts), "port", "port to expose to the host, may be repeated")
	f.BoolVar(&changeRemovePorts, "remove-ports", false, "remove all ports")
}
