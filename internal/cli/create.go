package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/javanstorm/krunvm/internal/config"
	"github.com/javanstorm/krunvm/internal/vm"
)

var (
	createName    string
	createCPUs    uint32
	createMem     uint32
	createDNS     string
	createWorkdir string
	createNet     config.NetworkMode
	createVolumes []config.PathPair
	createPorts   []config.PortPair
	createX86     bool
)

var createCmd = &cobra.Command{
	Use:   "create IMAGE",
	Short: "Create a new microVM",
	Long: `Create a new microVM from an OCI image.

Values not given on the command line are taken from the global defaults
(see 'krunvm config'). The VM is named after its buildah container unless
--name is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runCreate,
}

func runCreate(cmd *cobra.Command, args []string) error {
	m, err := newManager(vm.ManagerConfig{})
	if err != nil {
		return err
	}

	created, err := m.Create(cmd.Context(), vm.CreateOptions{
		Image:       args[0],
		Name:        createName,
		CPUs:        createCPUs,
		MemoryMiB:   createMem,
		DNS:         createDNS,
		Workdir:     createWorkdir,
		NetworkMode: createNet,
		Volumes:     createVolumes,
		Ports:       createPorts,
		X86:         createX86,
	})
	if err != nil {
		return err
	}
	if err := saveConfig(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "microVM created with name: %s\n", created.Name)
	return nil
}

func init() {
	f := createCmd.Flags()
	f.StringVar(&createName, "name", "", "name of the VM (default: the container name)")
	f.Uint32Var(&createCPUs, "cpus", 0, "number of vCPUs (default: global default)")
	f.Uint32Var(&createMem, "mem", 0, "amount of RAM in MiB (default: global default)")
	f.StringVar(&createDNS, "dns", "", "DNS server to use in the VM (default: global default)")
	f.StringVarP(&createWorkdir, "workdir", "w", "", "working directory inside the VM")
	f.Var(newNetworkModeValue(&createNet), "net", "network mode (default: global default)")
	f.Var(newPathPairsValue(&createVolumes), "volume", "volume to expose to the guest, may be repeated")
	f.Var(newPortPairsValue(&createPorts), "port", "port to expose to the host, may be repeated")
	if runtime.GOOS == "darwin" {
		f.BoolVarP(&createX86, "x86", "x", false, "create an x86_64 VM even on an Aarch64 host")
	}
}
