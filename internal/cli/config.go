package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/javanstorm/krunvm/internal/config"
)

var (
	configCPUs uint32
	configMem  uint32
	configDNS  string
	configNet  config.NetworkMode
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change the global defaults",
	Long: `Show the global defaults used by 'krunvm create', changing the
ones given on the command line first.`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	f := cmd.Flags()
	if f.Changed("cpus") {
		if err := config.ValidateCPUs(configCPUs); err != nil {
			return err
		}
	}
	if f.Changed("mem") {
		if err := config.ValidateMemory(configMem); err != nil {
			return err
		}
	}

	if f.Changed("cpus") {
		appConfig.DefaultCPUs = configCPUs
	}
	if f.Changed("mem") {
		appConfig.DefaultMemoryMiB = configMem
	}
	if f.Changed("dns") {
		appConfig.DefaultDNS = configDNS
	}
	if f.Changed("net") {
		appConfig.DefaultNetworkMode = configNet
	}
	if f.Changed("cpus") || f.Changed("mem") || f.Changed("dns") || f.Changed("net") {
		if err := saveConfig(); err != nil {
			return err
		}
	}

	printDefaults(cmd.OutOrStdout(), appConfig)
	return nil
}

func printDefaults(w io.Writer, cfg *config.Config) {
	fmt.Fprintln(w, "Global configuration:")
	fmt.Fprintf(w, "Default number of CPUs for newly created VMs: %d\n", cfg.DefaultCPUs)
	fmt.Fprintf(w, "Default amount of RAM (MiB) for newly created VMs: %d\n", cfg.DefaultMemoryMiB)
	fmt.Fprintf(w, "Default DNS server for newly created VMs: %s\n", cfg.DefaultDNS)
	fmt.Fprintf(w, "Default network mode for newly created VMs: %s\n", cfg.DefaultNetworkMode)
	if cfg.StorageVolume != "" {
		fmt.Fprintf(w, "Storage volume: %s\n", cfg.StorageVolume)
	}
}

func init() {
	f := configCmd.Flags()
	f.Uint32Var(&configCPUs, "cpus", 0, "default number of vCPUs for newly created VMs")
	f.Uint32Var(&configMem, "mem", 0, "default amount of RAM in MiB for newly created VMs")
	f.StringVar(&configDNS, "dns", "", "default DNS server for newly created VMs")
	f.Var(newNetworkModeValue(&configNet), "net", "default network mode for newly created VMs")
}
