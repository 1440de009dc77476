// Package cli provides the command-line interface for krunvm.
package cli

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/javanstorm/krunvm/internal/config"
)

var (
	verbosity int

	// Loaded by PersistentPreRunE for every command that needs it.
	store     *config.Store
	appConfig *config.Config
)

// Test dependencies.
var (
	openStore = config.DefaultStore
	preflight = platformPreflight
)

var rootCmd = &cobra.Command{
	Use:   "krunvm",
	Short: "Create and run microVMs from OCI images",
	Long: `krunvm creates microVMs from OCI images, using buildah to manage the
images and libkrun to run them.

Each VM boots straight into its container's root filesystem with its own
kernel, in a process that lives as long as the guest does.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging(cmd.ErrOrStderr(), verbosity)

		// Skip config loading for commands that don't need it
		switch cmd.Name() {
		case "version", "help", "completion":
			return nil
		}

		s, err := openStore()
		if err != nil {
			return err
		}
		cfg, err := s.Load()
		if err != nil {
			return err
		}
		store, appConfig = s, cfg
		logrus.WithField("path", s.Path()).Debug("loaded configuration")

		return preflight(cmd, cfg)
	},
}

// Execute runs the root command. Commands that boot a guest open it
// through rt.
func Execute(rt RuntimeFactory) error {
	if rt != nil {
		newRuntime = rt
	}
	return rootCmd.Execute()
}

// saveConfig persists the configuration after a mutating command.
func saveConfig() error {
	if err := store.Save(appConfig); err != nil {
		return fmt.Errorf("save configuration: %w", err)
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase verbosity (-v info, -vv debug, -vvv trace)")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(changeVMCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(inspectCmd)
}
