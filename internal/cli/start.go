package cli

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/javanstorm/krunvm/internal/timing"
	"github.com/javanstorm/krunvm/internal/vm"
	"github.com/javanstorm/krunvm/pkg/hypervisor"
)

var startEnv []string

var startCmd = &cobra.Command{
	Use:   "start NAME [COMMAND] [ARGS...]",
	Short: "Start an existing microVM",
	Long: `Start an existing microVM and attach to its console.

Without COMMAND the image's default entrypoint runs. Everything after NAME
is passed to the guest untouched. Set KRUNVM_TIMING=1 to print how long
each start phase took.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}

	timer := timing.New()
	m, err := newManager(vm.ManagerConfig{
		Launcher: hypervisor.NewBuilder(rt,
			hypervisor.WithLogLevel(libkrunLogLevel(verbosity)),
			hypervisor.WithLogger(logrus.WithField("component", "hypervisor")),
		),
		Timer: timer,
		BeforeLaunch: func() {
			logrus.WithFields(timer.Fields()).Debug("ready to launch")
			if timing.Enabled() {
				timer.Report(cmd.ErrOrStderr())
			}
		},
	})
	if err != nil {
		return err
	}

	opts := vm.StartOptions{Env: startEnv}
	if len(args) > 1 {
		opts.Command = args[1]
		opts.Args = args[2:]
	}
	return m.Start(cmd.Context(), args[0], opts)
}

func init() {
	startCmd.Flags().SetInterspersed(false)
	startCmd.Flags().StringArrayVar(&startEnv, "env", nil, "KEY=value to set in the guest, may be repeated")
}
