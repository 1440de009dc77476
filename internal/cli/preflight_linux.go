package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/javanstorm/krunvm/internal/config"
)

var errNeedsUnshare = errors.New(`please re-run krunvm as root or inside a "buildah unshare" session`)

// platformPreflight checks that buildah is installed and can mount
// containers: either we are root or we run in buildah's user namespace.
func platformPreflight(_ *cobra.Command, cfg *config.Config) error {
	if err := checkRootfsTool(cfg); err != nil {
		return err
	}
	if os.Getuid() != 0 && os.Getenv("BUILDAH_ISOLATION") == "" {
		return errNeedsUnshare
	}
	return nil
}
