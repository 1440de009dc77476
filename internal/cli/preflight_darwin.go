package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javanstorm/krunvm/internal/config"
)

var errVolumeConfigured = errors.New("the volume has been configured, please execute krunvm again")

const volumeHelp = `
On macOS, krunvm requires a dedicated, case-sensitive volume.
You can easily create such volume by executing something like
this on another terminal:

diskutil apfs addVolume disk3 "Case-sensitive APFS" krunvm

NOTE: APFS volume creation is a non-destructive action that
doesn't require a dedicated disk nor "sudo" privileges. The
new volume will share the disk space with the main container
volume.
`

// platformPreflight checks that buildah is installed and that a
// case-sensitive storage volume is configured, asking for one on first run.
func platformPreflight(cmd *cobra.Command, cfg *config.Config) error {
	if err := checkRootfsTool(cfg); err != nil {
		return err
	}
	if cfg.StorageVolume != "" {
		return nil
	}
	return setupStorageVolume(cmd.InOrStdin(), cmd.OutOrStdout(), cfg)
}

func setupStorageVolume(in io.Reader, out io.Writer, cfg *config.Config) error {
	fmt.Fprintln(out, volumeHelp)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprintf(out, "Please enter the mountpoint for this volume [%s]: ", config.DefaultStorageVolume)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("read storage volume: %w", err)
			}
			return errors.New("no storage volume configured")
		}
		volume := strings.TrimSpace(scanner.Text())
		if volume == "" {
			volume = config.DefaultStorageVolume
		}

		fmt.Fprint(out, "Checking volume... ")
		ok, err := config.CheckCaseSensitivity(volume)
		switch {
		case err != nil:
			fmt.Fprintln(out, "error.")
			fmt.Fprintf(out, "There was an error running the test: %v\n", err)
		case !ok:
			fmt.Fprintln(out, "failed.")
			fmt.Fprintln(out, "This volume failed the case sensitivity test.")
		default:
			fmt.Fprintln(out, "success.")
			cfg.StorageVolume = volume
			if err := saveConfig(); err != nil {
				return err
			}
			return errVolumeConfigured
		}
	}
}
