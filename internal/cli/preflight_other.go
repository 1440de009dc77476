//go:build !linux && !darwin

package cli

import (
	"github.com/spf13/cobra"

	"github.com/javanstorm/krunvm/internal/config"
	"github.com/javanstorm/krunvm/pkg/hypervisor"
)

func platformPreflight(_ *cobra.Command, _ *config.Config) error {
	return hypervisor.ErrUnsupportedPlatform
}
