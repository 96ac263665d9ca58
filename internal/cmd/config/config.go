package config

import (
	"github.com/schmitthub/composefixture/internal/cmd/config/check"
	"github.com/schmitthub/composefixture/internal/cmd/config/show"
	"github.com/schmitthub/composefixture/internal/cmdutil"
	"github.com/spf13/cobra"
)

// NewCmdConfig creates the config command.
func NewCmdConfig(f *cmdutil.Factory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration commands",
		Long: `Commands for inspecting and validating the resolved configuration.

Settings come from composefixture.yaml in the working directory, then
COMPOSEFIXTURE_* environment variables, then command-line flags.`,
	}

	cmd.AddCommand(check.NewCmdCheck(f, nil))
	cmd.AddCommand(show.NewCmdShow(f, nil))

	return cmd
}
