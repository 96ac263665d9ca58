package check

import (
	"context"
	"fmt"
	"os"

	"github.com/schmitthub/composefixture/internal/cmdutil"
	"github.com/schmitthub/composefixture/internal/config"
	"github.com/schmitthub/composefixture/internal/iostreams"
	"github.com/schmitthub/composefixture/internal/logger"
	"github.com/spf13/cobra"
)

// CheckOptions holds options for the config check command.
type CheckOptions struct {
	IOStreams    *iostreams.IOStreams
	ConfigLoader func() *config.Loader
}

// NewCmdCheck creates the config check command.
func NewCmdCheck(f *cmdutil.Factory, runF func(context.Context, *CheckOptions) error) *cobra.Command {
	opts := &CheckOptions{
		IOStreams:    f.IOStreams,
		ConfigLoader: f.ConfigLoader,
	}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the resolved configuration",
		Long: `Loads and validates the configuration.

Checks for:
  - YAML syntax of composefixture.yaml, when present
  - Duration and list formats of environment overrides
  - Compose files that do not exist`,
		Example: `  # Validate configuration in current directory
  composefixture config check`,
		Args: cmdutil.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if runF != nil {
				return runF(cmd.Context(), opts)
			}
			return checkRun(cmd.Context(), opts)
		},
	}

	return cmd
}

func checkRun(_ context.Context, opts *CheckOptions) error {
	ios := opts.IOStreams
	loader := opts.ConfigLoader()

	if loader.Exists() {
		logger.Debug().Str("path", loader.ConfigPath()).Msg("checking configuration file")
	} else {
		fmt.Fprintf(ios.ErrOut, "%s not found, using defaults and environment\n", config.ConfigFileName)
	}

	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(ios.ErrOut, "Error: failed to load configuration\n  %s\n", err)
		return cmdutil.SilentError
	}

	missing := 0
	for _, file := range cfg.ComposeFiles {
		if _, err := os.Stat(file); err != nil {
			fmt.Fprintf(ios.ErrOut, "Error: compose file %s: %s\n", file, describeStatError(err))
			missing++
		}
	}
	if missing > 0 {
		return cmdutil.SilentError
	}

	fmt.Fprintf(ios.Out, "Configuration is valid (%d compose file(s))\n", len(cfg.ComposeFiles))
	return nil
}

func describeStatError(err error) string {
	if os.IsNotExist(err) {
		return "not found"
	}
	return err.Error()
}
