// Package down provides the down command.
package down

import (
	"context"
	"fmt"

	"github.com/schmitthub/composefixture/internal/cmdutil"
	"github.com/schmitthub/composefixture/internal/config"
	"github.com/schmitthub/composefixture/internal/iostreams"
	"github.com/schmitthub/composefixture/internal/lifecycle"
	"github.com/spf13/cobra"
)

// DownOptions holds options for the down command.
type DownOptions struct {
	IOStreams *iostreams.IOStreams
	Config    func() (*config.Config, error)
	Manager   func() (*lifecycle.Manager, error)
}

// NewCmdDown creates the down command.
func NewCmdDown(f *cmdutil.Factory, runF func(context.Context, *DownOptions) error) *cobra.Command {
	opts := &DownOptions{
		IOStreams: f.IOStreams,
		Config:    f.Config,
		Manager:   f.Manager,
	}

	cmd := &cobra.Command{
		Use:   "down",
		Short: "Tear down a project left behind by another process",
		Long: `Exports logs (when a log directory is configured) and runs the
orchestrator's down for the named project, removing its containers,
networks and anonymous volumes.

Use it to clean up after a test run that was killed before it could
tear down.`,
		Example: `  composefixture -p ci-42 down`,
		Args:    cmdutil.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if runF != nil {
				return runF(cmd.Context(), opts)
			}
			return downRun(cmd.Context(), opts)
		},
	}

	return cmd
}

func downRun(ctx context.Context, opts *DownOptions) error {
	cfg, err := opts.Config()
	if err != nil {
		return err
	}
	if err := cmdutil.RequireProjectName(cfg); err != nil {
		return err
	}

	m, err := opts.Manager()
	if err != nil {
		return err
	}
	if err := m.Down(ctx); err != nil {
		return err
	}

	fmt.Fprintf(opts.IOStreams.ErrOut, "Project %s is down\n", cfg.ProjectName)
	if path := m.LogPath(); path != "" {
		fmt.Fprintf(opts.IOStreams.ErrOut, "Logs written to %s\n", path)
	}
	return nil
}
