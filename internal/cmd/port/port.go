// Package port provides the port command.
package port

import (
	"context"
	"fmt"

	"github.com/schmitthub/composefixture/internal/cmdutil"
	"github.com/schmitthub/composefixture/internal/config"
	"github.com/schmitthub/composefixture/internal/iostreams"
	"github.com/schmitthub/composefixture/internal/services"
	"github.com/spf13/cobra"
)

// PortOptions holds options for the port command.
type PortOptions struct {
	IOStreams *iostreams.IOStreams
	Config    func() (*config.Config, error)
	Services  func() (*services.Registry, error)

	Service string
	Port    int
	Proto   string
}

// NewCmdPort creates the port command.
func NewCmdPort(f *cmdutil.Factory, runF func(context.Context, *PortOptions) error) *cobra.Command {
	opts := &PortOptions{
		IOStreams: f.IOStreams,
		Config:    f.Config,
		Services:  f.Services,
	}

	cmd := &cobra.Command{
		Use:   "port SERVICE PORT[/PROTO]",
		Short: "Print the host port published for a service port",
		Long: `Prints the host port that the orchestrator published for a container port
of a running project. The project must be named with --project-name or
COMPOSEFIXTURE_PROJECT_NAME.`,
		Example: `  # Host port for httpbin's port 80
  composefixture -p ci-42 port httpbin 80

  # A UDP port
  composefixture -p ci-42 port dns 53/udp`,
		Args: cmdutil.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, port, proto, err := services.ParseTarget(args[0] + ":" + args[1])
			if err != nil {
				return cmdutil.FlagErrorWrap(err)
			}
			opts.Service, opts.Port, opts.Proto = service, port, proto

			if runF != nil {
				return runF(cmd.Context(), opts)
			}
			return portRun(cmd.Context(), opts)
		},
	}

	return cmd
}

func portRun(ctx context.Context, opts *PortOptions) error {
	cfg, err := opts.Config()
	if err != nil {
		return err
	}
	if err := cmdutil.RequireProjectName(cfg); err != nil {
		return err
	}

	reg, err := opts.Services()
	if err != nil {
		return err
	}

	port, err := reg.PortForProtocol(ctx, opts.Service, opts.Port, opts.Proto)
	if err != nil {
		return err
	}
	fmt.Fprintln(opts.IOStreams.Out, port)
	return nil
}
