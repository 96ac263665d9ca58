// Package host provides the host command.
package host

import (
	"context"
	"fmt"

	"github.com/schmitthub/composefixture/internal/cmdutil"
	"github.com/schmitthub/composefixture/internal/config"
	"github.com/schmitthub/composefixture/internal/docker"
	"github.com/schmitthub/composefixture/internal/iostreams"
	"github.com/spf13/cobra"
)

// HostOptions holds options for the host command.
type HostOptions struct {
	IOStreams *iostreams.IOStreams
	Config    func() (*config.Config, error)
}

// NewCmdHost creates the host command.
func NewCmdHost(f *cmdutil.Factory, runF func(context.Context, *HostOptions) error) *cobra.Command {
	opts := &HostOptions{
		IOStreams: f.IOStreams,
		Config:    f.Config,
	}

	cmd := &cobra.Command{
		Use:   "host",
		Short: "Print the host on which published ports are reachable",
		Long: `Prints the host derived from DOCKER_HOST.

An unset DOCKER_HOST resolves to the loopback address. A daemon such as
tcp://10.0.0.5:2375 resolves to its host part. Any other value is an error,
except unix:// and npipe:// sockets when local_sockets is enabled
(COMPOSEFIXTURE_LOCAL_SOCKETS=true); those resolve to the loopback address.`,
		Example: `  # Resolve the daemon host
  composefixture host

  # Against a remote daemon
  DOCKER_HOST=tcp://10.0.0.5:2375 composefixture host`,
		Args: cmdutil.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if runF != nil {
				return runF(cmd.Context(), opts)
			}
			return hostRun(cmd.Context(), opts)
		},
	}

	return cmd
}

func hostRun(_ context.Context, opts *HostOptions) error {
	cfg, err := opts.Config()
	if err != nil {
		return err
	}

	host, err := docker.ResolveHost(cfg.DockerHost, cfg.HostOptions()...)
	if err != nil {
		return err
	}
	fmt.Fprintln(opts.IOStreams.Out, host)
	return nil
}
