// Package endpoint provides the endpoint command.
package endpoint

import (
	"context"
	"fmt"

	"github.com/schmitthub/composefixture/internal/cmdutil"
	"github.com/schmitthub/composefixture/internal/config"
	"github.com/schmitthub/composefixture/internal/iostreams"
	"github.com/schmitthub/composefixture/internal/services"
	"github.com/spf13/cobra"
)

// EndpointOptions holds options for the endpoint command.
type EndpointOptions struct {
	IOStreams *iostreams.IOStreams
	Config    func() (*config.Config, error)
	Services  func() (*services.Registry, error)

	Service string
	Port    int
	Scheme  string
	JSON    bool
}

// NewCmdEndpoint creates the endpoint command.
func NewCmdEndpoint(f *cmdutil.Factory, runF func(context.Context, *EndpointOptions) error) *cobra.Command {
	opts := &EndpointOptions{
		IOStreams: f.IOStreams,
		Config:    f.Config,
		Services:  f.Services,
	}

	cmd := &cobra.Command{
		Use:   "endpoint SERVICE PORT",
		Short: "Print where a service port is reachable",
		Long: `Prints host:port for a container port of a running project.

The host depends on the host override (COMPOSEFIXTURE_HOST or
PYTEST_DOCKER_HOST):
  unset       the daemon host with the published port
  _internal   the service name with the container port
  any other   that host with the published port`,
		Example: `  # host:port for httpbin's port 80
  composefixture -p ci-42 endpoint httpbin 80

  # As a URL
  composefixture -p ci-42 endpoint httpbin 80 --url http`,
		Args: cmdutil.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, port, _, err := services.ParseTarget(args[0] + ":" + args[1])
			if err != nil {
				return cmdutil.FlagErrorWrap(err)
			}
			opts.Service, opts.Port = service, port

			if runF != nil {
				return runF(cmd.Context(), opts)
			}
			return endpointRun(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Scheme, "url", "", "Print a URL with this scheme instead of host:port")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Print the endpoint as JSON")
	cmd.MarkFlagsMutuallyExclusive("url", "json")

	return cmd
}

type endpointJSON struct {
	Service string `json:"service"`
	Host    string `json:"host"`
	Port    int    `json:"port"`
}

func endpointRun(ctx context.Context, opts *EndpointOptions) error {
	cfg, err := opts.Config()
	if err != nil {
		return err
	}
	if !cfg.InternalNetwork() {
		if err := cmdutil.RequireProjectName(cfg); err != nil {
			return err
		}
	}

	reg, err := opts.Services()
	if err != nil {
		return err
	}

	ep, err := reg.EndpointFor(ctx, opts.Service, opts.Port)
	if err != nil {
		return err
	}

	switch {
	case opts.JSON:
		return cmdutil.WriteJSON(opts.IOStreams.Out, endpointJSON{Service: opts.Service, Host: ep.Host, Port: ep.Port})
	case opts.Scheme != "":
		fmt.Fprintln(opts.IOStreams.Out, ep.URL(opts.Scheme))
	default:
		fmt.Fprintln(opts.IOStreams.Out, ep.String())
	}
	return nil
}
