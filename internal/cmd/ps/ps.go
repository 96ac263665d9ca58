// Package ps provides the ps command.
package ps

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/go-units"
	"github.com/schmitthub/composefixture/internal/cmdutil"
	"github.com/schmitthub/composefixture/internal/config"
	"github.com/schmitthub/composefixture/internal/docker"
	"github.com/schmitthub/composefixture/internal/iostreams"
	"github.com/spf13/cobra"
)

// ContainerLister lists a project's containers.
type ContainerLister interface {
	ProjectContainers(ctx context.Context, project string) ([]docker.Container, error)
}

// PsOptions holds options for the ps command.
type PsOptions struct {
	IOStreams *iostreams.IOStreams
	Config    func() (*config.Config, error)
	Lister    func(context.Context) (ContainerLister, error)

	JSON bool
	// Now is injectable for stable CREATED output.
	Now func() time.Time
}

// NewCmdPs creates the ps command.
func NewCmdPs(f *cmdutil.Factory, runF func(context.Context, *PsOptions) error) *cobra.Command {
	opts := &PsOptions{
		IOStreams: f.IOStreams,
		Config:    f.Config,
		Lister: func(ctx context.Context) (ContainerLister, error) {
			return f.Daemon(ctx)
		},
		Now: time.Now,
	}

	cmd := &cobra.Command{
		Use:   "ps",
		Short: "List the containers of a project",
		Long: `Lists every container labelled with the project, including stopped ones.
Reads from the Docker Engine API; the orchestrator is not invoked.`,
		Example: `  composefixture -p ci-42 ps
  composefixture -p ci-42 ps --json`,
		Args: cmdutil.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if runF != nil {
				return runF(cmd.Context(), opts)
			}
			return psRun(cmd.Context(), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Output as JSON")

	return cmd
}

type containerJSON struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Service string    `json:"service"`
	State   string    `json:"state"`
	Created time.Time `json:"created"`
}

func psRun(ctx context.Context, opts *PsOptions) error {
	cfg, err := opts.Config()
	if err != nil {
		return err
	}
	if err := cmdutil.RequireProjectName(cfg); err != nil {
		return err
	}

	lister, err := opts.Lister(ctx)
	if err != nil {
		return err
	}
	containers, err := lister.ProjectContainers(ctx, cfg.ProjectName)
	if err != nil {
		return err
	}

	if opts.JSON {
		out := make([]containerJSON, 0, len(containers))
		for _, c := range containers {
			out = append(out, containerJSON(c))
		}
		return cmdutil.WriteJSON(opts.IOStreams.Out, out)
	}

	if len(containers) == 0 {
		fmt.Fprintf(opts.IOStreams.ErrOut, "No containers found for project %s\n", cfg.ProjectName)
		return nil
	}

	now := opts.Now()
	tp := opts.IOStreams.NewTablePrinter("SERVICE", "NAME", "STATE", "CREATED")
	for _, c := range containers {
		tp.AddRow(c.Service, c.Name, c.State, units.HumanDuration(now.Sub(c.Created))+" ago")
	}
	return tp.Render()
}
