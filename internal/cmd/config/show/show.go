package show

import (
	"context"

	"github.com/schmitthub/composefixture/internal/cmdutil"
	"github.com/schmitthub/composefixture/internal/config"
	"github.com/schmitthub/composefixture/internal/iostreams"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// ShowOptions holds options for the config show command.
type ShowOptions struct {
	IOStreams *iostreams.IOStreams
	Config    func() (*config.Config, error)

	JSON bool
}

// NewCmdShow creates the config show command.
func NewCmdShow(f *cmdutil.Factory, runF func(context.Context, *ShowOptions) error) *cobra.Command {
	opts := &ShowOptions{
		IOStreams: f.IOStreams,
		Config:    f.Config,
	}

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration",
		Long: `Prints the configuration after merging defaults, composefixture.yaml,
environment variables and flags. The project name shown is the one a
session started now would use.`,
		Example: `  composefixture config show
  composefixture config show --json`,
		Args: cmdutil.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if runF != nil {
				return runF(cmd.Context(), opts)
			}
			return showRun(cmd.Context(), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Output as JSON")

	return cmd
}

type resolvedJSON struct {
	ComposeCommand string   `json:"compose_command"`
	ComposeFiles   []string `json:"compose_files"`
	ProjectName    string   `json:"project_name"`
	DockerHost     string   `json:"docker_host,omitempty"`
	LocalSockets   bool     `json:"local_sockets,omitempty"`
	HostOverride   string   `json:"host_override,omitempty"`
	LogDir         string   `json:"log_dir,omitempty"`
	Command        string   `json:"command,omitempty"`
	DaemonCheck    bool     `json:"daemon_check"`
	WaitTimeout    string   `json:"wait_timeout"`
	WaitPause      string   `json:"wait_pause"`
}

func showRun(_ context.Context, opts *ShowOptions) error {
	cfg, err := opts.Config()
	if err != nil {
		return err
	}

	resolved := *cfg
	resolved.ProjectName = cfg.Project()

	if opts.JSON {
		return cmdutil.WriteJSON(opts.IOStreams.Out, resolvedJSON{
			ComposeCommand: resolved.ComposeCommand,
			ComposeFiles:   resolved.ComposeFiles,
			ProjectName:    resolved.ProjectName,
			DockerHost:     resolved.DockerHost,
			LocalSockets:   resolved.LocalSockets,
			HostOverride:   resolved.HostOverride,
			LogDir:         resolved.LogDir,
			Command:        resolved.Command,
			DaemonCheck:    resolved.DaemonCheck,
			WaitTimeout:    resolved.Wait.Timeout.String(),
			WaitPause:      resolved.Wait.Pause.String(),
		})
	}

	enc := yaml.NewEncoder(opts.IOStreams.Out)
	enc.SetIndent(2)
	if err := enc.Encode(&resolved); err != nil {
		return err
	}
	return enc.Close()
}
