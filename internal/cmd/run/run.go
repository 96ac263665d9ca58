// Package run provides the run command: start the project, wait for
// services, run a command against it, and tear it down.
package run

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/google/shlex"
	"github.com/joho/godotenv"
	"github.com/schmitthub/composefixture/internal/cmdutil"
	"github.com/schmitthub/composefixture/internal/config"
	"github.com/schmitthub/composefixture/internal/iostreams"
	"github.com/schmitthub/composefixture/internal/lifecycle"
	"github.com/schmitthub/composefixture/internal/logger"
	"github.com/schmitthub/composefixture/internal/services"
	"github.com/schmitthub/composefixture/internal/signals"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// childWaitDelay bounds how long the child may keep its output pipes open
// after it was interrupted.
const childWaitDelay = 10 * time.Second

// Target is a service port to wait for.
type Target struct {
	Service string
	Port    int
	Proto   string
}

func (t Target) String() string {
	return fmt.Sprintf("%s:%d/%s", t.Service, t.Port, t.Proto)
}

// RunOptions holds options for the run command.
type RunOptions struct {
	IOStreams *iostreams.IOStreams
	Config    func() (*config.Config, error)
	Manager   func() (*lifecycle.Manager, error)

	Waits      []string
	Targets    []Target
	Timeout    time.Duration
	Pause      time.Duration
	ExportFile string
	Args       []string

	// Probe builds the readiness check for TCP targets.
	Probe services.Probe
	// Exec runs the child. Defaults to runChild.
	Exec func(ctx context.Context, ios *iostreams.IOStreams, argv []string, env map[string]string) error
}

// NewCmdRun creates the run command.
func NewCmdRun(f *cmdutil.Factory, runF func(context.Context, *RunOptions) error) *cobra.Command {
	opts := &RunOptions{
		IOStreams: f.IOStreams,
		Config:    f.Config,
		Manager:   f.Manager,
		Probe:     services.TCPEndpointProbe(services.DefaultDialTimeout),
		Exec:      runChild,
	}

	cmd := &cobra.Command{
		Use:   "run [flags] [-- COMMAND [ARG...]]",
		Short: "Run a command against a freshly started project",
		Long: `Starts the compose project, waits for the given service ports, runs
COMMAND, and tears the project down afterwards, also when COMMAND fails or
the run is interrupted.

Each --wait target is exported to COMMAND's environment as
COMPOSEFIXTURE_<SERVICE>_<PORT>_HOST and COMPOSEFIXTURE_<SERVICE>_<PORT>_PORT
(UDP targets get a _UDP infix). COMPOSEFIXTURE_PROJECT_NAME is always set.

Without COMMAND, the configured command (COMPOSEFIXTURE_COMMAND) is used.
The exit status of COMMAND becomes the exit status of run.`,
		Example: `  # Run the integration tests against httpbin
  composefixture run --wait httpbin:80 -- go test ./integration/...

  # Several services, longer timeout, env file for other tools
  composefixture run --wait db:5432 --wait cache:6379 --timeout 2m --export .fixture.env -- make itest`,
		RunE: func(cmd *cobra.Command, args []string) error {
			targets, err := parseTargets(opts.Waits)
			if err != nil {
				return cmdutil.FlagErrorWrap(err)
			}
			if opts.Timeout < 0 {
				return cmdutil.FlagErrorf("--timeout must not be negative")
			}
			if opts.Pause < 0 {
				return cmdutil.FlagErrorf("--pause must not be negative")
			}
			opts.Targets = targets
			opts.Args = args

			if runF != nil {
				return runF(cmd.Context(), opts)
			}
			return runRun(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Waits, "wait", "w", nil, "Wait for `service:port[/proto]` before running (repeatable)")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 0, "How long to wait for each service (default from config)")
	cmd.Flags().DurationVar(&opts.Pause, "pause", 0, "Pause between readiness checks (default from config)")
	cmd.Flags().StringVar(&opts.ExportFile, "export", "", "Also write the endpoint variables to `file` in .env format")

	return cmd
}

func parseTargets(specs []string) ([]Target, error) {
	targets := make([]Target, 0, len(specs))
	for _, spec := range specs {
		service, port, proto, err := services.ParseTarget(spec)
		if err != nil {
			return nil, err
		}
		targets = append(targets, Target{Service: service, Port: port, Proto: proto})
	}
	return targets, nil
}

func runRun(ctx context.Context, opts *RunOptions) error {
	cfg, err := opts.Config()
	if err != nil {
		return err
	}

	argv := opts.Args
	if len(argv) == 0 && strings.TrimSpace(cfg.Command) != "" {
		argv, err = shlex.Split(cfg.Command)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", config.KeyCommand, err)
		}
	}
	if len(argv) == 0 {
		return cmdutil.FlagErrorf("no command given: pass one after -- or set %s_COMMAND", config.EnvPrefix)
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = cfg.Wait.Timeout
	}
	pause := opts.Pause
	if pause == 0 {
		pause = cfg.Wait.Pause
	}

	m, err := opts.Manager()
	if err != nil {
		return err
	}

	ctx, cancel := signals.SetupSignalContext(ctx)
	defer cancel()

	return m.Run(ctx, func(ctx context.Context, reg *services.Registry) error {
		endpoints, err := waitAll(ctx, reg, opts.Targets, opts.Probe, timeout, pause)
		if err != nil {
			return err
		}

		env := EnvFor(opts.Targets, endpoints)
		env[config.EnvPrefix+"_PROJECT_NAME"] = m.ProjectName()

		if opts.ExportFile != "" {
			if err := godotenv.Write(env, opts.ExportFile); err != nil {
				return fmt.Errorf("writing %s: %w", opts.ExportFile, err)
			}
			logger.Debug().Str("path", opts.ExportFile).Msg("exported endpoint variables")
		}

		return opts.Exec(ctx, opts.IOStreams, argv, env)
	})
}

// waitAll resolves every target concurrently. TCP targets are probed until
// ready; UDP targets are only resolved.
func waitAll(ctx context.Context, reg *services.Registry, targets []Target, probe services.Probe, timeout, pause time.Duration) ([]services.Endpoint, error) {
	endpoints := make([]services.Endpoint, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	for i, t := range targets {
		g.Go(func() error {
			var (
				ep  services.Endpoint
				err error
			)
			if t.Proto == "udp" {
				ep, err = reg.EndpointForProtocol(gctx, t.Service, t.Port, t.Proto)
			} else {
				ep, err = reg.WaitForEndpoint(gctx, t.Service, t.Port, probe, timeout, pause)
			}
			if err != nil {
				return err
			}
			logger.Info().Str("target", t.String()).Str("endpoint", ep.String()).Msg("service ready")
			endpoints[i] = ep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return endpoints, nil
}

// EnvFor names the variables that describe each endpoint.
func EnvFor(targets []Target, endpoints []services.Endpoint) map[string]string {
	env := make(map[string]string, 2*len(targets)+1)
	for i, t := range targets {
		prefix := EnvPrefixFor(t)
		env[prefix+"_HOST"] = endpoints[i].Host
		env[prefix+"_PORT"] = strconv.Itoa(endpoints[i].Port)
	}
	return env
}

// EnvPrefixFor returns COMPOSEFIXTURE_<SERVICE>_<PORT>, with a _UDP suffix
// for UDP targets. Non-alphanumeric characters in the service become '_'.
func EnvPrefixFor(t Target) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, t.Service)

	prefix := fmt.Sprintf("%s_%s_%d", config.EnvPrefix, name, t.Port)
	if t.Proto == "udp" {
		prefix += "_UDP"
	}
	return prefix
}

// runChild runs argv with the caller's environment plus env. Cancelling
// ctx interrupts the child instead of killing it.
func runChild(ctx context.Context, ios *iostreams.IOStreams, argv []string, env map[string]string) error {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = ios.In
	cmd.Stdout = ios.Out
	cmd.Stderr = ios.ErrOut
	cmd.Env = os.Environ()
	for k, v := range env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.WaitDelay = childWaitDelay

	logger.Debug().Strs("argv", argv).Msg("running command")
	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		if code < 0 {
			code = 1
		}
		return &cmdutil.ExitError{Command: argv, Code: code}
	}
	return err
}
