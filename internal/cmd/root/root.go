package root

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	configcmd "github.com/schmitthub/composefixture/internal/cmd/config"
	"github.com/schmitthub/composefixture/internal/cmd/down"
	"github.com/schmitthub/composefixture/internal/cmd/endpoint"
	"github.com/schmitthub/composefixture/internal/cmd/host"
	"github.com/schmitthub/composefixture/internal/cmd/port"
	"github.com/schmitthub/composefixture/internal/cmd/ps"
	"github.com/schmitthub/composefixture/internal/cmd/run"
	versioncmd "github.com/schmitthub/composefixture/internal/cmd/version"
	"github.com/schmitthub/composefixture/internal/cmdutil"
	"github.com/schmitthub/composefixture/internal/config"
	"github.com/schmitthub/composefixture/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// flagKeys maps global flags onto configuration keys.
var flagKeys = map[string]string{
	"file":            config.KeyComposeFiles,
	"project-name":    config.KeyProjectName,
	"compose-command": config.KeyComposeCommand,
	"host":            config.KeyHostOverride,
	"log-dir":         config.KeyLogDir,
}

// NewCmdRoot creates the root command for the composefixture CLI.
func NewCmdRoot(f *cmdutil.Factory, version, commit string) *cobra.Command {
	var (
		files    []string
		envFiles []string
	)

	cmd := &cobra.Command{
		Use:   "composefixture",
		Short: "Run tests against throwaway docker compose projects",
		Long: `composefixture starts a docker compose project for a test run, tells the
tests where each service is reachable, and always tears the project down.

Quick start:
  composefixture run --wait web:80 -- go test ./...   # up, wait, test, down
  composefixture -p ci-42 endpoint web 80             # where is web:80?
  composefixture -p ci-42 down                        # clean up a leaked project

Settings are read from composefixture.yaml, COMPOSEFIXTURE_* environment
variables and the flags below, in increasing order of precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Annotations: map[string]string{
			"versionInfo": versioncmd.Format(version, commit),
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if len(envFiles) > 0 {
				if err := godotenv.Load(envFiles...); err != nil {
					return cmdutil.FlagErrorf("loading env file: %w", err)
				}
			}

			loader := f.ConfigLoader()
			cmd.Flags().Visit(func(fl *pflag.Flag) {
				key, ok := flagKeys[fl.Name]
				if !ok {
					return
				}
				if fl.Name == "file" {
					loader.Set(key, files)
					return
				}
				loader.Set(key, fl.Value.String())
			})

			initializeLogger(f)

			logger.Debug().
				Str("version", f.Version).
				Str("workdir", f.WorkDir).
				Bool("debug", f.Debug).
				Str("logfile", logger.GetLogFilePath()).
				Msg("composefixture starting")

			return nil
		},
		Version: f.Version,
	}

	// Global flags
	pf := cmd.PersistentFlags()
	pf.StringSliceVarP(&files, "file", "f", nil, "Compose file (repeatable, default docker-compose.yml)")
	pf.StringP("project-name", "p", "", "Compose project name")
	pf.String("compose-command", "", "Orchestrator invocation (default \"docker compose\")")
	pf.String("host", "", "Host override: a hostname, or _internal to use service names")
	pf.String("log-dir", "", "Export compose logs to this directory on teardown")
	pf.StringArrayVar(&envFiles, "env-file", nil, "Load environment variables from `file` first (repeatable)")
	pf.BoolVarP(&f.Debug, "debug", "D", false, "Enable debug logging")

	cmd.SetVersionTemplate(versioncmd.Format(version, commit))

	cmd.AddCommand(run.NewCmdRun(f, nil))
	cmd.AddCommand(port.NewCmdPort(f, nil))
	cmd.AddCommand(endpoint.NewCmdEndpoint(f, nil))
	cmd.AddCommand(host.NewCmdHost(f, nil))
	cmd.AddCommand(ps.NewCmdPs(f, nil))
	cmd.AddCommand(down.NewCmdDown(f, nil))
	cmd.AddCommand(configcmd.NewCmdConfig(f))
	cmd.AddCommand(versioncmd.NewCmdVersion(f, version, commit))

	return cmd
}

// initializeLogger sets up the logger with file logging when configured.
// Falls back to console-only logging on any error.
func initializeLogger(f *cmdutil.Factory) {
	cfg, err := f.Config()
	if err != nil {
		// The command reports the config error itself.
		logger.Init(f.Debug)
		return
	}

	dir := cfg.Logging.Dir
	if dir == "" {
		dir, err = defaultLogsDir()
		if err != nil {
			logger.Init(f.Debug)
			logger.Warn().Err(err).Msg("file logging unavailable: no logs directory")
			return
		}
	}

	if err := logger.InitWithFile(f.Debug, dir, cfg.Logging.ToLogger()); err != nil {
		logger.Init(f.Debug)
		logger.Warn().Err(err).Msg("file logging unavailable: failed to initialize file writer")
	}
	if cfg.ProjectName != "" {
		logger.SetContext(cfg.ProjectName)
	}
}

func defaultLogsDir() (string, error) {
	cache, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolving cache directory: %w", err)
	}
	return filepath.Join(cache, "composefixture", "logs"), nil
}
