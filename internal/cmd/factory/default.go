package factory

import (
	"context"
	"sync"

	"github.com/schmitthub/composefixture/internal/cmdutil"
	"github.com/schmitthub/composefixture/internal/compose"
	"github.com/schmitthub/composefixture/internal/config"
	"github.com/schmitthub/composefixture/internal/docker"
	"github.com/schmitthub/composefixture/internal/iostreams"
	"github.com/schmitthub/composefixture/internal/lifecycle"
	"github.com/schmitthub/composefixture/internal/services"
	"github.com/schmitthub/composefixture/internal/shell"
)

// New creates a fully-wired Factory with lazy-initialized dependency closures.
// Called exactly once at the CLI entry point (internal/composefixture/cmd.go).
// Command tests construct &cmdutil.Factory{} directly instead.
func New(version, commit string) *cmdutil.Factory {
	f := &cmdutil.Factory{
		Version:   version,
		Commit:    commit,
		IOStreams: iostreams.NewIOStreams(),
	}

	// Config
	var (
		loaderOnce sync.Once
		loader     *config.Loader
		configData *config.Config
		configErr  error
	)
	f.ConfigLoader = func() *config.Loader {
		loaderOnce.Do(func() {
			loader = config.NewLoader(f.WorkDir)
		})
		return loader
	}
	f.Config = func() (*config.Config, error) {
		if configData != nil || configErr != nil {
			return configData, configErr
		}
		configData, configErr = f.ConfigLoader().Load()
		return configData, configErr
	}

	// Orchestrator
	f.Executor = func() (*compose.Executor, error) {
		cfg, err := f.Config()
		if err != nil {
			return nil, err
		}
		runner := shell.NewRunner()
		runner.Dir = f.WorkDir
		return compose.New(runner, cfg.ComposeFiles, cfg.Project(), compose.WithCommand(cfg.ComposeCommand))
	}

	f.Services = func() (*services.Registry, error) {
		cfg, err := f.Config()
		if err != nil {
			return nil, err
		}
		exec, err := f.Executor()
		if err != nil {
			return nil, err
		}
		return services.NewRegistry(exec, services.ConfigOptions(cfg)...), nil
	}

	// Docker daemon
	var (
		daemonOnce sync.Once
		daemon     *docker.Daemon
		daemonErr  error
	)
	f.Daemon = func(_ context.Context) (*docker.Daemon, error) {
		daemonOnce.Do(func() {
			daemon, daemonErr = docker.NewDaemon()
		})
		return daemon, daemonErr
	}
	f.CloseDaemon = func() {
		if daemon != nil {
			_ = daemon.Close()
		}
	}

	f.Manager = func() (*lifecycle.Manager, error) {
		cfg, err := f.Config()
		if err != nil {
			return nil, err
		}
		exec, err := f.Executor()
		if err != nil {
			return nil, err
		}
		opts := []lifecycle.Option{
			lifecycle.WithLogDir(cfg.LogDir),
			lifecycle.WithRegistryOptions(services.ConfigOptions(cfg)...),
		}
		if cfg.DaemonCheck {
			d, err := f.Daemon(context.Background())
			if err != nil {
				return nil, err
			}
			opts = append(opts, lifecycle.WithDaemonCheck(d), lifecycle.WithLeakCheck(d))
		}
		return lifecycle.NewManager(exec, opts...), nil
	}

	return f
}
