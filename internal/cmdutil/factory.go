package cmdutil

import (
	"context"

	"github.com/schmitthub/composefixture/internal/compose"
	"github.com/schmitthub/composefixture/internal/config"
	"github.com/schmitthub/composefixture/internal/docker"
	"github.com/schmitthub/composefixture/internal/iostreams"
	"github.com/schmitthub/composefixture/internal/lifecycle"
	"github.com/schmitthub/composefixture/internal/services"
)

// Factory provides shared dependencies for CLI commands.
// It is a dependency injection container: the struct defines what
// dependencies exist (the contract), while internal/cmd/factory
// wires the real implementations.
//
// Closure fields are set by the factory constructor and use lazy
// initialization internally. Commands extract only the fields they
// need into per-command Options structs.
type Factory struct {
	// Configuration from flags (set before command execution)
	WorkDir string
	Debug   bool

	// Version info (set at build time via ldflags)
	Version string
	Commit  string

	IOStreams *iostreams.IOStreams

	ConfigLoader func() *config.Loader
	Config       func() (*config.Config, error)

	// Executor drives the orchestrator for the configured project.
	Executor func() (*compose.Executor, error)
	// Services returns a registry for an already running project.
	Services func() (*services.Registry, error)
	// Manager starts and stops the configured project.
	Manager func() (*lifecycle.Manager, error)

	Daemon      func(context.Context) (*docker.Daemon, error)
	CloseDaemon func()
}
