// Package fixture starts a docker compose project for the duration of a
// test, tells the test where each service is reachable, and always tears
// the project down.
//
// Typical use from a test:
//
//	func TestAPI(t *testing.T) {
//		svc := fixture.Setup(t, fixture.Options{
//			ComposeFiles: []string{fixture.DefaultComposeFile(".")},
//		})
//		ep, err := svc.WaitForEndpoint(t.Context(), "httpbin", 80,
//			fixture.HTTPEndpointProbe("/status/200", nil), 30*time.Second, 100*time.Millisecond)
//		...
//	}
package fixture

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"testing"

	"github.com/schmitthub/composefixture/internal/compose"
	"github.com/schmitthub/composefixture/internal/config"
	"github.com/schmitthub/composefixture/internal/docker"
	"github.com/schmitthub/composefixture/internal/lifecycle"
	"github.com/schmitthub/composefixture/internal/logger"
	"github.com/schmitthub/composefixture/internal/services"
	"github.com/schmitthub/composefixture/internal/shell"
	"go.uber.org/multierr"
)

// Re-exported types so callers never import internal packages.
type (
	Services           = services.Registry
	Endpoint           = services.Endpoint
	Check              = services.Check
	Probe              = services.Probe
	Runner             = shell.Runner
	TimeoutError       = services.TimeoutError
	ResolutionError    = services.ResolutionError
	CommandError       = shell.CommandError
	ConfigurationError = docker.ConfigurationError
)

var (
	// ErrProjectInUse is returned by Start when another session holds the project.
	ErrProjectInUse = lifecycle.ErrProjectInUse
	// ErrSessionClosed is returned by lookups after the session was closed.
	ErrSessionClosed = services.ErrSessionClosed
)

// Readiness probes.
var (
	TCPProbe          = services.TCPProbe
	HTTPProbe         = services.HTTPProbe
	TCPEndpointProbe  = services.TCPEndpointProbe
	HTTPEndpointProbe = services.HTTPEndpointProbe
	WaitUntil         = services.WaitUntil
	IsTimeout         = services.IsTimeout
)

// Options selects the compose project. Zero fields fall back to Config,
// and a nil Config to the configuration resolved from WorkDir.
type Options struct {
	ComposeFiles   []string
	ProjectName    string
	ComposeCommand string
	// Config is used instead of loading composefixture.yaml and the
	// environment.
	Config *config.Config
	// DaemonCheck pings the Engine API before starting and reports
	// leftover containers after teardown.
	DaemonCheck bool
	// WorkDir is where configuration is loaded from and where the
	// orchestrator runs. Defaults to the current directory.
	WorkDir string
	// Runner replaces the shell runner, e.g. with a fake in tests.
	Runner Runner
}

// Session is a running project. Close it exactly once; later calls are
// no-ops returning the first result.
type Session struct {
	*lifecycle.Session

	daemon    *docker.Daemon
	closeOnce sync.Once
	closeErr  error
}

// Close tears the project down and releases the daemon connection.
func (s *Session) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		s.closeErr = s.Session.Close(ctx)
		if s.daemon != nil {
			s.closeErr = multierr.Append(s.closeErr, s.daemon.Close())
		}
	})
	return s.closeErr
}

// Start brings the project up. If startup fails the project is already
// torn down when Start returns.
func Start(ctx context.Context, opts Options) (*Session, error) {
	m, daemon, err := newManager(opts)
	if err != nil {
		return nil, err
	}
	s, err := m.Start(ctx)
	if err != nil {
		if daemon != nil {
			_ = daemon.Close()
		}
		return nil, err
	}
	return &Session{Session: s, daemon: daemon}, nil
}

// Run starts the project, calls fn, and tears the project down however
// fn returns. Teardown errors are joined with fn's error.
func Run(ctx context.Context, opts Options, fn func(context.Context, *Services) error) (err error) {
	s, err := Start(ctx, opts)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, s.Close(ctx))
	}()
	return fn(ctx, s.Services())
}

// Setup starts the project for tb and registers its teardown with
// tb.Cleanup. Without an explicit project name every call gets a unique
// one, so parallel tests never share containers.
func Setup(tb testing.TB, opts Options) *Services {
	tb.Helper()

	if opts.ProjectName == "" && (opts.Config == nil || opts.Config.ProjectName == "") {
		opts.ProjectName = config.UniqueProjectName()
	}

	s, err := Start(context.Background(), opts)
	if err != nil {
		tb.Fatalf("starting compose project: %v", err)
	}
	tb.Cleanup(func() {
		if err := s.Close(context.Background()); err != nil {
			tb.Errorf("tearing down compose project %s: %v", s.Project(), err)
		}
	})
	return s.Services()
}

// SetLogOutput sends the fixture's lifecycle logs to w as JSON lines.
// Logging is silent until this is called.
func SetLogOutput(w io.Writer, debug bool) {
	logger.InitWithWriter(w, debug)
}

// DefaultComposeFile returns <root>/tests/docker-compose.yml.
func DefaultComposeFile(root string) string {
	return filepath.Join(root, "tests", "docker-compose.yml")
}

// resolveConfig merges opts over the loaded or given configuration.
func resolveConfig(opts Options) (*config.Config, error) {
	workDir := opts.WorkDir
	if workDir == "" {
		workDir = "."
	}

	var cfg config.Config
	if opts.Config != nil {
		cfg = *opts.Config
	} else {
		loaded, err := config.Load(workDir)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	}

	if len(opts.ComposeFiles) > 0 {
		cfg.ComposeFiles = append([]string(nil), opts.ComposeFiles...)
	}
	if opts.ProjectName != "" {
		cfg.ProjectName = opts.ProjectName
	}
	if opts.ComposeCommand != "" {
		cfg.ComposeCommand = opts.ComposeCommand
	}
	if opts.DaemonCheck {
		cfg.DaemonCheck = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, &config.InvalidConfigError{Err: err}
	}
	return &cfg, nil
}

func newManager(opts Options) (*lifecycle.Manager, *docker.Daemon, error) {
	cfg, err := resolveConfig(opts)
	if err != nil {
		return nil, nil, err
	}

	runner := opts.Runner
	if runner == nil {
		r := shell.NewRunner()
		r.Dir = opts.WorkDir
		runner = r
	}

	exec, err := compose.New(runner, cfg.ComposeFiles, cfg.Project(), compose.WithCommand(cfg.ComposeCommand))
	if err != nil {
		return nil, nil, err
	}

	mopts := []lifecycle.Option{
		lifecycle.WithLogDir(cfg.LogDir),
		lifecycle.WithRegistryOptions(services.ConfigOptions(cfg)...),
	}

	var daemon *docker.Daemon
	if cfg.DaemonCheck {
		daemon, err = docker.NewDaemon()
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to docker daemon: %w", err)
		}
		mopts = append(mopts, lifecycle.WithDaemonCheck(daemon), lifecycle.WithLeakCheck(daemon))
	}

	return lifecycle.NewManager(exec, mopts...), daemon, nil
}
