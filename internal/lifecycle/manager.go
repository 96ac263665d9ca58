// Package lifecycle brings a compose project up, hands out its service
// registry, and guarantees teardown on every exit path.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
	"github.com/schmitthub/composefixture/internal/compose"
	"github.com/schmitthub/composefixture/internal/docker"
	"github.com/schmitthub/composefixture/internal/logger"
	"github.com/schmitthub/composefixture/internal/services"
	"github.com/schmitthub/composefixture/internal/shell"
	"go.uber.org/multierr"
)

// ErrProjectInUse is returned by Start when another session holds the
// project's lock.
var ErrProjectInUse = errors.New("compose project is already in use by another session")

// Executor runs orchestrator subcommands for one project.
type Executor interface {
	Execute(ctx context.Context, subcommand string) ([]byte, error)
	ProjectName() string
}

// Pinger checks that the container daemon is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ContainerLister lists the containers that belong to a project.
type ContainerLister interface {
	ProjectContainers(ctx context.Context, project string) ([]docker.Container, error)
}

// Manager starts and stops one compose project.
type Manager struct {
	exec        Executor
	logDir      string
	lockDir     string
	pinger      Pinger
	lister      ContainerLister
	registryOps []services.Option
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogDir enables log export into dir on teardown and failed startup.
func WithLogDir(dir string) Option {
	return func(m *Manager) {
		m.logDir = dir
	}
}

// WithLockDir places project lock files in dir instead of the OS temp dir.
func WithLockDir(dir string) Option {
	return func(m *Manager) {
		m.lockDir = dir
	}
}

// WithDaemonCheck pings the daemon before `up`.
func WithDaemonCheck(p Pinger) Option {
	return func(m *Manager) {
		m.pinger = p
	}
}

// WithLeakCheck warns about project containers still present after `down`.
func WithLeakCheck(l ContainerLister) Option {
	return func(m *Manager) {
		m.lister = l
	}
}

// WithRegistryOptions configures the registry handed to each session.
func WithRegistryOptions(opts ...services.Option) Option {
	return func(m *Manager) {
		m.registryOps = append(m.registryOps, opts...)
	}
}

// NewManager creates a Manager for exec's project.
func NewManager(exec Executor, opts ...Option) *Manager {
	m := &Manager{
		exec:    exec,
		lockDir: os.TempDir(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ProjectName returns the compose project the manager controls.
func (m *Manager) ProjectName() string {
	return m.exec.ProjectName()
}

// LockPath returns the lock file guarding the project.
func (m *Manager) LockPath() string {
	return filepath.Join(m.lockDir, fmt.Sprintf("composefixture-%s.lock", m.exec.ProjectName()))
}

// LogPath returns where exported logs are written, or "" when export is off.
func (m *Manager) LogPath() string {
	if m.logDir == "" {
		return ""
	}
	return filepath.Join(m.logDir, m.exec.ProjectName()+".compose.log")
}

// Start brings the project up and returns the running session. A
// malformed daemon address fails before anything is started. If `up`
// fails, logs are exported and the project is taken down before the `up`
// error is returned.
func (m *Manager) Start(ctx context.Context) (*Session, error) {
	project := m.exec.ProjectName()

	registry := services.NewRegistry(m.exec, m.registryOps...)
	if err := registry.CheckHost(); err != nil {
		return nil, err
	}

	lock := flock.New(m.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquiring lock for project %s: %w", project, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrProjectInUse, project)
	}

	if m.pinger != nil {
		if err := m.pinger.Ping(ctx); err != nil {
			_ = releaseLock(lock)
			return nil, err
		}
	}

	logger.Info().Str("project", project).Msg("starting compose project")
	if _, err := m.exec.Execute(ctx, compose.SubcommandUp); err != nil {
		logger.Error().Err(err).Str("project", project).Msg("compose up failed, tearing down")
		err = multierr.Append(err, m.teardown(context.WithoutCancel(ctx)))
		_ = releaseLock(lock)
		return nil, err
	}

	return &Session{
		manager:  m,
		lock:     lock,
		registry: registry,
	}, nil
}

// Run starts the project, calls fn with its registry, and tears the project
// down afterwards, including when fn returns an error or panics.
func (m *Manager) Run(ctx context.Context, fn func(context.Context, *services.Registry) error) (err error) {
	s, err := m.Start(ctx)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, s.Close(ctx))
	}()
	return fn(ctx, s.Services())
}

// ExportLogs writes the project's logs to LogPath. It does nothing when no
// log directory is configured. Output of a failing `logs` call is still
// written.
func (m *Manager) ExportLogs(ctx context.Context) (string, error) {
	path := m.LogPath()
	if path == "" {
		return "", nil
	}

	out, err := m.exec.Execute(ctx, compose.SubcommandLogs)
	if err != nil {
		var cmdErr *shell.CommandError
		if !errors.As(err, &cmdErr) {
			return "", err
		}
		out = cmdErr.Output
	}

	if err := os.MkdirAll(m.logDir, 0o755); err != nil {
		return "", fmt.Errorf("creating log directory: %w", err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return "", fmt.Errorf("writing compose logs: %w", err)
	}
	logger.Debug().Str("path", path).Int("bytes", len(out)).Msg("exported compose logs")
	return path, nil
}

// Down tears down a project without a session, e.g. one leaked by a
// killed process. Logs are exported first when a log directory is set.
func (m *Manager) Down(ctx context.Context) error {
	logger.Info().Str("project", m.exec.ProjectName()).Msg("stopping compose project")
	return m.teardown(ctx)
}

// teardown exports logs, runs `down`, and reports leftover containers.
// Only the `down` error is returned.
func (m *Manager) teardown(ctx context.Context) error {
	project := m.exec.ProjectName()

	if _, err := m.ExportLogs(ctx); err != nil {
		logger.Warn().Err(err).Str("project", project).Msg("failed to export compose logs")
	}

	_, err := m.exec.Execute(ctx, compose.SubcommandDown)
	if err != nil {
		logger.Error().Err(err).Str("project", project).Msg("compose down failed")
	}

	if m.lister != nil {
		m.checkLeaks(ctx, project)
	}
	return err
}

func (m *Manager) checkLeaks(ctx context.Context, project string) {
	leftover, err := m.lister.ProjectContainers(ctx, project)
	if err != nil {
		logger.Debug().Err(err).Msg("leak check skipped")
		return
	}
	for _, c := range leftover {
		logger.Warn().
			Str("project", project).
			Str("service", c.Service).
			Str("container", c.Name).
			Str("state", c.State).
			Msg("container still present after teardown")
	}
}

// releaseLock unlocks and removes the lock file.
func releaseLock(lock *flock.Flock) error {
	if err := lock.Unlock(); err != nil {
		return err
	}
	if err := os.Remove(lock.Path()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Session is a running project.
type Session struct {
	manager  *Manager
	lock     *flock.Flock
	registry *services.Registry

	closeOnce sync.Once
	closeErr  error
}

// Services returns the session's registry.
func (s *Session) Services() *services.Registry {
	return s.registry
}

// Project returns the compose project name.
func (s *Session) Project() string {
	return s.manager.exec.ProjectName()
}

// Close tears the project down. Only the first call does any work; later
// calls return the first result. Teardown ignores ctx cancellation.
func (s *Session) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		s.registry.Close()
		logger.Info().Str("project", s.Project()).Msg("stopping compose project")
		s.closeErr = s.manager.teardown(context.WithoutCancel(ctx))
		if err := releaseLock(s.lock); err != nil {
			s.closeErr = multierr.Append(s.closeErr, fmt.Errorf("releasing project lock: %w", err))
		}
	})
	return s.closeErr
}
