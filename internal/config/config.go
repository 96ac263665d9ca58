package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/schmitthub/composefixture/internal/docker"
	"github.com/schmitthub/composefixture/internal/logger"
)

// Config is the resolved fixture configuration.
type Config struct {
	// ComposeCommand is the orchestrator invocation, e.g. "docker compose".
	ComposeCommand string `mapstructure:"compose_command" yaml:"compose_command"`
	// ComposeFiles are passed to the orchestrator in order.
	ComposeFiles []string `mapstructure:"compose_files" yaml:"compose_files"`
	// ProjectName namespaces the containers. Empty means DefaultProjectName().
	ProjectName string `mapstructure:"project_name" yaml:"project_name,omitempty"`
	// DockerHost is the daemon address used to find published ports.
	DockerHost string `mapstructure:"docker_host" yaml:"docker_host,omitempty"`
	// LocalSockets accepts unix:// and npipe:// daemon addresses and reaches
	// published ports on the loopback interface.
	LocalSockets bool `mapstructure:"local_sockets" yaml:"local_sockets,omitempty"`
	// HostOverride selects the endpoint mode: empty, HostInternal, or a hostname.
	HostOverride string `mapstructure:"host_override" yaml:"host_override,omitempty"`
	// LogDir enables orchestrator log export when set.
	LogDir string `mapstructure:"log_dir" yaml:"log_dir,omitempty"`
	// Command is run by `composefixture run` when no arguments are given.
	Command string `mapstructure:"command" yaml:"command,omitempty"`
	// DaemonCheck pings the Engine API before starting the project.
	DaemonCheck bool `mapstructure:"daemon_check" yaml:"daemon_check"`

	Wait    WaitConfig    `mapstructure:"wait" yaml:"wait"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// WaitConfig holds readiness polling defaults.
type WaitConfig struct {
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Pause   time.Duration `mapstructure:"pause" yaml:"pause"`
}

// LoggingConfig configures the optional rotating log file.
type LoggingConfig struct {
	FileEnabled *bool  `mapstructure:"file_enabled" yaml:"file_enabled,omitempty"`
	Dir         string `mapstructure:"dir" yaml:"dir,omitempty"`
	MaxSizeMB   int    `mapstructure:"max_size_mb" yaml:"max_size_mb,omitempty"`
	MaxAgeDays  int    `mapstructure:"max_age_days" yaml:"max_age_days,omitempty"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups,omitempty"`
}

// ToLogger converts to the logger package's config type.
func (c LoggingConfig) ToLogger() *logger.LoggingConfig {
	return &logger.LoggingConfig{
		FileEnabled: c.FileEnabled,
		MaxSizeMB:   c.MaxSizeMB,
		MaxAgeDays:  c.MaxAgeDays,
		MaxBackups:  c.MaxBackups,
	}
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		ComposeCommand: "docker compose",
		ComposeFiles:   []string{"docker-compose.yml"},
		Wait: WaitConfig{
			Timeout: 30 * time.Second,
			Pause:   100 * time.Millisecond,
		},
	}
}

// Project returns the configured project name or the process default.
func (c *Config) Project() string {
	if strings.TrimSpace(c.ProjectName) != "" {
		return c.ProjectName
	}
	return DefaultProjectName()
}

// InternalNetwork reports whether endpoints resolve to service names.
func (c *Config) InternalNetwork() bool {
	return c.HostOverride == HostInternal
}

// HostOptions returns the daemon address options implied by c.
func (c *Config) HostOptions() []docker.HostOption {
	return []docker.HostOption{docker.WithLocalSockets(c.LocalSockets)}
}

// Validate checks values that would otherwise fail deep inside a session.
// A malformed daemon address is returned as *docker.ConfigurationError.
func (c *Config) Validate() error {
	if len(c.ComposeFiles) == 0 {
		return fmt.Errorf("%s: at least one compose file is required", KeyComposeFiles)
	}
	for i, f := range c.ComposeFiles {
		if strings.TrimSpace(f) == "" {
			return fmt.Errorf("%s[%d]: empty path", KeyComposeFiles, i)
		}
	}
	if c.Wait.Pause <= 0 {
		return fmt.Errorf("%s must be positive, got %s", KeyWaitPause, c.Wait.Pause)
	}
	if c.Wait.Timeout < 0 {
		return fmt.Errorf("%s must not be negative, got %s", KeyWaitTimeout, c.Wait.Timeout)
	}
	if c.HostOverride == "" {
		if _, err := docker.ResolveHost(c.DockerHost, c.HostOptions()...); err != nil {
			return err
		}
	}
	return nil
}

// DefaultProjectName derives a per-process project name so parallel test
// binaries never share containers.
func DefaultProjectName() string {
	return fmt.Sprintf("%s%d", ProjectNamePrefix, os.Getpid())
}

// UniqueProjectName is DefaultProjectName plus a random suffix, for several
// sessions inside one process.
func UniqueProjectName() string {
	return fmt.Sprintf("%s-%s", DefaultProjectName(), strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
