package configtest

import (
	"time"

	"github.com/schmitthub/composefixture/internal/config"
)

// ConfigBuilder provides a fluent API for constructing config.Config values in tests.
type ConfigBuilder struct {
	cfg *config.Config
}

// NewConfigBuilder starts from config.DefaultConfig with a fixed project name
// and a short wait so tests never depend on the process ID or sleep long.
func NewConfigBuilder() *ConfigBuilder {
	cfg := config.DefaultConfig()
	cfg.ProjectName = "fixturetest"
	cfg.Wait.Timeout = time.Second
	cfg.Wait.Pause = 10 * time.Millisecond
	return &ConfigBuilder{cfg: cfg}
}

// WithComposeCommand sets the orchestrator command.
func (b *ConfigBuilder) WithComposeCommand(cmd string) *ConfigBuilder {
	b.cfg.ComposeCommand = cmd
	return b
}

// WithComposeFiles replaces the compose file list.
func (b *ConfigBuilder) WithComposeFiles(files ...string) *ConfigBuilder {
	b.cfg.ComposeFiles = files
	return b
}

// WithProjectName sets the project name.
func (b *ConfigBuilder) WithProjectName(name string) *ConfigBuilder {
	b.cfg.ProjectName = name
	return b
}

// WithDockerHost sets the daemon address.
func (b *ConfigBuilder) WithDockerHost(host string) *ConfigBuilder {
	b.cfg.DockerHost = host
	return b
}

// WithLocalSockets accepts unix:// and npipe:// daemon addresses.
func (b *ConfigBuilder) WithLocalSockets(enabled bool) *ConfigBuilder {
	b.cfg.LocalSockets = enabled
	return b
}

// WithHostOverride sets the endpoint host override.
func (b *ConfigBuilder) WithHostOverride(host string) *ConfigBuilder {
	b.cfg.HostOverride = host
	return b
}

// WithLogDir enables log export into dir.
func (b *ConfigBuilder) WithLogDir(dir string) *ConfigBuilder {
	b.cfg.LogDir = dir
	return b
}

// WithCommand sets the default command for `run`.
func (b *ConfigBuilder) WithCommand(cmd string) *ConfigBuilder {
	b.cfg.Command = cmd
	return b
}

// WithWait sets the readiness timeout and pause.
func (b *ConfigBuilder) WithWait(timeout, pause time.Duration) *ConfigBuilder {
	b.cfg.Wait = config.WaitConfig{Timeout: timeout, Pause: pause}
	return b
}

// WithDaemonCheck toggles the Engine API ping.
func (b *ConfigBuilder) WithDaemonCheck(enabled bool) *ConfigBuilder {
	b.cfg.DaemonCheck = enabled
	return b
}

// Build returns a copy of the configured value.
func (b *ConfigBuilder) Build() *config.Config {
	out := *b.cfg
	out.ComposeFiles = append([]string(nil), b.cfg.ComposeFiles...)
	return &out
}
