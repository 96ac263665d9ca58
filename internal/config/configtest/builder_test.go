package configtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigBuilder_Defaults(t *testing.T) {
	cfg := NewConfigBuilder().Build()

	assert.Equal(t, "docker compose", cfg.ComposeCommand)
	assert.Equal(t, "fixturetest", cfg.ProjectName)
	assert.Equal(t, time.Second, cfg.Wait.Timeout)
	require.NoError(t, cfg.Validate())
}

func TestConfigBuilder_BuildCopies(t *testing.T) {
	b := NewConfigBuilder().WithComposeFiles("a.yml", "b.yml")
	first := b.Build()
	first.ComposeFiles[0] = "changed.yml"

	second := b.Build()
	assert.Equal(t, []string{"a.yml", "b.yml"}, second.ComposeFiles)
}

func TestConfigBuilder_Chain(t *testing.T) {
	cfg := NewConfigBuilder().
		WithComposeCommand("podman-compose").
		WithProjectName("p1").
		WithDockerHost("tcp://10.0.0.5:2375").
		WithHostOverride("_internal").
		WithLogDir("/tmp/logs").
		WithCommand("go test ./...").
		WithWait(5*time.Second, 50*time.Millisecond).
		WithDaemonCheck(true).
		Build()

	assert.Equal(t, "podman-compose", cfg.ComposeCommand)
	assert.Equal(t, "p1", cfg.Project())
	assert.Equal(t, "tcp://10.0.0.5:2375", cfg.DockerHost)
	assert.True(t, cfg.InternalNetwork())
	assert.Equal(t, "/tmp/logs", cfg.LogDir)
	assert.Equal(t, "go test ./...", cfg.Command)
	assert.Equal(t, 50*time.Millisecond, cfg.Wait.Pause)
	assert.True(t, cfg.DaemonCheck)
}
