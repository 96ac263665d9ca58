package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/schmitthub/composefixture/internal/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable the loader reads so the host environment
// cannot leak into a test. Empty values are treated as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		EnvDockerHost, EnvPytestDockerHost, EnvPytestDockerLogDir,
		"COMPOSEFIXTURE_COMPOSE_COMMAND", "COMPOSEFIXTURE_COMPOSE_FILES",
		"COMPOSEFIXTURE_PROJECT_NAME", "COMPOSEFIXTURE_HOST", "COMPOSEFIXTURE_LOG_DIR",
		"COMPOSEFIXTURE_COMMAND", "COMPOSEFIXTURE_WAIT_TIMEOUT", "COMPOSEFIXTURE_WAIT_PAUSE",
		"COMPOSEFIXTURE_DAEMON_CHECK", "COMPOSEFIXTURE_LOG_FILE", "COMPOSEFIXTURE_LOG_FILE_DIR",
		"COMPOSEFIXTURE_LOCAL_SOCKETS",
	} {
		t.Setenv(name, "")
	}
}

func TestNewLoader(t *testing.T) {
	loader := NewLoader("/test/path")
	if loader.workDir != "/test/path" {
		t.Errorf("NewLoader().workDir = %q, want %q", loader.workDir, "/test/path")
	}
}

func TestLoaderConfigPath(t *testing.T) {
	loader := NewLoader("/test/path")
	expected := filepath.Join("/test/path", "composefixture.yaml")
	if loader.ConfigPath() != expected {
		t.Errorf("Loader.ConfigPath() = %q, want %q", loader.ConfigPath(), expected)
	}
}

func TestLoaderExists(t *testing.T) {
	tmpDir := t.TempDir()
	loader := NewLoader(tmpDir)

	if loader.Exists() {
		t.Error("Loader.Exists() should return false when config doesn't exist")
	}

	if err := os.WriteFile(loader.ConfigPath(), []byte("project_name: x\n"), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	if !loader.Exists() {
		t.Error("Loader.Exists() should return true when config exists")
	}
}

func TestLoaderLoadDefaults(t *testing.T) {
	clearEnv(t)
	tmpDir := t.TempDir()

	cfg, err := Load(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "docker compose", cfg.ComposeCommand)
	assert.Equal(t, []string{filepath.Join(tmpDir, "docker-compose.yml")}, cfg.ComposeFiles)
	assert.Empty(t, cfg.ProjectName)
	assert.Empty(t, cfg.DockerHost)
	assert.Empty(t, cfg.HostOverride)
	assert.Empty(t, cfg.LogDir)
	assert.Equal(t, 30*time.Second, cfg.Wait.Timeout)
	assert.Equal(t, 100*time.Millisecond, cfg.Wait.Pause)
	assert.False(t, cfg.DaemonCheck)
	assert.Nil(t, cfg.Logging.FileEnabled)
}

func TestLoaderLoadFile(t *testing.T) {
	clearEnv(t)
	tmpDir := t.TempDir()
	content := `
compose_command: podman-compose
compose_files:
  - tests/docker-compose.yml
  - /abs/override.yml
project_name: fromfile
host_override: ci-runner
command: go test ./...
daemon_check: true
wait:
  timeout: 5s
  pause: 250ms
logging:
  file_enabled: true
  max_size_mb: 2
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte(content), 0o644))

	cfg, err := Load(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "podman-compose", cfg.ComposeCommand)
	assert.Equal(t, []string{
		filepath.Join(tmpDir, "tests", "docker-compose.yml"),
		"/abs/override.yml",
	}, cfg.ComposeFiles)
	assert.Equal(t, "fromfile", cfg.ProjectName)
	assert.Equal(t, "ci-runner", cfg.HostOverride)
	assert.Equal(t, "go test ./...", cfg.Command)
	assert.True(t, cfg.DaemonCheck)
	assert.Equal(t, 5*time.Second, cfg.Wait.Timeout)
	assert.Equal(t, 250*time.Millisecond, cfg.Wait.Pause)
	require.NotNil(t, cfg.Logging.FileEnabled)
	assert.True(t, *cfg.Logging.FileEnabled)
	assert.Equal(t, 2, cfg.Logging.MaxSizeMB)
}

func TestLoaderLoadEnv(t *testing.T) {
	clearEnv(t)
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte("project_name: fromfile\n"), 0o644))

	t.Setenv(EnvDockerHost, "tcp://10.0.0.5:2375")
	t.Setenv("COMPOSEFIXTURE_PROJECT_NAME", "fromenv")
	t.Setenv("COMPOSEFIXTURE_COMPOSE_FILES", "a.yml,b.yml")
	t.Setenv("COMPOSEFIXTURE_WAIT_TIMEOUT", "2s")

	cfg, err := Load(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "tcp://10.0.0.5:2375", cfg.DockerHost)
	assert.Equal(t, "fromenv", cfg.ProjectName, "environment beats the config file")
	assert.Equal(t, []string{filepath.Join(tmpDir, "a.yml"), filepath.Join(tmpDir, "b.yml")}, cfg.ComposeFiles)
	assert.Equal(t, 2*time.Second, cfg.Wait.Timeout)
}

func TestLoaderLoadMalformedDockerHost(t *testing.T) {
	clearEnv(t)
	tmpDir := t.TempDir()

	t.Setenv(EnvDockerHost, "unix:///var/run/docker.sock")
	_, err := Load(tmpDir)
	require.Error(t, err)
	assert.True(t, IsInvalidConfig(err))
	var cfgErr *docker.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)

	t.Setenv("COMPOSEFIXTURE_LOCAL_SOCKETS", "true")
	cfg, err := Load(tmpDir)
	require.NoError(t, err)
	assert.True(t, cfg.LocalSockets)
}

func TestLoaderLoadLegacyEnv(t *testing.T) {
	clearEnv(t)
	tmpDir := t.TempDir()

	t.Setenv(EnvPytestDockerHost, "legacy-host")
	t.Setenv(EnvPytestDockerLogDir, "/tmp/legacy-logs")

	cfg, err := Load(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "legacy-host", cfg.HostOverride)
	assert.Equal(t, "/tmp/legacy-logs", cfg.LogDir)

	t.Setenv("COMPOSEFIXTURE_HOST", HostInternal)
	t.Setenv("COMPOSEFIXTURE_LOG_DIR", "/tmp/native-logs")

	cfg, err = Load(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, HostInternal, cfg.HostOverride, "native variable wins over legacy one")
	assert.Equal(t, "/tmp/native-logs", cfg.LogDir)
}

func TestLoaderSetOverrides(t *testing.T) {
	clearEnv(t)
	tmpDir := t.TempDir()
	t.Setenv("COMPOSEFIXTURE_PROJECT_NAME", "fromenv")

	loader := NewLoader(tmpDir)
	loader.Set(KeyProjectName, "fromflag")
	loader.Set(KeyComposeFiles, []string{"flag.yml"})

	cfg, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, "fromflag", cfg.ProjectName)
	assert.Equal(t, []string{filepath.Join(tmpDir, "flag.yml")}, cfg.ComposeFiles)
}

func TestLoaderInterpolatesComposeFiles(t *testing.T) {
	clearEnv(t)
	tmpDir := t.TempDir()
	t.Setenv("FIXTURE_ROOT", "/srv/app")

	loader := NewLoader(tmpDir)
	loader.Set(KeyComposeFiles, []string{"${FIXTURE_ROOT}/docker-compose.yml"})

	cfg, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"/srv/app/docker-compose.yml"}, cfg.ComposeFiles)
}

func TestLoaderInvalidConfig(t *testing.T) {
	clearEnv(t)
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte("wait:\n  pause: 0s\n"), 0o644))

	_, err := Load(tmpDir)
	require.Error(t, err)
	assert.True(t, IsInvalidConfig(err))
	assert.Contains(t, err.Error(), "wait.pause")
}

func TestLoaderMalformedFile(t *testing.T) {
	clearEnv(t)
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte("compose_files: [unclosed\n"), 0o644))

	_, err := Load(tmpDir)
	require.Error(t, err)
	assert.False(t, IsInvalidConfig(err))
	assert.Contains(t, err.Error(), "failed to read config file")
}
