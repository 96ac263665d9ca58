package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/mfridman/interpolate"
	"github.com/spf13/viper"
)

// Loader resolves configuration from, in increasing precedence: defaults,
// the optional composefixture.yaml, environment variables, and explicit
// overrides set by the caller (CLI flags).
type Loader struct {
	workDir string
	viper   *viper.Viper
}

// NewLoader creates a configuration loader for the given working directory.
func NewLoader(workDir string) *Loader {
	return &Loader{
		workDir: workDir,
		viper:   viper.New(),
	}
}

// Set records an explicit override that beats every other source.
func (l *Loader) Set(key string, value any) {
	l.viper.Set(key, value)
}

// ConfigPath returns the full path to the config file
func (l *Loader) ConfigPath() string {
	return filepath.Join(l.workDir, ConfigFileName)
}

// Exists checks if the configuration file exists
func (l *Loader) Exists() bool {
	_, err := os.Stat(l.ConfigPath())
	return err == nil
}

// Load resolves the configuration. A missing config file is not an error.
func (l *Loader) Load() (*Config, error) {
	v := l.viper
	v.SetConfigType("yaml")

	defaults := DefaultConfig()
	v.SetDefault(KeyComposeCommand, defaults.ComposeCommand)
	v.SetDefault(KeyComposeFiles, defaults.ComposeFiles)
	v.SetDefault(KeyWaitTimeout, defaults.Wait.Timeout)
	v.SetDefault(KeyWaitPause, defaults.Wait.Pause)
	v.SetDefault(KeyDaemonCheck, defaults.DaemonCheck)

	if err := bindEnv(v); err != nil {
		return nil, err
	}

	if l.Exists() {
		v.SetConfigFile(l.ConfigPath())
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	files, err := l.resolveFiles(cfg.ComposeFiles)
	if err != nil {
		return nil, err
	}
	cfg.ComposeFiles = files

	if err := cfg.Validate(); err != nil {
		return nil, &InvalidConfigError{Err: err}
	}
	return &cfg, nil
}

// bindEnv maps keys to environment variables. The first variable listed
// that is set wins.
func bindEnv(v *viper.Viper) error {
	bindings := map[string][]string{
		KeyComposeCommand: {EnvPrefix + "_COMPOSE_COMMAND"},
		KeyComposeFiles:   {EnvPrefix + "_COMPOSE_FILES"},
		KeyProjectName:    {EnvPrefix + "_PROJECT_NAME"},
		KeyDockerHost:     {EnvDockerHost},
		KeyLocalSockets:   {EnvPrefix + "_LOCAL_SOCKETS"},
		KeyHostOverride:   {EnvPrefix + "_HOST", EnvPytestDockerHost},
		KeyLogDir:         {EnvPrefix + "_LOG_DIR", EnvPytestDockerLogDir},
		KeyCommand:        {EnvPrefix + "_COMMAND"},
		KeyWaitTimeout:    {EnvPrefix + "_WAIT_TIMEOUT"},
		KeyWaitPause:      {EnvPrefix + "_WAIT_PAUSE"},
		KeyDaemonCheck:    {EnvPrefix + "_DAEMON_CHECK"},
		KeyLogFileEnabled: {EnvPrefix + "_LOG_FILE"},
		KeyLogFileDir:     {EnvPrefix + "_LOG_FILE_DIR"},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return fmt.Errorf("binding %s: %w", key, err)
		}
	}
	return nil
}

// resolveFiles expands ${VAR} references from the environment and makes
// relative paths absolute against the working directory.
func (l *Loader) resolveFiles(files []string) ([]string, error) {
	env := interpolate.NewSliceEnv(os.Environ())
	out := make([]string, 0, len(files))
	for _, f := range files {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		expanded, err := interpolate.Interpolate(env, f)
		if err != nil {
			return nil, fmt.Errorf("expanding compose file %q: %w", f, err)
		}
		if !filepath.IsAbs(expanded) {
			expanded = filepath.Join(l.workDir, expanded)
		}
		out = append(out, expanded)
	}
	return out, nil
}

// Load is a convenience wrapper around NewLoader(workDir).Load().
func Load(workDir string) (*Config, error) {
	return NewLoader(workDir).Load()
}

// InvalidConfigError wraps a validation failure.
type InvalidConfigError struct {
	Err error
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %v", e.Err)
}

func (e *InvalidConfigError) Unwrap() error { return e.Err }

// IsInvalidConfig returns true if err is (or wraps) an InvalidConfigError.
func IsInvalidConfig(err error) bool {
	var target *InvalidConfigError
	return errors.As(err, &target)
}
