package docker

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// LoopbackHost is where a local daemon publishes container ports.
const LoopbackHost = "127.0.0.1"

// EnvDockerHost names the daemon address variable.
const EnvDockerHost = "DOCKER_HOST"

// hostPattern matches scheme://host:port. The host group is lazy so a
// trailing :port is never swallowed into it.
var hostPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*://(.+?):\d+$`)

// ConfigurationError reports a malformed configuration value.
type ConfigurationError struct {
	Key   string
	Value string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid value for %s: %q (expected scheme://host:port)", e.Key, e.Value)
}

type hostOptions struct {
	localSockets bool
}

// HostOption adjusts how ResolveHost interprets an address.
type HostOption func(*hostOptions)

// WithLocalSockets resolves unix:// and npipe:// addresses to the loopback
// interface instead of rejecting them.
func WithLocalSockets(enabled bool) HostOption {
	return func(o *hostOptions) {
		o.localSockets = enabled
	}
}

// ResolveHost returns the host on which published container ports are
// reachable, given a daemon address. An empty address means the loopback
// interface. Any other value must be scheme://host:port.
func ResolveHost(dockerHost string, opts ...HostOption) (string, error) {
	var o hostOptions
	for _, opt := range opts {
		opt(&o)
	}

	dockerHost = strings.TrimSpace(dockerHost)
	if dockerHost == "" {
		return LoopbackHost, nil
	}

	if o.localSockets {
		lower := strings.ToLower(dockerHost)
		if strings.HasPrefix(lower, "unix://") || strings.HasPrefix(lower, "npipe://") {
			return LoopbackHost, nil
		}
	}

	m := hostPattern.FindStringSubmatch(dockerHost)
	if m == nil {
		return "", &ConfigurationError{Key: EnvDockerHost, Value: dockerHost}
	}

	host := m[1]
	if i := strings.LastIndex(host, "@"); i >= 0 {
		host = host[i+1:]
	}
	host = strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
	if host == "" {
		return "", &ConfigurationError{Key: EnvDockerHost, Value: dockerHost}
	}
	return host, nil
}

// ResolveHostFromEnv resolves the host from the DOCKER_HOST variable.
func ResolveHostFromEnv(opts ...HostOption) (string, error) {
	return ResolveHost(os.Getenv(EnvDockerHost), opts...)
}
