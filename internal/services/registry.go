// Package services resolves published ports and endpoints of a running
// compose project and waits for its services to become responsive.
package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"

	"github.com/docker/go-connections/nat"
	"github.com/schmitthub/composefixture/internal/compose"
	"github.com/schmitthub/composefixture/internal/config"
	"github.com/schmitthub/composefixture/internal/docker"
	"github.com/schmitthub/composefixture/internal/logger"
)

// Executor runs orchestrator subcommands for one project.
type Executor interface {
	Execute(ctx context.Context, subcommand string) ([]byte, error)
}

// HostResolver returns the host on which published ports are reachable.
type HostResolver func() (string, error)

// Endpoint is a host and port pair reachable from the caller.
type Endpoint struct {
	Host string
	Port int
}

// String renders host:port, bracketing IPv6 literals.
func (e Endpoint) String() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

// URL renders scheme://host:port/.
func (e Endpoint) URL(scheme string) string {
	return scheme + "://" + e.String() + "/"
}

type portKey struct {
	service string
	port    int
	proto   string
}

// Registry memoizes published port lookups for one running project.
// It is safe for concurrent use.
type Registry struct {
	exec         Executor
	hostOverride string
	resolveHost  HostResolver

	mu     sync.Mutex
	ports  map[portKey]int
	closed bool
}

// Option configures a Registry.
type Option func(*Registry)

// WithHostOverride selects the endpoint mode. Empty resolves the daemon
// host, config.HostInternal returns the service name and container port,
// anything else is used as the host verbatim.
func WithHostOverride(host string) Option {
	return func(r *Registry) {
		r.hostOverride = host
	}
}

// WithHostResolver replaces the daemon host lookup.
func WithHostResolver(fn HostResolver) Option {
	return func(r *Registry) {
		if fn != nil {
			r.resolveHost = fn
		}
	}
}

// WithDockerHost resolves endpoints against the given daemon address
// instead of the DOCKER_HOST environment variable.
func WithDockerHost(dockerHost string, opts ...docker.HostOption) Option {
	return func(r *Registry) {
		r.resolveHost = func() (string, error) {
			return docker.ResolveHost(dockerHost, opts...)
		}
	}
}

// ConfigOptions maps resolved configuration onto registry options.
func ConfigOptions(cfg *config.Config) []Option {
	return []Option{
		WithHostOverride(cfg.HostOverride),
		WithDockerHost(cfg.DockerHost, cfg.HostOptions()...),
	}
}

// NewRegistry creates an empty registry bound to exec.
func NewRegistry(exec Executor, opts ...Option) *Registry {
	r := &Registry{
		exec:        exec,
		resolveHost: func() (string, error) { return docker.ResolveHostFromEnv() },
		ports:       make(map[portKey]int),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CheckHost resolves the daemon host when endpoints depend on it, so a
// malformed address is reported before any container starts.
func (r *Registry) CheckHost() error {
	if r.hostOverride != "" {
		return nil
	}
	_, err := r.resolveHost()
	return err
}

// PortFor returns the host port published for a TCP container port.
func (r *Registry) PortFor(ctx context.Context, service string, containerPort int) (int, error) {
	return r.PortForProtocol(ctx, service, containerPort, "tcp")
}

// PortForProtocol returns the host port published for containerPort/proto.
// The first successful lookup per key is cached for the registry's lifetime.
func (r *Registry) PortForProtocol(ctx context.Context, service string, containerPort int, proto string) (int, error) {
	if proto == "" {
		proto = "tcp"
	}
	key := portKey{service: service, port: containerPort, proto: proto}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return 0, ErrSessionClosed
	}
	if p, ok := r.ports[key]; ok {
		r.mu.Unlock()
		return p, nil
	}
	r.mu.Unlock()

	out, err := r.exec.Execute(ctx, compose.PortSubcommand(service, containerPort, proto))
	if err != nil {
		return 0, err
	}

	hostPort, err := parsePortOutput(service, containerPort, out)
	if err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// A concurrent lookup of the same key may have finished first; the
	// stored value wins so callers always agree.
	if p, ok := r.ports[key]; ok {
		return p, nil
	}
	r.ports[key] = hostPort
	logger.Debug().Str("service", service).Int("container_port", containerPort).Int("host_port", hostPort).Msg("resolved published port")
	return hostPort, nil
}

// EndpointFor returns where the caller can reach service's TCP containerPort.
func (r *Registry) EndpointFor(ctx context.Context, service string, containerPort int) (Endpoint, error) {
	return r.EndpointForProtocol(ctx, service, containerPort, "tcp")
}

// EndpointForProtocol is EndpointFor for containerPort/proto.
func (r *Registry) EndpointForProtocol(ctx context.Context, service string, containerPort int, proto string) (Endpoint, error) {
	switch r.hostOverride {
	case config.HostInternal:
		r.mu.Lock()
		closed := r.closed
		r.mu.Unlock()
		if closed {
			return Endpoint{}, ErrSessionClosed
		}
		return Endpoint{Host: service, Port: containerPort}, nil
	case "":
		host, err := r.resolveHost()
		if err != nil {
			return Endpoint{}, err
		}
		port, err := r.PortForProtocol(ctx, service, containerPort, proto)
		if err != nil {
			return Endpoint{}, err
		}
		return Endpoint{Host: host, Port: port}, nil
	default:
		port, err := r.PortForProtocol(ctx, service, containerPort, proto)
		if err != nil {
			return Endpoint{}, err
		}
		return Endpoint{Host: r.hostOverride, Port: port}, nil
	}
}

// Close makes every later lookup fail with ErrSessionClosed.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
}

// parsePortOutput reads "<bind-address>:<port>" from the first non-empty
// line of out. Only the integer after the last colon matters.
func parsePortOutput(service string, containerPort int, out []byte) (int, error) {
	var line string
	for _, l := range strings.Split(string(out), "\n") {
		if l = strings.TrimSpace(l); l != "" {
			line = l
			break
		}
	}
	if line == "" {
		return 0, &ResolutionError{Service: service, Port: containerPort, Err: errors.New("empty output")}
	}

	raw := line
	if idx := strings.LastIndex(line, ":"); idx != -1 {
		raw = line[idx+1:]
	}
	port, err := nat.ParsePort(raw)
	if err != nil {
		return 0, &ResolutionError{Service: service, Port: containerPort, Output: line, Err: err}
	}
	if port == 0 {
		return 0, &ResolutionError{Service: service, Port: containerPort, Output: line, Err: errors.New("port is not published")}
	}
	return port, nil
}

// ParseTarget parses "service:port[/proto]" as used by --wait flags.
func ParseTarget(spec string) (service string, port int, proto string, err error) {
	idx := strings.LastIndex(spec, ":")
	if idx <= 0 || idx == len(spec)-1 {
		return "", 0, "", fmt.Errorf("invalid target %q (expected service:port[/proto])", spec)
	}
	service = spec[:idx]
	proto, rawPort := nat.SplitProtoPort(spec[idx+1:])
	if proto != "tcp" && proto != "udp" {
		return "", 0, "", fmt.Errorf("invalid protocol %q in %q (must be tcp or udp)", proto, spec)
	}
	port, err = nat.ParsePort(rawPort)
	if err != nil || port == 0 {
		return "", 0, "", fmt.Errorf("invalid port in %q", spec)
	}
	return service, port, proto, nil
}
