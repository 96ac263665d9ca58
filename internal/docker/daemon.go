package docker

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/moby/moby/api/types/container"
	"github.com/moby/moby/client"
	"github.com/schmitthub/composefixture/internal/logger"
)

// Labels the compose orchestrator puts on every container it creates.
const (
	LabelComposeProject = "com.docker.compose.project"
	LabelComposeService = "com.docker.compose.service"
)

// APIClient is the subset of the Engine API the fixture needs. Diagnostics
// only: lifecycle is always driven through the orchestrator.
type APIClient interface {
	Ping(ctx context.Context, options client.PingOptions) (client.PingResult, error)
	ContainerList(ctx context.Context, options client.ContainerListOptions) (client.ContainerListResult, error)
	Close() error
}

// Container is a compose-managed container as seen by the daemon.
type Container struct {
	ID      string
	Name    string
	Service string
	State   string
	Created time.Time
}

// Daemon wraps an Engine API client for read-only project inspection.
type Daemon struct {
	api APIClient
}

// NewDaemon connects using the standard DOCKER_* environment variables.
func NewDaemon() (*Daemon, error) {
	cli, err := client.New(client.FromEnv)
	if err != nil {
		return nil, fmt.Errorf("failed to create Docker client: %w", err)
	}
	return &Daemon{api: cli}, nil
}

// NewDaemonWithClient wraps an existing client. Used by tests.
func NewDaemonWithClient(api APIClient) *Daemon {
	return &Daemon{api: api}
}

// Ping checks that the daemon is reachable.
func (d *Daemon) Ping(ctx context.Context) error {
	if _, err := d.api.Ping(ctx, client.PingOptions{}); err != nil {
		return fmt.Errorf("docker daemon is not reachable: %w", err)
	}
	return nil
}

// ProjectContainers lists every container (running or not) labelled with
// the compose project, sorted by service then name.
func (d *Daemon) ProjectContainers(ctx context.Context, project string) ([]Container, error) {
	f := client.Filters{}.Add("label", LabelComposeProject+"="+project)

	result, err := d.api.ContainerList(ctx, client.ContainerListOptions{
		All:     true,
		Filters: f,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list containers for project %q: %w", project, err)
	}

	containers := parseContainers(result.Items)
	logger.Debug().Str("project", project).Int("count", len(containers)).Msg("listed project containers")
	return containers, nil
}

// Close releases the underlying connection.
func (d *Daemon) Close() error {
	return d.api.Close()
}

func parseContainers(items []container.Summary) []Container {
	result := make([]Container, 0, len(items))
	for _, c := range items {
		// Extract container name (remove leading slash)
		name := ""
		if len(c.Names) > 0 {
			name = strings.TrimPrefix(c.Names[0], "/")
		}
		result = append(result, Container{
			ID:      c.ID,
			Name:    name,
			Service: c.Labels[LabelComposeService],
			State:   string(c.State),
			Created: time.Unix(c.Created, 0),
		})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Service != result[j].Service {
			return result[i].Service < result[j].Service
		}
		return result[i].Name < result[j].Name
	})
	return result
}
