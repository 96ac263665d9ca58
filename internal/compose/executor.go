// Package compose builds and runs orchestrator command lines for one
// compose project.
package compose

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"al.essio.dev/pkg/shellescape"
	"github.com/schmitthub/composefixture/internal/logger"
	"github.com/schmitthub/composefixture/internal/shell"
)

// DefaultCommand is the orchestrator invocation used when none is configured.
const DefaultCommand = "docker compose"

// Canonical subcommands issued by the fixture.
const (
	SubcommandUp   = "up --build -d"
	SubcommandDown = "down -v --remove-orphans"
	SubcommandLogs = "logs --no-color"
)

var (
	// ErrNoComposeFiles is returned by New when the file list is empty.
	ErrNoComposeFiles = errors.New("at least one compose file is required")
	// ErrNoProjectName is returned by New when the project name is empty.
	ErrNoProjectName = errors.New("compose project name is required")
)

// Executor runs orchestrator subcommands against a fixed set of compose
// files and a project name. It is immutable after construction.
type Executor struct {
	runner  shell.Runner
	command string
	files   []string
	project string
}

// Option configures an Executor.
type Option func(*Executor)

// WithCommand overrides the orchestrator invocation, e.g. "docker-compose"
// or "podman-compose". The value is inserted into the shell line unquoted
// so it may contain several words.
func WithCommand(command string) Option {
	return func(e *Executor) {
		if strings.TrimSpace(command) != "" {
			e.command = strings.TrimSpace(command)
		}
	}
}

// New creates an Executor. files are passed to the orchestrator in order.
func New(runner shell.Runner, files []string, project string, opts ...Option) (*Executor, error) {
	if len(files) == 0 {
		return nil, ErrNoComposeFiles
	}
	if strings.TrimSpace(project) == "" {
		return nil, ErrNoProjectName
	}

	e := &Executor{
		runner:  runner,
		command: DefaultCommand,
		files:   append([]string(nil), files...),
		project: project,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Files returns a copy of the compose file list.
func (e *Executor) Files() []string {
	return append([]string(nil), e.files...)
}

// ProjectName returns the compose project name.
func (e *Executor) ProjectName() string {
	return e.project
}

// Command returns the orchestrator invocation prefix.
func (e *Executor) Command() string {
	return e.command
}

// CommandLine renders the full shell line for subcommand:
//
//	<command> -f <file1> -f <file2> ... -p <project> <subcommand>
func (e *Executor) CommandLine(subcommand string) string {
	var b strings.Builder
	b.WriteString(e.command)
	for _, f := range e.files {
		b.WriteString(" -f ")
		b.WriteString(shellescape.Quote(f))
	}
	b.WriteString(" -p ")
	b.WriteString(shellescape.Quote(e.project))
	if subcommand != "" {
		b.WriteString(" ")
		b.WriteString(subcommand)
	}
	return b.String()
}

// Execute runs subcommand and returns its combined output. The subcommand is
// appended verbatim; callers quote their own operands.
func (e *Executor) Execute(ctx context.Context, subcommand string) ([]byte, error) {
	line := e.CommandLine(subcommand)
	logger.Debug().Str("subcommand", subcommand).Msg("running orchestrator")
	return e.runner.Run(ctx, line)
}

// Up builds and starts all services detached.
func (e *Executor) Up(ctx context.Context) error {
	_, err := e.Execute(ctx, SubcommandUp)
	return err
}

// Down stops the project and removes its anonymous volumes and orphans.
func (e *Executor) Down(ctx context.Context) error {
	_, err := e.Execute(ctx, SubcommandDown)
	return err
}

// Logs returns the uncoloured logs of every service in the project.
func (e *Executor) Logs(ctx context.Context) ([]byte, error) {
	return e.Execute(ctx, SubcommandLogs)
}

// Port returns the raw `port` output for service and containerPort.
// proto may be empty for the orchestrator default (tcp).
func (e *Executor) Port(ctx context.Context, service string, containerPort int, proto string) ([]byte, error) {
	return e.Execute(ctx, PortSubcommand(service, containerPort, proto))
}

// PortSubcommand renders the `port` subcommand with a quoted service name.
func PortSubcommand(service string, containerPort int, proto string) string {
	if proto != "" && proto != "tcp" {
		return fmt.Sprintf("port --protocol %s %s %d", shellescape.Quote(proto), shellescape.Quote(service), containerPort)
	}
	return fmt.Sprintf("port %s %d", shellescape.Quote(service), containerPort)
}
