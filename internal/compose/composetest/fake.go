// Package composetest provides test doubles for the compose and shell
// packages. FakeRunner records command lines and answers them from a table
// of canned responses; FakeExecutor does the same one level up, keyed by
// subcommand.
package composetest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/schmitthub/composefixture/internal/shell"
)

// Response is a canned result for a matched command.
type Response struct {
	Output   string
	ExitCode int
}

// FakeRunner implements shell.Runner without spawning processes.
// Commands are matched by substring in registration order; unmatched
// commands succeed with empty output.
type FakeRunner struct {
	mu        sync.Mutex
	calls     []string
	responses []match
}

type match struct {
	contains string
	resp     Response
}

// NewFakeRunner creates an empty FakeRunner.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{}
}

// On registers resp for any command line containing substr.
func (f *FakeRunner) On(substr string, resp Response) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, match{contains: substr, resp: resp})
	return f
}

// Run records commandLine and returns the first matching response.
func (f *FakeRunner) Run(_ context.Context, commandLine string, successCodes ...int) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, commandLine)
	resp := Response{}
	for _, m := range f.responses {
		if strings.Contains(commandLine, m.contains) {
			resp = m.resp
			break
		}
	}
	f.mu.Unlock()

	if len(successCodes) == 0 {
		successCodes = []int{0}
	}
	for _, c := range successCodes {
		if c == resp.ExitCode {
			return []byte(resp.Output), nil
		}
	}
	return []byte(resp.Output), &shell.CommandError{
		Command:  commandLine,
		ExitCode: resp.ExitCode,
		Output:   []byte(resp.Output),
		Err:      fmt.Errorf("exit status %d", resp.ExitCode),
	}
}

// Calls returns every recorded command line.
func (f *FakeRunner) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// FakeExecutor records subcommands and answers them by prefix.
type FakeExecutor struct {
	mu        sync.Mutex
	project   string
	calls     []string
	responses []match
	hooks     map[string]func()
}

// NewFakeExecutor creates a FakeExecutor for project.
func NewFakeExecutor(project string) *FakeExecutor {
	return &FakeExecutor{project: project, hooks: map[string]func(){}}
}

// On registers resp for subcommands starting with prefix.
func (f *FakeExecutor) On(prefix string, resp Response) *FakeExecutor {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, match{contains: prefix, resp: resp})
	return f
}

// Hook runs fn whenever a subcommand starting with prefix executes.
func (f *FakeExecutor) Hook(prefix string, fn func()) *FakeExecutor {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hooks[prefix] = fn
	return f
}

// ProjectName returns the configured project name.
func (f *FakeExecutor) ProjectName() string { return f.project }

// Execute records subcommand and returns the first matching response.
func (f *FakeExecutor) Execute(_ context.Context, subcommand string) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, subcommand)
	resp := Response{}
	for _, m := range f.responses {
		if strings.HasPrefix(subcommand, m.contains) {
			resp = m.resp
			break
		}
	}
	var hook func()
	for prefix, fn := range f.hooks {
		if strings.HasPrefix(subcommand, prefix) {
			hook = fn
		}
	}
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	if resp.ExitCode != 0 {
		return []byte(resp.Output), &shell.CommandError{
			Command:  subcommand,
			ExitCode: resp.ExitCode,
			Output:   []byte(resp.Output),
		}
	}
	return []byte(resp.Output), nil
}

// Calls returns every recorded subcommand.
func (f *FakeExecutor) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// Count returns how many recorded subcommands start with prefix.
func (f *FakeExecutor) Count(prefix string) int {
	n := 0
	for _, c := range f.Calls() {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}
