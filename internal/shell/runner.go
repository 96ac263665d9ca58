// Package shell runs command lines through the platform shell and classifies
// the result by exit code. It is the only place in the module that spawns
// subprocesses for the orchestrator.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"slices"
	"time"

	"github.com/schmitthub/composefixture/internal/logger"
)

const waitDelay = time.Second

// Runner executes a command line and returns its combined output.
type Runner interface {
	Run(ctx context.Context, commandLine string, successCodes ...int) ([]byte, error)
}

// CommandError is returned when a command exits with a code that is not in
// the accepted set, or could not be run at all (ExitCode -1).
type CommandError struct {
	Command  string
	ExitCode int
	Output   []byte
	Err      error
}

func (e *CommandError) Error() string {
	if e.ExitCode < 0 && e.Err != nil {
		return fmt.Sprintf("command %q failed: %v", e.Command, e.Err)
	}
	return fmt.Sprintf("command %q returned %d: %q", e.Command, e.ExitCode, bytes.TrimSpace(e.Output))
}

func (e *CommandError) Unwrap() error { return e.Err }

// ShellRunner runs command lines with `sh -c` (`cmd /C` on Windows).
// Stdout and stderr are merged into a single buffer.
type ShellRunner struct {
	// Shell overrides the interpreter. Defaults to "sh" ("cmd" on Windows).
	Shell string
	// Dir is the working directory. Empty means the current directory.
	Dir string
	// Env is appended to the inherited environment.
	Env []string
}

// NewRunner returns a ShellRunner with platform defaults.
func NewRunner() *ShellRunner {
	return &ShellRunner{}
}

func (r *ShellRunner) shellArgs(commandLine string) (string, []string) {
	if r.Shell != "" {
		return r.Shell, []string{"-c", commandLine}
	}
	if runtime.GOOS == "windows" {
		return "cmd", []string{"/C", commandLine}
	}
	return "sh", []string{"-c", commandLine}
}

// Run executes commandLine once and waits for it to exit. With no
// successCodes, only exit code 0 is accepted.
func (r *ShellRunner) Run(ctx context.Context, commandLine string, successCodes ...int) ([]byte, error) {
	if len(successCodes) == 0 {
		successCodes = []int{0}
	}

	name, args := r.shellArgs(commandLine)
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.Dir
	if len(r.Env) > 0 {
		cmd.Env = append(cmd.Environ(), r.Env...)
	}

	// Bound the wait for grandchildren that inherit the output pipe.
	cmd.WaitDelay = waitDelay

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	start := time.Now()
	err := cmd.Run()
	code := exitCode(err)
	if errors.Is(err, exec.ErrWaitDelay) && cmd.ProcessState != nil {
		code = cmd.ProcessState.ExitCode()
	}

	logger.Debug().
		Str("command", commandLine).
		Int("exit_code", code).
		Dur("duration", time.Since(start)).
		Msg("command finished")

	if code < 0 || !slices.Contains(successCodes, code) {
		return out.Bytes(), &CommandError{Command: commandLine, ExitCode: code, Output: out.Bytes(), Err: err}
	}
	return out.Bytes(), nil
}

// exitCode maps a Run error to a process exit code. Errors that are not an
// exit status (binary missing, killed by context) map to -1.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode()
	}
	return -1
}
