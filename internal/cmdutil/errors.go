package cmdutil

import (
	"errors"
	"fmt"

	"al.essio.dev/pkg/shellescape"
)

// ExitError carries the exit status of a child process. Commands return it
// instead of calling os.Exit so deferred teardown still runs; Main turns it
// into the process exit code.
type ExitError struct {
	// Command is the child's argv, if known.
	Command []string
	Code    int
}

func (e *ExitError) Error() string {
	if len(e.Command) == 0 {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return fmt.Sprintf("%s: exit status %d", shellescape.QuoteCommand(e.Command), e.Code)
}

// FlagError indicates bad flags or arguments. Main prints the message
// followed by the command's usage.
type FlagError struct {
	err error
}

func (e *FlagError) Error() string { return e.err.Error() }
func (e *FlagError) Unwrap() error { return e.err }

// FlagErrorf creates a FlagError with a formatted message.
func FlagErrorf(format string, args ...any) error {
	return &FlagError{err: fmt.Errorf(format, args...)}
}

// FlagErrorWrap wraps an existing error as a FlagError.
func FlagErrorWrap(err error) error {
	return &FlagError{err: err}
}

// SilentError signals that the error has already been displayed to the user.
// Main() will exit non-zero but not print anything additional.
var SilentError = errors.New("SilentError")
