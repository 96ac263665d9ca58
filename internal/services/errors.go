package services

import (
	"errors"
	"fmt"
	"time"
)

// ErrSessionClosed is returned by lookups on a registry whose session has
// been torn down.
var ErrSessionClosed = errors.New("service registry is closed: the compose project has been taken down")

// ResolutionError reports that the orchestrator's `port` output could not be
// turned into a published host port.
type ResolutionError struct {
	Service string
	Port    int
	Output  string
	Err     error
}

func (e *ResolutionError) Error() string {
	msg := fmt.Sprintf("could not resolve published port for %s:%d", e.Service, e.Port)
	if e.Output != "" {
		msg += fmt.Sprintf(" from output %q", e.Output)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// TimeoutError reports that a readiness check never succeeded.
type TimeoutError struct {
	Timeout  time.Duration
	Attempts int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timeout reached after %s (%d attempts) waiting for service to become responsive", e.Timeout, e.Attempts)
}

// IsTimeout returns true if err is (or wraps) a TimeoutError.
func IsTimeout(err error) bool {
	var target *TimeoutError
	return errors.As(err, &target)
}
