// Package signals turns SIGINT and SIGTERM into context cancellation so a
// running fixture still reaches its teardown. This is a leaf package:
// stdlib only, no internal imports, no logging.
package signals

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// Shutdown lists the signals that cancel a SetupSignalContext context.
var Shutdown = []os.Signal{syscall.SIGINT, syscall.SIGTERM}

// SetupSignalContext creates a context that's canceled on SIGINT/SIGTERM.
// A second signal is not intercepted, so it terminates the process the
// default way.
func SetupSignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, Shutdown...)

	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}
