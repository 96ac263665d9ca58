package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/schmitthub/composefixture/internal/logger"
	"github.com/sethvargo/go-retry"
)

// Check reports whether a service is ready. It must not block for longer
// than its own I/O timeout.
type Check func(ctx context.Context) bool

// Probe builds a Check for a resolved endpoint.
type Probe func(Endpoint) Check

var errNotResponsive = errors.New("not responsive")

// WaitUntilResponsive calls check immediately and then every pause until it
// returns true or timeout has elapsed. check is always called at least once.
// The project is left running on timeout.
func (r *Registry) WaitUntilResponsive(ctx context.Context, check Check, timeout, pause time.Duration) error {
	return WaitUntil(ctx, check, timeout, pause)
}

// WaitUntil is WaitUntilResponsive without a registry.
func WaitUntil(ctx context.Context, check Check, timeout, pause time.Duration) error {
	if pause <= 0 {
		return fmt.Errorf("pause must be positive, got %s", pause)
	}
	if timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", timeout)
	}

	attempts := 0
	backoff := retry.WithMaxDuration(timeout, retry.NewConstant(pause))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempts++
		if check(ctx) {
			return nil
		}
		return retry.RetryableError(errNotResponsive)
	})
	switch {
	case err == nil:
		logger.Debug().Int("attempts", attempts).Msg("service responsive")
		return nil
	case errors.Is(err, errNotResponsive):
		return &TimeoutError{Timeout: timeout, Attempts: attempts}
	default:
		return err
	}
}

// WaitForEndpoint resolves the endpoint for service's containerPort and
// waits until probe reports it ready.
func (r *Registry) WaitForEndpoint(ctx context.Context, service string, containerPort int, probe Probe, timeout, pause time.Duration) (Endpoint, error) {
	ep, err := r.EndpointFor(ctx, service, containerPort)
	if err != nil {
		return Endpoint{}, err
	}
	logger.Debug().Str("service", service).Str("endpoint", ep.String()).Msg("waiting for endpoint")
	if err := r.WaitUntilResponsive(ctx, probe(ep), timeout, pause); err != nil {
		return ep, fmt.Errorf("waiting for %s (%s): %w", service, ep, err)
	}
	return ep, nil
}
