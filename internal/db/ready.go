package db

import (
	"context"
	"fmt"
	"time"
)

const readyPollInterval = 100 * time.Millisecond

// WaitReady calls ping right away and then every 100ms until it succeeds or
// timeout expires. The last ping error is kept in the timeout error.
func WaitReady(ctx context.Context, timeout time.Duration, backend string, ping func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	lastErr := ping(ctx)
	if lastErr == nil {
		return nil
	}

	ticker := time.NewTicker(readyPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%s not ready after %s: %w (last error: %w)", backend, timeout, ctx.Err(), lastErr)
		case <-ticker.C:
			if lastErr = ping(ctx); lastErr == nil {
				return nil
			}
		}
	}
}
