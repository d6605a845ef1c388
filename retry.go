package main

import (
	"context"
	"fmt"
	"time"
)

// retryWithDelay runs fn up to attempts times with a fixed delay between
// attempts, stopping early on success or context cancellation. The delay is
// deliberately constant, not exponential.
func retryWithDelay(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("attempts must be at least 1")
	}

	var err error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
		if err = fn(); err == nil {
			return nil
		}
	}
	return fmt.Errorf("all %d attempts failed: %w", attempts, err)
}
