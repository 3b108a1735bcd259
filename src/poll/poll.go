// Package poll provides the single sleep-and-retry loop shared by every
// polling stage of the pipeline. Each stage configures interval, attempt
// budget and which errors are worth retrying; cancellation interrupts
// every wait.
package poll

import (
	"context"
	"fmt"
	"time"
)

// Func performs one poll attempt. done reports that polling is complete;
// a non-nil error is consulted against the retryable predicate.
type Func func(ctx context.Context) (done bool, err error)

// Options parameterizes a polling loop.
type Options struct {
	// Interval is the pause between attempts. Must be positive.
	Interval time.Duration
	// MaxAttempts bounds the loop; zero means unbounded.
	MaxAttempts int
	// Retryable decides whether an attempt error is transient. Nil
	// treats every error as transient.
	Retryable func(error) bool
}

// Until runs fn until it reports done, returns a non-retryable error,
// exhausts the attempt budget, or ctx is cancelled. The wait between
// attempts is interruptible; ctx cancellation always surfaces as ctx.Err.
func Until(ctx context.Context, opts Options, fn Func) error {
	if opts.Interval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", opts.Interval)
	}

	var lastErr error
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		done, err := fn(ctx)
		if done && err == nil {
			return nil
		}
		if err != nil {
			if opts.Retryable != nil && !opts.Retryable(err) {
				return err
			}
			lastErr = err
		}

		if opts.MaxAttempts > 0 && attempt >= opts.MaxAttempts {
			if lastErr != nil {
				return fmt.Errorf("gave up after %d attempts: %w", attempt, lastErr)
			}
			return fmt.Errorf("gave up after %d attempts", attempt)
		}

		timer := time.NewTimer(opts.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
