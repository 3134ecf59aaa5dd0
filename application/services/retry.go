package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Shogun05/VoiceFrame/application/ports/outbound"
	"github.com/Shogun05/VoiceFrame/domain"
)

type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration
	Timeout  time.Duration
}

// withRetry calls fn up to policy.Attempts times, each attempt bounded by policy.Timeout,
// doubling the wait between attempts. It gives up early when ctx itself is done or the
// error is permanent.
func withRetry[T any](ctx context.Context, policy RetryPolicy, logger outbound.LoggerPort, operation string,
	fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error
	attempts := max(policy.Attempts, 1)

	for attempt := 1; attempt <= attempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, policy.Timeout)
		value, err := fn(attemptCtx)
		cancel()
		if err == nil {
			return value, nil
		}
		if isPermanent(err) {
			return zero, err
		}
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			err = fmt.Errorf("%s timed out after %s: %w", operation, policy.Timeout, err)
		}
		lastErr = err

		if ctx.Err() != nil || attempt == attempts {
			break
		}

		wait := policy.Backoff << (attempt - 1)
		logger.WarnWithFields("retrying after failure", map[string]interface{}{
			"operation": operation,
			"attempt":   attempt,
			"wait":      wait.String(),
			"error":     err.Error(),
		})

		select {
		case <-ctx.Done():
			return zero, fmt.Errorf("%s: %w", operation, ctx.Err())
		case <-time.After(wait):
		}
	}

	return zero, fmt.Errorf("%s failed after %d attempts: %w", operation, attempts, lastErr)
}

// isPermanent reports errors that another attempt cannot fix.
func isPermanent(err error) bool {
	return errors.Is(err, domain.ErrInvalidScene)
}
