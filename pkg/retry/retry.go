package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
)

const defaultDelay = 10 * time.Millisecond

// Do runs op up to maxAttempts times, retrying only errors that isRetryable
// accepts. Non-retryable errors abort immediately; exhausting the bound
// returns the last error wrapped with the attempt count.
func Do(ctx context.Context, maxAttempts int, isRetryable func(error) bool, op func(ctx context.Context) error) error {
	if maxAttempts < 1 {
		return fmt.Errorf("maxAttempts must be positive, got %d", maxAttempts)
	}
	if isRetryable == nil {
		isRetryable = func(error) bool { return false }
	}

	backoff := retry.WithMaxRetries(uint64(maxAttempts-1), retry.NewConstant(defaultDelay))

	var attempts int
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempts++
		if err := op(ctx); err != nil {
			if isRetryable(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		return nil
	})
	if err != nil && attempts >= maxAttempts {
		return fmt.Errorf("retry exhausted after %d attempts: %w", attempts, err)
	}
	return err
}
