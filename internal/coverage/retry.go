// SPDX-License-Identifier: MPL-2.0

package coverage

import (
	"context"
	"fmt"
	"time"
)

// retryWithBackoff runs op up to maxAttempts times, doubling the wait after
// each failure. Cancellation is checked between attempts. On exhaustion the
// last error is returned.
func retryWithBackoff(
	ctx context.Context,
	maxAttempts int,
	baseBackoff time.Duration,
	op func(attempt int) error,
) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	var lastErr error
	for attempt := range maxAttempts {
		if attempt > 0 {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("retry aborted: %w", err)
			}
			timer := time.NewTimer(baseBackoff * time.Duration(1<<(attempt-1)))
			select {
			case <-ctx.Done():
				timer.Stop()
				return fmt.Errorf("retry aborted: %w", ctx.Err())
			case <-timer.C:
			}
		}

		err := op(attempt)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return lastErr
}
