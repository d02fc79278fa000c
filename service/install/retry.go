package install

import (
	"context"
	"fmt"
	"time"

	"github.com/modsmith/launcher/internal/clock"
	"github.com/modsmith/launcher/internal/ctxlog"
)

// withRetry runs op up to attempts times with a fixed delay between
// attempts. When every attempt failed, the optional verify hook gets a last
// chance to accept the outcome anyway - the engine and fabric stages use it
// to detect a version that is present on disk despite a reported failure.
// A pending context cancellation is observed between attempts and never
// starts another one.
func withRetry(ctx context.Context, attempts int, delay time.Duration, op func(attempt int) error, verify func(ctx context.Context) bool) error {
	logger := ctxlog.FromContext(ctx)
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("cancelled before attempt %d: %w", attempt, err)
		}
		if attempt > 1 {
			clock.Sleep(delay)
		}
		if lastErr = op(attempt); lastErr == nil {
			return nil
		}
		logger.Warn("attempt failed", "attempt", attempt, "attempts", attempts, "error", lastErr)
	}
	if verify != nil && verify(ctx) {
		return nil
	}
	return lastErr
}
