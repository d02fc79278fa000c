package install

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/modsmith/launcher/internal/clock"
)

func stubSleep(t *testing.T) *[]time.Duration {
	t.Helper()
	var slept []time.Duration
	restore := clock.SleepFunc
	clock.SleepFunc = func(d time.Duration) { slept = append(slept, d) }
	t.Cleanup(func() { clock.SleepFunc = restore })
	return &slept
}

func TestWithRetry_SucceedsFirstAttempt(t *testing.T) {
	slept := stubSleep(t)
	calls := 0
	err := withRetry(context.Background(), 3, time.Second, func(attempt int) error {
		calls++
		return nil
	}, nil)
	assert.Nil(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, *slept)
}

func TestWithRetry_BoundedAttemptsWithDelay(t *testing.T) {
	slept := stubSleep(t)
	calls := 0
	err := withRetry(context.Background(), 3, 5*time.Second, func(attempt int) error {
		calls++
		assert.Equal(t, calls, attempt)
		return fmt.Errorf("attempt %d failed", attempt)
	}, nil)
	if assert.NotNil(t, err) {
		assert.Contains(t, err.Error(), "attempt 3 failed")
	}
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{5 * time.Second, 5 * time.Second}, *slept)
}

func TestWithRetry_RecoversOnLaterAttempt(t *testing.T) {
	stubSleep(t)
	calls := 0
	err := withRetry(context.Background(), 3, time.Second, func(attempt int) error {
		calls++
		if attempt < 2 {
			return fmt.Errorf("transient")
		}
		return nil
	}, nil)
	assert.Nil(t, err)
	assert.Equal(t, 2, calls)
}

func TestWithRetry_VerifyRescuesFailure(t *testing.T) {
	stubSleep(t)
	err := withRetry(context.Background(), 2, time.Second, func(attempt int) error {
		return fmt.Errorf("always fails")
	}, func(ctx context.Context) bool {
		return true
	})
	assert.Nil(t, err)
}

func TestWithRetry_CancelledContextStopsAttempts(t *testing.T) {
	stubSleep(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	err := withRetry(ctx, 3, time.Second, func(attempt int) error {
		calls++
		return fmt.Errorf("should not run")
	}, nil)
	assert.NotNil(t, err)
	assert.Equal(t, 0, calls)
}
