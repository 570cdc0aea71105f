package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(context.Background(), DefaultConfig(), func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	cfg := Config{MaxAttempts: 5, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, Multiplier: 2}
	calls := 0
	err := Do(context.Background(), cfg, func() error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoExhaustsAttempts(t *testing.T) {
	cfg := Config{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, Multiplier: 2}
	boom := errors.New("boom")
	calls := 0
	err := Do(context.Background(), cfg, func() error {
		calls++
		return boom
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.True(t, errors.Is(err, boom))
}

func TestDoNonRetryableStopsImmediately(t *testing.T) {
	cfg := Config{MaxAttempts: 5, InitialDelay: time.Millisecond}
	calls := 0
	err := Do(context.Background(), cfg, func() error {
		calls++
		return NonRetryable(errors.New("bad input"))
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.True(t, IsNonRetryable(err))
}

func TestDoRespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := Config{MaxAttempts: 10, InitialDelay: time.Millisecond}
	err := Do(ctx, cfg, func() error { return errors.New("keep trying") })
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestDelayGrowsAndCaps(t *testing.T) {
	cfg := Config{InitialDelay: time.Millisecond, MaxDelay: 8 * time.Millisecond, Multiplier: 2}

	assert.Equal(t, time.Millisecond, cfg.Delay(0))
	assert.Equal(t, 2*time.Millisecond, cfg.Delay(1))
	assert.Equal(t, 4*time.Millisecond, cfg.Delay(2))
	assert.Equal(t, 8*time.Millisecond, cfg.Delay(3))
	// Capped at the ceiling.
	assert.Equal(t, 8*time.Millisecond, cfg.Delay(10))
}

func TestDelayJitterStaysBounded(t *testing.T) {
	cfg := Idle()
	for attempt := 0; attempt < 12; attempt++ {
		d := cfg.Delay(attempt)
		assert.Greater(t, d, time.Duration(0))
		assert.LessOrEqual(t, d, cfg.MaxDelay)
	}
}
