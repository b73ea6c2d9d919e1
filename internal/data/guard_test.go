package data

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingBars struct {
	calls int
	fail  bool
}

func (c *countingBars) DailyBars(context.Context, string, time.Time, time.Time) ([]Bar, error) {
	c.calls++
	if c.fail {
		return nil, errors.New("upstream 500")
	}
	return []Bar{{Date: time.Now(), Close: 100}}, nil
}

// testGuardConfig disables the rate limiter as a factor and trips the
// breaker quickly.
func testGuardConfig() GuardConfig {
	cfg := DefaultGuardConfig("test-bars")
	cfg.RequestsPerSecond = 10000
	cfg.Burst = 10000
	cfg.ConsecutiveFailures = 3
	cfg.BreakerTimeout = time.Hour
	return cfg
}

func TestGuardedBars_PassThrough(t *testing.T) {
	inner := &countingBars{}
	guarded := NewGuardedBars(inner, testGuardConfig())

	bars, err := guarded.DailyBars(context.Background(), "SPY", time.Now().AddDate(0, 0, -10), time.Now())
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, 100.0, bars[0].Close)
	assert.Equal(t, 1, inner.calls)
}

func TestGuardedBars_ErrorsPropagateBeforeTrip(t *testing.T) {
	inner := &countingBars{fail: true}
	guarded := NewGuardedBars(inner, testGuardConfig())

	for i := 0; i < 3; i++ {
		_, err := guarded.DailyBars(context.Background(), "SPY", time.Time{}, time.Now())
		assert.Error(t, err, "call %d", i)
	}
	assert.Equal(t, 3, inner.calls)
}

func TestGuardedBars_OpenBreakerDegradesToEmpty(t *testing.T) {
	inner := &countingBars{fail: true}
	guarded := NewGuardedBars(inner, testGuardConfig())

	for i := 0; i < 3; i++ {
		_, _ = guarded.DailyBars(context.Background(), "SPY", time.Time{}, time.Now())
	}

	// Breaker is open now: no more calls reach the inner provider, and
	// the caller sees an empty series rather than an error.
	bars, err := guarded.DailyBars(context.Background(), "SPY", time.Time{}, time.Now())
	assert.NoError(t, err)
	assert.Empty(t, bars)
	assert.Equal(t, 3, inner.calls)
}

func TestGuardedBars_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	inner := &countingBars{}
	guarded := NewGuardedBars(inner, testGuardConfig())

	_, err := guarded.DailyBars(ctx, "SPY", time.Time{}, time.Now())
	assert.Error(t, err)
	assert.Equal(t, 0, inner.calls)
}
