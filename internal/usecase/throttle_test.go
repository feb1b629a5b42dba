package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitos/crypto_trade_ema/internal/usecase"
)

func TestRateThrottle_SpacesRequests(t *testing.T) {
	// 1200 per minute is one every 50ms.
	throttle := usecase.NewRateThrottle(1200)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, throttle.Wait(ctx))
	}
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestRateThrottle_Unlimited(t *testing.T) {
	throttle := usecase.NewRateThrottle(0)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 100; i++ {
		require.NoError(t, throttle.Wait(ctx))
	}
	assert.Less(t, time.Since(start), time.Second)
}

func TestRateThrottle_Cancelled(t *testing.T) {
	throttle := usecase.NewRateThrottle(1)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, throttle.Wait(ctx))
	cancel()
	assert.Error(t, throttle.Wait(ctx))
}

func TestNoThrottle(t *testing.T) {
	assert.NoError(t, usecase.NoThrottle{}.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, usecase.NoThrottle{}.Wait(ctx), context.Canceled)
}
