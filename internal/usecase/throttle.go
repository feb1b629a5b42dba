package usecase

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Throttle is called before every exchange request. It is the only place the
// bot waits to stay under the exchange rate limit.
type Throttle interface {
	Wait(ctx context.Context) error
}

// RateThrottle spaces requests evenly over a minute.
type RateThrottle struct {
	limiter *rate.Limiter
}

func NewRateThrottle(requestsPerMinute int) *RateThrottle {
	if requestsPerMinute <= 0 {
		return &RateThrottle{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	interval := time.Minute / time.Duration(requestsPerMinute)
	return &RateThrottle{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

func (t *RateThrottle) Wait(ctx context.Context) error {
	return t.limiter.Wait(ctx)
}

// NoThrottle never waits.
type NoThrottle struct{}

func (NoThrottle) Wait(ctx context.Context) error {
	return ctx.Err()
}
