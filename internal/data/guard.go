package data

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// GuardConfig tunes the breaker and limiter wrapped around a bars
// provider.
type GuardConfig struct {
	Name                string
	RequestsPerSecond   float64
	Burst               int
	BreakerMaxRequests  uint32
	BreakerInterval     time.Duration
	BreakerTimeout      time.Duration
	ConsecutiveFailures uint32
}

// DefaultGuardConfig matches a polite daily-bars upstream.
func DefaultGuardConfig(name string) GuardConfig {
	return GuardConfig{
		Name:                name,
		RequestsPerSecond:   5,
		Burst:               10,
		BreakerMaxRequests:  2,
		BreakerInterval:     60 * time.Second,
		BreakerTimeout:      30 * time.Second,
		ConsecutiveFailures: 5,
	}
}

// GuardedBars decorates a BarsProvider with a token-bucket rate limit and
// a circuit breaker. When the breaker is open the provider degrades to an
// empty series, which downstream consumers already treat as missing data.
type GuardedBars struct {
	inner   BarsProvider
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

func NewGuardedBars(inner BarsProvider, cfg GuardConfig) *GuardedBars {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.BreakerMaxRequests,
		Interval:    cfg.BreakerInterval,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).
				Str("from", from.String()).Str("to", to.String()).
				Msg("bars provider breaker state change")
		},
	}
	return &GuardedBars{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// DailyBars applies the limiter, then routes through the breaker. Breaker
// rejections degrade to an empty series rather than an error so a flaky
// upstream cannot abort a basket computation.
func (g *GuardedBars) DailyBars(ctx context.Context, symbol string, start, end time.Time) ([]Bar, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	result, err := g.breaker.Execute(func() (interface{}, error) {
		return g.inner.DailyBars(ctx, symbol, start, end)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			log.Warn().Str("symbol", symbol).Msg("bars breaker open, returning empty series")
			return nil, nil
		}
		return nil, err
	}
	bars, _ := result.([]Bar)
	return bars, nil
}
