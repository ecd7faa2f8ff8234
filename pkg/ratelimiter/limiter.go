package ratelimiter

import (
	"context"
	"time"

	"github.com/fystack/lottery-simulator/pkg/common/config"
	"golang.org/x/time/rate"
)

// Limiter is a token bucket shared by every outbound dream call.
type Limiter struct {
	bucket *rate.Limiter
	cfg    config.RateLimitConfig
}

type Stats struct {
	Available int `json:"available"`
	RPS       int `json:"rps"`
	Burst     int `json:"burst"`
}

// New builds a limiter from config. Non-positive values are raised to 1.
func New(cfg config.RateLimitConfig) *Limiter {
	cfg.RPS = max(cfg.RPS, 1)
	cfg.Burst = max(cfg.Burst, 1)
	return &Limiter{
		bucket: rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst),
		cfg:    cfg,
	}
}

// Wait blocks until a token is free and reports how long it was held back.
func (l *Limiter) Wait(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := l.bucket.Wait(ctx); err != nil {
		return time.Since(start), err
	}
	return time.Since(start), nil
}

// Stats is approximate: the bucket refills between reads.
func (l *Limiter) Stats() Stats {
	return Stats{
		Available: max(int(l.bucket.Tokens()), 0),
		RPS:       l.cfg.RPS,
		Burst:     l.cfg.Burst,
	}
}
