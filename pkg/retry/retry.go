package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	DefaultInitialInterval = 500 * time.Millisecond
	DefaultMaxElapsedTime  = 15 * time.Second
)

type Operation func() error

type Config struct {
	InitialInterval time.Duration
	// MaxElapsedTime bounds the whole attempt window. Zero uses DefaultMaxElapsedTime.
	MaxElapsedTime time.Duration
	OnRetry        func(error, time.Duration)
}

// Permanent wraps err so Connect stops retrying and returns it.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Connect runs fn with exponential backoff until it succeeds, ctx is done or
// the elapsed window runs out. It is meant for dialing infrastructure at
// startup.
func Connect(ctx context.Context, fn Operation, cfg Config) error {
	if cfg.InitialInterval < 0 {
		return errors.New("initial interval must be >= 0")
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = DefaultInitialInterval
	}
	if cfg.MaxElapsedTime <= 0 {
		cfg.MaxElapsedTime = DefaultMaxElapsedTime
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = cfg.InitialInterval
	bo.MaxElapsedTime = cfg.MaxElapsedTime

	return backoff.RetryNotify(backoff.Operation(fn), backoff.WithContext(bo, ctx), func(err error, next time.Duration) {
		if cfg.OnRetry != nil {
			cfg.OnRetry(err, next)
		}
	})
}
