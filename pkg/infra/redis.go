package infra

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/fystack/lottery-simulator/pkg/common/logger"
	"github.com/fystack/lottery-simulator/pkg/retry"
	"github.com/redis/go-redis/v9"
)

type RedisOptions struct {
	// URL is either host:port or a redis:// / rediss:// URL.
	URL      string
	Password string
	DB       int
}

// NewRedisClient dials redis and verifies connectivity before returning.
func NewRedisClient(ctx context.Context, o RedisOptions) (*redis.Client, error) {
	opts, err := redisOptions(o)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	var pong string
	err = retry.Connect(ctx, func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		pong, err = client.Ping(pingCtx).Result()
		return err
	}, retry.Config{
		OnRetry: func(err error, next time.Duration) {
			logger.Warn("Redis not ready, retrying", "addr", opts.Addr, "next", next, "error", err)
		},
	})
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	logger.Info("Connected to Redis", "addr", opts.Addr, "pong", pong)
	return client, nil
}

func redisOptions(o RedisOptions) (*redis.Options, error) {
	var opts *redis.Options
	if strings.Contains(o.URL, "://") {
		parsed, err := redis.ParseURL(o.URL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: o.URL, DB: o.DB}
	}
	if o.Password != "" {
		opts.Password = o.Password
	}

	cpus := runtime.GOMAXPROCS(0)
	opts.PoolSize = cpus * 4
	opts.MinIdleConns = 1
	opts.ConnMaxIdleTime = 5 * time.Minute
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	return opts, nil
}
