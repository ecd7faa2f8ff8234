package kvstore

import (
	"context"
	"fmt"

	"github.com/fystack/lottery-simulator/pkg/common/config"
	"github.com/fystack/lottery-simulator/pkg/common/enum"
	"github.com/fystack/lottery-simulator/pkg/infra"
)

// NewFromConfig constructs an infra.KVStore based on kvstore configuration.
func NewFromConfig(ctx context.Context, cfg config.KVStoreConfig) (infra.KVStore, error) {
	switch cfg.Type {
	case enum.KVStoreTypeBadger:
		return NewBadgerStore(cfg.Badger.Directory, cfg.Badger.Prefix, infra.JSON)
	case enum.KVStoreTypeMemory:
		return NewMemoryStore(cfg.Badger.Prefix, infra.JSON)
	case enum.KVStoreTypeRedis:
		client, err := infra.NewRedisClient(ctx, infra.RedisOptions{
			URL:      cfg.Redis.URL,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		return NewRedisStore(client, cfg.Redis.Prefix, infra.JSON), nil
	default:
		return nil, fmt.Errorf("unsupported kvstore type: %s", cfg.Type)
	}
}
