package kvstore

import (
	"context"
	"errors"

	"github.com/fystack/lottery-simulator/pkg/common/enum"
	"github.com/fystack/lottery-simulator/pkg/infra"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps snapshots as plain string values without expiry.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	codec  infra.Codec
}

func NewRedisStore(client redis.UniversalClient, prefix string, codec infra.Codec) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, codec: codec}
}

func (r *RedisStore) fullKey(k string) (string, error) {
	if k == "" {
		return "", infra.ErrKeyEmpty
	}
	return r.prefix + k, nil
}

func (r *RedisStore) GetName() string {
	return string(enum.KVStoreTypeRedis)
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	k, err := r.fullKey(key)
	if err != nil {
		return nil, err
	}
	val, err := r.client.Get(ctx, k).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, infra.ErrKeyNotFound
	}
	return val, err
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	k, err := r.fullKey(key)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, k, value, 0).Err()
}

func (r *RedisStore) SetAny(ctx context.Context, key string, value any) error {
	if err := infra.CheckKeyAndValue(key, value); err != nil {
		return err
	}
	data, err := r.codec.Marshal(value)
	if err != nil {
		return err
	}
	return r.Set(ctx, key, data)
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
