package kvstore

import (
	"context"
	"os"
	"testing"

	"github.com/fystack/lottery-simulator/pkg/common/config"
	"github.com/fystack/lottery-simulator/pkg/common/enum"
	"github.com/fystack/lottery-simulator/pkg/infra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type snapshot struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// exerciseStore runs the shared contract against any backend.
func exerciseStore(t *testing.T, store infra.KVStore) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, infra.ErrKeyNotFound)

	require.NoError(t, store.Set(ctx, "flag", []byte("true")))
	got, err := store.Get(ctx, "flag")
	require.NoError(t, err)
	assert.Equal(t, "true", string(got))

	require.NoError(t, store.SetAny(ctx, "snap", snapshot{Name: "a", Count: 3}))
	raw, err := store.Get(ctx, "snap")
	require.NoError(t, err)
	var out snapshot
	require.NoError(t, infra.JSON.Unmarshal(raw, &out))
	assert.Equal(t, snapshot{Name: "a", Count: 3}, out)

	require.NoError(t, store.Set(ctx, "flag", []byte("false")))
	got, err = store.Get(ctx, "flag")
	require.NoError(t, err)
	assert.Equal(t, "false", string(got))

	assert.ErrorIs(t, store.Set(ctx, "", []byte("x")), infra.ErrKeyEmpty)
	assert.ErrorIs(t, store.SetAny(ctx, "snap", nil), infra.ErrNilValue)
}

func TestMemoryStore(t *testing.T) {
	store, err := NewMemoryStore("test/", infra.JSON)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, "memory", store.GetName())
	exerciseStore(t, store)
}

func TestBadgerStorePersists(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewBadgerStore(dir, "lottery/", infra.JSON)
	require.NoError(t, err)
	assert.Equal(t, "badger", store.GetName())
	exerciseStore(t, store)
	require.NoError(t, store.Set(ctx, "kept", []byte("1")))
	require.NoError(t, store.Close())

	reopened, err := NewBadgerStore(dir, "lottery/", infra.JSON)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, "kept")
	require.NoError(t, err)
	assert.Equal(t, "1", string(got))

	// a different prefix does not see the key
	other, err := reopened.Get(ctx, "lottery/kept")
	assert.ErrorIs(t, err, infra.ErrKeyNotFound)
	assert.Nil(t, other)
}

func TestBadgerStoreCanceledContext(t *testing.T) {
	store, err := NewMemoryStore("", infra.JSON)
	require.NoError(t, err)
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, store.Set(ctx, "k", []byte("v")), context.Canceled)
}

func TestNewFromConfig(t *testing.T) {
	store, err := NewFromConfig(context.Background(), config.KVStoreConfig{Type: enum.KVStoreTypeMemory})
	require.NoError(t, err)
	defer store.Close()
	assert.Equal(t, "memory", store.GetName())

	store2, err := NewFromConfig(context.Background(), config.KVStoreConfig{
		Type:   enum.KVStoreTypeBadger,
		Badger: config.BadgerConfig{Directory: t.TempDir()},
	})
	require.NoError(t, err)
	defer store2.Close()
	assert.Equal(t, "badger", store2.GetName())

	_, err = NewFromConfig(context.Background(), config.KVStoreConfig{Type: "etcd"})
	assert.Error(t, err)
}

// Requires a reachable server, e.g. REDIS_ADDR=localhost:6379.
func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	store, err := NewFromConfig(context.Background(), config.KVStoreConfig{
		Type:  enum.KVStoreTypeRedis,
		Redis: config.RedisConfig{URL: addr, Prefix: "lottery-test/"},
	})
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, "redis", store.GetName())
	exerciseStore(t, store)
}
