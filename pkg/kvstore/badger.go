package kvstore

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/fystack/lottery-simulator/pkg/common/enum"
	"github.com/fystack/lottery-simulator/pkg/infra"
)

type BadgerStore struct {
	db     *badger.DB
	name   enum.KVStoreType
	prefix string
	codec  infra.Codec
}

// NewBadgerStore opens (or creates) a badger database in dir.
func NewBadgerStore(dir string, prefix string, codec infra.Codec) (*BadgerStore, error) {
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, err
	}
	return &BadgerStore{db: db, name: enum.KVStoreTypeBadger, prefix: prefix, codec: codec}, nil
}

// NewMemoryStore is a badger store that never touches disk.
func NewMemoryStore(prefix string, codec infra.Codec) (*BadgerStore, error) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		return nil, err
	}
	return &BadgerStore{db: db, name: enum.KVStoreTypeMemory, prefix: prefix, codec: codec}, nil
}

func (b *BadgerStore) fullKey(k string) ([]byte, error) {
	if k == "" {
		return nil, infra.ErrKeyEmpty
	}
	return []byte(b.prefix + k), nil
}

func (b *BadgerStore) GetName() string {
	return string(b.name)
}

func (b *BadgerStore) Get(ctx context.Context, key string) ([]byte, error) {
	k, err := b.fullKey(key)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var val []byte
	err = b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(k)
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return infra.ErrKeyNotFound
			}
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	return val, err
}

func (b *BadgerStore) Set(ctx context.Context, key string, value []byte) error {
	k, err := b.fullKey(key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(k, value)
	})
}

func (b *BadgerStore) SetAny(ctx context.Context, key string, value any) error {
	if err := infra.CheckKeyAndValue(key, value); err != nil {
		return err
	}
	data, err := b.codec.Marshal(value)
	if err != nil {
		return err
	}
	return b.Set(ctx, key, data)
}

func (b *BadgerStore) Close() error {
	return b.db.Close()
}
