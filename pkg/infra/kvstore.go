package infra

import (
	"context"
	"encoding/json"
	"errors"
)

var (
	ErrKeyNotFound = errors.New("key not found")
	ErrKeyEmpty    = errors.New("key is empty")
	ErrNilValue    = errors.New("value is nil")
)

// KVStore persists small snapshots under flat string keys.
// Implementations: badger (disk or in-memory) and redis.
type KVStore interface {
	GetName() string
	// Get returns ErrKeyNotFound when k is absent.
	Get(ctx context.Context, k string) ([]byte, error)
	Set(ctx context.Context, k string, v []byte) error
	// SetAny encodes v with the store codec.
	SetAny(ctx context.Context, k string, v any) error
	Close() error
}

// CheckKeyAndValue guards SetAny in every store.
func CheckKeyAndValue(k string, v any) error {
	if k == "" {
		return ErrKeyEmpty
	}
	if v == nil {
		return ErrNilValue
	}
	return nil
}

// Codec encodes/decodes Go values to/from slices of bytes.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// JSON is the codec used for persisted snapshots.
var JSON = JSONcodec{}

type JSONcodec struct{}

func (JSONcodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONcodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
