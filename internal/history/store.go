package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/fystack/lottery-simulator/internal/lottery"
	"github.com/fystack/lottery-simulator/pkg/common/constant"
	"github.com/fystack/lottery-simulator/pkg/common/enum"
	"github.com/fystack/lottery-simulator/pkg/common/logger"
	"github.com/fystack/lottery-simulator/pkg/infra"
)

// Store reads and writes the history snapshot and the age-gate flag.
type Store struct {
	kv      infra.KVStore
	catalog lottery.Catalog
}

// NewStore checks loaded entries against catalog, or the default catalog when nil.
func NewStore(kv infra.KVStore, catalog lottery.Catalog) *Store {
	if catalog == nil {
		catalog = lottery.DefaultCatalog()
	}
	return &Store{kv: kv, catalog: catalog}
}

// Load returns the persisted snapshot. A missing or unreadable snapshot
// yields an empty history and entries that fail validation are dropped;
// only store failures are returned.
func (s *Store) Load(ctx context.Context) ([]lottery.Combination, error) {
	data, err := s.kv.Get(ctx, constant.HistoryKey)
	if err != nil {
		if errors.Is(err, infra.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load history: %w", err)
	}

	var entries []lottery.Combination
	if err := json.Unmarshal(data, &entries); err != nil {
		logger.Warn("Discarding malformed history snapshot",
			"key", constant.HistoryKey,
			"bytes", len(data),
			"error", err,
		)
		return nil, nil
	}
	kept := entries[:0]
	for _, c := range entries {
		if c.Source == "" {
			c.Source = enum.SourceGenerator
		}
		p, err := s.catalog.Get(c.LotteryType)
		if err == nil {
			err = c.Validate(p)
		}
		if err != nil {
			logger.Warn("Dropping invalid history entry", "id", c.ID, "lottery", c.LotteryType, "error", err)
			continue
		}
		kept = append(kept, c)
	}
	return kept, nil
}

func (s *Store) Save(ctx context.Context, entries []lottery.Combination) error {
	if entries == nil {
		entries = []lottery.Combination{}
	}
	if err := s.kv.SetAny(ctx, constant.HistoryKey, entries); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

// AgeConfirmed reports whether the flag holds the literal "true".
func (s *Store) AgeConfirmed(ctx context.Context) (bool, error) {
	data, err := s.kv.Get(ctx, constant.AgeConfirmedKey)
	if err != nil {
		if errors.Is(err, infra.ErrKeyNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("load age flag: %w", err)
	}
	return string(data) == "true", nil
}

func (s *Store) SetAgeConfirmed(ctx context.Context, confirmed bool) error {
	if err := s.kv.Set(ctx, constant.AgeConfirmedKey, []byte(strconv.FormatBool(confirmed))); err != nil {
		return fmt.Errorf("save age flag: %w", err)
	}
	return nil
}
