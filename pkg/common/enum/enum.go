package enum

import (
	"fmt"
	"strings"
)

type LotteryType string
type Source string
type KVStoreType string

const (
	LotteryMegaSena  LotteryType = "MEGA_SENA"
	LotteryLotofacil LotteryType = "LOTOFACIL"
	LotteryQuina     LotteryType = "QUINA"
	LotteryTimemania LotteryType = "TIMEMANIA"
)

// LotteryTypes lists every supported game in display order.
var LotteryTypes = []LotteryType{
	LotteryMegaSena,
	LotteryLotofacil,
	LotteryQuina,
	LotteryTimemania,
}

func (t LotteryType) IsValid() bool {
	switch t {
	case LotteryMegaSena, LotteryLotofacil, LotteryQuina, LotteryTimemania:
		return true
	}
	return false
}

// ParseLotteryType accepts the canonical name in any case, with '-' or '_'.
func ParseLotteryType(s string) (LotteryType, error) {
	t := LotteryType(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_")))
	if !t.IsValid() {
		return "", fmt.Errorf("unknown lottery type %q", s)
	}
	return t, nil
}

const (
	SourceGenerator Source = "generator"
	SourceBudget    Source = "budget"
	SourceDream     Source = "dream"
)

func (s Source) IsValid() bool {
	switch s {
	case SourceGenerator, SourceBudget, SourceDream:
		return true
	}
	return false
}

// Label is the display name of the feature that produced a combination.
func (s Source) Label() string {
	switch s {
	case SourceGenerator:
		return "Gerador"
	case SourceBudget:
		return "Orçamento"
	case SourceDream:
		return "Sonho"
	}
	return string(s)
}

func (s Source) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("invalid source %q", string(s))
	}
	return []byte(s), nil
}

// UnmarshalText also accepts the labels written by older snapshots.
// An empty tag decodes to SourceGenerator.
func (s *Source) UnmarshalText(text []byte) error {
	switch v := strings.TrimSpace(string(text)); v {
	case "", string(SourceGenerator), "Gerador":
		*s = SourceGenerator
	case string(SourceBudget), "Orçamento", "Orcamento":
		*s = SourceBudget
	case string(SourceDream), "Sonho":
		*s = SourceDream
	default:
		return fmt.Errorf("unknown source %q", v)
	}
	return nil
}

const (
	KVStoreTypeBadger KVStoreType = "badger"
	KVStoreTypeMemory KVStoreType = "memory"
	KVStoreTypeRedis  KVStoreType = "redis"
)
