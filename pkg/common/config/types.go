package config

import (
	"time"

	"github.com/fystack/lottery-simulator/pkg/common/enum"
	"github.com/shopspring/decimal"
)

type Config struct {
	Environment string                             `yaml:"env"       validate:"required,oneof=production development"`
	Log         LogConfig                          `yaml:"log"`
	Server      ServerConfig                       `yaml:"server"`
	KVStore     KVStoreConfig                      `yaml:"kvstore"`
	History     HistoryConfig                      `yaml:"history"`
	Dream       DreamConfig                        `yaml:"dream"`
	Nats        NatsConfig                         `yaml:"nats"`
	Lotteries   map[enum.LotteryType]LotteryConfig `yaml:"lotteries" validate:"dive,keys,oneof=MEGA_SENA LOTOFACIL QUINA TIMEMANIA,endkeys"`
}

type LogConfig struct {
	Level   string `yaml:"level"    validate:"omitempty,oneof=debug info warn warning error"`
	NoColor bool   `yaml:"no_color"`
}

type ServerConfig struct {
	Port           int      `yaml:"port"            validate:"required,min=1,max=65535"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type KVStoreConfig struct {
	Type   enum.KVStoreType `yaml:"type"   validate:"required,oneof=badger memory redis"`
	Badger BadgerConfig     `yaml:"badger"`
	Redis  RedisConfig      `yaml:"redis"`
}

type BadgerConfig struct {
	Directory string `yaml:"directory"`
	Prefix    string `yaml:"prefix"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"     validate:"min=0"`
	Prefix   string `yaml:"prefix"`
}

type HistoryConfig struct {
	Capacity int `yaml:"capacity" validate:"min=1"`
}

type DreamVariant string

const (
	// DreamVariantRelay asks for free-form JSON and extracts it from the model text.
	DreamVariantRelay DreamVariant = "relay"
	// DreamVariantStructured constrains the model with a response schema.
	DreamVariantStructured DreamVariant = "structured"
)

type DreamConfig struct {
	Variant         DreamVariant    `yaml:"variant"           validate:"required,oneof=relay structured"`
	Endpoints       []string        `yaml:"endpoints"         validate:"required,min=1,dive,url"`
	APIKey          string          `yaml:"api_key"`
	Temperature     float64         `yaml:"temperature"       validate:"min=0,max=2"`
	MaxOutputTokens int             `yaml:"max_output_tokens" validate:"min=1"`
	Timeout         time.Duration   `yaml:"timeout"` // zero leaves the transport default in place
	RateLimit       RateLimitConfig `yaml:"rate_limit"`
}

type RateLimitConfig struct {
	RPS   int `yaml:"rps"   validate:"min=1"`
	Burst int `yaml:"burst" validate:"min=1"`
}

type NatsConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	SubjectPrefix string `yaml:"subject_prefix"`
	Username      string `yaml:"username"`
	Password      string `yaml:"password"`
}

// LotteryConfig overrides fields of a built-in lottery profile. Zero fields keep the built-in value.
type LotteryConfig struct {
	Name       string        `yaml:"name"`
	MinNumbers int           `yaml:"min_numbers" validate:"min=0"`
	MaxNumbers int           `yaml:"max_numbers" validate:"min=0"`
	RangeMax   int           `yaml:"range_max"   validate:"min=0"`
	Color      string        `yaml:"color"`
	Prices     []PriceConfig `yaml:"prices"      validate:"dive"`
}

type PriceConfig struct {
	Numbers int             `yaml:"numbers" validate:"min=1"`
	Price   decimal.Decimal `yaml:"price"`
}
