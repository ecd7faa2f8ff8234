package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fystack/lottery-simulator/pkg/common/constant"
	"github.com/fystack/lottery-simulator/pkg/common/enum"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

const (
	DefaultPort            = 8080
	DefaultDreamEndpoint   = "https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-flash:generateContent"
	DefaultTemperature     = 0.7
	DefaultMaxOutputTokens = 1024
	DefaultBadgerDir       = "data/badger"
	DefaultKeyPrefix       = "lottery/"
)

// Env vars checked for the Gemini credential, in priority order.
var apiKeyEnvVars = []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"}

// Default returns a configuration that runs locally with an on-disk badger store.
func Default() *Config {
	return &Config{
		Environment: constant.EnvDevelopment,
		Log:         LogConfig{Level: "info"},
		Server: ServerConfig{
			Port:           DefaultPort,
			AllowedOrigins: []string{"*"},
		},
		KVStore: KVStoreConfig{
			Type:   enum.KVStoreTypeBadger,
			Badger: BadgerConfig{Directory: DefaultBadgerDir, Prefix: DefaultKeyPrefix},
			Redis:  RedisConfig{URL: "localhost:6379", Prefix: DefaultKeyPrefix},
		},
		History: HistoryConfig{Capacity: constant.DefaultHistoryCapacity},
		Dream: DreamConfig{
			Variant:         DreamVariantRelay,
			Endpoints:       []string{DefaultDreamEndpoint},
			Temperature:     DefaultTemperature,
			MaxOutputTokens: DefaultMaxOutputTokens,
			RateLimit:       RateLimitConfig{RPS: 2, Burst: 2},
		},
		Nats: NatsConfig{
			URL:           "nats://localhost:4222",
			SubjectPrefix: "lottery",
		},
	}
}

// Load reads the YAML file at path on top of Default. An empty path skips the
// file and only applies env overrides.
func Load(path string) (*Config, error) {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	cfg.applyDefaults()
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("struct validation failed: %w", err)
	}
	switch c.KVStore.Type {
	case enum.KVStoreTypeBadger:
		if c.KVStore.Badger.Directory == "" {
			return errors.New("kvstore.badger.directory is required")
		}
	case enum.KVStoreTypeRedis:
		if c.KVStore.Redis.URL == "" {
			return errors.New("kvstore.redis.url is required")
		}
	}
	if c.Nats.Enabled && c.Nats.URL == "" {
		return errors.New("nats.url is required when nats is enabled")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == constant.EnvProduction
}

// applyDefaults fills fields an explicit YAML file may have zeroed.
func (c *Config) applyDefaults() {
	c.Environment = strings.ToLower(strings.TrimSpace(c.Environment))
	if c.Environment == "" {
		c.Environment = constant.EnvDevelopment
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.History.Capacity <= 0 {
		c.History.Capacity = constant.DefaultHistoryCapacity
	}
	if c.Dream.Variant == "" {
		c.Dream.Variant = DreamVariantRelay
	}
	if len(c.Dream.Endpoints) == 0 {
		c.Dream.Endpoints = []string{DefaultDreamEndpoint}
	}
	if c.Dream.MaxOutputTokens == 0 {
		c.Dream.MaxOutputTokens = DefaultMaxOutputTokens
	}
	if c.Dream.RateLimit.RPS == 0 {
		c.Dream.RateLimit.RPS = 2
	}
	if c.Dream.RateLimit.Burst == 0 {
		c.Dream.RateLimit.Burst = c.Dream.RateLimit.RPS
	}
	if c.Dream.Timeout < 0 {
		c.Dream.Timeout = 0
	}
}

func (c *Config) applyEnv() {
	for _, name := range apiKeyEnvVars {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			c.Dream.APIKey = v
			break
		}
	}
	if v := os.Getenv("APP_ENV"); v != "" {
		c.Environment = strings.ToLower(v)
	}
	if v := os.Getenv("DREAM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			c.Dream.Timeout = d
		}
	}
}
