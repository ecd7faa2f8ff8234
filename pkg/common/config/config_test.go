package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fystack/lottery-simulator/pkg/common/enum"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func clearCredentialEnv(t *testing.T) {
	t.Helper()
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("DREAM_TIMEOUT", "")
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	clearCredentialEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, enum.KVStoreTypeBadger, cfg.KVStore.Type)
	assert.Equal(t, 100, cfg.History.Capacity)
	assert.Equal(t, DreamVariantRelay, cfg.Dream.Variant)
	assert.Equal(t, []string{DefaultDreamEndpoint}, cfg.Dream.Endpoints)
	assert.InDelta(t, 0.7, cfg.Dream.Temperature, 1e-9)
	assert.Equal(t, 1024, cfg.Dream.MaxOutputTokens)
	assert.Zero(t, cfg.Dream.Timeout)
	assert.False(t, cfg.Nats.Enabled)
}

func TestLoadFile(t *testing.T) {
	clearCredentialEnv(t)

	path := writeConfig(t, `
env: production
server:
  port: 9090
kvstore:
  type: memory
history:
  capacity: 10
dream:
  variant: structured
  timeout: 15s
  rate_limit:
    rps: 5
lotteries:
  QUINA:
    max_numbers: 12
    prices:
      - numbers: 5
        price: "3.00"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, enum.KVStoreTypeMemory, cfg.KVStore.Type)
	assert.Equal(t, 10, cfg.History.Capacity)
	assert.Equal(t, DreamVariantStructured, cfg.Dream.Variant)
	assert.Equal(t, 15*time.Second, cfg.Dream.Timeout)
	assert.Equal(t, 5, cfg.Dream.RateLimit.RPS)

	quina, ok := cfg.Lotteries[enum.LotteryQuina]
	require.True(t, ok)
	assert.Equal(t, 12, quina.MaxNumbers)
	require.Len(t, quina.Prices, 1)
	assert.True(t, quina.Prices[0].Price.Equal(decimal.RequireFromString("3")))
}

func TestLoadCredentialFromEnv(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv("GOOGLE_API_KEY", "google-key")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "google-key", cfg.Dream.APIKey)

	t.Setenv("GEMINI_API_KEY", "gemini-key")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "gemini-key", cfg.Dream.APIKey)
}

func TestLoadRejectsInvalid(t *testing.T) {
	clearCredentialEnv(t)

	tests := []struct {
		name    string
		content string
	}{
		{"bad env", "env: staging\n"},
		{"bad kvstore", "kvstore:\n  type: etcd\n"},
		{"bad variant", "dream:\n  variant: poetic\n"},
		{"bad endpoint", "dream:\n  endpoints: [\"not a url\"]\n"},
		{"unknown lottery", "lotteries:\n  POWERBALL:\n    max_numbers: 5\n"},
		{"nats without url", "nats:\n  enabled: true\n  url: \"\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
