package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandEnv(t *testing.T) {
	t.Setenv("TEST_DB_HOST", "db.internal")

	content := "host: ${TEST_DB_HOST}\nport: ${TEST_DB_PORT:5432}\npassword: ${TEST_DB_PASSWORD:}"
	expanded := expandEnv(content)

	assert.Equal(t, "host: db.internal\nport: 5432\npassword: ", expanded)
}

func TestExpandEnvPrefersEnvironmentOverDefault(t *testing.T) {
	t.Setenv("TEST_PORT", "9000")

	assert.Equal(t, "port: 9000", expandEnv("port: ${TEST_PORT:8100}"))
}

func writeConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.yaml", "app:\n  name: shop-copy-ai-api\n")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.False(t, cfg.App.IsProduction())
	assert.Equal(t, 8100, cfg.Server.HTTP.Port)
	assert.Equal(t, 10, cfg.Generation.DailyQuota)
	assert.Equal(t, 10, cfg.Generation.FreeCreditGrant)
	assert.Equal(t, 4, cfg.Generation.Retry.MaxAttempts)
	assert.Equal(t, "10s", cfg.Generation.Retry.BaseDelay.String())
	assert.Equal(t, 2.0, cfg.Generation.Retry.Multiplier)
	assert.Equal(t, "usd", cfg.Payments.Stripe.Currency)
}

func TestLoadMergesEnvironmentFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.yaml", "generation:\n  daily_quota: 10\n")
	writeConfig(t, dir, "config.staging.yaml", "generation:\n  daily_quota: 50\n")
	t.Setenv("APP_ENV", "staging")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.App.Env)
	assert.Equal(t, 50, cfg.Generation.DailyQuota)
}

func TestStripeKeySelection(t *testing.T) {
	s := StripeConfig{SecretKey: "sk_live", TestSecretKey: "sk_test"}

	assert.Equal(t, "sk_live", s.Key("production"))
	assert.Equal(t, "sk_test", s.Key("development"))
	assert.Equal(t, "sk_test", s.Key("staging"))
}
