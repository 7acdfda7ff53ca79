package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.KarmaTTL)
	assert.Equal(t, 100000, cfg.KarmaCacheMaxEntries)
	assert.Equal(t, time.Minute, cfg.DedupSweepInterval)
	assert.Equal(t, "en", cfg.DefaultLocale)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Empty(t, cfg.RedisURL)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("KARMA_TTL", "5s")
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/rebot")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.KarmaTTL)
	assert.Equal(t, "postgres://localhost:5432/rebot", cfg.DatabaseURL)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_ZeroTTLIsAllowed(t *testing.T) {
	// TTL zero means "expire immediately", i.e. suppression disabled.
	t.Setenv("KARMA_TTL", "0s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), cfg.KarmaTTL)
}

func TestLoad_RejectsNegativeTTL(t *testing.T) {
	t.Setenv("KARMA_TTL", "-1s")

	_, err := Load()
	assert.ErrorContains(t, err, "KARMA_TTL")
}

func TestLoad_RejectsBadSweepInterval(t *testing.T) {
	t.Setenv("DEDUP_SWEEP_INTERVAL", "0s")

	_, err := Load()
	assert.ErrorContains(t, err, "DEDUP_SWEEP_INTERVAL")
}
