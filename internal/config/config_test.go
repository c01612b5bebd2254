package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "longanicore.db", cfg.DatabasePath)
	assert.Equal(t, 100, cfg.CacheSize)
	assert.Equal(t, 20.0, cfg.BucketCapacity)
	assert.Equal(t, 0.5, cfg.RefillPerSecond)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9090")
	t.Setenv("TRANSLATION_CACHE_SIZE", "250")
	t.Setenv("RATE_BUCKET_CAPACITY", "40")
	t.Setenv("RATE_REFILL_PER_SECOND", "1.5")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, 250, cfg.CacheSize)
	assert.Equal(t, 40.0, cfg.BucketCapacity)
	assert.Equal(t, 1.5, cfg.RefillPerSecond)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"TRANSLATION_CACHE_SIZE", "zero"},
		{"TRANSLATION_CACHE_SIZE", "0"},
		{"TRANSLATION_CACHE_SIZE", "-5"},
		{"RATE_BUCKET_CAPACITY", "-1"},
		{"RATE_REFILL_PER_SECOND", "fast"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
