// Package config loads gateway configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

// Config holds all runtime configuration for the gateway process.
type Config struct {
	// ListenAddr is the host:port the HTTP server binds to.
	ListenAddr string

	// DatabasePath is the sqlite file backing the credential store.
	DatabasePath string

	// AdminKey guards the owner/admin API. Empty disables admin auth
	// (local development only).
	AdminKey string

	// GeminiAPIKey enables the translation and voice collaborators.
	GeminiAPIKey string

	// GeminiModel is the generateContent model used for text translation.
	GeminiModel string

	// GeminiLiveModel is the bidirectional model used for voice sessions.
	GeminiLiveModel string

	// CacheSize bounds the in-memory translation cache.
	CacheSize int

	// BucketCapacity and RefillPerSecond define the per-origin token bucket.
	BucketCapacity  float64
	RefillPerSecond float64

	// ConnPerSecond and ConnBurst throttle websocket connection attempts per IP.
	ConnPerSecond float64
	ConnBurst     int

	// LogLevel is a logrus level name (debug, info, warn, error).
	LogLevel string

	// ShutdownTimeout bounds graceful HTTP server shutdown.
	ShutdownTimeout time.Duration
}

// Load reads configuration from the environment, applying defaults for
// anything unset. It never fails on missing optional values; the Gemini
// key being absent simply disables the upstream collaborators.
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:      envOr("LISTEN_ADDR", ":8080"),
		DatabasePath:    envOr("DATABASE_PATH", "longanicore.db"),
		AdminKey:        os.Getenv("ADMIN_KEY"),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		GeminiModel:     envOr("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiLiveModel: envOr("GEMINI_LIVE_MODEL", "gemini-2.5-flash-native-audio-preview-09-2025"),
		CacheSize:       100,
		BucketCapacity:  20,
		RefillPerSecond: 0.5,
		ConnPerSecond:   5,
		ConnBurst:       10,
		LogLevel:        envOr("LOG_LEVEL", "info"),
		ShutdownTimeout: 10 * time.Second,
	}

	if v := os.Getenv("TRANSLATION_CACHE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid TRANSLATION_CACHE_SIZE %q", v)
		}
		cfg.CacheSize = n
	}
	if v := os.Getenv("RATE_BUCKET_CAPACITY"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			return nil, fmt.Errorf("invalid RATE_BUCKET_CAPACITY %q", v)
		}
		cfg.BucketCapacity = f
	}
	if v := os.Getenv("RATE_REFILL_PER_SECOND"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			return nil, fmt.Errorf("invalid RATE_REFILL_PER_SECOND %q", v)
		}
		cfg.RefillPerSecond = f
	}

	if cfg.AdminKey == "" {
		logrus.Warn("ADMIN_KEY not set; admin API is unauthenticated")
	}
	if cfg.GeminiAPIKey == "" {
		logrus.Warn("GEMINI_API_KEY not set; translation and voice collaborators disabled")
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
