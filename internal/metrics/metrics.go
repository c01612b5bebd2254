// Package metrics defines the Prometheus metrics exposed by the
// gateway and the HTTP middleware that records them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP server metrics (recorded by the gin middleware).
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "longani_http_requests_total",
		Help: "HTTP requests by method, route, and status code",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "longani_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	// Gateway pipeline metrics.
	GatewayMessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "longani_gateway_messages_total",
		Help: "Inbound gateway messages by operation type and outcome",
	}, []string{"type", "outcome"})

	AuthAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "longani_auth_attempts_total",
		Help: "Authentication attempts by result (global_key, origin_key, denied, error)",
	}, []string{"result"})

	RateLimitDeniedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "longani_rate_limit_denied_total",
		Help: "Requests denied by the per-origin token bucket",
	})

	ConnectionAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "longani_connection_attempts_total",
		Help: "Audited connection attempts by status",
	}, []string{"status"})

	// Translation metrics.
	TranslationCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "longani_translation_cache_hits_total",
		Help: "Translation cache hits",
	})

	TranslationCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "longani_translation_cache_misses_total",
		Help: "Translation cache misses",
	})

	GeminiAPILatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "longani_gemini_api_latency_seconds",
		Help:    "Latency of Gemini generateContent calls",
		Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 15},
	})

	GeminiErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "longani_gemini_errors_total",
		Help: "Gemini API failures by kind (network, read, api, parse)",
	}, []string{"kind"})

	// Voice session metrics.
	ActiveVoiceSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "longani_active_voice_sessions",
		Help: "Number of active voice sessions (0 or 1)",
	})

	VoiceSessionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "longani_voice_sessions_total",
		Help: "Voice session lifecycle events by result (started, conflict, error, stopped)",
	}, []string{"result"})
)
