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

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Contains(t, cfg.GeocoderURL, "geocoding.geo.census.gov")
	assert.Equal(t, "Public_AR_Current", cfg.GeocoderBenchmark)
	assert.Equal(t, 10*time.Second, cfg.GeocoderTimeout)
	assert.Contains(t, cfg.SpatialURL, "Water_System_Boundaries")
	assert.Equal(t, 5.0, cfg.UpstreamRateLimit)
	assert.Equal(t, 5, cfg.UpstreamBurst)
	assert.Equal(t, "sqlite", cfg.StoreDriver)
	assert.Equal(t, "data/violations.db", cfg.StoreDSN)
	assert.Equal(t, 50, cfg.ViolationsPageSize)
	assert.Equal(t, CacheLRU, cfg.CacheBackend)
	assert.Equal(t, 1000, cfg.CacheSize)
	assert.Equal(t, 24*time.Hour, cfg.CacheTTL)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.False(t, cfg.PublishingEnabled())
	assert.Equal(t, "water-safety-verdicts", cfg.KafkaVerdictTopic)
	assert.False(t, cfg.TracingEnabled)
	assert.Equal(t, "stdout", cfg.TracingExporter)
	assert.Equal(t, 1.0, cfg.TracingSampleRatio)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("GEOCODER_URL", "http://census.test/geocode")
	t.Setenv("GEOCODER_TIMEOUT", "2s")
	t.Setenv("SPATIAL_URL", "http://arcgis.test/query")
	t.Setenv("UPSTREAM_RATE_LIMIT", "0")
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("STORE_DSN", "postgres://u:p@db/sdwis?sslmode=disable")
	t.Setenv("VIOLATIONS_PAGE_SIZE", "20")
	t.Setenv("CACHE_BACKEND", "layered")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092")
	t.Setenv("TRACING_ENABLED", "true")
	t.Setenv("TRACING_EXPORTER", "otlp")
	t.Setenv("TRACING_SAMPLE_RATIO", "0.25")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "http://census.test/geocode", cfg.GeocoderURL)
	assert.Equal(t, 2*time.Second, cfg.GeocoderTimeout)
	assert.Equal(t, "http://arcgis.test/query", cfg.SpatialURL)
	assert.Zero(t, cfg.UpstreamRateLimit)
	assert.Equal(t, "postgres", cfg.StoreDriver)
	assert.Equal(t, 20, cfg.ViolationsPageSize)
	assert.Equal(t, CacheLayered, cfg.CacheBackend)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.PublishingEnabled())
	assert.True(t, cfg.TracingEnabled)
	assert.Equal(t, "otlp", cfg.TracingExporter)
	assert.Equal(t, 0.25, cfg.TracingSampleRatio)
}

func TestLoad_InvalidValuesNameTheVariable(t *testing.T) {
	tests := []struct {
		env, value string
	}{
		{"SHUTDOWN_TIMEOUT", "not-a-duration"},
		{"SHUTDOWN_TIMEOUT", "-1s"},
		{"GEOCODER_TIMEOUT", "0s"},
		{"SPATIAL_TIMEOUT", "soon"},
		{"CACHE_SIZE", "0"},
		{"CACHE_TTL", "forever"},
		{"UPSTREAM_RATE_LIMIT", "-3"},
		{"UPSTREAM_BURST", "many"},
		{"VIOLATIONS_PAGE_SIZE", "-1"},
		{"REDIS_DB", "x"},
		{"TRACING_ENABLED", "maybe"},
		{"TRACING_SAMPLE_RATIO", "1.5"},
		{"LOG_FORMAT", "xml"},
		{"STORE_DRIVER", "oracle"},
		{"CACHE_BACKEND", "disk"},
		{"TRACING_EXPORTER", "zipkin"},
	}
	for _, tt := range tests {
		t.Run(tt.env+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.env, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.env)
		})
	}
}

func TestLoad_RedisBackendRequiresAddr(t *testing.T) {
	t.Setenv("CACHE_BACKEND", "redis")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REDIS_ADDR")
}

func TestLoad_EmptyStoreDSN(t *testing.T) {
	t.Setenv("STORE_DSN", "")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORE_DSN")
}

func TestParseBrokers(t *testing.T) {
	assert.Equal(t, []string{"a:1", "b:2"}, ParseBrokers(" a:1 ,,b:2,"))
	assert.Empty(t, ParseBrokers(""))
}
