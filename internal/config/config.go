package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Census geocoder.
	GeocoderURL       string
	GeocoderBenchmark string
	GeocoderTimeout   time.Duration

	// ArcGIS service area layer.
	SpatialURL     string
	SpatialTimeout time.Duration

	// Outbound token bucket shared by each external client. Zero disables it.
	UpstreamRateLimit float64
	UpstreamBurst     int

	StoreDriver        string
	StoreDSN           string
	ViolationsPageSize int

	CacheBackend string
	CacheSize    int
	CacheTTL     time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Verdict publishing is disabled when no brokers are configured.
	KafkaBrokers      []string
	KafkaVerdictTopic string

	TracingEnabled     bool
	TracingExporter    string
	TracingEndpoint    string
	TracingSampleRatio float64
}

// Cache backends.
const (
	CacheNone    = "none"
	CacheLRU     = "lru"
	CacheMemory  = "memory"
	CacheRedis   = "redis"
	CacheLayered = "layered"
)

var defaults = map[string]any{
	"http_addr":        ":8080",
	"log_level":        "info",
	"log_format":       "json",
	"shutdown_timeout": "10s",

	"geocoder_url":       "https://geocoding.geo.census.gov/geocoder/locations/onelineaddress",
	"geocoder_benchmark": "Public_AR_Current",
	"geocoder_timeout":   "10s",

	"spatial_url":     "https://services.arcgis.com/cJ9YHowT8TU7DUyn/arcgis/rest/services/Water_System_Boundaries/FeatureServer/0/query",
	"spatial_timeout": "10s",

	"upstream_rate_limit": "5",
	"upstream_burst":      "5",

	"store_driver":         "sqlite",
	"store_dsn":            "data/violations.db",
	"violations_page_size": "50",

	"cache_backend": CacheLRU,
	"cache_size":    "1000",
	"cache_ttl":     "24h",

	"redis_addr":     "",
	"redis_password": "",
	"redis_db":       "0",

	"kafka_brokers":       "",
	"kafka_verdict_topic": "water-safety-verdicts",

	"tracing_enabled":      "false",
	"tracing_exporter":     "stdout",
	"tracing_endpoint":     "",
	"tracing_sample_ratio": "1.0",
}

// Load reads configuration from environment variables, applying defaults
// where unset. A .env file in the working directory is loaded first if
// present; variables already in the environment take precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()

	p := parser{v: v}
	cfg := &Config{
		HTTPAddr:        v.GetString("http_addr"),
		LogLevel:        strings.ToLower(v.GetString("log_level")),
		LogFormat:       strings.ToLower(v.GetString("log_format")),
		ShutdownTimeout: p.positiveDuration("shutdown_timeout"),

		GeocoderURL:       v.GetString("geocoder_url"),
		GeocoderBenchmark: v.GetString("geocoder_benchmark"),
		GeocoderTimeout:   p.positiveDuration("geocoder_timeout"),

		SpatialURL:     v.GetString("spatial_url"),
		SpatialTimeout: p.positiveDuration("spatial_timeout"),

		UpstreamRateLimit: p.float("upstream_rate_limit", 0, 1e6),
		UpstreamBurst:     p.int("upstream_burst", 1),

		StoreDriver:        strings.ToLower(v.GetString("store_driver")),
		StoreDSN:           v.GetString("store_dsn"),
		ViolationsPageSize: p.int("violations_page_size", 1),

		CacheBackend: strings.ToLower(v.GetString("cache_backend")),
		CacheSize:    p.int("cache_size", 1),
		CacheTTL:     p.positiveDuration("cache_ttl"),

		RedisAddr:     v.GetString("redis_addr"),
		RedisPassword: v.GetString("redis_password"),
		RedisDB:       p.int("redis_db", 0),

		KafkaBrokers:      ParseBrokers(v.GetString("kafka_brokers")),
		KafkaVerdictTopic: v.GetString("kafka_verdict_topic"),

		TracingEnabled:     p.bool("tracing_enabled"),
		TracingExporter:    strings.ToLower(v.GetString("tracing_exporter")),
		TracingEndpoint:    v.GetString("tracing_endpoint"),
		TracingSampleRatio: p.float("tracing_sample_ratio", 0, 1),
	}
	if p.err != nil {
		return nil, p.err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("invalid LOG_FORMAT %q: want json or text", c.LogFormat)
	}
	switch c.StoreDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("invalid STORE_DRIVER %q: want sqlite or postgres", c.StoreDriver)
	}
	if c.StoreDSN == "" {
		return errors.New("STORE_DSN is required")
	}
	switch c.CacheBackend {
	case CacheNone, CacheLRU, CacheMemory:
	case CacheRedis, CacheLayered:
		if c.RedisAddr == "" {
			return fmt.Errorf("CACHE_BACKEND %s requires REDIS_ADDR", c.CacheBackend)
		}
	default:
		return fmt.Errorf("invalid CACHE_BACKEND %q", c.CacheBackend)
	}
	if len(c.KafkaBrokers) > 0 && c.KafkaVerdictTopic == "" {
		return errors.New("KAFKA_VERDICT_TOPIC is required when KAFKA_BROKERS is set")
	}
	switch c.TracingExporter {
	case "stdout", "otlp":
	default:
		return fmt.Errorf("invalid TRACING_EXPORTER %q: want stdout or otlp", c.TracingExporter)
	}
	return nil
}

// PublishingEnabled reports whether verdict events go to Kafka.
func (c *Config) PublishingEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// ParseBrokers splits a comma-separated broker list, dropping blanks.
func ParseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// parser reads typed values and keeps the first error, which names the
// offending environment variable.
type parser struct {
	v   *viper.Viper
	err error
}

func envName(key string) string {
	return strings.ToUpper(key)
}

func (p *parser) fail(key, raw, want string) {
	if p.err == nil {
		p.err = fmt.Errorf("invalid %s %q: %s", envName(key), raw, want)
	}
}

func (p *parser) positiveDuration(key string) time.Duration {
	raw := p.v.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		p.fail(key, raw, "want a positive duration")
		return 0
	}
	return d
}

func (p *parser) int(key string, min int) int {
	raw := p.v.GetString(key)
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < min {
		p.fail(key, raw, fmt.Sprintf("want an integer >= %d", min))
		return 0
	}
	return n
}

func (p *parser) float(key string, min, max float64) float64 {
	raw := p.v.GetString(key)
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || f < min || f > max {
		p.fail(key, raw, fmt.Sprintf("want a number in [%g, %g]", min, max))
		return 0
	}
	return f
}

func (p *parser) bool(key string) bool {
	raw := p.v.GetString(key)
	b, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		p.fail(key, raw, "want true or false")
		return false
	}
	return b
}
