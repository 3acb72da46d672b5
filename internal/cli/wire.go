package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/couchcryptid/water-safety-service/internal/adapter/arcgis"
	"github.com/couchcryptid/water-safety-service/internal/adapter/census"
	kafkaadapter "github.com/couchcryptid/water-safety-service/internal/adapter/kafka"
	"github.com/couchcryptid/water-safety-service/internal/adapter/sqlstore"
	"github.com/couchcryptid/water-safety-service/internal/cache"
	"github.com/couchcryptid/water-safety-service/internal/classify"
	"github.com/couchcryptid/water-safety-service/internal/config"
	"github.com/couchcryptid/water-safety-service/internal/observability"
	"github.com/couchcryptid/water-safety-service/internal/pipeline"
)

// app is the wired set of components behind every command.
type app struct {
	pipeline *pipeline.Pipeline
	closers  []func() error
}

func buildApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics, publish bool) (*app, error) {
	a := &app{}

	store, err := sqlstore.Open(ctx, cfg.StoreDriver, cfg.StoreDSN, logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, store.Close)

	stageCache, err := a.buildCache(ctx, cfg, logger)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	geocoder := census.NewClient(cfg.GeocoderURL, cfg.GeocoderBenchmark, cfg.GeocoderTimeout, newLimiter(cfg), logger)
	resolver := arcgis.NewClient(cfg.SpatialURL, cfg.SpatialTimeout, newLimiter(cfg), logger)
	clock := clockwork.NewRealClock()
	classifier := classify.New(store, clock, logger)

	opts := []pipeline.Option{
		pipeline.WithCache(stageCache, cfg.CacheTTL),
		pipeline.WithClock(clock),
		pipeline.WithPageSize(cfg.ViolationsPageSize),
	}
	if publish && cfg.PublishingEnabled() {
		writer := kafkaadapter.NewWriter(cfg, logger)
		a.closers = append(a.closers, writer.Close)
		opts = append(opts, pipeline.WithPublisher(writer))
		logger.Info("verdict publishing enabled", "topic", cfg.KafkaVerdictTopic, "brokers", cfg.KafkaBrokers)
	}

	a.pipeline = pipeline.New(geocoder, resolver, classifier, store, logger, metrics, opts...)
	return a, nil
}

// newLimiter returns a token bucket for one upstream, or nil when limiting
// is disabled.
func newLimiter(cfg *config.Config) *rate.Limiter {
	if cfg.UpstreamRateLimit <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(cfg.UpstreamRateLimit), cfg.UpstreamBurst)
}

func (a *app) buildCache(ctx context.Context, cfg *config.Config, logger *slog.Logger) (cache.Cache, error) {
	switch cfg.CacheBackend {
	case config.CacheNone:
		return cache.Nop{}, nil
	case config.CacheLRU:
		return cache.NewLRU(cfg.CacheSize, cfg.CacheTTL, nil), nil
	case config.CacheMemory:
		return cache.NewMemory(cfg.CacheTTL, cfg.CacheTTL/2), nil
	case config.CacheRedis, config.CacheLayered:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		a.closers = append(a.closers, client.Close)
		logger.Info("redis stage cache connected", "addr", cfg.RedisAddr, "backend", cfg.CacheBackend)

		shared := cache.NewRedis(client, cfg.CacheTTL)
		if cfg.CacheBackend == config.CacheRedis {
			return shared, nil
		}
		return cache.NewLayered(cache.NewLRU(cfg.CacheSize, cfg.CacheTTL, nil), shared), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
	}
}

// Close releases components in reverse order of creation.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
