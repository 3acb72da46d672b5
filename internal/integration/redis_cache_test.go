//go:build integration

package integration_test

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/water-safety-service/internal/cache"
	"github.com/couchcryptid/water-safety-service/internal/classify"
	"github.com/couchcryptid/water-safety-service/internal/domain"
	"github.com/couchcryptid/water-safety-service/internal/observability"
	"github.com/couchcryptid/water-safety-service/internal/pipeline"
)

func redisClient(ctx context.Context, t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: startRedis(ctx, t)})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(ctx).Err())
	return client
}

func TestRedisCache_RoundTripAndExpiry(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	c := cache.NewRedis(redisClient(ctx, t), time.Hour)
	key := cache.Key("geocode", "1100 Congress Ave")

	_, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, key, []byte(`{"lat":30.2747,"lon":-97.7404}`), 0))
	val, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"lat":30.2747,"lon":-97.7404}`, string(val))

	require.NoError(t, c.Delete(ctx, key))
	_, ok, err = c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, key, []byte("short"), time.Second))
	assert.Eventually(t, func() bool {
		_, ok, err := c.Get(ctx, key)
		return err == nil && !ok
	}, 10*time.Second, 200*time.Millisecond)
}

// TestRedisCache_SharedAcrossPipelines stands in for two service instances:
// the second never calls the upstreams for an address the first resolved.
func TestRedisCache_SharedAcrossPipelines(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	shared := cache.NewRedis(redisClient(ctx, t), time.Hour)

	newInstance := func() (*pipeline.Pipeline, *stubGeocoder, *stubResolver) {
		g := &stubGeocoder{at: domain.Coordinates{Lat: 35.4676, Lon: -97.5164}}
		r := &stubResolver{match: domain.UtilityMatch{SystemID: "OK1020804", Name: "OKLAHOMA CITY", Candidates: 1}}
		store := cleanStore{}
		near := cache.NewLRU(100, time.Hour, nil)
		p := pipeline.New(g, r, classify.New(store, nil, discardLogger()), store,
			discardLogger(), observability.NewMetricsForTesting(),
			pipeline.WithCache(cache.NewLayered(near, shared), time.Hour),
		)
		return p, g, r
	}

	first, g1, r1 := newInstance()
	second, g2, r2 := newInstance()
	addr := domain.Address("200 N Walker Ave, Oklahoma City, OK")

	v1, err := first.Resolve(ctx, addr)
	require.NoError(t, err)
	v2, err := second.Resolve(ctx, addr)
	require.NoError(t, err)

	assert.Equal(t, v1.Utility, v2.Utility)
	assert.Equal(t, v1.Tier, v2.Tier)
	assert.NotEqual(t, v1.ResolutionID, v2.ResolutionID)
	assert.EqualValues(t, 1, g1.calls.Load())
	assert.EqualValues(t, 1, r1.calls.Load())
	assert.EqualValues(t, 0, g2.calls.Load())
	assert.EqualValues(t, 0, r2.calls.Load())
}
