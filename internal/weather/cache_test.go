package weather_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trayananedelcheva/travel-buddy/internal/weather"
	"github.com/trayananedelcheva/travel-buddy/testutil"
)

func TestRedisCache_RoundTrip(t *testing.T) {
	cache, err := weather.NewRedisCache(testutil.RedisURL(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	ctx := context.Background()
	require.NoError(t, cache.Ping(ctx))

	key := weather.CacheKey(10.123, 20.456) + ":test"
	_, ok, err := cache.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	s := weather.Series{Latitude: 10.123, Longitude: 20.456, Hours: []weather.Hour{
		{Time: time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC), TemperatureC: 19.5, WeatherCode: 3},
	}}
	require.NoError(t, cache.Set(ctx, key, s, 5*time.Second))

	got, ok, err := cache.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got.Hours, 1)
	assert.True(t, got.Hours[0].Time.Equal(s.Hours[0].Time))
	assert.Equal(t, 19.5, got.Hours[0].TemperatureC)
}

func TestNewRedisCache_BadURL(t *testing.T) {
	_, err := weather.NewRedisCache("not-a-url")
	assert.Error(t, err)
}
