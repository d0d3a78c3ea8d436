package weather_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trayananedelcheva/travel-buddy/internal/upstream"
	"github.com/trayananedelcheva/travel-buddy/internal/weather"
)

const sofiaForecast = `{
	"latitude": 42.7,
	"longitude": 23.32,
	"utc_offset_seconds": 10800,
	"timezone": "Europe/Sofia",
	"hourly": {
		"time": ["2026-06-01T09:00", "2026-06-01T10:00", "2026-06-01T11:00", "2026-06-01T12:00"],
		"temperature_2m": [18.5, 20.1, null, 24.0],
		"relative_humidity_2m": [60, 55, 50, 45],
		"precipitation_probability": [5, 10, 15],
		"wind_speed_10m": [4.2, 6.0, 7.5, 9.1],
		"weather_code": [0, 2, 3, 61]
	}
}`

type memCache struct {
	mu   sync.Mutex
	data map[string]weather.Series
	sets int
}

var _ weather.SeriesCache = (*memCache)(nil)

func (m *memCache) Get(_ context.Context, key string) (weather.Series, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.data[key]
	return s, ok, nil
}

func (m *memCache) Set(_ context.Context, key string, s weather.Series, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = map[string]weather.Series{}
	}
	m.data[key] = s
	m.sets++
	return nil
}

func newForecastServer(t *testing.T, body string, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/forecast", r.URL.Path)
		assert.Equal(t, "auto", r.URL.Query().Get("timezone"))
		assert.Contains(t, r.URL.Query().Get("hourly"), "precipitation_probability")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
}

func testClient(name string) *upstream.Client {
	return upstream.New(upstream.Options{
		Name:    name,
		Backoff: upstream.BackoffConfig{MaxRetries: 0, InitialInterval: time.Millisecond},
	})
}

func TestOpenMeteo_Series_DecodesLocalTimes(t *testing.T) {
	var calls atomic.Int32
	srv := newForecastServer(t, sofiaForecast, &calls)
	defer srv.Close()

	om := weather.NewOpenMeteo(testClient("openmeteo"), srv.URL, nil, 0)

	s, err := om.Series(context.Background(), 42.7, 23.32)

	require.NoError(t, err)
	// Precipitation has three entries and hour 11:00 has a null temperature.
	require.Len(t, s.Hours, 2)
	assert.True(t, s.Hours[0].Time.Equal(time.Date(2026, 6, 1, 6, 0, 0, 0, time.UTC)))
	assert.Equal(t, 20.1, s.Hours[1].TemperatureC)
	assert.Equal(t, 55, s.Hours[1].HumidityPct)
	assert.Equal(t, 10, s.Hours[1].PrecipitationPct)
	assert.Equal(t, 2, s.Hours[1].WeatherCode)
}

func TestOpenMeteo_Forecast_SelectsClosestHour(t *testing.T) {
	var calls atomic.Int32
	srv := newForecastServer(t, sofiaForecast, &calls)
	defer srv.Close()

	om := weather.NewOpenMeteo(testClient("openmeteo-forecast"), srv.URL, nil, 0)
	target := time.Date(2026, 6, 1, 7, 20, 0, 0, time.UTC) // 10:20 local

	got, err := om.Forecast(context.Background(), 42.7, 23.32, target)

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 20.1, got.TemperatureC)
	assert.Equal(t, "partly cloudy", got.WeatherDescription)
	assert.True(t, got.SuitableForTrip)
	assert.False(t, got.FetchedAt.IsZero())
}

func TestOpenMeteo_Forecast_EmptySeriesIsNil(t *testing.T) {
	var calls atomic.Int32
	srv := newForecastServer(t, `{"utc_offset_seconds": 0, "hourly": {"time": []}}`, &calls)
	defer srv.Close()

	om := weather.NewOpenMeteo(testClient("openmeteo-empty"), srv.URL, nil, 0)

	got, err := om.Forecast(context.Background(), 1, 1, time.Now())

	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestOpenMeteo_MissingHourly(t *testing.T) {
	var calls atomic.Int32
	srv := newForecastServer(t, `{"error": false}`, &calls)
	defer srv.Close()

	om := weather.NewOpenMeteo(testClient("openmeteo-malformed"), srv.URL, nil, 0)

	_, err := om.Series(context.Background(), 1, 1)

	assert.ErrorIs(t, err, weather.ErrMalformedPayload)
}

func TestOpenMeteo_UpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	om := weather.NewOpenMeteo(testClient("openmeteo-down"), srv.URL, nil, 0)

	_, err := om.Forecast(context.Background(), 1, 1, time.Now())

	assert.ErrorIs(t, err, upstream.ErrServer)
}

func TestOpenMeteo_UsesCache(t *testing.T) {
	var calls atomic.Int32
	srv := newForecastServer(t, sofiaForecast, &calls)
	defer srv.Close()

	cache := &memCache{}
	om := weather.NewOpenMeteo(testClient("openmeteo-cache"), srv.URL, cache, time.Minute)

	_, err := om.Series(context.Background(), 42.70001, 23.32)
	require.NoError(t, err)
	_, err = om.Series(context.Background(), 42.70004, 23.32)
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls.Load(), "second lookup rounds to the same key")
	assert.Equal(t, 1, cache.sets)
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "forecast:42.698:23.322", weather.CacheKey(42.69751, 23.32186))
	assert.Equal(t, "forecast:0.000:-0.500", weather.CacheKey(-0.0001, -0.5))
}
