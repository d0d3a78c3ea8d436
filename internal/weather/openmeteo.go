package weather

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/trayananedelcheva/travel-buddy/internal/domain"
	"github.com/trayananedelcheva/travel-buddy/internal/upstream"
)

const (
	openMeteoBaseURL = "https://api.open-meteo.com/v1"
	openMeteoHourly  = "temperature_2m,relative_humidity_2m,precipitation_probability,wind_speed_10m,weather_code"
	openMeteoLayout  = "2006-01-02T15:04"
)

// ErrMalformedPayload is returned when the forecast has no hourly block.
var ErrMalformedPayload = errors.New("malformed forecast payload")

// OpenMeteo fetches hourly forecasts from Open-Meteo. When Cache is set,
// decoded series are cached per rounded coordinate for TTL.
type OpenMeteo struct {
	client  *upstream.Client
	baseURL string
	cache   SeriesCache
	ttl     time.Duration
	now     func() time.Time
}

// NewOpenMeteo builds a forecaster. cache may be nil.
func NewOpenMeteo(client *upstream.Client, baseURL string, cache SeriesCache, ttl time.Duration) *OpenMeteo {
	if baseURL == "" {
		baseURL = openMeteoBaseURL
	}
	return &OpenMeteo{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		cache:   cache,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Forecast returns the sample closest to target, or nil when the provider
// has no hours for the location.
func (o *OpenMeteo) Forecast(ctx context.Context, lat, lon float64, target time.Time) (*domain.WeatherSample, error) {
	s, err := o.Series(ctx, lat, lon)
	if err != nil {
		return nil, err
	}
	sample := SelectClosest(s, target)
	if sample != nil {
		sample.FetchedAt = o.now().UTC()
	}
	return sample, nil
}

// Series returns the hourly forecast for a location, from the cache when
// possible. Cache failures are logged and fall through to the provider.
func (o *OpenMeteo) Series(ctx context.Context, lat, lon float64) (Series, error) {
	key := CacheKey(lat, lon)
	if o.cache != nil {
		s, ok, err := o.cache.Get(ctx, key)
		if err != nil {
			slog.WarnContext(ctx, "forecast cache read failed", "key", key, "error", err)
		} else if ok {
			return s, nil
		}
	}

	s, err := o.fetch(ctx, lat, lon)
	if err != nil {
		return Series{}, err
	}

	if o.cache != nil {
		if err := o.cache.Set(ctx, key, s, o.ttl); err != nil {
			slog.WarnContext(ctx, "forecast cache write failed", "key", key, "error", err)
		}
	}
	return s, nil
}

func (o *OpenMeteo) fetch(ctx context.Context, lat, lon float64) (Series, error) {
	values := url.Values{}
	values.Set("latitude", fmt.Sprintf("%f", lat))
	values.Set("longitude", fmt.Sprintf("%f", lon))
	values.Set("hourly", openMeteoHourly)
	values.Set("timezone", "auto")

	buildRequest := func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodGet, o.baseURL+"/forecast?"+values.Encode(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	}

	var payload openMeteoPayload
	if err := o.client.GetJSON(ctx, buildRequest, &payload); err != nil {
		return Series{}, fmt.Errorf("weather.OpenMeteo.Series: %w", err)
	}
	s, err := payload.series(lat, lon)
	if err != nil {
		return Series{}, fmt.Errorf("weather.OpenMeteo.Series: %w", err)
	}
	return s, nil
}

type openMeteoPayload struct {
	UTCOffsetSeconds int `json:"utc_offset_seconds"`
	Hourly           *struct {
		Time          []string   `json:"time"`
		Temperature   []*float64 `json:"temperature_2m"`
		Humidity      []*float64 `json:"relative_humidity_2m"`
		Precipitation []*float64 `json:"precipitation_probability"`
		WindSpeed     []*float64 `json:"wind_speed_10m"`
		WeatherCode   []*float64 `json:"weather_code"`
	} `json:"hourly"`
}

// series turns the parallel arrays into rows. Only indexes present in every
// array are used, and rows with an unparseable time or a null value are
// skipped so one bad hour does not discard the forecast.
func (p openMeteoPayload) series(lat, lon float64) (Series, error) {
	h := p.Hourly
	if h == nil {
		return Series{}, ErrMalformedPayload
	}
	n := min(len(h.Time), len(h.Temperature), len(h.Humidity), len(h.Precipitation), len(h.WindSpeed), len(h.WeatherCode))
	loc := time.FixedZone("", p.UTCOffsetSeconds)

	s := Series{Latitude: lat, Longitude: lon, Hours: make([]Hour, 0, n)}
	for i := 0; i < n; i++ {
		t, err := time.ParseInLocation(openMeteoLayout, h.Time[i], loc)
		if err != nil {
			continue
		}
		if h.Temperature[i] == nil || h.Humidity[i] == nil || h.Precipitation[i] == nil ||
			h.WindSpeed[i] == nil || h.WeatherCode[i] == nil {
			continue
		}
		s.Hours = append(s.Hours, Hour{
			Time:             t,
			TemperatureC:     *h.Temperature[i],
			HumidityPct:      int(*h.Humidity[i]),
			PrecipitationPct: int(*h.Precipitation[i]),
			WindSpeedKmh:     *h.WindSpeed[i],
			WeatherCode:      int(*h.WeatherCode[i]),
		})
	}
	return s, nil
}
