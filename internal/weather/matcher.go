// Package weather selects the forecast hour closest to a trip start and
// decides whether it suits an outdoor trip.
package weather

import (
	"time"

	"github.com/trayananedelcheva/travel-buddy/internal/domain"
)

// Hour is one row of an hourly forecast.
type Hour struct {
	Time             time.Time `json:"time"`
	TemperatureC     float64   `json:"temperatureC"`
	HumidityPct      int       `json:"humidityPct"`
	PrecipitationPct int       `json:"precipitationPct"`
	WindSpeedKmh     float64   `json:"windSpeedKmh"`
	WeatherCode      int       `json:"weatherCode"`
}

// Series is an hourly forecast for one location, in provider order.
type Series struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Hours     []Hour  `json:"hours"`
}

// SelectClosest returns the hour whose timestamp is nearest to target,
// measured in whole minutes. On a tie the earliest row in series order wins.
// An empty series yields nil, meaning no forecast is available.
func SelectClosest(s Series, target time.Time) *domain.WeatherSample {
	best := -1
	var bestDist int64
	for i, h := range s.Hours {
		d := minutesBetween(h.Time, target)
		if best == -1 || d < bestDist {
			best, bestDist = i, d
		}
	}
	if best == -1 {
		return nil
	}
	sample := NewSample(s.Latitude, s.Longitude, s.Hours[best])
	return &sample
}

// NewSample builds a WeatherSample from a forecast hour, deriving the
// description and the suitability verdict.
func NewSample(lat, lon float64, h Hour) domain.WeatherSample {
	return domain.WeatherSample{
		Latitude:           lat,
		Longitude:          lon,
		ForecastTime:       h.Time,
		TemperatureC:       h.TemperatureC,
		HumidityPct:        h.HumidityPct,
		WindSpeedKmh:       h.WindSpeedKmh,
		PrecipitationPct:   h.PrecipitationPct,
		WeatherCode:        h.WeatherCode,
		WeatherDescription: DescribeCode(h.WeatherCode),
		SuitableForTrip:    domain.IsSuitableForTrip(h.TemperatureC, h.PrecipitationPct, h.WindSpeedKmh),
	}
}

func minutesBetween(a, b time.Time) int64 {
	m := int64(a.Sub(b) / time.Minute)
	if m < 0 {
		return -m
	}
	return m
}
