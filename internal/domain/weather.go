package domain

import (
	"time"

	"github.com/google/uuid"
)

// Trip suitability bounds. Temperature bounds are inclusive; precipitation and
// wind are allowed up to and including the limit.
const (
	MinSuitableTempC     = 5.0
	MaxSuitableTempC     = 35.0
	MaxSuitablePrecipPct = 30
	MaxSuitableWindKmh   = 30.0
)

// WeatherSample is one forecast point attached to a trip.
// WeatherDescription and SuitableForTrip are derived; build samples with
// weather.NewSample rather than setting them by hand.
type WeatherSample struct {
	ID                 uuid.UUID
	Latitude           float64
	Longitude          float64
	ForecastTime       time.Time
	TemperatureC       float64
	HumidityPct        int
	WindSpeedKmh       float64
	PrecipitationPct   int
	WeatherCode        int
	WeatherDescription string
	SuitableForTrip    bool
	FetchedAt          time.Time
}

// IsSuitableForTrip is the pure suitability rule over temperature,
// precipitation probability and wind speed.
func IsSuitableForTrip(tempC float64, precipPct int, windKmh float64) bool {
	if tempC < MinSuitableTempC || tempC > MaxSuitableTempC {
		return false
	}
	if precipPct > MaxSuitablePrecipPct {
		return false
	}
	return windKmh <= MaxSuitableWindKmh
}
