// Package feasibility scores a trip against its weather, its places and its
// start time, and produces the recommendation stored on the trip.
package feasibility

import (
	"fmt"
	"strings"
	"time"

	"github.com/trayananedelcheva/travel-buddy/internal/domain"
)

// Score adjustments, applied in this order to a running total that starts at
// MaxScore and is floored at zero once at the end.
const (
	MaxScore             = 100
	RecommendedThreshold = 50

	PenaltyNoWeather      = 20
	PenaltyBadWeather     = 30
	PenaltyNoPlaces       = 40
	PenaltyPlace          = 15
	PenaltyStartInThePast = 50

	SoonWindow     = 2 * time.Hour
	MinPlaceRating = 3.0
	HeavyRainPct   = 50
)

// Warnings.
const (
	WarnNoWeather  = "no weather data"
	WarnNoPlaces   = "no places added"
	WarnPastStart  = "start time is in the past"
	WarnStartsSoon = "starts soon, limited preparation time"
	badWeatherFmt  = "bad weather: %s"
	heavyRainFmt   = "high chance of rain (%d%%)"
	veryColdFmt    = "very cold (%.1f°C)"
	veryHotFmt     = "very hot (%.1f°C)"
	strongWindFmt  = "strong wind (%.1f km/h)"
)

// Opening-hours messages.
const (
	MsgOpen      = "open"
	MsgClosed    = "closed"
	MsgNoHours   = "no opening hours information"
	openHoursFmt = "open (%s - %s)"
	opensAtFmt   = "closed (opens at %s)"
)

// Overall recommendations by score band, highest band first.
const (
	RecommendExcellent = "Excellent conditions for the trip, everything looks great."
	RecommendGood      = "Good conditions for the trip, with only minor issues."
	RecommendModerate  = "Moderate conditions, review the warnings before going."
	RecommendPoor      = "Poor conditions, going now is not recommended."
	RecommendAgainst   = "Very poor conditions, we strongly advise against going."
)

// Engine evaluates trips. The zero value is not usable; build it with New.
type Engine struct {
	now func() time.Time
}

// New returns an Engine that reads the current time from now. A nil now
// uses time.Now.
func New(now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{now: now}
}

// Evaluate scores trip with its places (in visiting order) and attached
// weather sample, which may be nil. It writes Recommendation, IsRecommended
// and WarningMessage on trip and returns the full result. Missing weather,
// places or ratings lower the score; they are never errors.
func (e *Engine) Evaluate(trip *domain.Trip, places []domain.Place, weather *domain.WeatherSample) domain.ValidationResult {
	res := domain.ValidationResult{
		Weather:          weather,
		PlaceValidations: []domain.PlaceValidation{},
		Warnings:         []string{},
	}
	score := MaxScore

	// Weather.
	switch {
	case weather == nil:
		score -= PenaltyNoWeather
		res.Warnings = append(res.Warnings, WarnNoWeather)
	case !weather.SuitableForTrip:
		score -= PenaltyBadWeather
		res.Warnings = append(res.Warnings, weatherWarnings(weather)...)
	}

	// Places.
	if len(places) == 0 {
		score -= PenaltyNoPlaces
		res.Warnings = append(res.Warnings, WarnNoPlaces)
	}
	for _, p := range places {
		v := ValidatePlace(p)
		if !v.IsRecommended {
			score -= PenaltyPlace
		}
		res.PlaceValidations = append(res.PlaceValidations, v)
	}

	// Timing.
	now := e.now()
	switch {
	case trip.PlannedStartTime.Before(now):
		score -= PenaltyStartInThePast
		res.Warnings = append(res.Warnings, WarnPastStart)
	case trip.PlannedStartTime.Before(now.Add(SoonWindow)):
		res.Warnings = append(res.Warnings, WarnStartsSoon)
	}

	res.ConfidenceScore = max(score, 0)
	res.IsRecommended = res.ConfidenceScore >= RecommendedThreshold
	res.OverallRecommendation = Recommendation(res.ConfidenceScore)

	recommended := res.IsRecommended
	trip.Recommendation = res.OverallRecommendation
	trip.IsRecommended = &recommended
	trip.WarningMessage = strings.Join(res.Warnings, "\n")
	return res
}

// weatherWarnings names the condition and adds one annotation per bound the
// sample breaks.
func weatherWarnings(w *domain.WeatherSample) []string {
	out := []string{fmt.Sprintf(badWeatherFmt, w.WeatherDescription)}
	if w.PrecipitationPct > HeavyRainPct {
		out = append(out, fmt.Sprintf(heavyRainFmt, w.PrecipitationPct))
	}
	if w.TemperatureC < domain.MinSuitableTempC {
		out = append(out, fmt.Sprintf(veryColdFmt, w.TemperatureC))
	} else if w.TemperatureC > domain.MaxSuitableTempC {
		out = append(out, fmt.Sprintf(veryHotFmt, w.TemperatureC))
	}
	if w.WindSpeedKmh > domain.MaxSuitableWindKmh {
		out = append(out, fmt.Sprintf(strongWindFmt, w.WindSpeedKmh))
	}
	return out
}

// ValidatePlace checks one place. A place is not recommended when it is known
// to be closed or its rating is below MinPlaceRating; unknown hours are fine.
func ValidatePlace(p domain.Place) domain.PlaceValidation {
	v := domain.PlaceValidation{
		PlaceName:           p.Name,
		OpenState:           domain.OpenStateOf(p.CurrentlyOpen),
		OpeningHoursMessage: hoursMessage(p),
		Rating:              p.Rating,
		IsRecommended:       true,
	}
	if v.OpenState == domain.OpenStateClosed {
		v.IsRecommended = false
	}
	if p.Rating != nil && *p.Rating < MinPlaceRating {
		v.IsRecommended = false
	}
	return v
}

func hoursMessage(p domain.Place) string {
	switch domain.OpenStateOf(p.CurrentlyOpen) {
	case domain.OpenStateOpen:
		if p.OpeningTime != nil && p.ClosingTime != nil {
			return fmt.Sprintf(openHoursFmt, p.OpeningTime, p.ClosingTime)
		}
		return MsgOpen
	case domain.OpenStateClosed:
		if p.OpeningTime != nil {
			return fmt.Sprintf(opensAtFmt, p.OpeningTime)
		}
		return MsgClosed
	default:
		return MsgNoHours
	}
}

// Recommendation returns the text for a score. Bands include their lower
// bound.
func Recommendation(score int) string {
	switch {
	case score >= 80:
		return RecommendExcellent
	case score >= 60:
		return RecommendGood
	case score >= 40:
		return RecommendModerate
	case score >= 20:
		return RecommendPoor
	default:
		return RecommendAgainst
	}
}
