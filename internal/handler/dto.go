package handler

import (
	"time"

	"github.com/google/uuid"

	"github.com/trayananedelcheva/travel-buddy/internal/domain"
)

// --- requests ---------------------------------------------------------------

// PlaceSearchRequest is the body of POST /api/places/search. Query selects a
// text search; without it, the coordinates select a nearby search.
type PlaceSearchRequest struct {
	Query     string   `json:"query" validate:"max=200"`
	Latitude  *float64 `json:"latitude" validate:"required_with=Longitude,omitempty,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"required_with=Latitude,omitempty,gte=-180,lte=180"`
	Radius    int      `json:"radius" validate:"gte=0,lte=50000"`
	Type      string   `json:"type" validate:"max=100"`
}

// CreateTripRequest is the body of POST /api/trips.
type CreateTripRequest struct {
	Name               string     `json:"name" validate:"required,max=200"`
	PlannedStartTime   *time.Time `json:"plannedStartTime" validate:"required"`
	PlannedEndTime     *time.Time `json:"plannedEndTime"`
	PlaceSearchQueries []string   `json:"placeSearchQueries" validate:"max=10,dive,max=200"`
	StartLatitude      *float64   `json:"startLatitude" validate:"required_with=StartLongitude,omitempty,gte=-90,lte=90"`
	StartLongitude     *float64   `json:"startLongitude" validate:"required_with=StartLatitude,omitempty,gte=-180,lte=180"`
}

// UpdateStatusRequest is the body of PATCH /api/trips/{id}/status.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// --- responses --------------------------------------------------------------

type Place struct {
	ID               uuid.UUID `json:"id"`
	ExternalID       string    `json:"externalId"`
	Source           string    `json:"source,omitempty"`
	Name             string    `json:"name"`
	Address          string    `json:"address,omitempty"`
	FormattedAddress string    `json:"formattedAddress,omitempty"`
	Locality         string    `json:"locality,omitempty"`
	Region           string    `json:"region,omitempty"`
	Country          string    `json:"country,omitempty"`
	Postcode         string    `json:"postcode,omitempty"`
	Latitude         *float64  `json:"latitude"`
	Longitude        *float64  `json:"longitude"`
	Rating           *float64  `json:"rating"`
	RatingCount      *int      `json:"ratingCount,omitempty"`
	Categories       []string  `json:"categories"`
	CategoryIDs      []string  `json:"categoryIds"`
	OpeningTime      *string   `json:"openingTime"`
	ClosingTime      *string   `json:"closingTime"`
	CurrentlyOpen    *bool     `json:"currentlyOpen"`
	DistanceMeters   *int      `json:"distanceMeters,omitempty"`
	Timezone         string    `json:"timezone,omitempty"`
	ExternalLink     string    `json:"externalLink,omitempty"`
	Phone            string    `json:"phone,omitempty"`
	Website          string    `json:"website,omitempty"`
	PhotoURL         string    `json:"photoUrl,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

type Weather struct {
	ID                 uuid.UUID `json:"id"`
	Latitude           float64   `json:"latitude"`
	Longitude          float64   `json:"longitude"`
	ForecastTime       time.Time `json:"forecastTime"`
	TemperatureC       float64   `json:"temperature"`
	HumidityPct        int       `json:"humidity"`
	WindSpeedKmh       float64   `json:"windSpeed"`
	PrecipitationPct   int       `json:"precipitationProbability"`
	WeatherCode        int       `json:"weatherCode"`
	WeatherDescription string    `json:"weatherDescription"`
	SuitableForTrip    bool      `json:"suitableForTrip"`
	FetchedAt          time.Time `json:"fetchedAt"`
}

type Trip struct {
	ID               uuid.UUID   `json:"id"`
	Name             string      `json:"name"`
	PlannedStartTime time.Time   `json:"plannedStartTime"`
	PlannedEndTime   *time.Time  `json:"plannedEndTime"`
	PlaceIDs         []uuid.UUID `json:"placeIds"`
	WeatherID        *uuid.UUID  `json:"weatherId"`
	Status           string      `json:"status"`
	Recommendation   string      `json:"recommendation,omitempty"`
	IsRecommended    *bool       `json:"isRecommended"`
	WarningMessage   string      `json:"warningMessage,omitempty"`
	CreatedAt        time.Time   `json:"createdAt"`
	UpdatedAt        time.Time   `json:"updatedAt"`
}

// TripDetails is a trip with its places and weather inlined.
type TripDetails struct {
	Trip
	Places  []Place  `json:"places"`
	Weather *Weather `json:"weather"`
}

type PlaceValidation struct {
	PlaceName           string   `json:"placeName"`
	OpenState           string   `json:"openState"`
	OpeningHoursMessage string   `json:"openingHoursMessage"`
	Rating              *float64 `json:"rating"`
	IsRecommended       bool     `json:"isRecommended"`
}

type ValidationResult struct {
	ConfidenceScore       int               `json:"confidenceScore"`
	IsRecommended         bool              `json:"isRecommended"`
	Weather               *Weather          `json:"weather"`
	PlaceValidations      []PlaceValidation `json:"placeValidations"`
	OverallRecommendation string            `json:"overallRecommendation"`
	Warnings              []string          `json:"warnings"`
}

type SearchRecord struct {
	ID           uuid.UUID `json:"id"`
	Type         string    `json:"searchType"`
	Query        string    `json:"query,omitempty"`
	Latitude     *float64  `json:"latitude,omitempty"`
	Longitude    *float64  `json:"longitude,omitempty"`
	Radius       *int      `json:"radius,omitempty"`
	PlaceType    string    `json:"placeType,omitempty"`
	ResultsCount int       `json:"resultsCount"`
	SearchedAt   time.Time `json:"searchedAt"`
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"totalPages"`
}

type TripPage struct {
	Data       []Trip     `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// --- mapping helpers --------------------------------------------------------

func placeToResponse(p domain.Place) Place {
	resp := Place{
		ID:               p.ID,
		ExternalID:       p.ExternalID,
		Source:           p.Source,
		Name:             p.Name,
		Address:          p.Address,
		FormattedAddress: p.FormattedAddress,
		Locality:         p.Locality,
		Region:           p.Region,
		Country:          p.Country,
		Postcode:         p.Postcode,
		Latitude:         p.Latitude,
		Longitude:        p.Longitude,
		Rating:           p.Rating,
		RatingCount:      p.RatingCount,
		Categories:       nonNil(p.Categories),
		CategoryIDs:      nonNil(p.CategoryIDs),
		CurrentlyOpen:    p.CurrentlyOpen,
		DistanceMeters:   p.DistanceMeters,
		Timezone:         p.Timezone,
		ExternalLink:     p.ExternalLink,
		Phone:            p.Phone,
		Website:          p.Website,
		PhotoURL:         p.PhotoURL,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
	if p.OpeningTime != nil {
		s := p.OpeningTime.String()
		resp.OpeningTime = &s
	}
	if p.ClosingTime != nil {
		s := p.ClosingTime.String()
		resp.ClosingTime = &s
	}
	return resp
}

func placesToResponse(ps []domain.Place) []Place {
	out := make([]Place, len(ps))
	for i, p := range ps {
		out[i] = placeToResponse(p)
	}
	return out
}

func weatherToResponse(w *domain.WeatherSample) *Weather {
	if w == nil {
		return nil
	}
	return &Weather{
		ID:                 w.ID,
		Latitude:           w.Latitude,
		Longitude:          w.Longitude,
		ForecastTime:       w.ForecastTime,
		TemperatureC:       w.TemperatureC,
		HumidityPct:        w.HumidityPct,
		WindSpeedKmh:       w.WindSpeedKmh,
		PrecipitationPct:   w.PrecipitationPct,
		WeatherCode:        w.WeatherCode,
		WeatherDescription: w.WeatherDescription,
		SuitableForTrip:    w.SuitableForTrip,
		FetchedAt:          w.FetchedAt,
	}
}

func tripToResponse(t domain.Trip) Trip {
	ids := t.PlaceIDs
	if ids == nil {
		ids = []uuid.UUID{}
	}
	return Trip{
		ID:               t.ID,
		Name:             t.Name,
		PlannedStartTime: t.PlannedStartTime,
		PlannedEndTime:   t.PlannedEndTime,
		PlaceIDs:         ids,
		WeatherID:        t.WeatherID,
		Status:           string(t.Status),
		Recommendation:   t.Recommendation,
		IsRecommended:    t.IsRecommended,
		WarningMessage:   t.WarningMessage,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}
}

func tripsToResponse(ts []domain.Trip) []Trip {
	out := make([]Trip, len(ts))
	for i, t := range ts {
		out[i] = tripToResponse(t)
	}
	return out
}

func detailsToResponse(d domain.TripDetails) TripDetails {
	return TripDetails{
		Trip:    tripToResponse(d.Trip),
		Places:  placesToResponse(d.Places),
		Weather: weatherToResponse(d.Weather),
	}
}

func validationToResponse(r domain.ValidationResult) ValidationResult {
	resp := ValidationResult{
		ConfidenceScore:       r.ConfidenceScore,
		IsRecommended:         r.IsRecommended,
		Weather:               weatherToResponse(r.Weather),
		PlaceValidations:      make([]PlaceValidation, len(r.PlaceValidations)),
		OverallRecommendation: r.OverallRecommendation,
		Warnings:              nonNil(r.Warnings),
	}
	for i, v := range r.PlaceValidations {
		resp.PlaceValidations[i] = PlaceValidation{
			PlaceName:           v.PlaceName,
			OpenState:           string(v.OpenState),
			OpeningHoursMessage: v.OpeningHoursMessage,
			Rating:              v.Rating,
			IsRecommended:       v.IsRecommended,
		}
	}
	return resp
}

func searchToResponse(rs []domain.SearchRecord) []SearchRecord {
	out := make([]SearchRecord, len(rs))
	for i, r := range rs {
		out[i] = SearchRecord{
			ID:           r.ID,
			Type:         string(r.Type),
			Query:        r.Query,
			Latitude:     r.Latitude,
			Longitude:    r.Longitude,
			Radius:       r.Radius,
			PlaceType:    r.PlaceType,
			ResultsCount: r.ResultsCount,
			SearchedAt:   r.SearchedAt,
		}
	}
	return out
}

// nonNil makes empty lists encode as [] rather than null.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
