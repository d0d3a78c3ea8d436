// Package domain contains the core data types for the Travel Buddy API.
// This package has no infrastructure dependencies and is imported by every
// other internal package (places, weather, feasibility, repo, service, handler).
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TripStatus is the caller-driven lifecycle state of a trip.
type TripStatus string

const (
	TripPlanned   TripStatus = "PLANNED"
	TripConfirmed TripStatus = "CONFIRMED"
	TripCancelled TripStatus = "CANCELLED"
	TripCompleted TripStatus = "COMPLETED"
)

// ParseTripStatus accepts a status name in any case.
func ParseTripStatus(s string) (TripStatus, error) {
	switch st := TripStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case TripPlanned, TripConfirmed, TripCancelled, TripCompleted:
		return st, nil
	}
	return "", fmt.Errorf("%w: unknown trip status %q", ErrValidation, s)
}

// Trip is an itinerary under evaluation.
//
// PlaceIDs references stored places in visiting order; the places themselves
// are loaded through the place repo. Recommendation, IsRecommended and
// WarningMessage are written only by the feasibility engine.
type Trip struct {
	ID               uuid.UUID
	OwnerID          string
	Name             string
	PlannedStartTime time.Time
	PlannedEndTime   *time.Time
	PlaceIDs         []uuid.UUID
	WeatherID        *uuid.UUID
	Status           TripStatus
	Recommendation   string
	IsRecommended    *bool // nil until the trip has been evaluated once
	WarningMessage   string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// HasPlace reports whether placeID is already part of the trip.
func (t Trip) HasPlace(placeID uuid.UUID) bool {
	for _, id := range t.PlaceIDs {
		if id == placeID {
			return true
		}
	}
	return false
}

// TripDetails is a trip with its places loaded in visiting order and its
// attached weather sample, if any.
type TripDetails struct {
	Trip    Trip
	Places  []Place
	Weather *WeatherSample
}
